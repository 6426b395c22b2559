package services

import (
	"fmt"
	"strings"

	"university-rag-assistant/models"
)

// ChunkerService splits documents into overlapping word-count windows.
// Chunk i+1 starts windowWords-overlapWords words after chunk i starts; the
// final chunk simply ends at the document end and may be shorter than a full
// window. Splitting is a pure function of the text and the configuration.
type ChunkerService struct {
	windowWords  int
	overlapWords int
}

// NewChunkerService creates a chunker with the given window and overlap sizes.
func NewChunkerService(windowWords, overlapWords int) *ChunkerService {
	if windowWords <= 0 {
		windowWords = 300
	}
	if overlapWords < 0 {
		overlapWords = 0
	}
	if overlapWords >= windowWords {
		// A step of zero or less would never terminate.
		overlapWords = windowWords - 1
	}
	return &ChunkerService{
		windowWords:  windowWords,
		overlapWords: overlapWords,
	}
}

// ChunkDocument splits a document into ordered, overlapping chunks covering
// the entire text. A document shorter than one window yields exactly one
// chunk containing the whole text; an empty document yields no chunks.
func (cs *ChunkerService) ChunkDocument(doc models.Document) []models.Chunk {
	words := strings.Fields(doc.Content)
	if len(words) == 0 {
		return nil
	}

	step := cs.windowWords - cs.overlapWords
	var chunks []models.Chunk

	start := 0
	for start < len(words) {
		end := start + cs.windowWords
		if end > len(words) {
			end = len(words)
		}

		idx := len(chunks)
		chunks = append(chunks, models.Chunk{
			ID:         fmt.Sprintf("%s_chunk%d", doc.ID, idx),
			DocID:      doc.ID,
			Title:      doc.Title,
			Content:    strings.Join(words[start:end], " "),
			ChunkIndex: idx,
			StartWord:  start,
			EndWord:    end,
		})

		if end >= len(words) {
			break
		}
		start += step
	}

	return chunks
}

// WindowWords returns the configured chunk window size in words.
func (cs *ChunkerService) WindowWords() int { return cs.windowWords }

// OverlapWords returns the configured overlap between consecutive chunks.
func (cs *ChunkerService) OverlapWords() int { return cs.overlapWords }
