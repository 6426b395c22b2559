package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"university-rag-assistant/internal/ai"
	"university-rag-assistant/internal/logger"
	"university-rag-assistant/models"
)

// IngestionService builds the vector store from the document corpus:
// load documents, chunk them, embed each chunk, persist the index.
type IngestionService struct {
	chunker  *ChunkerService
	embedder ai.Embedder
}

func NewIngestionService(chunker *ChunkerService, embedder ai.Embedder) *IngestionService {
	return &IngestionService{
		chunker:  chunker,
		embedder: embedder,
	}
}

// LoadDocuments reads the JSON corpus file: an array of
// {id, title, content} objects.
func LoadDocuments(path string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus file: %w", err)
	}

	var docs []models.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("failed to parse corpus file: %w", err)
	}

	for i, d := range docs {
		if d.ID == "" {
			return nil, fmt.Errorf("document %d has no id", i)
		}
		if strings.TrimSpace(d.Content) == "" {
			return nil, fmt.Errorf("document %q has no content", d.ID)
		}
	}
	return docs, nil
}

// LoadPDFDocuments extracts every PDF under dir into a document. Files are
// processed in name order so repeated ingestion runs produce the same store.
func LoadPDFDocuments(dir string) ([]models.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read PDF directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	extractor := NewPDFExtractor()
	docs := make([]models.Document, 0, len(names))
	for _, name := range names {
		doc, err := extractor.ExtractDocument(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("Skipping unreadable PDF", "file", name, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// BuildStore chunks and embeds the documents and returns a ready vector
// store. Each chunk is embedded as "title: content" so the title's topic
// words contribute to the vector.
func (s *IngestionService) BuildStore(ctx context.Context, docs []models.Document) (*VectorStore, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to ingest")
	}

	var records []models.StoreRecord
	for _, doc := range docs {
		chunks := s.chunker.ChunkDocument(doc)
		logger.Info("Chunked document", "doc_id", doc.ID, "chunks", len(chunks))

		for _, chunk := range chunks {
			vec, err := s.embedder.Embed(ctx, chunk.Title+": "+chunk.Content)
			if err != nil {
				return nil, fmt.Errorf("failed to embed chunk %s: %w", chunk.ID, err)
			}

			records = append(records, models.StoreRecord{
				ID:         chunk.ID,
				DocID:      chunk.DocID,
				Title:      chunk.Title,
				Content:    chunk.Content,
				ChunkIndex: chunk.ChunkIndex,
				Embedding:  vec,
			})
		}
	}

	header := NewStoreHeader(s.embedder.Model(), s.embedder.Provider(), s.embedder.Dimension())
	return NewVectorStore(header, records), nil
}

// Ingest runs the full pipeline and writes the store to path.
func (s *IngestionService) Ingest(ctx context.Context, docs []models.Document, storePath string) (*VectorStore, error) {
	store, err := s.BuildStore(ctx, docs)
	if err != nil {
		return nil, err
	}
	if err := store.Save(storePath); err != nil {
		return nil, fmt.Errorf("failed to save vector store: %w", err)
	}
	logger.Info("Vector store written",
		"path", storePath,
		"records", store.Len(),
		"model", store.Header().Model,
	)
	return store, nil
}
