package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"university-rag-assistant/models"
)

func turns(pairs int) []models.Turn {
	var out []models.Turn
	for i := 0; i < pairs; i++ {
		out = append(out,
			models.Turn{Role: "user", Content: fmt.Sprintf("question %d", i), Timestamp: time.Now()},
			models.Turn{Role: "assistant", Content: fmt.Sprintf("answer %d", i), Timestamp: time.Now()},
		)
	}
	return out
}

func retrievedChunks() []models.RetrievedChunk {
	return []models.RetrievedChunk{
		{Record: models.StoreRecord{Title: "Admissions Policy", Content: "Applications close in June."}, Score: 0.85},
		{Record: models.StoreRecord{Title: "Housing Guide", Content: "Dorms open in September."}, Score: 0.42},
	}
}

func TestBuildMessages_Structure(t *testing.T) {
	ps := NewPromptService(5)
	msgs := ps.BuildMessages("When do applications close?", retrievedChunks(), turns(2))

	if msgs[0].Role != "system" || msgs[0].Content != SystemPrompt {
		t.Fatalf("first message must be the grounding system instruction")
	}
	if last := msgs[len(msgs)-1]; last.Role != "user" {
		t.Fatalf("last message must be the user question, got role %q", last.Role)
	}

	// 1 system + 4 history turns + 1 final user message
	if len(msgs) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(msgs))
	}
}

func TestBuildMessages_ContextBlocksInRankedOrder(t *testing.T) {
	ps := NewPromptService(5)
	msgs := ps.BuildMessages("q", retrievedChunks(), nil)

	content := msgs[len(msgs)-1].Content
	first := strings.Index(content, "[Source 1 — Admissions Policy]")
	second := strings.Index(content, "[Source 2 — Housing Guide]")
	if first == -1 || second == -1 {
		t.Fatalf("expected labeled source blocks, got:\n%s", content)
	}
	if first > second {
		t.Fatalf("context blocks must appear in ranked order")
	}
	if !strings.Contains(content, "Applications close in June.") {
		t.Fatalf("chunk content missing from prompt")
	}
	if !strings.Contains(content, "USER QUESTION: q") {
		t.Fatalf("question missing from final message")
	}
}

func TestBuildMessages_NoContextMarker(t *testing.T) {
	ps := NewPromptService(5)
	msgs := ps.BuildMessages("q", nil, nil)

	content := msgs[len(msgs)-1].Content
	if !strings.Contains(content, NoContextMarker) {
		t.Fatalf("empty retrieval must render the no-context marker")
	}
	if strings.Contains(content, "[Source") {
		t.Fatalf("no source blocks expected for empty retrieval")
	}
}

func TestBuildMessages_HistoryWindow(t *testing.T) {
	ps := NewPromptService(5)
	msgs := ps.BuildMessages("q", nil, turns(8))

	// 1 system + 10 history turns (5 pairs) + 1 user
	if len(msgs) != 12 {
		t.Fatalf("expected 12 messages with 8 pairs stored, got %d", len(msgs))
	}

	// Oldest retained turn is pair 3 (pairs 3..7 of 0..7), oldest first.
	if msgs[1].Content != "question 3" {
		t.Fatalf("expected oldest retained turn to be 'question 3', got %q", msgs[1].Content)
	}
	if msgs[10].Content != "answer 7" {
		t.Fatalf("expected newest retained turn to be 'answer 7', got %q", msgs[10].Content)
	}
}

func TestBuildMessages_ShortHistoryUntrimmed(t *testing.T) {
	ps := NewPromptService(5)
	msgs := ps.BuildMessages("q", nil, turns(2))
	if len(msgs) != 6 {
		t.Fatalf("short history should pass through untrimmed, got %d messages", len(msgs))
	}
	if msgs[1].Content != "question 0" {
		t.Fatalf("history order must be oldest first")
	}
}
