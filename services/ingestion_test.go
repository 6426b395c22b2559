package services

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"university-rag-assistant/models"
	"university-rag-assistant/utils"
)

// fakeEmbedder produces a deterministic vector from the text so ingestion
// round trips can be verified without a real model.
type fakeEmbedder struct {
	dim int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if text == "" {
		return nil, errors.New("empty text")
	}
	vec := make([]float64, f.dim)
	for i, r := range text {
		vec[i%f.dim] += float64(r%13) + 1
	}
	return utils.Normalize(vec), nil
}

func (f *fakeEmbedder) Dimension() int   { return f.dim }
func (f *fakeEmbedder) Model() string    { return "fake-embedder-v1" }
func (f *fakeEmbedder) Provider() string { return "local" }

func TestBuildStore_RecordsCarryChunkMetadata(t *testing.T) {
	emb := &fakeEmbedder{dim: 8}
	svc := NewIngestionService(NewChunkerService(10, 2), emb)

	docs := []models.Document{
		{ID: "d1", Title: "Admissions", Content: strings.Repeat("alpha beta gamma delta epsilon ", 5)},
		{ID: "d2", Title: "Housing", Content: "short document"},
	}

	store, err := svc.BuildStore(context.Background(), docs)
	if err != nil {
		t.Fatalf("BuildStore failed: %v", err)
	}

	records := store.Records()
	if len(records) < 3 {
		t.Fatalf("expected multiple records, got %d", len(records))
	}

	// d1 records precede d2 records and keep their chunk order
	lastD1 := -1
	for i, r := range records {
		if r.DocID == "d1" {
			lastD1 = i
		}
	}
	for i, r := range records {
		if r.DocID == "d2" && i < lastD1 {
			t.Fatalf("record ordering does not follow document order")
		}
	}

	idx := 0
	for _, r := range records {
		if r.DocID != "d1" {
			continue
		}
		if r.ChunkIndex != idx {
			t.Fatalf("chunk index out of order: got %d want %d", r.ChunkIndex, idx)
		}
		if len(r.Embedding) != emb.dim {
			t.Fatalf("record %s has dimension %d, want %d", r.ID, len(r.Embedding), emb.dim)
		}
		idx++
	}

	h := store.Header()
	if h.Model != "fake-embedder-v1" || h.Provider != "local" || h.Dimension != emb.dim {
		t.Fatalf("unexpected store header: %+v", h)
	}
}

func TestBuildStore_EmptyCorpusFails(t *testing.T) {
	svc := NewIngestionService(NewChunkerService(10, 2), &fakeEmbedder{dim: 4})
	if _, err := svc.BuildStore(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestIngest_RoundTripThroughDisk(t *testing.T) {
	emb := &fakeEmbedder{dim: 6}
	svc := NewIngestionService(NewChunkerService(20, 5), emb)
	path := filepath.Join(t.TempDir(), "store.json")

	docs := []models.Document{
		{ID: "d1", Title: "Fees", Content: strings.Repeat("tuition payment deadline refund policy ", 10)},
	}

	written, err := svc.Ingest(context.Background(), docs, path)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	loaded, err := LoadVectorStore(path, emb.Model(), emb.Dimension())
	if err != nil {
		t.Fatalf("LoadVectorStore failed: %v", err)
	}
	if loaded.Len() != written.Len() {
		t.Fatalf("loaded %d records, wrote %d", loaded.Len(), written.Len())
	}

	// A query embedded with the same fake model must retrieve something
	query, err := emb.Embed(context.Background(), "refund policy")
	if err != nil {
		t.Fatalf("query embed failed: %v", err)
	}
	got := TopKSimilar(query, loaded.Records(), 3, 0.0)
	if len(got) == 0 {
		t.Fatal("expected at least one retrieved chunk from the reloaded store")
	}
}

func TestIngest_RejectsStoreFromDifferentModel(t *testing.T) {
	emb := &fakeEmbedder{dim: 6}
	svc := NewIngestionService(NewChunkerService(20, 5), emb)
	path := filepath.Join(t.TempDir(), "store.json")

	docs := []models.Document{{ID: "d1", Title: "T", Content: "some words here"}}
	if _, err := svc.Ingest(context.Background(), docs, path); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if _, err := LoadVectorStore(path, "a-different-model", emb.Dimension()); !errors.Is(err, ErrModelMismatch) {
		t.Fatalf("expected ErrModelMismatch, got %v", err)
	}
}

func TestLoadDocuments(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docs.json")

	docs := []models.Document{
		{ID: "d1", Title: "Admissions", Content: "how to apply"},
		{ID: "d2", Title: "Housing", Content: "dorm assignments"},
	}
	data, _ := json.Marshal(docs)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := LoadDocuments(path)
	if err != nil {
		t.Fatalf("LoadDocuments failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "d1" || got[1].Title != "Housing" {
		t.Fatalf("unexpected documents: %+v", got)
	}
}

func TestLoadDocuments_RejectsMissingFields(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"missing_id":      `[{"title": "T", "content": "c"}]`,
		"missing_content": `[{"id": "d1", "title": "T", "content": "  "}]`,
		"not_json":        `{{{`,
	}
	for name, payload := range cases {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if _, err := LoadDocuments(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
