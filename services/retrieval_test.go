package services

import (
	"testing"

	"university-rag-assistant/models"
)

func record(id string, idx int, embedding []float64) models.StoreRecord {
	return models.StoreRecord{
		ID:         id,
		DocID:      "doc",
		Title:      "Doc",
		Content:    "chunk " + id,
		ChunkIndex: idx,
		Embedding:  embedding,
	}
}

// Store of three chunks whose scores against query {1, 0} are 1.0, ~0.707
// and 0.0 respectively.
func axisStore() []models.StoreRecord {
	return []models.StoreRecord{
		record("a", 0, []float64{1, 0}),
		record("b", 1, []float64{1, 1}),
		record("c", 2, []float64{0, 1}),
	}
}

func TestTopKSimilar_OrdersByScoreDescending(t *testing.T) {
	got := TopKSimilar([]float64{1, 0}, axisStore(), 3, -1)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	if got[0].Record.ID != "a" || got[1].Record.ID != "b" || got[2].Record.ID != "c" {
		t.Fatalf("unexpected order: %s, %s, %s", got[0].Record.ID, got[1].Record.ID, got[2].Record.ID)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("scores not descending at position %d", i)
		}
	}
}

func TestTopKSimilar_ThresholdFiltersBelowMin(t *testing.T) {
	// Scores against {1, 0}: a=1.0, b=~0.707, c=0.0. With min 0.30 only
	// the first two survive.
	got := TopKSimilar([]float64{1, 0}, axisStore(), 3, 0.30)
	if len(got) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(got))
	}
	if got[0].Record.ID != "a" || got[1].Record.ID != "b" {
		t.Fatalf("unexpected results: %s, %s", got[0].Record.ID, got[1].Record.ID)
	}
}

func TestTopKSimilar_ThresholdInclusive(t *testing.T) {
	recs := []models.StoreRecord{record("exact", 0, []float64{1, 0})}
	got := TopKSimilar([]float64{1, 0}, recs, 1, 1.0)
	if len(got) != 1 {
		t.Fatalf("score exactly equal to min_score must be kept")
	}
}

func TestTopKSimilar_NothingAboveThreshold(t *testing.T) {
	got := TopKSimilar([]float64{1, 0}, axisStore(), 3, 0.9999)
	if len(got) != 1 {
		// only the identical-direction chunk scores 1.0
		t.Fatalf("expected 1 result, got %d", len(got))
	}

	got = TopKSimilar([]float64{0, 0}, axisStore(), 3, 0.9)
	if len(got) != 0 {
		t.Fatalf("expected empty result when no chunk clears the threshold, got %d", len(got))
	}
}

func TestTopKSimilar_EmptyStore(t *testing.T) {
	if got := TopKSimilar([]float64{1, 0}, nil, 3, 0.3); len(got) != 0 {
		t.Fatalf("expected empty result for empty store, got %d", len(got))
	}
}

func TestTopKSimilar_ZeroQueryVector(t *testing.T) {
	// Zero-norm query scores 0 against everything and must not panic.
	got := TopKSimilar([]float64{0, 0}, axisStore(), 3, -1)
	if len(got) != 3 {
		t.Fatalf("expected all records with score 0, got %d", len(got))
	}
	for _, r := range got {
		if r.Score != 0 {
			t.Fatalf("expected score 0 for zero query, got %f", r.Score)
		}
	}
}

func TestTopKSimilar_TieBreakByStoreOrder(t *testing.T) {
	recs := []models.StoreRecord{
		record("first", 0, []float64{2, 0}),
		record("second", 1, []float64{3, 0}), // same direction, same cosine
		record("third", 2, []float64{1, 0}),
	}
	got := TopKSimilar([]float64{1, 0}, recs, 3, 0)
	if got[0].Record.ID != "first" || got[1].Record.ID != "second" || got[2].Record.ID != "third" {
		t.Fatalf("exact ties must preserve store order, got %s, %s, %s",
			got[0].Record.ID, got[1].Record.ID, got[2].Record.ID)
	}
}

func TestTopKSimilar_KLimitsResults(t *testing.T) {
	got := TopKSimilar([]float64{1, 0}, axisStore(), 1, -1)
	if len(got) != 1 || got[0].Record.ID != "a" {
		t.Fatalf("expected only the best match with k=1")
	}

	if got := TopKSimilar([]float64{1, 0}, axisStore(), 0, -1); len(got) != 0 {
		t.Fatalf("k=0 should return nothing")
	}
}

func TestTopKSimilar_Deterministic(t *testing.T) {
	q := []float64{0.4, 0.6}
	a := TopKSimilar(q, axisStore(), 3, 0)
	b := TopKSimilar(q, axisStore(), 3, 0)
	if len(a) != len(b) {
		t.Fatalf("result lengths differ between calls")
	}
	for i := range a {
		if a[i].Record.ID != b[i].Record.ID || a[i].Score != b[i].Score {
			t.Fatalf("results differ between identical calls at position %d", i)
		}
	}
}
