package services

import (
	"sort"

	"university-rag-assistant/models"
	"university-rag-assistant/utils"
)

// TopKSimilar ranks every store record against the query vector by cosine
// similarity and returns the top k records scoring at least minScore,
// best first. Ties are broken by store order (lower ordinal wins), so
// results are deterministic for a fixed store and query. An empty store or
// a query that nothing matches yields an empty result, never an error.
func TopKSimilar(queryVec []float64, records []models.StoreRecord, k int, minScore float64) []models.RetrievedChunk {
	if k <= 0 || len(records) == 0 {
		return nil
	}

	scored := make([]models.RetrievedChunk, 0, len(records))
	for _, rec := range records {
		score := utils.CosineSimilarity(queryVec, rec.Embedding)
		if score >= minScore {
			scored = append(scored, models.RetrievedChunk{Record: rec, Score: score})
		}
	}

	// Stable sort keeps store order among equal scores.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored
}
