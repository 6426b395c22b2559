package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"university-rag-assistant/models"
)

// Vector store load failures. All of them are fatal at startup: the server
// must refuse to serve queries rather than silently return garbage matches.
var (
	ErrStoreNotFound     = errors.New("vector store file not found")
	ErrDimensionMismatch = errors.New("vector store dimension mismatch")
	ErrModelMismatch     = errors.New("vector store embedding model mismatch")
)

// VectorStore is the in-memory, read-only collection of chunk embeddings.
// It is built once by the offline ingestion step, loaded wholesale at server
// start and never mutated at runtime, so it is safe for any number of
// concurrent readers.
type VectorStore struct {
	header  models.StoreHeader
	records []models.StoreRecord
}

// NewVectorStore wraps freshly ingested records. Used by the ingestion
// pipeline before persisting.
func NewVectorStore(header models.StoreHeader, records []models.StoreRecord) *VectorStore {
	return &VectorStore{header: header, records: records}
}

// LoadVectorStore reads and validates a persisted store. It fails when the
// file is missing or unreadable, when any embedding's dimension disagrees
// with the header or with wantDim, or when the store was built by a
// different embedding model than the one configured.
func LoadVectorStore(path, wantModel string, wantDim int) (*VectorStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s (run the ingest command first)", ErrStoreNotFound, path)
		}
		return nil, fmt.Errorf("failed to read vector store %s: %w", path, err)
	}

	var file models.VectorStoreFile
	if err := json.Unmarshal(data, &file); err != nil || file.Records == nil {
		// Legacy layout: a bare JSON array of records with no header.
		var records []models.StoreRecord
		if arrErr := json.Unmarshal(data, &records); arrErr != nil || records == nil {
			return nil, fmt.Errorf("failed to parse vector store %s: %w", path, arrErr)
		}
		file = models.VectorStoreFile{
			StoreHeader: models.StoreHeader{Model: wantModel, Dimension: wantDim},
			Records:     records,
		}
	}

	if wantModel != "" && file.Model != "" && file.Model != wantModel {
		return nil, fmt.Errorf("%w: store was built with %q, server is configured for %q (re-run ingestion)",
			ErrModelMismatch, file.Model, wantModel)
	}

	dim := file.Dimension
	if dim == 0 {
		dim = wantDim
	}
	if wantDim > 0 && dim != wantDim {
		return nil, fmt.Errorf("%w: store has %d dimensions, embedder produces %d", ErrDimensionMismatch, dim, wantDim)
	}
	for i, rec := range file.Records {
		if len(rec.Embedding) != dim {
			return nil, fmt.Errorf("%w: record %d (%s) has %d dimensions, expected %d",
				ErrDimensionMismatch, i, rec.ID, len(rec.Embedding), dim)
		}
	}

	return &VectorStore{header: file.StoreHeader, records: file.Records}, nil
}

// Save persists the store atomically: written to a temp file in the target
// directory, then renamed over the destination.
func (vs *VectorStore) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	data, err := json.MarshalIndent(models.VectorStoreFile{
		StoreHeader: vs.header,
		Records:     vs.records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode vector store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".vector_store-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write vector store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Records returns the ordered store records. Callers must treat the slice
// as read-only.
func (vs *VectorStore) Records() []models.StoreRecord { return vs.records }

// Header returns the store's model tag.
func (vs *VectorStore) Header() models.StoreHeader { return vs.header }

// Len returns the number of chunk records in the store.
func (vs *VectorStore) Len() int { return len(vs.records) }

// NewStoreHeader builds the model tag for a freshly ingested store.
func NewStoreHeader(model, provider string, dimension int) models.StoreHeader {
	return models.StoreHeader{
		Model:     model,
		Provider:  provider,
		Dimension: dimension,
		CreatedAt: time.Now().UTC(),
	}
}
