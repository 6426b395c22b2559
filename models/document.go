package models

import "time"

// Document is a single corpus entry loaded at ingestion time.
// Documents are immutable once ingested.
type Document struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Chunk is a contiguous word-bounded slice of a source document.
// Consecutive chunks from the same document overlap by a fixed word count.
type Chunk struct {
	ID         string `json:"id"`
	DocID      string `json:"doc_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	ChunkIndex int    `json:"chunk_index"`
	// Word span within the source document, [StartWord, EndWord).
	StartWord int `json:"start_word"`
	EndWord   int `json:"end_word"`
}

// StoreRecord pairs a chunk with its embedding vector as persisted in the
// vector store file.
type StoreRecord struct {
	ID         string    `json:"id"`
	DocID      string    `json:"doc_id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	ChunkIndex int       `json:"chunk_index"`
	Embedding  []float64 `json:"embedding"`
}

// StoreHeader tags a vector store file with the embedding model that
// produced it. A store built with one model must never be served with
// another: the scores would be meaningless.
type StoreHeader struct {
	Model     string    `json:"model"`
	Provider  string    `json:"provider"`
	Dimension int       `json:"dimension"`
	CreatedAt time.Time `json:"created_at"`
}

// VectorStoreFile is the persisted form of the vector store.
type VectorStoreFile struct {
	StoreHeader
	Records []StoreRecord `json:"records"`
}

// RetrievedChunk is a store record with its similarity score for a query.
type RetrievedChunk struct {
	Record StoreRecord `json:"record"`
	Score  float64     `json:"score"`
}
