package main

import (
	"context"
	"flag"
	"log"

	"university-rag-assistant/internal/ai"
	"university-rag-assistant/internal/config"
	"university-rag-assistant/internal/logger"
	"university-rag-assistant/services"
)

// Builds the vector store from the document corpus. Run this whenever the
// corpus or the embedding model changes; the server refuses to start
// against a store built with a different model.
func main() {
	docsPath := flag.String("docs", "", "path to the JSON corpus (overrides DOCS_PATH)")
	pdfDir := flag.String("pdf-dir", "", "directory of PDFs to ingest alongside the corpus (overrides PDF_DIR)")
	out := flag.String("out", "", "output path for the vector store (overrides VECTOR_STORE_PATH)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}
	if *docsPath != "" {
		cfg.DocsPath = *docsPath
	}
	if *pdfDir != "" {
		cfg.PDFDir = *pdfDir
	}
	if *out != "" {
		cfg.VectorStorePath = *out
	}

	logger.InitLogger(cfg)

	ctx := context.Background()

	embedder, err := ai.NewEmbedder(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize embedder:", err)
	}

	docs, err := services.LoadDocuments(cfg.DocsPath)
	if err != nil {
		log.Fatal("Failed to load corpus:", err)
	}
	logger.Info("Corpus loaded", "documents", len(docs), "path", cfg.DocsPath)

	if cfg.PDFDir != "" {
		pdfDocs, err := services.LoadPDFDocuments(cfg.PDFDir)
		if err != nil {
			log.Fatal("Failed to load PDFs:", err)
		}
		logger.Info("PDFs loaded", "documents", len(pdfDocs), "dir", cfg.PDFDir)
		docs = append(docs, pdfDocs...)
	}

	chunker := services.NewChunkerService(cfg.ChunkWindowWords, cfg.ChunkOverlapWords)
	ingestion := services.NewIngestionService(chunker, embedder)

	store, err := ingestion.Ingest(ctx, docs, cfg.VectorStorePath)
	if err != nil {
		log.Fatal("Ingestion failed:", err)
	}

	logger.Info("Ingestion complete",
		"records", store.Len(),
		"model", store.Header().Model,
		"dimension", store.Header().Dimension,
		"output", cfg.VectorStorePath,
	)
}
