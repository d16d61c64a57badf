package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"textbook-rag/internal/config"
	"textbook-rag/internal/ingest"
	"textbook-rag/internal/llm"
	"textbook-rag/internal/vectorstore"
)

func main() {
	docsPath := flag.String("docs-path", "./docs", "Path to the textbook markdown directory")
	baseURL := flag.String("base-url", "https://physical-ai-textbook.example.com", "Published site base URL for source links")
	chunkSize := flag.Int("chunk-size", 400, "Target chunk size in estimated tokens")
	overlap := flag.Int("overlap", 50, "Chunk overlap in estimated tokens")
	dryRun := flag.Bool("dry-run", false, "Chunk and report stats without embedding or storing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	if *chunkSize <= 0 || *overlap < 0 || *overlap >= *chunkSize {
		log.Fatalf("Invalid chunking parameters: chunk-size=%d overlap=%d", *chunkSize, *overlap)
	}

	ctx := context.Background()

	var store vectorstore.VectorStore
	var embedder ingest.Embedder

	// Dry runs only chunk and count, so external services stay untouched.
	if !*dryRun {
		qdrantStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL, cfg.QdrantAPIKey)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}

		if err := qdrantStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

		store = qdrantStore
		embedder = llm.NewEmbeddingsClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.EmbeddingModel, cfg.QdrantVectorSize)
	}

	pipeline := ingest.NewPipeline(store, embedder, cfg.QdrantCollection, *baseURL, *chunkSize, *overlap)

	slog.Info("Starting ingestion", "docs_path", *docsPath, "chunk_size", *chunkSize, "overlap", *overlap, "dry_run", *dryRun)

	stats, err := pipeline.IngestAll(ctx, *docsPath, *dryRun)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	slog.Info("Ingestion complete",
		"files_processed", stats.FilesProcessed,
		"files_skipped", stats.FilesSkipped,
		"chunks_created", stats.ChunksCreated,
		"tokens_estimated", stats.TokensEstimated,
	)
}
