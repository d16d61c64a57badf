package ingest

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks textbook-rag/internal/ingest Embedder

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"textbook-rag/internal/contextutil"
	"textbook-rag/internal/llm"
	"textbook-rag/internal/vectorstore"
)

// minDocumentLength is the minimum cleaned content length, in runes, for a
// document to be worth indexing. Stub pages below this are skipped.
const minDocumentLength = 100

// Embedder generates embedding vectors for batches of texts.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Pipeline turns a directory of markdown documents into embedded vector
// points in the store.
type Pipeline struct {
	store        vectorstore.VectorStore
	embedder     Embedder
	collection   string
	baseURL      string
	chunkSize    int
	overlap      int
	batchSize    int
	retryBackoff time.Duration
}

// NewPipeline creates an ingestion pipeline. chunkSize and overlap are in
// estimated tokens. baseURL is the published site root used for source URLs.
func NewPipeline(store vectorstore.VectorStore, embedder Embedder, collection, baseURL string, chunkSize, overlap int) *Pipeline {
	return &Pipeline{
		store:        store,
		embedder:     embedder,
		collection:   collection,
		baseURL:      baseURL,
		chunkSize:    chunkSize,
		overlap:      overlap,
		batchSize:    100,
		retryBackoff: 5 * time.Second,
	}
}

// ProcessFile reads one markdown document and returns its chunks with
// metadata attached. Returns an empty slice for documents too short to
// index.
func (p *Pipeline) ProcessFile(docsPath, path string) ([]Chunk, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	relPath, err := filepath.Rel(docsPath, path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve relative path: %w", err)
	}

	meta, body := extractFrontmatter(string(raw))
	cleaned := cleanContent(body)

	if utf8.RuneCountInString(cleaned) < minDocumentLength {
		return nil, nil
	}

	chapter, part := parseChapterInfo(relPath)
	if chapter == "" {
		chapter = meta["title"]
	}
	if chapter == "" {
		base := filepath.Base(relPath)
		chapter = strings.TrimSuffix(base, filepath.Ext(base))
	}

	id := docID(relPath)
	sourceURL := buildSourceURL(p.baseURL, relPath)

	rawChunks := chunkContent(cleaned, p.chunkSize, p.overlap)

	chunks := make([]Chunk, 0, len(rawChunks))
	for i, rc := range rawChunks {
		anchor := createAnchor(rc.Heading)
		chunkURL := sourceURL
		if anchor != "" {
			chunkURL = sourceURL + "#" + anchor
		}
		chunks = append(chunks, Chunk{
			Content:    rc.Text,
			DocID:      id,
			Chapter:    chapter,
			Part:       part,
			Section:    rc.Heading,
			Anchor:     anchor,
			SourceURL:  chunkURL,
			FilePath:   filepath.ToSlash(relPath),
			ChunkIndex: i,
			TokenCount: estimateTokens(rc.Text),
		})
	}

	return chunks, nil
}

// IngestAll walks docsPath, chunks every markdown document, and embeds and
// upserts the results. A failing document is logged and skipped so one bad
// file cannot abort a full corpus run. With dryRun set, no embedding or
// storage calls are made.
func (p *Pipeline) IngestAll(ctx context.Context, docsPath string, dryRun bool) (*Stats, error) {
	logger := contextutil.LoggerFromContext(ctx)

	var files []string
	err := filepath.WalkDir(docsPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".md" || ext == ".mdx" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk docs directory: %w", err)
	}

	stats := &Stats{}

	for _, path := range files {
		chunks, err := p.ProcessFile(docsPath, path)
		if err != nil {
			logger.WarnContext(ctx, "skipping file", "path", path, "error", err)
			stats.FilesSkipped++
			continue
		}
		if len(chunks) == 0 {
			logger.InfoContext(ctx, "skipping short document", "path", path)
			stats.FilesSkipped++
			continue
		}

		if !dryRun {
			if err := p.indexChunks(ctx, chunks); err != nil {
				return stats, fmt.Errorf("failed to index %s: %w", path, err)
			}
		}

		stats.FilesProcessed++
		stats.ChunksCreated += len(chunks)
		for _, c := range chunks {
			stats.TokensEstimated += c.TokenCount
		}

		logger.InfoContext(ctx, "processed document", "path", path, "chunks", len(chunks), "dry_run", dryRun)
	}

	return stats, nil
}

// indexChunks embeds a document's chunks and upserts them as vector points.
func (p *Pipeline) indexChunks(ctx context.Context, chunks []Chunk) error {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := p.embedBatches(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed chunks: %w", err)
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		chunkID := fmt.Sprintf("%s_%d", c.DocID, c.ChunkIndex)
		points[i] = vectorstore.Point{
			// Deterministic UUID per chunk, so re-running ingestion
			// replaces points in place.
			ID:  uuid.NewSHA1(uuid.NameSpaceDNS, []byte(chunkID)).String(),
			Vec: vectors[i],
			Meta: map[string]any{
				"content":     c.Content,
				"chapter":     c.Chapter,
				"part":        c.Part,
				"section":     c.Section,
				"anchor":      c.Anchor,
				"source_url":  c.SourceURL,
				"file_path":   c.FilePath,
				"doc_id":      c.DocID,
				"chunk_id":    chunkID,
				"chunk_index": c.ChunkIndex,
				"token_count": c.TokenCount,
			},
		}
	}

	return p.store.Upsert(ctx, p.collection, points)
}

// embedBatches embeds texts in fixed-size batches, preserving input order.
// A rate-limited batch is retried once after a backoff; a second failure
// propagates.
func (p *Pipeline) embedBatches(ctx context.Context, texts []string) ([][]float32, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += p.batchSize {
		end := start + p.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		batchVectors, err := p.embedder.EmbedTexts(ctx, batch)
		if errors.Is(err, llm.ErrRateLimited) {
			logger.WarnContext(ctx, "embedding rate limited, backing off", "batch_start", start, "backoff", p.retryBackoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(p.retryBackoff):
			}
			batchVectors, err = p.embedder.EmbedTexts(ctx, batch)
		}
		if err != nil {
			return nil, err
		}

		vectors = append(vectors, batchVectors...)
	}

	return vectors, nil
}
