package rag

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_engine.go -package=mocks textbook-rag/internal/rag Engine,Embedder,Generator

import (
	"context"
	"errors"
	"fmt"

	"textbook-rag/internal/contextutil"
	"textbook-rag/internal/llm"
	"textbook-rag/internal/vectorstore"
)

const (
	// citationScoreThreshold is the minimum relevance score for a retrieved
	// chunk to appear as a citation.
	citationScoreThreshold = 0.5
	// snippetLength is the citation snippet size in runes.
	snippetLength = 200
	// selectionEmbedLimit bounds how much selected text is folded into the
	// embedding input.
	selectionEmbedLimit = 500
)

// Embedder produces an embedding vector for a single text.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Generator produces a chat completion from a system prompt and user query.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userQuery string) (string, error)
}

// Engine runs the retrieval-augmented pipeline over the textbook corpus.
type Engine interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Search(ctx context.Context, query string, limit int, chapter string) ([]SearchResult, error)
}

type engine struct {
	embedder   Embedder
	store      vectorstore.VectorStore
	collection string
	generator  Generator
	model      string
	maxChunks  int
}

// NewEngine creates a RAG engine. model names the chat model for provenance
// reporting. maxChunks is the retrieval limit for chat queries.
func NewEngine(embedder Embedder, store vectorstore.VectorStore, collection string, generator Generator, model string, maxChunks int) Engine {
	return &engine{
		embedder:   embedder,
		store:      store,
		collection: collection,
		generator:  generator,
		model:      model,
		maxChunks:  maxChunks,
	}
}

// Chat answers a question from the textbook. The pipeline runs off-topic
// detection, query embedding, retrieval, generation, and citation assembly.
// A rate-limited generator degrades to a busy message instead of failing
// the request.
func (e *engine) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	// Selected text anchors the query to the page, so the keyword check
	// only applies to free-standing questions.
	if req.SelectedText == "" && isLikelyOffTopic(req.Query) {
		logger.InfoContext(ctx, "query rejected as off-topic", "session_id", req.SessionID)
		return &ChatResponse{
			ResponseText:   offTopicResponse,
			Sources:        []Citation{},
			Provenance:     Provenance{ChunksRetrieved: 0, ModelUsed: e.model, Confidence: 0.0},
			ConversationID: req.SessionID,
			IsOffTopic:     true,
			Status:         "OK",
		}, nil
	}

	embedText := req.Query
	if req.SelectedText != "" {
		embedText = fmt.Sprintf("%s\n\nContext: %s", req.Query, truncateRunes(req.SelectedText, selectionEmbedLimit))
	}

	queryVector, err := e.embedder.EmbedText(ctx, embedText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var chunks []retrievedChunk
	if req.SelectedText != "" {
		results, err := e.store.Search(ctx, e.collection, queryVector, e.maxChunks, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve chunks: %w", err)
		}
		chunks = rerankBySelection(chunksFromResults(results), req.SelectedText)
	} else {
		var filters map[string]any
		if req.PageContext != nil && req.PageContext.ChapterID != "" {
			filters = map[string]any{"chapter": req.PageContext.ChapterID}
		}
		results, err := e.store.Search(ctx, e.collection, queryVector, e.maxChunks, filters)
		if err != nil {
			return nil, fmt.Errorf("failed to retrieve chunks: %w", err)
		}
		chunks = chunksFromResults(results)
	}

	responseText, confidence, isOffTopic, err := e.generate(ctx, req, chunks)
	if err != nil {
		return nil, err
	}

	citations := make([]Citation, 0)
	for _, chunk := range chunks {
		if chunk.Score > citationScoreThreshold {
			citations = append(citations, Citation{
				Chapter:        chunk.Chapter,
				Section:        chunk.Section,
				URL:            chunk.URL,
				Anchor:         chunk.Anchor,
				Snippet:        truncateRunes(chunk.Content, snippetLength),
				RelevanceScore: chunk.Score,
			})
		}
	}

	return &ChatResponse{
		ResponseText:   responseText,
		Sources:        citations,
		Provenance:     Provenance{ChunksRetrieved: len(chunks), ModelUsed: e.model, Confidence: confidence},
		ConversationID: req.SessionID,
		IsOffTopic:     isOffTopic,
		Status:         "OK",
	}, nil
}

// generate produces the response text for the retrieved chunks. With no
// chunks the generator is not called and a canned no-results message is
// returned.
func (e *engine) generate(ctx context.Context, req ChatRequest, chunks []retrievedChunk) (text string, confidence float64, isOffTopic bool, err error) {
	logger := contextutil.LoggerFromContext(ctx)

	if len(chunks) == 0 {
		return noResultsResponse, 0.0, false, nil
	}

	systemPrompt := buildSystemPrompt(chunks, req.History, req.Query, req.SelectedText)

	responseText, err := e.generator.Generate(ctx, systemPrompt, req.Query)
	if err != nil {
		if errors.Is(err, llm.ErrRateLimited) {
			logger.WarnContext(ctx, "generator rate limited", "session_id", req.SessionID)
			return busyResponse, 0.0, false, nil
		}
		return "", 0, false, fmt.Errorf("failed to generate response: %w", err)
	}

	total := 0.0
	for _, chunk := range chunks {
		total += chunk.Score
	}
	confidence = total / float64(len(chunks))

	return responseText, confidence, detectRefusal(responseText), nil
}

// Search embeds a query and returns raw similarity hits without generation.
func (e *engine) Search(ctx context.Context, query string, limit int, chapter string) ([]SearchResult, error) {
	queryVector, err := e.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	var filters map[string]any
	if chapter != "" {
		filters = map[string]any{"chapter": chapter}
	}

	results, err := e.store.Search(ctx, e.collection, queryVector, limit, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	searchResults := make([]SearchResult, 0, len(results))
	for _, chunk := range chunksFromResults(results) {
		searchResults = append(searchResults, SearchResult{
			ChunkID: chunk.ChunkID,
			Content: chunk.Content,
			Chapter: chunk.Chapter,
			Section: chunk.Section,
			Score:   chunk.Score,
			URL:     chunk.URL,
		})
	}

	return searchResults, nil
}

// chunksFromResults unpacks store results into typed chunks, tolerating
// missing payload fields.
func chunksFromResults(results []vectorstore.SearchResult) []retrievedChunk {
	chunks := make([]retrievedChunk, 0, len(results))
	for _, result := range results {
		chunks = append(chunks, retrievedChunk{
			ChunkID: metaString(result.Meta, "chunk_id"),
			Content: metaString(result.Meta, "content"),
			Chapter: metaString(result.Meta, "chapter"),
			Section: metaString(result.Meta, "section"),
			URL:     metaString(result.Meta, "source_url"),
			Anchor:  metaString(result.Meta, "anchor"),
			Score:   float64(result.Score),
		})
	}
	return chunks
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if s, ok := meta[key].(string); ok {
		return s
	}
	return ""
}

// truncateRunes returns at most limit runes of s. Truncation is by rune so
// multibyte characters are never split.
func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
