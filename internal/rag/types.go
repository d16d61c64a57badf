package rag

// PageContext identifies the textbook page the user is reading.
type PageContext struct {
	ChapterID string `json:"chapter_id,omitempty"`
	URL       string `json:"url,omitempty"`
}

// Message is a single turn of conversation history supplied by the client.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a question posed to the assistant, with optional page
// context, selected text, and prior conversation turns.
type ChatRequest struct {
	Query        string       `json:"query"`
	SessionID    string       `json:"session_id"`
	SelectedText string       `json:"selected_text,omitempty"`
	PageContext  *PageContext `json:"page_context,omitempty"`
	History      []Message    `json:"conversation_history,omitempty"`
}

// Citation points a response back to the textbook passage that supports it.
type Citation struct {
	Chapter        string  `json:"chapter"`
	Section        string  `json:"section"`
	URL            string  `json:"url"`
	Anchor         string  `json:"anchor"`
	Snippet        string  `json:"snippet"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Provenance records how a response was produced.
type Provenance struct {
	ChunksRetrieved int     `json:"chunks_retrieved"`
	ModelUsed       string  `json:"model_used"`
	Confidence      float64 `json:"confidence"`
}

// ChatResponse is the assistant's answer with citations and provenance.
type ChatResponse struct {
	ResponseText   string     `json:"response_text"`
	Sources        []Citation `json:"sources"`
	Provenance     Provenance `json:"provenance"`
	ConversationID string     `json:"conversation_id"`
	IsOffTopic     bool       `json:"is_off_topic"`
	Status         string     `json:"status"`
}

// SearchResult is a single hit from the search-only path.
type SearchResult struct {
	ChunkID string  `json:"chunk_id"`
	Content string  `json:"content"`
	Chapter string  `json:"chapter"`
	Section string  `json:"section"`
	Score   float64 `json:"score"`
	URL     string  `json:"url,omitempty"`
}

// retrievedChunk is a chunk pulled from the vector store with its payload
// fields unpacked, used internally by the pipeline.
type retrievedChunk struct {
	ChunkID string
	Content string
	Chapter string
	Section string
	URL     string
	Anchor  string
	Score   float64
}
