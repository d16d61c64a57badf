package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/yuin/goldmark"

	"textbook-rag/internal/contextutil"
)

const indexMarkdown = `# Physical AI & Humanoid Robotics Textbook Assistant

A retrieval-augmented question answering service over the textbook corpus.

## Endpoints

- ` + "`POST /api/chat`" + ` - ask a question, optionally with selected text and page context
- ` + "`GET /api/search`" + ` - raw similarity search (` + "`q`" + `, ` + "`limit`" + `, ` + "`chapter`" + `)
- ` + "`GET /api/profile`" + ` / ` + "`PUT /api/profile`" + ` - learning profile (requires authentication)
- ` + "`GET /api/health`" + ` - dependency health

## Example

    curl -X POST /api/chat \
      -H 'Content-Type: application/json' \
      -d '{"query": "What is a humanoid robot?", "session_id": "demo"}'
`

// IndexHandler serves a landing page describing the API.
type IndexHandler struct {
	html []byte
}

// NewIndexHandler creates an IndexHandler with the landing page rendered
// once at startup.
func NewIndexHandler() (*IndexHandler, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(indexMarkdown), &buf); err != nil {
		return nil, fmt.Errorf("failed to render index page: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Textbook Assistant API</title>\n</head>\n<body>\n")
	page.Write(buf.Bytes())
	page.WriteString("</body>\n</html>\n")

	return &IndexHandler{html: page.Bytes()}, nil
}

// ServeHTTP handles GET /.
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(h.html); err != nil {
		logger.ErrorContext(ctx, "failed to write index page", "error", err)
	}
}
