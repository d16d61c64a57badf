package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"textbook-rag/internal/handlers"
	"textbook-rag/internal/rag"
	"textbook-rag/internal/storage"
	"textbook-rag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	RAGEngine      rag.Engine
	VectorStore    vectorstore.VectorStore
	ProfileRepo    storage.ProfileStore
	AuthClient     TokenValidator
	CollectionName string
	CORSOrigins    []string
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(deps *Deps) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS(deps.CORSOrigins))
	r.Use(OptionalAuth(deps.AuthClient))

	chatHandler := handlers.NewChatHandler(deps.RAGEngine)
	searchHandler := handlers.NewSearchHandler(deps.RAGEngine)
	healthHandler := handlers.NewHealthHandler(deps.VectorStore, deps.CollectionName)
	profileHandler := handlers.NewProfileHandler(deps.ProfileRepo)

	indexHandler, err := handlers.NewIndexHandler()
	if err != nil {
		return nil, fmt.Errorf("failed to create index handler: %w", err)
	}

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/chat", chatHandler)
		r.Method(http.MethodGet, "/search", searchHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
		r.Method(http.MethodGet, "/profile", profileHandler)
		r.Method(http.MethodPut, "/profile", profileHandler)
	})

	r.Method(http.MethodGet, "/", indexHandler)

	return r, nil
}
