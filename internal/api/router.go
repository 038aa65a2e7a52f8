package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/pageservice"
	"github.com/starford/othala/internal/registry"
	"github.com/starford/othala/internal/resolver"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(inh *resolver.Inheritance, multi *resolver.Multi, pages *pageservice.Service, reg registry.PropertyRegistry, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(inh, multi, pages, reg)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Category catalog and per-category resolution.
	r.Get("/categories", h.ListCategories)
	r.Get("/categories/{name}/schema", h.GetEffectiveSchema)

	// Multi-category composition and artifact generation.
	r.Post("/resolve", h.Resolve)
	r.Post("/generate", h.Generate)

	// Page creation.
	r.Post("/pages", h.CreatePage)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
