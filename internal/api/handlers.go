package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/pageservice"
	"github.com/starford/othala/internal/registry"
	"github.com/starford/othala/internal/resolver"
)

// Handler holds API route handlers.
type Handler struct {
	inh   *resolver.Inheritance
	multi *resolver.Multi
	pages *pageservice.Service
	reg   registry.PropertyRegistry
}

// NewHandler creates a new Handler.
func NewHandler(inh *resolver.Inheritance, multi *resolver.Multi, pages *pageservice.Service, reg registry.PropertyRegistry) *Handler {
	return &Handler{inh: inh, multi: multi, pages: pages, reg: reg}
}

// stripCategoryPrefix removes a case-insensitive "Category:" prefix
// before a name reaches the resolution core.
func stripCategoryPrefix(name string) string {
	const prefix = "category:"
	trimmed := strings.TrimSpace(name)
	if len(trimmed) >= len(prefix) && strings.EqualFold(trimmed[:len(prefix)], prefix) {
		return strings.TrimSpace(trimmed[len(prefix):])
	}
	return trimmed
}

func stripCategoryPrefixes(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if s := stripCategoryPrefix(n); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ListCategories handles GET /api/categories.
//
//	@Summary		List registered categories
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoryListResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reg.ListCategories()
	if err != nil {
		slog.Error("list categories failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	names := make([]string, len(rows))
	for i, row := range rows {
		names[i] = row.Name
	}
	writeJSON(w, http.StatusOK, CategoryListResponse{Categories: names})
}

// GetEffectiveSchema handles GET /api/categories/{name}/schema.
//
//	@Summary		Resolve a category against its ancestor chain
//	@Tags			categories
//	@Produce		json
//	@Param			name	path		string	true	"Category name"
//	@Success		200		{object}	EffectiveSchemaResponse
//	@Failure		404		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/categories/{name}/schema [get]
func (h *Handler) GetEffectiveSchema(w http.ResponseWriter, r *http.Request) {
	name := stripCategoryPrefix(chi.URLParam(r, "name"))
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("category name is required"))
		return
	}
	eff, err := h.inh.Resolve(name)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrUnknownCategory):
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrCyclicInheritance):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		default:
			slog.Error("resolve failed", slog.String("category", name), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, effectiveSchemaResponse(eff))
}

// Resolve handles POST /api/resolve.
//
//	@Summary		Compose several categories into one deduplicated schema
//	@Tags			resolve
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ResolveRequest	true	"Ordered category selection"
//	@Success		200		{object}	ResolveResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resolve [post]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSelection(w, r)
	if !ok {
		return
	}
	composed, err := h.multi.ResolveAll(req)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resolveResponse(composed))
}

// Generate handles POST /api/generate.
//
//	@Summary		Generate templates and a composite form for a selection
//	@Tags			generate
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ResolveRequest	true	"Ordered category selection"
//	@Success		200		{object}	GenerateResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSelection(w, r)
	if !ok {
		return
	}
	arts, composed, err := h.pages.Preview(r.Context(), req)
	if err != nil {
		writeResolveError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse(arts, composed))
}

// CreatePage handles POST /api/pages.
//
//	@Summary		Create a page from a category selection and field values
//	@Tags			pages
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreatePageRequest	true	"Page to create"
//	@Success		201		{object}	CreatePageResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages [post]
func (h *Handler) CreatePage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("title is required"))
		return
	}

	res, err := h.pages.CreatePage(r.Context(), pageservice.CreateRequest{
		Title:      req.Title,
		Categories: stripCategoryPrefixes(req.Categories),
		Values:     normalizeValues(req.Values),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrAlreadyExists):
			writeJSON(w, http.StatusConflict, errorBody("page already exists"))
		case errors.Is(err, apperr.ErrEmptySelection):
			writeJSON(w, http.StatusBadRequest, errorBody("at least one category is required"))
		case errors.Is(err, apperr.ErrUnknownCategory):
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		case errors.Is(err, apperr.ErrCyclicInheritance):
			writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
		default:
			slog.Error("create page failed", slog.String("title", req.Title), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, CreatePageResponse{
		Path:      res.Path,
		Composite: res.Composite,
		Warnings:  warningDTOs(res.Warnings),
	})
}

// decodeSelection reads and prefix-strips a category selection body.
func decodeSelection(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return nil, false
	}
	return stripCategoryPrefixes(req.Categories), true
}

func writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrEmptySelection):
		writeJSON(w, http.StatusBadRequest, errorBody("at least one category is required"))
	case errors.Is(err, apperr.ErrUnknownCategory):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrCyclicInheritance):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody(err.Error()))
	default:
		slog.Error("resolve failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}
