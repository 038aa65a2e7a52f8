// Package pageservice drives the page creation workflow: resolve the
// selected categories, generate artifacts, render the initial page
// body, and write it to the page store.
package pageservice

import (
	"context"
	"fmt"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/generator"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/pagestore"
	"github.com/starford/othala/internal/resolver"
)

// Service coordinates the resolvers, the generator, and page storage.
type Service struct {
	multi *resolver.Multi
	pages pagestore.Provider
}

// New creates a page service.
func New(multi *resolver.Multi, pages pagestore.Provider) *Service {
	return &Service{multi: multi, pages: pages}
}

// CreateRequest carries one page creation. Category names must already
// be prefix-stripped by the caller.
type CreateRequest struct {
	Title      string
	Categories []string
	Values     map[string][]string
}

// CreateResult describes a successfully created page.
type CreateResult struct {
	Path      string
	Composite string
	Body      string
	Warnings  []models.Warning
}

// CreatePage resolves the selection and writes the rendered page. The
// whole request fails if any category is unresolvable; no partial page
// is ever written. An existing page at the same title is never
// overwritten.
func (s *Service) CreatePage(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("pageservice: title is required")
	}

	composed, err := s.multi.ResolveAll(req.Categories)
	if err != nil {
		return nil, err
	}
	arts := generator.Generate(composed)

	path := req.Title + ".wiki"
	if s.pages.Exists(path) {
		return nil, fmt.Errorf("pageservice: %s: %w", path, apperr.ErrAlreadyExists)
	}

	body := generator.RenderPage(arts.Units, req.Values)
	if err := s.pages.Write(path, []byte(body)); err != nil {
		return nil, err
	}

	return &CreateResult{
		Path:      path,
		Composite: arts.Name,
		Body:      body,
		Warnings:  composed.Warnings,
	}, nil
}

// Preview resolves and generates without writing anything.
func (s *Service) Preview(ctx context.Context, categories []string) (*generator.Artifacts, *models.ComposedSchema, error) {
	composed, err := s.multi.ResolveAll(categories)
	if err != nil {
		return nil, nil, err
	}
	return generator.Generate(composed), composed, nil
}
