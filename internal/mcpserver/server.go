// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Othala schema tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/othala/internal/pageservice"
	"github.com/starford/othala/internal/pagestore"
	"github.com/starford/othala/internal/registry"
	"github.com/starford/othala/internal/resolver"
	"github.com/starford/othala/internal/schemastore"
)

// Server wraps the MCP server with Othala tools.
type Server struct {
	mcp     *server.MCPServer
	schemas schemastore.Provider
	pages   pagestore.Provider
	reg     registry.PropertyRegistry
	inh     *resolver.Inheritance
	multi   *resolver.Multi
	pageSvc *pageservice.Service
}

// New creates a new MCP server with all Othala tools registered.
func New(schemas schemastore.Provider, pages pagestore.Provider, reg registry.PropertyRegistry, inh *resolver.Inheritance, multi *resolver.Multi, pageSvc *pageservice.Service) *Server {
	s := &Server{schemas: schemas, pages: pages, reg: reg, inh: inh, multi: multi, pageSvc: pageSvc}

	s.mcp = server.NewMCPServer(
		"Othala",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List every category registered in the schema store."),
	), s.listCategories)

	s.mcp.AddTool(mcp.NewTool("get_effective_schema",
		mcp.WithDescription("Resolve a category against its full ancestor chain and return the "+
			"effective schema, including required/optional promotion warnings."),
		mcp.WithString("category", mcp.Required(), mcp.Description("Category name (without the Category: prefix)")),
	), s.getEffectiveSchema)

	s.mcp.AddTool(mcp.NewTool("compose_schemas",
		mcp.WithDescription("Compose several categories into one deduplicated schema with source "+
			"attribution. The first category declaring a field owns it."),
		mcp.WithString("categories", mcp.Required(), mcp.Description("Comma-separated category names, in selection order")),
	), s.composeSchemas)

	s.mcp.AddTool(mcp.NewTool("generate_artifacts",
		mcp.WithDescription("Generate entity templates and the composite creation form for a "+
			"category selection. Schema documents MUST follow the canonical format; read it via "+
			"the get_schema_contract tool or the othala://schema-format resource."),
		mcp.WithString("categories", mcp.Required(), mcp.Description("Comma-separated category names, in selection order")),
	), s.generateArtifacts)

	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new page from a category selection and field values."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Title of the new page")),
		mcp.WithString("categories", mcp.Required(), mcp.Description("Comma-separated category names")),
		mcp.WithString("values", mcp.Description("JSON object of field values (string or array of strings per field)")),
	), s.createPage)

	s.mcp.AddTool(mcp.NewTool("get_schema_contract",
		mcp.WithDescription("Returns the canonical Othala schema document contract. "+
			"Call this before authoring or editing category schema documents."),
	), s.getSchemaContract)

	// Resource: schema document contract.
	s.mcp.AddResource(
		mcp.NewResource("othala://schema-format", "Schema Document Contract",
			mcp.WithResourceDescription("Canonical YAML schema document format for category schemas."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSchemaFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func splitCategories(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func (s *Server) listCategories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, err := s.reg.ListCategories()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var names []string
	for _, r := range rows {
		names = append(names, r.Name)
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) getEffectiveSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	eff, err := s.inh.Resolve(category)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(eff, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) composeSchemas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	csv, err := req.RequireString("categories")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	composed, err := s.multi.ResolveAll(splitCategories(csv))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(composed, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) generateArtifacts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	csv, err := req.RequireString("categories")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	arts, _, err := s.pageSvc.Preview(ctx, splitCategories(csv))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(arts, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	csv, err := req.RequireString("categories")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	values := make(map[string][]string)
	if raw, vErr := req.RequireString("values"); vErr == nil && raw != "" {
		var flexible map[string]any
		if jsonErr := json.Unmarshal([]byte(raw), &flexible); jsonErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid values JSON: %v", jsonErr)), nil
		}
		for k, v := range flexible {
			switch val := v.(type) {
			case string:
				values[k] = []string{val}
			case []any:
				for _, item := range val {
					if str, ok := item.(string); ok {
						values[k] = append(values[k], str)
					}
				}
			}
		}
	}

	res, err := s.pageSvc.CreatePage(ctx, pageservice.CreateRequest{
		Title:      title,
		Categories: splitCategories(csv),
		Values:     values,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (composite %s)", res.Path, res.Composite)), nil
}

func (s *Server) getSchemaContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SchemaFormatContract), nil
}

func (s *Server) readSchemaFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "othala://schema-format",
			MIMEType: "text/markdown",
			Text:     SchemaFormatContract,
		},
	}, nil
}
