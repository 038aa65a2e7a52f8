package mcpserver

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/othala/internal/pageservice"
	"github.com/starford/othala/internal/pagestore"
	"github.com/starford/othala/internal/registry"
	"github.com/starford/othala/internal/resolver"
	"github.com/starford/othala/internal/testutil"
)

func testServer(t *testing.T) (*Server, pagestore.Provider) {
	t.Helper()

	dir, schemas := testutil.TestSchemaDir(t)
	testutil.WriteSchema(t, dir, "Person", `category: Person
properties:
  - name: name
    type: Text
    required: true
`)
	testutil.WriteSchema(t, dir, "Employee", `category: Employee
parent: Person
properties:
  - name: employer
    type: Page
`)

	db := testutil.TestRegistry(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := registry.Sync(db, schemas, logger); err != nil {
		t.Fatal(err)
	}

	pages, err := pagestore.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	inh := resolver.NewInheritance(schemas, db)
	multi := resolver.NewMulti(inh)
	svc := pageservice.New(multi, pages)

	return New(schemas, pages, db, inh, multi, svc), pages
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper, so the handler
	// functions are called directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_categories":
		result, err = srv.listCategories(ctx, req)
	case "get_effective_schema":
		result, err = srv.getEffectiveSchema(ctx, req)
	case "compose_schemas":
		result, err = srv.composeSchemas(ctx, req)
	case "generate_artifacts":
		result, err = srv.generateArtifacts(ctx, req)
	case "create_page":
		result, err = srv.createPage(ctx, req)
	case "get_schema_contract":
		result, err = srv.getSchemaContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListCategoriesTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "list_categories", map[string]interface{}{})
	text := resultText(r)
	if text != "Employee\nPerson" {
		t.Errorf("list = %q", text)
	}
}

func TestGetEffectiveSchemaTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_effective_schema", map[string]interface{}{
		"category": "Employee",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"category": "Employee"`) {
		t.Errorf("missing category:\n%s", text)
	}
	if !strings.Contains(text, `"employer"`) || !strings.Contains(text, `"name"`) {
		t.Errorf("missing inherited properties:\n%s", text)
	}
}

func TestGetEffectiveSchemaToolUnknown(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_effective_schema", map[string]interface{}{
		"category": "Ghost",
	})
	if !r.IsError {
		t.Error("expected error for unknown category")
	}
}

func TestComposeSchemasTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "compose_schemas", map[string]interface{}{
		"categories": "Person, Employee",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"property_sources"`) {
		t.Errorf("missing source map:\n%s", text)
	}
}

func TestGenerateArtifactsTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "generate_artifacts", map[string]interface{}{
		"categories": "Person",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"name": "Person"`) {
		t.Errorf("missing composite name:\n%s", text)
	}
}

func TestCreatePageTool(t *testing.T) {
	srv, pages := testServer(t)
	r := callTool(t, srv, "create_page", map[string]interface{}{
		"title":      "Ada",
		"categories": "Person",
		"values":     `{"name": "Ada Lovelace"}`,
	})
	text := resultText(r)
	if text != "created: Ada.wiki (composite Person)" {
		t.Errorf("create result = %q", text)
	}
	if !pages.Exists("Ada.wiki") {
		t.Error("page not written")
	}

	r = callTool(t, srv, "create_page", map[string]interface{}{
		"title":      "Ada",
		"categories": "Person",
	})
	if !r.IsError {
		t.Error("expected error for duplicate title")
	}
}

func TestCreatePageToolInvalidValues(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "create_page", map[string]interface{}{
		"title":      "Bad",
		"categories": "Person",
		"values":     "{not json",
	})
	if !r.IsError {
		t.Error("expected error for invalid values JSON")
	}
}

func TestSchemaContractTool(t *testing.T) {
	srv, _ := testServer(t)
	r := callTool(t, srv, "get_schema_contract", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "category:") {
		t.Errorf("contract missing document shape:\n%s", text)
	}
}

func TestSplitCategories(t *testing.T) {
	got := splitCategories(" Person , Employee ,, ")
	if len(got) != 2 || got[0] != "Person" || got[1] != "Employee" {
		t.Errorf("splitCategories = %v", got)
	}
}
