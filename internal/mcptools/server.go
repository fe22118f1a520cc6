package mcptools

import (
	"context"
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewCodeIntelMCPServer creates an MCP server with all project tools registered.
func NewCodeIntelMCPServer(svc *CodeIntelService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "xcgraph",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "parse_project",
		Description: "Parse the Xcode project descriptor, resolve the folder hierarchy, index sources and rebuild the import graph. Returns record counts and graph statistics.",
	}, svc.ParseProject)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "project_tree",
		Description: "Render the resolved project folder hierarchy as an indented text tree.",
	}, svc.ProjectTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "import_closure",
		Description: "List every file reachable from a start file through quoted #import directives, pairing each header with its implementation file.",
	}, svc.ImportClosure)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_symbols",
		Description: "Search C-level declarations (functions, structs, enums, typedefs) by name substring match. Optionally filter by symbol kind and limit results.",
	}, svc.QuerySymbols)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Traverse the import graph upstream or downstream from a project file. Returns dependency chains up to the specified depth.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_impact",
		Description: "Compute the blast radius of modifying a set of files. Returns directly and transitively affected files with a risk score.",
	}, svc.AssessImpact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_clusters",
		Description: "Return groups of files connected by imports or header/implementation pairing, with cohesion scores.",
	}, svc.GetClusters)

	return server
}

// RunStdio serves the tools on stdin/stdout, blocking until stdin is closed
// or the context is cancelled.
func RunStdio(ctx context.Context, svc *CodeIntelService) error {
	return NewCodeIntelMCPServer(svc).Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP starts an HTTP server exposing the tools over streamable HTTP.
func RunHTTP(ctx context.Context, svc *CodeIntelService, addr string) error {
	server := NewCodeIntelMCPServer(svc)

	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Shutdown gracefully when context is cancelled.
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
