package mcp

import (
	"log/slog"

	"github.com/roleplayhq/reports-mcp/internal/core/port"
	"github.com/roleplayhq/reports-mcp/internal/core/service"

	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/trace"
)

// NewServer creates an MCPServer with the report tools, workflow
// instructions, and logging hooks.
func NewServer(version string, schema *service.SchemaService, query *service.QueryService, viewName string, logger *slog.Logger, tracer trace.Tracer, inst port.Instrumentation) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithHooks(ToolCallHooks(logger, tracer, inst)),
		server.WithInstructions(serverInstructions),
	)

	RegisterTools(s, schema, query, viewName)

	return s
}
