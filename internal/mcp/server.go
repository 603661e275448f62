// Package mcp exposes the editor operations as MCP tools over the
// Streamable HTTP transport.
package mcp

import (
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kuitang/editor-steps/internal/editor"
	"github.com/kuitang/editor-steps/internal/obs"
)

// Server wraps the MCP server with editor tool handling.
type Server struct {
	mcpServer   *mcp.Server
	handler     *Handler
	httpHandler http.Handler
	log         *slog.Logger
}

// NewServer creates an MCP server exposing the editor tools.
func NewServer(adapter *editor.Adapter) *Server {
	handler := NewHandler(adapter)

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "editor-steps",
			Version: "1.0.0",
		},
		nil,
	)

	for _, tool := range ToolDefinitions() {
		toolCopy := tool
		mcp.AddTool(mcpServer, toolCopy, handler.createToolHandler(toolCopy.Name))
	}

	// Streamable HTTP handler (MCP spec 2025-03-26): one endpoint for
	// both POST (client messages) and GET (server-initiated SSE).
	httpHandler := mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			// JSON responses are valid for all operations and simpler
			// for clients without SSE support.
			JSONResponse: true,
			// Tool calls carry no session state, so the
			// initialize/initialized handshake can be skipped.
			Stateless: true,
		},
	)

	return &Server{
		mcpServer:   mcpServer,
		handler:     handler,
		httpHandler: httpHandler,
		log:         obs.Pkg("mcp"),
	}
}

// ServeHTTP implements http.Handler for the Streamable HTTP transport.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Mcp-Session-Id, Last-Event-ID, Authorization")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.log.Debug("mcp_request",
		"method", r.Method,
		"path", r.URL.Path,
		"remote", r.RemoteAddr,
		"mcp_session_id", r.Header.Get("Mcp-Session-Id"),
	)

	wrapped, recorder := obs.NewResponseRecorder(w)
	s.httpHandler.ServeHTTP(wrapped, r)

	if recorder.StatusCode() >= http.StatusBadRequest {
		s.log.Error("mcp_request_failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", recorder.StatusCode(),
			"remote", r.RemoteAddr,
		)
	}
}
