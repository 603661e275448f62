package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kuitang/editor-steps/internal/editor"
	"github.com/kuitang/editor-steps/internal/errs"
)

// Handler implements MCP tool call handling over an editor adapter.
type Handler struct {
	adapter *editor.Adapter
}

// NewHandler creates a new MCP handler.
func NewHandler(adapter *editor.Adapter) *Handler {
	return &Handler{adapter: adapter}
}

// createToolHandler returns a tool handler function for the given tool name.
func (h *Handler) createToolHandler(name string) func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		result, err := h.HandleToolCall(ctx, name, args)
		return result, nil, err
	}
}

// HandleToolCall routes tool calls to the matching handler.
func (h *Handler) HandleToolCall(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	switch name {
	case "editor_resolve":
		return h.handleResolve(ctx, arguments)
	case "editor_insert":
		return h.handleInsert(ctx, arguments)
	case "editor_contains":
		return h.handleContains(ctx, arguments)
	case "editor_matches":
		return h.handleMatches(ctx, arguments)
	case "editor_exec_command":
		return h.handleExecCommand(ctx, arguments)
	default:
		return newToolResultError(fmt.Sprintf("unknown tool: %s", name)), nil
	}
}

func (h *Handler) handleResolve(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	id := optionalString(args, "instance_id")
	ref, err := h.adapter.Resolve(ctx, id)
	if err != nil {
		return newToolResultDomainError(err), nil
	}
	return newToolResultText(marshalToolJSON(map[string]any{
		"instance_id": ref.ID,
		"status":      "ready",
	})), nil
}

func (h *Handler) handleInsert(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	content, ok := args["content"].(string)
	if !ok {
		return newToolResultError("content must be a string"), nil
	}
	field := optionalString(args, "field")

	if err := h.adapter.InsertContent(ctx, content, field); err != nil {
		return newToolResultDomainError(err), nil
	}
	return newToolResultText(marshalToolJSON(map[string]any{"inserted": true})), nil
}

func (h *Handler) handleContains(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	text, ok := args["text"].(string)
	if !ok {
		return newToolResultError("text must be a string"), nil
	}
	id := optionalString(args, "instance_id")

	if err := h.adapter.Contains(ctx, text, id); err != nil {
		return newToolResultDomainError(err), nil
	}
	return newToolResultText(marshalToolJSON(map[string]any{"contains": true})), nil
}

func (h *Handler) handleMatches(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	pattern, ok := args["pattern"].(string)
	if !ok {
		return newToolResultError("pattern must be a string"), nil
	}
	id := optionalString(args, "instance_id")

	if err := h.adapter.Matches(ctx, pattern, id); err != nil {
		return newToolResultDomainError(err), nil
	}
	return newToolResultText(marshalToolJSON(map[string]any{"matches": true})), nil
}

func (h *Handler) handleExecCommand(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	command, ok := args["command"].(string)
	if !ok {
		return newToolResultError("command must be a string"), nil
	}
	id := optionalString(args, "instance_id")
	data := args["data"]

	if err := h.adapter.ExecCommand(ctx, command, id, data); err != nil {
		return newToolResultDomainError(err), nil
	}
	return newToolResultText(marshalToolJSON(map[string]any{"executed": command})), nil
}

func optionalString(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

func marshalToolJSON(value any) string {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response","detail":%q}`, err.Error())
	}
	return string(data)
}

// newToolResultText creates a successful tool result with text content.
func newToolResultText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

// newToolResultError creates a tool result indicating an error.
func newToolResultError(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: message},
		},
		IsError: true,
	}
}

// newToolResultDomainError prefixes the error text with its code so
// clients can branch without parsing the message.
func newToolResultDomainError(err error) *mcp.CallToolResult {
	return newToolResultError(fmt.Sprintf("%s: %s", errs.CodeOf(err), err.Error()))
}
