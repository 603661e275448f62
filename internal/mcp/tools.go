package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

// ToolDefinitions returns the editor MCP tool definitions.
func ToolDefinitions() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        "editor_resolve",
			Description: "Editor tool. Resolve a rich-text editor instance on the current page and wait for it to report ready. Pass 'instance_id' to target a specific editor, or omit it to use the page's first (default) instance. Returns the resolved instance id. Fails when the page has no editor instances or the instance never becomes ready.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"instance_id": map[string]any{
						"type":        "string",
						"description": "Editor instance id (optional; default is the page's first instance)",
					},
				},
			},
		},
		{
			Name:        "editor_insert",
			Description: "Editor tool. Insert HTML content into a rich-text editor at the caret position. Pass 'content' (the HTML to insert) and optionally 'field' (the form field label or id whose editor should receive it). Without 'field' the page's default instance is used. The target editor must be ready; the call waits for readiness before inserting.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"content": map[string]any{
						"type":        "string",
						"description": "HTML content to insert",
					},
					"field": map[string]any{
						"type":        "string",
						"description": "Form field whose editor receives the content (optional)",
					},
				},
				"required": []string{"content"},
			},
		},
		{
			Name:        "editor_contains",
			Description: "Editor tool. Assert that a rich-text editor's current content contains the given text as a literal, case-sensitive substring. Pass 'text' and optionally 'instance_id'. Returns ok on success; fails with a content mismatch naming the instance when the text is absent.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{
						"type":        "string",
						"description": "Literal text the editor content must contain",
					},
					"instance_id": map[string]any{
						"type":        "string",
						"description": "Editor instance id (optional)",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "editor_matches",
			Description: "Editor tool. Assert that a rich-text editor's current content matches the given regular expression. Pass 'pattern' (RE2 syntax) and optionally 'instance_id'. An invalid pattern is rejected before the editor is consulted.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pattern": map[string]any{
						"type":        "string",
						"description": "Regular expression the editor content must match",
					},
					"instance_id": map[string]any{
						"type":        "string",
						"description": "Editor instance id (optional)",
					},
				},
				"required": []string{"pattern"},
			},
		},
		{
			Name:        "editor_exec_command",
			Description: "Editor tool. Execute a named editor command (e.g. 'bold', 'selectAll') against a rich-text editor instance. Pass 'command', optionally 'instance_id', and optionally 'data' (a JSON value forwarded to the command). Fails when the command throws or reports an unsuccessful (falsy) result.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"command": map[string]any{
						"type":        "string",
						"description": "Editor command name",
					},
					"instance_id": map[string]any{
						"type":        "string",
						"description": "Editor instance id (optional)",
					},
					"data": map[string]any{
						"description": "Payload forwarded to the command (optional)",
					},
				},
				"required": []string{"command"},
			},
		},
	}
}
