package client

import (
	"context"

	"github.com/viant/mcp-protocol/schema"
)

// Interface defines the client interface for all exported operations
type Interface interface {
	// Initialize performs the MCP handshake
	Initialize(ctx context.Context, options ...RequestOption) (*schema.InitializeResult, error)

	// ListTools lists tools
	ListTools(ctx context.Context, cursor *string, options ...RequestOption) (*schema.ListToolsResult, error)

	// CallTool calls a tool
	CallTool(ctx context.Context, params *schema.CallToolRequestParams, options ...RequestOption) (*schema.CallToolResult, error)

	// ListResources lists resources
	ListResources(ctx context.Context, cursor *string, options ...RequestOption) (*schema.ListResourcesResult, error)

	// ListResourceTemplates lists resource templates
	ListResourceTemplates(ctx context.Context, cursor *string, options ...RequestOption) (*schema.ListResourceTemplatesResult, error)

	// ReadResource reads a resource
	ReadResource(ctx context.Context, params *schema.ReadResourceRequestParams, options ...RequestOption) (*schema.ReadResourceResult, error)

	// ListPrompts lists prompts
	ListPrompts(ctx context.Context, cursor *string, options ...RequestOption) (*schema.ListPromptsResult, error)

	// GetPrompt gets a prompt
	GetPrompt(ctx context.Context, params *schema.GetPromptRequestParams, options ...RequestOption) (*schema.GetPromptResult, error)

	// Ping pings the server
	Ping(ctx context.Context, params *schema.PingRequestParams, options ...RequestOption) (*schema.PingResult, error)
}

// Ensure Client implements Interface
var _ Interface = (*Client)(nil)
