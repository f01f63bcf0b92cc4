package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/clipd/internal/config"
	"github.com/hpungsan/clipd/internal/engine"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"history_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"history_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"history_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"history_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"history_clear": {
		def:     clearToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"history_activate": {
		def:     activateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleActivate },
	},
	"history_stats": {
		def:     statsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStats },
	},
	"friction_status": {
		def:     frictionStatusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFrictionStatus },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with clipd tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(e *engine.Engine, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"clipd",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(e, cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(e *engine.Engine, cfg *config.Config, version string) error {
	s := NewServer(e, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
