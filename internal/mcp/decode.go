package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode binds MCP request arguments onto a typed request struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	if err := req.BindArguments(&result); err != nil {
		return result, fmt.Errorf("bind args: %w", err)
	}
	return result, nil
}
