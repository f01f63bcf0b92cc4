package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/clipd/internal/clip"
	"github.com/hpungsan/clipd/internal/config"
	"github.com/hpungsan/clipd/internal/engine"
	"github.com/hpungsan/clipd/internal/errors"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	engine *engine.Engine
	cfg    *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(e *engine.Engine, cfg *config.Config) *Handlers {
	return &Handlers{engine: e, cfg: cfg}
}

// Request types for each tool

// ListRequest represents the arguments for history_list.
type ListRequest struct {
	Limit int    `json:"limit,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

// SearchRequest represents the arguments for history_search.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// GetRequest represents the arguments for history_get.
type GetRequest struct {
	ID string `json:"id"`
}

// DeleteRequest represents the arguments for history_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// ActivateRequest represents the arguments for history_activate.
type ActivateRequest struct {
	ID string `json:"id"`
}

// entryDetail is the full-content response shape for history_get.
type entryDetail struct {
	clip.Summary
	Content string `json:"content"`
}

func summarize(entries []clip.Entry) []clip.Summary {
	out := make([]clip.Summary, len(entries))
	for i := range entries {
		out[i] = entries[i].ToSummary()
	}
	return out
}

func clamp(entries []clip.Entry, limit int) []clip.Entry {
	if limit > 0 && limit < len(entries) {
		return entries[:limit]
	}
	return entries
}

// Handler implementations

// HandleList handles the history_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Kind != "" && !clip.Kind(input.Kind).Valid() {
		return errorResult(errors.NewInvalidRequest("unknown kind: " + input.Kind)), nil
	}

	entries := h.engine.FetchAll()
	if input.Kind != "" {
		filtered := entries[:0]
		for _, e := range entries {
			if e.Kind == clip.Kind(input.Kind) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}
	entries = clamp(entries, input.Limit)

	return successResult(map[string]any{
		"entries": summarize(entries),
		"total":   len(entries),
	})
}

// HandleSearch handles the history_search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entries := clamp(h.engine.Search(input.Query), input.Limit)

	return successResult(map[string]any{
		"entries": summarize(entries),
		"total":   len(entries),
	})
}

// HandleGet handles the history_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	entry, ok := h.engine.Get(input.ID)
	if !ok {
		return errorResult(errors.NewNotFound(input.ID)), nil
	}

	return successResult(entryDetail{
		Summary: entry.ToSummary(),
		Content: entry.Payload.Display(),
	})
}

// HandleDelete handles the history_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	h.engine.Delete(input.ID)
	return successResult(map[string]any{"deleted": input.ID})
}

// HandleClear handles the history_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.engine.Clear()
	return successResult(map[string]any{"cleared": true})
}

// HandleActivate handles the history_activate tool call.
func (h *Handlers) HandleActivate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ActivateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	if !h.engine.TrackActivation(input.ID) {
		return errorResult(errors.NewNotFound(input.ID)), nil
	}
	entry, _ := h.engine.Get(input.ID)

	return successResult(map[string]any{
		"activated": true,
		"entry":     entry.ToSummary(),
	})
}

// HandleStats handles the history_stats tool call.
func (h *Handlers) HandleStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.engine.Stats())
}

// HandleFrictionStatus handles the friction_status tool call.
func (h *Handlers) HandleFrictionStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(map[string]any{
		"state":      string(h.engine.FrictionState()),
		"show_guide": h.engine.ShouldShowFrictionGuide(),
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if clipErr, ok := err.(*errors.ClipError); ok {
		errorObj := map[string]any{
			"code":    clipErr.Code,
			"message": clipErr.Message,
			"status":  clipErr.Status,
		}
		if clipErr.Code != errors.ErrInternal && clipErr.Details != nil {
			errorObj["details"] = clipErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
