package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions. Descriptions are what an MCP client's model sees,
// so they state behavior, not implementation.

var listToolDef = mcp.NewTool("history_list",
	mcp.WithDescription("List clipboard history entries, newest first. Returns previews, not full content; use history_get for the full payload."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of entries to return. Defaults to the full history window."),
	),
	mcp.WithString("kind",
		mcp.Description("Only return entries of this content kind (text, url, email, color, code, json, number, phone, image, file)."),
	),
)

var searchToolDef = mcp.NewTool("history_search",
	mcp.WithDescription("Fuzzy-search clipboard history. Contiguous matches rank above scattered ones; an empty query returns everything in recency order."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Search text. Matched case-insensitively against entry content and previews."),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return."),
	),
)

var getToolDef = mcp.NewTool("history_get",
	mcp.WithDescription("Fetch one clipboard history entry by id, including its full content."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Entry id as returned by history_list or history_search."),
	),
)

var deleteToolDef = mcp.NewTool("history_delete",
	mcp.WithDescription("Delete one clipboard history entry. Deleting an id that does not exist is not an error."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Entry id to delete."),
	),
)

var clearToolDef = mcp.NewTool("history_clear",
	mcp.WithDescription("Delete all clipboard history entries."),
)

var activateToolDef = mcp.NewTool("history_activate",
	mcp.WithDescription("Record that an entry was used: bumps its use count and recency, and feeds the repeated-use detector."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Entry id that was activated."),
	),
)

var statsToolDef = mcp.NewTool("history_stats",
	mcp.WithDescription("Summarize the live history: entry counts by kind, total uses, and the effective retention limit."),
)

var frictionStatusToolDef = mcp.NewTool("friction_status",
	mcp.WithDescription("Report the repeated-use detector state and whether the enhanced-paste suggestion should be shown."),
)
