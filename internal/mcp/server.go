package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"noteeasy/internal/identity"
	"noteeasy/internal/notes"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server exposing the note operations as tools
func NewServer(svc *notes.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"NoteEasy",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Tool: list_notes - Ordered, optionally tag-filtered listing
	s.AddTool(
		mcp.NewTool("list_notes",
			mcp.WithDescription("List notes ordered by a field, optionally restricted to a tag. Use this to browse or find notes."),
			mcp.WithString("sortBy",
				mcp.Description("Sort field: 'timestamp' (default), 'title' or 'category'"),
			),
			mcp.WithString("order",
				mcp.Description("Sort direction: 'asc' or 'desc' (default: desc)"),
			),
			mcp.WithString("tag",
				mcp.Description("Optional: only notes carrying this exact tag (e.g. '#work')"),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of notes to return (default: 50, max: 100)"),
			),
			mcp.WithString("cursor",
				mcp.Description("Optional: resume token from a previous page's nextCursor"),
			),
		),
		handleListNotes(svc),
	)

	// Tool: get_note - Fetch one note
	s.AddTool(
		mcp.NewTool("get_note",
			mcp.WithDescription("Get a specific note by its ID. Use this when you have a note ID and need the full content."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleGetNote(svc),
	)

	// Tool: get_history - Fetch a note's edit history
	s.AddTool(
		mcp.NewTool("get_history",
			mcp.WithDescription("Get a note's edit history, newest first. Each entry is the note's state before one edit, with the editor and time."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The note ID (24-character hex string)"),
			),
		),
		handleGetHistory(svc),
	)

	// Tool: create_note - Create a note
	s.AddTool(
		mcp.NewTool("create_note",
			mcp.WithDescription("Create a new note. Title, content and category are required; tags are optional '#'-prefixed tokens."),
			mcp.WithString("title", mcp.Required(), mcp.Description("Note title")),
			mcp.WithString("content", mcp.Required(), mcp.Description("Note body")),
			mcp.WithString("category", mcp.Required(), mcp.Description("Note category")),
			mcp.WithArray("tags", mcp.Description("Optional tags, each starting with '#'")),
			mcp.WithString("editor", mcp.Description("Name to attribute the note to")),
		),
		handleCreateNote(svc),
	)

	// Tool: update_note - Edit a note, recording history
	s.AddTool(
		mcp.NewTool("update_note",
			mcp.WithDescription("Update a note's title, content, category and tags. The previous state is recorded in the note's history."),
			mcp.WithString("id", mcp.Required(), mcp.Description("The note ID (24-character hex string)")),
			mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
			mcp.WithString("content", mcp.Required(), mcp.Description("New body")),
			mcp.WithString("category", mcp.Required(), mcp.Description("New category")),
			mcp.WithArray("tags", mcp.Description("New tags, each starting with '#'")),
			mcp.WithString("editor", mcp.Description("Name to attribute the edit to")),
		),
		handleUpdateNote(svc),
	)

	// Tool: delete_note - Delete a note and its history
	s.AddTool(
		mcp.NewTool("delete_note",
			mcp.WithDescription("Delete a note and its entire edit history. Deleting an already-absent note succeeds."),
			mcp.WithString("id", mcp.Required(), mcp.Description("The note ID (24-character hex string)")),
		),
		handleDeleteNote(svc),
	)

	return s
}

// actorFrom builds the acting identity from the optional editor argument.
// MCP clients are not bearer-authenticated, so attribution is declared.
func actorFrom(req mcp.CallToolRequest) identity.Identity {
	return identity.Identity{Name: req.GetString("editor", "")}
}

func tagsFrom(req mcp.CallToolRequest) []string {
	return req.GetStringSlice("tags", nil)
}

func handleListNotes(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		page, err := svc.ListPage(ctx, notes.PageQuery{
			ListQuery: notes.ListQuery{
				SortBy: req.GetString("sortBy", "timestamp"),
				Order:  req.GetString("order", "desc"),
				Tag:    req.GetString("tag", ""),
			},
			Cursor: req.GetString("cursor", ""),
			Limit:  req.GetInt("limit", 50),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list notes: %v", err)), nil
		}

		data, _ := json.MarshalIndent(page, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleGetNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		note, err := svc.Get(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get note: %v", err)), nil
		}

		data, _ := json.MarshalIndent(note, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleGetHistory(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		entries, err := svc.History(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get history: %v", err)), nil
		}

		data, _ := json.MarshalIndent(entries, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleCreateNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}
		category, err := req.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError("category is required"), nil
		}

		note, err := svc.Create(ctx, actorFrom(req), notes.NoteInput{
			Title:    title,
			Content:  content,
			Category: category,
			Tags:     tagsFrom(req),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create note: %v", err)), nil
		}

		data, _ := json.MarshalIndent(note, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleUpdateNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		title, err := req.RequireString("title")
		if err != nil {
			return mcp.NewToolResultError("title is required"), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcp.NewToolResultError("content is required"), nil
		}
		category, err := req.RequireString("category")
		if err != nil {
			return mcp.NewToolResultError("category is required"), nil
		}

		err = svc.Update(ctx, actorFrom(req), id, notes.NoteInput{
			Title:    title,
			Content:  content,
			Category: category,
			Tags:     tagsFrom(req),
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update note: %v", err)), nil
		}

		return mcp.NewToolResultText(`{"success": true}`), nil
	}
}

func handleDeleteNote(svc *notes.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		if err := svc.Delete(ctx, id); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete note: %v", err)), nil
		}

		return mcp.NewToolResultText(`{"success": true}`), nil
	}
}
