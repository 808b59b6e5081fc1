package mcp

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/unowned-ai/innervoice/pkg/journal"
	"github.com/unowned-ai/innervoice/pkg/notes"
)

// RegisterPingTool registers the simple ping tool.
func RegisterPingTool(s *server.MCPServer) {
	pingTool := mcp.NewTool("ping",
		mcp.WithDescription("Responds with 'pong' to check if the InnerVoice MCP server is alive."),
	)
	s.AddTool(pingTool, pingHandler)
}

func pingHandler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText("pong_innervoice"), nil
}

// RegisterCreateNoteTool registers the create_note tool.
func RegisterCreateNoteTool(s *server.MCPServer, svc *journal.Service) {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Writes a journal note, analyzes its emotions and returns the enriched note with reflection, response and expansion."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The journal note text.")),
	}
	s.AddTool(mcp.NewTool("create_note", append(opts, profileOptions()...)...), createNoteHandler(svc))
}

func createNoteHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content := stringArg(request, "content")
		if content == "" {
			return mcp.NewToolResultError("'content' parameter is required and must be a non-empty string."), nil
		}

		note, err := svc.CreateNote(ctx, content, profileArgs(request))
		if err != nil {
			return errorResult("create note", err), nil
		}
		return jsonResult(note)
	}
}

// RegisterGetNoteTool registers the get_note tool.
func RegisterGetNoteTool(s *server.MCPServer, svc *journal.Service) {
	getNoteTool := mcp.NewTool("get_note",
		mcp.WithDescription("Retrieves a note and its analysis by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The note id.")),
	)
	s.AddTool(getNoteTool, getNoteHandler(svc))
}

func getNoteHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := idArg(request, "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		note, err := svc.GetNote(ctx, id)
		if err != nil {
			return errorResult("get note", err), nil
		}
		return jsonResult(note)
	}
}

// RegisterListNotesTool registers the list_notes tool.
func RegisterListNotesTool(s *server.MCPServer, svc *journal.Service) {
	listNotesTool := mcp.NewTool("list_notes",
		mcp.WithDescription("Lists notes, newest first."),
		mcp.WithNumber("limit", mcp.Description(fmt.Sprintf("Optional page size. Defaults to %d, at most %d.", notes.DefaultListLimit, notes.MaxListLimit))),
		mcp.WithNumber("offset", mcp.Description("Optional number of notes to skip.")),
	)
	s.AddTool(listNotesTool, listNotesHandler(svc))
}

func listNotesHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		list, err := svc.ListNotes(ctx, intArg(request, "limit"), intArg(request, "offset"))
		if err != nil {
			return errorResult("list notes", err), nil
		}
		return jsonResult(list)
	}
}

// RegisterUpdateNoteTool registers the update_note tool.
func RegisterUpdateNoteTool(s *server.MCPServer, svc *journal.Service) {
	opts := []mcp.ToolOption{
		mcp.WithDescription("Replaces the text of a note and re-analyzes it."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The note id.")),
		mcp.WithString("content", mcp.Required(), mcp.Description("The new note text.")),
	}
	s.AddTool(mcp.NewTool("update_note", append(opts, profileOptions()...)...), updateNoteHandler(svc))
}

func updateNoteHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := idArg(request, "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		content := stringArg(request, "content")
		if content == "" {
			return mcp.NewToolResultError("'content' parameter is required and must be a non-empty string."), nil
		}

		note, err := svc.UpdateNote(ctx, id, content, profileArgs(request))
		if err != nil {
			return errorResult("update note", err), nil
		}
		return jsonResult(note)
	}
}

// RegisterDeleteNoteTool registers the delete_note tool.
func RegisterDeleteNoteTool(s *server.MCPServer, svc *journal.Service) {
	deleteNoteTool := mcp.NewTool("delete_note",
		mcp.WithDescription("Deletes a note permanently."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The note id.")),
	)
	s.AddTool(deleteNoteTool, deleteNoteHandler(svc))
}

func deleteNoteHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := idArg(request, "id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		if err := svc.DeleteNote(ctx, id); err != nil {
			return errorResult("delete note", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Note '%s' deleted successfully.", id)), nil
	}
}

// RegisterFindRelatedNotesTool registers the find_related_notes tool.
func RegisterFindRelatedNotesTool(s *server.MCPServer, svc *journal.Service) {
	relatedTool := mcp.NewTool("find_related_notes",
		mcp.WithDescription(fmt.Sprintf("Finds up to %d recent notes that share an emotion.", notes.DefaultRelatedLimit)),
		mcp.WithString("emotion", mcp.Required(), mcp.Description("Emotion label, e.g. 'sad' or 'hopeful'.")),
		mcp.WithString("exclude_id", mcp.Description("Optional note id to leave out, usually the note being viewed.")),
	)
	s.AddTool(relatedTool, findRelatedNotesHandler(svc))
}

func findRelatedNotesHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		emotion := stringArg(request, "emotion")
		if emotion == "" {
			return mcp.NewToolResultError("'emotion' parameter is required."), nil
		}

		exclude := uuid.Nil
		if stringArg(request, "exclude_id") != "" {
			id, err := idArg(request, "exclude_id")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			exclude = id
		}

		list, err := svc.FindRelated(ctx, emotion, exclude)
		if err != nil {
			return errorResult("find related notes", err), nil
		}
		return jsonResult(list)
	}
}

// RegisterSearchNotesTool registers the search_notes tool.
func RegisterSearchNotesTool(s *server.MCPServer, svc *journal.Service) {
	searchTool := mcp.NewTool("search_notes",
		mcp.WithDescription("Searches notes by text, emotions and date range, newest first."),
		mcp.WithString("query", mcp.Description("Optional case-insensitive text to look for in note content.")),
		mcp.WithString("emotions", mcp.Description("Optional comma-separated emotions; a note matches if it has any of them.")),
		mcp.WithString("from", mcp.Description("Optional inclusive start, RFC 3339 or YYYY-MM-DD.")),
		mcp.WithString("to", mcp.Description("Optional exclusive end, RFC 3339 or YYYY-MM-DD.")),
		mcp.WithNumber("limit", mcp.Description("Optional page size.")),
		mcp.WithNumber("offset", mcp.Description("Optional number of notes to skip.")),
	)
	s.AddTool(searchTool, searchNotesHandler(svc))
}

func searchNotesHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		from, err := timeArg(request, "from")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		to, err := timeArg(request, "to")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		list, err := svc.SearchNotes(ctx, notes.Filter{
			Query:    stringArg(request, "query"),
			Emotions: listArg(request, "emotions"),
			From:     from,
			To:       to,
			Limit:    intArg(request, "limit"),
			Offset:   intArg(request, "offset"),
		})
		if err != nil {
			return errorResult("search notes", err), nil
		}
		return jsonResult(list)
	}
}

// RegisterEmotionStatsTool registers the get_emotion_stats tool.
func RegisterEmotionStatsTool(s *server.MCPServer, svc *journal.Service) {
	statsTool := mcp.NewTool("get_emotion_stats",
		mcp.WithDescription("Summarizes moods and emotions across all notes: totals, weekly activity, average mood and tag counts."),
	)
	s.AddTool(statsTool, emotionStatsHandler(svc))
}

func emotionStatsHandler(svc *journal.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := svc.Stats(ctx)
		if err != nil {
			return errorResult("compute stats", err), nil
		}
		return jsonResult(stats)
	}
}
