package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/unowned-ai/innervoice/pkg/analysis"
	"github.com/unowned-ai/innervoice/pkg/journal"
)

func stringArg(request mcp.CallToolRequest, name string) string {
	s, _ := request.Params.Arguments[name].(string)
	return strings.TrimSpace(s)
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(request mcp.CallToolRequest, name string) int {
	switch v := request.Params.Arguments[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

// listArg splits a comma-separated argument, dropping blanks.
func listArg(request mcp.CallToolRequest, name string) []string {
	var out []string
	for _, part := range strings.Split(stringArg(request, name), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func idArg(request mcp.CallToolRequest, name string) (uuid.UUID, error) {
	raw := stringArg(request, name)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("'%s' parameter is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("'%s' is not a valid note id: %v", name, err)
	}
	return id, nil
}

// timeArg accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func timeArg(request mcp.CallToolRequest, name string) (time.Time, error) {
	raw := stringArg(request, name)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("'%s' must be RFC 3339 or YYYY-MM-DD", name)
	}
	return t, nil
}

// profileArgs builds a UserProfile from the optional profile arguments.
// It returns nil when none were given.
func profileArgs(request mcp.CallToolRequest) *analysis.UserProfile {
	p := analysis.UserProfile{
		Name:              stringArg(request, "name"),
		Age:               intArg(request, "age"),
		Interests:         listArg(request, "interests"),
		PersonalityTraits: listArg(request, "personality_traits"),
	}
	if mode := stringArg(request, "mode"); mode != "" {
		p.Mode = analysis.ParseMode(mode)
	}
	if p.Name == "" && p.Age == 0 && p.Mode == "" && len(p.Interests) == 0 && len(p.PersonalityTraits) == 0 {
		return nil
	}
	return &p
}

func profileOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("name", mcp.Description("Optional name the assistant uses to address the writer.")),
		mcp.WithNumber("age", mcp.Description("Optional age of the writer.")),
		mcp.WithString("mode", mcp.Enum("therapy", "mentor", "friend", "humorous"), mcp.Description("Optional inner dialogue mode. Defaults to 'friend'.")),
		mcp.WithString("interests", mcp.Description("Optional comma-separated interests.")),
		mcp.WithString("personality_traits", mcp.Description("Optional comma-separated personality traits.")),
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize result to JSON: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult turns a service error into a tool error message.
func errorResult(action string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, journal.ErrNoteNotFound):
		return mcp.NewToolResultError("Note not found.")
	case errors.Is(err, journal.ErrValidation):
		return mcp.NewToolResultError(fmt.Sprintf("Invalid request: %v", err))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err))
	}
}
