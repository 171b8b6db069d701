package mcpserver

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	appseason "pocketpoker/internal/app/season"
)

func toolResult(data any) *mcp.CallToolResult {
	return mcp.NewToolResultStructuredOnly(data)
}

func toolError(code, message string) *mcp.CallToolResult {
	result := mcp.NewToolResultStructured(
		map[string]any{
			"error": map[string]any{
				"code":    code,
				"message": message,
			},
		},
		fmt.Sprintf("%s: %s", code, message),
	)
	result.IsError = true
	return result
}

func mapDomainError(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return toolError("internal_error", "unknown error")
	case errors.Is(err, appseason.ErrInvalidRequest), errors.Is(err, appseason.ErrInvalidDraft):
		return toolError("invalid_request", err.Error())
	case errors.Is(err, appseason.ErrEmptyGame):
		return toolError("empty_game", err.Error())
	case errors.Is(err, appseason.ErrDuplicatePlayer):
		return toolError("duplicate_player", err.Error())
	case errors.Is(err, appseason.ErrUnbalanced):
		return toolError("unbalanced_game", err.Error())
	case errors.Is(err, appseason.ErrGameNotFound):
		return toolError("not_found", err.Error())
	default:
		return toolError("internal_error", err.Error())
	}
}
