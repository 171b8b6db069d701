package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"pocketpoker/internal/ledger"
)

func (s *Server) registerSeasonTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"get_season",
			mcp.WithDescription("Read the season document: games, profiles, draft, lock and audit log"),
			mcp.WithString("season_id", mcp.Description("Season id, default season when empty")),
		),
		s.handleGetSeason,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"season_standings",
			mcp.WithDescription("Season standings, outstanding balances and unpaid prize contributions"),
			mcp.WithString("season_id", mcp.Description("Season id, default season when empty")),
		),
		s.handleSeasonStandings,
	)
}

func (s *Server) handleGetSeason(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.seasons.Get(ctx, request.GetString("season_id", ""))
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(doc), nil
}

func (s *Server) handleSeasonStandings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.seasons.Get(ctx, request.GetString("season_id", ""))
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"season_id": doc.SeasonID,
		"version":   doc.Version,
		"standings": ledger.Standings(doc.Games),
		"balances":  ledger.Balances(doc.Games),
		"unpaid":    ledger.Unpaid(doc.Games),
	}), nil
}
