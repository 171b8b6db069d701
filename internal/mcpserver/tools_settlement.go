package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"pocketpoker/internal/money"
	domain "pocketpoker/internal/season"
	"pocketpoker/internal/settlement"
	"pocketpoker/internal/store"
)

const maxToolRows = 200

func (s *Server) registerSettlementTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"settle",
			mcp.WithDescription("Compute who pays whom from per-player net results"),
			mcp.WithArray("rows", mcp.Required(),
				mcp.Description("Net results: positive is owed money, negative owes money"),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{"type": "string"},
						"net":  map[string]any{"type": "number"},
					},
					"required": []string{"name", "net"},
				}),
			),
			mcp.WithString("policy", mcp.Description("equal_split (default) or proportional")),
		),
		s.handleSettle,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"apply_prize_pool",
			mcp.WithDescription("Net each player's buy-ins against cash-out and move the prize pool to the top result"),
			mcp.WithArray("players", mcp.Required(),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":    map[string]any{"type": "string"},
						"buyIns":  map[string]any{"type": "integer"},
						"cashOut": map[string]any{"type": "number"},
					},
					"required": []string{"name"},
				}),
			),
			mcp.WithNumber("buyInAmount", mcp.Required(), mcp.Description("Amount of a single buy-in")),
			mcp.WithNumber("contribution", mcp.Description("Per-head prize contribution, 0 disables the pool")),
			mcp.WithString("tieWinner", mcp.Description("Name that takes the whole pool on a tie")),
			mcp.WithString("policy", mcp.Description("all_players (default) or non_winners_only")),
		),
		s.handleApplyPrizePool,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"preview_game",
			mcp.WithDescription("Settle a draft without saving it; unbalanced drafts are reported, not rejected"),
			mcp.WithObject("draft", mcp.Required(), mcp.Description("Draft: players[{name,buyIns,cashOut}], buyInAmount, prizeFromPot, prizeAmount, prizeTieWinner")),
			mcp.WithString("policy", mcp.Description("equal_split (default) or proportional")),
			mcp.WithString("prizePolicy", mcp.Description("all_players (default) or non_winners_only")),
		),
		s.handlePreviewGame,
	)
}

type settleArgs struct {
	Rows   []settlement.NetRow `json:"rows"`
	Policy string              `json:"policy"`
}

func (s *Server) handleSettle(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args settleArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	if len(args.Rows) > maxToolRows {
		return toolError("invalid_request", "too many rows"), nil
	}
	policy, err := settlement.ParsePolicy(args.Policy)
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	return toolResult(map[string]any{
		"policy": policy,
		"txns":   settlement.Settle(policy, args.Rows),
	}), nil
}

type prizeArgs struct {
	Players      []settlement.PlayerResult `json:"players"`
	BuyInAmount  money.Cents               `json:"buyInAmount"`
	Contribution money.Cents               `json:"contribution"`
	TieWinner    string                    `json:"tieWinner"`
	Policy       string                    `json:"policy"`
}

func (s *Server) handleApplyPrizePool(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args prizeArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	if len(args.Players) > maxToolRows {
		return toolError("invalid_request", "too many players"), nil
	}
	policy, err := settlement.ParseContributionPolicy(args.Policy)
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	players := settlement.ApplyPrizePool(args.Players, settlement.PrizeOptions{
		BuyInAmount:     args.BuyInAmount,
		Contribution:    args.Contribution,
		ManualTieWinner: args.TieWinner,
		Policy:          policy,
	})
	return toolResult(map[string]any{"policy": policy, "players": players}), nil
}

type previewArgs struct {
	Draft       *domain.DraftInput `json:"draft"`
	Policy      string             `json:"policy"`
	PrizePolicy string             `json:"prizePolicy"`
}

func (s *Server) handlePreviewGame(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args previewArgs
	if err := request.BindArguments(&args); err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	if args.Draft == nil {
		return toolError("invalid_request", "draft is required"), nil
	}
	policy, err := settlement.ParsePolicy(args.Policy)
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	prizePolicy, err := settlement.ParseContributionPolicy(args.PrizePolicy)
	if err != nil {
		return toolError("invalid_request", err.Error()), nil
	}
	draft := domain.SanitizeDraft(args.Draft, s.defaults, store.NewID)
	game, err := domain.BuildGame(draft, domain.GameOptions{
		ID:              "preview",
		Now:             time.Now(),
		Policy:          policy,
		PrizePolicy:     prizePolicy,
		AllowUnbalanced: true,
	})
	if err != nil {
		return mapDomainError(err), nil
	}
	return toolResult(map[string]any{
		"balanced": game.Totals.Balanced(),
		"game":     game,
	}), nil
}
