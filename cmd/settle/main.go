// Command settle prints who pays whom for a finished home game without running
// the server.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"pocketpoker/internal/money"
	"pocketpoker/internal/settlement"
)

type CLI struct {
	Run  RunCmd  `cmd:"" default:"withargs" help:"Settle a game from per-player buy-ins and cash-outs"`
	Rows RowsCmd `cmd:"" help:"Settle pre-computed net results"`
}

type outputFlags struct {
	Policy string `short:"p" help:"Settlement algorithm: equal_split or proportional" default:"equal_split"`
	Format string `short:"f" help:"Output format" enum:"table,csv,json" default:"table"`
}

type RunCmd struct {
	File        string  `arg:"" help:"Players file (.json or .csv), - for stdin"`
	BuyIn       float64 `help:"Amount of one buy-in" default:"50"`
	Prize       float64 `help:"Per-head prize contribution, 0 disables the pool" default:"20"`
	PrizePolicy string  `help:"Who pays into the prize pool: all_players or non_winners_only (all, non-winners)" default:"all_players"`
	TieWinner   string  `help:"Player that takes the whole pool on a tie"`
	outputFlags
}

type RowsCmd struct {
	File string `arg:"" help:"Net results file (.json or .csv), - for stdin"`
	outputFlags
}

type runContext struct {
	stdin  io.Reader
	stdout io.Writer
}

func (c *RunCmd) Run(rc *runContext) error {
	policy, err := settlement.ParsePolicy(c.Policy)
	if err != nil {
		return err
	}
	prizePolicy, err := settlement.ParseContributionPolicy(c.PrizePolicy)
	if err != nil {
		return err
	}
	players, err := readInput(c.File, rc.stdin, parsePlayersJSON, parsePlayersCSV)
	if err != nil {
		return err
	}
	adjusted := settlement.ApplyPrizePool(players, settlement.PrizeOptions{
		BuyInAmount:     money.FromFloat(c.BuyIn),
		Contribution:    money.FromFloat(c.Prize),
		ManualTieWinner: c.TieWinner,
		Policy:          prizePolicy,
	})
	txns := settlement.Settle(policy, settlement.NetRows(adjusted))
	return render(rc.stdout, c.Format, report{Policy: policy, Players: adjusted, Txns: txns})
}

func (c *RowsCmd) Run(rc *runContext) error {
	policy, err := settlement.ParsePolicy(c.Policy)
	if err != nil {
		return err
	}
	rows, err := readInput(c.File, rc.stdin, parseRowsJSON, parseRowsCSV)
	if err != nil {
		return err
	}
	return render(rc.stdout, c.Format, report{Policy: policy, Txns: settlement.Settle(policy, rows)})
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("settle"),
		kong.Description("Work out the transfers that settle a poker night."),
		kong.UsageOnError(),
	)
	if err := ctx.Run(&runContext{stdin: os.Stdin, stdout: os.Stdout}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		ctx.Exit(1)
	}
}
