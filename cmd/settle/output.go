package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/pterm/pterm"

	"pocketpoker/internal/settlement"
)

type report struct {
	Policy  settlement.Policy                `json:"policy"`
	Players []settlement.PrizeAdjustedResult `json:"players,omitempty"`
	Txns    []settlement.Transaction         `json:"txns"`
}

func render(w io.Writer, format string, r report) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "csv":
		return renderCSV(w, r)
	default:
		return renderTable(w, r)
	}
}

func renderCSV(w io.Writer, r report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", "amount"}); err != nil {
		return err
	}
	for _, tx := range r.Txns {
		if err := cw.Write([]string{tx.From, tx.To, tx.Amount.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderTable(w io.Writer, r report) error {
	if len(r.Players) > 0 {
		data := pterm.TableData{{"Player", "Buy-ins", "Cash-out", "Net", "Prize", "Adjusted"}}
		for _, p := range r.Players {
			data = append(data, []string{
				p.Name,
				fmt.Sprintf("%d × %s", p.BuyIns, p.BuyInTotal.DivRound(max(p.BuyIns, 1))),
				p.CashOut.String(),
				p.Net.String(),
				p.Prize.String(),
				p.NetAdj.String(),
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithWriter(w).WithData(data).Render(); err != nil {
			return err
		}
	}

	if len(r.Txns) == 0 {
		_, err := fmt.Fprintln(w, "Nobody owes anything.")
		return err
	}
	data := pterm.TableData{{"From", "To", "Amount"}}
	for _, tx := range r.Txns {
		data = append(data, []string{tx.From, tx.To, tx.Amount.String()})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithBoxed().WithWriter(w).WithData(data).Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d transfers (%s)\n", len(r.Txns), r.Policy)
	return err
}
