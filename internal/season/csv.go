package season

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{
	"game_id", "created_at", "row", "name", "buy_ins", "buy_in_total", "cash_out",
	"net", "prize", "net_adj", "from", "to", "amount",
}

// WriteCSV exports every game as player rows followed by transaction rows. Quoting
// follows RFC 4180.
func WriteCSV(w io.Writer, s *Season) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, g := range s.Games {
		created := g.CreatedAt.UTC().Format(time.RFC3339)
		for _, p := range g.Players {
			rec := []string{
				g.ID, created, "player", p.Name, strconv.Itoa(p.BuyIns), p.BuyInTotal.String(),
				p.CashOut.String(), p.Net.String(), p.Prize.String(), p.NetAdj.String(), "", "", "",
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		for _, tx := range g.Txns {
			rec := []string{g.ID, created, "txn", "", "", "", "", "", "", "", tx.From, tx.To, tx.Amount.String()}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
