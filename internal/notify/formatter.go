package notify

import (
	"fmt"
	"strings"
	"time"

	"pocketpoker/internal/money"
	"pocketpoker/internal/notify/platforms"
	"pocketpoker/internal/season"
)

type Message = platforms.Message

const (
	// Discord rejects embeds with more than 25 fields.
	maxPlayerFields = 20
	maxTxnLines     = 30
	defaultFooter   = "pocketpoker"
)

// FormatGameSettled renders a settled game as a chat message: transfers in the
// description, one inline field per player.
func FormatGameSettled(seasonID string, g season.Game) Message {
	msg := Message{
		Title:     fmt.Sprintf("Game settled · %s", fallback(seasonID, season.DefaultID)),
		Color:     platforms.ColorSettled,
		Timestamp: eventTimestamp(g.CreatedAt),
		Footer:    defaultFooter + " · " + g.ID,
	}

	switch len(g.Txns) {
	case 0:
		msg.Content = "Nobody owes anything."
	case 1:
		msg.Content = "1 transfer to settle."
	default:
		msg.Content = fmt.Sprintf("%d transfers to settle.", len(g.Txns))
	}

	lines := make([]string, 0, len(g.Txns))
	for i, txn := range g.Txns {
		if i == maxTxnLines {
			lines = append(lines, fmt.Sprintf("… and %d more", len(g.Txns)-maxTxnLines))
			break
		}
		lines = append(lines, fmt.Sprintf("%s → %s $%s", txn.From, txn.To, txn.Amount))
	}
	msg.Description = strings.Join(lines, "\n")

	fields := make([]platforms.Field, 0, len(g.Players)+2)
	for i, p := range g.Players {
		if i == maxPlayerFields {
			break
		}
		value := signed(p.NetAdj)
		if p.Prize != 0 {
			value += fmt.Sprintf(" (prize %s)", signed(p.Prize))
		}
		fields = append(fields, platforms.Field{Name: p.Name, Value: value, Inline: true})
	}
	fields = append(fields, platforms.Field{
		Name:   "Pot",
		Value:  fmt.Sprintf("$%s in · $%s out", g.Totals.BuyIns, g.Totals.CashOuts),
		Inline: false,
	})
	if g.PerHead != nil {
		fields = append(fields, platforms.Field{
			Name:   "Prize pool",
			Value:  fmt.Sprintf("%s collects $%s from %d players", g.PerHead.Winner, g.PerHead.Amount, len(g.PerHead.Payers)),
			Inline: false,
		})
	}
	if g.Override != nil && g.Override.Unbalanced {
		msg.Color = platforms.ColorWarn
		fields = append(fields, platforms.Field{
			Name:   "Unbalanced",
			Value:  fmt.Sprintf("saved by %s with diff %s", fallback(g.Override.ByName, "unknown"), signed(g.Override.Diff)),
			Inline: false,
		})
	}
	msg.Fields = fields
	return msg
}

func signed(c money.Cents) string {
	if c > 0 {
		return "+" + c.String()
	}
	return c.String()
}

func eventTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fallback(v, d string) string {
	if strings.TrimSpace(v) == "" {
		return d
	}
	return v
}
