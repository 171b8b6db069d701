package settlement

import (
	"testing"

	"pocketpoker/internal/money"
)

func c(v float64) money.Cents {
	return money.FromFloat(v)
}

func rows(pairs ...any) []NetRow {
	out := make([]NetRow, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, NetRow{Name: pairs[i].(string), Net: c(pairs[i+1].(float64))})
	}
	return out
}

func received(txns []Transaction) map[string]money.Cents {
	out := map[string]money.Cents{}
	for _, tx := range txns {
		out[tx.To] += tx.Amount
	}
	return out
}

func paid(txns []Transaction) map[string]money.Cents {
	out := map[string]money.Cents{}
	for _, tx := range txns {
		out[tx.From] += tx.Amount
	}
	return out
}

func assertWellFormed(t *testing.T, txns []Transaction) {
	t.Helper()
	for i, tx := range txns {
		if tx.From == tx.To {
			t.Fatalf("txn %d is a self-payment: %+v", i, tx)
		}
		if tx.Amount < 1 {
			t.Fatalf("txn %d has non-positive amount: %+v", i, tx)
		}
	}
}

func assertConserved(t *testing.T, in []NetRow, txns []Transaction) {
	t.Helper()
	got := received(txns)
	out := paid(txns)
	for _, r := range in {
		if r.Net > 0 && got[r.Name] != r.Net {
			t.Fatalf("%s received %s, want %s", r.Name, got[r.Name], r.Net)
		}
		if r.Net < 0 && out[r.Name] != -r.Net {
			t.Fatalf("%s paid %s, want %s", r.Name, out[r.Name], -r.Net)
		}
		if r.Net > 0 && out[r.Name] != 0 {
			t.Fatalf("winner %s paid %s", r.Name, out[r.Name])
		}
		if r.Net < 0 && got[r.Name] != 0 {
			t.Fatalf("loser %s received %s", r.Name, got[r.Name])
		}
	}
}
