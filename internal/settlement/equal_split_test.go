package settlement

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSettleEqualSplitSingleWinner(t *testing.T) {
	got := SettleEqualSplit(rows("A", 30.0, "B", -10.0, "C", -20.0))
	want := []Transaction{
		{From: "C", To: "A", Amount: 2000},
		{From: "B", To: "A", Amount: 1000},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("transactions mismatch (-want +got):\n%s", diff)
	}
}

func TestSettleEqualSplitTwoEqualWinners(t *testing.T) {
	got := SettleEqualSplit(rows("A", 15.0, "B", 15.0, "C", -30.0))
	want := []Transaction{
		{From: "C", To: "A", Amount: 1500},
		{From: "C", To: "B", Amount: 1500},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("transactions mismatch (-want +got):\n%s", diff)
	}
}

func TestSettleEqualSplitCapsSaturatedWinner(t *testing.T) {
	in := rows("A", 20.0, "B", 10.0, "C", -15.0, "D", -15.0)
	got := SettleEqualSplit(in)
	assertWellFormed(t, got)
	assertConserved(t, in, got)

	// B saturates during D's first pass, so D's remainder goes to A in a second pass.
	want := []Transaction{
		{From: "C", To: "A", Amount: 750},
		{From: "C", To: "B", Amount: 750},
		{From: "D", To: "A", Amount: 750},
		{From: "D", To: "B", Amount: 250},
		{From: "D", To: "A", Amount: 500},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("transactions mismatch (-want +got):\n%s", diff)
	}
}

func TestSettleEqualSplitRemainderOnLastWinner(t *testing.T) {
	in := rows("A", 3.34, "B", 3.33, "C", 3.33, "D", -10.0)
	got := SettleEqualSplit(in)
	assertConserved(t, in, got)
	want := []Transaction{
		{From: "D", To: "A", Amount: 333},
		{From: "D", To: "B", Amount: 333},
		{From: "D", To: "C", Amount: 333},
		{From: "D", To: "A", Amount: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("transactions mismatch (-want +got):\n%s", diff)
	}
}

func TestSettleEqualSplitLoserOrder(t *testing.T) {
	got := SettleEqualSplit(rows("W", 30.0, "b", -10.0, "a", -10.0, "c", -10.0))
	var from []string
	for _, tx := range got {
		from = append(from, tx.From)
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, from); diff != "" {
		t.Fatalf("equal losses must settle in name order (-want +got):\n%s", diff)
	}
}

func TestSettleEqualSplitUnbalancedLeavesShortfall(t *testing.T) {
	in := rows("A", 20.0, "B", 15.0, "C", -30.0)
	got := SettleEqualSplit(in)
	assertWellFormed(t, got)
	recv := received(got)
	if short := c(20) - recv["A"]; short != c(5) {
		t.Fatalf("A shortfall = %s, want 5.00", short)
	}
	if recv["B"] != c(15) {
		t.Fatalf("B received %s, want 15.00", recv["B"])
	}
	if total := paid(got)["C"]; total != c(30) {
		t.Fatalf("C paid %s, want 30.00", total)
	}
}

func TestSettleEqualSplitUnbalancedLoserResidue(t *testing.T) {
	got := SettleEqualSplit(rows("A", 10.0, "B", -25.0))
	want := []Transaction{{From: "B", To: "A", Amount: 1000}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("transactions mismatch (-want +got):\n%s", diff)
	}
}

func TestSettleEqualSplitDegenerate(t *testing.T) {
	tests := []struct {
		name string
		in   []NetRow
	}{
		{"empty", nil},
		{"only winners", rows("A", 10.0, "B", 5.0)},
		{"only losers", rows("A", -10.0)},
		{"all zero", rows("A", 0.0, "B", 0.0)},
		{"noise below a cent", rows("A", 0.00004, "B", -0.00004)},
	}
	for _, tt := range tests {
		got := SettleEqualSplit(tt.in)
		if got == nil || len(got) != 0 {
			t.Fatalf("%s: expected empty non-nil list, got %#v", tt.name, got)
		}
	}
}

func TestSettleEqualSplitMergesDuplicateNames(t *testing.T) {
	got := SettleEqualSplit(rows("Sam", 10.0, "Sam", -4.0, "Kim", -6.0))
	assertWellFormed(t, got)
	want := []Transaction{{From: "Kim", To: "Sam", Amount: 600}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("transactions mismatch (-want +got):\n%s", diff)
	}
}

func TestSettleEqualSplitDoesNotMutateInput(t *testing.T) {
	in := rows("A", 15.0, "B", 15.0, "C", -30.0)
	before := append([]NetRow(nil), in...)
	_ = SettleEqualSplit(in)
	if diff := cmp.Diff(before, in); diff != "" {
		t.Fatalf("input mutated (-before +after):\n%s", diff)
	}
}
