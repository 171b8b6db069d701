package settlement

import "sort"

// SettleProportional is greedy debtor/creditor matching: both sides sorted by
// magnitude (name breaks ties) and the current heads exchange the smaller amount.
func SettleProportional(rows []NetRow) []Transaction {
	creditors, debtors := partition(rows)
	if len(creditors) == 0 || len(debtors) == 0 {
		return []Transaction{}
	}
	sort.SliceStable(creditors, func(i, j int) bool {
		if creditors[i].need != creditors[j].need {
			return creditors[i].need > creditors[j].need
		}
		return creditors[i].name < creditors[j].name
	})
	sortLosers(debtors)

	txns := make([]Transaction, 0, len(creditors)+len(debtors))
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		d, c := &debtors[i], &creditors[j]
		give := d.loss
		if c.need < give {
			give = c.need
		}
		if give > 0 {
			txns = append(txns, Transaction{From: d.name, To: c.name, Amount: give})
		}
		d.loss -= give
		c.need -= give
		if d.loss <= 0 {
			i++
		}
		if c.need <= 0 {
			j++
		}
	}
	return txns
}
