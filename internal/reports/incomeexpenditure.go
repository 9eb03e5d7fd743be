package reports

import (
	"sort"

	"conti/internal/core"
)

// BuildIncomeExpenditure groups income and expense entries by ledger, then
// by category within each ledger. Each level carries its own total; the
// surplus may be negative.
func BuildIncomeExpenditure(ledgers []core.Ledger, categories []core.Category, entries []core.Entry) IncomeExpenditure {
	byID := ledgerIndex(ledgers)
	catNames := categoryIndex(categories)

	type breakdown struct {
		ledger core.Ledger
		total  core.Money
		byCat  map[int64]*CategoryAmount
	}
	groups := make(map[int64]*breakdown)

	ie := IncomeExpenditure{}
	for _, e := range entries {
		l, ok := byID[e.LedgerID]
		if !ok || l.Type == core.LedgerBank {
			continue
		}
		signed := e.Signed(l.Type)

		g, ok := groups[l.ID]
		if !ok {
			g = &breakdown{ledger: l, byCat: make(map[int64]*CategoryAmount)}
			groups[l.ID] = g
		}
		g.total = g.total.Add(signed)
		accumulateCategory(g.byCat, e.CategoryID, catNames, signed)

		if l.Type == core.LedgerIncome {
			ie.TotalIncome = ie.TotalIncome.Add(signed)
		} else {
			ie.TotalExpense = ie.TotalExpense.Add(signed)
		}
	}

	for _, g := range groups {
		row := LedgerBreakdown{
			LedgerID:   g.ledger.ID,
			Name:       g.ledger.Name,
			Total:      g.total,
			Categories: sortedCategories(g.byCat),
		}
		if g.ledger.Type == core.LedgerIncome {
			ie.Income = append(ie.Income, row)
		} else {
			ie.Expense = append(ie.Expense, row)
		}
	}
	sort.Slice(ie.Income, func(i, j int) bool { return ie.Income[i].Name < ie.Income[j].Name })
	sort.Slice(ie.Expense, func(i, j int) bool { return ie.Expense[i].Name < ie.Expense[j].Name })

	ie.Surplus = ie.TotalIncome.Sub(ie.TotalExpense)
	return ie
}
