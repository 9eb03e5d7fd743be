package reports

import (
	"sort"

	"conti/internal/core"
)

// NetBalance sums entries under the ledger type's sign convention. Used
// for opening balances (entries strictly before the scope) and anywhere a
// single signed figure per ledger is needed.
func NetBalance(t core.LedgerType, entries []core.Entry) core.Money {
	var total core.Money
	for _, e := range entries {
		total = total.Add(e.Signed(t))
	}
	return total
}

// BuildLedgerStatement walks in-range entries in date order, accumulating
// a running balance from the opening figure. The closing balance always
// equals opening plus the signed sum of the range.
func BuildLedgerStatement(ledger core.Ledger, opening core.Money, entries []core.Entry) LedgerStatement {
	sorted := make([]core.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	st := LedgerStatement{
		Ledger:         ledger,
		OpeningBalance: opening,
		Lines:          make([]StatementLine, 0, len(sorted)),
		ClosingBalance: opening,
	}

	balance := opening
	for _, e := range sorted {
		balance = balance.Add(e.Signed(ledger.Type))
		st.Lines = append(st.Lines, StatementLine{Entry: e, Balance: balance})
		st.TotalDebit = st.TotalDebit.Add(e.Debit)
		st.TotalCredit = st.TotalCredit.Add(e.Credit)
	}
	st.ClosingBalance = balance
	return st
}
