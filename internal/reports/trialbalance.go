package reports

import (
	"sort"

	"conti/internal/core"
)

// BuildTrialBalance groups entries by ledger and reports raw debit/credit
// totals. It does not assume the books balance: an unequal TotalDebit and
// TotalCredit is a displayable state for the caller to flag, not an error.
func BuildTrialBalance(ledgers []core.Ledger, entries []core.Entry) TrialBalance {
	rows := make(map[int64]*TrialBalanceRow, len(ledgers))
	for _, l := range ledgers {
		rows[l.ID] = &TrialBalanceRow{LedgerID: l.ID, LedgerName: l.Name, Type: l.Type}
	}

	tb := TrialBalance{}
	for _, e := range entries {
		row, ok := rows[e.LedgerID]
		if !ok {
			continue
		}
		row.Debit = row.Debit.Add(e.Debit)
		row.Credit = row.Credit.Add(e.Credit)
		tb.TotalDebit = tb.TotalDebit.Add(e.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(e.Credit)
	}

	tb.Rows = make([]TrialBalanceRow, 0, len(rows))
	for _, row := range rows {
		tb.Rows = append(tb.Rows, *row)
	}
	sort.Slice(tb.Rows, func(i, j int) bool {
		return tb.Rows[i].LedgerName < tb.Rows[j].LedgerName
	})
	return tb
}
