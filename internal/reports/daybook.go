package reports

import (
	"sort"

	"conti/internal/core"
)

// BuildDayBook flattens every entry into one chronological feed. Income is
// the credited total on income ledgers; expense is the debited total on
// expense ledgers, with salary-sourced entries counted under their own tag
// but still part of the expense total.
func BuildDayBook(ledgers []core.Ledger, entries []core.Entry) DayBook {
	byID := ledgerIndex(ledgers)

	book := DayBook{Lines: make([]DayBookLine, 0, len(entries))}
	for _, e := range entries {
		l, ok := byID[e.LedgerID]
		if !ok {
			continue
		}

		typ := string(l.Type)
		if e.Source == core.SourceSalary {
			typ = "salary"
		}

		book.Lines = append(book.Lines, DayBookLine{
			EntryID:     e.ID,
			LedgerID:    l.ID,
			LedgerName:  l.Name,
			Type:        typ,
			Date:        e.Date,
			Description: e.Description,
			Debit:       e.Debit,
			Credit:      e.Credit,
		})

		switch {
		case l.Type == core.LedgerIncome:
			book.TotalIncome = book.TotalIncome.Add(e.Credit)
		case e.Source == core.SourceSalary:
			book.TotalExpense = book.TotalExpense.Add(e.Debit)
		case l.Type == core.LedgerExpense:
			book.TotalExpense = book.TotalExpense.Add(e.Debit)
		}
	}

	sortLines(book.Lines)
	return book
}

func sortLines(lines []DayBookLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].Date.Equal(lines[j].Date) {
			return lines[i].EntryID < lines[j].EntryID
		}
		return lines[i].Date.Before(lines[j].Date)
	})
}

func ledgerIndex(ledgers []core.Ledger) map[int64]core.Ledger {
	byID := make(map[int64]core.Ledger, len(ledgers))
	for _, l := range ledgers {
		byID[l.ID] = l
	}
	return byID
}
