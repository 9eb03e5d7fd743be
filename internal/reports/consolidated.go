package reports

import (
	"sort"

	"conti/internal/core"
)

// SummarizeInstitute rolls one institute's entries up into the figures the
// consolidated report shows. Expense includes salary, matching the balance
// sheet's salary-inclusive total.
func SummarizeInstitute(inst core.Institute, ledgers []core.Ledger, entries []core.Entry) InstituteSummary {
	byID := ledgerIndex(ledgers)

	sum := InstituteSummary{InstituteID: inst.ID, Name: inst.Name}
	for _, e := range entries {
		l, ok := byID[e.LedgerID]
		if !ok {
			continue
		}
		sum.TransactionCount++
		signed := e.Signed(l.Type)
		switch l.Type {
		case core.LedgerIncome:
			sum.TotalIncome = sum.TotalIncome.Add(signed)
		case core.LedgerExpense:
			sum.TotalExpense = sum.TotalExpense.Add(signed)
		case core.LedgerBank:
			sum.BankBalance = sum.BankBalance.Add(signed)
		}
	}
	sum.NetBalance = sum.TotalIncome.Sub(sum.TotalExpense)
	return sum
}

// BuildConsolidated orders per-institute summaries and computes grand
// totals across them.
func BuildConsolidated(summaries []InstituteSummary) Consolidated {
	out := Consolidated{Institutes: make([]InstituteSummary, len(summaries))}
	copy(out.Institutes, summaries)
	sort.Slice(out.Institutes, func(i, j int) bool {
		return out.Institutes[i].InstituteID < out.Institutes[j].InstituteID
	})

	for _, s := range out.Institutes {
		out.GrandTotals.TotalIncome = out.GrandTotals.TotalIncome.Add(s.TotalIncome)
		out.GrandTotals.TotalExpense = out.GrandTotals.TotalExpense.Add(s.TotalExpense)
		out.GrandTotals.NetBalance = out.GrandTotals.NetBalance.Add(s.NetBalance)
		out.GrandTotals.BankBalance = out.GrandTotals.BankBalance.Add(s.BankBalance)
		out.GrandTotals.TransactionCount += s.TransactionCount
	}
	return out
}
