package reports

import (
	"sort"

	"conti/internal/core"
)

// BuildBalanceSheet aggregates bank balances, income and expense by
// category. Salary-sourced entries are kept out of the category breakdown
// and reported as a single figure; the net balance is income minus the
// salary-inclusive expense total.
func BuildBalanceSheet(ledgers []core.Ledger, categories []core.Category, entries []core.Entry) BalanceSheet {
	byID := ledgerIndex(ledgers)
	catNames := categoryIndex(categories)

	banks := make(map[int64]*LedgerBalance)
	income := make(map[int64]*CategoryAmount)
	expense := make(map[int64]*CategoryAmount)

	bs := BalanceSheet{}
	for _, e := range entries {
		l, ok := byID[e.LedgerID]
		if !ok {
			continue
		}
		signed := e.Signed(l.Type)

		switch l.Type {
		case core.LedgerBank:
			b, ok := banks[l.ID]
			if !ok {
				b = &LedgerBalance{LedgerID: l.ID, Name: l.Name}
				banks[l.ID] = b
			}
			b.Balance = b.Balance.Add(signed)
			bs.TotalBankBalance = bs.TotalBankBalance.Add(signed)

		case core.LedgerIncome:
			accumulateCategory(income, e.CategoryID, catNames, signed)
			bs.TotalIncome = bs.TotalIncome.Add(signed)

		case core.LedgerExpense:
			if e.Source == core.SourceSalary {
				bs.SalaryExpense = bs.SalaryExpense.Add(signed)
				continue
			}
			accumulateCategory(expense, e.CategoryID, catNames, signed)
			bs.TotalExpense = bs.TotalExpense.Add(signed)
		}
	}

	bs.BankBalances = sortedBalances(banks)
	bs.IncomeByCategory = sortedCategories(income)
	bs.ExpenseByCategory = sortedCategories(expense)
	bs.TotalExpenseWithSalary = bs.TotalExpense.Add(bs.SalaryExpense)
	bs.NetBalance = bs.TotalIncome.Sub(bs.TotalExpenseWithSalary)
	return bs
}

func accumulateCategory(m map[int64]*CategoryAmount, catID int64, names map[int64]string, amount core.Money) {
	ca, ok := m[catID]
	if !ok {
		name := Uncategorized
		if n, found := names[catID]; found {
			name = n
		}
		ca = &CategoryAmount{CategoryID: catID, Name: name}
		m[catID] = ca
	}
	ca.Amount = ca.Amount.Add(amount)
}

func categoryIndex(categories []core.Category) map[int64]string {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	return names
}

func sortedBalances(m map[int64]*LedgerBalance) []LedgerBalance {
	out := make([]LedgerBalance, 0, len(m))
	for _, b := range m {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func sortedCategories(m map[int64]*CategoryAmount) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(m))
	for _, ca := range m {
		out = append(out, *ca)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
