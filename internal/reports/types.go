// Package reports computes read-only accounting reports from ledger and
// entry snapshots. Every function here is pure: it takes query results and
// returns a report structure, so the engine needs no locking and is
// trivially testable.
package reports

import (
	"time"

	"conti/internal/core"
)

// Scope bounds a report to a date range and, optionally, one institute.
// Dates are inclusive.
type Scope struct {
	Start       time.Time
	End         time.Time
	InstituteID int64 // 0 = all institutes
}

func (s Scope) Validate() error {
	if s.Start.IsZero() || s.End.IsZero() {
		return core.ErrInvalidDate
	}
	if s.Start.After(s.End) {
		return core.ErrInvalidDateRange
	}
	return nil
}

// DayBookLine is one chronological feed row. Type is derived from the
// owning ledger, except that salary-sourced entries keep their own tag.
type DayBookLine struct {
	EntryID     int64
	LedgerID    int64
	LedgerName  string
	Type        string // income | expense | bank | salary
	Date        time.Time
	Description string
	Debit       core.Money
	Credit      core.Money
}

type DayBook struct {
	Lines        []DayBookLine
	TotalIncome  core.Money
	TotalExpense core.Money
}

type TrialBalanceRow struct {
	LedgerID   int64
	LedgerName string
	Type       core.LedgerType
	Debit      core.Money
	Credit     core.Money
}

type TrialBalance struct {
	Rows        []TrialBalanceRow
	TotalDebit  core.Money
	TotalCredit core.Money
}

// StatementLine carries the running balance after applying the entry.
type StatementLine struct {
	Entry   core.Entry
	Balance core.Money
}

type LedgerStatement struct {
	Ledger         core.Ledger
	OpeningBalance core.Money
	Lines          []StatementLine
	TotalDebit     core.Money
	TotalCredit    core.Money
	ClosingBalance core.Money
}

type LedgerBalance struct {
	LedgerID int64
	Name     string
	Balance  core.Money
}

type CategoryAmount struct {
	CategoryID int64 // 0 = uncategorized
	Name       string
	Amount     core.Money
}

type BalanceSheet struct {
	BankBalances           []LedgerBalance
	TotalBankBalance       core.Money
	IncomeByCategory       []CategoryAmount
	TotalIncome            core.Money
	ExpenseByCategory      []CategoryAmount
	TotalExpense           core.Money // excludes salary
	SalaryExpense          core.Money
	TotalExpenseWithSalary core.Money
	NetBalance             core.Money
}

// LedgerBreakdown groups a ledger's in-range activity by category.
type LedgerBreakdown struct {
	LedgerID   int64
	Name       string
	Total      core.Money
	Categories []CategoryAmount
}

type IncomeExpenditure struct {
	Income       []LedgerBreakdown
	Expense      []LedgerBreakdown
	TotalIncome  core.Money
	TotalExpense core.Money
	Surplus      core.Money // negative surplus is a deficit, not an error
}

type InstituteSummary struct {
	InstituteID      int64
	Name             string
	TotalIncome      core.Money
	TotalExpense     core.Money
	NetBalance       core.Money
	BankBalance      core.Money
	TransactionCount int
}

type Consolidated struct {
	Institutes  []InstituteSummary
	GrandTotals InstituteSummary
}

// Uncategorized is the display name for entries without a category.
const Uncategorized = "uncategorized"
