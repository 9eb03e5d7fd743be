package reports

import (
	"testing"
	"time"

	"conti/internal/core"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

var testLedgers = []core.Ledger{
	{ID: 1, TenantID: "t1", Name: "Membership Income", Type: core.LedgerIncome},
	{ID: 2, TenantID: "t1", Name: "General Expenses", Type: core.LedgerExpense},
	{ID: 3, TenantID: "t1", Name: "Main Bank", Type: core.LedgerBank},
}

var testCategories = []core.Category{
	{ID: 10, LedgerID: 1, Name: "Annual Fees"},
	{ID: 11, LedgerID: 2, Name: "Stationery"},
}

func cents(c int64) core.Money { return core.Money{Cents: c} }

func TestBuildLedgerStatementRunningBalance(t *testing.T) {
	// Scenario: bank ledger, opening 10000, credit 2000 on day 2, debit
	// 500 on day 5 -> running balances [12000, 11500].
	bank := testLedgers[2]
	entries := []core.Entry{
		{ID: 2, LedgerID: 3, Date: date(2025, 3, 5), Description: "withdrawal", Debit: cents(50000), Source: core.SourceManual},
		{ID: 1, LedgerID: 3, Date: date(2025, 3, 2), Description: "deposit", Credit: cents(200000), Source: core.SourceManual},
	}

	st := BuildLedgerStatement(bank, cents(1000000), entries)
	if len(st.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(st.Lines))
	}
	if st.Lines[0].Balance.Cents != 1200000 {
		t.Fatalf("expected first running balance 1200000, got %d", st.Lines[0].Balance.Cents)
	}
	if st.Lines[1].Balance.Cents != 1150000 {
		t.Fatalf("expected second running balance 1150000, got %d", st.Lines[1].Balance.Cents)
	}
	if st.ClosingBalance.Cents != 1150000 {
		t.Fatalf("expected closing 1150000, got %d", st.ClosingBalance.Cents)
	}
}

func TestLedgerStatementRoundTrip(t *testing.T) {
	// closing == opening + signed sum of the range, per ledger type.
	entries := []core.Entry{
		{ID: 1, Date: date(2025, 1, 1), Debit: cents(300)},
		{ID: 2, Date: date(2025, 1, 2), Credit: cents(900)},
		{ID: 3, Date: date(2025, 1, 2), Debit: cents(150)},
	}
	for _, l := range testLedgers {
		opening := cents(5000)
		st := BuildLedgerStatement(l, opening, entries)
		want := opening.Add(NetBalance(l.Type, entries))
		if st.ClosingBalance != want {
			t.Fatalf("%s: expected closing %d, got %d", l.Type, want.Cents, st.ClosingBalance.Cents)
		}
		if len(st.Lines) > 0 && st.Lines[len(st.Lines)-1].Balance != st.ClosingBalance {
			t.Fatalf("%s: last running balance must equal closing", l.Type)
		}
	}
}

func TestLedgerStatementTieBreakByID(t *testing.T) {
	bank := testLedgers[2]
	// Same date: insertion order (ID) decides the running balance walk.
	entries := []core.Entry{
		{ID: 5, LedgerID: 3, Date: date(2025, 6, 1), Debit: cents(100)},
		{ID: 4, LedgerID: 3, Date: date(2025, 6, 1), Credit: cents(300)},
	}
	st := BuildLedgerStatement(bank, cents(0), entries)
	if st.Lines[0].Entry.ID != 4 || st.Lines[1].Entry.ID != 5 {
		t.Fatalf("expected ID order [4 5], got [%d %d]", st.Lines[0].Entry.ID, st.Lines[1].Entry.ID)
	}
	if st.Lines[0].Balance.Cents != 300 || st.Lines[1].Balance.Cents != 200 {
		t.Fatalf("unexpected running balances: %d, %d", st.Lines[0].Balance.Cents, st.Lines[1].Balance.Cents)
	}
}

func TestBuildTrialBalanceTotals(t *testing.T) {
	entries := []core.Entry{
		{ID: 1, LedgerID: 1, Date: date(2025, 2, 1), Credit: cents(4000)},
		{ID: 2, LedgerID: 2, Date: date(2025, 2, 2), Debit: cents(1500)},
		{ID: 3, LedgerID: 3, Date: date(2025, 2, 3), Credit: cents(4000)},
		{ID: 4, LedgerID: 3, Date: date(2025, 2, 4), Debit: cents(1500)},
	}
	tb := BuildTrialBalance(testLedgers, entries)

	var wantDebit, wantCredit int64
	for _, e := range entries {
		wantDebit += e.Debit.Cents
		wantCredit += e.Credit.Cents
	}
	var gotDebit, gotCredit int64
	for _, row := range tb.Rows {
		gotDebit += row.Debit.Cents
		gotCredit += row.Credit.Cents
	}
	if gotDebit != wantDebit || tb.TotalDebit.Cents != wantDebit {
		t.Fatalf("debit totals diverge: rows=%d report=%d want=%d", gotDebit, tb.TotalDebit.Cents, wantDebit)
	}
	if gotCredit != wantCredit || tb.TotalCredit.Cents != wantCredit {
		t.Fatalf("credit totals diverge: rows=%d report=%d want=%d", gotCredit, tb.TotalCredit.Cents, wantCredit)
	}
	if len(tb.Rows) != len(testLedgers) {
		t.Fatalf("expected one row per ledger, got %d", len(tb.Rows))
	}
}

func TestBuildTrialBalanceImbalanceIsReported(t *testing.T) {
	// Only one side posted: the report must show the imbalance, not
	// reject it.
	entries := []core.Entry{
		{ID: 1, LedgerID: 1, Date: date(2025, 2, 1), Credit: cents(9999)},
	}
	tb := BuildTrialBalance(testLedgers, entries)
	if tb.TotalDebit.Cents != 0 || tb.TotalCredit.Cents != 9999 {
		t.Fatalf("expected debit=0 credit=9999, got %d/%d", tb.TotalDebit.Cents, tb.TotalCredit.Cents)
	}
}

func TestBuildDayBook(t *testing.T) {
	entries := []core.Entry{
		{ID: 1, LedgerID: 1, Date: date(2025, 5, 3), Description: "fees", Credit: cents(10000), Source: core.SourceCollection},
		{ID: 2, LedgerID: 2, Date: date(2025, 5, 1), Description: "stationery", Debit: cents(1200), Source: core.SourceManual},
		{ID: 3, LedgerID: 2, Date: date(2025, 5, 2), Description: "april salary", Debit: cents(30000), Source: core.SourceSalary},
		{ID: 4, LedgerID: 3, Date: date(2025, 5, 2), Description: "deposit", Credit: cents(10000), Source: core.SourceManual},
	}
	book := BuildDayBook(testLedgers, entries)

	if len(book.Lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(book.Lines))
	}
	// Chronological order.
	if book.Lines[0].EntryID != 2 || book.Lines[1].EntryID != 3 || book.Lines[2].EntryID != 4 || book.Lines[3].EntryID != 1 {
		t.Fatalf("unexpected order: %v", []int64{book.Lines[0].EntryID, book.Lines[1].EntryID, book.Lines[2].EntryID, book.Lines[3].EntryID})
	}
	// Salary posts to an expense ledger but keeps its own tag.
	if book.Lines[1].Type != "salary" {
		t.Fatalf("expected salary tag, got %s", book.Lines[1].Type)
	}
	if book.TotalIncome.Cents != 10000 {
		t.Fatalf("expected income 10000, got %d", book.TotalIncome.Cents)
	}
	if book.TotalExpense.Cents != 31200 {
		t.Fatalf("expected expense 31200 (incl. salary), got %d", book.TotalExpense.Cents)
	}
}

func TestBuildBalanceSheet(t *testing.T) {
	entries := []core.Entry{
		{ID: 1, LedgerID: 1, CategoryID: 10, Date: date(2025, 5, 1), Credit: cents(50000), Source: core.SourceCollection},
		{ID: 2, LedgerID: 1, Date: date(2025, 5, 2), Credit: cents(7000), Source: core.SourceManual}, // uncategorized
		{ID: 3, LedgerID: 2, CategoryID: 11, Date: date(2025, 5, 3), Debit: cents(1200), Source: core.SourcePettyCash},
		{ID: 4, LedgerID: 2, Date: date(2025, 5, 4), Debit: cents(30000), Source: core.SourceSalary},
		{ID: 5, LedgerID: 3, Date: date(2025, 5, 5), Credit: cents(56000), Source: core.SourceManual},
	}
	bs := BuildBalanceSheet(testLedgers, testCategories, entries)

	if bs.TotalIncome.Cents != 57000 {
		t.Fatalf("expected income 57000, got %d", bs.TotalIncome.Cents)
	}
	if bs.TotalExpense.Cents != 1200 || bs.SalaryExpense.Cents != 30000 {
		t.Fatalf("expected expense 1200 + salary 30000, got %d/%d", bs.TotalExpense.Cents, bs.SalaryExpense.Cents)
	}
	if bs.TotalExpenseWithSalary.Cents != 31200 {
		t.Fatalf("expected combined expense 31200, got %d", bs.TotalExpenseWithSalary.Cents)
	}
	// Identity: net == income - expenseWithSalary.
	if bs.NetBalance != bs.TotalIncome.Sub(bs.TotalExpenseWithSalary) {
		t.Fatalf("net balance identity violated")
	}
	if bs.TotalBankBalance.Cents != 56000 || len(bs.BankBalances) != 1 {
		t.Fatalf("expected one bank balance of 56000, got %d (%d rows)", bs.TotalBankBalance.Cents, len(bs.BankBalances))
	}
	// Uncategorized income shows under its own bucket.
	foundUncat := false
	for _, ca := range bs.IncomeByCategory {
		if ca.CategoryID == 0 {
			foundUncat = true
			if ca.Name != Uncategorized || ca.Amount.Cents != 7000 {
				t.Fatalf("unexpected uncategorized bucket: %+v", ca)
			}
		}
	}
	if !foundUncat {
		t.Fatalf("expected an uncategorized income bucket")
	}
}

func TestBuildBalanceSheetEmpty(t *testing.T) {
	bs := BuildBalanceSheet(testLedgers, testCategories, nil)
	if bs.NetBalance.Cents != 0 || len(bs.BankBalances) != 0 || len(bs.IncomeByCategory) != 0 {
		t.Fatalf("empty scope must produce zeroed report, got %+v", bs)
	}
}

func TestBuildIncomeExpenditure(t *testing.T) {
	entries := []core.Entry{
		{ID: 1, LedgerID: 1, CategoryID: 10, Date: date(2025, 5, 1), Credit: cents(20000), Source: core.SourceCollection},
		{ID: 2, LedgerID: 2, CategoryID: 11, Date: date(2025, 5, 2), Debit: cents(8000), Source: core.SourceManual},
		{ID: 3, LedgerID: 2, Date: date(2025, 5, 3), Debit: cents(4000), Source: core.SourceManual},
		// Bank movement stays out of income/expenditure.
		{ID: 4, LedgerID: 3, Date: date(2025, 5, 4), Credit: cents(20000), Source: core.SourceManual},
	}
	ie := BuildIncomeExpenditure(testLedgers, testCategories, entries)

	if len(ie.Income) != 1 || len(ie.Expense) != 1 {
		t.Fatalf("expected 1 income + 1 expense ledger, got %d/%d", len(ie.Income), len(ie.Expense))
	}
	if ie.Income[0].Total.Cents != 20000 {
		t.Fatalf("expected income ledger total 20000, got %d", ie.Income[0].Total.Cents)
	}
	exp := ie.Expense[0]
	if exp.Total.Cents != 12000 || len(exp.Categories) != 2 {
		t.Fatalf("expected expense total 12000 across 2 categories, got %d/%d", exp.Total.Cents, len(exp.Categories))
	}
	if ie.Surplus.Cents != 8000 {
		t.Fatalf("expected surplus 8000, got %d", ie.Surplus.Cents)
	}
}

func TestIncomeExpenditureDeficit(t *testing.T) {
	entries := []core.Entry{
		{ID: 1, LedgerID: 2, Date: date(2025, 5, 2), Debit: cents(9000), Source: core.SourceManual},
	}
	ie := BuildIncomeExpenditure(testLedgers, testCategories, entries)
	if ie.Surplus.Cents != -9000 {
		t.Fatalf("deficit must be reported as negative surplus, got %d", ie.Surplus.Cents)
	}
}

func TestBuildConsolidated(t *testing.T) {
	a := SummarizeInstitute(
		core.Institute{ID: 1, Name: "North"},
		testLedgers,
		[]core.Entry{
			{ID: 1, LedgerID: 1, Date: date(2025, 5, 1), Credit: cents(10000)},
			{ID: 2, LedgerID: 2, Date: date(2025, 5, 2), Debit: cents(4000)},
			{ID: 3, LedgerID: 3, Date: date(2025, 5, 3), Credit: cents(6000)},
		},
	)
	b := SummarizeInstitute(
		core.Institute{ID: 2, Name: "South"},
		testLedgers,
		[]core.Entry{
			{ID: 4, LedgerID: 1, Date: date(2025, 5, 1), Credit: cents(500)},
		},
	)

	if a.NetBalance.Cents != 6000 || a.TransactionCount != 3 || a.BankBalance.Cents != 6000 {
		t.Fatalf("unexpected summary for North: %+v", a)
	}

	cons := BuildConsolidated([]InstituteSummary{b, a})
	if cons.Institutes[0].InstituteID != 1 || cons.Institutes[1].InstituteID != 2 {
		t.Fatalf("institutes must be ordered by id")
	}
	if cons.GrandTotals.TotalIncome.Cents != 10500 {
		t.Fatalf("expected grand income 10500, got %d", cons.GrandTotals.TotalIncome.Cents)
	}
	if cons.GrandTotals.TransactionCount != 4 {
		t.Fatalf("expected 4 transactions total, got %d", cons.GrandTotals.TransactionCount)
	}
	if cons.GrandTotals.NetBalance.Cents != 6500 {
		t.Fatalf("expected grand net 6500, got %d", cons.GrandTotals.NetBalance.Cents)
	}
}

func TestScopeValidate(t *testing.T) {
	ok := Scope{Start: date(2025, 1, 1), End: date(2025, 12, 31)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Scope{}).Validate(); err == nil {
		t.Fatalf("expected error for zero dates")
	}
	inverted := Scope{Start: date(2025, 2, 1), End: date(2025, 1, 1)}
	if err := inverted.Validate(); err == nil {
		t.Fatalf("expected error for inverted range")
	}
}
