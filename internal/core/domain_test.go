package core

import (
	"errors"
	"testing"
	"time"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestSignedAmount(t *testing.T) {
	cases := []struct {
		typ           LedgerType
		debit, credit int64
		want          int64
	}{
		{LedgerBank, 0, 2000, 2000},
		{LedgerBank, 500, 0, -500},
		{LedgerIncome, 0, 1000, 1000},
		{LedgerIncome, 300, 0, -300},
		{LedgerExpense, 1200, 0, 1200},
		{LedgerExpense, 0, 200, -200}, // refund reduces the expense total
	}
	for i, tc := range cases {
		got := SignedAmount(tc.typ, Money{Cents: tc.debit}, Money{Cents: tc.credit})
		if got.Cents != tc.want {
			t.Fatalf("case %d (%s): expected %d, got %d", i, tc.typ, tc.want, got.Cents)
		}
	}
}

func TestLedgerValidate(t *testing.T) {
	good := Ledger{TenantID: "t1", Name: "Main Bank", Type: LedgerBank}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Ledger{
		{TenantID: "", Name: "a", Type: LedgerBank},
		{TenantID: "t1", Name: "", Type: LedgerBank},
		{TenantID: "t1", Name: "a", Type: "savings"},
	}
	for i, l := range bads {
		err := l.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{
		TenantID:    "t1",
		LedgerID:    1,
		Date:        date(2025, 4, 1),
		Description: "membership fees",
		Credit:      Money{Cents: 5000},
		Source:      SourceCollection,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Entry{
		// both sides zero
		{TenantID: "t1", LedgerID: 1, Date: date(2025, 4, 1), Description: "x", Source: SourceManual},
		// both sides set
		{TenantID: "t1", LedgerID: 1, Date: date(2025, 4, 1), Description: "x", Debit: Money{Cents: 1}, Credit: Money{Cents: 1}, Source: SourceManual},
		// negative side
		{TenantID: "t1", LedgerID: 1, Date: date(2025, 4, 1), Description: "x", Debit: Money{Cents: -5}, Source: SourceManual},
		// zero date
		{TenantID: "t1", LedgerID: 1, Description: "x", Debit: Money{Cents: 1}, Source: SourceManual},
		// empty description
		{TenantID: "t1", LedgerID: 1, Date: date(2025, 4, 1), Description: "  ", Debit: Money{Cents: 1}, Source: SourceManual},
		// bad source
		{TenantID: "t1", LedgerID: 1, Date: date(2025, 4, 1), Description: "x", Debit: Money{Cents: 1}, Source: "import"},
		// missing tenant
		{LedgerID: 1, Date: date(2025, 4, 1), Description: "x", Debit: Money{Cents: 1}, Source: SourceManual},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestFundValidateAndSpent(t *testing.T) {
	f := PettyCashFund{
		TenantID:       "t1",
		InstituteID:    1,
		CustodianName:  "R. Mehta",
		FloatAmount:    Money{Cents: 500000},
		CurrentBalance: Money{Cents: 380000},
	}
	if err := f.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := f.Spent().Cents; got != 120000 {
		t.Fatalf("expected spent 120000, got %d", got)
	}

	bads := []PettyCashFund{
		{TenantID: "", InstituteID: 1, CustodianName: "a", FloatAmount: Money{Cents: 1}},
		{TenantID: "t1", InstituteID: 1, CustodianName: "", FloatAmount: Money{Cents: 1}},
		{TenantID: "t1", InstituteID: 1, CustodianName: "a", FloatAmount: Money{Cents: 0}},
	}
	for i, f := range bads {
		if err := f.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestEntryAmount(t *testing.T) {
	d := Entry{Debit: Money{Cents: 700}}
	if d.Amount().Cents != 700 {
		t.Fatalf("expected debit side")
	}
	c := Entry{Credit: Money{Cents: 900}}
	if c.Amount().Cents != 900 {
		t.Fatalf("expected credit side")
	}
}
