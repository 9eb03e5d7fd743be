package core

import (
	"strings"
	"time"
)

const (
	LedgerIncome  LedgerType = "income"
	LedgerExpense LedgerType = "expense"
	LedgerBank    LedgerType = "bank"
)

const (
	SourceManual     Source = "manual"
	SourceCollection Source = "collection"
	SourceSalary     Source = "salary"
	SourcePettyCash  Source = "pettycash"
)

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

const (
	FundActive FundStatus = "active"
	FundClosed FundStatus = "closed"
)

const (
	FundEventFloat         FundEventType = "float"
	FundEventExpense       FundEventType = "expense"
	FundEventReplenishment FundEventType = "replenishment"
)

type (
	LedgerType    string
	Source        string
	Direction     string
	FundStatus    string
	FundEventType string

	// Institute is the minimal projection of a franchise unit the
	// accounting core needs: identity plus the expense ledger that
	// petty-cash replenishments post against.
	Institute struct {
		ID                int64
		TenantID          string
		Name              string
		PettyCashLedgerID int64 // 0 = not configured
	}

	// Ledger is a named account. Type is immutable after creation;
	// every report keys its sign convention on it.
	Ledger struct {
		ID          int64
		TenantID    string
		InstituteID int64 // 0 = tenant-wide
		Name        string
		Type        LedgerType
	}

	// Category subdivides a ledger for income/expenditure reporting.
	Category struct {
		ID       int64
		LedgerID int64
		Name     string
	}

	// Entry is one append-only money movement. Exactly one of Debit
	// and Credit is non-zero.
	Entry struct {
		ID          int64
		TenantID    string
		InstituteID int64
		LedgerID    int64
		CategoryID  int64 // 0 = uncategorized
		Date        time.Time
		Description string
		Debit       Money
		Credit      Money
		Source      Source
		ReferenceID string
		CreatedAt   time.Time
	}

	// PettyCashFund is a float held by a custodian. CurrentBalance
	// stays within [0, FloatAmount] between replenishment cycles.
	PettyCashFund struct {
		ID             int64
		TenantID       string
		InstituteID    int64
		CustodianName  string
		FloatAmount    Money
		CurrentBalance Money
		Status         FundStatus
		CreatedAt      time.Time
	}

	// PettyCashTransaction is one append-only fund event.
	PettyCashTransaction struct {
		ID          int64
		FundID      int64
		Type        FundEventType
		Amount      Money
		Description string
		ReceiptNo   string
		Date        time.Time
	}
)

func (t LedgerType) Valid() bool {
	switch t {
	case LedgerIncome, LedgerExpense, LedgerBank:
		return true
	}
	return false
}

func (s Source) Valid() bool {
	switch s {
	case SourceManual, SourceCollection, SourceSalary, SourcePettyCash:
		return true
	}
	return false
}

func (d Direction) Valid() bool {
	return d == Debit || d == Credit
}

// SignedAmount applies the ledger-type sign convention: credits grow bank
// and income balances, debits grow the cumulative expense total. Every
// report computation goes through here so the convention lives in one
// place.
func SignedAmount(t LedgerType, debit, credit Money) Money {
	switch t {
	case LedgerExpense:
		return Money{Cents: debit.Cents - credit.Cents}
	default: // bank, income
		return Money{Cents: credit.Cents - debit.Cents}
	}
}

// Signed returns the entry amount under the owning ledger's convention.
func (e Entry) Signed(t LedgerType) Money {
	return SignedAmount(t, e.Debit, e.Credit)
}

// Amount returns the single non-zero side of the entry.
func (e Entry) Amount() Money {
	if e.Debit.Cents != 0 {
		return e.Debit
	}
	return e.Credit
}

func (l Ledger) Validate() error {
	if strings.TrimSpace(l.TenantID) == "" {
		return ErrEmptyTenant
	}
	if strings.TrimSpace(l.Name) == "" || len(l.Name) > 120 {
		return ErrEmptyName
	}
	if !l.Type.Valid() {
		return ErrInvalidLedgerType
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" || len(c.Name) > 120 {
		return ErrEmptyName
	}
	return nil
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.TenantID) == "" {
		return ErrEmptyTenant
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(e.Description)) == 0 || len(e.Description) > 200 {
		return ErrEmptyDescription
	}
	if e.Debit.Cents < 0 || e.Credit.Cents < 0 {
		return ErrInvalidAmount
	}
	// Exactly one side must be set.
	if (e.Debit.Cents == 0) == (e.Credit.Cents == 0) {
		return ErrInvalidAmount
	}
	if !e.Source.Valid() {
		return ErrInvalidSource
	}
	return nil
}

func (f PettyCashFund) Validate() error {
	if strings.TrimSpace(f.TenantID) == "" {
		return ErrEmptyTenant
	}
	if strings.TrimSpace(f.CustodianName) == "" || len(f.CustodianName) > 120 {
		return ErrEmptyCustodian
	}
	if f.FloatAmount.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Spent is the amount consumed since the last replenishment.
func (f PettyCashFund) Spent() Money {
	return Money{Cents: f.FloatAmount.Cents - f.CurrentBalance.Cents}
}
