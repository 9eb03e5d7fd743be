// Package services provides business logic and orchestration between
// storage, the report engine and the event bus.
package services

import (
	"context"

	"conti/internal/amqp"
	"conti/internal/core"
)

// Store is the persistence surface the services need. Both the sqlite
// repository and the in-memory store satisfy it.
type Store interface {
	CreateInstitute(ctx context.Context, inst core.Institute) (core.Institute, error)
	GetInstitute(ctx context.Context, tenantID string, id int64) (core.Institute, error)
	SetPettyCashLedger(ctx context.Context, tenantID string, instituteID, ledgerID int64) error
	InstituteExists(ctx context.Context, tenantID string, id int64) (bool, error)
	ListInstitutes(ctx context.Context, tenantID string) ([]core.Institute, error)

	CreateLedger(ctx context.Context, l core.Ledger) (core.Ledger, error)
	GetLedger(ctx context.Context, tenantID string, id int64) (core.Ledger, error)
	ListLedgers(ctx context.Context, tenantID string, f core.LedgerFilter) ([]core.Ledger, error)

	CreateCategory(ctx context.Context, tenantID string, c core.Category) (core.Category, error)
	ListCategories(ctx context.Context, tenantID string, ledgerID int64) ([]core.Category, error)
	ListAllCategories(ctx context.Context, tenantID string) ([]core.Category, error)

	CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error)
	GetEntry(ctx context.Context, tenantID string, id int64) (core.Entry, error)
	ListEntries(ctx context.Context, tenantID string, f core.EntryFilter) ([]core.Entry, error)
	SumEntries(ctx context.Context, tenantID string, f core.EntryFilter) (debit, credit core.Money, err error)
	UpdateEntry(ctx context.Context, e core.Entry) error
	DeleteEntry(ctx context.Context, tenantID string, id int64) error

	CreateFund(ctx context.Context, f core.PettyCashFund) (core.PettyCashFund, error)
	GetFund(ctx context.Context, tenantID string, id int64) (core.PettyCashFund, error)
	ListFundTransactions(ctx context.Context, tenantID string, fundID int64) ([]core.PettyCashTransaction, error)
	RecordFundExpense(ctx context.Context, tenantID string, fundID int64, t core.PettyCashTransaction) error
	ReplenishFund(ctx context.Context, tenantID string, fundID int64, snapshot core.Money, entry core.Entry, t core.PettyCashTransaction) error
	CloseFund(ctx context.Context, tenantID string, fundID int64) error

	Close() error
}

// EventPublisher pushes fund events onto the bus. A nil publisher is
// allowed everywhere; events are then skipped.
type EventPublisher interface {
	PublishFundEvent(ctx context.Context, msg *amqp.FundEventMessage) error
}
