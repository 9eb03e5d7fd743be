package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"conti/internal/amqp"
	"conti/internal/core"
)

// PettyCashService runs the fund lifecycle: float issue, expense
// recording and replenishment. Replenishment posts the spent amount
// back to the institute's configured expense ledger in the same
// storage transaction that resets the fund balance.
type PettyCashService struct {
	store  Store
	events EventPublisher
}

func NewPettyCashService(store Store, events EventPublisher) *PettyCashService {
	return &PettyCashService{store: store, events: events}
}

func (s *PettyCashService) CreateFund(ctx context.Context, f core.PettyCashFund) (core.PettyCashFund, error) {
	if err := f.Validate(); err != nil {
		return core.PettyCashFund{}, err
	}
	if _, err := s.store.GetInstitute(ctx, f.TenantID, f.InstituteID); err != nil {
		return core.PettyCashFund{}, err
	}

	f.CurrentBalance = f.FloatAmount
	f.Status = core.FundActive

	created, err := s.store.CreateFund(ctx, f)
	if err != nil {
		return core.PettyCashFund{}, err
	}

	s.publish(ctx, "created", created, created.FloatAmount)
	return created, nil
}

func (s *PettyCashService) GetFund(ctx context.Context, tenantID string, id int64) (core.PettyCashFund, error) {
	return s.store.GetFund(ctx, tenantID, id)
}

func (s *PettyCashService) ListTransactions(ctx context.Context, tenantID string, fundID int64) ([]core.PettyCashTransaction, error) {
	return s.store.ListFundTransactions(ctx, tenantID, fundID)
}

// RecordExpense draws t.Amount from the fund. The storage layer rejects
// overdrafts and closed funds atomically.
func (s *PettyCashService) RecordExpense(ctx context.Context, tenantID string, fundID int64, t core.PettyCashTransaction) (core.PettyCashFund, error) {
	if t.Amount.Cents <= 0 {
		return core.PettyCashFund{}, core.ErrInvalidAmount
	}
	if strings.TrimSpace(t.Description) == "" || len(t.Description) > 200 {
		return core.PettyCashFund{}, core.ErrEmptyDescription
	}
	if t.Date.IsZero() {
		t.Date = time.Now().UTC()
	}

	if err := s.store.RecordFundExpense(ctx, tenantID, fundID, t); err != nil {
		return core.PettyCashFund{}, err
	}

	fund, err := s.store.GetFund(ctx, tenantID, fundID)
	if err != nil {
		return core.PettyCashFund{}, err
	}

	s.publish(ctx, "expense", fund, t.Amount)
	return fund, nil
}

// Replenish tops the fund back up to its float and posts the spent
// amount as a debit on the institute's petty-cash expense ledger. The
// fund balance read here is the optimistic snapshot: a concurrent
// replenishment invalidates it and the loser gets a conflict.
func (s *PettyCashService) Replenish(ctx context.Context, tenantID string, fundID int64, date time.Time) (core.PettyCashFund, error) {
	fund, err := s.store.GetFund(ctx, tenantID, fundID)
	if err != nil {
		return core.PettyCashFund{}, err
	}
	if fund.Status == core.FundClosed {
		return core.PettyCashFund{}, fmt.Errorf("fund %d is closed: %w", fundID, core.ErrInvalidOperation)
	}
	spent := fund.Spent()
	if spent.Cents <= 0 {
		return core.PettyCashFund{}, fmt.Errorf("fund %d: %w", fundID, core.ErrNothingToReplenish)
	}

	inst, err := s.store.GetInstitute(ctx, tenantID, fund.InstituteID)
	if err != nil {
		return core.PettyCashFund{}, err
	}
	if inst.PettyCashLedgerID == 0 {
		return core.PettyCashFund{}, fmt.Errorf("institute %d has no petty cash ledger configured: %w", inst.ID, core.ErrInvalidOperation)
	}

	if date.IsZero() {
		date = time.Now().UTC()
	}
	entry := core.Entry{
		TenantID:    tenantID,
		InstituteID: fund.InstituteID,
		LedgerID:    inst.PettyCashLedgerID,
		Date:        date,
		Description: fmt.Sprintf("petty cash replenishment, fund %d (%s)", fund.ID, fund.CustodianName),
		Debit:       spent,
		Source:      core.SourcePettyCash,
		ReferenceID: strconv.FormatInt(fund.ID, 10),
	}
	txn := core.PettyCashTransaction{
		FundID:      fund.ID,
		Amount:      spent,
		Description: "replenished to float",
		Date:        date,
	}

	if err := s.store.ReplenishFund(ctx, tenantID, fundID, fund.CurrentBalance, entry, txn); err != nil {
		return core.PettyCashFund{}, err
	}

	fund.CurrentBalance = fund.FloatAmount
	s.publish(ctx, "replenished", fund, spent)
	return fund, nil
}

func (s *PettyCashService) CloseFund(ctx context.Context, tenantID string, fundID int64) (core.PettyCashFund, error) {
	if err := s.store.CloseFund(ctx, tenantID, fundID); err != nil {
		return core.PettyCashFund{}, err
	}
	fund, err := s.store.GetFund(ctx, tenantID, fundID)
	if err != nil {
		return core.PettyCashFund{}, err
	}

	s.publish(ctx, "closed", fund, fund.CurrentBalance)
	return fund, nil
}

// publish emits a fund event after the storage write committed. Bus
// failures are logged, never surfaced: the ledger is the source of
// truth and the worker has no way to roll it back anyway.
func (s *PettyCashService) publish(ctx context.Context, kind string, fund core.PettyCashFund, amount core.Money) {
	if s.events == nil {
		slog.WarnContext(ctx, "Event publisher not available, skipping fund event", "kind", kind, "fund_id", fund.ID)
		return
	}
	msg := amqp.NewFundEventMessage(fund.TenantID, kind, fund.ID, fund.InstituteID, amount.Cents)
	if err := s.events.PublishFundEvent(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish fund event",
			"kind", kind, "fund_id", fund.ID, "error", err)
	}
}
