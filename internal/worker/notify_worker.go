// Package worker consumes fund events and dispatches notifications to
// fund custodians and back-office staff.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"conti/internal/amqp"
	"conti/internal/core"
)

// FundReader is the slice of storage the worker needs.
type FundReader interface {
	GetFund(ctx context.Context, tenantID string, id int64) (core.PettyCashFund, error)
}

// Notifier delivers one fund notification. Implementations decide the
// channel (log, mail, webhook).
type Notifier interface {
	Notify(ctx context.Context, event *amqp.FundEventMessage, fund core.PettyCashFund) error
}

// NotifyWorker enriches fund events with current fund state and hands
// them to the notifier.
type NotifyWorker struct {
	store    FundReader
	notifier Notifier

	// Funds at or below this fraction of their float trigger a
	// low-balance warning alongside the regular notification.
	lowBalanceRatio float64
}

func NewNotifyWorker(store FundReader, notifier Notifier) *NotifyWorker {
	return &NotifyWorker{
		store:           store,
		notifier:        notifier,
		lowBalanceRatio: 0.2,
	}
}

// HandleFundEvent processes one event from the bus. Returning an error
// requeues the delivery.
func (w *NotifyWorker) HandleFundEvent(ctx context.Context, msg *amqp.FundEventMessage) error {
	slog.InfoContext(ctx, "Processing fund event",
		"event_id", msg.EventID,
		"kind", msg.Kind,
		"fund_id", msg.FundID,
		"tenant_id", msg.TenantID)

	fund, err := w.store.GetFund(ctx, msg.TenantID, msg.FundID)
	if err != nil {
		return fmt.Errorf("get fund %d: %w", msg.FundID, err)
	}

	if msg.Kind == "expense" && w.isLowBalance(fund) {
		slog.WarnContext(ctx, "Fund balance is low",
			"fund_id", fund.ID,
			"custodian", fund.CustodianName,
			"balance_cents", fund.CurrentBalance.Cents,
			"float_cents", fund.FloatAmount.Cents)
	}

	if err := w.notifier.Notify(ctx, msg, fund); err != nil {
		return fmt.Errorf("notify fund event %s: %w", msg.EventID, err)
	}

	return nil
}

func (w *NotifyWorker) isLowBalance(fund core.PettyCashFund) bool {
	if fund.FloatAmount.Cents == 0 {
		return false
	}
	ratio := float64(fund.CurrentBalance.Cents) / float64(fund.FloatAmount.Cents)
	return ratio <= w.lowBalanceRatio
}

// LogNotifier writes notifications to the structured log. It is the
// default channel until a mail or webhook notifier is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(ctx context.Context, event *amqp.FundEventMessage, fund core.PettyCashFund) error {
	slog.InfoContext(ctx, "Fund notification",
		"event_id", event.EventID,
		"kind", event.Kind,
		"fund_id", fund.ID,
		"custodian", fund.CustodianName,
		"amount_cents", event.AmountCents,
		"balance_cents", fund.CurrentBalance.Cents)
	return nil
}
