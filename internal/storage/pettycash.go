package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"conti/internal/core"
)

// CreateFund inserts the fund together with its opening float transaction
// in one database transaction.
func (r *SQLiteRepository) CreateFund(ctx context.Context, f core.PettyCashFund) (core.PettyCashFund, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.PettyCashFund{}, fmt.Errorf("begin fund create: %w", err)
	}
	defer tx.Rollback()

	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO petty_cash_funds (tenant_id, institute_id, custodian_name, float_cents, balance_cents, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.TenantID, f.InstituteID, f.CustodianName, f.FloatAmount.Cents, f.CurrentBalance.Cents,
		string(f.Status), f.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.PettyCashFund{}, fmt.Errorf("insert fund: %w", err)
	}
	f.ID, err = res.LastInsertId()
	if err != nil {
		return core.PettyCashFund{}, fmt.Errorf("fund id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO petty_cash_transactions (fund_id, type, amount_cents, description, receipt_no, txn_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.ID, string(core.FundEventFloat), f.FloatAmount.Cents, "float issued", "",
		f.CreatedAt.Format(dateLayout))
	if err != nil {
		return core.PettyCashFund{}, fmt.Errorf("insert float transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.PettyCashFund{}, fmt.Errorf("commit fund create: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) GetFund(ctx context.Context, tenantID string, id int64) (core.PettyCashFund, error) {
	return getFund(ctx, r.db, tenantID, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getFund(ctx context.Context, q querier, tenantID string, id int64) (core.PettyCashFund, error) {
	var f core.PettyCashFund
	var status, createdAt string
	err := q.QueryRowContext(ctx,
		`SELECT id, tenant_id, institute_id, custodian_name, float_cents, balance_cents, status, created_at
		   FROM petty_cash_funds WHERE tenant_id = ? AND id = ?`,
		tenantID, id).Scan(&f.ID, &f.TenantID, &f.InstituteID, &f.CustodianName,
		&f.FloatAmount.Cents, &f.CurrentBalance.Cents, &status, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.PettyCashFund{}, fmt.Errorf("fund %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.PettyCashFund{}, fmt.Errorf("get fund: %w", err)
	}
	f.Status = core.FundStatus(status)
	if f.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return core.PettyCashFund{}, fmt.Errorf("parse fund created_at: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) ListFundTransactions(ctx context.Context, tenantID string, fundID int64) ([]core.PettyCashTransaction, error) {
	if _, err := r.GetFund(ctx, tenantID, fundID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, fund_id, type, amount_cents, description, receipt_no, txn_date
		   FROM petty_cash_transactions WHERE fund_id = ? ORDER BY id`, fundID)
	if err != nil {
		return nil, fmt.Errorf("list fund transactions: %w", err)
	}
	defer rows.Close()

	var out []core.PettyCashTransaction
	for rows.Next() {
		var t core.PettyCashTransaction
		var typ, txnDate string
		if err := rows.Scan(&t.ID, &t.FundID, &typ, &t.Amount.Cents, &t.Description, &t.ReceiptNo, &txnDate); err != nil {
			return nil, fmt.Errorf("scan fund transaction: %w", err)
		}
		t.Type = core.FundEventType(typ)
		if t.Date, err = time.Parse(dateLayout, txnDate); err != nil {
			return nil, fmt.Errorf("parse txn date: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// RecordFundExpense decrements the fund balance and appends the expense
// row atomically. The guarded UPDATE re-checks status and balance inside
// the transaction, so a concurrent writer cannot drive the balance below
// zero.
func (r *SQLiteRepository) RecordFundExpense(ctx context.Context, tenantID string, fundID int64, t core.PettyCashTransaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin fund expense: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE petty_cash_funds SET balance_cents = balance_cents - ?
		  WHERE tenant_id = ? AND id = ? AND status = ? AND balance_cents >= ?`,
		t.Amount.Cents, tenantID, fundID, string(core.FundActive), t.Amount.Cents)
	if err != nil {
		return fmt.Errorf("decrement fund balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("fund expense rows: %w", err)
	}
	if n == 0 {
		return classifyFundFailure(ctx, tx, tenantID, fundID, fundExpenseOp, t.Amount)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO petty_cash_transactions (fund_id, type, amount_cents, description, receipt_no, txn_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fundID, string(core.FundEventExpense), t.Amount.Cents, t.Description, t.ReceiptNo,
		t.Date.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("insert expense transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit fund expense: %w", err)
	}
	return nil
}

// ReplenishFund restores the balance to the float, posts the general
// ledger entry and appends the replenishment row as one atomic unit. The
// balance predicate carries the caller's snapshot, so a replenishment
// that raced another one loses cleanly instead of double-posting.
func (r *SQLiteRepository) ReplenishFund(ctx context.Context, tenantID string, fundID int64, snapshot core.Money, entry core.Entry, t core.PettyCashTransaction) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replenish: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE petty_cash_funds SET balance_cents = float_cents
		  WHERE tenant_id = ? AND id = ? AND status = ?
		    AND balance_cents = ? AND balance_cents < float_cents`,
		tenantID, fundID, string(core.FundActive), snapshot.Cents)
	if err != nil {
		return fmt.Errorf("reset fund balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replenish rows: %w", err)
	}
	if n == 0 {
		return classifyFundFailure(ctx, tx, tenantID, fundID, fundReplenishOp, snapshot)
	}

	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO entries (tenant_id, institute_id, ledger_id, category_id, entry_date,
		                      description, debit_cents, credit_cents, source, reference_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.TenantID, entry.InstituteID, entry.LedgerID, entry.CategoryID, entry.Date.Format(dateLayout),
		entry.Description, entry.Debit.Cents, entry.Credit.Cents, string(entry.Source), entry.ReferenceID,
		entry.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("post replenishment entry: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO petty_cash_transactions (fund_id, type, amount_cents, description, receipt_no, txn_date)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		fundID, string(core.FundEventReplenishment), t.Amount.Cents, t.Description, t.ReceiptNo,
		t.Date.Format(dateLayout))
	if err != nil {
		return fmt.Errorf("insert replenishment transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replenish: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CloseFund(ctx context.Context, tenantID string, fundID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE petty_cash_funds SET status = ? WHERE tenant_id = ? AND id = ? AND status = ?`,
		string(core.FundClosed), tenantID, fundID, string(core.FundActive))
	if err != nil {
		return fmt.Errorf("close fund: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("close fund rows: %w", err)
	}
	if n == 0 {
		f, err := r.GetFund(ctx, tenantID, fundID)
		if err != nil {
			return err
		}
		if f.Status == core.FundClosed {
			return fmt.Errorf("fund %d already closed: %w", fundID, core.ErrInvalidOperation)
		}
		return fmt.Errorf("fund %d: %w", fundID, core.ErrConflict)
	}
	return nil
}

type fundOp int

const (
	fundExpenseOp fundOp = iota
	fundReplenishOp
)

// classifyFundFailure turns a zero-row guarded UPDATE into the precise
// domain error by re-reading the fund inside the same transaction.
func classifyFundFailure(ctx context.Context, tx *sql.Tx, tenantID string, fundID int64, op fundOp, amount core.Money) error {
	f, err := getFund(ctx, tx, tenantID, fundID)
	if err != nil {
		return err
	}
	if f.Status == core.FundClosed {
		return fmt.Errorf("fund %d is closed: %w", fundID, core.ErrInvalidOperation)
	}
	switch op {
	case fundExpenseOp:
		return fmt.Errorf("fund %d balance %d below %d: %w", fundID, f.CurrentBalance.Cents, amount.Cents, core.ErrInsufficientFunds)
	default:
		if f.CurrentBalance.Cents >= f.FloatAmount.Cents {
			return fmt.Errorf("fund %d: %w", fundID, core.ErrNothingToReplenish)
		}
		// Balance moved between the snapshot read and the update.
		return fmt.Errorf("fund %d changed concurrently: %w", fundID, core.ErrConflict)
	}
}
