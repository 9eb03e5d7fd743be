package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"conti/internal/core"
)

func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO entries (tenant_id, institute_id, ledger_id, category_id, entry_date,
		                      description, debit_cents, credit_cents, source, reference_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TenantID, e.InstituteID, e.LedgerID, e.CategoryID, e.Date.Format(dateLayout),
		e.Description, e.Debit.Cents, e.Credit.Cents, string(e.Source), e.ReferenceID,
		e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return core.Entry{}, fmt.Errorf("insert entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return core.Entry{}, fmt.Errorf("entry id: %w", err)
	}
	return e, nil
}

func (r *SQLiteRepository) GetEntry(ctx context.Context, tenantID string, id int64) (core.Entry, error) {
	row := r.db.QueryRowContext(ctx, entrySelect+` WHERE tenant_id = ? AND id = ?`, tenantID, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Entry{}, fmt.Errorf("entry %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns entries ordered by date then insertion order, which
// keeps running-balance computations deterministic.
func (r *SQLiteRepository) ListEntries(ctx context.Context, tenantID string, f core.EntryFilter) ([]core.Entry, error) {
	query := entrySelect + ` WHERE tenant_id = ?`
	args := []any{tenantID}
	if f.LedgerID != 0 {
		query += ` AND ledger_id = ?`
		args = append(args, f.LedgerID)
	}
	if f.InstituteID != 0 {
		query += ` AND institute_id = ?`
		args = append(args, f.InstituteID)
	}
	if f.CategoryID != 0 {
		query += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(f.Source))
	}
	if !f.From.IsZero() {
		query += ` AND entry_date >= ?`
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		query += ` AND entry_date <= ?`
		args = append(args, f.To.Format(dateLayout))
	}
	query += ` ORDER BY entry_date, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var out []core.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SumEntries totals debits and credits over the filter, without loading
// rows. Report opening balances use this with a To bound.
func (r *SQLiteRepository) SumEntries(ctx context.Context, tenantID string, f core.EntryFilter) (debit, credit core.Money, err error) {
	query := `SELECT COALESCE(SUM(debit_cents), 0), COALESCE(SUM(credit_cents), 0) FROM entries WHERE tenant_id = ?`
	args := []any{tenantID}
	if f.LedgerID != 0 {
		query += ` AND ledger_id = ?`
		args = append(args, f.LedgerID)
	}
	if f.InstituteID != 0 {
		query += ` AND institute_id = ?`
		args = append(args, f.InstituteID)
	}
	if f.CategoryID != 0 {
		query += ` AND category_id = ?`
		args = append(args, f.CategoryID)
	}
	if f.Source != "" {
		query += ` AND source = ?`
		args = append(args, string(f.Source))
	}
	if !f.From.IsZero() {
		query += ` AND entry_date >= ?`
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		query += ` AND entry_date <= ?`
		args = append(args, f.To.Format(dateLayout))
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&debit.Cents, &credit.Cents); err != nil {
		return core.Money{}, core.Money{}, fmt.Errorf("sum entries: %w", err)
	}
	return debit, credit, nil
}

// UpdateEntry rewrites the mutable fields of an entry. The service layer
// restricts this to manual-source entries.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, e core.Entry) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE entries SET category_id = ?, entry_date = ?, description = ?, debit_cents = ?, credit_cents = ?
		  WHERE tenant_id = ? AND id = ?`,
		e.CategoryID, e.Date.Format(dateLayout), e.Description, e.Debit.Cents, e.Credit.Cents,
		e.TenantID, e.ID)
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update entry rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entry %d: %w", e.ID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, tenantID string, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE tenant_id = ? AND id = ?`, tenantID, id)
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete entry rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("entry %d: %w", id, core.ErrNotFound)
	}
	return nil
}

const entrySelect = `SELECT id, tenant_id, institute_id, ledger_id, category_id, entry_date,
       description, debit_cents, credit_cents, source, reference_id, created_at FROM entries`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (core.Entry, error) {
	var e core.Entry
	var entryDate, source, createdAt string
	if err := row.Scan(&e.ID, &e.TenantID, &e.InstituteID, &e.LedgerID, &e.CategoryID, &entryDate,
		&e.Description, &e.Debit.Cents, &e.Credit.Cents, &source, &e.ReferenceID, &createdAt); err != nil {
		return core.Entry{}, err
	}
	var err error
	if e.Date, err = time.Parse(dateLayout, entryDate); err != nil {
		return core.Entry{}, fmt.Errorf("parse entry date %q: %w", entryDate, err)
	}
	if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return core.Entry{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	e.Source = core.Source(source)
	return e, nil
}
