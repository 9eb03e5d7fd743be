package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"conti/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

//go:embed migrations/*.sql
var migrationsFS embed.FS

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database and brings the schema up to
// date before handing out the repository.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// migrateUp applies the embedded schema migrations on the repository's
// own connection. An already-current schema is not an error.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("open embedded migrations: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("sqlite migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return src.Close()
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- institutes ---

func (r *SQLiteRepository) CreateInstitute(ctx context.Context, inst core.Institute) (core.Institute, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO institutes (tenant_id, name, petty_cash_ledger_id) VALUES (?, ?, ?)`,
		inst.TenantID, inst.Name, inst.PettyCashLedgerID)
	if err != nil {
		return core.Institute{}, fmt.Errorf("insert institute: %w", err)
	}
	inst.ID, err = res.LastInsertId()
	if err != nil {
		return core.Institute{}, fmt.Errorf("institute id: %w", err)
	}
	return inst, nil
}

func (r *SQLiteRepository) GetInstitute(ctx context.Context, tenantID string, id int64) (core.Institute, error) {
	var inst core.Institute
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, petty_cash_ledger_id FROM institutes WHERE tenant_id = ? AND id = ?`,
		tenantID, id).Scan(&inst.ID, &inst.TenantID, &inst.Name, &inst.PettyCashLedgerID)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Institute{}, fmt.Errorf("institute %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Institute{}, fmt.Errorf("get institute: %w", err)
	}
	return inst, nil
}

// SetPettyCashLedger links the expense ledger replenishments post to.
func (r *SQLiteRepository) SetPettyCashLedger(ctx context.Context, tenantID string, instituteID, ledgerID int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE institutes SET petty_cash_ledger_id = ? WHERE tenant_id = ? AND id = ?`,
		ledgerID, tenantID, instituteID)
	if err != nil {
		return fmt.Errorf("set petty cash ledger: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set petty cash ledger rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("institute %d: %w", instituteID, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) InstituteExists(ctx context.Context, tenantID string, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM institutes WHERE tenant_id = ? AND id = ?)`,
		tenantID, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("institute exists: %w", err)
	}
	return exists, nil
}

func (r *SQLiteRepository) ListInstitutes(ctx context.Context, tenantID string) ([]core.Institute, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, name, petty_cash_ledger_id FROM institutes WHERE tenant_id = ? ORDER BY id`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("list institutes: %w", err)
	}
	defer rows.Close()

	var out []core.Institute
	for rows.Next() {
		var inst core.Institute
		if err := rows.Scan(&inst.ID, &inst.TenantID, &inst.Name, &inst.PettyCashLedgerID); err != nil {
			return nil, fmt.Errorf("scan institute: %w", err)
		}
		out = append(out, inst)
	}
	return out, rows.Err()
}

// --- ledgers ---

func (r *SQLiteRepository) CreateLedger(ctx context.Context, l core.Ledger) (core.Ledger, error) {
	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM ledgers WHERE tenant_id = ? AND institute_id = ? AND name = ?)`,
		l.TenantID, l.InstituteID, l.Name).Scan(&taken)
	if err != nil {
		return core.Ledger{}, fmt.Errorf("check ledger name: %w", err)
	}
	if taken {
		return core.Ledger{}, fmt.Errorf("ledger %q: %w", l.Name, core.ErrDuplicateName)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO ledgers (tenant_id, institute_id, name, type) VALUES (?, ?, ?, ?)`,
		l.TenantID, l.InstituteID, l.Name, string(l.Type))
	if err != nil {
		return core.Ledger{}, fmt.Errorf("insert ledger: %w", err)
	}
	l.ID, err = res.LastInsertId()
	if err != nil {
		return core.Ledger{}, fmt.Errorf("ledger id: %w", err)
	}
	return l, nil
}

func (r *SQLiteRepository) GetLedger(ctx context.Context, tenantID string, id int64) (core.Ledger, error) {
	var l core.Ledger
	var typ string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, institute_id, name, type FROM ledgers WHERE tenant_id = ? AND id = ?`,
		tenantID, id).Scan(&l.ID, &l.TenantID, &l.InstituteID, &l.Name, &typ)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Ledger{}, fmt.Errorf("ledger %d: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Ledger{}, fmt.Errorf("get ledger: %w", err)
	}
	l.Type = core.LedgerType(typ)
	return l, nil
}

func (r *SQLiteRepository) ListLedgers(ctx context.Context, tenantID string, f core.LedgerFilter) ([]core.Ledger, error) {
	query := `SELECT id, tenant_id, institute_id, name, type FROM ledgers WHERE tenant_id = ?`
	args := []any{tenantID}
	if f.InstituteID != 0 {
		query += ` AND institute_id = ?`
		args = append(args, f.InstituteID)
	}
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(f.Type))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledgers: %w", err)
	}
	defer rows.Close()

	var out []core.Ledger
	for rows.Next() {
		var l core.Ledger
		var typ string
		if err := rows.Scan(&l.ID, &l.TenantID, &l.InstituteID, &l.Name, &typ); err != nil {
			return nil, fmt.Errorf("scan ledger: %w", err)
		}
		l.Type = core.LedgerType(typ)
		out = append(out, l)
	}
	return out, rows.Err()
}

// --- categories ---

func (r *SQLiteRepository) CreateCategory(ctx context.Context, tenantID string, c core.Category) (core.Category, error) {
	// The ledger must belong to the tenant.
	if _, err := r.GetLedger(ctx, tenantID, c.LedgerID); err != nil {
		return core.Category{}, err
	}

	var taken bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE ledger_id = ? AND name = ?)`,
		c.LedgerID, c.Name).Scan(&taken)
	if err != nil {
		return core.Category{}, fmt.Errorf("check category name: %w", err)
	}
	if taken {
		return core.Category{}, fmt.Errorf("category %q: %w", c.Name, core.ErrDuplicateName)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (ledger_id, name) VALUES (?, ?)`, c.LedgerID, c.Name)
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	if err != nil {
		return core.Category{}, fmt.Errorf("category id: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, tenantID string, ledgerID int64) ([]core.Category, error) {
	if _, err := r.GetLedger(ctx, tenantID, ledgerID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ledger_id, name FROM categories WHERE ledger_id = ? ORDER BY name`, ledgerID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.LedgerID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListAllCategories returns every category under the tenant's ledgers,
// used by report aggregation.
func (r *SQLiteRepository) ListAllCategories(ctx context.Context, tenantID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.id, c.ledger_id, c.name
		   FROM categories c JOIN ledgers l ON l.id = c.ledger_id
		  WHERE l.tenant_id = ? ORDER BY c.name`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list all categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.LedgerID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
