package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"conti/internal/core"
)

// Store is an in-memory backend with the same semantics as the sqlite
// repository. It backs local development and the service tests.
type Store struct {
	mu         sync.Mutex
	institutes map[int64]core.Institute
	ledgers    map[int64]core.Ledger
	categories map[int64]core.Category
	entries    map[int64]core.Entry
	funds      map[int64]core.PettyCashFund
	fundTxns   []core.PettyCashTransaction
	nextID     map[string]int64
}

func New() *Store {
	return &Store{
		institutes: map[int64]core.Institute{},
		ledgers:    map[int64]core.Ledger{},
		categories: map[int64]core.Category{},
		entries:    map[int64]core.Entry{},
		funds:      map[int64]core.PettyCashFund{},
		nextID:     map[string]int64{},
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) id(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

// --- institutes ---

func (s *Store) CreateInstitute(_ context.Context, inst core.Institute) (core.Institute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst.ID = s.id("institute")
	s.institutes[inst.ID] = inst
	return inst, nil
}

func (s *Store) GetInstitute(_ context.Context, tenantID string, id int64) (core.Institute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.institutes[id]
	if !ok || inst.TenantID != tenantID {
		return core.Institute{}, fmt.Errorf("institute %d: %w", id, core.ErrNotFound)
	}
	return inst, nil
}

func (s *Store) SetPettyCashLedger(_ context.Context, tenantID string, instituteID, ledgerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.institutes[instituteID]
	if !ok || inst.TenantID != tenantID {
		return fmt.Errorf("institute %d: %w", instituteID, core.ErrNotFound)
	}
	inst.PettyCashLedgerID = ledgerID
	s.institutes[instituteID] = inst
	return nil
}

func (s *Store) InstituteExists(_ context.Context, tenantID string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.institutes[id]
	return ok && inst.TenantID == tenantID, nil
}

func (s *Store) ListInstitutes(_ context.Context, tenantID string) ([]core.Institute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Institute
	for _, inst := range s.institutes {
		if inst.TenantID == tenantID {
			out = append(out, inst)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- ledgers ---

func (s *Store) CreateLedger(_ context.Context, l core.Ledger) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, have := range s.ledgers {
		if have.TenantID == l.TenantID && have.InstituteID == l.InstituteID && have.Name == l.Name {
			return core.Ledger{}, fmt.Errorf("ledger %q: %w", l.Name, core.ErrDuplicateName)
		}
	}
	l.ID = s.id("ledger")
	s.ledgers[l.ID] = l
	return l, nil
}

func (s *Store) GetLedger(_ context.Context, tenantID string, id int64) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLedgerLocked(tenantID, id)
}

func (s *Store) getLedgerLocked(tenantID string, id int64) (core.Ledger, error) {
	l, ok := s.ledgers[id]
	if !ok || l.TenantID != tenantID {
		return core.Ledger{}, fmt.Errorf("ledger %d: %w", id, core.ErrNotFound)
	}
	return l, nil
}

func (s *Store) ListLedgers(_ context.Context, tenantID string, f core.LedgerFilter) ([]core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Ledger
	for _, l := range s.ledgers {
		if l.TenantID != tenantID {
			continue
		}
		if f.InstituteID != 0 && l.InstituteID != f.InstituteID {
			continue
		}
		if f.Type != "" && l.Type != f.Type {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- categories ---

func (s *Store) CreateCategory(_ context.Context, tenantID string, c core.Category) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getLedgerLocked(tenantID, c.LedgerID); err != nil {
		return core.Category{}, err
	}
	for _, have := range s.categories {
		if have.LedgerID == c.LedgerID && have.Name == c.Name {
			return core.Category{}, fmt.Errorf("category %q: %w", c.Name, core.ErrDuplicateName)
		}
	}
	c.ID = s.id("category")
	s.categories[c.ID] = c
	return c, nil
}

func (s *Store) ListCategories(_ context.Context, tenantID string, ledgerID int64) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getLedgerLocked(tenantID, ledgerID); err != nil {
		return nil, err
	}
	var out []core.Category
	for _, c := range s.categories {
		if c.LedgerID == ledgerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) ListAllCategories(_ context.Context, tenantID string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Category
	for _, c := range s.categories {
		l, ok := s.ledgers[c.LedgerID]
		if ok && l.TenantID == tenantID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- entries ---

func (s *Store) CreateEntry(_ context.Context, e core.Entry) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEntryLocked(e), nil
}

func (s *Store) createEntryLocked(e core.Entry) core.Entry {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	e.ID = s.id("entry")
	s.entries[e.ID] = e
	return e
}

func (s *Store) GetEntry(_ context.Context, tenantID string, id int64) (core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.TenantID != tenantID {
		return core.Entry{}, fmt.Errorf("entry %d: %w", id, core.ErrNotFound)
	}
	return e, nil
}

func matches(e core.Entry, tenantID string, f core.EntryFilter) bool {
	if e.TenantID != tenantID {
		return false
	}
	if f.LedgerID != 0 && e.LedgerID != f.LedgerID {
		return false
	}
	if f.InstituteID != 0 && e.InstituteID != f.InstituteID {
		return false
	}
	if f.CategoryID != 0 && e.CategoryID != f.CategoryID {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(f.To) {
		return false
	}
	return true
}

func (s *Store) ListEntries(_ context.Context, tenantID string, f core.EntryFilter) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Entry
	for _, e := range s.entries {
		if matches(e, tenantID, f) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) SumEntries(_ context.Context, tenantID string, f core.EntryFilter) (debit, credit core.Money, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if matches(e, tenantID, f) {
			debit.Cents += e.Debit.Cents
			credit.Cents += e.Credit.Cents
		}
	}
	return debit, credit, nil
}

func (s *Store) UpdateEntry(_ context.Context, e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	have, ok := s.entries[e.ID]
	if !ok || have.TenantID != e.TenantID {
		return fmt.Errorf("entry %d: %w", e.ID, core.ErrNotFound)
	}
	have.CategoryID = e.CategoryID
	have.Date = e.Date
	have.Description = e.Description
	have.Debit = e.Debit
	have.Credit = e.Credit
	s.entries[e.ID] = have
	return nil
}

func (s *Store) DeleteEntry(_ context.Context, tenantID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.TenantID != tenantID {
		return fmt.Errorf("entry %d: %w", id, core.ErrNotFound)
	}
	delete(s.entries, id)
	return nil
}

// --- petty cash ---

func (s *Store) CreateFund(_ context.Context, f core.PettyCashFund) (core.PettyCashFund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	f.ID = s.id("fund")
	s.funds[f.ID] = f
	s.fundTxns = append(s.fundTxns, core.PettyCashTransaction{
		ID:          s.id("fundtxn"),
		FundID:      f.ID,
		Type:        core.FundEventFloat,
		Amount:      f.FloatAmount,
		Description: "float issued",
		Date:        f.CreatedAt,
	})
	return f, nil
}

func (s *Store) GetFund(_ context.Context, tenantID string, id int64) (core.PettyCashFund, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getFundLocked(tenantID, id)
}

func (s *Store) getFundLocked(tenantID string, id int64) (core.PettyCashFund, error) {
	f, ok := s.funds[id]
	if !ok || f.TenantID != tenantID {
		return core.PettyCashFund{}, fmt.Errorf("fund %d: %w", id, core.ErrNotFound)
	}
	return f, nil
}

func (s *Store) ListFundTransactions(_ context.Context, tenantID string, fundID int64) ([]core.PettyCashTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.getFundLocked(tenantID, fundID); err != nil {
		return nil, err
	}
	var out []core.PettyCashTransaction
	for _, t := range s.fundTxns {
		if t.FundID == fundID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) RecordFundExpense(_ context.Context, tenantID string, fundID int64, t core.PettyCashTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.getFundLocked(tenantID, fundID)
	if err != nil {
		return err
	}
	if f.Status == core.FundClosed {
		return fmt.Errorf("fund %d is closed: %w", fundID, core.ErrInvalidOperation)
	}
	if f.CurrentBalance.Cents < t.Amount.Cents {
		return fmt.Errorf("fund %d balance %d below %d: %w", fundID, f.CurrentBalance.Cents, t.Amount.Cents, core.ErrInsufficientFunds)
	}
	f.CurrentBalance.Cents -= t.Amount.Cents
	s.funds[fundID] = f
	t.ID = s.id("fundtxn")
	t.FundID = fundID
	t.Type = core.FundEventExpense
	s.fundTxns = append(s.fundTxns, t)
	return nil
}

// ReplenishFund mirrors the sqlite guarded update: the mutex plus the
// snapshot comparison make the fund reset, the ledger post and the
// transaction row one atomic unit.
func (s *Store) ReplenishFund(_ context.Context, tenantID string, fundID int64, snapshot core.Money, entry core.Entry, t core.PettyCashTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.getFundLocked(tenantID, fundID)
	if err != nil {
		return err
	}
	if f.Status == core.FundClosed {
		return fmt.Errorf("fund %d is closed: %w", fundID, core.ErrInvalidOperation)
	}
	if f.CurrentBalance.Cents != snapshot.Cents {
		if f.CurrentBalance.Cents >= f.FloatAmount.Cents {
			return fmt.Errorf("fund %d: %w", fundID, core.ErrNothingToReplenish)
		}
		return fmt.Errorf("fund %d changed concurrently: %w", fundID, core.ErrConflict)
	}
	if f.CurrentBalance.Cents >= f.FloatAmount.Cents {
		return fmt.Errorf("fund %d: %w", fundID, core.ErrNothingToReplenish)
	}

	f.CurrentBalance = f.FloatAmount
	s.funds[fundID] = f

	s.createEntryLocked(entry)

	t.ID = s.id("fundtxn")
	t.FundID = fundID
	t.Type = core.FundEventReplenishment
	s.fundTxns = append(s.fundTxns, t)
	return nil
}

func (s *Store) CloseFund(_ context.Context, tenantID string, fundID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.getFundLocked(tenantID, fundID)
	if err != nil {
		return err
	}
	if f.Status == core.FundClosed {
		return fmt.Errorf("fund %d already closed: %w", fundID, core.ErrInvalidOperation)
	}
	f.Status = core.FundClosed
	s.funds[fundID] = f
	return nil
}

// Seed loads a small fixture set for local development.
func (s *Store) Seed(ctx context.Context, tenantID string) error {
	inst, err := s.CreateInstitute(ctx, core.Institute{TenantID: tenantID, Name: "Main Branch"})
	if err != nil {
		return err
	}
	for _, l := range []core.Ledger{
		{TenantID: tenantID, InstituteID: inst.ID, Name: "Tuition Fees", Type: core.LedgerIncome},
		{TenantID: tenantID, InstituteID: inst.ID, Name: "Current Account", Type: core.LedgerBank},
	} {
		if _, err := s.CreateLedger(ctx, l); err != nil {
			return err
		}
	}
	expense, err := s.CreateLedger(ctx, core.Ledger{TenantID: tenantID, InstituteID: inst.ID, Name: "Operating Expenses", Type: core.LedgerExpense})
	if err != nil {
		return err
	}
	for _, n := range []string{"Rent", "Utilities", "Supplies"} {
		if _, err := s.CreateCategory(ctx, tenantID, core.Category{LedgerID: expense.ID, Name: n}); err != nil {
			return err
		}
	}
	return nil
}
