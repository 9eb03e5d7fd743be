package services

import (
	"context"
	"fmt"

	"conti/internal/core"
)

// EntryService guards the append-only transaction store. Entries from
// automated sources (collection, salary, petty cash) are immutable once
// posted; only manual entries may be corrected or removed.
type EntryService struct {
	store Store
}

func NewEntryService(store Store) *EntryService {
	return &EntryService{store: store}
}

func (s *EntryService) CreateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	if e.Source == "" {
		e.Source = core.SourceManual
	}
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}
	if e.Source == core.SourcePettyCash {
		// Petty-cash postings only happen through replenishment.
		return core.Entry{}, fmt.Errorf("source %s is reserved: %w", e.Source, core.ErrInvalidOperation)
	}

	l, err := s.store.GetLedger(ctx, e.TenantID, e.LedgerID)
	if err != nil {
		return core.Entry{}, err
	}
	if e.InstituteID == 0 {
		e.InstituteID = l.InstituteID
	}
	if err := s.checkCategory(ctx, e.TenantID, l.ID, e.CategoryID); err != nil {
		return core.Entry{}, err
	}

	return s.store.CreateEntry(ctx, e)
}

func (s *EntryService) GetEntry(ctx context.Context, tenantID string, id int64) (core.Entry, error) {
	return s.store.GetEntry(ctx, tenantID, id)
}

func (s *EntryService) ListEntries(ctx context.Context, tenantID string, f core.EntryFilter) ([]core.Entry, error) {
	if f.Source != "" && !f.Source.Valid() {
		return nil, core.ErrInvalidSource
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return nil, core.ErrInvalidDateRange
	}
	return s.store.ListEntries(ctx, tenantID, f)
}

// UpdateEntry rewrites the mutable fields of a manual entry. The ledger
// and source never change.
func (s *EntryService) UpdateEntry(ctx context.Context, e core.Entry) (core.Entry, error) {
	have, err := s.store.GetEntry(ctx, e.TenantID, e.ID)
	if err != nil {
		return core.Entry{}, err
	}
	if have.Source != core.SourceManual {
		return core.Entry{}, fmt.Errorf("entry %d has source %s: %w", e.ID, have.Source, core.ErrInvalidOperation)
	}

	have.CategoryID = e.CategoryID
	have.Date = e.Date
	have.Description = e.Description
	have.Debit = e.Debit
	have.Credit = e.Credit
	if err := have.Validate(); err != nil {
		return core.Entry{}, err
	}
	if err := s.checkCategory(ctx, have.TenantID, have.LedgerID, have.CategoryID); err != nil {
		return core.Entry{}, err
	}

	if err := s.store.UpdateEntry(ctx, have); err != nil {
		return core.Entry{}, err
	}
	return have, nil
}

func (s *EntryService) DeleteEntry(ctx context.Context, tenantID string, id int64) error {
	have, err := s.store.GetEntry(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if have.Source != core.SourceManual {
		return fmt.Errorf("entry %d has source %s: %w", id, have.Source, core.ErrInvalidOperation)
	}
	return s.store.DeleteEntry(ctx, tenantID, id)
}

// checkCategory verifies the category belongs to the entry's ledger.
func (s *EntryService) checkCategory(ctx context.Context, tenantID string, ledgerID, categoryID int64) error {
	if categoryID == 0 {
		return nil
	}
	cats, err := s.store.ListCategories(ctx, tenantID, ledgerID)
	if err != nil {
		return err
	}
	for _, c := range cats {
		if c.ID == categoryID {
			return nil
		}
	}
	return fmt.Errorf("category %d on ledger %d: %w", categoryID, ledgerID, core.ErrNotFound)
}
