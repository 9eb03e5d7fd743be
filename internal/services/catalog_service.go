package services

import (
	"context"
	"fmt"
	"strings"

	"conti/internal/core"
)

// CatalogService manages institutes, ledgers and categories.
type CatalogService struct {
	store Store
}

func NewCatalogService(store Store) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) CreateInstitute(ctx context.Context, inst core.Institute) (core.Institute, error) {
	if strings.TrimSpace(inst.TenantID) == "" {
		return core.Institute{}, core.ErrEmptyTenant
	}
	if strings.TrimSpace(inst.Name) == "" || len(inst.Name) > 120 {
		return core.Institute{}, core.ErrEmptyName
	}
	if inst.PettyCashLedgerID != 0 {
		// The replenishment target must be an expense ledger.
		l, err := s.store.GetLedger(ctx, inst.TenantID, inst.PettyCashLedgerID)
		if err != nil {
			return core.Institute{}, err
		}
		if l.Type != core.LedgerExpense {
			return core.Institute{}, fmt.Errorf("petty cash ledger %d is %s: %w", l.ID, l.Type, core.ErrInvalidLedgerType)
		}
	}
	return s.store.CreateInstitute(ctx, inst)
}

// SetPettyCashLedger points replenishment postings at an expense ledger
// of the same institute.
func (s *CatalogService) SetPettyCashLedger(ctx context.Context, tenantID string, instituteID, ledgerID int64) error {
	inst, err := s.store.GetInstitute(ctx, tenantID, instituteID)
	if err != nil {
		return err
	}
	l, err := s.store.GetLedger(ctx, tenantID, ledgerID)
	if err != nil {
		return err
	}
	if l.Type != core.LedgerExpense {
		return fmt.Errorf("petty cash ledger %d is %s: %w", l.ID, l.Type, core.ErrInvalidLedgerType)
	}
	if l.InstituteID != 0 && l.InstituteID != inst.ID {
		return fmt.Errorf("ledger %d belongs to institute %d: %w", l.ID, l.InstituteID, core.ErrInvalidOperation)
	}
	return s.store.SetPettyCashLedger(ctx, tenantID, instituteID, ledgerID)
}

func (s *CatalogService) GetInstitute(ctx context.Context, tenantID string, id int64) (core.Institute, error) {
	return s.store.GetInstitute(ctx, tenantID, id)
}

func (s *CatalogService) ListInstitutes(ctx context.Context, tenantID string) ([]core.Institute, error) {
	return s.store.ListInstitutes(ctx, tenantID)
}

func (s *CatalogService) CreateLedger(ctx context.Context, l core.Ledger) (core.Ledger, error) {
	if err := l.Validate(); err != nil {
		return core.Ledger{}, err
	}
	if l.InstituteID != 0 {
		ok, err := s.store.InstituteExists(ctx, l.TenantID, l.InstituteID)
		if err != nil {
			return core.Ledger{}, err
		}
		if !ok {
			return core.Ledger{}, fmt.Errorf("institute %d: %w", l.InstituteID, core.ErrNotFound)
		}
	}
	return s.store.CreateLedger(ctx, l)
}

func (s *CatalogService) GetLedger(ctx context.Context, tenantID string, id int64) (core.Ledger, error) {
	return s.store.GetLedger(ctx, tenantID, id)
}

func (s *CatalogService) ListLedgers(ctx context.Context, tenantID string, f core.LedgerFilter) ([]core.Ledger, error) {
	if f.Type != "" && !f.Type.Valid() {
		return nil, core.ErrInvalidLedgerType
	}
	return s.store.ListLedgers(ctx, tenantID, f)
}

func (s *CatalogService) CreateCategory(ctx context.Context, tenantID string, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	return s.store.CreateCategory(ctx, tenantID, c)
}

func (s *CatalogService) ListCategories(ctx context.Context, tenantID string, ledgerID int64) ([]core.Category, error) {
	return s.store.ListCategories(ctx, tenantID, ledgerID)
}
