package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"conti/internal/core"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestEntryService_CreateEntry(t *testing.T) {
	ctx := context.Background()
	store, inst, ledger := newFixture(t)
	svc := NewEntryService(store)

	t.Run("defaults to manual source", func(t *testing.T) {
		e, err := svc.CreateEntry(ctx, core.Entry{
			TenantID:    testTenant,
			LedgerID:    ledger.ID,
			Date:        date(2026, 4, 1),
			Description: "office chairs",
			Debit:       core.Money{Cents: 8_000},
		})
		if err != nil {
			t.Fatalf("CreateEntry() error = %v", err)
		}
		if e.Source != core.SourceManual {
			t.Errorf("source = %s, want manual", e.Source)
		}
		if e.InstituteID != inst.ID {
			t.Errorf("institute = %d, want inherited %d", e.InstituteID, inst.ID)
		}
	})

	t.Run("petty cash source is reserved", func(t *testing.T) {
		_, err := svc.CreateEntry(ctx, core.Entry{
			TenantID:    testTenant,
			LedgerID:    ledger.ID,
			Date:        date(2026, 4, 1),
			Description: "fake replenishment",
			Debit:       core.Money{Cents: 100},
			Source:      core.SourcePettyCash,
		})
		if !errors.Is(err, core.ErrInvalidOperation) {
			t.Errorf("CreateEntry() with pettycash source = %v, want ErrInvalidOperation", err)
		}
	})

	t.Run("debit and credit both set", func(t *testing.T) {
		_, err := svc.CreateEntry(ctx, core.Entry{
			TenantID:    testTenant,
			LedgerID:    ledger.ID,
			Date:        date(2026, 4, 1),
			Description: "both sides",
			Debit:       core.Money{Cents: 100},
			Credit:      core.Money{Cents: 100},
		})
		if !errors.Is(err, core.ErrValidation) {
			t.Errorf("CreateEntry() with both sides = %v, want validation error", err)
		}
	})

	t.Run("unknown ledger", func(t *testing.T) {
		_, err := svc.CreateEntry(ctx, core.Entry{
			TenantID:    testTenant,
			LedgerID:    777,
			Date:        date(2026, 4, 1),
			Description: "nowhere",
			Debit:       core.Money{Cents: 100},
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("CreateEntry() unknown ledger = %v, want ErrNotFound", err)
		}
	})

	t.Run("category from another ledger", func(t *testing.T) {
		other, err := store.CreateLedger(ctx, core.Ledger{
			TenantID: testTenant, InstituteID: inst.ID, Name: "Other", Type: core.LedgerExpense,
		})
		if err != nil {
			t.Fatalf("create ledger: %v", err)
		}
		cat, err := store.CreateCategory(ctx, testTenant, core.Category{LedgerID: other.ID, Name: "Misc"})
		if err != nil {
			t.Fatalf("create category: %v", err)
		}
		_, err = svc.CreateEntry(ctx, core.Entry{
			TenantID:    testTenant,
			LedgerID:    ledger.ID,
			CategoryID:  cat.ID,
			Date:        date(2026, 4, 1),
			Description: "wrong bucket",
			Debit:       core.Money{Cents: 100},
		})
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("CreateEntry() foreign category = %v, want ErrNotFound", err)
		}
	})
}

func TestEntryService_ManualOnlyMutation(t *testing.T) {
	ctx := context.Background()
	store, _, ledger := newFixture(t)
	svc := NewEntryService(store)

	manual, err := svc.CreateEntry(ctx, core.Entry{
		TenantID:    testTenant,
		LedgerID:    ledger.ID,
		Date:        date(2026, 4, 2),
		Description: "cleaning supplies",
		Debit:       core.Money{Cents: 2_000},
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	salary, err := store.CreateEntry(ctx, core.Entry{
		TenantID:    testTenant,
		LedgerID:    ledger.ID,
		Date:        date(2026, 4, 2),
		Description: "april payroll",
		Debit:       core.Money{Cents: 50_000},
		Source:      core.SourceSalary,
	})
	if err != nil {
		t.Fatalf("seed salary entry: %v", err)
	}

	t.Run("update manual entry", func(t *testing.T) {
		manual.Description = "cleaning supplies and mops"
		manual.Debit = core.Money{Cents: 2_500}
		got, err := svc.UpdateEntry(ctx, manual)
		if err != nil {
			t.Fatalf("UpdateEntry() error = %v", err)
		}
		if got.Debit.Cents != 2_500 {
			t.Errorf("updated debit = %d, want 2500", got.Debit.Cents)
		}
	})

	t.Run("update salary entry rejected", func(t *testing.T) {
		salary.Description = "tampered"
		if _, err := svc.UpdateEntry(ctx, salary); !errors.Is(err, core.ErrInvalidOperation) {
			t.Errorf("UpdateEntry() on salary entry = %v, want ErrInvalidOperation", err)
		}
	})

	t.Run("delete salary entry rejected", func(t *testing.T) {
		if err := svc.DeleteEntry(ctx, testTenant, salary.ID); !errors.Is(err, core.ErrInvalidOperation) {
			t.Errorf("DeleteEntry() on salary entry = %v, want ErrInvalidOperation", err)
		}
	})

	t.Run("delete manual entry", func(t *testing.T) {
		if err := svc.DeleteEntry(ctx, testTenant, manual.ID); err != nil {
			t.Fatalf("DeleteEntry() error = %v", err)
		}
		if _, err := svc.GetEntry(ctx, testTenant, manual.ID); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("GetEntry() after delete = %v, want ErrNotFound", err)
		}
	})
}

func TestEntryService_ListValidation(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newFixture(t)
	svc := NewEntryService(store)

	if _, err := svc.ListEntries(ctx, testTenant, core.EntryFilter{Source: "bogus"}); !errors.Is(err, core.ErrValidation) {
		t.Errorf("ListEntries() bogus source = %v, want validation error", err)
	}
	if _, err := svc.ListEntries(ctx, testTenant, core.EntryFilter{
		From: date(2026, 5, 1), To: date(2026, 4, 1),
	}); !errors.Is(err, core.ErrInvalidDateRange) {
		t.Errorf("ListEntries() inverted range = %v, want ErrInvalidDateRange", err)
	}
}

func TestEntryService_TenantIsolation(t *testing.T) {
	ctx := context.Background()
	store, _, ledger := newFixture(t)
	svc := NewEntryService(store)

	e, err := svc.CreateEntry(ctx, core.Entry{
		TenantID:    testTenant,
		LedgerID:    ledger.ID,
		Date:        date(2026, 4, 3),
		Description: "private",
		Debit:       core.Money{Cents: 100},
	})
	if err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	if _, err := svc.GetEntry(ctx, "tenant-b", e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetEntry() cross-tenant = %v, want ErrNotFound", err)
	}
	if err := svc.DeleteEntry(ctx, "tenant-b", e.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteEntry() cross-tenant = %v, want ErrNotFound", err)
	}
}
