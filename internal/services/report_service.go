package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"conti/internal/core"
	"conti/internal/reports"
)

// ReportService feeds query snapshots into the pure report builders.
type ReportService struct {
	store Store
}

func NewReportService(store Store) *ReportService {
	return &ReportService{store: store}
}

// checkScope validates the date range and, when the scope names an
// institute, that it exists for the tenant.
func (s *ReportService) checkScope(ctx context.Context, tenantID string, scope reports.Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	if scope.InstituteID != 0 {
		ok, err := s.store.InstituteExists(ctx, tenantID, scope.InstituteID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("institute %d: %w", scope.InstituteID, core.ErrNotFound)
		}
	}
	return nil
}

func (s *ReportService) scopedEntries(ctx context.Context, tenantID string, scope reports.Scope) ([]core.Entry, error) {
	return s.store.ListEntries(ctx, tenantID, core.EntryFilter{
		InstituteID: scope.InstituteID,
		From:        scope.Start,
		To:          scope.End,
	})
}

func (s *ReportService) scopedLedgers(ctx context.Context, tenantID string, scope reports.Scope) ([]core.Ledger, error) {
	return s.store.ListLedgers(ctx, tenantID, core.LedgerFilter{InstituteID: scope.InstituteID})
}

func (s *ReportService) DayBook(ctx context.Context, tenantID string, scope reports.Scope) (reports.DayBook, error) {
	if err := s.checkScope(ctx, tenantID, scope); err != nil {
		return reports.DayBook{}, err
	}
	ledgers, err := s.scopedLedgers(ctx, tenantID, scope)
	if err != nil {
		return reports.DayBook{}, err
	}
	entries, err := s.scopedEntries(ctx, tenantID, scope)
	if err != nil {
		return reports.DayBook{}, err
	}
	return reports.BuildDayBook(ledgers, entries), nil
}

func (s *ReportService) TrialBalance(ctx context.Context, tenantID string, scope reports.Scope) (reports.TrialBalance, error) {
	if err := s.checkScope(ctx, tenantID, scope); err != nil {
		return reports.TrialBalance{}, err
	}
	ledgers, err := s.scopedLedgers(ctx, tenantID, scope)
	if err != nil {
		return reports.TrialBalance{}, err
	}
	entries, err := s.scopedEntries(ctx, tenantID, scope)
	if err != nil {
		return reports.TrialBalance{}, err
	}
	return reports.BuildTrialBalance(ledgers, entries), nil
}

// LedgerStatement computes the running-balance statement for one ledger.
// The opening balance aggregates everything before the scope start
// without loading those rows.
func (s *ReportService) LedgerStatement(ctx context.Context, tenantID string, ledgerID int64, scope reports.Scope) (reports.LedgerStatement, error) {
	if err := scope.Validate(); err != nil {
		return reports.LedgerStatement{}, err
	}
	ledger, err := s.store.GetLedger(ctx, tenantID, ledgerID)
	if err != nil {
		return reports.LedgerStatement{}, err
	}

	debit, credit, err := s.store.SumEntries(ctx, tenantID, core.EntryFilter{
		LedgerID: ledgerID,
		To:       scope.Start.AddDate(0, 0, -1),
	})
	if err != nil {
		return reports.LedgerStatement{}, err
	}
	opening := core.SignedAmount(ledger.Type, debit, credit)

	entries, err := s.store.ListEntries(ctx, tenantID, core.EntryFilter{
		LedgerID: ledgerID,
		From:     scope.Start,
		To:       scope.End,
	})
	if err != nil {
		return reports.LedgerStatement{}, err
	}
	return reports.BuildLedgerStatement(ledger, opening, entries), nil
}

func (s *ReportService) BalanceSheet(ctx context.Context, tenantID string, scope reports.Scope) (reports.BalanceSheet, error) {
	if err := s.checkScope(ctx, tenantID, scope); err != nil {
		return reports.BalanceSheet{}, err
	}
	ledgers, err := s.scopedLedgers(ctx, tenantID, scope)
	if err != nil {
		return reports.BalanceSheet{}, err
	}
	categories, err := s.store.ListAllCategories(ctx, tenantID)
	if err != nil {
		return reports.BalanceSheet{}, err
	}
	entries, err := s.scopedEntries(ctx, tenantID, scope)
	if err != nil {
		return reports.BalanceSheet{}, err
	}
	return reports.BuildBalanceSheet(ledgers, categories, entries), nil
}

func (s *ReportService) IncomeExpenditure(ctx context.Context, tenantID string, scope reports.Scope) (reports.IncomeExpenditure, error) {
	if err := s.checkScope(ctx, tenantID, scope); err != nil {
		return reports.IncomeExpenditure{}, err
	}
	ledgers, err := s.scopedLedgers(ctx, tenantID, scope)
	if err != nil {
		return reports.IncomeExpenditure{}, err
	}
	categories, err := s.store.ListAllCategories(ctx, tenantID)
	if err != nil {
		return reports.IncomeExpenditure{}, err
	}
	entries, err := s.scopedEntries(ctx, tenantID, scope)
	if err != nil {
		return reports.IncomeExpenditure{}, err
	}
	return reports.BuildIncomeExpenditure(ledgers, categories, entries), nil
}

// Consolidated fans out one summary per institute and merges them. The
// per-institute queries are independent, so they run concurrently.
func (s *ReportService) Consolidated(ctx context.Context, tenantID string, start, end time.Time) (reports.Consolidated, error) {
	scope := reports.Scope{Start: start, End: end}
	if err := scope.Validate(); err != nil {
		return reports.Consolidated{}, err
	}

	institutes, err := s.store.ListInstitutes(ctx, tenantID)
	if err != nil {
		return reports.Consolidated{}, err
	}

	summaries := make([]reports.InstituteSummary, len(institutes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, inst := range institutes {
		g.Go(func() error {
			instScope := reports.Scope{Start: start, End: end, InstituteID: inst.ID}
			ledgers, err := s.scopedLedgers(gctx, tenantID, instScope)
			if err != nil {
				return fmt.Errorf("institute %d ledgers: %w", inst.ID, err)
			}
			entries, err := s.scopedEntries(gctx, tenantID, instScope)
			if err != nil {
				return fmt.Errorf("institute %d entries: %w", inst.ID, err)
			}
			summaries[i] = reports.SummarizeInstitute(inst, ledgers, entries)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return reports.Consolidated{}, err
	}

	return reports.BuildConsolidated(summaries), nil
}
