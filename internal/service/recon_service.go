package service

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/config"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/recon"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/repository"
)

// rangeConcurrency caps how many reporting dates a range run reconciles at
// once. Single-file sqlite serializes writes anyway, so a small limit keeps
// transactions short without starving the scheduler.
const rangeConcurrency = 4

// ReconciliationService handles business logic for reconciliation runs: it
// loads the stored source tables for a reporting date, runs the engine and
// persists the versioned result.
type ReconciliationService struct {
	sources     *repository.SourceRepository
	results     *repository.ResultRepository
	annotations *AnnotationService
	thresholds  config.ThresholdConfig
	largeDeals  config.LargeDealConfig
}

// NewReconciliationService creates a new ReconciliationService with the
// provided repositories, annotation service and run settings.
func NewReconciliationService(
	sources *repository.SourceRepository,
	results *repository.ResultRepository,
	annotations *AnnotationService,
	thresholds config.ThresholdConfig,
	largeDeals config.LargeDealConfig,
) *ReconciliationService {
	return &ReconciliationService{
		sources:     sources,
		results:     results,
		annotations: annotations,
		thresholds:  thresholds,
		largeDeals:  largeDeals,
	}
}

// RunDate reconciles a single reporting date from its stored source tables
// and persists the result as the next version for that date. After the
// store commits, annotations from the previous annotated date are carried
// forward onto deals that are still present.
func (s *ReconciliationService) RunDate(date string) (model.ReconRun, error) {
	aat, err := s.sources.GetAAT(date)
	if err != nil {
		return model.ReconRun{}, err
	}
	ecf, err := s.sources.GetECF(date)
	if err != nil {
		return model.ReconRun{}, err
	}
	mv, err := s.sources.GetMV(date)
	if err != nil {
		return model.ReconRun{}, err
	}
	owners, err := s.sources.GetPMOwners()
	if err != nil {
		return model.ReconRun{}, err
	}

	result, err := recon.Run(
		recon.Inputs{AAT: aat, ECF: ecf, MV: mv, PMOwners: owners},
		recon.Thresholds{
			MVSignificance: s.thresholds.MVSignificance,
			IRRDiff:        s.thresholds.IRRDiff,
			DurationDiff:   s.thresholds.DurationDiff,
		},
		recon.LargeDealOptions{
			Exclude: recon.NameContainsExcluder(s.largeDeals.ExcludeNames),
			TopN:    s.largeDeals.TopN,
		},
	)
	if err != nil {
		return model.ReconRun{}, fmt.Errorf("reconciliation for %s: %w", date, err)
	}

	unmatched := 0
	for _, d := range result.Ordered {
		if d.Category == model.CategoryUnmatched {
			unmatched++
		}
	}

	run := model.ReconRun{
		ID:                     uuid.NewString(),
		ReportingDate:          date,
		DealCount:              len(result.Ordered),
		UnmatchedCount:         unmatched,
		IRRHighlightCount:      len(result.IRRHighlights),
		DurationHighlightCount: len(result.DurationHighlights),
		DiagnosticCount:        len(result.Diagnostics),
	}

	diagIDs := make([]string, len(result.Diagnostics))
	for i := range diagIDs {
		diagIDs[i] = uuid.NewString()
	}

	run, err = s.results.StoreResult(run, result.Ordered, result.LargeDeals, result.Diagnostics, diagIDs)
	if err != nil {
		return model.ReconRun{}, fmt.Errorf("%w: %v", apperrors.ErrFailedToStoreRun, err)
	}

	keys := make([]string, len(result.Ordered))
	for i, d := range result.Ordered {
		keys[i] = d.Key
	}
	if err := s.annotations.CarryForward(date, keys); err != nil {
		// The run itself is committed; a carry-forward failure only loses
		// convenience copies of older comments.
		log.Printf("Warning: annotation carry-forward for %s failed: %v", date, err)
	}

	log.Printf("Reconciled %s: version %d, %d deals, %d unmatched, %d diagnostics",
		date, run.Version, run.DealCount, run.UnmatchedCount, run.DiagnosticCount)
	return run, nil
}

// RunRange reconciles every reporting date in [from, to] whose three
// source tables are complete, a few dates at a time. Dates inside the
// range with incomplete sources are skipped, not failed. Returns the runs
// in ascending date order.
func (s *ReconciliationService) RunRange(from, to string) ([]model.ReconRun, error) {
	if from > to {
		return nil, fmt.Errorf("%w: %s is after %s", apperrors.ErrInvalidDateRange, from, to)
	}

	complete, err := s.sources.GetCompleteDates()
	if err != nil {
		return nil, err
	}
	var dates []string
	for _, date := range complete {
		if date >= from && date <= to {
			dates = append(dates, date)
		}
	}

	return s.runDates(dates)
}

// RunPending reconciles every complete reporting date that has no stored
// run yet. The scheduler calls this on its daily sweep.
func (s *ReconciliationService) RunPending() ([]model.ReconRun, error) {
	complete, err := s.sources.GetCompleteDates()
	if err != nil {
		return nil, err
	}
	reconciled, err := s.results.GetReconciledDates()
	if err != nil {
		return nil, err
	}

	done := make(map[string]bool, len(reconciled))
	for _, date := range reconciled {
		done[date] = true
	}
	var pending []string
	for _, date := range complete {
		if !done[date] {
			pending = append(pending, date)
		}
	}

	return s.runDates(pending)
}

func (s *ReconciliationService) runDates(dates []string) ([]model.ReconRun, error) {
	runs := make([]model.ReconRun, 0, len(dates))
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(rangeConcurrency)
	for _, date := range dates {
		date := date
		g.Go(func() error {
			run, err := s.RunDate(date)
			if err != nil {
				return err
			}
			mu.Lock()
			runs = append(runs, run)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Workers finish out of order; restore date order for the caller.
	for i := 1; i < len(runs); i++ {
		for j := i; j > 0 && runs[j].ReportingDate < runs[j-1].ReportingDate; j-- {
			runs[j], runs[j-1] = runs[j-1], runs[j]
		}
	}
	return runs, nil
}

// GetRun retrieves the latest stored run for a reporting date.
func (s *ReconciliationService) GetRun(date string) (model.ReconRun, error) {
	return s.results.GetLatestRun(date)
}

// GetDeals retrieves the reconciled deals for a reporting date in report
// order. Returns apperrors.ErrRunNotFound when the date has never been
// reconciled.
func (s *ReconciliationService) GetDeals(date string) ([]*model.ReconciledDeal, error) {
	if _, err := s.results.GetLatestRun(date); err != nil {
		return nil, err
	}
	return s.results.GetDeals(date)
}

// GetHighlights retrieves the deals in the named highlight set for a
// reporting date. Valid set names are "irr", "duration" and "movers".
func (s *ReconciliationService) GetHighlights(date, set string) ([]*model.ReconciledDeal, error) {
	var flagColumn string
	switch set {
	case "irr":
		flagColumn = "flag_irr"
	case "duration":
		flagColumn = "flag_duration"
	case "movers":
		flagColumn = "flag_mover"
	default:
		return nil, fmt.Errorf("highlight set %q: %w", set, apperrors.ErrUnknownHighlightSet)
	}

	if _, err := s.results.GetLatestRun(date); err != nil {
		return nil, err
	}
	return s.results.GetHighlightedDeals(date, flagColumn)
}

// GetLargeDeals retrieves the large-deal summary for a reporting date.
func (s *ReconciliationService) GetLargeDeals(date string) ([]model.LargeDealRow, error) {
	if _, err := s.results.GetLatestRun(date); err != nil {
		return nil, err
	}
	return s.results.GetLargeDeals(date)
}

// GetMissingAAT lists the deals on a reporting date that lack AAT metrics,
// derived from the stored result.
func (s *ReconciliationService) GetMissingAAT(date string) ([]model.MissingAATEntry, error) {
	deals, err := s.GetDeals(date)
	if err != nil {
		return nil, err
	}
	return recon.MissingAATFromDeals(deals), nil
}

// GetDiagnostics retrieves the diagnostics recorded for a reporting date.
func (s *ReconciliationService) GetDiagnostics(date string) ([]model.Diagnostic, error) {
	if _, err := s.results.GetLatestRun(date); err != nil {
		return nil, err
	}
	return s.results.GetDiagnostics(date)
}
