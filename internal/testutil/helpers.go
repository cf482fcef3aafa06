package testutil

import (
	"database/sql"
	"testing"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/config"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/repository"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/secrets"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/service"
)

// TestThresholds are the default run settings used by service tests:
// 25mm market-value floor, 5 IRR points, half a year of duration.
func TestThresholds() config.ThresholdConfig {
	return config.ThresholdConfig{
		MVSignificance: 25_000_000,
		IRRDiff:        0.05,
		DurationDiff:   0.5,
	}
}

// TestLargeDeals are the default large-deal settings used by service tests.
func TestLargeDeals() config.LargeDealConfig {
	return config.LargeDealConfig{
		ExcludeNames: []string{"CoreWeave"},
		TopN:         10,
	}
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	return service.NewSystemService(db)
}

func NewTestSourceService(t *testing.T, db *sql.DB) *service.SourceService {
	t.Helper()

	return service.NewSourceService(repository.NewSourceRepository(db))
}

func NewTestAnnotationService(t *testing.T, db *sql.DB) *service.AnnotationService {
	t.Helper()

	encryptor, err := secrets.NewRandomEncryptor()
	if err != nil {
		t.Fatalf("Failed to create test encryptor: %v", err)
	}

	return service.NewAnnotationService(repository.NewAnnotationRepository(db), encryptor)
}

func NewTestReconciliationService(t *testing.T, db *sql.DB) *service.ReconciliationService {
	t.Helper()

	return service.NewReconciliationService(
		repository.NewSourceRepository(db),
		repository.NewResultRepository(db),
		NewTestAnnotationService(t, db),
		TestThresholds(),
		TestLargeDeals(),
	)
}
