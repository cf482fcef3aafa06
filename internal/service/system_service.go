package service

import (
	"database/sql"
	"fmt"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/database"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the application version and the applied database
// schema version.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	info := model.VersionInfo{AppVersion: version.Version}

	err := s.db.QueryRow(
		"SELECT COALESCE(MAX(version_id), 0) FROM goose_db_version WHERE is_applied = 1",
	).Scan(&info.SchemaVersion)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("failed to query schema version: %w", err)
	}

	return info, nil
}
