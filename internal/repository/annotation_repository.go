package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
)

// StoredAnnotation is an annotation row as persisted: the comment is held
// as fernet ciphertext and only decrypted by the service layer.
type StoredAnnotation struct {
	ReportingDate string
	DealKey       string
	Ciphertext    string
	CarriedFrom   string
	UpdatedAt     time.Time
}

// AnnotationRepository provides data access methods for the annotation table.
type AnnotationRepository struct {
	db *sql.DB
}

// NewAnnotationRepository creates a new AnnotationRepository with the provided database connection.
func NewAnnotationRepository(db *sql.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

// Upsert stores or replaces the annotation for a date/deal-key pair.
func (r *AnnotationRepository) Upsert(a StoredAnnotation) error {
	_, err := r.db.Exec(`
		INSERT INTO annotation (reporting_date, deal_key, comment_ciphertext, carried_from, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (reporting_date, deal_key) DO UPDATE SET
			comment_ciphertext = excluded.comment_ciphertext,
			carried_from = excluded.carried_from,
			updated_at = excluded.updated_at`,
		a.ReportingDate, a.DealKey, a.Ciphertext, a.CarriedFrom, a.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert annotation: %w", err)
	}
	return nil
}

// Get retrieves the annotation for a date/deal-key pair.
func (r *AnnotationRepository) Get(date, dealKey string) (StoredAnnotation, error) {
	var a StoredAnnotation
	var updatedAtStr string
	err := r.db.QueryRow(`
		SELECT reporting_date, deal_key, comment_ciphertext, carried_from, updated_at
		FROM annotation
		WHERE reporting_date = ? AND deal_key = ?`,
		date, dealKey,
	).Scan(&a.ReportingDate, &a.DealKey, &a.Ciphertext, &a.CarriedFrom, &updatedAtStr)
	if err == sql.ErrNoRows {
		return StoredAnnotation{}, apperrors.ErrAnnotationNotFound
	}
	if err != nil {
		return StoredAnnotation{}, fmt.Errorf("failed to query annotation: %w", err)
	}
	a.UpdatedAt, err = ParseTime(updatedAtStr)
	if err != nil {
		return StoredAnnotation{}, fmt.Errorf("failed to parse annotation timestamp: %w", err)
	}
	return a, nil
}

// ListByDate retrieves all annotations for a reporting date, ordered by
// deal key.
func (r *AnnotationRepository) ListByDate(date string) ([]StoredAnnotation, error) {
	rows, err := r.db.Query(`
		SELECT reporting_date, deal_key, comment_ciphertext, carried_from, updated_at
		FROM annotation
		WHERE reporting_date = ?
		ORDER BY deal_key`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query annotation table: %w", err)
	}
	defer rows.Close()

	var annotations []StoredAnnotation
	for rows.Next() {
		var a StoredAnnotation
		var updatedAtStr string
		if err := rows.Scan(&a.ReportingDate, &a.DealKey, &a.Ciphertext, &a.CarriedFrom, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("failed to scan annotation row: %w", err)
		}
		a.UpdatedAt, err = ParseTime(updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse annotation timestamp: %w", err)
		}
		annotations = append(annotations, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating annotation table: %w", err)
	}

	return annotations, nil
}

// LatestDateBefore finds the most recent reporting date earlier than the
// given date that has any annotations. Returns apperrors.ErrAnnotationNotFound
// when no earlier annotated date exists.
func (r *AnnotationRepository) LatestDateBefore(date string) (string, error) {
	var found string
	err := r.db.QueryRow(`
		SELECT reporting_date
		FROM annotation
		WHERE reporting_date < ?
		ORDER BY reporting_date DESC
		LIMIT 1`, date,
	).Scan(&found)
	if err == sql.ErrNoRows {
		return "", apperrors.ErrAnnotationNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query latest annotated date: %w", err)
	}
	return found, nil
}
