package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qrvalidation/Valuation-Recon-Backend/internal/apperrors"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/model"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/repository"
	"github.com/qrvalidation/Valuation-Recon-Backend/internal/secrets"
)

// AnnotationService handles business logic for deal annotations. Comments
// are encrypted before they reach the repository and decrypted on the way
// out; the database only ever holds ciphertext.
type AnnotationService struct {
	repo      *repository.AnnotationRepository
	encryptor *secrets.Encryptor
}

// NewAnnotationService creates a new AnnotationService with the provided
// repository and encryptor.
func NewAnnotationService(repo *repository.AnnotationRepository, encryptor *secrets.Encryptor) *AnnotationService {
	return &AnnotationService{repo: repo, encryptor: encryptor}
}

// Set stores or replaces the comment for a date/deal-key pair. A manual
// edit clears any carried-from marker.
func (s *AnnotationService) Set(date, dealKey, comment string) (model.Annotation, error) {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return model.Annotation{}, apperrors.ErrEmptyComment
	}

	ciphertext, err := s.encryptor.Encrypt(comment)
	if err != nil {
		return model.Annotation{}, fmt.Errorf("failed to encrypt annotation: %w", err)
	}

	stored := repository.StoredAnnotation{
		ReportingDate: date,
		DealKey:       dealKey,
		Ciphertext:    ciphertext,
		CarriedFrom:   "",
		UpdatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Upsert(stored); err != nil {
		return model.Annotation{}, err
	}

	return model.Annotation{
		ReportingDate: date,
		DealKey:       dealKey,
		Comment:       comment,
		UpdatedAt:     stored.UpdatedAt,
	}, nil
}

// Get retrieves and decrypts the annotation for a date/deal-key pair.
func (s *AnnotationService) Get(date, dealKey string) (model.Annotation, error) {
	stored, err := s.repo.Get(date, dealKey)
	if err != nil {
		return model.Annotation{}, err
	}
	return s.decrypt(stored)
}

// ListByDate retrieves and decrypts all annotations for a reporting date,
// keyed by deal key.
func (s *AnnotationService) ListByDate(date string) (map[string]model.Annotation, error) {
	stored, err := s.repo.ListByDate(date)
	if err != nil {
		return nil, err
	}

	annotations := make(map[string]model.Annotation, len(stored))
	for _, sa := range stored {
		a, err := s.decrypt(sa)
		if err != nil {
			return nil, err
		}
		annotations[a.DealKey] = a
	}
	return annotations, nil
}

// CarryForward copies annotations from the most recent annotated date
// before the given one onto deals that are present on the new date but do
// not yet have a comment there. Carried annotations keep their ciphertext
// and record the date they came from. A date with no annotated
// predecessor is not an error.
func (s *AnnotationService) CarryForward(date string, presentKeys []string) error {
	prevDate, err := s.repo.LatestDateBefore(date)
	if errors.Is(err, apperrors.ErrAnnotationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	previous, err := s.repo.ListByDate(prevDate)
	if err != nil {
		return err
	}
	byKey := make(map[string]repository.StoredAnnotation, len(previous))
	for _, sa := range previous {
		byKey[sa.DealKey] = sa
	}

	for _, key := range presentKeys {
		prev, ok := byKey[key]
		if !ok {
			continue
		}
		if _, err := s.repo.Get(date, key); err == nil {
			// Deal already annotated on the new date; keep it.
			continue
		} else if !errors.Is(err, apperrors.ErrAnnotationNotFound) {
			return err
		}

		carried := repository.StoredAnnotation{
			ReportingDate: date,
			DealKey:       key,
			Ciphertext:    prev.Ciphertext,
			CarriedFrom:   prevDate,
			UpdatedAt:     time.Now().UTC(),
		}
		if err := s.repo.Upsert(carried); err != nil {
			return err
		}
	}

	return nil
}

func (s *AnnotationService) decrypt(stored repository.StoredAnnotation) (model.Annotation, error) {
	comment, err := s.encryptor.Decrypt(stored.Ciphertext)
	if err != nil {
		return model.Annotation{}, fmt.Errorf("failed to decrypt annotation for %s/%s: %w",
			stored.ReportingDate, stored.DealKey, err)
	}
	return model.Annotation{
		ReportingDate: stored.ReportingDate,
		DealKey:       stored.DealKey,
		Comment:       comment,
		CarriedFrom:   stored.CarriedFrom,
		UpdatedAt:     stored.UpdatedAt,
	}, nil
}
