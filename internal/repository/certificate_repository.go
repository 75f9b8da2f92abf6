package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/eventsync/eventsync-api/internal/models"
)

const certificateColumns = `validation_code, enrollment_id, participant_name, event_title, issued_at`

// CertificateRepository handles persistence of attendance certificates.
// Records are append-only; nothing here mutates or deletes.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository constructs the repository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// FindByEnrollment returns the certificate issued for an enrollment, if any.
func (r *CertificateRepository) FindByEnrollment(ctx context.Context, enrollmentID string) (*models.Certificate, error) {
	query := fmt.Sprintf(`SELECT %s FROM certificates WHERE enrollment_id = $1`, certificateColumns)
	var cert models.Certificate
	if err := r.db.GetContext(ctx, &cert, query, enrollmentID); err != nil {
		return nil, err
	}
	return &cert, nil
}

// FindByCode returns the certificate for a public validation code.
func (r *CertificateRepository) FindByCode(ctx context.Context, code string) (*models.Certificate, error) {
	query := fmt.Sprintf(`SELECT %s FROM certificates WHERE validation_code = $1`, certificateColumns)
	var cert models.Certificate
	if err := r.db.GetContext(ctx, &cert, query, code); err != nil {
		return nil, err
	}
	return &cert, nil
}

// Create persists a newly minted certificate. A unique-constraint hit on
// enrollment_id surfaces as ErrDuplicate so callers can fall back to the
// already-issued record.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	if cert.IssuedAt.IsZero() {
		cert.IssuedAt = time.Now().UTC()
	}
	const query = `INSERT INTO certificates (validation_code, enrollment_id, participant_name, event_title, issued_at)
        VALUES (:validation_code, :enrollment_id, :participant_name, :event_title, :issued_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}
