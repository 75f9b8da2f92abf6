package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/eventsync/eventsync-api/internal/models"
	"github.com/eventsync/eventsync-api/internal/repository"
	"github.com/eventsync/eventsync-api/pkg/export"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
)

type certificateRepository interface {
	FindByEnrollment(ctx context.Context, enrollmentID string) (*models.Certificate, error)
	FindByCode(ctx context.Context, code string) (*models.Certificate, error)
	Create(ctx context.Context, cert *models.Certificate) error
}

type certificateEnrollmentReader interface {
	FindByEventAndUser(ctx context.Context, eventID, userID string) (*models.Enrollment, error)
}

type certificateEventReader interface {
	FindByID(ctx context.Context, id string) (*models.Event, error)
}

type certificateUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type certificateRenderer interface {
	Render(doc export.CertificateDocument) ([]byte, error)
}

type certificateStore interface {
	Save(filename string, data []byte) (string, error)
	Exists(filename string) bool
	Read(filename string) ([]byte, error)
}

type downloadSigner interface {
	Generate(certificateCode, relPath string) (string, time.Time, error)
	Parse(token string) (certificateCode, relPath string, expiresAt time.Time, err error)
}

// CertificateService issues and validates proof-of-attendance records.
// Issuance is idempotent per enrollment; validation is a public lookup.
type CertificateService struct {
	repo        certificateRepository
	enrollments certificateEnrollmentReader
	events      certificateEventReader
	users       certificateUserReader
	renderer    certificateRenderer
	store       certificateStore
	signer      downloadSigner
	logger      *zap.Logger
}

// NewCertificateService constructs CertificateService.
func NewCertificateService(repo certificateRepository, enrollments certificateEnrollmentReader, events certificateEventReader, users certificateUserReader, renderer certificateRenderer, store certificateStore, signer downloadSigner, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateService{
		repo:        repo,
		enrollments: enrollments,
		events:      events,
		users:       users,
		renderer:    renderer,
		store:       store,
		signer:      signer,
		logger:      logger,
	}
}

// Generate issues the certificate for the acting participant's attendance of
// an event, or returns the already-issued record. Eligibility requires the
// event to be FINISHED and the enrollment checked in; a review is not
// required.
func (s *CertificateService) Generate(ctx context.Context, actor models.Actor, eventID string) (*models.CertificateIssued, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}

	enrollment, err := s.enrollments.FindByEventAndUser(ctx, eventID, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "participant is not enrolled in this event")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}

	if event.Status != models.EventStatusFinished || !enrollment.CheckedIn {
		return nil, appErrors.Clone(appErrors.ErrNotEligible, "certificates require a finished event and a recorded check-in")
	}

	cert, err := s.repo.FindByEnrollment(ctx, enrollment.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}

	if cert == nil {
		user, err := s.users.FindByID(ctx, actor.UserID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load participant")
		}

		code, err := generateValidationCode()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mint validation code")
		}
		cert = &models.Certificate{
			ValidationCode:  code,
			EnrollmentID:    enrollment.ID,
			ParticipantName: user.FullName,
			EventTitle:      event.Title,
			IssuedAt:        time.Now().UTC(),
		}
		if err := s.repo.Create(ctx, cert); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				// Concurrent generation won; fall back to the stored record.
				cert, err = s.repo.FindByEnrollment(ctx, enrollment.ID)
				if err != nil {
					return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
				}
			} else {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist certificate")
			}
		} else {
			s.logger.Info("certificate issued",
				zap.String("enrollment_id", enrollment.ID),
				zap.String("validation_code", cert.ValidationCode))
		}
	}

	relPath, err := s.ensurePDF(cert)
	if err != nil {
		return nil, err
	}

	token, expires, err := s.signer.Generate(cert.ValidationCode, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}

	return &models.CertificateIssued{Certificate: *cert, DownloadToken: token, DownloadExpires: expires}, nil
}

// Validate is the public, unauthenticated lookup of a validation code. An
// unknown or malformed code is a normal negative result, not a fault.
func (s *CertificateService) Validate(ctx context.Context, code string) (*models.CertificateValidation, error) {
	if code == "" {
		return &models.CertificateValidation{Valid: false}, nil
	}
	cert, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.CertificateValidation{Valid: false}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate certificate")
	}
	issued := cert.IssuedAt
	return &models.CertificateValidation{
		Valid:           true,
		ParticipantName: cert.ParticipantName,
		EventTitle:      cert.EventTitle,
		IssuedAt:        &issued,
	}, nil
}

// Download resolves a signed token to the rendered PDF bytes.
func (s *CertificateService) Download(ctx context.Context, token string) ([]byte, string, error) {
	code, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "download link is invalid or expired")
	}
	cert, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "certificate not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	if !s.store.Exists(relPath) {
		if _, err := s.ensurePDF(cert); err != nil {
			return nil, "", err
		}
	}
	data, err := s.store.Read(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read certificate file")
	}
	return data, fmt.Sprintf("cert_%s.pdf", cert.ValidationCode), nil
}

// ensurePDF renders and stores the certificate PDF if it is not on disk yet.
func (s *CertificateService) ensurePDF(cert *models.Certificate) (string, error) {
	relPath := fmt.Sprintf("cert_%s.pdf", cert.ValidationCode)
	if s.store.Exists(relPath) {
		return relPath, nil
	}
	data, err := s.renderer.Render(export.CertificateDocument{
		ParticipantName: cert.ParticipantName,
		EventTitle:      cert.EventTitle,
		ValidationCode:  cert.ValidationCode,
		IssuedAt:        cert.IssuedAt,
	})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate pdf")
	}
	if _, err := s.store.Save(relPath, data); err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate pdf")
	}
	return relPath, nil
}

// generateValidationCode mints an unguessable token for public validation.
func generateValidationCode() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
