package services

import (
	"context"
	"strings"

	"TeleClinic/logging"
	"TeleClinic/metrics"
	"TeleClinic/models"
	"TeleClinic/repositories"
	"TeleClinic/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// LinkService maintains the doctor-patient graph.
type LinkService struct {
	repos   *repositories.Repositories
	metrics *metrics.Metrics
}

func NewLinkService(repos *repositories.Repositories, m *metrics.Metrics) *LinkService {
	return &LinkService{repos: repos, metrics: m}
}

// Link connects the calling doctor to the patient owning patientToken.
func (s *LinkService) Link(ctx context.Context, caller Caller, patientToken string) (*models.DoctorPatientLink, error) {
	if caller.Role != models.RoleDoctor {
		return nil, ErrNotADoctor
	}
	patientToken = strings.TrimSpace(patientToken)
	if err := validation.Validate(patientToken, utils.OpaqueTokenRules...); err != nil {
		return nil, errors.WithMessage(ErrInvalidToken, "malformed patient token")
	}

	profile, err := s.repos.Patients.GetByToken(ctx, patientToken)
	if err != nil {
		return nil, internal("load patient by token", err)
	}
	if profile == nil {
		return nil, errors.WithMessage(ErrInvalidToken, "unknown patient token")
	}

	linked, err := s.repos.Links.Exists(ctx, caller.ID, profile.ID)
	if err != nil {
		return nil, internal("check link", err)
	}
	if linked {
		return nil, ErrAlreadyLinked
	}

	link := &models.DoctorPatientLink{DoctorID: caller.ID, PatientID: profile.ID}
	if err := s.repos.Links.Create(ctx, link); err != nil {
		if isDuplicateKey(err) {
			return nil, ErrAlreadyLinked
		}
		return nil, internal("create link", err)
	}
	s.metrics.Event("link", "created")
	logging.FromContext(ctx).Info("patient linked",
		zap.Int64("doctor_id", caller.ID), zap.Int64("patient_id", profile.ID))
	return link, nil
}

// Unlink removes the edge between the calling doctor and the patient user.
func (s *LinkService) Unlink(ctx context.Context, caller Caller, patientUserID int64) error {
	if caller.Role != models.RoleDoctor {
		return ErrNotADoctor
	}
	profile, err := s.repos.Patients.GetByUserID(ctx, patientUserID)
	if err != nil {
		return internal("load patient", err)
	}
	if profile == nil {
		return errors.WithMessage(ErrNotFound, "patient not found")
	}

	removed, err := s.repos.Links.Delete(ctx, caller.ID, profile.ID)
	if err != nil {
		return internal("delete link", err)
	}
	if !removed {
		return errors.WithMessage(ErrNotFound, "patient is not linked")
	}
	s.metrics.Event("link", "removed")
	logging.FromContext(ctx).Info("patient unlinked",
		zap.Int64("doctor_id", caller.ID), zap.Int64("patient_id", profile.ID))
	return nil
}

// ListPatients returns the doctor's linked patients in link order.
func (s *LinkService) ListPatients(ctx context.Context, caller Caller) ([]models.PatientSummary, error) {
	if caller.Role != models.RoleDoctor {
		return nil, ErrNotADoctor
	}
	patients, err := s.repos.Links.ListPatients(ctx, caller.ID)
	if err != nil {
		return nil, internal("list patients", err)
	}
	return patients, nil
}

// CreatePatientByDoctor creates a patient account already linked to the calling doctor.
func (s *LinkService) CreatePatientByDoctor(ctx context.Context, caller Caller, in SignupInput) (*PatientAccount, error) {
	if caller.Role != models.RoleDoctor {
		return nil, ErrNotADoctor
	}
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return nil, validationFailed(err)
	}

	var account *PatientAccount
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		var err error
		if account, err = createPatient(ctx, tx, in); err != nil {
			return err
		}
		link := &models.DoctorPatientLink{DoctorID: caller.ID, PatientID: account.Profile.ID}
		if err := tx.Links.Create(ctx, link); err != nil {
			return internal("create link", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Event("link", "created")
	logging.FromContext(ctx).Info("patient created by doctor",
		zap.Int64("doctor_id", caller.ID), zap.Int64("user_id", account.User.ID))
	return account, nil
}
