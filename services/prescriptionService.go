package services

import (
	"context"
	"strings"

	"TeleClinic/logging"
	"TeleClinic/metrics"
	"TeleClinic/models"
	"TeleClinic/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MedicationInput is one line of a new prescription.
type MedicationInput struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
}

func (m MedicationInput) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&m.Dosage, validation.Required, validation.Length(1, 255)),
		validation.Field(&m.Frequency, validation.Required, validation.Length(1, 255)),
	)
}

// PrescriptionService writes and reads the append-only prescription ledger.
type PrescriptionService struct {
	repos   *repositories.Repositories
	metrics *metrics.Metrics
}

func NewPrescriptionService(repos *repositories.Repositories, m *metrics.Metrics) *PrescriptionService {
	return &PrescriptionService{repos: repos, metrics: m}
}

func validateMedications(meds []MedicationInput) ([]models.MedicationLine, error) {
	if len(meds) == 0 {
		return nil, invalid("at least one medication is required")
	}
	lines := make([]models.MedicationLine, 0, len(meds))
	for i, m := range meds {
		m = MedicationInput{
			Name:      strings.TrimSpace(m.Name),
			Dosage:    strings.TrimSpace(m.Dosage),
			Frequency: strings.TrimSpace(m.Frequency),
		}
		if err := m.Validate(); err != nil {
			return nil, errors.WithMessagef(ErrValidation, "medication %d: %s", i+1, err.Error())
		}
		lines = append(lines, models.MedicationLine{Name: m.Name, Dosage: m.Dosage, Frequency: m.Frequency})
	}
	return lines, nil
}

// Prescribe records a prescription for a linked patient. The header and every line commit together.
func (s *PrescriptionService) Prescribe(ctx context.Context, caller Caller, patientID int64, meds []MedicationInput) (*models.Prescription, error) {
	if caller.Role != models.RoleDoctor {
		return nil, ErrNotADoctor
	}
	lines, err := validateMedications(meds)
	if err != nil {
		return nil, err
	}

	var prescription *models.Prescription
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		pair, err := NewGuard(tx).Authorize(ctx, caller, patientID)
		if err != nil {
			return err
		}
		prescription = &models.Prescription{DoctorID: pair.DoctorID, PatientID: pair.PatientID}
		if err := tx.Prescriptions.CreateHeader(ctx, prescription); err != nil {
			return internal("create prescription", err)
		}
		if err := tx.Prescriptions.AddLines(ctx, prescription.ID, lines); err != nil {
			return internal("add medications", err)
		}
		prescription.Medications = lines
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Event("prescription", "created")
	logging.FromContext(ctx).Info("prescription created",
		zap.Int64("prescription_id", prescription.ID),
		zap.Int64("doctor_id", prescription.DoctorID),
		zap.Int64("patient_id", prescription.PatientID),
		zap.Int("lines", len(lines)))
	return prescription, nil
}

// GetPrescription returns a prescription to its prescriber, a doctor currently linked to the patient,
// or the patient it was written for.
func (s *PrescriptionService) GetPrescription(ctx context.Context, caller Caller, id int64) (*models.PrescriptionDetail, error) {
	if id <= 0 {
		return nil, invalid("prescription id must be positive")
	}
	detail, err := s.repos.Prescriptions.GetDetail(ctx, id)
	if err != nil {
		return nil, internal("load prescription", err)
	}
	if detail == nil {
		return nil, errors.WithMessage(ErrNotFound, "prescription not found")
	}

	switch caller.Role {
	case models.RoleDoctor:
		if detail.DoctorID == caller.ID {
			return detail, nil
		}
		if _, err := NewGuard(s.repos).Authorize(ctx, caller, detail.PatientID); err != nil {
			return nil, err
		}
		return detail, nil
	case models.RolePatient:
		profile, err := s.repos.Patients.GetByUserID(ctx, caller.ID)
		if err != nil {
			return nil, internal("load patient", err)
		}
		if profile == nil || profile.ID != detail.PatientID {
			return nil, ErrUnauthorized
		}
		return detail, nil
	}
	return nil, ErrUnauthorized
}

// ListForPatient lists a linked patient's prescriptions, newest first.
func (s *PrescriptionService) ListForPatient(ctx context.Context, caller Caller, patientID int64) ([]models.PrescriptionSummary, error) {
	if caller.Role != models.RoleDoctor {
		return nil, ErrNotADoctor
	}
	pair, err := NewGuard(s.repos).Authorize(ctx, caller, patientID)
	if err != nil {
		return nil, err
	}
	list, err := s.repos.Prescriptions.ListByPatient(ctx, pair.PatientID)
	if err != nil {
		return nil, internal("list prescriptions", err)
	}
	return list, nil
}

// ListOwnAsPatient lists the calling patient's prescriptions, newest first.
func (s *PrescriptionService) ListOwnAsPatient(ctx context.Context, caller Caller) ([]models.PrescriptionSummary, error) {
	if caller.Role != models.RolePatient {
		return nil, ErrUnauthorized
	}
	profile, err := s.repos.Patients.GetByUserID(ctx, caller.ID)
	if err != nil {
		return nil, internal("load patient", err)
	}
	if profile == nil {
		return nil, errors.WithMessage(ErrNotFound, "patient profile not found")
	}
	list, err := s.repos.Prescriptions.ListByPatient(ctx, profile.ID)
	if err != nil {
		return nil, internal("list prescriptions", err)
	}
	return list, nil
}
