package repositories

import (
	"context"

	"TeleClinic/models"

	"gorm.io/gorm"
)

type PrescriptionRepository interface {
	CreateHeader(ctx context.Context, prescription *models.Prescription) error
	AddLines(ctx context.Context, prescriptionID int64, lines []models.MedicationLine) error
	GetDetail(ctx context.Context, id int64) (*models.PrescriptionDetail, error)
	ListByPatient(ctx context.Context, patientID int64) ([]models.PrescriptionSummary, error)
}

type prescriptionRepository struct {
	db *gorm.DB
}

func NewPrescriptionRepository(db *gorm.DB) PrescriptionRepository {
	return &prescriptionRepository{db: db}
}

func (r *prescriptionRepository) CreateHeader(ctx context.Context, prescription *models.Prescription) error {
	return r.db.WithContext(ctx).Omit("Medications", "Doctor", "Patient").Create(prescription).Error
}

// AddLines attaches lines to a header, numbering them in the given order.
func (r *prescriptionRepository) AddLines(ctx context.Context, prescriptionID int64, lines []models.MedicationLine) error {
	for i := range lines {
		lines[i].PrescriptionID = prescriptionID
		lines[i].Position = i
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// GetDetail returns nil, nil when the prescription does not exist.
func (r *prescriptionRepository) GetDetail(ctx context.Context, id int64) (*models.PrescriptionDetail, error) {
	var rows []models.PrescriptionDetail
	err := r.db.WithContext(ctx).
		Table("prescriptions AS p").
		Select("p.id AS id, p.doctor_id AS doctor_id, u.fullname AS doctor_name, p.patient_id AS patient_id, p.created_at AS created_at").
		Joins("JOIN users u ON u.id = p.doctor_id").
		Where("p.id = ?", id).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	detail := rows[0]

	detail.Medications = []models.MedicationLine{}
	err = r.db.WithContext(ctx).
		Where("prescription_id = ?", id).
		Order("position ASC").
		Find(&detail.Medications).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByPatient returns the patient's prescriptions, newest first.
func (r *prescriptionRepository) ListByPatient(ctx context.Context, patientID int64) ([]models.PrescriptionSummary, error) {
	prescriptions := []models.PrescriptionSummary{}
	err := r.db.WithContext(ctx).
		Table("prescriptions AS p").
		Select("p.id AS id, p.doctor_id AS doctor_id, u.fullname AS doctor_name, p.created_at AS created_at").
		Joins("JOIN users u ON u.id = p.doctor_id").
		Where("p.patient_id = ?", patientID).
		Order("p.created_at DESC, p.id DESC").
		Scan(&prescriptions).Error
	if err != nil {
		return nil, err
	}
	return prescriptions, nil
}
