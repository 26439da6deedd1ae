package repositories

import (
	"context"

	"TeleClinic/models"

	"gorm.io/gorm"
)

type LinkRepository interface {
	Create(ctx context.Context, link *models.DoctorPatientLink) error
	Exists(ctx context.Context, doctorID, patientID int64) (bool, error)
	Delete(ctx context.Context, doctorID, patientID int64) (bool, error)
	ListPatients(ctx context.Context, doctorID int64) ([]models.PatientSummary, error)
	ListPatientPartners(ctx context.Context, doctorID int64) ([]models.ChatPartner, error)
	ListDoctorPartners(ctx context.Context, patientID int64) ([]models.ChatPartner, error)
}

type linkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

// Create inserts the edge. A second edge for the same pair fails with gorm.ErrDuplicatedKey.
func (r *linkRepository) Create(ctx context.Context, link *models.DoctorPatientLink) error {
	return r.db.WithContext(ctx).Omit("Doctor", "Patient").Create(link).Error
}

func (r *linkRepository) Exists(ctx context.Context, doctorID, patientID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.DoctorPatientLink{}).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes the edge and reports whether one existed.
func (r *linkRepository) Delete(ctx context.Context, doctorID, patientID int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("doctor_id = ? AND patient_id = ?", doctorID, patientID).
		Delete(&models.DoctorPatientLink{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *linkRepository) ListPatients(ctx context.Context, doctorID int64) ([]models.PatientSummary, error) {
	patients := []models.PatientSummary{}
	err := r.db.WithContext(ctx).
		Table("doctor_patient_links AS dpl").
		Select("u.id AS user_id, p.id AS patient_id, u.fullname AS full_name, u.email AS email, " +
			"u.phonenumber AS phone, p.token AS patient_token, dpl.created_at AS linked_at").
		Joins("JOIN patients p ON p.id = dpl.patient_id").
		Joins("JOIN users u ON u.id = p.user_id").
		Where("dpl.doctor_id = ?", doctorID).
		Order("dpl.created_at ASC, dpl.id ASC").
		Scan(&patients).Error
	if err != nil {
		return nil, err
	}
	return patients, nil
}

// ListPatientPartners lists a doctor's linked patients keyed by patient profile id.
func (r *linkRepository) ListPatientPartners(ctx context.Context, doctorID int64) ([]models.ChatPartner, error) {
	partners := []models.ChatPartner{}
	err := r.db.WithContext(ctx).
		Table("doctor_patient_links AS dpl").
		Select("p.id AS id, u.id AS user_id, u.fullname AS full_name").
		Joins("JOIN patients p ON p.id = dpl.patient_id").
		Joins("JOIN users u ON u.id = p.user_id").
		Where("dpl.doctor_id = ?", doctorID).
		Order("u.fullname ASC, p.id ASC").
		Scan(&partners).Error
	if err != nil {
		return nil, err
	}
	return partners, nil
}

// ListDoctorPartners lists the doctors linked to a patient profile, keyed by doctor user id.
func (r *linkRepository) ListDoctorPartners(ctx context.Context, patientID int64) ([]models.ChatPartner, error) {
	partners := []models.ChatPartner{}
	err := r.db.WithContext(ctx).
		Table("doctor_patient_links AS dpl").
		Select("u.id AS id, u.id AS user_id, u.fullname AS full_name").
		Joins("JOIN users u ON u.id = dpl.doctor_id").
		Where("dpl.patient_id = ?", patientID).
		Order("u.fullname ASC, u.id ASC").
		Scan(&partners).Error
	if err != nil {
		return nil, err
	}
	return partners, nil
}
