package repositories

import (
	"context"
	"errors"

	"TeleClinic/models"

	"gorm.io/gorm"
)

type PatientRepository interface {
	CreateProfile(ctx context.Context, profile *models.PatientProfile) error
	GetByID(ctx context.Context, id int64) (*models.PatientProfile, error)
	GetByUserID(ctx context.Context, userID int64) (*models.PatientProfile, error)
	GetByToken(ctx context.Context, token string) (*models.PatientProfile, error)
}

type patientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) CreateProfile(ctx context.Context, profile *models.PatientProfile) error {
	return r.db.WithContext(ctx).Omit("User").Create(profile).Error
}

func (r *patientRepository) GetByID(ctx context.Context, id int64) (*models.PatientProfile, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *patientRepository) GetByUserID(ctx context.Context, userID int64) (*models.PatientProfile, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *patientRepository) GetByToken(ctx context.Context, token string) (*models.PatientProfile, error) {
	return r.first(ctx, "token = ?", token)
}

// first returns nil, nil when nothing matches.
func (r *patientRepository) first(ctx context.Context, query string, arg interface{}) (*models.PatientProfile, error) {
	var profile models.PatientProfile
	err := r.db.WithContext(ctx).Where(query, arg).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
