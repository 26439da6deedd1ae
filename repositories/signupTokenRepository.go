package repositories

import (
	"context"
	"time"

	"TeleClinic/models"

	"gorm.io/gorm"
)

type SignupTokenRepository interface {
	Create(ctx context.Context, token *models.DoctorSignupToken) error
	MarkUsed(ctx context.Context, token string, usedAt time.Time) (bool, error)
}

type signupTokenRepository struct {
	db *gorm.DB
}

func NewSignupTokenRepository(db *gorm.DB) SignupTokenRepository {
	return &signupTokenRepository{db: db}
}

func (r *signupTokenRepository) Create(ctx context.Context, token *models.DoctorSignupToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

// MarkUsed flips is_used only if the token exists and is still unused. The boolean reports whether this
// call won the flip; concurrent callers racing on one token see exactly one true.
func (r *signupTokenRepository) MarkUsed(ctx context.Context, token string, usedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.DoctorSignupToken{}).
		Where("token = ? AND is_used = ?", token, false).
		Updates(map[string]interface{}{"is_used": true, "used_at": usedAt})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
