package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every repository over one database handle. Inside Transaction the handle is the
// transaction, so a service can express a multi-step write as a single unit of work.
type Repositories struct {
	db *gorm.DB

	Users         UserRepository
	Patients      PatientRepository
	SignupTokens  SignupTokenRepository
	Links         LinkRepository
	Prescriptions PrescriptionRepository
	Chat          ChatRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewUserRepository(db),
		Patients:      NewPatientRepository(db),
		SignupTokens:  NewSignupTokenRepository(db),
		Links:         NewLinkRepository(db),
		Prescriptions: NewPrescriptionRepository(db),
		Chat:          NewChatRepository(db),
	}
}

// Transaction runs fn against repositories bound to a single transaction. Any error rolls everything back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}
