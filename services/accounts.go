package services

import (
	"context"
	"strings"

	"TeleClinic/models"
	"TeleClinic/repositories"
	"TeleClinic/utils"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
)

// SignupInput carries the fields every new account needs.
type SignupInput struct {
	FullName string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phonenumber"`
}

func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName, utils.FullNameRules...),
		validation.Field(&in.Email, utils.EmailRules...),
		validation.Field(&in.Password, utils.PasswordRules...),
		validation.Field(&in.Phone, utils.PhoneRules...),
	)
}

func (in SignupInput) normalized() SignupInput {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

// PatientAccount is a freshly created patient user and profile.
type PatientAccount struct {
	User    *models.User           `json:"user"`
	Profile *models.PatientProfile `json:"profile"`
}

// createUser inserts a user after the duplicate pre-checks. The unique indexes are what actually close the
// race; the pre-checks only give a precise error in the common case.
func createUser(ctx context.Context, repos *repositories.Repositories, in SignupInput, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}

	exists, err := repos.Users.EmailExists(ctx, in.Email)
	if err != nil {
		return nil, internal("check email", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}
	exists, err = repos.Users.PhoneExists(ctx, in.Phone)
	if err != nil {
		return nil, internal("check phone", err)
	}
	if exists {
		return nil, ErrPhoneTaken
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	user := &models.User{
		FullName: in.FullName,
		Email:    in.Email,
		Phone:    in.Phone,
		Password: hash,
		Role:     role,
	}
	if err := repos.Users.CreateUser(ctx, user); err != nil {
		if isDuplicateKey(err) {
			return nil, errors.WithMessage(ErrDuplicate, "email or phone number already registered")
		}
		return nil, internal("create user", err)
	}
	return user, nil
}

// createPatient creates the Patient user and its profile with a fresh patient token. Callers run it
// inside a transaction so the two rows appear together.
func createPatient(ctx context.Context, tx *repositories.Repositories, in SignupInput) (*PatientAccount, error) {
	user, err := createUser(ctx, tx, in, models.RolePatient)
	if err != nil {
		return nil, err
	}

	token, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, internal("generate patient token", err)
	}
	profile := &models.PatientProfile{UserID: user.ID, Token: token}
	if err := tx.Patients.CreateProfile(ctx, profile); err != nil {
		return nil, internal("create patient profile", err)
	}
	return &PatientAccount{User: user, Profile: profile}, nil
}
