package services

import (
	"context"
	"strings"
	"time"

	"TeleClinic/config"
	"TeleClinic/logging"
	"TeleClinic/metrics"
	"TeleClinic/models"
	"TeleClinic/repositories"
	"TeleClinic/utils"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Session is a freshly issued access token.
type Session struct {
	Token  string             `json:"accessToken"`
	Claims *utils.TokenClaims `json:"-"`
	User   *models.User       `json:"user"`
}

type AuthService interface {
	CreateUser(ctx context.Context, in SignupInput, role models.Role) (*models.User, error)
	VerifyCredentials(ctx context.Context, email, password string) (*models.User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, claims *utils.TokenClaims) error
	Authenticate(ctx context.Context, token string) (*utils.TokenClaims, error)
	Profile(ctx context.Context, userID int64) (*models.User, error)
	SignupPatient(ctx context.Context, in SignupInput) (*PatientAccount, error)
	SignupDoctor(ctx context.Context, in SignupInput, signupToken string) (*models.User, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	EnsureAdmin(ctx context.Context, seed config.AdminSeed) error
}

type authService struct {
	repos       *repositories.Repositories
	sessions    *utils.SessionIssuer
	revocations *utils.Revocations
	resetCodes  *utils.ResetCodes
	mailer      utils.Mailer
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewAuthService(
	repos *repositories.Repositories,
	sessions *utils.SessionIssuer,
	revocations *utils.Revocations,
	resetCodes *utils.ResetCodes,
	mailer utils.Mailer,
	m *metrics.Metrics,
) AuthService {
	if mailer == nil {
		mailer = utils.NopMailer{}
	}
	return &authService{
		repos:       repos,
		sessions:    sessions,
		revocations: revocations,
		resetCodes:  resetCodes,
		mailer:      mailer,
		metrics:     m,
		now:         time.Now,
	}
}

func (s *authService) CreateUser(ctx context.Context, in SignupInput, role models.Role) (*models.User, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return nil, validationFailed(err)
	}
	user, err := createUser(ctx, s.repos, in, role)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Info("user created", zap.Int64("user_id", user.ID), zap.String("role", string(role)))
	return user, nil
}

// VerifyCredentials keeps the two failure kinds apart: ErrNotFound for an unknown email and
// ErrPasswordMismatch for a wrong password. The HTTP layer folds both into one answer.
func (s *authService) VerifyCredentials(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, invalid("email and password are required")
	}

	user, err := s.repos.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, internal("load user", err)
	}
	if user == nil {
		return nil, errors.WithMessage(ErrNotFound, "no account with this email")
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, ErrPasswordMismatch
	}
	return user, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		s.metrics.Event("signin", "rejected")
		return nil, err
	}

	token, claims, err := s.sessions.Issue(user.ID, user.Role)
	if err != nil {
		return nil, internal("issue session", err)
	}
	s.metrics.Event("signin", "ok")
	return &Session{Token: token, Claims: claims, User: user}, nil
}

func (s *authService) SignOut(ctx context.Context, claims *utils.TokenClaims) error {
	if claims == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims); err != nil {
		return internal("revoke session", err)
	}
	return nil
}

// Authenticate validates a session token and rejects signed-out ones.
func (s *authService) Authenticate(ctx context.Context, token string) (*utils.TokenClaims, error) {
	claims, err := s.sessions.Validate(token)
	if err != nil {
		return nil, errors.Wrap(ErrUnauthorized, err.Error())
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims)
	if err != nil {
		return nil, internal("check revocation", err)
	}
	if revoked {
		return nil, errors.WithMessage(ErrUnauthorized, "session signed out")
	}
	return claims, nil
}

func (s *authService) Profile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.repos.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, internal("load user", err)
	}
	if user == nil {
		return nil, errors.WithMessage(ErrNotFound, "user not found")
	}
	return user, nil
}

func (s *authService) SignupPatient(ctx context.Context, in SignupInput) (*PatientAccount, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return nil, validationFailed(err)
	}

	var account *PatientAccount
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		var err error
		account, err = createPatient(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.Event("patient_signup", "ok")
	logging.FromContext(ctx).Info("patient signed up", zap.Int64("user_id", account.User.ID))
	return account, nil
}

// SignupDoctor redeems a doctor-signup token and creates the Doctor user in the same transaction.
// A failed insert rolls the redemption back, so the token stays usable.
func (s *authService) SignupDoctor(ctx context.Context, in SignupInput, signupToken string) (*models.User, error) {
	signupToken = strings.TrimSpace(signupToken)
	if signupToken == "" {
		return nil, errors.WithMessage(ErrInvalidToken, "signup token is required")
	}
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return nil, validationFailed(err)
	}

	var user *models.User
	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		redeemed, err := tx.SignupTokens.MarkUsed(ctx, signupToken, s.now())
		if err != nil {
			return internal("redeem signup token", err)
		}
		if !redeemed {
			return ErrInvalidToken
		}
		user, err = createUser(ctx, tx, in, models.RoleDoctor)
		return err
	})
	if err != nil {
		s.metrics.Event("doctor_signup", "rejected")
		return nil, err
	}
	s.metrics.Event("doctor_signup", "ok")
	logging.FromContext(ctx).Info("doctor signed up", zap.Int64("user_id", user.ID))
	return user, nil
}

// RequestPasswordReset mails a reset code. Unknown emails succeed silently.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validationFailed(utils.ValidateEmail(email)); err != nil {
		return err
	}

	user, err := s.repos.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return internal("load user", err)
	}
	if user == nil {
		logging.FromContext(ctx).Debug("reset code requested for unknown email")
		return nil
	}

	code, err := utils.GenerateResetCode()
	if err != nil {
		return internal("generate reset code", err)
	}
	if err := s.resetCodes.Set(ctx, email, code); err != nil {
		return internal("store reset code", err)
	}
	if err := utils.SendResetCodeEmail(s.mailer, email, code); err != nil {
		return internal("send reset code", err)
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := utils.ValidatePasswordReset(code, newPassword); err != nil {
		return validationFailed(err)
	}

	ok, err := s.resetCodes.Verify(ctx, email, code)
	if err != nil {
		return internal("verify reset code", err)
	}
	if !ok {
		return errors.WithMessage(ErrInvalidToken, "invalid or expired reset code")
	}

	user, err := s.repos.Users.GetUserByEmail(ctx, email)
	if err != nil {
		return internal("load user", err)
	}
	if user == nil {
		return errors.WithMessage(ErrInvalidToken, "invalid or expired reset code")
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return internal("hash password", err)
	}
	// Sessions opened with the old password end here.
	if err := s.revocations.RevokeUser(ctx, user.ID, s.now(), s.sessions.Expiry()); err != nil {
		return internal("revoke sessions", err)
	}
	if err := s.repos.Users.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return internal("update password", err)
	}
	if err := s.resetCodes.Delete(ctx, email); err != nil {
		logging.FromContext(ctx).Warn("failed to delete reset code", zap.Error(err))
	}
	logging.FromContext(ctx).Info("password reset", zap.Int64("user_id", user.ID))
	return nil
}

// EnsureAdmin creates the bootstrap administrator when the seed names one that does not exist yet.
func (s *authService) EnsureAdmin(ctx context.Context, seed config.AdminSeed) error {
	if seed.Email == "" {
		return nil
	}
	in := SignupInput{FullName: seed.FullName, Email: seed.Email, Password: seed.Password, Phone: seed.Phone}.normalized()

	existing, err := s.repos.Users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		return internal("load admin", err)
	}
	if existing != nil {
		if existing.Role != models.RoleAdmin {
			return errors.Errorf("bootstrap admin email %s belongs to a %s", in.Email, existing.Role)
		}
		return nil
	}

	if _, err := s.CreateUser(ctx, in, models.RoleAdmin); err != nil {
		return errors.Wrap(err, "create bootstrap admin")
	}
	logging.FromContext(ctx).Info("bootstrap admin created")
	return nil
}
