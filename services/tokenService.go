package services

import (
	"context"
	"strings"

	"TeleClinic/logging"
	"TeleClinic/metrics"
	"TeleClinic/models"
	"TeleClinic/repositories"
	"TeleClinic/utils"

	"go.uber.org/zap"
)

// TokenService hands out single-use doctor-signup tokens.
type TokenService struct {
	repos   *repositories.Repositories
	mailer  utils.Mailer
	metrics *metrics.Metrics
}

func NewTokenService(repos *repositories.Repositories, mailer utils.Mailer, m *metrics.Metrics) *TokenService {
	if mailer == nil {
		mailer = utils.NopMailer{}
	}
	return &TokenService{repos: repos, mailer: mailer, metrics: m}
}

// IssueDoctorSignupToken creates an unused token. When inviteEmail is set the token is also mailed there;
// a mail failure is logged and the token is still returned.
func (s *TokenService) IssueDoctorSignupToken(ctx context.Context, caller Caller, inviteEmail string) (*models.DoctorSignupToken, error) {
	if caller.Role != models.RoleAdmin {
		return nil, ErrUnauthorized
	}
	inviteEmail = strings.ToLower(strings.TrimSpace(inviteEmail))
	if inviteEmail != "" {
		if err := utils.ValidateEmail(inviteEmail); err != nil {
			return nil, validationFailed(err)
		}
	}

	value, err := utils.GenerateOpaqueToken()
	if err != nil {
		return nil, internal("generate signup token", err)
	}
	token := &models.DoctorSignupToken{Token: value, CreatedBy: caller.ID}
	if err := s.repos.SignupTokens.Create(ctx, token); err != nil {
		return nil, internal("store signup token", err)
	}
	s.metrics.Event("doctor_token", "issued")

	logger := logging.FromContext(ctx).With(zap.Int64("token_id", token.ID))
	logger.Info("doctor signup token issued")
	if inviteEmail != "" {
		if err := utils.SendDoctorInviteEmail(s.mailer, inviteEmail, value); err != nil {
			logger.Warn("failed to mail doctor invitation", zap.Error(err))
		}
	}
	return token, nil
}
