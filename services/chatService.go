package services

import (
	"context"
	"strings"
	"time"

	"TeleClinic/logging"
	"TeleClinic/metrics"
	"TeleClinic/models"
	"TeleClinic/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"go.uber.org/zap"
)

const maxMessageLength = 4000

type ChatService struct {
	repos   *repositories.Repositories
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewChatService(repos *repositories.Repositories, m *metrics.Metrics) *ChatService {
	return &ChatService{repos: repos, metrics: m, now: time.Now}
}

// SendMessage stores a message from the caller to a linked counterpart.
func (s *ChatService) SendMessage(ctx context.Context, caller Caller, counterpartID int64, message string) (*models.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if err := validation.Validate(message, validation.Required, validation.RuneLength(1, maxMessageLength)); err != nil {
		return nil, validationFailed(err)
	}

	pair, err := NewGuard(s.repos).Authorize(ctx, caller, counterpartID)
	if err != nil {
		return nil, err
	}
	receiver := pair.DoctorID
	if caller.Role == models.RoleDoctor {
		receiver = pair.PatientUserID
	}

	msg := &models.ChatMessage{
		SenderID:   caller.ID,
		ReceiverID: receiver,
		Message:    message,
		SentAt:     s.now().UTC(),
	}
	if err := s.repos.Chat.Create(ctx, msg); err != nil {
		return nil, internal("store message", err)
	}
	s.metrics.Event("chat_message", "sent")
	logging.FromContext(ctx).Debug("chat message stored", zap.Int64("message_id", msg.ID))
	return msg, nil
}

// History returns the conversation with a linked counterpart, oldest first.
func (s *ChatService) History(ctx context.Context, caller Caller, counterpartID int64) ([]models.ChatEntry, error) {
	pair, err := NewGuard(s.repos).Authorize(ctx, caller, counterpartID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repos.Chat.Conversation(ctx, pair.DoctorID, pair.PatientUserID)
	if err != nil {
		return nil, internal("load conversation", err)
	}
	return entries, nil
}

// Partners lists everyone the caller may chat with. Ids are the ones the caller passes back to
// SendMessage and History.
func (s *ChatService) Partners(ctx context.Context, caller Caller) ([]models.ChatPartner, error) {
	switch caller.Role {
	case models.RoleDoctor:
		partners, err := s.repos.Links.ListPatientPartners(ctx, caller.ID)
		if err != nil {
			return nil, internal("list partners", err)
		}
		return partners, nil
	case models.RolePatient:
		profile, err := s.repos.Patients.GetByUserID(ctx, caller.ID)
		if err != nil {
			return nil, internal("load patient", err)
		}
		if profile == nil {
			return []models.ChatPartner{}, nil
		}
		partners, err := s.repos.Links.ListDoctorPartners(ctx, profile.ID)
		if err != nil {
			return nil, internal("list partners", err)
		}
		return partners, nil
	}
	return nil, ErrUnauthorized
}
