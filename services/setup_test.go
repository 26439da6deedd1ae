package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"TeleClinic/models"
	"TeleClinic/repositories"
	"TeleClinic/testutil"
	"TeleClinic/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSymmetricKey = "0123456789abcdef0123456789abcdef"

const testPassword = "Secr3t!pass"

type testEnv struct {
	db            *gorm.DB
	repos         *repositories.Repositories
	store         *testutil.MemoryStore
	mailer        *testutil.RecordingMailer
	sessions      *utils.SessionIssuer
	auth          AuthService
	tokens        *TokenService
	links         *LinkService
	prescriptions *PrescriptionService
	chat          *ChatService
	seq           int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	repos := repositories.New(db)
	store := testutil.NewMemoryStore()
	mailer := &testutil.RecordingMailer{}
	sessions, err := utils.NewSessionIssuer(testSymmetricKey, utils.AccessTokenExpiry)
	require.NoError(t, err)

	return &testEnv{
		db:            db,
		repos:         repos,
		store:         store,
		mailer:        mailer,
		sessions:      sessions,
		auth:          NewAuthService(repos, sessions, utils.NewRevocations(store), utils.NewResetCodes(store), mailer, nil),
		tokens:        NewTokenService(repos, mailer, nil),
		links:         NewLinkService(repos, nil),
		prescriptions: NewPrescriptionService(repos, nil),
		chat:          NewChatService(repos, nil),
	}
}

// input returns a valid signup payload with a unique email and phone.
func (e *testEnv) input(name string) SignupInput {
	n := atomic.AddInt64(&e.seq, 1)
	handle := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return SignupInput{
		FullName: name,
		Email:    fmt.Sprintf("%s.%d@example.com", handle, n),
		Password: testPassword,
		Phone:    fmt.Sprintf("+1555%06d", n),
	}
}

func (e *testEnv) admin(t *testing.T) Caller {
	t.Helper()
	user, err := e.auth.CreateUser(context.Background(), e.input("Ada Admin"), models.RoleAdmin)
	require.NoError(t, err)
	return Caller{ID: user.ID, Role: models.RoleAdmin}
}

func (e *testEnv) signupToken(t *testing.T) string {
	t.Helper()
	admin := e.admin(t)
	token, err := e.tokens.IssueDoctorSignupToken(context.Background(), admin, "")
	require.NoError(t, err)
	return token.Token
}

func (e *testEnv) doctor(t *testing.T, name string) Caller {
	t.Helper()
	user, err := e.auth.SignupDoctor(context.Background(), e.input(name), e.signupToken(t))
	require.NoError(t, err)
	return Caller{ID: user.ID, Role: models.RoleDoctor}
}

func (e *testEnv) patient(t *testing.T, name string) (Caller, *PatientAccount) {
	t.Helper()
	account, err := e.auth.SignupPatient(context.Background(), e.input(name))
	require.NoError(t, err)
	return Caller{ID: account.User.ID, Role: models.RolePatient}, account
}

func (e *testEnv) link(t *testing.T, doctor Caller, account *PatientAccount) {
	t.Helper()
	_, err := e.links.Link(context.Background(), doctor, account.Profile.Token)
	require.NoError(t, err)
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
