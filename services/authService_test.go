package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"TeleClinic/config"
	"TeleClinic/models"
	"TeleClinic/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserRejectsDuplicateEmailAndPhone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := env.input("Greg House")
	_, err := env.auth.CreateUser(ctx, in, models.RoleDoctor)
	require.NoError(t, err)

	sameEmail := env.input("Other Person")
	sameEmail.Email = strings.ToUpper(in.Email)
	_, err = env.auth.CreateUser(ctx, sameEmail, models.RolePatient)
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.Equal(t, ErrDuplicate, KindOf(err))

	samePhone := env.input("Third Person")
	samePhone.Phone = in.Phone
	_, err = env.auth.CreateUser(ctx, samePhone, models.RolePatient)
	require.ErrorIs(t, err, ErrPhoneTaken)
	assert.Equal(t, ErrDuplicate, KindOf(err))

	assert.EqualValues(t, 1, env.count(t, &models.User{}))
}

func TestUniqueIndexRejectsDuplicateInsert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user := &models.User{FullName: "A", Email: "a@example.com", Phone: "+1555000001", Password: "x", Role: models.RolePatient}
	require.NoError(t, env.repos.Users.CreateUser(ctx, user))

	dup := &models.User{FullName: "B", Email: "a@example.com", Phone: "+1555000002", Password: "x", Role: models.RolePatient}
	err := env.repos.Users.CreateUser(ctx, dup)
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))
}

func TestCreateUserValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := map[string]func(*SignupInput){
		"bad email":      func(in *SignupInput) { in.Email = "not-an-email" },
		"weak password":  func(in *SignupInput) { in.Password = "password" },
		"short password": func(in *SignupInput) { in.Password = "S3c!" },
		"missing name":   func(in *SignupInput) { in.FullName = " " },
		"bad phone":      func(in *SignupInput) { in.Phone = "call me" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := env.input("Valid Name")
			mutate(&in)
			_, err := env.auth.CreateUser(ctx, in, models.RolePatient)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	_, err := env.auth.CreateUser(ctx, env.input("Nurse"), models.Role("Nurse"))
	require.ErrorIs(t, err, ErrValidation)

	assert.Zero(t, env.count(t, &models.User{}))
}

func TestCreateUserStoresHashedPassword(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.CreateUser(context.Background(), env.input("Hash Check"), models.RolePatient)
	require.NoError(t, err)
	assert.NotEqual(t, testPassword, user.Password)
	assert.True(t, strings.HasPrefix(user.Password, "$2"))
}

func TestVerifyCredentials(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := env.input("Lisa Cuddy")
	created, err := env.auth.CreateUser(ctx, in, models.RoleAdmin)
	require.NoError(t, err)

	user, err := env.auth.VerifyCredentials(ctx, in.Email, testPassword)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)

	_, err = env.auth.VerifyCredentials(ctx, "nobody@example.com", testPassword)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.auth.VerifyCredentials(ctx, in.Email, "Wr0ng!pass")
	require.ErrorIs(t, err, ErrPasswordMismatch)
	assert.Equal(t, ErrUnauthorized, KindOf(err))
}

func TestSignInAndSignOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	in := env.input("James Wilson")
	_, err := env.auth.CreateUser(ctx, in, models.RoleDoctor)
	require.NoError(t, err)

	session, err := env.auth.SignIn(ctx, in.Email, testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, session.Token)

	claims, err := env.auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, claims.UserID)
	assert.Equal(t, models.RoleDoctor, claims.Role)

	require.NoError(t, env.auth.SignOut(ctx, claims))

	_, err = env.auth.Authenticate(ctx, session.Token)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthenticateRejectsForeignToken(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Authenticate(context.Background(), "v2.local.garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	who, account := env.patient(t, "Pat Patient")
	user, err := env.auth.Profile(ctx, who.ID)
	require.NoError(t, err)
	assert.Equal(t, account.User.Email, user.Email)

	_, err = env.auth.Profile(ctx, 9999)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSignupPatientCreatesProfileWithToken(t *testing.T) {
	env := newTestEnv(t)

	_, account := env.patient(t, "Pat Patient")
	assert.Equal(t, models.RolePatient, account.User.Role)
	assert.Equal(t, account.User.ID, account.Profile.UserID)
	assert.Regexp(t, `^[0-9a-f]{40}$`, account.Profile.Token)

	profile, err := env.repos.Patients.GetByToken(context.Background(), account.Profile.Token)
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, account.Profile.ID, profile.ID)
}

func TestSignupDoctorTokenIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	token := env.signupToken(t)
	user, err := env.auth.SignupDoctor(ctx, env.input("First Doctor"), token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, user.Role)

	_, err = env.auth.SignupDoctor(ctx, env.input("Second Doctor"), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignupDoctorWithAdminChosenToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	admin := env.admin(t)
	require.NoError(t, env.repos.SignupTokens.Create(ctx, &models.DoctorSignupToken{Token: "abc123", CreatedBy: admin.ID}))

	user, err := env.auth.SignupDoctor(ctx, env.input("First Doctor"), "abc123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, user.Role)

	_, err = env.auth.SignupDoctor(ctx, env.input("Second Doctor"), "abc123")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignupDoctorRejectsUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.SignupDoctor(ctx, env.input("Doc"), strings.Repeat("ab", 20))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.auth.SignupDoctor(ctx, env.input("Doc"), "")
	require.ErrorIs(t, err, ErrInvalidToken)

	var doctors int64
	require.NoError(t, env.db.Model(&models.User{}).Where("role = ?", models.RoleDoctor).Count(&doctors).Error)
	assert.Zero(t, doctors)
}

func TestSignupDoctorFailedInsertKeepsTokenUnused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, account := env.patient(t, "Taken Email")
	token := env.signupToken(t)

	in := env.input("Doc")
	in.Email = account.User.Email
	_, err := env.auth.SignupDoctor(ctx, in, token)
	require.ErrorIs(t, err, ErrDuplicate)

	var stored models.DoctorSignupToken
	require.NoError(t, env.db.Where("token = ?", token).First(&stored).Error)
	assert.False(t, stored.IsUsed)

	_, err = env.auth.SignupDoctor(ctx, env.input("Doc"), token)
	require.NoError(t, err)
}

func TestSignupDoctorConcurrentRedemption(t *testing.T) {
	env := newTestEnv(t)
	token := env.signupToken(t)

	const attempts = 8
	inputs := make([]SignupInput, attempts)
	for i := range inputs {
		inputs[i] = env.input(fmt.Sprintf("Racer %d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.auth.SignupDoctor(context.Background(), inputs[i], token)
		}(i)
	}
	wg.Wait()

	var ok, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidToken):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, rejected)
}

func lastResetCode(t *testing.T, env *testEnv) string {
	t.Helper()
	sent := env.mailer.Sent()
	require.NotEmpty(t, sent)
	text := sent[len(sent)-1].Text
	return text[len(text)-6:]
}

func TestPasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, account := env.patient(t, "Forgetful Patient")
	email := account.User.Email

	require.NoError(t, env.auth.RequestPasswordReset(ctx, email))
	code := lastResetCode(t, env)
	assert.Equal(t, email, env.mailer.Sent()[0].To)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	err := env.auth.ResetPassword(ctx, email, wrong, "N3w!password")
	require.ErrorIs(t, err, ErrInvalidToken)

	err = env.auth.ResetPassword(ctx, email, code, "weak")
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, env.auth.ResetPassword(ctx, email, code, "N3w!password"))

	_, err = env.auth.VerifyCredentials(ctx, email, "N3w!password")
	require.NoError(t, err)
	_, err = env.auth.VerifyCredentials(ctx, email, testPassword)
	require.ErrorIs(t, err, ErrPasswordMismatch)

	err = env.auth.ResetPassword(ctx, email, code, "An0ther!password")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordResetEndsExistingSessions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, account := env.patient(t, "Careful Patient")
	email := account.User.Email
	before, err := env.auth.SignIn(ctx, email, testPassword)
	require.NoError(t, err)

	require.NoError(t, env.auth.RequestPasswordReset(ctx, email))
	require.NoError(t, env.auth.ResetPassword(ctx, email, lastResetCode(t, env), "N3w!password"))

	_, err = env.auth.Authenticate(ctx, before.Token)
	require.ErrorIs(t, err, ErrUnauthorized)

	after, err := env.auth.SignIn(ctx, email, "N3w!password")
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, after.Token)
	require.NoError(t, err)
}

func TestPasswordResetCodeBurnsAfterRepeatedGuesses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, account := env.patient(t, "Targeted Patient")
	email := account.User.Email
	require.NoError(t, env.auth.RequestPasswordReset(ctx, email))
	code := lastResetCode(t, env)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	for i := 0; i < utils.MaxResetAttempts; i++ {
		err := env.auth.ResetPassword(ctx, email, wrong, "N3w!password")
		require.ErrorIs(t, err, ErrInvalidToken)
	}

	err := env.auth.ResetPassword(ctx, email, code, "N3w!password")
	require.ErrorIs(t, err, ErrInvalidToken)
	_, err = env.auth.VerifyCredentials(ctx, email, testPassword)
	require.NoError(t, err)
}

func TestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.auth.RequestPasswordReset(context.Background(), "ghost@example.com"))
	assert.Empty(t, env.mailer.Sent())
}

func TestPasswordResetCodeExpires(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, account := env.patient(t, "Slow Patient")
	require.NoError(t, env.auth.RequestPasswordReset(ctx, account.User.Email))
	code := lastResetCode(t, env)

	env.store.Advance(16 * time.Minute)
	err := env.auth.ResetPassword(ctx, account.User.Email, code, "N3w!password")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnsureAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seed := config.AdminSeed{Email: "root@example.com", Password: testPassword, FullName: "Root", Phone: "+1555999999"}
	require.NoError(t, env.auth.EnsureAdmin(ctx, seed))
	require.NoError(t, env.auth.EnsureAdmin(ctx, seed))

	user, err := env.auth.VerifyCredentials(ctx, seed.Email, testPassword)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.EqualValues(t, 1, env.count(t, &models.User{}))

	require.NoError(t, env.auth.EnsureAdmin(ctx, config.AdminSeed{}))
}
