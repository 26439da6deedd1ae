package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueDoctorSignupTokenRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctor := env.doctor(t, "Doc")
	patient, _ := env.patient(t, "Pat")

	for _, who := range []Caller{doctor, patient} {
		_, err := env.tokens.IssueDoctorSignupToken(ctx, who, "")
		require.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestIssueDoctorSignupTokenIsFreshAndUnused(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)

	first, err := env.tokens.IssueDoctorSignupToken(ctx, admin, "")
	require.NoError(t, err)
	second, err := env.tokens.IssueDoctorSignupToken(ctx, admin, "")
	require.NoError(t, err)

	assert.Regexp(t, `^[0-9a-f]{40}$`, first.Token)
	assert.NotEqual(t, first.Token, second.Token)
	assert.False(t, first.IsUsed)
	assert.Equal(t, admin.ID, first.CreatedBy)
	assert.Empty(t, env.mailer.Sent())
}

func TestIssueDoctorSignupTokenMailsInvitation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.admin(t)

	token, err := env.tokens.IssueDoctorSignupToken(ctx, admin, "New.Doctor@Example.com")
	require.NoError(t, err)

	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "new.doctor@example.com", sent[0].To)
	assert.True(t, strings.HasSuffix(sent[0].Text, token.Token))

	_, err = env.tokens.IssueDoctorSignupToken(ctx, admin, "not-an-email")
	require.ErrorIs(t, err, ErrValidation)
}

func TestIssueDoctorSignupTokenSurvivesMailFailure(t *testing.T) {
	env := newTestEnv(t)
	admin := env.admin(t)
	env.mailer.Err = errors.New("smtp down")

	token, err := env.tokens.IssueDoctorSignupToken(context.Background(), admin, "doc@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
}
