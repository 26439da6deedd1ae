package services

import (
	"context"
	"testing"

	"TeleClinic/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkAndListPatients(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctor := env.doctor(t, "Doc")
	patients, err := env.links.ListPatients(ctx, doctor)
	require.NoError(t, err)
	require.NotNil(t, patients)
	assert.Empty(t, patients)

	_, first := env.patient(t, "First Patient")
	_, second := env.patient(t, "Second Patient")
	env.link(t, doctor, first)
	env.link(t, doctor, second)

	patients, err = env.links.ListPatients(ctx, doctor)
	require.NoError(t, err)
	require.Len(t, patients, 2)
	assert.Equal(t, first.Profile.ID, patients[0].PatientID)
	assert.Equal(t, first.User.ID, patients[0].UserID)
	assert.Equal(t, "First Patient", patients[0].FullName)
	assert.Equal(t, first.Profile.Token, patients[0].PatientToken)
	assert.Equal(t, second.Profile.ID, patients[1].PatientID)
}

func TestLinkTwiceIsAlreadyLinked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctor := env.doctor(t, "Doc")
	_, account := env.patient(t, "Pat")
	env.link(t, doctor, account)

	_, err := env.links.Link(ctx, doctor, account.Profile.Token)
	require.ErrorIs(t, err, ErrAlreadyLinked)
	assert.Equal(t, ErrDuplicate, KindOf(err))
	assert.EqualValues(t, 1, env.count(t, &models.DoctorPatientLink{}))
}

func TestLinkRejectsNonDoctorAndBadTokens(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	patient, account := env.patient(t, "Pat")
	_, err := env.links.Link(ctx, patient, account.Profile.Token)
	require.ErrorIs(t, err, ErrNotADoctor)
	assert.Equal(t, ErrUnauthorized, KindOf(err))

	doctor := env.doctor(t, "Doc")
	_, err = env.links.Link(ctx, doctor, "0000000000000000000000000000000000000000")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = env.links.Link(ctx, doctor, "short")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestUnlink(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctor := env.doctor(t, "Doc")
	patient, account := env.patient(t, "Pat")
	env.link(t, doctor, account)

	require.NoError(t, env.links.Unlink(ctx, doctor, account.User.ID))

	err := env.links.Unlink(ctx, doctor, account.User.ID)
	require.ErrorIs(t, err, ErrNotFound)

	err = env.links.Unlink(ctx, doctor, 424242)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = env.chat.SendMessage(ctx, patient, doctor.ID, "still there?")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestCreatePatientByDoctor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctor := env.doctor(t, "Doc")
	account, err := env.links.CreatePatientByDoctor(ctx, doctor, env.input("Walk In"))
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{40}$`, account.Profile.Token)

	patients, err := env.links.ListPatients(ctx, doctor)
	require.NoError(t, err)
	require.Len(t, patients, 1)
	assert.Equal(t, account.User.ID, patients[0].UserID)

	_, err = env.links.Link(ctx, doctor, account.Profile.Token)
	require.ErrorIs(t, err, ErrAlreadyLinked)
}

func TestCreatePatientByDoctorIsAtomic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	doctor := env.doctor(t, "Doc")
	users := env.count(t, &models.User{})

	in := env.input("Duplicate")
	_, err := env.links.CreatePatientByDoctor(ctx, doctor, in)
	require.NoError(t, err)

	again := env.input("Duplicate Again")
	again.Email = in.Email
	_, err = env.links.CreatePatientByDoctor(ctx, doctor, again)
	require.ErrorIs(t, err, ErrDuplicate)

	assert.Equal(t, users+1, env.count(t, &models.User{}))
	assert.EqualValues(t, 1, env.count(t, &models.PatientProfile{}))
	assert.EqualValues(t, 1, env.count(t, &models.DoctorPatientLink{}))

	patient, _ := env.patient(t, "Pat")
	_, err = env.links.CreatePatientByDoctor(ctx, patient, env.input("Nope"))
	require.ErrorIs(t, err, ErrNotADoctor)
}
