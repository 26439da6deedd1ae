package services

import (
	"context"

	"TeleClinic/models"
	"TeleClinic/repositories"
)

// Caller is the already authenticated identity a request acts as.
type Caller struct {
	ID   int64
	Role models.Role
}

// Pair is a linked doctor and patient with every id the callers may need.
type Pair struct {
	DoctorID      int64 // doctor user id
	PatientID     int64 // patient profile id
	PatientUserID int64
}

// pairQuery is the role-neutral form of a "who is on the other side" question. Exactly one of
// PatientID and PatientUserID is set.
type pairQuery struct {
	DoctorID      int64
	PatientID     int64
	PatientUserID int64
}

// ResolvePair translates a caller and the counterpart id it passed into a role-neutral query.
// Doctors name patients by profile id; patients name doctors by user id.
func ResolvePair(caller Caller, counterpartID int64) (pairQuery, error) {
	if counterpartID <= 0 {
		return pairQuery{}, invalid("counterpart id must be positive")
	}
	switch caller.Role {
	case models.RoleDoctor:
		return pairQuery{DoctorID: caller.ID, PatientID: counterpartID}, nil
	case models.RolePatient:
		return pairQuery{DoctorID: counterpartID, PatientUserID: caller.ID}, nil
	}
	return pairQuery{}, ErrUnauthorized
}

// Guard decides whether a doctor/patient pair is linked. Every chat and prescription path asks it first.
type Guard struct {
	repos *repositories.Repositories
}

func NewGuard(repos *repositories.Repositories) Guard {
	return Guard{repos: repos}
}

// Authorize returns the linked pair between caller and counterpart, or ErrUnauthorized.
func (g Guard) Authorize(ctx context.Context, caller Caller, counterpartID int64) (*Pair, error) {
	q, err := ResolvePair(caller, counterpartID)
	if err != nil {
		return nil, err
	}

	var profile *models.PatientProfile
	if q.PatientUserID != 0 {
		profile, err = g.repos.Patients.GetByUserID(ctx, q.PatientUserID)
	} else {
		profile, err = g.repos.Patients.GetByID(ctx, q.PatientID)
	}
	if err != nil {
		return nil, internal("load patient profile", err)
	}
	if profile == nil {
		return nil, ErrUnauthorized
	}

	linked, err := g.repos.Links.Exists(ctx, q.DoctorID, profile.ID)
	if err != nil {
		return nil, internal("check link", err)
	}
	if !linked {
		return nil, ErrUnauthorized
	}
	return &Pair{DoctorID: q.DoctorID, PatientID: profile.ID, PatientUserID: profile.UserID}, nil
}
