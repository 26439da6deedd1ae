package models

import (
	"time"
)

// PatientProfile extends a Patient user with the token used to request links.
type PatientProfile struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	UserID    int64     `gorm:"not null;unique;column:user_id" json:"user_id"`
	Token     string    `gorm:"size:64;not null;unique;column:token" json:"token"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PatientProfile) TableName() string {
	return "patients"
}

// DoctorPatientLink is the authorization edge between a doctor user and a patient profile.
type DoctorPatientLink struct {
	ID        int64          `gorm:"primaryKey;column:id" json:"id"`
	DoctorID  int64          `gorm:"not null;uniqueIndex:idx_doctor_patient;column:doctor_id" json:"doctor_id"`
	PatientID int64          `gorm:"not null;uniqueIndex:idx_doctor_patient;index;column:patient_id" json:"patient_id"`
	CreatedAt time.Time      `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	Doctor    User           `gorm:"foreignKey:DoctorID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Patient   PatientProfile `gorm:"foreignKey:PatientID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (DoctorPatientLink) TableName() string {
	return "doctor_patient_links"
}

// PatientSummary is the row a doctor sees when listing linked patients.
type PatientSummary struct {
	UserID       int64     `json:"userId"`
	PatientID    int64     `json:"patientId"`
	FullName     string    `json:"fullname"`
	Email        string    `json:"email"`
	Phone        string    `json:"phonenumber"`
	PatientToken string    `json:"patientToken"`
	LinkedAt     time.Time `json:"linkedAt"`
}

// ChatPartner is a linked counterpart as seen from either side of a link.
// For a doctor caller ID is the patient profile id, for a patient caller it is the doctor user id.
type ChatPartner struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"userId"`
	FullName string `json:"fullname"`
}
