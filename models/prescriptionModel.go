package models

import (
	"time"
)

// Prescription is the header of an immutable prescription.
type Prescription struct {
	ID          int64            `gorm:"primaryKey;column:id" json:"id"`
	DoctorID    int64            `gorm:"not null;index;column:doctor_id" json:"doctor_id"`
	PatientID   int64            `gorm:"not null;index;column:patient_id" json:"patient_id"`
	CreatedAt   time.Time        `gorm:"column:created_at;index" json:"created_at"`
	Medications []MedicationLine `gorm:"foreignKey:PrescriptionID;references:ID" json:"medications,omitempty"`
	Doctor      User             `gorm:"foreignKey:DoctorID;references:ID" json:"-"`
	Patient     PatientProfile   `gorm:"foreignKey:PatientID;references:ID" json:"-"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}

// MedicationLine is one drug entry of a prescription, kept in the order it was written.
type MedicationLine struct {
	ID             int64  `gorm:"primaryKey;column:id" json:"-"`
	PrescriptionID int64  `gorm:"not null;index;column:prescription_id" json:"-"`
	Position       int    `gorm:"not null;column:position" json:"-"`
	Name           string `gorm:"size:255;not null;column:medication_name" json:"name"`
	Dosage         string `gorm:"size:255;not null;column:dosage" json:"dosage"`
	Frequency      string `gorm:"size:255;not null;column:frequency" json:"frequency"`
}

func (MedicationLine) TableName() string {
	return "prescription_medications"
}

// PrescriptionSummary is a list projection of a prescription.
type PrescriptionSummary struct {
	ID         int64     `json:"id"`
	DoctorID   int64     `json:"doctorId"`
	DoctorName string    `json:"doctorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PrescriptionDetail is a prescription with its lines and the prescriber's name.
type PrescriptionDetail struct {
	ID          int64            `json:"id"`
	DoctorID    int64            `json:"doctorId"`
	DoctorName  string           `json:"doctorName"`
	PatientID   int64            `json:"patientId"`
	CreatedAt   time.Time        `json:"createdAt"`
	Medications []MedicationLine `gorm:"-" json:"medications"`
}
