package models

import (
	"time"
)

// Role is the immutable role tag carried by every user.
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleDoctor  Role = "Doctor"
	RolePatient Role = "Patient"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RolePatient:
		return true
	}
	return false
}

// User represents an account in the system
type User struct {
	ID        int64     `gorm:"primaryKey;column:id" json:"id"`
	FullName  string    `gorm:"size:255;not null;column:fullname" json:"fullname"`
	Email     string    `gorm:"size:255;not null;unique;index;column:email" json:"email"`
	Phone     string    `gorm:"size:50;not null;unique;column:phonenumber" json:"phonenumber"`
	Password  string    `gorm:"size:255;not null;column:password" json:"-"`
	Role      Role      `gorm:"size:20;not null;index;column:role;check:role IN ('Doctor', 'Patient', 'Admin')" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// DoctorSignupToken is a single-use credential an Admin hands to a new doctor.
type DoctorSignupToken struct {
	ID        int64      `gorm:"primaryKey;column:id" json:"id"`
	Token     string     `gorm:"size:64;not null;unique;column:token" json:"token"`
	IsUsed    bool       `gorm:"not null;default:false;column:is_used" json:"is_used"`
	CreatedBy int64      `gorm:"index;column:created_by" json:"created_by"`
	CreatedAt time.Time  `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UsedAt    *time.Time `gorm:"column:used_at" json:"used_at,omitempty"`
}

func (DoctorSignupToken) TableName() string {
	return "doctor_signup_tokens"
}
