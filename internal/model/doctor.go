package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultSpecialization = "General Physician"
	DefaultQualification  = "MBBS"
)

type DoctorProfile struct {
	Specialization     string   `json:"specialization" db:"specialization"`
	Qualification      string   `json:"qualification" db:"qualification"`
	ExperienceYears    int      `json:"experience_years" db:"experience_years"`
	HospitalName       *string  `json:"hospital_name,omitempty" db:"hospital_name"`
	HospitalAddress    *string  `json:"hospital_address,omitempty" db:"hospital_address"`
	RegistrationNumber *string  `json:"registration_number,omitempty" db:"registration_number"`
	Bio                *string  `json:"bio,omitempty" db:"bio"`
	ConsultationFee    float64  `json:"consultation_fee" db:"consultation_fee"`
	Rating             *float64 `json:"rating,omitempty" db:"rating"`
	TotalConsultations int      `json:"total_consultations" db:"total_consultations"`
}

// Doctor is a user joined with its doctor profile.
type Doctor struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Email      string    `json:"email" db:"email"`
	FirstName  string    `json:"first_name" db:"first_name"`
	LastName   string    `json:"last_name" db:"last_name"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	IsApproved bool      `json:"is_approved" db:"is_approved"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	DoctorProfile
}

type DoctorFilter struct {
	Specialization string `form:"specialization" binding:"omitempty,max=100"`
	Search         string `form:"search" binding:"omitempty,max=100"`
}

type UpdateDoctorProfileRequest struct {
	ContactUpdate
	Specialization     *string  `json:"specialization" binding:"omitempty,max=100"`
	Qualification      *string  `json:"qualification" binding:"omitempty,max=200"`
	ExperienceYears    *int     `json:"experience_years" binding:"omitempty,min=0,max=80"`
	HospitalName       *string  `json:"hospital_name" binding:"omitempty,max=200"`
	HospitalAddress    *string  `json:"hospital_address" binding:"omitempty,max=500"`
	RegistrationNumber *string  `json:"registration_number" binding:"omitempty,max=100"`
	Bio                *string  `json:"bio" binding:"omitempty,max=2000"`
	ConsultationFee    *float64 `json:"consultation_fee" binding:"omitempty,min=0"`
}
