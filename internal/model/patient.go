package model

import (
	"github.com/google/uuid"
)

type PatientProfile struct {
	DateOfBirth       *string `json:"date_of_birth,omitempty" db:"date_of_birth"`
	Gender            *string `json:"gender,omitempty" db:"gender"`
	BloodGroup        *string `json:"blood_group,omitempty" db:"blood_group"`
	Address           *string `json:"address,omitempty" db:"address"`
	City              *string `json:"city,omitempty" db:"city"`
	State             *string `json:"state,omitempty" db:"state"`
	Pincode           *string `json:"pincode,omitempty" db:"pincode"`
	EmergencyContact  *string `json:"emergency_contact,omitempty" db:"emergency_contact"`
	Allergies         *string `json:"allergies,omitempty" db:"allergies"`
	ChronicConditions *string `json:"chronic_conditions,omitempty" db:"chronic_conditions"`
}

// Patient is a user joined with its patient profile.
type Patient struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	PatientProfile
}

type UpdatePatientProfileRequest struct {
	ContactUpdate
	DateOfBirth       *string `json:"date_of_birth" binding:"omitempty,isodate"`
	Gender            *string `json:"gender" binding:"omitempty,max=20"`
	BloodGroup        *string `json:"blood_group" binding:"omitempty,max=5"`
	Address           *string `json:"address" binding:"omitempty,max=500"`
	City              *string `json:"city" binding:"omitempty,max=100"`
	State             *string `json:"state" binding:"omitempty,max=100"`
	Pincode           *string `json:"pincode" binding:"omitempty,max=10"`
	EmergencyContact  *string `json:"emergency_contact" binding:"omitempty,max=100"`
	Allergies         *string `json:"allergies" binding:"omitempty,max=1000"`
	ChronicConditions *string `json:"chronic_conditions" binding:"omitempty,max=1000"`
}
