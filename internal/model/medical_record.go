package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

type MedicalRecord struct {
	ID            uuid.UUID          `db:"id" json:"id"`
	PatientID     uuid.UUID          `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID          `db:"doctor_id" json:"doctor_id"`
	AppointmentID *uuid.UUID         `db:"appointment_id" json:"appointment_id,omitempty"`
	Diagnosis     string             `db:"diagnosis" json:"diagnosis"`
	Symptoms      *string            `db:"symptoms" json:"symptoms,omitempty"`
	Notes         *string            `db:"notes" json:"notes,omitempty"`
	VitalSigns    types.NullJSONText `db:"vital_signs" json:"vital_signs"`
	CreatedAt     time.Time          `db:"created_at" json:"created_at"`
}

type Medication struct {
	Name      string `json:"name" binding:"required,max=200"`
	Dosage    string `json:"dosage" binding:"omitempty,max=100"`
	Frequency string `json:"frequency" binding:"omitempty,max=100"`
	Duration  string `json:"duration" binding:"omitempty,max=100"`
}

type Prescription struct {
	ID              uuid.UUID      `db:"id" json:"id"`
	MedicalRecordID uuid.UUID      `db:"medical_record_id" json:"medical_record_id"`
	AppointmentID   *uuid.UUID     `db:"appointment_id" json:"appointment_id,omitempty"`
	PatientID       uuid.UUID      `db:"patient_id" json:"patient_id"`
	DoctorID        uuid.UUID      `db:"doctor_id" json:"doctor_id"`
	Medications     types.JSONText `db:"medications" json:"medications"`
	Instructions    *string        `db:"instructions" json:"instructions,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
}

// MedicalRecordDetail is a record joined with its author and prescription.
type MedicalRecordDetail struct {
	MedicalRecord
	DoctorFirstName          *string            `db:"doctor_first_name" json:"doctor_first_name,omitempty"`
	DoctorLastName           *string            `db:"doctor_last_name" json:"doctor_last_name,omitempty"`
	Specialization           *string            `db:"specialization" json:"specialization,omitempty"`
	AppointmentDate          *string            `db:"appointment_date" json:"appointment_date,omitempty"`
	Medications              types.NullJSONText `db:"medications" json:"medications"`
	PrescriptionInstructions *string            `db:"prescription_instructions" json:"prescription_instructions,omitempty"`
}

type PrescriptionDetail struct {
	Prescription
	DoctorFirstName string  `db:"doctor_first_name" json:"doctor_first_name"`
	DoctorLastName  string  `db:"doctor_last_name" json:"doctor_last_name"`
	Specialization  *string `db:"specialization" json:"specialization,omitempty"`
	AppointmentDate *string `db:"appointment_date" json:"appointment_date,omitempty"`
}

type CreateMedicalRecordRequest struct {
	Diagnosis    string          `json:"diagnosis" binding:"required,max=2000"`
	Symptoms     *string         `json:"symptoms" binding:"omitempty,max=2000"`
	Notes        *string         `json:"notes" binding:"omitempty,max=5000"`
	VitalSigns   json.RawMessage `json:"vital_signs"`
	Medications  []Medication    `json:"medications" binding:"omitempty,dive"`
	Instructions *string         `json:"instructions" binding:"omitempty,max=2000"`
}

// MedicalRecordResult is returned after a consultation is written.
type MedicalRecordResult struct {
	MedicalRecord *MedicalRecord `json:"medical_record"`
	Prescription  *Prescription  `json:"prescription,omitempty"`
}
