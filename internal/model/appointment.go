package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled: {
		AppointmentStatusInProgress,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
	},
	AppointmentStatusInProgress: {
		AppointmentStatusCompleted,
	},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusInProgress,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next is a legal forward step.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Predecessors lists the statuses from which s may be reached.
func (s AppointmentStatus) Predecessors() []AppointmentStatus {
	var from []AppointmentStatus
	for prev, targets := range appointmentTransitions {
		for _, t := range targets {
			if t == s {
				from = append(from, prev)
			}
		}
	}
	return from
}

type Appointment struct {
	Base
	PatientID          uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID           uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	AppointmentDate    string            `db:"appointment_date" json:"appointment_date"`
	StartTime          string            `db:"start_time" json:"start_time"`
	EndTime            string            `db:"end_time" json:"end_time"`
	Status             AppointmentStatus `db:"status" json:"status"`
	Symptoms           *string           `db:"symptoms" json:"symptoms,omitempty"`
	CancellationReason *string           `db:"cancellation_reason" json:"cancellation_reason,omitempty"`
	VideoChannelName   string            `db:"video_channel_name" json:"video_channel_name"`
}

// IsParticipant reports whether userID is the patient or doctor of the appointment.
func (a *Appointment) IsParticipant(userID uuid.UUID) bool {
	return a.PatientID == userID || a.DoctorID == userID
}

// StartsAt resolves the appointment date and start time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	date, err := ParseDate(a.AppointmentDate)
	if err != nil {
		return time.Time{}, err
	}
	start, err := ParseClock(a.StartTime)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc).Add(start.Duration()), nil
}

// NewVideoChannelName builds a channel name from the booking instant and the requester.
func NewVideoChannelName(at time.Time, requester uuid.UUID) string {
	return fmt.Sprintf("appointment_%d_%s", at.UnixMilli(), requester)
}

// AppointmentDetail is an appointment joined with the names of both parties.
type AppointmentDetail struct {
	Appointment
	PatientFirstName  string  `db:"patient_first_name" json:"patient_first_name,omitempty"`
	PatientLastName   string  `db:"patient_last_name" json:"patient_last_name,omitempty"`
	PatientPhone      *string `db:"patient_phone" json:"patient_phone,omitempty"`
	DateOfBirth       *string `db:"date_of_birth" json:"date_of_birth,omitempty"`
	BloodGroup        *string `db:"blood_group" json:"blood_group,omitempty"`
	Allergies         *string `db:"allergies" json:"allergies,omitempty"`
	ChronicConditions *string `db:"chronic_conditions" json:"chronic_conditions,omitempty"`
	DoctorFirstName   string  `db:"doctor_first_name" json:"doctor_first_name,omitempty"`
	DoctorLastName    string  `db:"doctor_last_name" json:"doctor_last_name,omitempty"`
	Specialization    *string `db:"specialization" json:"specialization,omitempty"`
	HospitalName      *string `db:"hospital_name" json:"hospital_name,omitempty"`
}

type BookAppointmentRequest struct {
	DoctorID        string  `json:"doctor_id" binding:"required,uuid"`
	AppointmentDate string  `json:"appointment_date" binding:"required,isodate"`
	StartTime       string  `json:"start_time" binding:"required,clock"`
	EndTime         string  `json:"end_time" binding:"required,clock"`
	Symptoms        *string `json:"symptoms" binding:"omitempty,max=2000"`
}

type RescheduleAppointmentRequest struct {
	AppointmentDate string `json:"appointment_date" binding:"required,isodate"`
	StartTime       string `json:"start_time" binding:"required,clock"`
	EndTime         string `json:"end_time" binding:"required,clock"`
}

type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=scheduled in_progress completed cancelled"`
}

type CancelAppointmentRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=1000"`
}

// SlotRequest is a proposed booking window after syntactic validation.
type SlotRequest struct {
	DoctorID uuid.UUID
	Date     time.Time
	Start    Clock
	End      Clock
}

func (r SlotRequest) DateString() string {
	return r.Date.Format(DateLayout)
}
