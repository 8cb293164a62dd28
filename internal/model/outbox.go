package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "PENDING"
	OutboxStatusProcessing OutboxStatus = "PROCESSING"
	OutboxStatusProcessed  OutboxStatus = "PROCESSED"
	OutboxStatusFailed     OutboxStatus = "FAILED"
)

// Domain event types relayed through the outbox.
const (
	EventAppointmentBooked      = "appointment.booked"
	EventAppointmentCancelled   = "appointment.cancelled"
	EventAppointmentRescheduled = "appointment.rescheduled"
	EventAppointmentCompleted   = "appointment.completed"
	EventDoctorApproved         = "doctor.approved"
)

// NotificationEvents lists the event types the notifier listens to.
var NotificationEvents = []string{
	EventAppointmentBooked,
	EventAppointmentCancelled,
	EventAppointmentRescheduled,
	EventAppointmentCompleted,
	EventDoctorApproved,
}

type OutboxEvent struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	EventType    string         `db:"event_type" json:"event_type"`
	Payload      types.JSONText `db:"payload" json:"payload"`
	Status       OutboxStatus   `db:"status" json:"status"`
	ErrorMessage *string        `db:"error_message" json:"error_message,omitempty"`
	RetryCount   int            `db:"retry_count" json:"retry_count"`
	RetryAt      *time.Time     `db:"retry_at" json:"retry_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
	ProcessedAt  *time.Time     `db:"processed_at" json:"processed_at,omitempty"`
}

// AppointmentEvent is the payload of every appointment.* event.
type AppointmentEvent struct {
	AppointmentID   uuid.UUID         `json:"appointment_id"`
	PatientID       uuid.UUID         `json:"patient_id"`
	DoctorID        uuid.UUID         `json:"doctor_id"`
	AppointmentDate string            `json:"appointment_date"`
	StartTime       string            `json:"start_time"`
	EndTime         string            `json:"end_time"`
	Status          AppointmentStatus `json:"status"`
	Reason          *string           `json:"reason,omitempty"`
	OccurredAt      time.Time         `json:"occurred_at"`
}

func NewAppointmentEvent(a *Appointment, at time.Time) *AppointmentEvent {
	return &AppointmentEvent{
		AppointmentID:   a.ID,
		PatientID:       a.PatientID,
		DoctorID:        a.DoctorID,
		AppointmentDate: a.AppointmentDate,
		StartTime:       a.StartTime,
		EndTime:         a.EndTime,
		Status:          a.Status,
		Reason:          a.CancellationReason,
		OccurredAt:      at,
	}
}

// DoctorEvent is the payload of doctor.* events.
type DoctorEvent struct {
	DoctorID   uuid.UUID `json:"doctor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
