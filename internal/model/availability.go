package model

import (
	"time"

	"github.com/google/uuid"
)

// AvailabilitySlot is a recurring weekly window in which a doctor accepts bookings.
type AvailabilitySlot struct {
	ID          uuid.UUID `json:"id" db:"id"`
	DoctorID    uuid.UUID `json:"doctor_id" db:"doctor_id"`
	DayOfWeek   int       `json:"day_of_week" db:"day_of_week"`
	StartTime   string    `json:"start_time" db:"start_time"`
	EndTime     string    `json:"end_time" db:"end_time"`
	IsAvailable bool      `json:"is_available" db:"is_available"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Covers reports whether the slot is open and fully contains [start, end].
func (s *AvailabilitySlot) Covers(start, end Clock) bool {
	if !s.IsAvailable {
		return false
	}
	slotStart, err := ParseClock(s.StartTime)
	if err != nil {
		return false
	}
	slotEnd, err := ParseClock(s.EndTime)
	if err != nil {
		return false
	}
	return slotStart <= start && slotEnd >= end
}

type CreateAvailabilityRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime string `json:"start_time" binding:"required,clock"`
	EndTime   string `json:"end_time" binding:"required,clock"`
}
