package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
)

var (
	ErrSlotBooked        = apperrors.Conflict("This slot is already booked")
	ErrSlotConflict      = apperrors.Conflict("Appointment slot conflict")
	ErrDoctorUnavailable = apperrors.BadRequest("Doctor is not available at this time")
	ErrInvalidWindow     = apperrors.BadRequest("End time must be after start time")
)

// ParseSlot validates the wire form of a booking window.
func ParseSlot(doctorID uuid.UUID, date, start, end string) (model.SlotRequest, error) {
	d, err := model.ParseDate(date)
	if err != nil {
		return model.SlotRequest{}, apperrors.NewBadRequest("Invalid appointment date", err)
	}
	s, err := model.ParseClock(start)
	if err != nil {
		return model.SlotRequest{}, apperrors.NewBadRequest("Invalid start time", err)
	}
	e, err := model.ParseClock(end)
	if err != nil {
		return model.SlotRequest{}, apperrors.NewBadRequest("Invalid end time", err)
	}
	if e <= s {
		return model.SlotRequest{}, ErrInvalidWindow
	}
	return model.SlotRequest{DoctorID: doctorID, Date: d, Start: s, End: e}, nil
}

// SlotChecker decides whether a doctor can take a booking window. It does
// not reserve anything: the partial unique index on appointments is the
// final arbiter between concurrent bookings.
type SlotChecker struct {
	appointments repository.AppointmentRepository
	availability repository.AvailabilityRepository
}

func NewSlotChecker(appointments repository.AppointmentRepository, availability repository.AvailabilityRepository) *SlotChecker {
	return &SlotChecker{appointments: appointments, availability: availability}
}

// Check rejects a window whose exact start time is already held by an active
// appointment, then one that no open weekly slot of the doctor covers.
// exclude skips the appointment being rescheduled.
func (c *SlotChecker) Check(ctx context.Context, req model.SlotRequest, exclude *uuid.UUID) error {
	taken, err := c.appointments.ExistsAtStart(ctx, req.DoctorID, req.DateString(), req.Start.String(), exclude)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to check booked slots: %w", err))
	}
	if taken {
		return ErrSlotBooked
	}

	slots, err := c.availability.ListByDoctorAndDay(ctx, req.DoctorID, int(req.Date.Weekday()))
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to load availability: %w", err))
	}
	for _, slot := range slots {
		if slot.Covers(req.Start, req.End) {
			return nil
		}
	}
	return ErrDoctorUnavailable
}
