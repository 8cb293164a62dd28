package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
	"github.com/jwalitptl/telehealth-api/internal/service/event"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
)

var (
	ErrAppointmentNotFound = apperrors.NotFound("Appointment not found")
	ErrDoctorNotFound      = apperrors.NotFound("Doctor not found")
	ErrNotCancellable      = apperrors.NotFound("Appointment not found or cannot be cancelled")
	ErrNotReschedulable    = apperrors.NotFound("Appointment not found or cannot be rescheduled")
	ErrRescheduleConflict  = apperrors.Conflict("New slot is already booked")
	ErrInvalidTransition   = apperrors.BadRequest("Invalid status transition")
	ErrAccessDenied        = apperrors.Forbidden("Access denied")
)

type Service struct {
	appointments repository.AppointmentRepository
	doctors      repository.DoctorRepository
	records      repository.MedicalRecordRepository
	checker      *SlotChecker
	events       event.Publisher
	metrics      *metrics.Metrics
	now          func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	availability repository.AvailabilityRepository,
	doctors repository.DoctorRepository,
	records repository.MedicalRecordRepository,
	events event.Publisher,
	m *metrics.Metrics,
) *Service {
	return &Service{
		appointments: appointments,
		doctors:      doctors,
		records:      records,
		checker:      NewSlotChecker(appointments, availability),
		events:       events,
		metrics:      m,
		now:          time.Now,
	}
}

// Book validates the window against the doctor's availability and existing
// bookings, then stores a scheduled appointment for the patient.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.NewBadRequest("Invalid doctor id", err)
	}
	slot, err := ParseSlot(doctorID, req.AppointmentDate, req.StartTime, req.EndTime)
	if err != nil {
		s.metrics.Bookings.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if _, err := s.doctors.GetApproved(ctx, doctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, apperrors.Internal(err)
	}

	if err := s.checker.Check(ctx, slot, nil); err != nil {
		s.metrics.Bookings.WithLabelValues(resultLabel(err)).Inc()
		return nil, err
	}

	now := s.now()
	apt := &model.Appointment{
		PatientID:        patientID,
		DoctorID:         doctorID,
		AppointmentDate:  slot.DateString(),
		StartTime:        slot.Start.String(),
		EndTime:          slot.End.String(),
		Status:           model.AppointmentStatusScheduled,
		Symptoms:         req.Symptoms,
		VideoChannelName: model.NewVideoChannelName(now, patientID),
	}
	if err := s.appointments.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.Bookings.WithLabelValues("conflict").Inc()
			return nil, ErrSlotConflict
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}

	log.Info().
		Str("appointment_id", apt.ID.String()).
		Str("doctor_id", doctorID.String()).
		Str("date", apt.AppointmentDate).
		Str("start", apt.StartTime).
		Msg("appointment booked")
	s.metrics.Bookings.WithLabelValues("success").Inc()
	event.Emit(ctx, s.events, model.EventAppointmentBooked, model.NewAppointmentEvent(apt, now))

	return apt, nil
}

func resultLabel(err error) string {
	switch apperrors.As(err).Code {
	case apperrors.ErrConflict:
		return "conflict"
	case apperrors.ErrBadRequest:
		return "unavailable"
	default:
		return "error"
	}
}

// Get returns the appointment with both parties' names. Only the patient or
// doctor of the appointment may read it.
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*model.AppointmentDetail, error) {
	apt, err := s.appointments.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, apperrors.Internal(err)
	}
	if !apt.IsParticipant(userID) {
		return nil, ErrAccessDenied
	}
	return apt, nil
}

// UpdateStatus applies a forward transition of the state machine. Setting
// the current status again succeeds without touching the row.
func (s *Service) UpdateStatus(ctx context.Context, id, userID uuid.UUID, next model.AppointmentStatus) (*model.Appointment, error) {
	if !next.Valid() {
		return nil, apperrors.BadRequest("Invalid status")
	}

	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, apperrors.Internal(err)
	}
	if !current.IsParticipant(userID) {
		return nil, ErrAppointmentNotFound
	}
	if current.Status == next {
		return current, nil
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.BadRequest(fmt.Sprintf("Cannot change status from %s to %s", current.Status, next))
	}

	apt, err := s.appointments.TransitionStatus(ctx, id, userID, next.Predecessors(), next)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost a race with another transition.
			return nil, ErrInvalidTransition
		}
		return nil, apperrors.Internal(err)
	}

	s.metrics.StatusChanges.WithLabelValues(string(next)).Inc()
	switch next {
	case model.AppointmentStatusCompleted:
		event.Emit(ctx, s.events, model.EventAppointmentCompleted, model.NewAppointmentEvent(apt, s.now()))
	case model.AppointmentStatusCancelled:
		event.Emit(ctx, s.events, model.EventAppointmentCancelled, model.NewAppointmentEvent(apt, s.now()))
	}
	return apt, nil
}

// Cancel moves a scheduled appointment of either participant to cancelled.
func (s *Service) Cancel(ctx context.Context, id, userID uuid.UUID, reason *string) (*model.Appointment, error) {
	apt, err := s.appointments.Cancel(ctx, id, userID, reason)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotCancellable
		}
		return nil, apperrors.Internal(err)
	}

	log.Info().
		Str("appointment_id", apt.ID.String()).
		Str("cancelled_by", userID.String()).
		Msg("appointment cancelled")
	s.metrics.StatusChanges.WithLabelValues(string(model.AppointmentStatusCancelled)).Inc()
	event.Emit(ctx, s.events, model.EventAppointmentCancelled, model.NewAppointmentEvent(apt, s.now()))
	return apt, nil
}

// Reschedule moves the patient's scheduled appointment to a new window after
// running the same checks as a booking, ignoring the appointment itself.
func (s *Service) Reschedule(ctx context.Context, id, patientID uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotReschedulable
		}
		return nil, apperrors.Internal(err)
	}
	if current.PatientID != patientID || current.Status != model.AppointmentStatusScheduled {
		return nil, ErrNotReschedulable
	}

	slot, err := ParseSlot(current.DoctorID, req.AppointmentDate, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if err := s.checker.Check(ctx, slot, &current.ID); err != nil {
		if errors.Is(err, ErrSlotBooked) {
			return nil, ErrRescheduleConflict
		}
		return nil, err
	}

	apt, err := s.appointments.Reschedule(ctx, id, patientID, slot.DateString(), slot.Start.String(), slot.End.String())
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrRescheduleConflict
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotReschedulable
		}
		return nil, apperrors.Internal(err)
	}

	log.Info().
		Str("appointment_id", apt.ID.String()).
		Str("date", apt.AppointmentDate).
		Str("start", apt.StartTime).
		Msg("appointment rescheduled")
	event.Emit(ctx, s.events, model.EventAppointmentRescheduled, model.NewAppointmentEvent(apt, s.now()))
	return apt, nil
}

// AddMedicalRecord writes the consultation outcome for an appointment owned
// by the doctor. A prescription is stored only when medications are given.
func (s *Service) AddMedicalRecord(ctx context.Context, id, doctorID uuid.UUID, req *model.CreateMedicalRecordRequest) (*model.MedicalRecordResult, error) {
	apt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, apperrors.Internal(err)
	}
	if apt.DoctorID != doctorID {
		return nil, ErrAppointmentNotFound
	}
	if apt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.BadRequest("Cannot add a medical record to a cancelled appointment")
	}

	rec := &model.MedicalRecord{
		PatientID:     apt.PatientID,
		DoctorID:      doctorID,
		AppointmentID: &apt.ID,
		Diagnosis:     req.Diagnosis,
		Symptoms:      req.Symptoms,
		Notes:         req.Notes,
	}
	if len(req.VitalSigns) > 0 && string(req.VitalSigns) != "null" {
		rec.VitalSigns = types.NullJSONText{JSONText: types.JSONText(req.VitalSigns), Valid: true}
	}

	var rx *model.Prescription
	if len(req.Medications) > 0 {
		meds, err := json.Marshal(req.Medications)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("failed to marshal medications: %w", err))
		}
		rx = &model.Prescription{
			AppointmentID: &apt.ID,
			PatientID:     apt.PatientID,
			DoctorID:      doctorID,
			Medications:   meds,
			Instructions:  req.Instructions,
		}
	}

	if err := s.records.CreateForAppointment(ctx, rec, rx); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create medical record: %w", err))
	}

	log.Info().
		Str("appointment_id", apt.ID.String()).
		Str("record_id", rec.ID.String()).
		Bool("prescription", rx != nil).
		Msg("medical record created")
	s.metrics.MedicalRecords.Inc()
	s.metrics.StatusChanges.WithLabelValues(string(model.AppointmentStatusCompleted)).Inc()

	apt.Status = model.AppointmentStatusCompleted
	event.Emit(ctx, s.events, model.EventAppointmentCompleted, model.NewAppointmentEvent(apt, s.now()))

	return &model.MedicalRecordResult{MedicalRecord: rec, Prescription: rx}, nil
}
