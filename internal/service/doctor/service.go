package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
)

var (
	ErrDoctorNotFound    = apperrors.NotFound("Doctor not found")
	ErrSlotExists        = apperrors.Conflict("Slot already exists")
	ErrSlotNotFound      = apperrors.NotFound("Availability slot not found")
	ErrInvalidSlot       = apperrors.BadRequest("End time must be after start time")
	ErrPatientNotTreated = apperrors.Forbidden("No appointments with this patient")
)

type DoctorService interface {
	List(ctx context.Context, filter model.DoctorFilter) ([]*model.Doctor, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	Profile(ctx context.Context, doctorID uuid.UUID) (*model.Doctor, error)
	UpdateProfile(ctx context.Context, doctorID uuid.UUID, req *model.UpdateDoctorProfileRequest) (*model.Doctor, error)
	Appointments(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error)
	Availability(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilitySlot, error)
	AddAvailability(ctx context.Context, doctorID uuid.UUID, req *model.CreateAvailabilityRequest) (*model.AvailabilitySlot, error)
	DeleteAvailability(ctx context.Context, doctorID, slotID uuid.UUID) error
	PatientHistory(ctx context.Context, doctorID, patientID uuid.UUID) ([]*model.MedicalRecordDetail, error)
}

type Service struct {
	doctors      repository.DoctorRepository
	availability repository.AvailabilityRepository
	appointments repository.AppointmentRepository
	records      repository.MedicalRecordRepository
}

var _ DoctorService = (*Service)(nil)

func NewService(
	doctors repository.DoctorRepository,
	availability repository.AvailabilityRepository,
	appointments repository.AppointmentRepository,
	records repository.MedicalRecordRepository,
) *Service {
	return &Service{
		doctors:      doctors,
		availability: availability,
		appointments: appointments,
		records:      records,
	}
}

func (s *Service) List(ctx context.Context, filter model.DoctorFilter) ([]*model.Doctor, error) {
	doctors, err := s.doctors.ListApproved(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list doctors: %w", err))
	}
	return doctors, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	return s.lookup(s.doctors.GetApproved(ctx, id))
}

func (s *Service) Profile(ctx context.Context, doctorID uuid.UUID) (*model.Doctor, error) {
	return s.lookup(s.doctors.GetProfile(ctx, doctorID))
}

func (s *Service) lookup(doc *model.Doctor, err error) (*model.Doctor, error) {
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return doc, nil
}

func (s *Service) UpdateProfile(ctx context.Context, doctorID uuid.UUID, req *model.UpdateDoctorProfileRequest) (*model.Doctor, error) {
	if err := s.doctors.UpdateProfile(ctx, doctorID, req); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update doctor profile: %w", err))
	}
	log.Info().Str("doctor_id", doctorID.String()).Msg("doctor profile updated")
	return s.Profile(ctx, doctorID)
}

func (s *Service) Appointments(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error) {
	apts, err := s.appointments.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return apts, nil
}

func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	slots, err := s.availability.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return slots, nil
}

// AddAvailability opens a weekly window. A second window with the same day
// and start time is rejected.
func (s *Service) AddAvailability(ctx context.Context, doctorID uuid.UUID, req *model.CreateAvailabilityRequest) (*model.AvailabilitySlot, error) {
	if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return nil, apperrors.BadRequest("day_of_week must be between 0 and 6")
	}
	start, err := model.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperrors.NewBadRequest("Invalid start time", err)
	}
	end, err := model.ParseClock(req.EndTime)
	if err != nil {
		return nil, apperrors.NewBadRequest("Invalid end time", err)
	}
	if end <= start {
		return nil, ErrInvalidSlot
	}

	slot := &model.AvailabilitySlot{
		DoctorID:    doctorID,
		DayOfWeek:   *req.DayOfWeek,
		StartTime:   start.String(),
		EndTime:     end.String(),
		IsAvailable: true,
	}
	if err := s.availability.Create(ctx, slot); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlotExists
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to add availability: %w", err))
	}

	log.Info().
		Str("doctor_id", doctorID.String()).
		Int("day", slot.DayOfWeek).
		Str("start", slot.StartTime).
		Str("end", slot.EndTime).
		Msg("availability slot added")
	return slot, nil
}

func (s *Service) DeleteAvailability(ctx context.Context, doctorID, slotID uuid.UUID) error {
	if err := s.availability.Delete(ctx, slotID, doctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSlotNotFound
		}
		return apperrors.Internal(err)
	}
	return nil
}

// PatientHistory returns a patient's records to a doctor who has at least one
// appointment with that patient.
func (s *Service) PatientHistory(ctx context.Context, doctorID, patientID uuid.UUID) ([]*model.MedicalRecordDetail, error) {
	ok, err := s.appointments.HasPatient(ctx, doctorID, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !ok {
		return nil, ErrPatientNotTreated
	}

	records, err := s.records.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return records, nil
}
