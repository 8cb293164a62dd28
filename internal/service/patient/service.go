package patient

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
	ErrPatientNotFound      = apperrors.NotFound("Patient not found")
	ErrPrescriptionNotFound = apperrors.NotFound("Prescription not found")
)

type PatientService interface {
	Profile(ctx context.Context, patientID uuid.UUID) (*model.Patient, error)
	UpdateProfile(ctx context.Context, patientID uuid.UUID, req *model.UpdatePatientProfileRequest) (*model.Patient, error)
	Appointments(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
	MedicalHistory(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecordDetail, error)
	Prescriptions(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionDetail, error)
	PrescriptionPDF(ctx context.Context, patientID, prescriptionID uuid.UUID) ([]byte, error)
}

// PrescriptionRenderer turns a prescription into a printable document.
type PrescriptionRenderer interface {
	Prescription(rx *model.PrescriptionDetail, patient *model.Patient) ([]byte, error)
}

type Service struct {
	repo            repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	medicalRepo     repository.MedicalRecordRepository
	renderer        PrescriptionRenderer
}

var _ PatientService = (*Service)(nil)

func NewService(repo repository.PatientRepository, appointmentRepo repository.AppointmentRepository, medicalRepo repository.MedicalRecordRepository, renderer PrescriptionRenderer) *Service {
	return &Service{
		repo:            repo,
		appointmentRepo: appointmentRepo,
		medicalRepo:     medicalRepo,
		renderer:        renderer,
	}
}

func (s *Service) Profile(ctx context.Context, patientID uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.GetProfile(ctx, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return patient, nil
}

func (s *Service) UpdateProfile(ctx context.Context, patientID uuid.UUID, req *model.UpdatePatientProfileRequest) (*model.Patient, error) {
	if req.DateOfBirth != nil && !model.IsDate(*req.DateOfBirth) {
		return nil, apperrors.BadRequest("date_of_birth must be a YYYY-MM-DD date")
	}
	if err := s.repo.UpdateProfile(ctx, patientID, req); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update patient profile: %w", err))
	}
	log.Info().Str("patient_id", patientID.String()).Msg("patient profile updated")
	return s.Profile(ctx, patientID)
}

func (s *Service) Appointments(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	apts, err := s.appointmentRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return apts, nil
}

func (s *Service) MedicalHistory(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecordDetail, error) {
	records, err := s.medicalRepo.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return records, nil
}

func (s *Service) Prescriptions(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionDetail, error) {
	rxs, err := s.medicalRepo.ListPrescriptionsByPatient(ctx, patientID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return rxs, nil
}

// PrescriptionPDF renders one of the patient's own prescriptions.
func (s *Service) PrescriptionPDF(ctx context.Context, patientID, prescriptionID uuid.UUID) ([]byte, error) {
	rx, err := s.medicalRepo.GetPrescription(ctx, prescriptionID, patientID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPrescriptionNotFound
		}
		return nil, apperrors.Internal(err)
	}
	patient, err := s.Profile(ctx, patientID)
	if err != nil {
		return nil, err
	}

	doc, err := s.renderer.Prescription(rx, patient)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return doc, nil
}
