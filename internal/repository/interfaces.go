package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telehealth-api/internal/model"
)

var (
	// ErrNotFound is returned when no row matched the lookup or conditional update.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert or update violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

type (
	UserRepository interface {
		// CreateWithProfile inserts the user and the empty profile row for its role.
		CreateWithProfile(ctx context.Context, user *model.User) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		List(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
		SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error)
		ApproveDoctor(ctx context.Context, id uuid.UUID) (*model.User, error)
	}

	DoctorRepository interface {
		ListApproved(ctx context.Context, filter model.DoctorFilter) ([]*model.Doctor, error)
		GetApproved(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		GetProfile(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateDoctorProfileRequest) error
		ListPending(ctx context.Context) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		GetProfile(ctx context.Context, userID uuid.UUID) (*model.Patient, error)
		UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdatePatientProfileRequest) error
	}

	AvailabilityRepository interface {
		Create(ctx context.Context, slot *model.AvailabilitySlot) error
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilitySlot, error)
		ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*model.AvailabilitySlot, error)
		Delete(ctx context.Context, id, doctorID uuid.UUID) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, apt *model.Appointment) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error)
		// ExistsAtStart reports whether a non-cancelled appointment holds the exact start time.
		ExistsAtStart(ctx context.Context, doctorID uuid.UUID, date, startTime string, excludeID *uuid.UUID) (bool, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
		ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error)
		// TransitionStatus moves a participant's appointment to status when it is currently in one of from.
		TransitionStatus(ctx context.Context, id, participantID uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus) (*model.Appointment, error)
		Cancel(ctx context.Context, id, participantID uuid.UUID, reason *string) (*model.Appointment, error)
		Reschedule(ctx context.Context, id, patientID uuid.UUID, date, startTime, endTime string) (*model.Appointment, error)
		HasPatient(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error)
	}

	MedicalRecordRepository interface {
		// CreateForAppointment writes the record and optional prescription, completes the
		// appointment and bumps the doctor's consultation count in one transaction.
		CreateForAppointment(ctx context.Context, rec *model.MedicalRecord, rx *model.Prescription) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecordDetail, error)
		ListPrescriptionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionDetail, error)
		GetPrescription(ctx context.Context, id, patientID uuid.UUID) (*model.PrescriptionDetail, error)
	}

	ArticleRepository interface {
		ListPublished(ctx context.Context, filter model.ArticleFilter) ([]*model.HealthArticle, error)
		GetPublished(ctx context.Context, id uuid.UUID) (*model.HealthArticle, error)
		ListAll(ctx context.Context) ([]*model.HealthArticle, error)
		Create(ctx context.Context, article *model.HealthArticle) error
		Update(ctx context.Context, id uuid.UUID, req *model.UpdateArticleRequest) (*model.HealthArticle, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	StatsRepository interface {
		Platform(ctx context.Context) (*model.PlatformStats, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		// ClaimPending marks up to limit due events as processing and returns them.
		ClaimPending(ctx context.Context, limit, maxRetries int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, errorMessage string, retryAt time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
