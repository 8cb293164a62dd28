package doctor

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
)

func newService(store *memory.Store) *Service {
	return NewService(store.Doctors(), store.Availability(), store.Appointments(), store.MedicalRecords())
}

func day(d int) *int { return &d }

func strPtr(s string) *string { return &s }

func TestListOrdersByRatingThenConsultations(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()

	low := store.AddUser(model.RoleDoctor, "low@example.com", true)
	high := store.AddUser(model.RoleDoctor, "high@example.com", true)
	unrated := store.AddUser(model.RoleDoctor, "unrated@example.com", true)
	store.AddUser(model.RoleDoctor, "pending@example.com", false)
	store.SetRating(low.ID, 3.5)
	store.SetRating(high.ID, 4.8)

	doctors, err := svc.List(ctx, model.DoctorFilter{})
	require.NoError(t, err)
	require.Len(t, doctors, 3)
	assert.Equal(t, []uuid.UUID{high.ID, low.ID, unrated.ID}, []uuid.UUID{doctors[0].ID, doctors[1].ID, doctors[2].ID})

	doctors, err = svc.List(ctx, model.DoctorFilter{Search: "HIGH"})
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, high.ID, doctors[0].ID)
}

func TestGetHidesUnapproved(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	pending := store.AddUser(model.RoleDoctor, "pending@example.com", false)

	_, err := svc.Get(context.Background(), pending.ID)
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	doc, err := svc.Profile(context.Background(), pending.ID)
	require.NoError(t, err)
	assert.False(t, doc.IsApproved)
}

func TestUpdateProfile(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	doctor := store.AddUser(model.RoleDoctor, "doc@example.com", true)

	years := 12
	doc, err := svc.UpdateProfile(context.Background(), doctor.ID, &model.UpdateDoctorProfileRequest{
		ContactUpdate:   model.ContactUpdate{FirstName: strPtr("Meera")},
		Specialization:  strPtr("Cardiology"),
		ExperienceYears: &years,
	})
	require.NoError(t, err)
	assert.Equal(t, "Meera", doc.FirstName)
	assert.Equal(t, "Cardiology", doc.Specialization)
	assert.Equal(t, model.DefaultQualification, doc.Qualification)
	assert.Equal(t, 12, doc.ExperienceYears)
}

func TestAvailability(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()
	doctor := store.AddUser(model.RoleDoctor, "doc@example.com", true)
	other := store.AddUser(model.RoleDoctor, "other@example.com", true)

	slot, err := svc.AddAvailability(ctx, doctor.ID, &model.CreateAvailabilityRequest{DayOfWeek: day(1), StartTime: "9:00", EndTime: "12:00"})
	require.NoError(t, err)
	assert.Equal(t, "09:00", slot.StartTime)
	assert.True(t, slot.IsAvailable)

	_, err = svc.AddAvailability(ctx, doctor.ID, &model.CreateAvailabilityRequest{DayOfWeek: day(1), StartTime: "09:00", EndTime: "10:00"})
	assert.ErrorIs(t, err, ErrSlotExists)
	assert.Equal(t, 409, apperrors.As(err).StatusCode())

	_, err = svc.AddAvailability(ctx, doctor.ID, &model.CreateAvailabilityRequest{DayOfWeek: day(2), StartTime: "12:00", EndTime: "09:00"})
	assert.ErrorIs(t, err, ErrInvalidSlot)

	_, err = svc.AddAvailability(ctx, doctor.ID, &model.CreateAvailabilityRequest{DayOfWeek: day(0), StartTime: "08:00", EndTime: "09:00"})
	require.NoError(t, err)

	slots, err := svc.Availability(ctx, doctor.ID)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, 0, slots[0].DayOfWeek)

	assert.ErrorIs(t, svc.DeleteAvailability(ctx, other.ID, slot.ID), ErrSlotNotFound)
	require.NoError(t, svc.DeleteAvailability(ctx, doctor.ID, slot.ID))
	assert.ErrorIs(t, svc.DeleteAvailability(ctx, doctor.ID, slot.ID), ErrSlotNotFound)
}

func TestPatientHistoryRequiresRelationship(t *testing.T) {
	store := memory.NewStore()
	svc := newService(store)
	ctx := context.Background()
	doctor := store.AddUser(model.RoleDoctor, "doc@example.com", true)
	patient := store.AddUser(model.RolePatient, "pat@example.com", true)

	_, err := svc.PatientHistory(ctx, doctor.ID, patient.ID)
	assert.ErrorIs(t, err, ErrPatientNotTreated)

	apt := &model.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: "2030-03-04",
		StartTime:       "10:00",
		EndTime:         "10:30",
		Status:          model.AppointmentStatusScheduled,
	}
	require.NoError(t, store.Appointments().Create(ctx, apt))
	require.NoError(t, store.MedicalRecords().CreateForAppointment(ctx, &model.MedicalRecord{
		PatientID:     patient.ID,
		DoctorID:      doctor.ID,
		AppointmentID: &apt.ID,
		Diagnosis:     "Migraine",
	}, nil))

	records, err := svc.PatientHistory(ctx, doctor.ID, patient.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Migraine", records[0].Diagnosis)
}
