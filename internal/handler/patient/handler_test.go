package patient

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telehealth-api/internal/handler/handlertest"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository/memory"
	"github.com/jwalitptl/telehealth-api/internal/service/document"
	"github.com/jwalitptl/telehealth-api/internal/service/patient"
)

type fixture struct {
	store   *memory.Store
	h       *Handler
	patient *model.User
	doctor  *model.User
}

func newFixture() *fixture {
	store := memory.NewStore()
	svc := patient.NewService(store.Patients(), store.Appointments(), store.MedicalRecords(), document.NewRenderer("Telehealth"))
	return &fixture{
		store:   store,
		h:       NewHandler(svc),
		patient: store.AddUser(model.RolePatient, "pat@example.com", true),
		doctor:  store.AddUser(model.RoleDoctor, "doc@example.com", true),
	}
}

func (f *fixture) as(user *model.User) *gin.Engine {
	r := handlertest.Router(user)
	f.h.RegisterRoutes(r.Group("/api"), func(c *gin.Context) { c.Next() })
	return r
}

// treat records a completed consultation with one prescription.
func (f *fixture) treat(t *testing.T) *model.Prescription {
	t.Helper()
	ctx := context.Background()
	apt := &model.Appointment{
		PatientID:       f.patient.ID,
		DoctorID:        f.doctor.ID,
		AppointmentDate: "2030-03-04",
		StartTime:       "10:00",
		EndTime:         "10:30",
		Status:          model.AppointmentStatusScheduled,
	}
	require.NoError(t, f.store.Appointments().Create(ctx, apt))

	rec := &model.MedicalRecord{
		PatientID:     f.patient.ID,
		DoctorID:      f.doctor.ID,
		AppointmentID: &apt.ID,
		Diagnosis:     "Seasonal flu",
	}
	rx := &model.Prescription{
		AppointmentID: &apt.ID,
		PatientID:     f.patient.ID,
		DoctorID:      f.doctor.ID,
		Medications:   types.JSONText(`[{"name":"Paracetamol","dosage":"500mg","frequency":"twice daily","duration":"5 days"}]`),
	}
	require.NoError(t, f.store.MedicalRecords().CreateForAppointment(ctx, rec, rx))
	return rx
}

func TestOnlyPatients(t *testing.T) {
	f := newFixture()

	w := handlertest.Do(f.as(f.doctor), http.MethodGet, "/api/patients/profile", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = handlertest.Do(f.as(f.patient), http.MethodGet, "/api/patients/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p model.Patient
	handlertest.Decode(t, w, &p)
	assert.Equal(t, "pat@example.com", p.Email)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	r := f.as(f.patient)

	w := handlertest.Do(r, http.MethodPut, "/api/patients/profile", map[string]string{
		"date_of_birth": "1990-05-17",
		"blood_group":   "O+",
		"city":          "Pune",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p model.Patient
	env := handlertest.Decode(t, w, &p)
	assert.Equal(t, "Profile updated successfully", env.Message)
	require.NotNil(t, p.City)
	assert.Equal(t, "Pune", *p.City)

	w = handlertest.Do(r, http.MethodPut, "/api/patients/profile", map[string]string{"date_of_birth": "17/05/1990"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHistoryAndPrescriptions(t *testing.T) {
	f := newFixture()
	rx := f.treat(t)
	r := f.as(f.patient)

	w := handlertest.Do(r, http.MethodGet, "/api/patients/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var apts []model.AppointmentDetail
	handlertest.Decode(t, w, &apts)
	require.Len(t, apts, 1)
	assert.Equal(t, model.AppointmentStatusCompleted, apts[0].Status)

	w = handlertest.Do(r, http.MethodGet, "/api/patients/medical-history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var records []model.MedicalRecordDetail
	handlertest.Decode(t, w, &records)
	require.Len(t, records, 1)
	assert.Equal(t, "Seasonal flu", records[0].Diagnosis)

	w = handlertest.Do(r, http.MethodGet, "/api/patients/prescriptions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rxs []model.PrescriptionDetail
	handlertest.Decode(t, w, &rxs)
	require.Len(t, rxs, 1)
	assert.Equal(t, rx.ID, rxs[0].ID)
}

func TestDownloadPrescription(t *testing.T) {
	f := newFixture()
	rx := f.treat(t)

	w := handlertest.Do(f.as(f.patient), http.MethodGet, "/api/patients/prescriptions/"+rx.ID.String()+"/pdf", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "prescription-"+rx.ID.String()+".pdf")
	assert.True(t, len(w.Body.Bytes()) > 4 && string(w.Body.Bytes()[:4]) == "%PDF")

	other := f.store.AddUser(model.RolePatient, "other@example.com", true)
	w = handlertest.Do(f.as(other), http.MethodGet, "/api/patients/prescriptions/"+rx.ID.String()+"/pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Prescription not found", handlertest.Decode(t, w, nil).Message)

	w = handlertest.Do(f.as(f.patient), http.MethodGet, "/api/patients/prescriptions/"+uuid.NewString()+"/pdf", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
