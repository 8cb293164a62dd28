package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telehealth-api/internal/model"
)

func TestCustomTags(t *testing.T) {
	v := New()

	ok := model.BookAppointmentRequest{
		DoctorID:        "6f1c1a52-5d1c-4f4e-9a55-2f2b8f1a0c11",
		AppointmentDate: "2026-03-02",
		StartTime:       "09:00",
		EndTime:         "9:30",
	}
	assert.NoError(t, v.Struct(ok))

	bad := ok
	bad.StartTime = "24:00"
	bad.AppointmentDate = "02-03-2026"
	err := v.Struct(bad)
	require.Error(t, err)

	msg := Message(err)
	assert.Contains(t, msg, "start_time must be in HH:MM format")
	assert.Contains(t, msg, "appointment_date must be in YYYY-MM-DD format")
}

func TestMessage(t *testing.T) {
	v := New()

	err := v.Struct(model.RegisterRequest{Email: "nope", Password: "123", Role: "nurse"})
	require.Error(t, err)

	msg := Message(err)
	assert.Contains(t, msg, "email must be a valid email")
	assert.Contains(t, msg, "password must be at least 6 characters long")
	assert.Contains(t, msg, "role must be one of [patient doctor]")
	assert.Contains(t, msg, "first_name is required")

	assert.Equal(t, "Invalid request body", Message(errors.New("unexpected EOF")))
}

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}
