package video

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository/memory"
	"github.com/jwalitptl/telehealth-api/internal/service/event"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
)

type fixture struct {
	store   *memory.Store
	svc     *Service
	patient *model.User
	doctor  *model.User
	apt     *model.Appointment
}

func newFixture(t *testing.T, loc *time.Location) *fixture {
	t.Helper()
	store := memory.NewStore()
	f := &fixture{
		store:   store,
		patient: store.AddUser(model.RolePatient, "pat@example.com", true),
		doctor:  store.AddUser(model.RoleDoctor, "doc@example.com", true),
	}
	f.apt = &model.Appointment{
		PatientID:        f.patient.ID,
		DoctorID:         f.doctor.ID,
		AppointmentDate:  "2030-03-04",
		StartTime:        "10:00",
		EndTime:          "10:30",
		Status:           model.AppointmentStatusScheduled,
		VideoChannelName: "appointment_1_x",
	}
	require.NoError(t, store.Appointments().Create(context.Background(), f.apt))

	f.svc = NewService(
		store.Appointments(),
		NewJWTIssuer("app-id", "certificate"),
		event.NewEventService(store.Outbox()),
		metrics.NewMetrics(prometheus.NewRegistry(), "test", ""),
		Config{AppID: "app-id", TokenTTL: time.Hour, JoinWindow: 15 * time.Minute, Location: loc},
	)
	return f
}

func (f *fixture) at(ts time.Time) {
	f.svc.now = func() time.Time { return ts }
}

func (f *fixture) status(t *testing.T) model.AppointmentStatus {
	t.Helper()
	apt, err := f.store.Appointments().GetByID(context.Background(), f.apt.ID)
	require.NoError(t, err)
	return apt.Status
}

func TestIssueTokenWithinWindow(t *testing.T) {
	f := newFixture(t, time.UTC)
	now := time.Date(2030, 3, 4, 9, 50, 0, 0, time.UTC)
	f.at(now)

	tok, err := f.svc.IssueToken(context.Background(), f.apt.ID, f.patient)
	require.NoError(t, err)

	assert.Equal(t, "appointment_1_x", tok.ChannelName)
	assert.Equal(t, "app-id", tok.AppID)
	assert.Equal(t, 0, tok.UID)
	assert.Equal(t, now.Add(time.Hour), tok.ExpiresAt)
	assert.Equal(t, model.AppointmentStatusInProgress, f.status(t))

	var claims channelClaims
	_, err = jwt.ParseWithClaims(tok.Token, &claims, func(*jwt.Token) (interface{}, error) {
		return []byte("certificate"), nil
	}, jwt.WithTimeFunc(func() time.Time { return now }))
	require.NoError(t, err)
	assert.Equal(t, "appointment_1_x", claims.Grant.Channel)
	assert.True(t, claims.Grant.Publish)
	assert.Equal(t, "app-id", claims.Issuer)
}

func TestIssueTokenSecondJoinKeepsInProgress(t *testing.T) {
	f := newFixture(t, time.UTC)
	f.at(time.Date(2030, 3, 4, 10, 5, 0, 0, time.UTC))

	_, err := f.svc.IssueToken(context.Background(), f.apt.ID, f.patient)
	require.NoError(t, err)
	_, err = f.svc.IssueToken(context.Background(), f.apt.ID, f.doctor)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, f.status(t))
}

func TestIssueTokenTooEarly(t *testing.T) {
	f := newFixture(t, time.UTC)
	f.at(time.Date(2030, 3, 4, 9, 44, 0, 0, time.UTC))

	_, err := f.svc.IssueToken(context.Background(), f.apt.ID, f.patient)
	assert.ErrorIs(t, err, ErrTooEarly)
	assert.Equal(t, model.AppointmentStatusScheduled, f.status(t))
}

func TestIssueTokenJoinWindowCountsWholeMinutes(t *testing.T) {
	f := newFixture(t, time.UTC)

	f.at(time.Date(2030, 3, 4, 9, 44, 0, 0, time.UTC))
	_, err := f.svc.IssueToken(context.Background(), f.apt.ID, f.patient)
	assert.ErrorIs(t, err, ErrTooEarly)

	f.at(time.Date(2030, 3, 4, 9, 44, 1, 0, time.UTC))
	_, err = f.svc.IssueToken(context.Background(), f.apt.ID, f.patient)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, f.status(t))
}

func TestIssueTokenHonoursTimezone(t *testing.T) {
	// 10:00 at UTC+05:30 is 04:30 UTC.
	f := newFixture(t, time.FixedZone("IST", 5*3600+1800))
	f.at(time.Date(2030, 3, 4, 4, 20, 0, 0, time.UTC))

	_, err := f.svc.IssueToken(context.Background(), f.apt.ID, f.patient)
	assert.NoError(t, err)
}

func TestIssueTokenAllowsLateJoin(t *testing.T) {
	f := newFixture(t, time.UTC)
	f.at(time.Date(2030, 3, 4, 13, 0, 0, 0, time.UTC))

	_, err := f.svc.IssueToken(context.Background(), f.apt.ID, f.doctor)
	assert.NoError(t, err)
}

func TestIssueTokenNotAccessible(t *testing.T) {
	f := newFixture(t, time.UTC)
	ctx := context.Background()
	f.at(time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC))

	stranger := f.store.AddUser(model.RolePatient, "stranger@example.com", true)
	_, err := f.svc.IssueToken(ctx, f.apt.ID, stranger)
	assert.ErrorIs(t, err, ErrNotAccessible)

	_, err = f.svc.IssueToken(ctx, uuid.New(), f.patient)
	assert.ErrorIs(t, err, ErrNotAccessible)

	_, err = f.store.Appointments().Cancel(ctx, f.apt.ID, f.patient.ID, nil)
	require.NoError(t, err)
	_, err = f.svc.IssueToken(ctx, f.apt.ID, f.patient)
	assert.ErrorIs(t, err, ErrNotAccessible)
}

func TestIssueTokenUnconfigured(t *testing.T) {
	f := newFixture(t, time.UTC)
	f.svc.issuer = NewJWTIssuer("", "")
	f.at(time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC))

	_, err := f.svc.IssueToken(context.Background(), f.apt.ID, f.patient)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, model.AppointmentStatusScheduled, f.status(t))
}

func TestEndCall(t *testing.T) {
	f := newFixture(t, time.UTC)
	ctx := context.Background()
	f.at(time.Date(2030, 3, 4, 10, 0, 0, 0, time.UTC))

	_, err := f.svc.EndCall(ctx, f.apt.ID, f.patient.ID)
	assert.ErrorIs(t, err, ErrNotInProgress)

	_, err = f.svc.IssueToken(ctx, f.apt.ID, f.patient)
	require.NoError(t, err)

	_, err = f.svc.EndCall(ctx, f.apt.ID, uuid.New())
	assert.ErrorIs(t, err, ErrNotInProgress)

	apt, err := f.svc.EndCall(ctx, f.apt.ID, f.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, apt.Status)

	events := f.store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentCompleted, events[0].EventType)
}
