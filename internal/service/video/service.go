package video

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
	"github.com/jwalitptl/telehealth-api/internal/service/event"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
)

var (
	ErrNotAccessible = apperrors.NotFound("Appointment not found or not accessible")
	ErrTooEarly      = apperrors.BadRequest("Call can only be joined 15 minutes before appointment time")
	ErrNotInProgress = apperrors.NotFound("Appointment not found or call not in progress")
)

// uid 0 lets the provider assign a participant id.
const defaultUID = 0

type Config struct {
	AppID      string
	TokenTTL   time.Duration
	JoinWindow time.Duration
	Location   *time.Location
}

type Service struct {
	appointments repository.AppointmentRepository
	issuer       TokenIssuer
	events       event.Publisher
	metrics      *metrics.Metrics
	cfg          Config
	now          func() time.Time
}

func NewService(appointments repository.AppointmentRepository, issuer TokenIssuer, events event.Publisher, m *metrics.Metrics, cfg Config) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		appointments: appointments,
		issuer:       issuer,
		events:       events,
		metrics:      m,
		cfg:          cfg,
		now:          time.Now,
	}
}

// IssueToken hands a participant the credential for the appointment's
// channel and marks a scheduled appointment as in progress. Late joins are
// allowed; only joins earlier than the join window are refused.
func (s *Service) IssueToken(ctx context.Context, appointmentID uuid.UUID, user *model.User) (*model.VideoToken, error) {
	apt, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotAccessible
		}
		return nil, apperrors.Internal(err)
	}
	if !apt.IsParticipant(user.ID) ||
		(apt.Status != model.AppointmentStatusScheduled && apt.Status != model.AppointmentStatusInProgress) {
		return nil, ErrNotAccessible
	}

	startsAt, err := apt.StartsAt(s.cfg.Location)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("appointment %s has a malformed start: %w", apt.ID, err))
	}
	now := s.now()
	// Lead time counts in whole minutes, so 15m59s early is still inside a
	// 15 minute window.
	if startsAt.Sub(now).Truncate(time.Minute) > s.cfg.JoinWindow {
		return nil, ErrTooEarly
	}

	expiresAt := now.Add(s.cfg.TokenTTL)
	token, err := s.issuer.Issue(apt.VideoChannelName, defaultUID, RolePublisher, expiresAt)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if apt.Status == model.AppointmentStatusScheduled {
		_, err := s.appointments.TransitionStatus(ctx, apt.ID, user.ID,
			[]model.AppointmentStatus{model.AppointmentStatusScheduled}, model.AppointmentStatusInProgress)
		switch {
		case err == nil:
			s.metrics.StatusChanges.WithLabelValues(string(model.AppointmentStatusInProgress)).Inc()
		case errors.Is(err, repository.ErrNotFound):
			// The other participant joined first.
		default:
			return nil, apperrors.Internal(err)
		}
	}

	log.Info().
		Str("appointment_id", apt.ID.String()).
		Str("user_id", user.ID.String()).
		Str("channel", apt.VideoChannelName).
		Msg("video token issued")
	s.metrics.VideoTokens.WithLabelValues(string(user.Role)).Inc()

	return &model.VideoToken{
		Token:       token,
		ChannelName: apt.VideoChannelName,
		AppID:       s.cfg.AppID,
		UID:         defaultUID,
		ExpiresAt:   expiresAt,
	}, nil
}

// EndCall completes an in-progress appointment for either participant.
func (s *Service) EndCall(ctx context.Context, appointmentID, userID uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.TransitionStatus(ctx, appointmentID, userID,
		[]model.AppointmentStatus{model.AppointmentStatusInProgress}, model.AppointmentStatusCompleted)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotInProgress
		}
		return nil, apperrors.Internal(err)
	}

	log.Info().Str("appointment_id", apt.ID.String()).Msg("call ended")
	s.metrics.StatusChanges.WithLabelValues(string(model.AppointmentStatusCompleted)).Inc()
	event.Emit(ctx, s.events, model.EventAppointmentCompleted, model.NewAppointmentEvent(apt, s.now()))
	return apt, nil
}
