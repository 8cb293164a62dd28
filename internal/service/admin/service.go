package admin

import (
	"context"
	"errors"
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
	ErrUserNotFound   = apperrors.NotFound("User not found")
	ErrDoctorNotFound = apperrors.NotFound("Doctor not found")
)

type Service struct {
	users   repository.UserRepository
	doctors repository.DoctorRepository
	stats   repository.StatsRepository
	events  event.Publisher
	metrics *metrics.Metrics
}

func NewService(users repository.UserRepository, doctors repository.DoctorRepository, stats repository.StatsRepository, events event.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		users:   users,
		doctors: doctors,
		stats:   stats,
		events:  events,
		metrics: m,
	}
}

func (s *Service) Stats(ctx context.Context) (*model.PlatformStats, error) {
	stats, err := s.stats.Platform(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return stats, nil
}

func (s *Service) Users(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, apperrors.BadRequest("Invalid role")
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return users, nil
}

func (s *Service) PendingDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.doctors.ListPending(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return doctors, nil
}

func (s *Service) ApproveDoctor(ctx context.Context, doctorID uuid.UUID) (*model.User, error) {
	user, err := s.users.ApproveDoctor(ctx, doctorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, apperrors.Internal(err)
	}

	log.Info().Str("doctor_id", doctorID.String()).Msg("doctor approved")
	s.metrics.DoctorApprovals.Inc()
	event.Emit(ctx, s.events, model.EventDoctorApproved, &model.DoctorEvent{DoctorID: doctorID, OccurredAt: time.Now()})
	return user, nil
}

// SetActive flips the account flag. The change applies to the user's next
// request because principals are reloaded on every request.
func (s *Service) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*model.User, error) {
	user, err := s.users.SetActive(ctx, userID, active)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperrors.Internal(err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Bool("active", active).
		Msg("user activation changed")
	return user, nil
}
