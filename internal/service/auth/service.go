package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
	tokens "github.com/jwalitptl/telehealth-api/pkg/auth"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
	"github.com/jwalitptl/telehealth-api/pkg/metrics"
	"github.com/jwalitptl/telehealth-api/pkg/security"
)

var (
	ErrInvalidCredentials = apperrors.Unauthorized("Invalid credentials")
	ErrInvalidToken       = apperrors.Unauthorized("Invalid or expired token")
	ErrUnknownUser        = apperrors.Unauthorized("User not found")
	ErrAccountDeactivated = apperrors.Forbidden("Account is deactivated")
	ErrPendingApproval    = apperrors.PendingApproval("Your account is pending admin approval")
	ErrEmailRegistered    = apperrors.BadRequest("Email already registered")
)

type Service struct {
	userRepo repository.UserRepository
	jwtSvc   tokens.JWTService
	hasher   security.PasswordHasher
	metrics  *metrics.Metrics
}

func NewService(userRepo repository.UserRepository, jwtSvc tokens.JWTService, hasher security.PasswordHasher, m *metrics.Metrics) *Service {
	return &Service{
		userRepo: userRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		metrics:  m,
	}
}

func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role != model.RolePatient && req.Role != model.RoleDoctor {
		return nil, apperrors.BadRequest("Role must be patient or doctor")
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		s.metrics.AuthAttempts.WithLabelValues("register", "duplicate").Inc()
		return nil, ErrEmailRegistered
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.BadRequest(fmt.Sprintf("Password must be at least %d characters", security.MinPasswordLen))
		}
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         req.Role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		IsApproved:   req.Role == model.RolePatient,
		IsActive:     true,
	}
	if err := s.userRepo.CreateWithProfile(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.AuthAttempts.WithLabelValues("register", "duplicate").Inc()
			return nil, ErrEmailRegistered
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create user: %w", err))
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(user.Role)).
		Msg("user registered")
	s.metrics.AuthAttempts.WithLabelValues("register", "success").Inc()

	return s.issue(user)
}

// Login checks, in order: account exists, is active, doctor is approved,
// password matches.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.Internal(err)
	}

	if !user.IsActive {
		s.metrics.AuthAttempts.WithLabelValues("login", "deactivated").Inc()
		return nil, ErrAccountDeactivated
	}
	if user.Role == model.RoleDoctor && !user.IsApproved {
		s.metrics.AuthAttempts.WithLabelValues("login", "pending").Inc()
		return nil, ErrPendingApproval
	}
	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.metrics.AuthAttempts.WithLabelValues("login", "invalid").Inc()
		return nil, ErrInvalidCredentials
	}

	s.metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	return s.issue(user)
}

func (s *Service) issue(user *model.User) (*model.AuthResponse, error) {
	token, expiresAt, err := s.jwtSvc.GenerateToken(user)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate validates a bearer token and reloads the principal so that
// deactivation and approval changes take effect immediately.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken.Wrap(err)
	}

	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, apperrors.Internal(err)
	}
	if !user.IsActive {
		return nil, ErrAccountDeactivated
	}
	return user, nil
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("User not found")
		}
		return nil, apperrors.Internal(err)
	}
	return user, nil
}
