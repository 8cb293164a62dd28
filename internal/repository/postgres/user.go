package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

const userColumns = `id, email, password_hash, role, first_name, last_name, phone,
	is_approved, is_active, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{NewBaseRepository(db)}
}

func (r *userRepository) CreateWithProfile(ctx context.Context, user *model.User) error {
	user.Touch(time.Now())

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO users (
				id, email, password_hash, role, first_name, last_name, phone,
				is_approved, is_active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err := tx.ExecContext(ctx, query,
			user.ID,
			user.Email,
			user.PasswordHash,
			user.Role,
			user.FirstName,
			user.LastName,
			user.Phone,
			user.IsApproved,
			user.IsActive,
			user.CreatedAt,
			user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create user: %w", translate(err))
		}

		switch user.Role {
		case model.RolePatient:
			_, err = tx.ExecContext(ctx, `INSERT INTO patient_profiles (user_id) VALUES ($1)`, user.ID)
		case model.RoleDoctor:
			_, err = tx.ExecContext(ctx,
				`INSERT INTO doctor_profiles (user_id, specialization, qualification) VALUES ($1, $2, $3)`,
				user.ID, model.DefaultSpecialization, model.DefaultQualification)
		}
		if err != nil {
			return fmt.Errorf("failed to create %s profile: %w", user.Role, translate(err))
		}
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}

	if filter.Role != "" {
		query += " WHERE role = $1"
		args = append(args, filter.Role)
	}
	query += " ORDER BY created_at DESC"

	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*model.User, error) {
	var user model.User
	query := `
		UPDATE users SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns
	if err := r.db.GetContext(ctx, &user, query, active, id); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", translate(err))
	}
	return &user, nil
}

func (r *userRepository) ApproveDoctor(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `
		UPDATE users SET is_approved = TRUE, updated_at = NOW()
		WHERE id = $1 AND role = 'doctor'
		RETURNING ` + userColumns
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("failed to approve doctor: %w", translate(err))
	}
	return &user, nil
}
