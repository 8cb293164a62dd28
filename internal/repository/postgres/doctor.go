package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

const doctorColumns = `u.id, u.email, u.first_name, u.last_name, u.phone, u.is_approved, u.created_at,
	dp.specialization, dp.qualification, dp.experience_years, dp.hospital_name,
	dp.hospital_address, dp.registration_number, dp.bio, dp.consultation_fee,
	dp.rating, dp.total_consultations`

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{NewBaseRepository(db)}
}

func (r *doctorRepository) ListApproved(ctx context.Context, filter model.DoctorFilter) ([]*model.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM users u
		JOIN doctor_profiles dp ON u.id = dp.user_id
		WHERE u.role = 'doctor' AND u.is_approved = TRUE AND u.is_active = TRUE
	`
	args := []interface{}{}
	argCount := 1

	if filter.Specialization != "" {
		query += fmt.Sprintf(" AND dp.specialization ILIKE $%d", argCount)
		args = append(args, "%"+filter.Specialization+"%")
		argCount++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(" AND (u.first_name ILIKE $%d OR u.last_name ILIKE $%d OR dp.specialization ILIKE $%d)",
			argCount, argCount, argCount)
		args = append(args, "%"+filter.Search+"%")
		argCount++
	}

	query += " ORDER BY dp.rating DESC NULLS LAST, dp.total_consultations DESC"

	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) GetApproved(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	query := `
		SELECT ` + doctorColumns + `
		FROM users u
		JOIN doctor_profiles dp ON u.id = dp.user_id
		WHERE u.id = $1 AND u.role = 'doctor' AND u.is_approved = TRUE AND u.is_active = TRUE
	`
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", translate(err))
	}
	return &doctor, nil
}

func (r *doctorRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	query := `
		SELECT ` + doctorColumns + `
		FROM users u
		JOIN doctor_profiles dp ON u.id = dp.user_id
		WHERE u.id = $1
	`
	if err := r.db.GetContext(ctx, &doctor, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", translate(err))
	}
	return &doctor, nil
}

func (r *doctorRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateDoctorProfileRequest) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := updateContact(ctx, tx, userID, &req.ContactUpdate); err != nil {
			return err
		}

		query := `
			UPDATE doctor_profiles
			SET specialization = COALESCE($1, specialization),
				qualification = COALESCE($2, qualification),
				experience_years = COALESCE($3, experience_years),
				hospital_name = COALESCE($4, hospital_name),
				hospital_address = COALESCE($5, hospital_address),
				registration_number = COALESCE($6, registration_number),
				bio = COALESCE($7, bio),
				consultation_fee = COALESCE($8, consultation_fee),
				updated_at = NOW()
			WHERE user_id = $9
		`
		result, err := tx.ExecContext(ctx, query,
			req.Specialization,
			req.Qualification,
			req.ExperienceYears,
			req.HospitalName,
			req.HospitalAddress,
			req.RegistrationNumber,
			req.Bio,
			req.ConsultationFee,
			userID,
		)
		if err != nil {
			return fmt.Errorf("failed to update doctor profile: %w", err)
		}
		return expectRows(result)
	})
}

func (r *doctorRepository) ListPending(ctx context.Context) ([]*model.Doctor, error) {
	query := `
		SELECT ` + doctorColumns + `
		FROM users u
		JOIN doctor_profiles dp ON u.id = dp.user_id
		WHERE u.role = 'doctor' AND u.is_approved = FALSE
		ORDER BY u.created_at DESC
	`
	doctors := []*model.Doctor{}
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list pending doctors: %w", err)
	}
	return doctors, nil
}

// updateContact applies the shared user columns of a profile update.
func updateContact(ctx context.Context, tx *sqlx.Tx, userID uuid.UUID, c *model.ContactUpdate) error {
	query := `
		UPDATE users
		SET first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			phone = COALESCE($3, phone),
			updated_at = NOW()
		WHERE id = $4
	`
	result, err := tx.ExecContext(ctx, query, c.FirstName, c.LastName, c.Phone, userID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectRows(result)
}
