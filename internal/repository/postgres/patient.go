package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func (r *patientRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*model.Patient, error) {
	var patient model.Patient
	query := `
		SELECT u.id, u.email, u.first_name, u.last_name, u.phone,
			to_char(p.date_of_birth, 'YYYY-MM-DD') AS date_of_birth,
			p.gender, p.blood_group, p.address, p.city, p.state, p.pincode,
			p.emergency_contact, p.allergies, p.chronic_conditions
		FROM users u
		LEFT JOIN patient_profiles p ON u.id = p.user_id
		WHERE u.id = $1
	`
	if err := r.db.GetContext(ctx, &patient, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get patient profile: %w", translate(err))
	}
	return &patient, nil
}

func (r *patientRepository) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdatePatientProfileRequest) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := updateContact(ctx, tx, userID, &req.ContactUpdate); err != nil {
			return err
		}

		// Profiles of seeded or legacy accounts may be missing, so upsert.
		query := `
			INSERT INTO patient_profiles (
				user_id, date_of_birth, gender, blood_group, address, city, state,
				pincode, emergency_contact, allergies, chronic_conditions
			) VALUES ($11, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (user_id) DO UPDATE
			SET date_of_birth = COALESCE($1, patient_profiles.date_of_birth),
				gender = COALESCE($2, patient_profiles.gender),
				blood_group = COALESCE($3, patient_profiles.blood_group),
				address = COALESCE($4, patient_profiles.address),
				city = COALESCE($5, patient_profiles.city),
				state = COALESCE($6, patient_profiles.state),
				pincode = COALESCE($7, patient_profiles.pincode),
				emergency_contact = COALESCE($8, patient_profiles.emergency_contact),
				allergies = COALESCE($9, patient_profiles.allergies),
				chronic_conditions = COALESCE($10, patient_profiles.chronic_conditions),
				updated_at = NOW()
		`
		_, err := tx.ExecContext(ctx, query,
			req.DateOfBirth,
			req.Gender,
			req.BloodGroup,
			req.Address,
			req.City,
			req.State,
			req.Pincode,
			req.EmergencyContact,
			req.Allergies,
			req.ChronicConditions,
			userID,
		)
		if err != nil {
			return fmt.Errorf("failed to update patient profile: %w", err)
		}
		return nil
	})
}
