package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

type statsRepository struct {
	BaseRepository
}

func NewStatsRepository(db *sqlx.DB) repository.StatsRepository {
	return &statsRepository{NewBaseRepository(db)}
}

func (r *statsRepository) Platform(ctx context.Context) (*model.PlatformStats, error) {
	var stats model.PlatformStats
	query := `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'patient') AS total_patients,
			(SELECT COUNT(*) FROM users WHERE role = 'doctor' AND is_approved = TRUE) AS total_doctors,
			(SELECT COUNT(*) FROM users WHERE role = 'doctor' AND is_approved = FALSE) AS pending_doctors,
			(SELECT COUNT(*) FROM appointments WHERE status = 'scheduled') AS scheduled_appointments,
			(SELECT COUNT(*) FROM appointments WHERE status = 'completed') AS completed_appointments,
			(SELECT COUNT(*) FROM appointments WHERE status = 'cancelled') AS cancelled_appointments,
			(SELECT COUNT(*) FROM medical_records) AS total_medical_records,
			(SELECT COUNT(*) FROM prescriptions) AS total_prescriptions
	`
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to load platform stats: %w", err)
	}
	return &stats, nil
}
