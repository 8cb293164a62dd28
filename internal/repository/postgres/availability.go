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

const slotColumns = `id, doctor_id, day_of_week,
	to_char(start_time, 'HH24:MI') AS start_time,
	to_char(end_time, 'HH24:MI') AS end_time,
	is_available, created_at`

type availabilityRepository struct {
	BaseRepository
}

func NewAvailabilityRepository(db *sqlx.DB) repository.AvailabilityRepository {
	return &availabilityRepository{NewBaseRepository(db)}
}

func (r *availabilityRepository) Create(ctx context.Context, slot *model.AvailabilitySlot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO availability_slots (id, doctor_id, day_of_week, start_time, end_time, is_available, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		slot.ID,
		slot.DoctorID,
		slot.DayOfWeek,
		slot.StartTime,
		slot.EndTime,
		slot.IsAvailable,
		slot.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create availability slot: %w", translate(err))
	}
	return nil
}

func (r *availabilityRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE doctor_id = $1
		ORDER BY day_of_week, start_time
	`
	slots := []*model.AvailabilitySlot{}
	if err := r.db.SelectContext(ctx, &slots, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	return slots, nil
}

func (r *availabilityRepository) ListByDoctorAndDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM availability_slots
		WHERE doctor_id = $1 AND day_of_week = $2 AND is_available = TRUE
		ORDER BY start_time
	`
	slots := []*model.AvailabilitySlot{}
	if err := r.db.SelectContext(ctx, &slots, query, doctorID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("failed to list availability for day: %w", err)
	}
	return slots, nil
}

func (r *availabilityRepository) Delete(ctx context.Context, id, doctorID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM availability_slots WHERE id = $1 AND doctor_id = $2`, id, doctorID)
	if err != nil {
		return fmt.Errorf("failed to delete availability slot: %w", err)
	}
	return expectRows(result)
}
