package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

const appointmentColumns = `id, patient_id, doctor_id,
	to_char(appointment_date, 'YYYY-MM-DD') AS appointment_date,
	to_char(start_time, 'HH24:MI') AS start_time,
	to_char(end_time, 'HH24:MI') AS end_time,
	status, symptoms, cancellation_reason, video_channel_name, created_at, updated_at`

const appointmentDetailColumns = `a.id, a.patient_id, a.doctor_id,
	to_char(a.appointment_date, 'YYYY-MM-DD') AS appointment_date,
	to_char(a.start_time, 'HH24:MI') AS start_time,
	to_char(a.end_time, 'HH24:MI') AS end_time,
	a.status, a.symptoms, a.cancellation_reason, a.video_channel_name, a.created_at, a.updated_at`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	apt.Touch(time.Now())

	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, appointment_date, start_time, end_time,
			status, symptoms, video_channel_name, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.PatientID,
		apt.DoctorID,
		apt.AppointmentDate,
		apt.StartTime,
		apt.EndTime,
		apt.Status,
		apt.Symptoms,
		apt.VideoChannelName,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", translate(err))
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var apt model.Appointment
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	if err := r.db.GetContext(ctx, &apt, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", translate(err))
	}
	return &apt, nil
}

func (r *appointmentRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	var detail model.AppointmentDetail
	query := `
		SELECT ` + appointmentDetailColumns + `,
			p.first_name AS patient_first_name, p.last_name AS patient_last_name, p.phone AS patient_phone,
			to_char(pp.date_of_birth, 'YYYY-MM-DD') AS date_of_birth,
			pp.blood_group, pp.allergies, pp.chronic_conditions,
			d.first_name AS doctor_first_name, d.last_name AS doctor_last_name,
			dp.specialization, dp.hospital_name
		FROM appointments a
		JOIN users p ON a.patient_id = p.id
		JOIN users d ON a.doctor_id = d.id
		LEFT JOIN patient_profiles pp ON p.id = pp.user_id
		LEFT JOIN doctor_profiles dp ON d.id = dp.user_id
		WHERE a.id = $1
	`
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment detail: %w", translate(err))
	}
	return &detail, nil
}

func (r *appointmentRepository) ExistsAtStart(ctx context.Context, doctorID uuid.UUID, date, startTime string, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
				AND appointment_date = $2
				AND start_time = $3
				AND status <> 'cancelled'
				AND ($4::uuid IS NULL OR id <> $4::uuid)
		)
	`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, doctorID, date, startTime, excludeID); err != nil {
		return false, fmt.Errorf("failed to check slot: %w", err)
	}
	return exists, nil
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT ` + appointmentDetailColumns + `,
			d.first_name AS doctor_first_name, d.last_name AS doctor_last_name,
			dp.specialization, dp.hospital_name
		FROM appointments a
		JOIN users d ON a.doctor_id = d.id
		LEFT JOIN doctor_profiles dp ON d.id = dp.user_id
		WHERE a.patient_id = $1
		ORDER BY a.appointment_date DESC, a.start_time DESC
	`
	appointments := []*model.AppointmentDetail{}
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := `
		SELECT ` + appointmentDetailColumns + `,
			p.first_name AS patient_first_name, p.last_name AS patient_last_name, p.phone AS patient_phone,
			to_char(pp.date_of_birth, 'YYYY-MM-DD') AS date_of_birth,
			pp.blood_group, pp.allergies, pp.chronic_conditions
		FROM appointments a
		JOIN users p ON a.patient_id = p.id
		LEFT JOIN patient_profiles pp ON p.id = pp.user_id
		WHERE a.doctor_id = $1
		ORDER BY a.appointment_date DESC, a.start_time DESC
	`
	appointments := []*model.AppointmentDetail{}
	if err := r.db.SelectContext(ctx, &appointments, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) TransitionStatus(ctx context.Context, id, participantID uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus) (*model.Appointment, error) {
	states := make([]string, len(from))
	for i, s := range from {
		states[i] = string(s)
	}

	var apt model.Appointment
	query := `
		UPDATE appointments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
			AND (patient_id = $3 OR doctor_id = $3)
			AND status = ANY($4)
		RETURNING ` + appointmentColumns
	if err := r.db.GetContext(ctx, &apt, query, to, id, participantID, pq.Array(states)); err != nil {
		return nil, fmt.Errorf("failed to update appointment status: %w", translate(err))
	}
	return &apt, nil
}

func (r *appointmentRepository) Cancel(ctx context.Context, id, participantID uuid.UUID, reason *string) (*model.Appointment, error) {
	var apt model.Appointment
	query := `
		UPDATE appointments
		SET status = 'cancelled', cancellation_reason = $1, updated_at = NOW()
		WHERE id = $2
			AND (patient_id = $3 OR doctor_id = $3)
			AND status = 'scheduled'
		RETURNING ` + appointmentColumns
	if err := r.db.GetContext(ctx, &apt, query, reason, id, participantID); err != nil {
		return nil, fmt.Errorf("failed to cancel appointment: %w", translate(err))
	}
	return &apt, nil
}

func (r *appointmentRepository) Reschedule(ctx context.Context, id, patientID uuid.UUID, date, startTime, endTime string) (*model.Appointment, error) {
	var apt model.Appointment
	query := `
		UPDATE appointments
		SET appointment_date = $1, start_time = $2, end_time = $3, updated_at = NOW()
		WHERE id = $4 AND patient_id = $5 AND status = 'scheduled'
		RETURNING ` + appointmentColumns
	if err := r.db.GetContext(ctx, &apt, query, date, startTime, endTime, id, patientID); err != nil {
		return nil, fmt.Errorf("failed to reschedule appointment: %w", translate(err))
	}
	return &apt, nil
}

func (r *appointmentRepository) HasPatient(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM appointments WHERE doctor_id = $1 AND patient_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, doctorID, patientID); err != nil {
		return false, fmt.Errorf("failed to check doctor patient relation: %w", err)
	}
	return exists, nil
}
