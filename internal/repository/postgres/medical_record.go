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

type medicalRecordRepository struct {
	BaseRepository
}

func NewMedicalRecordRepository(db *sqlx.DB) repository.MedicalRecordRepository {
	return &medicalRecordRepository{NewBaseRepository(db)}
}

func (r *medicalRecordRepository) CreateForAppointment(ctx context.Context, rec *model.MedicalRecord, rx *model.Prescription) error {
	now := time.Now()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO medical_records (
				id, patient_id, doctor_id, appointment_id, diagnosis, symptoms, notes, vital_signs, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err := tx.ExecContext(ctx, query,
			rec.ID,
			rec.PatientID,
			rec.DoctorID,
			rec.AppointmentID,
			rec.Diagnosis,
			rec.Symptoms,
			rec.Notes,
			rec.VitalSigns,
			rec.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create medical record: %w", translate(err))
		}

		if rx != nil {
			if rx.ID == uuid.Nil {
				rx.ID = uuid.New()
			}
			rx.MedicalRecordID = rec.ID
			rx.CreatedAt = now

			query = `
				INSERT INTO prescriptions (
					id, medical_record_id, appointment_id, patient_id, doctor_id, medications, instructions, created_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			`
			_, err = tx.ExecContext(ctx, query,
				rx.ID,
				rx.MedicalRecordID,
				rx.AppointmentID,
				rx.PatientID,
				rx.DoctorID,
				rx.Medications,
				rx.Instructions,
				rx.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to create prescription: %w", translate(err))
			}
		}

		if rec.AppointmentID != nil {
			result, err := tx.ExecContext(ctx, `
				UPDATE appointments SET status = 'completed', updated_at = NOW()
				WHERE id = $1 AND doctor_id = $2 AND status <> 'cancelled'
			`, rec.AppointmentID, rec.DoctorID)
			if err != nil {
				return fmt.Errorf("failed to complete appointment: %w", err)
			}
			if err := expectRows(result); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE doctor_profiles
			SET total_consultations = total_consultations + 1, updated_at = NOW()
			WHERE user_id = $1
		`, rec.DoctorID)
		if err != nil {
			return fmt.Errorf("failed to update consultation count: %w", err)
		}
		return nil
	})
}

func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.MedicalRecordDetail, error) {
	query := `
		SELECT mr.id, mr.patient_id, mr.doctor_id, mr.appointment_id, mr.diagnosis,
			mr.symptoms, mr.notes, mr.vital_signs, mr.created_at,
			u.first_name AS doctor_first_name, u.last_name AS doctor_last_name,
			dp.specialization,
			to_char(a.appointment_date, 'YYYY-MM-DD') AS appointment_date,
			p.medications, p.instructions AS prescription_instructions
		FROM medical_records mr
		LEFT JOIN users u ON mr.doctor_id = u.id
		LEFT JOIN doctor_profiles dp ON u.id = dp.user_id
		LEFT JOIN appointments a ON mr.appointment_id = a.id
		LEFT JOIN prescriptions p ON p.medical_record_id = mr.id
		WHERE mr.patient_id = $1
		ORDER BY mr.created_at DESC
	`
	records := []*model.MedicalRecordDetail{}
	if err := r.db.SelectContext(ctx, &records, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}

const prescriptionDetailQuery = `
	SELECT p.id, p.medical_record_id, p.appointment_id, p.patient_id, p.doctor_id,
		p.medications, p.instructions, p.created_at,
		u.first_name AS doctor_first_name, u.last_name AS doctor_last_name,
		dp.specialization,
		to_char(a.appointment_date, 'YYYY-MM-DD') AS appointment_date
	FROM prescriptions p
	JOIN users u ON p.doctor_id = u.id
	LEFT JOIN doctor_profiles dp ON u.id = dp.user_id
	LEFT JOIN appointments a ON p.appointment_id = a.id
`

func (r *medicalRecordRepository) GetPrescription(ctx context.Context, id, patientID uuid.UUID) (*model.PrescriptionDetail, error) {
	var rx model.PrescriptionDetail
	query := prescriptionDetailQuery + ` WHERE p.id = $1 AND p.patient_id = $2`
	if err := r.db.GetContext(ctx, &rx, query, id, patientID); err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", translate(err))
	}
	return &rx, nil
}

func (r *medicalRecordRepository) ListPrescriptionsByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PrescriptionDetail, error) {
	query := prescriptionDetailQuery + ` WHERE p.patient_id = $1 ORDER BY p.created_at DESC`
	prescriptions := []*model.PrescriptionDetail{}
	if err := r.db.SelectContext(ctx, &prescriptions, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}
