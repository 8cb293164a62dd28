package model

type PlatformStats struct {
	TotalPatients         int64 `db:"total_patients" json:"total_patients"`
	TotalDoctors          int64 `db:"total_doctors" json:"total_doctors"`
	PendingDoctors        int64 `db:"pending_doctors" json:"pending_doctors"`
	ScheduledAppointments int64 `db:"scheduled_appointments" json:"scheduled_appointments"`
	CompletedAppointments int64 `db:"completed_appointments" json:"completed_appointments"`
	CancelledAppointments int64 `db:"cancelled_appointments" json:"cancelled_appointments"`
	TotalMedicalRecords   int64 `db:"total_medical_records" json:"total_medical_records"`
	TotalPrescriptions    int64 `db:"total_prescriptions" json:"total_prescriptions"`
}
