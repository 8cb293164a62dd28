package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

var (
	_ repository.AvailabilityRepository  = (*AvailabilityRepository)(nil)
	_ repository.AppointmentRepository   = (*AppointmentRepository)(nil)
	_ repository.MedicalRecordRepository = (*MedicalRecordRepository)(nil)
)

type AvailabilityRepository struct{ s *Store }

func (r *AvailabilityRepository) Create(_ context.Context, slot *model.AvailabilitySlot) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.slots {
		if existing.DoctorID == slot.DoctorID && existing.DayOfWeek == slot.DayOfWeek && existing.StartTime == slot.StartTime {
			return fmt.Errorf("failed to create availability slot: %w: availability_slots_unique", repository.ErrDuplicate)
		}
	}
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now()
	}
	r.s.slots[slot.ID] = clone(slot)
	return nil
}

func (r *AvailabilityRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	return r.list(doctorID, func(*model.AvailabilitySlot) bool { return true }), nil
}

func (r *AvailabilityRepository) ListByDoctorAndDay(_ context.Context, doctorID uuid.UUID, dayOfWeek int) ([]*model.AvailabilitySlot, error) {
	return r.list(doctorID, func(s *model.AvailabilitySlot) bool {
		return s.DayOfWeek == dayOfWeek && s.IsAvailable
	}), nil
}

func (r *AvailabilityRepository) list(doctorID uuid.UUID, keep func(*model.AvailabilitySlot) bool) []*model.AvailabilitySlot {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	slots := []*model.AvailabilitySlot{}
	for _, slot := range r.s.slots {
		if slot.DoctorID == doctorID && keep(slot) {
			slots = append(slots, clone(slot))
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].StartTime < slots[j].StartTime
	})
	return slots
}

func (r *AvailabilityRepository) Delete(_ context.Context, id, doctorID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	slot, ok := r.s.slots[id]
	if !ok || slot.DoctorID != doctorID {
		return repository.ErrNotFound
	}
	delete(r.s.slots, id)
	return nil
}

type AppointmentRepository struct{ s *Store }

// slotTaken mirrors the partial unique index on active appointments.
func (r *AppointmentRepository) slotTaken(doctorID uuid.UUID, date, start string, exclude uuid.UUID) bool {
	for _, a := range r.s.appointments {
		if a.ID != exclude && a.DoctorID == doctorID && a.AppointmentDate == date &&
			a.StartTime == start && a.Status != model.AppointmentStatusCancelled {
			return true
		}
	}
	return false
}

func (r *AppointmentRepository) Create(_ context.Context, apt *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.slotTaken(apt.DoctorID, apt.AppointmentDate, apt.StartTime, uuid.Nil) {
		return fmt.Errorf("failed to create appointment: %w: appointments_doctor_slot_active", repository.ErrDuplicate)
	}
	apt.Touch(time.Now())
	r.s.appointments[apt.ID] = clone(apt)
	return nil
}

func (r *AppointmentRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(a), nil
}

func (r *AppointmentRepository) detail(a *model.Appointment, withPatient, withDoctor bool) *model.AppointmentDetail {
	d := &model.AppointmentDetail{Appointment: *a}
	if p, ok := r.s.users[a.PatientID]; ok && withPatient {
		d.PatientFirstName = p.FirstName
		d.PatientLastName = p.LastName
		d.PatientPhone = p.Phone
		if profile := r.s.patients[a.PatientID]; profile != nil {
			d.DateOfBirth = profile.DateOfBirth
			d.BloodGroup = profile.BloodGroup
			d.Allergies = profile.Allergies
			d.ChronicConditions = profile.ChronicConditions
		}
	}
	if doc, ok := r.s.users[a.DoctorID]; ok && withDoctor {
		d.DoctorFirstName = doc.FirstName
		d.DoctorLastName = doc.LastName
		if profile := r.s.doctors[a.DoctorID]; profile != nil {
			spec := profile.Specialization
			d.Specialization = &spec
			d.HospitalName = profile.HospitalName
		}
	}
	return d
}

func (r *AppointmentRepository) GetDetail(_ context.Context, id uuid.UUID) (*model.AppointmentDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.detail(a, true, true), nil
}

func (r *AppointmentRepository) ExistsAtStart(_ context.Context, doctorID uuid.UUID, date, startTime string, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	exclude := uuid.Nil
	if excludeID != nil {
		exclude = *excludeID
	}
	return r.slotTaken(doctorID, date, startTime, exclude), nil
}

func (r *AppointmentRepository) list(keep func(*model.Appointment) bool, withPatient, withDoctor bool) []*model.AppointmentDetail {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*model.AppointmentDetail{}
	for _, a := range r.s.appointments {
		if keep(a) {
			out = append(out, r.detail(a, withPatient, withDoctor))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppointmentDate != out[j].AppointmentDate {
			return out[i].AppointmentDate > out[j].AppointmentDate
		}
		return out[i].StartTime > out[j].StartTime
	})
	return out
}

func (r *AppointmentRepository) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	return r.list(func(a *model.Appointment) bool { return a.PatientID == patientID }, false, true), nil
}

func (r *AppointmentRepository) ListByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.AppointmentDetail, error) {
	return r.list(func(a *model.Appointment) bool { return a.DoctorID == doctorID }, true, false), nil
}

func (r *AppointmentRepository) TransitionStatus(_ context.Context, id, participantID uuid.UUID, from []model.AppointmentStatus, to model.AppointmentStatus) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok || !a.IsParticipant(participantID) || !statusIn(a.Status, from) {
		return nil, repository.ErrNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	return clone(a), nil
}

func statusIn(s model.AppointmentStatus, set []model.AppointmentStatus) bool {
	for _, candidate := range set {
		if s == candidate {
			return true
		}
	}
	return false
}

func (r *AppointmentRepository) Cancel(_ context.Context, id, participantID uuid.UUID, reason *string) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok || !a.IsParticipant(participantID) || a.Status != model.AppointmentStatusScheduled {
		return nil, repository.ErrNotFound
	}
	a.Status = model.AppointmentStatusCancelled
	a.CancellationReason = reason
	a.UpdatedAt = time.Now()
	return clone(a), nil
}

func (r *AppointmentRepository) Reschedule(_ context.Context, id, patientID uuid.UUID, date, startTime, endTime string) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.appointments[id]
	if !ok || a.PatientID != patientID || a.Status != model.AppointmentStatusScheduled {
		return nil, repository.ErrNotFound
	}
	if r.slotTaken(a.DoctorID, date, startTime, a.ID) {
		return nil, fmt.Errorf("failed to reschedule appointment: %w: appointments_doctor_slot_active", repository.ErrDuplicate)
	}
	a.AppointmentDate = date
	a.StartTime = startTime
	a.EndTime = endTime
	a.UpdatedAt = time.Now()
	return clone(a), nil
}

func (r *AppointmentRepository) HasPatient(_ context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.appointments {
		if a.DoctorID == doctorID && a.PatientID == patientID {
			return true, nil
		}
	}
	return false, nil
}

type MedicalRecordRepository struct{ s *Store }

func (r *MedicalRecordRepository) CreateForAppointment(_ context.Context, rec *model.MedicalRecord, rx *model.Prescription) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var apt *model.Appointment
	if rec.AppointmentID != nil {
		a, ok := r.s.appointments[*rec.AppointmentID]
		if !ok || a.DoctorID != rec.DoctorID || a.Status == model.AppointmentStatusCancelled {
			return repository.ErrNotFound
		}
		apt = a
	}

	now := time.Now()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = now
	r.s.records[rec.ID] = clone(rec)

	if rx != nil {
		if rx.ID == uuid.Nil {
			rx.ID = uuid.New()
		}
		rx.MedicalRecordID = rec.ID
		rx.CreatedAt = now
		r.s.prescriptions[rx.ID] = clone(rx)
	}

	if apt != nil {
		apt.Status = model.AppointmentStatusCompleted
		apt.UpdatedAt = now
	}
	if p := r.s.doctors[rec.DoctorID]; p != nil {
		p.TotalConsultations++
	}
	return nil
}

func (r *MedicalRecordRepository) ListByPatient(_ context.Context, patientID uuid.UUID) ([]*model.MedicalRecordDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*model.MedicalRecordDetail{}
	for _, rec := range r.s.records {
		if rec.PatientID != patientID {
			continue
		}
		d := &model.MedicalRecordDetail{MedicalRecord: *rec}
		if doc, ok := r.s.users[rec.DoctorID]; ok {
			first, last := doc.FirstName, doc.LastName
			d.DoctorFirstName, d.DoctorLastName = &first, &last
		}
		if profile := r.s.doctors[rec.DoctorID]; profile != nil {
			spec := profile.Specialization
			d.Specialization = &spec
		}
		if rec.AppointmentID != nil {
			if a, ok := r.s.appointments[*rec.AppointmentID]; ok {
				date := a.AppointmentDate
				d.AppointmentDate = &date
			}
		}
		for _, rx := range r.s.prescriptions {
			if rx.MedicalRecordID == rec.ID {
				d.Medications.JSONText = rx.Medications
				d.Medications.Valid = true
				d.PrescriptionInstructions = rx.Instructions
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MedicalRecordRepository) prescriptionDetail(rx *model.Prescription) *model.PrescriptionDetail {
	d := &model.PrescriptionDetail{Prescription: *rx}
	if doc, ok := r.s.users[rx.DoctorID]; ok {
		d.DoctorFirstName = doc.FirstName
		d.DoctorLastName = doc.LastName
	}
	if profile := r.s.doctors[rx.DoctorID]; profile != nil {
		spec := profile.Specialization
		d.Specialization = &spec
	}
	if rx.AppointmentID != nil {
		if a, ok := r.s.appointments[*rx.AppointmentID]; ok {
			date := a.AppointmentDate
			d.AppointmentDate = &date
		}
	}
	return d
}

func (r *MedicalRecordRepository) ListPrescriptionsByPatient(_ context.Context, patientID uuid.UUID) ([]*model.PrescriptionDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*model.PrescriptionDetail{}
	for _, rx := range r.s.prescriptions {
		if rx.PatientID == patientID {
			out = append(out, r.prescriptionDetail(rx))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MedicalRecordRepository) GetPrescription(_ context.Context, id, patientID uuid.UUID) (*model.PrescriptionDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rx, ok := r.s.prescriptions[id]
	if !ok || rx.PatientID != patientID {
		return nil, repository.ErrNotFound
	}
	return r.prescriptionDetail(rx), nil
}
