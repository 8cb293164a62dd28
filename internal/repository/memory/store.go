// Package memory is an in-process implementation of the repository
// interfaces. It enforces the same unique constraints as the Postgres
// schema and backs the service and handler tests.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telehealth-api/internal/model"
)

type Store struct {
	mu sync.RWMutex

	users         map[uuid.UUID]*model.User
	doctors       map[uuid.UUID]*model.DoctorProfile
	patients      map[uuid.UUID]*model.PatientProfile
	slots         map[uuid.UUID]*model.AvailabilitySlot
	appointments  map[uuid.UUID]*model.Appointment
	records       map[uuid.UUID]*model.MedicalRecord
	prescriptions map[uuid.UUID]*model.Prescription
	articles      map[uuid.UUID]*model.HealthArticle
	outbox        map[uuid.UUID]*model.OutboxEvent

	// lastOutbox keeps outbox creation times strictly increasing.
	lastOutbox time.Time
}

func NewStore() *Store {
	return &Store{
		users:         make(map[uuid.UUID]*model.User),
		doctors:       make(map[uuid.UUID]*model.DoctorProfile),
		patients:      make(map[uuid.UUID]*model.PatientProfile),
		slots:         make(map[uuid.UUID]*model.AvailabilitySlot),
		appointments:  make(map[uuid.UUID]*model.Appointment),
		records:       make(map[uuid.UUID]*model.MedicalRecord),
		prescriptions: make(map[uuid.UUID]*model.Prescription),
		articles:      make(map[uuid.UUID]*model.HealthArticle),
		outbox:        make(map[uuid.UUID]*model.OutboxEvent),
	}
}

// Repository views share the store's maps and lock.
func (s *Store) Users() *UserRepository { return &UserRepository{s} }
func (s *Store) Doctors() *DoctorRepository { return &DoctorRepository{s} }
func (s *Store) Patients() *PatientRepository { return &PatientRepository{s} }
func (s *Store) Availability() *AvailabilityRepository { return &AvailabilityRepository{s} }
func (s *Store) Appointments() *AppointmentRepository { return &AppointmentRepository{s} }
func (s *Store) MedicalRecords() *MedicalRecordRepository { return &MedicalRecordRepository{s} }
func (s *Store) Articles() *ArticleRepository { return &ArticleRepository{s} }
func (s *Store) Stats() *StatsRepository { return &StatsRepository{s} }
func (s *Store) Outbox() *OutboxRepository { return &OutboxRepository{s} }

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
