package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

var (
	_ repository.UserRepository    = (*UserRepository)(nil)
	_ repository.DoctorRepository  = (*DoctorRepository)(nil)
	_ repository.PatientRepository = (*PatientRepository)(nil)
)

type UserRepository struct{ s *Store }

func (r *UserRepository) CreateWithProfile(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return fmt.Errorf("failed to create user: %w: users_email_key", repository.ErrDuplicate)
		}
	}

	user.Touch(time.Now())
	r.s.users[user.ID] = clone(user)

	switch user.Role {
	case model.RolePatient:
		r.s.patients[user.ID] = &model.PatientProfile{}
	case model.RoleDoctor:
		r.s.doctors[user.ID] = &model.DoctorProfile{
			Specialization: model.DefaultSpecialization,
			Qualification:  model.DefaultQualification,
		}
	}
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) List(_ context.Context, filter model.UserFilter) ([]*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []*model.User{}
	for _, u := range r.s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		users = append(users, clone(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *UserRepository) SetActive(_ context.Context, id uuid.UUID, active bool) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.IsActive = active
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *UserRepository) ApproveDoctor(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok || u.Role != model.RoleDoctor {
		return nil, repository.ErrNotFound
	}
	u.IsApproved = true
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

// SetRating sets a doctor's rating; ratings have no write path in the API.
func (s *Store) SetRating(doctorID uuid.UUID, rating float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.doctors[doctorID]; ok {
		p.Rating = &rating
	}
}

type DoctorRepository struct{ s *Store }

func (r *DoctorRepository) doctor(u *model.User) *model.Doctor {
	return &model.Doctor{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Phone:         u.Phone,
		IsApproved:    u.IsApproved,
		CreatedAt:     u.CreatedAt,
		DoctorProfile: *r.s.doctors[u.ID],
	}
}

func (r *DoctorRepository) ListApproved(_ context.Context, filter model.DoctorFilter) ([]*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	spec := strings.ToLower(filter.Specialization)
	search := strings.ToLower(filter.Search)

	doctors := []*model.Doctor{}
	for _, u := range r.s.users {
		if u.Role != model.RoleDoctor || !u.IsApproved || !u.IsActive || r.s.doctors[u.ID] == nil {
			continue
		}
		d := r.doctor(u)
		if spec != "" && !strings.Contains(strings.ToLower(d.Specialization), spec) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(d.FirstName), search) &&
			!strings.Contains(strings.ToLower(d.LastName), search) &&
			!strings.Contains(strings.ToLower(d.Specialization), search) {
			continue
		}
		doctors = append(doctors, d)
	}

	sort.SliceStable(doctors, func(i, j int) bool {
		ri, rj := rating(doctors[i]), rating(doctors[j])
		if ri != rj {
			return ri > rj
		}
		return doctors[i].TotalConsultations > doctors[j].TotalConsultations
	})
	return doctors, nil
}

func rating(d *model.Doctor) float64 {
	if d.Rating == nil {
		return -1
	}
	return *d.Rating
}

func (r *DoctorRepository) GetApproved(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok || u.Role != model.RoleDoctor || !u.IsApproved || !u.IsActive || r.s.doctors[id] == nil {
		return nil, repository.ErrNotFound
	}
	return r.doctor(u), nil
}

func (r *DoctorRepository) GetProfile(_ context.Context, userID uuid.UUID) (*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userID]
	if !ok || r.s.doctors[userID] == nil {
		return nil, repository.ErrNotFound
	}
	return r.doctor(u), nil
}

func (r *DoctorRepository) UpdateProfile(_ context.Context, userID uuid.UUID, req *model.UpdateDoctorProfileRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	p := r.s.doctors[userID]
	if !ok || p == nil {
		return repository.ErrNotFound
	}
	applyContact(u, &req.ContactUpdate)

	setString(&p.Specialization, req.Specialization)
	setString(&p.Qualification, req.Qualification)
	if req.ExperienceYears != nil {
		p.ExperienceYears = *req.ExperienceYears
	}
	setOptional(&p.HospitalName, req.HospitalName)
	setOptional(&p.HospitalAddress, req.HospitalAddress)
	setOptional(&p.RegistrationNumber, req.RegistrationNumber)
	setOptional(&p.Bio, req.Bio)
	if req.ConsultationFee != nil {
		p.ConsultationFee = *req.ConsultationFee
	}
	return nil
}

func (r *DoctorRepository) ListPending(_ context.Context) ([]*model.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	doctors := []*model.Doctor{}
	for _, u := range r.s.users {
		if u.Role == model.RoleDoctor && !u.IsApproved && r.s.doctors[u.ID] != nil {
			doctors = append(doctors, r.doctor(u))
		}
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].CreatedAt.After(doctors[j].CreatedAt) })
	return doctors, nil
}

type PatientRepository struct{ s *Store }

func (r *PatientRepository) GetProfile(_ context.Context, userID uuid.UUID) (*model.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p := &model.Patient{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone}
	if profile := r.s.patients[userID]; profile != nil {
		p.PatientProfile = *profile
	}
	return p, nil
}

func (r *PatientRepository) UpdateProfile(_ context.Context, userID uuid.UUID, req *model.UpdatePatientProfileRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	applyContact(u, &req.ContactUpdate)

	p := r.s.patients[userID]
	if p == nil {
		p = &model.PatientProfile{}
		r.s.patients[userID] = p
	}
	setOptional(&p.DateOfBirth, req.DateOfBirth)
	setOptional(&p.Gender, req.Gender)
	setOptional(&p.BloodGroup, req.BloodGroup)
	setOptional(&p.Address, req.Address)
	setOptional(&p.City, req.City)
	setOptional(&p.State, req.State)
	setOptional(&p.Pincode, req.Pincode)
	setOptional(&p.EmergencyContact, req.EmergencyContact)
	setOptional(&p.Allergies, req.Allergies)
	setOptional(&p.ChronicConditions, req.ChronicConditions)
	return nil
}

func applyContact(u *model.User, c *model.ContactUpdate) {
	setString(&u.FirstName, c.FirstName)
	setString(&u.LastName, c.LastName)
	setOptional(&u.Phone, c.Phone)
	u.UpdatedAt = time.Now()
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setOptional(dst **string, v *string) {
	if v != nil {
		s := *v
		*dst = &s
	}
}
