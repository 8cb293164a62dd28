package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/telehealth-api/internal/model"
)

// AddUser creates an active user with its profile row. Doctors are approved
// when approved is set; patients and admins always are.
func (s *Store) AddUser(role model.Role, email string, approved bool) *model.User {
	name, _, _ := strings.Cut(email, "@")
	u := &model.User{
		Email:      email,
		Role:       role,
		FirstName:  name,
		LastName:   "Test",
		IsApproved: role != model.RoleDoctor || approved,
		IsActive:   true,
	}
	if err := s.Users().CreateWithProfile(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

// AddSlot opens a weekly availability window for a doctor.
func (s *Store) AddSlot(doctorID uuid.UUID, day int, start, end string) *model.AvailabilitySlot {
	slot := &model.AvailabilitySlot{
		DoctorID:    doctorID,
		DayOfWeek:   day,
		StartTime:   start,
		EndTime:     end,
		IsAvailable: true,
	}
	if err := s.Availability().Create(context.Background(), slot); err != nil {
		panic(err)
	}
	return slot
}
