package model

// Role is the principal type carried in session tokens.
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	}
	return false
}

// User represents a system user
type User struct {
	Base
	Email        string  `json:"email" db:"email"`
	PasswordHash string  `json:"-" db:"password_hash"`
	Role         Role    `json:"role" db:"role"`
	FirstName    string  `json:"first_name" db:"first_name"`
	LastName     string  `json:"last_name" db:"last_name"`
	Phone        *string `json:"phone,omitempty" db:"phone"`
	IsApproved   bool    `json:"is_approved" db:"is_approved"`
	IsActive     bool    `json:"is_active" db:"is_active"`
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// UserFilter represents user search parameters
type UserFilter struct {
	Role Role `form:"role" binding:"omitempty,oneof=patient doctor admin"`
}

// ContactUpdate carries the user columns shared by the profile endpoints.
type ContactUpdate struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
}
