package domain

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	SignupDate   time.Time `json:"signup_date"`
}

// FullName joins first and last name, skipping blanks.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

const StaffRole = "staff"

type Staff struct {
	User
	StaffID    string `json:"staff_id"`
	Department string `json:"department"`
	Role       string `json:"role"`
}

// Profile is the password-free view of an account returned to clients.
type Profile struct {
	ID         string      `json:"id"`
	Kind       SessionKind `json:"kind"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Email      string      `json:"email"`
	SignupDate time.Time   `json:"signup_date"`
	StaffID    string      `json:"staff_id,omitempty"`
	Department string      `json:"department,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Kind:       SessionCustomer,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Email:      u.Email,
		SignupDate: u.SignupDate,
	}
}

func (s *Staff) Profile() Profile {
	p := s.User.Profile()
	p.Kind = SessionStaff
	p.StaffID = s.StaffID
	p.Department = s.Department
	return p
}

// SignupRequest carries the fields of the unified signup form.
type SignupRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AgreeTerms      bool   `json:"agree_terms"`
	StaffID         string `json:"staff_id,omitempty"`
	Department      string `json:"department,omitempty"`
}

// AccountSummary backs the customer account settings panel.
type AccountSummary struct {
	Profile       Profile   `json:"profile"`
	TotalBookings int       `json:"total_bookings"`
	ActiveCount   int       `json:"active_count"`
	TotalSpent    int64     `json:"total_spent_cents"`
	MemberSince   time.Time `json:"member_since"`
}
