package models

import (
	"strings"
	"time"

	"github.com/harrylevesque/campusclinic/internal/validate"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleStudent Role = "student"
)

// Known reports whether r is one of the roles the backend issues.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleStudent:
		return true
	}
	return false
}

type User struct {
	ID             ID        `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Role           Role      `json:"role"`
	StudentNumber  string    `json:"student_number,omitempty"`
	Department     string    `json:"department,omitempty"`
	ContactNumber  string    `json:"contact_number,omitempty"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	IsActive       bool      `json:"is_active"`
	DateJoined     time.Time `json:"date_joined,omitzero"`
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserPatch carries the editable profile fields; nil fields are left alone.
type UserPatch struct {
	Email         *string `json:"email,omitempty"`
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	Department    *string `json:"department,omitempty"`
	ContactNumber *string `json:"contact_number,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// Registration is the sign-up form for student and staff accounts.
type Registration struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Role          Role   `json:"role"`
	StudentNumber string `json:"student_number,omitempty"`
	Department    string `json:"department,omitempty"`
}

func (r Registration) Validate() error {
	var c validate.Checker
	c.Required("username", r.Username)
	c.Required("password", r.Password)
	c.Required("email", r.Email)
	c.Required("first_name", r.FirstName)
	c.Required("last_name", r.LastName)
	c.OneOf("role", string(r.Role), string(RoleStudent), string(RoleStaff))
	if r.Email != "" {
		c.Check(strings.Contains(r.Email, "@"), "email", "Enter a valid email address.")
	}
	return c.Err()
}

// LoginResult is the login response; it is exactly what the session keeps.
type LoginResult struct {
	ID             ID     `json:"id"`
	Access         string `json:"access"`
	Role           Role   `json:"role"`
	FirstName      string `json:"first_name"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profile_picture"`
}
