// Package nav is the role-gated route table of the client: where a session
// lands after login, what each role may open, and the drawer menu.
package nav

import (
	"errors"
	"fmt"

	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/session"
)

type Route string

const (
	Login            Route = "login"
	Register         Route = "register"
	AdminDashboard   Route = "admin-dashboard"
	StudentDashboard Route = "student-dashboard"
	Announcements    Route = "announcements"
	Events           Route = "events"
	Stock            Route = "stock"
	Requests         Route = "requests"
	Reviews          Route = "request-reviews"
	Schedule         Route = "schedule"
	Profile          Route = "profile"
	Records          Route = "medical-records"
	Notifications    Route = "notifications"
	Users            Route = "users"
)

// Level is how much a role may do on a route.
type Level int

const (
	None Level = iota
	Read
	Manage
)

func (l Level) String() string {
	switch l {
	case Read:
		return "read"
	case Manage:
		return "manage"
	}
	return "none"
}

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrForbidden   = errors.New("not permitted for this role")
)

var public = map[Route]bool{Login: true, Register: true}

var patient = map[Route]Level{
	StudentDashboard: Read,
	Announcements:    Read,
	Events:           Read,
	Requests:         Manage,
	Schedule:         Read,
	Profile:          Manage,
	Records:          Read,
	Notifications:    Manage,
}

var access = map[models.Role]map[Route]Level{
	models.RoleAdmin: {
		AdminDashboard: Read,
		Announcements:  Manage,
		Events:         Manage,
		Stock:          Manage,
		Requests:       Manage,
		Reviews:        Manage,
		Schedule:       Read,
		Profile:        Manage,
		Records:        Manage,
		Notifications:  Manage,
		Users:          Manage,
	},
	models.RoleStudent: patient,
	models.RoleStaff:   patient,
}

// Home is the first route shown for s.
func Home(s session.Session) Route {
	if !s.LoggedIn() {
		return Login
	}
	switch s.Role {
	case models.RoleAdmin:
		return AdminDashboard
	case models.RoleStudent, models.RoleStaff:
		return StudentDashboard
	}
	return Login
}

func Access(role models.Role, r Route) Level {
	if public[r] {
		return Manage
	}
	return access[role][r]
}

// Authorize checks that role may use r at level need. An empty role means
// nobody is signed in.
func Authorize(role models.Role, r Route, need Level) error {
	if public[r] {
		return nil
	}
	if role == "" {
		return ErrNotLoggedIn
	}
	if got := Access(role, r); got < need {
		return fmt.Errorf("%w: %s has %s access to %s", ErrForbidden, role, got, r)
	}
	return nil
}

type Entry struct {
	Route Route
	Title string
}

var drawer = []Entry{
	{AdminDashboard, "Dashboard"},
	{StudentDashboard, "Dashboard"},
	{Announcements, "Announcements"},
	{Events, "Events"},
	{Requests, "Requests"},
	{Schedule, "Schedule"},
	{Stock, "Stock"},
	{Users, "Users"},
	{Records, "Medical records"},
	{Notifications, "Notifications"},
	{Profile, "Profile"},
}

// Menu lists the drawer entries role can open, in display order.
func Menu(role models.Role) []Entry {
	var out []Entry
	for _, e := range drawer {
		if Access(role, e.Route) > None {
			out = append(out, e)
		}
	}
	return out
}
