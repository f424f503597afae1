package models

import (
	"time"

	"github.com/harrylevesque/campusclinic/internal/validate"
)

type RequestKind string

const (
	KindAppointment RequestKind = "appointment"
	KindLeave       RequestKind = "leave"
	KindRecord      RequestKind = "record"
	KindTelehealth  RequestKind = "telehealth"
)

var RequestKinds = []RequestKind{KindAppointment, KindLeave, KindRecord, KindTelehealth}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusDeclined RequestStatus = "declined"
)

var RequestStatuses = []RequestStatus{StatusPending, StatusApproved, StatusDeclined}

// Request is a user-submitted appointment, leave, record or telehealth form.
type Request struct {
	ID            ID            `json:"id,omitempty"`
	User          ID            `json:"user,omitempty"`
	UserName      string        `json:"user_name,omitempty"`
	Kind          RequestKind   `json:"kind"`
	Reason        string        `json:"reason"`
	PreferredDate Date          `json:"preferred_date"`
	StartDate     Date          `json:"start_date"`
	EndDate       Date          `json:"end_date"`
	Status        RequestStatus `json:"status,omitempty"`
	Remarks       string        `json:"remarks,omitempty"`
	MeetingLink   string        `json:"meeting_link,omitempty"`
	ReviewedBy    string        `json:"reviewed_by,omitempty"`
	CreatedAt     time.Time     `json:"created_at,omitzero"`
	UpdatedAt     time.Time     `json:"updated_at,omitzero"`
}

func (r Request) Validate() error {
	var c validate.Checker
	c.Required("reason", r.Reason)
	switch r.Kind {
	case KindAppointment, KindTelehealth:
		c.RequiredTime("preferred_date", r.PreferredDate.Time)
	case KindLeave:
		c.RequiredTime("start_date", r.StartDate.Time)
		c.RequiredTime("end_date", r.EndDate.Time)
		if !r.StartDate.IsZero() && !r.EndDate.IsZero() {
			c.Check(!r.EndDate.Before(r.StartDate), "end_date", "End date cannot be before start date.")
		}
	case KindRecord:
	default:
		c.OneOf("kind", string(r.Kind), string(KindAppointment), string(KindLeave), string(KindRecord), string(KindTelehealth))
	}
	return c.Err()
}

// Scheduled reports whether the request occupies a clinic slot.
func (r Request) Scheduled() bool {
	return r.Status == StatusApproved && (r.Kind == KindAppointment || r.Kind == KindTelehealth)
}

// Review is an admin decision on a pending request.
type Review struct {
	Status      RequestStatus `json:"status"`
	Remarks     string        `json:"remarks,omitempty"`
	MeetingLink string        `json:"meeting_link,omitempty"`
}

func (r Review) Validate() error {
	var c validate.Checker
	c.OneOf("status", string(r.Status), string(StatusApproved), string(StatusDeclined))
	if r.Status == StatusDeclined {
		c.Required("remarks", r.Remarks)
	}
	return c.Err()
}
