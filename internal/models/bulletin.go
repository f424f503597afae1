package models

import (
	"time"

	"github.com/harrylevesque/campusclinic/internal/validate"
)

type Announcement struct {
	ID        ID        `json:"id,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

func (a Announcement) Validate() error {
	var c validate.Checker
	c.Required("title", a.Title)
	c.Required("body", a.Body)
	return c.Err()
}

type Event struct {
	ID          ID        `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at,omitzero"`
	CreatedBy   string    `json:"created_by,omitempty"`
}

func (e Event) Validate() error {
	var c validate.Checker
	c.Required("title", e.Title)
	c.RequiredTime("start_at", e.StartAt)
	if !e.EndAt.IsZero() && !e.StartAt.IsZero() {
		c.Check(!e.EndAt.Before(e.StartAt), "end_at", "End must not be before start.")
	}
	return c.Err()
}

// Upcoming reports whether the event has not ended yet at now.
func (e Event) Upcoming(now time.Time) bool {
	end := e.EndAt
	if end.IsZero() {
		end = e.StartAt
	}
	return !end.Before(now)
}

type Notification struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}
