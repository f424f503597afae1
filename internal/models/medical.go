package models

import (
	"time"

	"github.com/harrylevesque/campusclinic/internal/validate"
)

type MedicalProfile struct {
	User                   ID        `json:"user"`
	BloodType              string    `json:"blood_type,omitempty"`
	HeightCM               float64   `json:"height_cm,omitempty"`
	WeightKG               float64   `json:"weight_kg,omitempty"`
	Allergies              string    `json:"allergies,omitempty"`
	Conditions             string    `json:"conditions,omitempty"`
	Medications            string    `json:"medications,omitempty"`
	EmergencyContactName   string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactNumber string    `json:"emergency_contact_number,omitempty"`
	UpdatedAt              time.Time `json:"updated_at,omitzero"`
}

type MedicalProfilePatch struct {
	BloodType              *string  `json:"blood_type,omitempty"`
	HeightCM               *float64 `json:"height_cm,omitempty"`
	WeightKG               *float64 `json:"weight_kg,omitempty"`
	Allergies              *string  `json:"allergies,omitempty"`
	Conditions             *string  `json:"conditions,omitempty"`
	Medications            *string  `json:"medications,omitempty"`
	EmergencyContactName   *string  `json:"emergency_contact_name,omitempty"`
	EmergencyContactNumber *string  `json:"emergency_contact_number,omitempty"`
}

type Vitals struct {
	BloodPressure   string  `json:"blood_pressure,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
	PulseRate       int     `json:"pulse_rate,omitempty"`
	RespiratoryRate int     `json:"respiratory_rate,omitempty"`
}

// Assessment is one clinic consultation recorded by staff.
type Assessment struct {
	ID             ID     `json:"id,omitempty"`
	User           ID     `json:"user"`
	AssessedBy     string `json:"assessed_by,omitempty"`
	Date           Date   `json:"date"`
	ChiefComplaint string `json:"chief_complaint"`
	Findings       string `json:"findings,omitempty"`
	Diagnosis      string `json:"diagnosis,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
	Vitals         Vitals `json:"vitals"`
}

func (a Assessment) Validate() error {
	var c validate.Checker
	c.Required("user", a.User.String())
	c.RequiredTime("date", a.Date.Time)
	c.Required("chief_complaint", a.ChiefComplaint)
	return c.Err()
}

type Immunization struct {
	ID               ID     `json:"id,omitempty"`
	User             ID     `json:"user"`
	Vaccine          string `json:"vaccine"`
	Dose             string `json:"dose,omitempty"`
	DateAdministered Date   `json:"date_administered"`
	AdministeredBy   string `json:"administered_by,omitempty"`
	NextDue          Date   `json:"next_due"`
}

func (i Immunization) Validate() error {
	var c validate.Checker
	c.Required("user", i.User.String())
	c.Required("vaccine", i.Vaccine)
	c.RequiredTime("date_administered", i.DateAdministered.Time)
	if !i.NextDue.IsZero() && !i.DateAdministered.IsZero() {
		c.Check(!i.NextDue.Before(i.DateAdministered), "next_due", "Next dose cannot be before the date administered.")
	}
	return c.Err()
}

// MedicalRecord is everything the records screen shows for one user.
type MedicalRecord struct {
	Profile       MedicalProfile `json:"profile"`
	Assessments   []Assessment   `json:"assessments"`
	Immunizations []Immunization `json:"immunizations"`
}
