package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/campusclinic/internal/validate"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 42, "b": "u-7", "c": null}`), &v))
	assert.Equal(t, ID("42"), v.A)
	assert.Equal(t, ID("u-7"), v.B)
	assert.True(t, v.C.IsZero())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 42, "b": "u-7", "c": null}`, string(out))
}

func TestDateCodec(t *testing.T) {
	var v struct {
		D Date `json:"d"`
		E Date `json:"e"`
		F Date `json:"f"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d": "2025-03-14", "e": null, "f": "2025-03-15T08:30:00Z"}`), &v))
	assert.Equal(t, "2025-03-14", v.D.String())
	assert.True(t, v.E.IsZero())
	assert.Equal(t, "2025-03-15", v.F.String())

	var bad struct {
		D Date `json:"d"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"d": "14/03/2025"}`), &bad))
}

func fieldsOf(t *testing.T, err error) map[string][]string {
	t.Helper()
	var verr *validate.Error
	require.True(t, errors.As(err, &verr), "want *validate.Error, got %v", err)
	return verr.Fields
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name   string
		req    Request
		fields []string
	}{
		{
			name: "appointment ok",
			req:  Request{Kind: KindAppointment, Reason: "checkup", PreferredDate: NewDate(2025, 5, 2)},
		},
		{
			name:   "appointment without date",
			req:    Request{Kind: KindAppointment, Reason: "checkup"},
			fields: []string{"preferred_date"},
		},
		{
			name:   "leave reversed range",
			req:    Request{Kind: KindLeave, Reason: "flu", StartDate: NewDate(2025, 5, 3), EndDate: NewDate(2025, 5, 1)},
			fields: []string{"end_date"},
		},
		{
			name:   "leave missing dates and reason",
			req:    Request{Kind: KindLeave},
			fields: []string{"reason", "start_date", "end_date"},
		},
		{
			name: "record needs only a reason",
			req:  Request{Kind: KindRecord, Reason: "scholarship"},
		},
		{
			name:   "unknown kind",
			req:    Request{Kind: "vacation", Reason: "x"},
			fields: []string{"kind"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}
			got := fieldsOf(t, err)
			for _, f := range tt.fields {
				assert.Contains(t, got, f)
			}
			assert.Len(t, got, len(tt.fields))
		})
	}
}

func TestReviewValidate(t *testing.T) {
	assert.NoError(t, Review{Status: StatusApproved}.Validate())
	assert.Contains(t, fieldsOf(t, Review{Status: StatusDeclined}.Validate()), "remarks")
	assert.Contains(t, fieldsOf(t, Review{Status: StatusPending}.Validate()), "status")
}

func TestStockExpiry(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	item := StockItem{Name: "Paracetamol", Category: CategoryMedicine, ExpirationDate: NewDate(2025, 6, 9)}
	assert.True(t, item.Expired(now))
	assert.True(t, item.ExpiresWithin(now, 24*time.Hour))

	item.ExpirationDate = NewDate(2025, 6, 10)
	assert.False(t, item.Expired(now))

	item.ExpirationDate = NewDate(2025, 8, 1)
	assert.False(t, item.ExpiresWithin(now, 30*24*time.Hour))
	assert.True(t, item.ExpiresWithin(now, 60*24*time.Hour))

	assert.False(t, StockItem{}.ExpiresWithin(now, time.Hour))
	assert.Contains(t, fieldsOf(t, StockItem{Name: "x", Category: "food", Quantity: -1}.Validate()), "quantity")
}

func TestEventValidateAndUpcoming(t *testing.T) {
	start := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	e := Event{Title: "Blood drive", StartAt: start, EndAt: start.Add(-time.Hour)}
	assert.Contains(t, fieldsOf(t, e.Validate()), "end_at")

	e.EndAt = start.Add(3 * time.Hour)
	require.NoError(t, e.Validate())
	assert.True(t, e.Upcoming(start.Add(time.Hour)))
	assert.False(t, e.Upcoming(start.Add(4*time.Hour)))
}

func TestRegistrationValidate(t *testing.T) {
	r := Registration{Username: "jdoe", Password: "pw", Email: "jdoe@school.edu", FirstName: "J", LastName: "Doe", Role: RoleStudent}
	require.NoError(t, r.Validate())

	r.Role = RoleAdmin
	r.Email = "nope"
	got := fieldsOf(t, r.Validate())
	assert.Contains(t, got, "role")
	assert.Contains(t, got, "email")
}

func TestUnsetTimestampsAreOmitted(t *testing.T) {
	start := time.Date(2026, 11, 3, 9, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		v    any
		want string
	}{
		{"event without end", Event{Title: "Blood drive", StartAt: start},
			`{"title":"Blood drive","start_at":"2026-11-03T09:00:00Z"}`},
		{"new announcement", Announcement{Title: "Flu shots", Body: "Bring your ID."},
			`{"title":"Flu shots","body":"Bring your ID."}`},
		{"new request", Request{Kind: KindRecord, Reason: "Certificate"},
			`{"kind":"record","reason":"Certificate","preferred_date":null,"start_date":null,"end_date":null}`},
		{"new stock item", StockItem{Name: "Gauze", Category: CategorySupplies, Quantity: 5},
			`{"name":"Gauze","category":"supplies","quantity":5,"expiration_date":null}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := json.Marshal(tc.v)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(out))
		})
	}

	out, err := json.Marshal(Event{Title: "Blood drive", StartAt: start, EndAt: start.Add(2 * time.Hour)})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"end_at":"2026-11-03T11:00:00Z"`)
}
