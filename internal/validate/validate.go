// Package validate collects required-field failures for request forms before
// they are submitted to the clinic backend.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Error lists the fields that failed validation, keyed by JSON field name.
type Error struct {
	Fields map[string][]string
}

func (e *Error) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Checker accumulates field failures. The zero value is ready to use.
type Checker struct {
	fields map[string][]string
}

func (c *Checker) Fail(field, msg string) {
	if c.fields == nil {
		c.fields = make(map[string][]string)
	}
	c.fields[field] = append(c.fields[field], msg)
}

// Required fails field when value is blank after trimming spaces.
func (c *Checker) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		c.Fail(field, "This field is required.")
	}
}

// RequiredTime fails field when t is the zero time.
func (c *Checker) RequiredTime(field string, t time.Time) {
	if t.IsZero() {
		c.Fail(field, "This field is required.")
	}
}

func (c *Checker) Check(ok bool, field, msg string) {
	if !ok {
		c.Fail(field, msg)
	}
}

// OneOf fails field when value is not in allowed.
func (c *Checker) OneOf(field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	c.Fail(field, fmt.Sprintf("%q is not a valid choice (%s).", value, strings.Join(allowed, ", ")))
}

// Err returns nil when nothing failed, otherwise an *Error.
func (c *Checker) Err() error {
	if len(c.fields) == 0 {
		return nil
	}
	return &Error{Fields: c.fields}
}
