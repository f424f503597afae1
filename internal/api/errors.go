package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/harrylevesque/campusclinic/internal/validate"
)

// Kind is the category of a failed call.
type Kind int

const (
	KindNetwork Kind = iota + 1
	KindAuth
	KindForbidden
	KindNotFound
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	}
	return "unknown"
}

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrNetwork      = &Error{Kind: KindNetwork}
	ErrUnauthorized = &Error{Kind: KindAuth}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrServer       = &Error{Kind: KindServer}
)

// Error is returned by every client call that fails.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	Fields    map[string][]string
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		b.WriteString(": ")
		b.WriteString(FormatFields(e.Fields))
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Status == 0 && t.Message == "" && t.Err == nil
}

// KindOf returns the category of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// FormatFields renders field errors in a stable order.
func FormatFields(fields map[string][]string) string {
	names := make([]string, 0, len(fields))
	for n := range fields {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, n := range names {
		parts = append(parts, n+": "+strings.Join(fields[n], " "))
	}
	return strings.Join(parts, "; ")
}

func fromValidation(err error) error {
	var verr *validate.Error
	if errors.As(err, &verr) {
		return &Error{Kind: KindValidation, Fields: verr.Fields}
	}
	return &Error{Kind: KindValidation, Message: err.Error()}
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// maxMessage caps the runes kept from a non-JSON error body.
const maxMessage = 200

// clip cuts s to at most n runes.
func clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// parseError reads the backend's error body. Two shapes are understood:
// {"detail": "..."} and {"field": ["msg", ...]}.
func parseError(status int, body []byte) *Error {
	e := &Error{Kind: kindForStatus(status), Status: status}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		e.Message = strings.TrimSpace(string(body))
		e.Message = clip(e.Message, maxMessage)
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	for key, val := range raw {
		switch key {
		case "detail", "message", "error":
			var s string
			if json.Unmarshal(val, &s) == nil {
				e.Message = s
				continue
			}
		}
		msgs := decodeMessages(val)
		if len(msgs) == 0 {
			continue
		}
		if key == "non_field_errors" {
			e.Message = strings.Join(msgs, " ")
			continue
		}
		if e.Fields == nil {
			e.Fields = make(map[string][]string)
		}
		e.Fields[key] = msgs
	}
	if e.Message == "" && len(e.Fields) == 0 {
		e.Message = http.StatusText(status)
	}
	return e
}

func decodeMessages(val json.RawMessage) []string {
	var list []string
	if json.Unmarshal(val, &list) == nil {
		return list
	}
	var s string
	if json.Unmarshal(val, &s) == nil && s != "" {
		return []string{s}
	}
	return nil
}
