// Package fakeapi is an in-memory clinic backend served over httptest. It
// speaks the same JSON and error shapes as the real backend, closely enough
// for the client, dashboard and CLI tests to run against it.
package fakeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/validate"
)

// Recorded is one request as the server saw it.
type Recorded struct {
	Method        string
	Path          string
	Query         string
	Authorization string
	RequestID     string
	// Body is the raw request body for JSON requests, as sent.
	Body string
}

type account struct {
	user     models.User
	password string
}

type failure struct {
	status int
	body   string
}

type Server struct {
	URL string

	srv *httptest.Server
	now func() time.Time

	mu            sync.Mutex
	seq           int
	pageSize      int
	fail          *failure
	log           []Recorded
	accounts      map[models.ID]*account
	tokens        map[string]models.ID
	profiles      map[models.ID]models.MedicalProfile
	pictures      map[models.ID][]byte
	requests      []models.Request
	notifications []owned
	announcements *collection[models.Announcement]
	events        *collection[models.Event]
	stock         *collection[models.StockItem]
	assessments   *collection[models.Assessment]
	immunizations *collection[models.Immunization]
}

type owned struct {
	owner models.ID
	n     models.Notification
}

// New starts a backend with no users. Call Close when done.
func New() *Server {
	s := &Server{
		now:      time.Now,
		accounts: make(map[models.ID]*account),
		tokens:   make(map[string]models.ID),
		profiles: make(map[models.ID]models.MedicalProfile),
		pictures: make(map[models.ID][]byte),
	}
	s.announcements = &collection[models.Announcement]{
		id: func(a *models.Announcement) *models.ID { return &a.ID },
		touch: func(a *models.Announcement, by *account, now time.Time, created bool) {
			if created {
				a.Author = by.user.FullName()
				a.CreatedAt = now
			}
			a.UpdatedAt = now
		},
	}
	s.events = &collection[models.Event]{
		id: func(e *models.Event) *models.ID { return &e.ID },
		touch: func(e *models.Event, by *account, _ time.Time, created bool) {
			if created {
				e.CreatedBy = by.user.FullName()
			}
		},
	}
	s.stock = &collection[models.StockItem]{
		id:        func(i *models.StockItem) *models.ID { return &i.ID },
		adminRead: true,
		touch: func(i *models.StockItem, _ *account, now time.Time, _ bool) {
			i.UpdatedAt = now
		},
	}
	s.assessments = &collection[models.Assessment]{
		id:    func(a *models.Assessment) *models.ID { return &a.ID },
		owner: func(a *models.Assessment) models.ID { return a.User },
		touch: func(a *models.Assessment, by *account, _ time.Time, created bool) {
			if created && a.AssessedBy == "" {
				a.AssessedBy = by.user.FullName()
			}
		},
	}
	s.immunizations = &collection[models.Immunization]{
		id:    func(i *models.Immunization) *models.ID { return &i.ID },
		owner: func(i *models.Immunization) models.ID { return i.User },
		touch: func(i *models.Immunization, by *account, _ time.Time, created bool) {
			if created && i.AdministeredBy == "" {
				i.AdministeredBy = by.user.FullName()
			}
		},
	}
	s.srv = httptest.NewServer(s.router())
	s.URL = s.srv.URL
	return s
}

func (s *Server) Close() { s.srv.Close() }

// SetClock replaces the server's notion of now.
func (s *Server) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// SetPageSize makes list endpoints answer with {"next", "results"} pages of n
// items. Zero returns bare arrays.
func (s *Server) SetPageSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageSize = n
}

// FailNext makes the next request answer status with body, whatever it is.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = &failure{status: status, body: body}
}

// Requests returns every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.log...)
}

func (s *Server) nextID() models.ID {
	s.seq++
	return models.ID(strconv.Itoa(s.seq))
}

// AddUser creates an account. The returned user carries its assigned ID.
func (s *Server) AddUser(u models.User, password string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUser(u, password)
}

func (s *Server) addUser(u models.User, password string) models.User {
	u.ID = s.nextID()
	u.IsActive = true
	if u.DateJoined.IsZero() {
		u.DateJoined = s.now().UTC()
	}
	s.accounts[u.ID] = &account{user: u, password: password}
	return u
}

// Token issues a bearer token for userID without going through login.
func (s *Server) Token(userID models.ID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issue(userID)
}

func (s *Server) issue(userID models.ID) string {
	tok := uuid.NewString()
	s.tokens[tok] = userID
	return tok
}

// User returns the stored account, if any.
func (s *Server) User(id models.ID) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.User{}, false
	}
	return a.user, true
}

// Picture returns the last uploaded profile picture for id.
func (s *Server) Picture(id models.ID) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pictures[id]
}

func (s *Server) AddAnnouncement(a models.Announcement) models.Announcement {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now().UTC()
	}
	return s.announcements.insert(s, a)
}

func (s *Server) AddEvent(e models.Event) models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.insert(s, e)
}

func (s *Server) AddStock(i models.StockItem) models.StockItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock.insert(s, i)
}

func (s *Server) AddAssessment(a models.Assessment) models.Assessment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assessments.insert(s, a)
}

func (s *Server) AddImmunization(i models.Immunization) models.Immunization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.immunizations.insert(s, i)
}

// AddRequest stores r as given. Empty status means pending.
func (s *Server) AddRequest(r models.Request) models.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.nextID()
	if r.Status == "" {
		r.Status = models.StatusPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now().UTC()
	}
	s.requests = append(s.requests, r)
	return r
}

func (s *Server) AddNotification(owner models.ID, n models.Notification) models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notify(owner, n)
}

func (s *Server) notify(owner models.ID, n models.Notification) models.Notification {
	n.ID = s.nextID()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}
	s.notifications = append(s.notifications, owned{owner: owner, n: n})
	return n
}

type callerKey struct{}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil && strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			var err error
			if body, err = io.ReadAll(r.Body); err != nil {
				writeDetail(w, http.StatusBadRequest, "Unreadable body.")
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.log = append(s.log, Recorded{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			Body:          string(body),
		})
		f := s.fail
		s.fail = nil
		s.mu.Unlock()
		if f != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		tok, ok := strings.CutPrefix(h, "Bearer ")
		s.mu.Lock()
		id, known := s.tokens[tok]
		s.mu.Unlock()
		if !ok || !known {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey{}, id)))
	})
}

// caller returns the signed-in account. s.mu must be held.
func (s *Server) caller(r *http.Request) *account {
	id, _ := r.Context().Value(callerKey{}).(models.ID)
	return s.accounts[id]
}

func isAdmin(a *account) bool { return a != nil && a.user.Role == models.RoleAdmin }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func forbid(w http.ResponseWriter) {
	writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
}

func notFound(w http.ResponseWriter) {
	writeDetail(w, http.StatusNotFound, "Not found.")
}

// writeInvalid reports err the way the backend's serializers do.
func writeInvalid(w http.ResponseWriter, err error) {
	var verr *validate.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, verr.Fields)
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {err.Error()}})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Invalid JSON: " + err.Error()}})
		return false
	}
	return true
}

// writeList answers a list request, paginating when a page size is set.
// s.mu must be held.
func writeList[T any](s *Server, w http.ResponseWriter, r *http.Request, items []T) {
	if items == nil {
		items = []T{}
	}
	if s.pageSize <= 0 {
		writeJSON(w, http.StatusOK, items)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	start := min((page-1)*s.pageSize, len(items))
	end := min(start+s.pageSize, len(items))
	next := ""
	if end < len(items) {
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(page+1))
		next = "http://" + r.Host + r.URL.Path + "?" + q.Encode()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(items),
		"next":    next,
		"results": items[start:end],
	})
}
