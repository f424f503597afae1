package fakeapi

import (
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/campusclinic/internal/models"
)

// collection is one admin-managed endpoint family.
type collection[T any] struct {
	rows []T
	id   func(*T) *models.ID
	// owner, when set, limits non-admins to their own rows.
	owner     func(*T) models.ID
	adminRead bool
	touch     func(row *T, by *account, now time.Time, created bool)
}

func (c *collection[T]) insert(s *Server, v T) T {
	*c.id(&v) = s.nextID()
	c.rows = append(c.rows, v)
	return v
}

func (c *collection[T]) index(id models.ID) int {
	return slices.IndexFunc(c.rows, func(row T) bool { return *c.id(&row) == id })
}

func (c *collection[T]) visible(a *account, row *T) bool {
	switch {
	case isAdmin(a):
		return true
	case c.adminRead:
		return false
	case c.owner != nil:
		return c.owner(row) == a.user.ID
	}
	return true
}

func check(v any) error {
	if val, ok := v.(interface{ Validate() error }); ok {
		return val.Validate()
	}
	return nil
}

// mount registers list, create, get, patch and delete for c under path.
func mount[T any](s *Server, r *mux.Router, path string, c *collection[T]) {
	r.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		a := s.caller(req)
		if c.adminRead && !isAdmin(a) {
			forbid(w)
			return
		}
		user := models.ID(req.URL.Query().Get("user"))
		var out []T
		for i := range c.rows {
			row := &c.rows[i]
			if !c.visible(a, row) {
				continue
			}
			if c.owner != nil && user != "" && c.owner(row) != user {
				continue
			}
			out = append(out, *row)
		}
		writeList(s, w, req, out)
	}).Methods(http.MethodGet)

	r.HandleFunc(path, func(w http.ResponseWriter, req *http.Request) {
		var v T
		if !decode(w, req, &v) {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		a := s.caller(req)
		if !isAdmin(a) {
			forbid(w)
			return
		}
		if err := check(v); err != nil {
			writeInvalid(w, err)
			return
		}
		if c.touch != nil {
			c.touch(&v, a, s.now().UTC(), true)
		}
		writeJSON(w, http.StatusCreated, c.insert(s, v))
	}).Methods(http.MethodPost)

	item := path + "/{id}"
	r.HandleFunc(item, func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		a := s.caller(req)
		if c.adminRead && !isAdmin(a) {
			forbid(w)
			return
		}
		i := c.index(models.ID(mux.Vars(req)["id"]))
		if i < 0 || !c.visible(a, &c.rows[i]) {
			notFound(w)
			return
		}
		writeJSON(w, http.StatusOK, c.rows[i])
	}).Methods(http.MethodGet)

	r.HandleFunc(item, func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, err.Error())
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		a := s.caller(req)
		if !isAdmin(a) {
			forbid(w)
			return
		}
		id := models.ID(mux.Vars(req)["id"])
		i := c.index(id)
		if i < 0 {
			notFound(w)
			return
		}
		row := c.rows[i]
		if err := json.Unmarshal(body, &row); err != nil {
			writeDetail(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
			return
		}
		*c.id(&row) = id
		if err := check(row); err != nil {
			writeInvalid(w, err)
			return
		}
		if c.touch != nil {
			c.touch(&row, a, s.now().UTC(), false)
		}
		c.rows[i] = row
		writeJSON(w, http.StatusOK, row)
	}).Methods(http.MethodPatch)

	r.HandleFunc(item, func(w http.ResponseWriter, req *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !isAdmin(s.caller(req)) {
			forbid(w)
			return
		}
		i := c.index(models.ID(mux.Vars(req)["id"]))
		if i < 0 {
			notFound(w)
			return
		}
		c.rows = slices.Delete(c.rows, i, i+1)
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)
}
