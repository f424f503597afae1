package fakeapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"

	"github.com/harrylevesque/campusclinic/internal/models"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.Username != in.Username || a.password != in.Password || !a.user.IsActive {
			continue
		}
		writeJSON(w, http.StatusOK, models.LoginResult{
			ID:             a.user.ID,
			Access:         s.issue(a.user.ID),
			Role:           a.user.Role,
			FirstName:      a.user.FirstName,
			Username:       a.user.Username,
			ProfilePicture: a.user.ProfilePicture,
		})
		return
	}
	writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var in models.Registration
	if !decode(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accounts {
		if a.user.Username == in.Username {
			writeJSON(w, http.StatusBadRequest, map[string][]string{"username": {"A user with that username already exists."}})
			return
		}
	}
	u := s.addUser(models.User{
		Username:      in.Username,
		Email:         in.Email,
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Role:          in.Role,
		StudentNumber: in.StudentNumber,
		Department:    in.Department,
	}, in.Password)
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	delete(s.tokens, tok)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var in struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if a.password != in.OldPassword {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"old_password": {"Wrong password."}})
		return
	}
	a.password = in.NewPassword
	w.WriteHeader(http.StatusNoContent)
}

// self resolves the {id} user and checks the caller may see it. s.mu must be held.
func (s *Server) self(w http.ResponseWriter, r *http.Request) (*account, *account, bool) {
	caller := s.caller(r)
	target, ok := s.accounts[models.ID(mux.Vars(r)["id"])]
	if !ok {
		notFound(w)
		return nil, nil, false
	}
	if !isAdmin(caller) && caller.user.ID != target.user.ID {
		forbid(w)
		return nil, nil, false
	}
	return caller, target, true
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !isAdmin(s.caller(r)) {
		forbid(w)
		return
	}
	role := models.Role(r.URL.Query().Get("role"))
	search := strings.ToLower(r.URL.Query().Get("search"))
	var out []models.User
	for _, a := range s.accounts {
		u := a.user
		if role != "" && u.Role != role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Username+" "+u.FullName()+" "+u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	slices.SortFunc(out, func(a, b models.User) int { return strings.Compare(a.ID.String(), b.ID.String()) })
	writeList(s, w, r, out)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, target, ok := s.self(w, r); ok {
		writeJSON(w, http.StatusOK, target.user)
	}
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var p models.UserPatch
	if !decode(w, r, &p) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	caller, target, ok := s.self(w, r)
	if !ok {
		return
	}
	if p.IsActive != nil && !isAdmin(caller) {
		forbid(w)
		return
	}
	u := &target.user
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&u.Email, p.Email)
	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.Department, p.Department)
	set(&u.ContactNumber, p.ContactNumber)
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	writeJSON(w, http.StatusOK, *u)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !isAdmin(s.caller(r)) {
		forbid(w)
		return
	}
	id := models.ID(mux.Vars(r)["id"])
	if _, ok := s.accounts[id]; !ok {
		notFound(w)
		return
	}
	delete(s.accounts, id)
	for tok, uid := range s.tokens {
		if uid == id {
			delete(s.tokens, tok)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) uploadPicture(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		writeDetail(w, http.StatusBadRequest, "Multipart form parse error - "+err.Error())
		return
	}
	f, hdr, err := r.FormFile("profile_picture")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"profile_picture": {"No file was submitted."}})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, target, ok := s.self(w, r)
	if !ok {
		return
	}
	s.pictures[target.user.ID] = data
	target.user.ProfilePicture = fmt.Sprintf("%s/media/profile_pictures/%s/%s", s.URL, target.user.ID, hdr.Filename)
	writeJSON(w, http.StatusOK, target.user)
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, target, ok := s.self(w, r)
	if !ok {
		return
	}
	p, found := s.profiles[target.user.ID]
	if !found {
		p = models.MedicalProfile{User: target.user.ID}
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, target, ok := s.self(w, r)
	if !ok {
		return
	}
	p := s.profiles[target.user.ID]
	if err := json.Unmarshal(body, &p); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	p.User = target.user.ID
	p.UpdatedAt = s.now().UTC()
	s.profiles[target.user.ID] = p
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) requestIndex(id models.ID) int {
	return slices.IndexFunc(s.requests, func(r models.Request) bool { return r.ID == id })
}

func (s *Server) listRequests(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	q := r.URL.Query()
	var out []models.Request
	for _, req := range s.requests {
		switch {
		case !isAdmin(a) && req.User != a.user.ID:
			continue
		case q.Get("status") != "" && string(req.Status) != q.Get("status"):
			continue
		case q.Get("kind") != "" && string(req.Kind) != q.Get("kind"):
			continue
		case q.Get("user") != "" && req.User.String() != q.Get("user"):
			continue
		}
		out = append(out, req)
	}
	writeList(s, w, r, out)
}

func (s *Server) getRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	i := s.requestIndex(models.ID(mux.Vars(r)["id"]))
	if i < 0 || (!isAdmin(a) && s.requests[i].User != a.user.ID) {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, s.requests[i])
}

func (s *Server) submitRequest(w http.ResponseWriter, r *http.Request) {
	var in models.Request
	if !decode(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	now := s.now().UTC()
	in.ID = s.nextID()
	in.User = a.user.ID
	in.UserName = a.user.FullName()
	in.Status = models.StatusPending
	in.Remarks, in.ReviewedBy, in.MeetingLink = "", "", ""
	in.CreatedAt, in.UpdatedAt = now, now
	s.requests = append(s.requests, in)
	writeJSON(w, http.StatusCreated, in)
}

func (s *Server) reviewRequest(w http.ResponseWriter, r *http.Request) {
	var rv models.Review
	if !decode(w, r, &rv) {
		return
	}
	if err := rv.Validate(); err != nil {
		writeInvalid(w, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	if !isAdmin(a) {
		forbid(w)
		return
	}
	i := s.requestIndex(models.ID(mux.Vars(r)["id"]))
	if i < 0 {
		notFound(w)
		return
	}
	req := &s.requests[i]
	if req.Status != models.StatusPending {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"status": {"Only pending requests can be reviewed."}})
		return
	}
	req.Status = rv.Status
	req.Remarks = rv.Remarks
	req.MeetingLink = rv.MeetingLink
	req.ReviewedBy = a.user.FullName()
	req.UpdatedAt = s.now().UTC()
	s.notify(req.User, models.Notification{
		Title:   fmt.Sprintf("Your %s request was %s", req.Kind, req.Status),
		Message: req.Remarks,
		Kind:    "request",
	})
	writeJSON(w, http.StatusOK, *req)
}

func (s *Server) cancelRequest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	i := s.requestIndex(models.ID(mux.Vars(r)["id"]))
	if i < 0 || (!isAdmin(a) && s.requests[i].User != a.user.ID) {
		notFound(w)
		return
	}
	if !isAdmin(a) && s.requests[i].Status != models.StatusPending {
		writeJSON(w, http.StatusBadRequest, map[string][]string{"non_field_errors": {"Only pending requests can be cancelled."}})
		return
	}
	s.requests = slices.Delete(s.requests, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}

// notificationIndex finds id among the caller's notifications. s.mu must be held.
func (s *Server) notificationIndex(r *http.Request) int {
	a := s.caller(r)
	id := models.ID(mux.Vars(r)["id"])
	return slices.IndexFunc(s.notifications, func(o owned) bool { return o.n.ID == id && o.owner == a.user.ID })
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	var out []models.Notification
	for _, o := range s.notifications {
		if o.owner == a.user.ID {
			out = append(out, o.n)
		}
	}
	writeList(s, w, r, out)
}

func (s *Server) readNotification(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Read *bool `json:"read"`
	}
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.notificationIndex(r)
	if i < 0 {
		notFound(w)
		return
	}
	if in.Read != nil {
		s.notifications[i].n.Read = *in.Read
	}
	writeJSON(w, http.StatusOK, s.notifications[i].n)
}

func (s *Server) readAllNotifications(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.caller(r)
	for i := range s.notifications {
		if s.notifications[i].owner == a.user.ID {
			s.notifications[i].n.Read = true
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteNotification(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.notificationIndex(r)
	if i < 0 {
		notFound(w)
		return
	}
	s.notifications = slices.Delete(s.notifications, i, i+1)
	w.WriteHeader(http.StatusNoContent)
}
