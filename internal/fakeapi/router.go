package fakeapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

func (s *Server) router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/api/auth/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/register", s.register).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.authenticate)
	api.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost)
	api.HandleFunc("/auth/change-password", s.changePassword).Methods(http.MethodPost)

	api.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", s.updateUser).Methods(http.MethodPatch)
	api.HandleFunc("/users/{id}", s.deleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/picture", s.uploadPicture).Methods(http.MethodPost)
	api.HandleFunc("/users/{id}/medical-profile", s.getProfile).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/medical-profile", s.updateProfile).Methods(http.MethodPatch)

	mount(s, api, "/announcements", s.announcements)
	mount(s, api, "/events", s.events)
	mount(s, api, "/stock", s.stock)
	mount(s, api, "/assessments", s.assessments)
	mount(s, api, "/immunizations", s.immunizations)

	api.HandleFunc("/requests", s.listRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests", s.submitRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}", s.getRequest).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id}", s.reviewRequest).Methods(http.MethodPatch)
	api.HandleFunc("/requests/{id}", s.cancelRequest).Methods(http.MethodDelete)

	api.HandleFunc("/notifications", s.listNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/read-all", s.readAllNotifications).Methods(http.MethodPost)
	api.HandleFunc("/notifications/{id}", s.readNotification).Methods(http.MethodPatch)
	api.HandleFunc("/notifications/{id}", s.deleteNotification).Methods(http.MethodDelete)
	return r
}
