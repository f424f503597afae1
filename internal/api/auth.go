package api

import (
	"context"
	"net/http"

	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/validate"
)

type AuthService struct {
	c *Client
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (cr credentials) Validate() error {
	var c validate.Checker
	c.Required("username", cr.Username)
	c.Required("password", cr.Password)
	return c.Err()
}

// Login exchanges credentials for an access token and the fields the session
// keeps. It never sends the stored token.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.LoginResult, error) {
	var out models.LoginResult
	err := s.c.do(ctx, call{
		method:    http.MethodPost,
		path:      "/api/auth/login",
		body:      credentials{Username: username, Password: password},
		out:       &out,
		anonymous: true,
	})
	if err != nil {
		return models.LoginResult{}, err
	}
	if out.Access == "" {
		return models.LoginResult{}, &Error{Kind: KindServer, Status: http.StatusOK, Message: "login response carried no access token"}
	}
	return out, nil
}

// Register creates a student or staff account.
func (s *AuthService) Register(ctx context.Context, r models.Registration) (models.User, error) {
	var out models.User
	err := s.c.do(ctx, call{method: http.MethodPost, path: "/api/auth/register", body: r, out: &out, anonymous: true})
	return out, err
}

// Logout revokes the current token on the backend.
func (s *AuthService) Logout(ctx context.Context) error {
	return s.c.do(ctx, call{method: http.MethodPost, path: "/api/auth/logout"})
}

type passwordChange struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (p passwordChange) Validate() error {
	var c validate.Checker
	c.Required("old_password", p.OldPassword)
	c.Required("new_password", p.NewPassword)
	c.Check(p.NewPassword == "" || len(p.NewPassword) >= 8, "new_password", "Password must be at least 8 characters.")
	c.Check(p.NewPassword == "" || p.NewPassword != p.OldPassword, "new_password", "New password must differ from the old one.")
	return c.Err()
}

func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	return s.c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/auth/change-password",
		body:   passwordChange{OldPassword: oldPassword, NewPassword: newPassword},
	})
}
