package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harrylevesque/campusclinic/internal/api"
	"github.com/harrylevesque/campusclinic/internal/dashboard"
	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/nav"
	"github.com/harrylevesque/campusclinic/internal/render"
	"github.com/harrylevesque/campusclinic/internal/session"
)

// EnvPassword supplies the login password without a prompt.
const EnvPassword = "CLINIC_PASSWORD"

func (a *app) loginCmd() *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session on this device",
		Long: `Sign in with your clinic username and password.

The password is read from --password, $CLINIC_PASSWORD, or standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if username == "" {
				if username, err = a.prompt(cmd, "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				password = os.Getenv(EnvPassword)
			}
			if password == "" {
				if password, err = a.prompt(cmd, "Password: "); err != nil {
					return err
				}
			}

			res, err := a.client.Auth.Login(cmd.Context(), strings.TrimSpace(username), password)
			if errors.Is(err, api.ErrUnauthorized) {
				return userError("Invalid username or password.")
			}
			if err != nil {
				return err
			}
			a.sess = session.FromLogin(res)
			if err := a.store.Save(a.sess); err != nil {
				return err
			}
			a.logger.Info("logged in", zap.String("username", res.Username), zap.String("role", string(res.Role)))

			home := nav.Home(a.sess)
			if home == nav.Login {
				a.printer.Line("Signed in, but role %q has no screens in this client.", res.Role)
				return nil
			}
			return a.printer.Emit(whoami(a.sess), func() (string, error) {
				return fmt.Sprintf("Welcome, %s! You are signed in as %s.\nRun \"clinic home\" for your dashboard.", res.FirstName, res.Role), nil
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	return gate(cmd, nav.Login, nav.Manage)
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.sess.LoggedIn() {
				if err := a.client.Auth.Logout(cmd.Context()); err != nil {
					a.logger.Warn("backend logout failed; clearing local session anyway", zap.Error(err))
				}
			}
			if err := a.store.Clear(); err != nil {
				return err
			}
			a.sess = session.Session{}
			a.printer.Line("Logged out.")
			return nil
		},
	}
}

func (a *app) registerCmd() *cobra.Command {
	var reg models.Registration
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a student or staff account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg.Role = models.Role(role)
			if reg.Password == "" {
				var err error
				if reg.Password, err = a.prompt(cmd, "Password: "); err != nil {
					return err
				}
			}
			u, err := a.client.Auth.Register(cmd.Context(), reg)
			if err != nil {
				return err
			}
			return a.printer.Emit(u, func() (string, error) {
				return fmt.Sprintf("Account %s created. Run \"clinic login -u %s\" to sign in.", u.Username, u.Username), nil
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&reg.Username, "username", "u", "", "username")
	f.StringVarP(&reg.Password, "password", "p", "", "password (prompted when empty)")
	f.StringVar(&reg.Email, "email", "", "email address")
	f.StringVar(&reg.FirstName, "first-name", "", "first name")
	f.StringVar(&reg.LastName, "last-name", "", "last name")
	f.StringVar(&role, "role", string(models.RoleStudent), "student or staff")
	f.StringVar(&reg.StudentNumber, "student-number", "", "student number")
	f.StringVar(&reg.Department, "department", "", "college or office")
	return gate(cmd, nav.Register, nav.Manage)
}

type sessionView struct {
	ID             models.ID   `json:"id"`
	Username       string      `json:"username"`
	FirstName      string      `json:"first_name"`
	Role           models.Role `json:"role"`
	ProfilePicture string      `json:"profile_picture,omitempty"`
	Home           nav.Route   `json:"home"`
}

// whoami is the session without its token.
func whoami(s session.Session) sessionView {
	return sessionView{
		ID:             s.UserID,
		Username:       s.Username,
		FirstName:      s.FirstName,
		Role:           s.Role,
		ProfilePicture: s.ProfilePicture,
		Home:           nav.Home(s),
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := whoami(a.sess)
			return a.printer.Emit(v, func() (string, error) {
				return render.Fields(
					[2]string{"User", v.Username},
					[2]string{"Name", v.FirstName},
					[2]string{"Role", string(v.Role)},
					[2]string{"ID", v.ID.String()},
					[2]string{"Picture", v.ProfilePicture},
				), nil
			})
		},
	}
	return gate(cmd, nav.Profile, nav.Read)
}

func (a *app) menuCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "List the screens available to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !a.sess.LoggedIn() {
				return nav.ErrNotLoggedIn
			}
			entries := nav.Menu(a.sess.Role)
			return a.printer.Emit(entries, func() (string, error) {
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{e.Title, string(e.Route)})
				}
				return render.Table([]string{"SCREEN", "ROUTE"}, rows, "No screens for this role."), nil
			})
		},
	}
}

func (a *app) homeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "home",
		Short: "Show the dashboard for your role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts := dashboard.Options{
				LowStockThreshold: a.cfg.Display.LowStockThreshold,
				ExpiryWindow:      a.cfg.GetExpiryWindow(),
				Now:               a.now,
			}
			switch nav.Home(a.sess) {
			case nav.AdminDashboard:
				d, err := dashboard.LoadAdmin(cmd.Context(), a.client, opts)
				if err != nil {
					return err
				}
				return a.printer.Emit(d, func() (string, error) { return adminDashboard(a.sess, d), nil })
			case nav.StudentDashboard:
				d, err := dashboard.LoadStudent(cmd.Context(), a.client, opts)
				if err != nil {
					return err
				}
				return a.printer.Emit(d, func() (string, error) { return studentDashboard(a.sess, d), nil })
			}
			return nav.ErrNotLoggedIn
		},
	}
}
