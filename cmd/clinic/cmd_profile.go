package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/nav"
	"github.com/harrylevesque/campusclinic/internal/session"
)

func (a *app) profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Your account details",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			u, err := a.client.Users.Get(cmd.Context(), a.sess.UserID)
			if err != nil {
				return err
			}
			return a.printer.Emit(u, func() (string, error) { return userFields(u), nil })
		},
	}

	var email, first, last, dept, contact string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change your name, email, department or contact number",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var p models.UserPatch
			for name, dst := range map[string]**string{
				"email": &p.Email, "first-name": &p.FirstName, "last-name": &p.LastName,
				"department": &p.Department, "contact": &p.ContactNumber,
			} {
				if changed(cmd, name) {
					v, _ := cmd.Flags().GetString(name)
					*dst = &v
				}
			}
			if p == (models.UserPatch{}) {
				return userError("Nothing to update. Pass at least one flag, e.g. --contact.")
			}
			u, err := a.client.Users.Update(cmd.Context(), a.sess.UserID, p)
			if err != nil {
				return err
			}
			if u.FirstName != a.sess.FirstName {
				a.remember(func(s *session.Session) { s.FirstName = u.FirstName })
			}
			return a.printer.Emit(u, func() (string, error) { return "Profile updated.\n" + userFields(u), nil })
		},
	}
	update.Flags().StringVar(&email, "email", "", "email address")
	update.Flags().StringVar(&first, "first-name", "", "first name")
	update.Flags().StringVar(&last, "last-name", "", "last name")
	update.Flags().StringVar(&dept, "department", "", "college or office")
	update.Flags().StringVar(&contact, "contact", "", "contact number")

	picture := &cobra.Command{
		Use:   "picture <file>",
		Short: "Upload a new profile picture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open picture: %w", err)
			}
			defer f.Close()
			u, err := a.client.Users.UploadPicture(cmd.Context(), a.sess.UserID, filepath.Base(f.Name()), f)
			if err != nil {
				return err
			}
			a.remember(func(s *session.Session) { s.ProfilePicture = u.ProfilePicture })
			return a.printer.Emit(u, func() (string, error) {
				return "Profile picture updated: " + u.ProfilePicture, nil
			})
		},
	}

	var oldPw, newPw string
	password := &cobra.Command{
		Use:   "password",
		Short: "Change your password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			if oldPw == "" {
				if oldPw, err = a.prompt(cmd, "Current password: "); err != nil {
					return err
				}
			}
			if newPw == "" {
				if newPw, err = a.prompt(cmd, "New password: "); err != nil {
					return err
				}
			}
			if err := a.client.Auth.ChangePassword(cmd.Context(), oldPw, newPw); err != nil {
				return err
			}
			a.printer.Line("Password changed.")
			return nil
		},
	}
	password.Flags().StringVar(&oldPw, "old", "", "current password (prompted when empty)")
	password.Flags().StringVar(&newPw, "new", "", "new password (prompted when empty)")

	cmd.AddCommand(
		gate(show, nav.Profile, nav.Read),
		gate(update, nav.Profile, nav.Manage),
		gate(picture, nav.Profile, nav.Manage),
		gate(password, nav.Profile, nav.Manage),
	)
	return cmd
}

// remember applies change to the stored session. Failures are logged only;
// the backend already has the new value.
func (a *app) remember(change func(*session.Session)) {
	change(&a.sess)
	if err := a.store.Save(a.sess); err != nil {
		a.logger.Warn("failed to update stored session", zap.Error(err))
	}
}
