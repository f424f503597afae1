package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/campusclinic/internal/api"
	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/nav"
	"github.com/harrylevesque/campusclinic/internal/screen"
)

func (a *app) usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage clinic accounts",
	}

	var role, search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List accounts by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := models.Role(role)
			if r != "" && !r.Known() {
				return userError(fmt.Sprintf("--role: unknown role %q", role))
			}
			l := screen.Users(a.client, api.UserFilter{Role: r, Search: search})
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			items := l.Items()
			return a.printer.Emit(items, func() (string, error) { return userTable(items), nil })
		},
	}
	list.Flags().StringVar(&role, "role", "", "admin, student or staff")
	list.Flags().StringVar(&search, "search", "", "match username or name")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.client.Users.Get(cmd.Context(), idArg(args))
			if err != nil {
				return err
			}
			return a.printer.Emit(u, func() (string, error) { return userFields(u), nil })
		},
	}

	setActive := func(use, short string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id := idArg(args)
				if !active && id == a.sess.UserID {
					return userError("You cannot deactivate your own account.")
				}
				u, err := a.client.Users.Update(cmd.Context(), id, models.UserPatch{IsActive: &active})
				if err != nil {
					return err
				}
				return a.printer.Emit(u, func() (string, error) {
					state := "deactivated"
					if u.IsActive {
						state = "activated"
					}
					return fmt.Sprintf("%s (%s) %s.", u.FullName(), u.Username, state), nil
				})
			},
		}
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := idArg(args)
			if id == a.sess.UserID {
				return userError("You cannot delete your own account.")
			}
			if err := a.client.Users.Delete(cmd.Context(), id); err != nil {
				return err
			}
			a.printer.Line("Deleted user %s.", args[0])
			return nil
		},
	}

	cmd.AddCommand(
		gate(list, nav.Users, nav.Read),
		gate(show, nav.Users, nav.Read),
		gate(setActive("activate", "Re-enable an account", true), nav.Users, nav.Manage),
		gate(setActive("deactivate", "Disable an account without deleting it", false), nav.Users, nav.Manage),
		gate(del, nav.Users, nav.Manage),
	)
	return cmd
}
