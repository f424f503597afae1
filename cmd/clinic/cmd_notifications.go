package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/nav"
	"github.com/harrylevesque/campusclinic/internal/screen"
)

func (a *app) notificationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "notifications",
		Aliases: []string{"inbox"},
		Short:   "Your notifications, unread first",
	}

	inbox := func(cmd *cobra.Command) (*screen.NotificationList, error) {
		l := screen.Notifications(a.client)
		return l, l.Refresh(cmd.Context())
	}

	var unread bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := screen.Notifications(a.client)
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			items := l.Items()
			if unread {
				items = l.Filter(func(n models.Notification) bool { return !n.Read })
			}
			return a.printer.Emit(items, func() (string, error) { return notificationTable(items), nil })
		},
	}
	list.Flags().BoolVar(&unread, "unread", false, "only unread notifications")

	read := &cobra.Command{
		Use:   "read <id>",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := inbox(cmd)
			if err != nil {
				return err
			}
			id := idArg(args)
			if _, ok := l.Find(id); !ok {
				return userError(fmt.Sprintf("You have no notification %s.", id))
			}
			n, err := l.Submit(cmd.Context(), func(ctx context.Context) (models.Notification, error) {
				return a.client.Notifications.MarkRead(ctx, id)
			})
			if err != nil {
				return err
			}
			return a.printer.Emit(n, func() (string, error) {
				return fmt.Sprintf("Marked as read: %s\n%d unread left.", n.Title, l.UnreadCount()), nil
			})
		},
	}

	readAll := &cobra.Command{
		Use:   "read-all",
		Short: "Mark every notification as read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Notifications.MarkAllRead(cmd.Context()); err != nil {
				return err
			}
			a.printer.Line("All notifications marked as read.")
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a notification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := inbox(cmd)
			if err != nil {
				return err
			}
			if err := l.Delete(cmd.Context(), idArg(args), a.client.Notifications.Delete); err != nil {
				return err
			}
			a.printer.Line("Deleted notification %s. %d unread left.", args[0], l.UnreadCount())
			return nil
		},
	}

	cmd.AddCommand(
		gate(list, nav.Notifications, nav.Read),
		gate(read, nav.Notifications, nav.Manage),
		gate(readAll, nav.Notifications, nav.Manage),
		gate(del, nav.Notifications, nav.Manage),
	)
	return cmd
}
