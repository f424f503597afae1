package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/campusclinic/internal/api"
	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/nav"
	"github.com/harrylevesque/campusclinic/internal/screen"
)

func (a *app) requestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "requests",
		Aliases: []string{"request", "req"},
		Short:   "Appointment, leave, record and telehealth requests",
	}

	var status, kind, user string
	list := &cobra.Command{
		Use:   "list",
		Short: "List requests, pending first",
		Long: `List requests, pending first. Students and staff see their own;
admins see everyone's and may filter with --user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := screen.Requests(a.client, api.RequestFilter{
				Status: models.RequestStatus(status),
				Kind:   models.RequestKind(kind),
				User:   models.ID(user),
			})
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			items := l.Items()
			admin := a.sess.Role == models.RoleAdmin
			return a.printer.Emit(items, func() (string, error) { return requestTable(items, admin), nil })
		},
	}
	list.Flags().StringVar(&status, "status", "", "pending, approved or declined")
	list.Flags().StringVar(&kind, "kind", "", "appointment, leave, record or telehealth")
	list.Flags().StringVar(&user, "user", "", "only this user's requests (admin)")

	var in models.Request
	var preferred, start, end string
	submit := &cobra.Command{
		Use:   "submit <kind>",
		Short: "File a request: appointment, leave, record or telehealth",
		Example: `  clinic requests submit appointment --date 2026-11-03 --reason "Follow-up"
  clinic requests submit leave --start 2026-11-03 --end 2026-11-05 --reason "Fever"
  clinic requests submit record --reason "Medical certificate for OJT"`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"appointment", "leave", "record", "telehealth"},
		RunE: func(cmd *cobra.Command, args []string) error {
			r := in
			r.Kind = models.RequestKind(args[0])
			var err error
			if r.PreferredDate, err = parseDate("date", preferred); err != nil {
				return err
			}
			if r.StartDate, err = parseDate("start", start); err != nil {
				return err
			}
			if r.EndDate, err = parseDate("end", end); err != nil {
				return err
			}
			r, err = a.client.Requests.Submit(cmd.Context(), r)
			if err != nil {
				return err
			}
			return a.printer.Emit(r, func() (string, error) {
				return fmt.Sprintf("Submitted %s request %s. Status: %s.", r.Kind, r.ID, r.Status), nil
			})
		},
	}
	submit.Flags().StringVar(&in.Reason, "reason", "", "why you are filing the request")
	submit.Flags().StringVar(&preferred, "date", "", "preferred date for appointments and telehealth, YYYY-MM-DD")
	submit.Flags().StringVar(&start, "start", "", "first day of leave, YYYY-MM-DD")
	submit.Flags().StringVar(&end, "end", "", "last day of leave, YYYY-MM-DD")

	var remarks, link string
	review := func(status models.RequestStatus) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			r, err := a.client.Requests.Review(cmd.Context(), idArg(args), models.Review{
				Status:      status,
				Remarks:     remarks,
				MeetingLink: link,
			})
			if err != nil {
				return err
			}
			return a.printer.Emit(r, func() (string, error) {
				return fmt.Sprintf("Request %s %s.", r.ID, r.Status), nil
			})
		}
	}
	approve := &cobra.Command{
		Use:   "approve <id>",
		Short: "Approve a pending request",
		Args:  cobra.ExactArgs(1),
		RunE:  review(models.StatusApproved),
	}
	approve.Flags().StringVar(&remarks, "remarks", "", "note for the requester")
	approve.Flags().StringVar(&link, "link", "", "meeting link for telehealth")
	decline := &cobra.Command{
		Use:   "decline <id>",
		Short: "Decline a pending request",
		Args:  cobra.ExactArgs(1),
		RunE:  review(models.StatusDeclined),
	}
	decline.Flags().StringVar(&remarks, "remarks", "", "reason for declining (required)")

	cancel := &cobra.Command{
		Use:   "cancel <id>",
		Short: "Withdraw one of your pending requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Requests.Cancel(cmd.Context(), idArg(args)); err != nil {
				return err
			}
			a.printer.Line("Cancelled request %s.", args[0])
			return nil
		},
	}

	cmd.AddCommand(
		gate(list, nav.Requests, nav.Read),
		gate(submit, nav.Requests, nav.Manage),
		gate(approve, nav.Reviews, nav.Manage),
		gate(decline, nav.Reviews, nav.Manage),
		gate(cancel, nav.Requests, nav.Manage),
	)
	return cmd
}

func (a *app) scheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Approved appointments and telehealth sessions by date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := screen.Schedule(a.client)
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			items := l.Items()
			return a.printer.Emit(items, func() (string, error) { return scheduleTable(items), nil })
		},
	}
	return gate(cmd, nav.Schedule, nav.Read)
}
