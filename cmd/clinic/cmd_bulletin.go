package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/nav"
	"github.com/harrylevesque/campusclinic/internal/render"
	"github.com/harrylevesque/campusclinic/internal/screen"
)

func (a *app) announcementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "announcements",
		Aliases: []string{"announcement", "ann"},
		Short:   "Clinic announcements",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List announcements, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := screen.Announcements(a.client)
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			items := l.Items()
			return a.printer.Emit(items, func() (string, error) { return announcementTable(items), nil })
		},
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ann, err := a.client.Announcements.Get(cmd.Context(), idArg(args))
			if err != nil {
				return err
			}
			return a.printer.Emit(ann, func() (string, error) {
				body, err := a.printer.Markdown(ann.Body)
				if err != nil {
					return "", err
				}
				var b strings.Builder
				b.WriteString(render.Title(ann.Title))
				b.WriteString("\n")
				b.WriteString(render.Muted(fmt.Sprintf("%s, %s", ann.Author, fmtTime(ann.CreatedAt))))
				b.WriteString("\n")
				if ann.ImageURL != "" {
					b.WriteString(render.Muted("Image: " + ann.ImageURL))
					b.WriteString("\n")
				}
				b.WriteString(body)
				return b.String(), nil
			})
		},
	}

	var in models.Announcement
	var bodyFile string
	addFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&in.Title, "title", "", "title")
		c.Flags().StringVar(&in.Body, "body", "", "body (markdown)")
		c.Flags().StringVar(&bodyFile, "body-file", "", "read the body from a file, - for stdin")
		c.Flags().StringVar(&in.ImageURL, "image-url", "", "image URL")
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Post an announcement",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := bodyFrom(cmd, in.Body, bodyFile)
			if err != nil {
				return err
			}
			in.Body = body
			ann, err := a.client.Announcements.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printer.Emit(ann, func() (string, error) {
				return fmt.Sprintf("Posted announcement %s.", ann.ID), nil
			})
		},
	}
	addFlags(create)

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ann, err := a.client.Announcements.Get(cmd.Context(), idArg(args))
			if err != nil {
				return err
			}
			if changed(cmd, "title") {
				ann.Title = in.Title
			}
			if changed(cmd, "body") || bodyFile != "" {
				if ann.Body, err = bodyFrom(cmd, in.Body, bodyFile); err != nil {
					return err
				}
			}
			if changed(cmd, "image-url") {
				ann.ImageURL = in.ImageURL
			}
			ann, err = a.client.Announcements.Update(cmd.Context(), ann.ID, ann)
			if err != nil {
				return err
			}
			return a.printer.Emit(ann, func() (string, error) {
				return fmt.Sprintf("Updated announcement %s.", ann.ID), nil
			})
		},
	}
	addFlags(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an announcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Announcements.Delete(cmd.Context(), idArg(args)); err != nil {
				return err
			}
			a.printer.Line("Deleted announcement %s.", args[0])
			return nil
		},
	}

	cmd.AddCommand(
		gate(list, nav.Announcements, nav.Read),
		gate(show, nav.Announcements, nav.Read),
		gate(create, nav.Announcements, nav.Manage),
		gate(update, nav.Announcements, nav.Manage),
		gate(del, nav.Announcements, nav.Manage),
	)
	return cmd
}

func (a *app) eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"event"},
		Short:   "Clinic events",
	}

	var upcoming bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List events, upcoming first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			l := screen.Events(a.client, a.now)
			if err := l.Refresh(cmd.Context()); err != nil {
				return err
			}
			items := l.Items()
			if upcoming {
				items = l.Upcoming(0)
			}
			return a.printer.Emit(items, func() (string, error) { return eventTable(items), nil })
		},
	}
	list.Flags().BoolVar(&upcoming, "upcoming", false, "hide events that have ended")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.client.Events.Get(cmd.Context(), idArg(args))
			if err != nil {
				return err
			}
			return a.printer.Emit(e, func() (string, error) {
				desc, err := a.printer.Markdown(e.Description)
				if err != nil {
					return "", err
				}
				return render.Title(e.Title) + "\n" + render.Fields(
					[2]string{"Starts", fmtTime(e.StartAt)},
					[2]string{"Ends", fmtTime(e.EndAt)},
					[2]string{"Where", e.Location},
					[2]string{"By", e.CreatedBy},
				) + desc, nil
			})
		},
	}

	var in models.Event
	var start, end string
	addFlags := func(c *cobra.Command) {
		c.Flags().StringVar(&in.Title, "title", "", "title")
		c.Flags().StringVar(&in.Description, "description", "", "description (markdown)")
		c.Flags().StringVar(&in.Location, "location", "", "where it happens")
		c.Flags().StringVar(&start, "start", "", "start, YYYY-MM-DD HH:MM")
		c.Flags().StringVar(&end, "end", "", "end, YYYY-MM-DD HH:MM")
	}
	// times applies --start and --end to e when they were given.
	times := func(cmd *cobra.Command, e *models.Event) error {
		var err error
		if changed(cmd, "start") {
			if e.StartAt, err = parseTime("start", start); err != nil {
				return err
			}
		}
		if changed(cmd, "end") {
			if e.EndAt, err = parseTime("end", end); err != nil {
				return err
			}
		}
		return nil
	}

	create := &cobra.Command{
		Use:   "create",
		Short: "Schedule an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := in
			if err := times(cmd, &e); err != nil {
				return err
			}
			e, err := a.client.Events.Create(cmd.Context(), e)
			if err != nil {
				return err
			}
			return a.printer.Emit(e, func() (string, error) {
				return fmt.Sprintf("Created event %s on %s.", e.ID, fmtTime(e.StartAt)), nil
			})
		},
	}
	addFlags(create)

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.client.Events.Get(cmd.Context(), idArg(args))
			if err != nil {
				return err
			}
			if changed(cmd, "title") {
				e.Title = in.Title
			}
			if changed(cmd, "description") {
				e.Description = in.Description
			}
			if changed(cmd, "location") {
				e.Location = in.Location
			}
			if err := times(cmd, &e); err != nil {
				return err
			}
			e, err = a.client.Events.Update(cmd.Context(), e.ID, e)
			if err != nil {
				return err
			}
			return a.printer.Emit(e, func() (string, error) {
				return fmt.Sprintf("Updated event %s.", e.ID), nil
			})
		},
	}
	addFlags(update)

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Events.Delete(cmd.Context(), idArg(args)); err != nil {
				return err
			}
			a.printer.Line("Deleted event %s.", args[0])
			return nil
		},
	}

	cmd.AddCommand(
		gate(list, nav.Events, nav.Read),
		gate(show, nav.Events, nav.Read),
		gate(create, nav.Events, nav.Manage),
		gate(update, nav.Events, nav.Manage),
		gate(del, nav.Events, nav.Manage),
	)
	return cmd
}
