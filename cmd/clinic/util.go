package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrylevesque/campusclinic/internal/models"
)

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

// parseTime reads a timestamp flag in local time unless it carries a zone.
func parseTime(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, l := range timeLayouts {
		if t, err := time.ParseInLocation(l, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, userError(fmt.Sprintf("--%s: %q is not a date or time (use YYYY-MM-DD or YYYY-MM-DD HH:MM)", name, s))
}

func parseDate(name, s string) (models.Date, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, userError(fmt.Sprintf("--%s: %q is not a date (use YYYY-MM-DD)", name, s))
	}
	return d, nil
}

// prompt writes label to stderr and reads one line from standard input.
func (a *app) prompt(cmd *cobra.Command, label string) (string, error) {
	if a.lines == nil {
		a.lines = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := a.lines.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// bodyFrom returns the inline text, or the contents of file when set. "-"
// reads standard input.
func bodyFrom(cmd *cobra.Command, inline, file string) (string, error) {
	switch file {
	case "":
		return inline, nil
	case "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", file, err)
	}
	return string(data), nil
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04")
}

func fmtDay(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02")
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func idArg(args []string) models.ID { return models.ID(args[0]) }

// changed reports whether flag name was set on the command line.
func changed(cmd *cobra.Command, name string) bool { return cmd.Flags().Changed(name) }
