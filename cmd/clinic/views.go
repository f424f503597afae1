package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/harrylevesque/campusclinic/internal/dashboard"
	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/render"
	"github.com/harrylevesque/campusclinic/internal/session"
)

func adminDashboard(s session.Session, d dashboard.Admin) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", render.Title("Clinic dashboard, "+s.FirstName))

	var byStatus []render.Bar
	for _, st := range models.RequestStatuses {
		byStatus = append(byStatus, render.Bar{Label: string(st), Value: d.RequestsByStatus[st]})
	}
	b.WriteString(render.BarChart("Requests by status", byStatus, 30))
	b.WriteString("\n")
	var byKind []render.Bar
	for _, k := range models.RequestKinds {
		byKind = append(byKind, render.Bar{Label: string(k), Value: d.RequestsByKind[k]})
	}
	b.WriteString(render.BarChart("Requests by kind", byKind, 30))
	b.WriteString("\n")

	b.WriteString(render.Title(fmt.Sprintf("Stock alerts (%d low, %d expiring)", len(d.LowStock), len(d.Expiring))))
	b.WriteString("\n")
	alerts := append(append([]models.StockItem(nil), d.LowStock...), d.Expiring...)
	b.WriteString(stockTable(dedupeStock(alerts), time.Now()))
	b.WriteString("\n\n")

	b.WriteString(render.Title("Upcoming events"))
	b.WriteString("\n")
	b.WriteString(eventTable(d.UpcomingEvents))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Unread notifications: %d", d.Unread)
	return b.String()
}

func dedupeStock(items []models.StockItem) []models.StockItem {
	seen := make(map[models.ID]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it.ID] {
			continue
		}
		seen[it.ID] = true
		out = append(out, it)
	}
	return out
}

func studentDashboard(s session.Session, d dashboard.Student) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", render.Title("Welcome back, "+s.FirstName))

	fmt.Fprintf(&b, "Requests: %d pending, %d approved, %d declined\n",
		d.RequestsByStatus[models.StatusPending],
		d.RequestsByStatus[models.StatusApproved],
		d.RequestsByStatus[models.StatusDeclined])
	if r := d.NextAppointment; r != nil {
		fmt.Fprintf(&b, "Next %s: %s", r.Kind, r.PreferredDate)
		if r.MeetingLink != "" {
			fmt.Fprintf(&b, " (%s)", r.MeetingLink)
		}
		b.WriteString("\n")
	} else {
		b.WriteString(render.Muted("No upcoming appointments."))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Unread notifications: %d\n\n", d.Unread)

	b.WriteString(render.Title("Latest announcements"))
	b.WriteString("\n")
	b.WriteString(announcementTable(d.Announcements))
	b.WriteString("\n\n")
	b.WriteString(render.Title("Upcoming events"))
	b.WriteString("\n")
	b.WriteString(eventTable(d.UpcomingEvents))
	return b.String()
}

func announcementTable(items []models.Announcement) string {
	rows := make([][]string, 0, len(items))
	for _, a := range items {
		rows = append(rows, []string{a.ID.String(), truncate(a.Title, 40), a.Author, fmtTime(a.CreatedAt)})
	}
	return render.Table([]string{"ID", "TITLE", "AUTHOR", "POSTED"}, rows, "No announcements.")
}

func eventTable(items []models.Event) string {
	rows := make([][]string, 0, len(items))
	for _, e := range items {
		rows = append(rows, []string{e.ID.String(), truncate(e.Title, 40), fmtTime(e.StartAt), fmtTime(e.EndAt), e.Location})
	}
	return render.Table([]string{"ID", "TITLE", "START", "END", "LOCATION"}, rows, "No events.")
}

func stockTable(items []models.StockItem, now time.Time) string {
	rows := make([][]string, 0, len(items))
	for _, s := range items {
		expiry := s.ExpirationDate.String()
		if s.Expired(now) {
			expiry += " " + render.Badge("expired")
		}
		rows = append(rows, []string{
			s.ID.String(), s.Name, string(s.Category),
			strconv.Itoa(s.Quantity) + " " + s.Unit, expiry,
		})
	}
	return render.Table([]string{"ID", "NAME", "CATEGORY", "QUANTITY", "EXPIRES"}, rows, "No stock items.")
}

// requestWhen is the date column of a request: the preferred date, or the
// leave range.
func requestWhen(r models.Request) string {
	if r.Kind == models.KindLeave {
		return r.StartDate.String() + " to " + r.EndDate.String()
	}
	return r.PreferredDate.String()
}

func requestTable(items []models.Request, withUser bool) string {
	headers := []string{"ID", "KIND", "STATUS", "WHEN", "REASON", "FILED"}
	if withUser {
		headers = append(headers[:1], append([]string{"USER"}, headers[1:]...)...)
	}
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		row := []string{r.ID.String(), string(r.Kind), render.Badge(string(r.Status)), requestWhen(r), truncate(r.Reason, 30), fmtDay(r.CreatedAt)}
		if withUser {
			who := r.UserName
			if who == "" {
				who = r.User.String()
			}
			row = append(row[:1], append([]string{who}, row[1:]...)...)
		}
		rows = append(rows, row)
	}
	return render.Table(headers, rows, "No requests.")
}

func scheduleTable(items []models.Request) string {
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		who := r.UserName
		if who == "" {
			who = r.User.String()
		}
		rows = append(rows, []string{r.PreferredDate.String(), string(r.Kind), who, truncate(r.Reason, 30), r.MeetingLink})
	}
	return render.Table([]string{"DATE", "KIND", "PATIENT", "REASON", "LINK"}, rows, "Nothing scheduled.")
}

func notificationTable(items []models.Notification) string {
	rows := make([][]string, 0, len(items))
	for _, n := range items {
		state := "read"
		if !n.Read {
			state = "unread"
		}
		rows = append(rows, []string{n.ID.String(), render.Badge(state), truncate(n.Title, 40), truncate(n.Message, 40), fmtTime(n.CreatedAt)})
	}
	return render.Table([]string{"ID", "", "TITLE", "MESSAGE", "RECEIVED"}, rows, "No notifications.")
}

func userTable(items []models.User) string {
	rows := make([][]string, 0, len(items))
	for _, u := range items {
		active := "yes"
		if !u.IsActive {
			active = "no"
		}
		rows = append(rows, []string{u.ID.String(), u.Username, u.LastName + ", " + u.FirstName, string(u.Role), u.Department, active})
	}
	return render.Table([]string{"ID", "USERNAME", "NAME", "ROLE", "DEPARTMENT", "ACTIVE"}, rows, "No users.")
}

func userFields(u models.User) string {
	return render.Fields(
		[2]string{"ID", u.ID.String()},
		[2]string{"Username", u.Username},
		[2]string{"Name", u.FullName()},
		[2]string{"Email", u.Email},
		[2]string{"Role", string(u.Role)},
		[2]string{"Student no.", u.StudentNumber},
		[2]string{"Department", u.Department},
		[2]string{"Contact", u.ContactNumber},
		[2]string{"Picture", u.ProfilePicture},
		[2]string{"Active", strconv.FormatBool(u.IsActive)},
		[2]string{"Joined", fmtDay(u.DateJoined)},
	)
}

func num(v float64, unit string) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64) + " " + unit
}

func recordView(rec models.MedicalRecord) string {
	p := rec.Profile
	var b strings.Builder
	b.WriteString(render.Title("Medical profile"))
	b.WriteString("\n")
	b.WriteString(render.Fields(
		[2]string{"Blood type", p.BloodType},
		[2]string{"Height", num(p.HeightCM, "cm")},
		[2]string{"Weight", num(p.WeightKG, "kg")},
		[2]string{"Allergies", p.Allergies},
		[2]string{"Conditions", p.Conditions},
		[2]string{"Medications", p.Medications},
		[2]string{"Emergency", strings.TrimSpace(p.EmergencyContactName + " " + p.EmergencyContactNumber)},
	))
	b.WriteString("\n")

	b.WriteString(render.Title("Assessments"))
	b.WriteString("\n")
	rows := make([][]string, 0, len(rec.Assessments))
	for _, a := range rec.Assessments {
		rows = append(rows, []string{a.ID.String(), a.Date.String(), truncate(a.ChiefComplaint, 30), truncate(a.Diagnosis, 30), a.Vitals.BloodPressure, a.AssessedBy})
	}
	b.WriteString(render.Table([]string{"ID", "DATE", "COMPLAINT", "DIAGNOSIS", "BP", "BY"}, rows, "No assessments."))
	b.WriteString("\n\n")

	b.WriteString(render.Title("Immunizations"))
	b.WriteString("\n")
	rows = rows[:0]
	for _, i := range rec.Immunizations {
		rows = append(rows, []string{i.ID.String(), i.Vaccine, i.Dose, i.DateAdministered.String(), i.NextDue.String()})
	}
	b.WriteString(render.Table([]string{"ID", "VACCINE", "DOSE", "GIVEN", "NEXT DUE"}, rows, "No immunizations."))
	return b.String()
}
