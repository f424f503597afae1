// Package dashboard builds the landing summaries for admins and for students
// and staff. Each summary fans out to several endpoints at once.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/harrylevesque/campusclinic/internal/api"
	"github.com/harrylevesque/campusclinic/internal/models"
	"github.com/harrylevesque/campusclinic/internal/screen"
)

// Options tune what counts as low, expiring and recent.
type Options struct {
	LowStockThreshold int
	ExpiryWindow      time.Duration
	// Limit caps the announcement and event previews.
	Limit int
	Now   func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Limit <= 0 {
		o.Limit = 3
	}
	if o.ExpiryWindow <= 0 {
		o.ExpiryWindow = 30 * 24 * time.Hour
	}
	return o
}

type Admin struct {
	RequestsByStatus map[models.RequestStatus]int
	RequestsByKind   map[models.RequestKind]int
	LowStock         []models.StockItem
	Expiring         []models.StockItem
	UpcomingEvents   []models.Event
	Unread           int
}

// Pending is the number of requests waiting for review.
func (a Admin) Pending() int { return a.RequestsByStatus[models.StatusPending] }

type Student struct {
	RequestsByStatus map[models.RequestStatus]int
	// NextAppointment is the earliest approved appointment or telehealth
	// session from today on, if any.
	NextAppointment *models.Request
	Announcements   []models.Announcement
	UpcomingEvents  []models.Event
	Unread          int
}

// LoadAdmin fetches the admin summary. The first failed call cancels the rest.
func LoadAdmin(ctx context.Context, c *api.Client, opts Options) (Admin, error) {
	opts = opts.withDefaults()
	requests := screen.Requests(c, api.RequestFilter{})
	stock := screen.Stock(c)
	events := screen.Events(c, opts.Now)
	notes := screen.Notifications(c)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return requests.Refresh(gctx) })
	g.Go(func() error { return stock.Refresh(gctx) })
	g.Go(func() error { return events.Refresh(gctx) })
	g.Go(func() error { return notes.Refresh(gctx) })
	if err := g.Wait(); err != nil {
		return Admin{}, err
	}

	out := Admin{
		RequestsByStatus: make(map[models.RequestStatus]int),
		RequestsByKind:   make(map[models.RequestKind]int),
		LowStock:         stock.LowStock(opts.LowStockThreshold),
		Expiring:         stock.Expiring(opts.Now(), opts.ExpiryWindow),
		UpcomingEvents:   events.Upcoming(opts.Limit),
		Unread:           notes.UnreadCount(),
	}
	for _, r := range requests.Items() {
		out.RequestsByStatus[r.Status]++
		out.RequestsByKind[r.Kind]++
	}
	return out, nil
}

// LoadStudent fetches the summary for a student or staff member. The backend
// scopes requests and notifications to the caller.
func LoadStudent(ctx context.Context, c *api.Client, opts Options) (Student, error) {
	opts = opts.withDefaults()
	requests := screen.Requests(c, api.RequestFilter{})
	announcements := screen.Announcements(c)
	events := screen.Events(c, opts.Now)
	notes := screen.Notifications(c)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return requests.Refresh(gctx) })
	g.Go(func() error { return announcements.Refresh(gctx) })
	g.Go(func() error { return events.Refresh(gctx) })
	g.Go(func() error { return notes.Refresh(gctx) })
	if err := g.Wait(); err != nil {
		return Student{}, err
	}

	out := Student{
		RequestsByStatus: make(map[models.RequestStatus]int),
		UpcomingEvents:   events.Upcoming(opts.Limit),
		Unread:           notes.UnreadCount(),
	}
	today := models.NewDate(opts.Now().Date())
	for _, r := range requests.Items() {
		out.RequestsByStatus[r.Status]++
		if !r.Scheduled() || r.PreferredDate.Before(today) {
			continue
		}
		if out.NextAppointment == nil || r.PreferredDate.Before(out.NextAppointment.PreferredDate) {
			next := r
			out.NextAppointment = &next
		}
	}
	ann := announcements.Items()
	if len(ann) > opts.Limit {
		ann = ann[:opts.Limit]
	}
	out.Announcements = ann
	return out, nil
}
