package screen

import (
	"cmp"
	"context"
	"strings"
	"time"

	"github.com/harrylevesque/campusclinic/internal/api"
	"github.com/harrylevesque/campusclinic/internal/models"
)

// newerFirst orders by t descending, then by id so ties are stable.
func newerFirst(a, b time.Time, ida, idb models.ID) int {
	if c := b.Compare(a); c != 0 {
		return c
	}
	return cmp.Compare(ida, idb)
}

func announcementOrder(a, b models.Announcement) int {
	return newerFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
}

func Announcements(c *api.Client) *List[models.Announcement] {
	return NewList(c.Announcements.List,
		func(a models.Announcement) models.ID { return a.ID },
		announcementOrder)
}

// eventOrder puts events that have not ended yet first, soonest first, and
// past events after them, most recent first.
func eventOrder(now func() time.Time) func(a, b models.Event) int {
	return func(a, b models.Event) int {
		t := now()
		ua, ub := a.Upcoming(t), b.Upcoming(t)
		switch {
		case ua && !ub:
			return -1
		case !ua && ub:
			return 1
		case ua:
			return cmp.Or(a.StartAt.Compare(b.StartAt), cmp.Compare(a.ID, b.ID))
		}
		return newerFirst(a.StartAt, b.StartAt, a.ID, b.ID)
	}
}

// EventList is the events screen.
type EventList struct {
	*List[models.Event]
	now func() time.Time
}

func Events(c *api.Client, now func() time.Time) *EventList {
	return &EventList{
		List: NewList(c.Events.List, func(e models.Event) models.ID { return e.ID }, eventOrder(now)),
		now:  now,
	}
}

// Upcoming returns at most n events that have not ended, soonest first. n <= 0
// means all of them.
func (l *EventList) Upcoming(n int) []models.Event {
	t := l.now()
	out := l.Filter(func(e models.Event) bool { return e.Upcoming(t) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func stockOrder(a, b models.StockItem) int {
	return cmp.Or(
		cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)),
		cmp.Compare(a.ID, b.ID),
	)
}

// StockList is the inventory screen.
type StockList struct {
	*List[models.StockItem]
}

func Stock(c *api.Client) *StockList {
	return &StockList{NewList(c.Stock.List, func(s models.StockItem) models.ID { return s.ID }, stockOrder)}
}

// LowStock returns items with at most threshold units left.
func (l *StockList) LowStock(threshold int) []models.StockItem {
	return l.Filter(func(s models.StockItem) bool { return s.Quantity <= threshold })
}

// Expiring returns items that expire within window of now, expired ones included.
func (l *StockList) Expiring(now time.Time, window time.Duration) []models.StockItem {
	return l.Filter(func(s models.StockItem) bool { return s.ExpiresWithin(now, window) })
}

func requestOrder(a, b models.Request) int {
	pa, pb := a.Status == models.StatusPending, b.Status == models.StatusPending
	switch {
	case pa && !pb:
		return -1
	case !pa && pb:
		return 1
	}
	return newerFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
}

func requestID(r models.Request) models.ID { return r.ID }

func Requests(c *api.Client, f api.RequestFilter) *List[models.Request] {
	return NewList(func(ctx context.Context) ([]models.Request, error) {
		return c.Requests.List(ctx, f)
	}, requestID, requestOrder)
}

func scheduleOrder(a, b models.Request) int {
	return cmp.Or(a.PreferredDate.Compare(b.PreferredDate.Time), cmp.Compare(a.ID, b.ID))
}

// Schedule lists approved appointments and telehealth sessions by date. For
// admins that is the whole clinic calendar.
func Schedule(c *api.Client) *List[models.Request] {
	return NewList(func(ctx context.Context) ([]models.Request, error) {
		rs, err := c.Requests.List(ctx, api.RequestFilter{Status: models.StatusApproved})
		if err != nil {
			return nil, err
		}
		out := rs[:0]
		for _, r := range rs {
			if r.Scheduled() {
				out = append(out, r)
			}
		}
		return out, nil
	}, requestID, scheduleOrder)
}

func notificationOrder(a, b models.Notification) int {
	switch {
	case !a.Read && b.Read:
		return -1
	case a.Read && !b.Read:
		return 1
	}
	return newerFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
}

type NotificationList struct {
	*List[models.Notification]
}

func Notifications(c *api.Client) *NotificationList {
	return &NotificationList{NewList(c.Notifications.List,
		func(n models.Notification) models.ID { return n.ID },
		notificationOrder)}
}

func (l *NotificationList) UnreadCount() int {
	return len(l.Filter(func(n models.Notification) bool { return !n.Read }))
}

func userOrder(a, b models.User) int {
	return cmp.Or(
		cmp.Compare(strings.ToLower(a.LastName), strings.ToLower(b.LastName)),
		cmp.Compare(strings.ToLower(a.FirstName), strings.ToLower(b.FirstName)),
		cmp.Compare(a.ID, b.ID),
	)
}

func Users(c *api.Client, f api.UserFilter) *List[models.User] {
	return NewList(func(ctx context.Context) ([]models.User, error) {
		return c.Users.List(ctx, f)
	}, func(u models.User) models.ID { return u.ID }, userOrder)
}
