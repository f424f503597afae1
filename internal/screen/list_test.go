package screen

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrylevesque/campusclinic/internal/models"
)

var day0 = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

func fetchOf[T any](items ...T) func(context.Context) ([]T, error) {
	return func(context.Context) ([]T, error) { return items, nil }
}

func ids[T any](items []T, id func(T) models.ID) []models.ID {
	out := make([]models.ID, 0, len(items))
	for _, it := range items {
		out = append(out, id(it))
	}
	return out
}

func announcementID(a models.Announcement) models.ID { return a.ID }

func TestRefreshKeepsItemsOnError(t *testing.T) {
	ctx := context.Background()
	fail := false
	boom := errors.New("boom")
	l := NewList(func(context.Context) ([]models.Announcement, error) {
		if fail {
			return nil, boom
		}
		return []models.Announcement{{ID: "1"}, {ID: "2"}}, nil
	}, announcementID, announcementOrder)

	require.NoError(t, l.Refresh(ctx))
	assert.Equal(t, 2, l.Len())
	assert.False(t, l.RefreshedAt().IsZero())

	fail = true
	require.ErrorIs(t, l.Refresh(ctx), boom)
	assert.ErrorIs(t, l.Err(), boom)
	assert.Equal(t, 2, l.Len())
}

func TestSubmitUpsertsAndDeleteRemoves(t *testing.T) {
	ctx := context.Background()
	l := NewList(fetchOf(
		models.Announcement{ID: "1", Title: "old", CreatedAt: day0},
		models.Announcement{ID: "2", Title: "other", CreatedAt: day0.Add(-time.Hour)},
	), announcementID, announcementOrder)
	require.NoError(t, l.Refresh(ctx))

	_, err := l.Submit(ctx, func(context.Context) (models.Announcement, error) {
		return models.Announcement{ID: "1", Title: "edited", CreatedAt: day0}, nil
	})
	require.NoError(t, err)
	got, ok := l.Find("1")
	require.True(t, ok)
	assert.Equal(t, "edited", got.Title)
	assert.Equal(t, 2, l.Len())

	_, err = l.Submit(ctx, func(context.Context) (models.Announcement, error) {
		return models.Announcement{ID: "3", Title: "new", CreatedAt: day0.Add(time.Hour)}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []models.ID{"3", "1", "2"}, ids(l.Items(), announcementID))

	require.NoError(t, l.Delete(ctx, "1", func(context.Context, models.ID) error { return nil }))
	assert.Equal(t, []models.ID{"3", "2"}, ids(l.Items(), announcementID))
}

func TestFailedSubmitLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	l := NewList(fetchOf(models.Announcement{ID: "1", Title: "keep"}), announcementID, announcementOrder)
	require.NoError(t, l.Refresh(ctx))
	boom := errors.New("rejected")

	_, err := l.Submit(ctx, func(context.Context) (models.Announcement, error) {
		return models.Announcement{ID: "1", Title: "lost"}, boom
	})
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, l.Delete(ctx, "1", func(context.Context, models.ID) error { return boom }), boom)

	assert.Equal(t, []models.Announcement{{ID: "1", Title: "keep"}}, l.Items())
}

func TestEventOrder(t *testing.T) {
	now := func() time.Time { return day0 }
	l := &EventList{
		List: NewList(fetchOf(
			models.Event{ID: "past-old", StartAt: day0.Add(-72 * time.Hour)},
			models.Event{ID: "later", StartAt: day0.Add(48 * time.Hour)},
			models.Event{ID: "past-recent", StartAt: day0.Add(-24 * time.Hour)},
			models.Event{ID: "running", StartAt: day0.Add(-time.Hour), EndAt: day0.Add(time.Hour)},
			models.Event{ID: "soon", StartAt: day0.Add(2 * time.Hour)},
		), func(e models.Event) models.ID { return e.ID }, eventOrder(now)),
		now: now,
	}
	require.NoError(t, l.Refresh(context.Background()))

	eventID := func(e models.Event) models.ID { return e.ID }
	assert.Equal(t, []models.ID{"running", "soon", "later", "past-recent", "past-old"}, ids(l.Items(), eventID))
	assert.Equal(t, []models.ID{"running", "soon"}, ids(l.Upcoming(2), eventID))
	assert.Len(t, l.Upcoming(0), 3)
}

func TestStockViews(t *testing.T) {
	soon := models.NewDate(2026, time.November, 1)
	past := models.NewDate(2026, time.October, 1)
	far := models.NewDate(2028, time.January, 1)
	l := &StockList{NewList(fetchOf(
		models.StockItem{ID: "1", Name: "gauze", Quantity: 40, ExpirationDate: far},
		models.StockItem{ID: "2", Name: "Amoxicillin", Quantity: 3, ExpirationDate: soon},
		models.StockItem{ID: "3", Name: "Bandage", Quantity: 10},
		models.StockItem{ID: "4", Name: "cetirizine", Quantity: 25, ExpirationDate: past},
	), func(s models.StockItem) models.ID { return s.ID }, stockOrder)}
	require.NoError(t, l.Refresh(context.Background()))

	stockID := func(s models.StockItem) models.ID { return s.ID }
	assert.Equal(t, []models.ID{"2", "3", "4", "1"}, ids(l.Items(), stockID))
	assert.Equal(t, []models.ID{"2", "3"}, ids(l.LowStock(10), stockID))
	assert.Equal(t, []models.ID{"2", "4"}, ids(l.Expiring(day0, 30*24*time.Hour), stockID))
}

func TestRequestOrder(t *testing.T) {
	l := NewList(fetchOf(
		models.Request{ID: "1", Status: models.StatusApproved, CreatedAt: day0},
		models.Request{ID: "2", Status: models.StatusPending, CreatedAt: day0.Add(-48 * time.Hour)},
		models.Request{ID: "3", Status: models.StatusDeclined, CreatedAt: day0.Add(time.Hour)},
		models.Request{ID: "4", Status: models.StatusPending, CreatedAt: day0},
	), requestID, requestOrder)
	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, []models.ID{"4", "2", "3", "1"}, ids(l.Items(), requestID))
}

func TestScheduleOrder(t *testing.T) {
	l := NewList(fetchOf(
		models.Request{ID: "a", PreferredDate: models.NewDate(2026, time.December, 1)},
		models.Request{ID: "b", PreferredDate: models.NewDate(2026, time.November, 5)},
	), requestID, scheduleOrder)
	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, []models.ID{"b", "a"}, ids(l.Items(), requestID))
}

func TestNotificationsUnreadFirst(t *testing.T) {
	l := &NotificationList{NewList(fetchOf(
		models.Notification{ID: "1", Read: true, CreatedAt: day0.Add(time.Hour)},
		models.Notification{ID: "2", CreatedAt: day0.Add(-time.Hour)},
		models.Notification{ID: "3", CreatedAt: day0},
	), func(n models.Notification) models.ID { return n.ID }, notificationOrder)}
	require.NoError(t, l.Refresh(context.Background()))

	assert.Equal(t, []models.ID{"3", "2", "1"}, ids(l.Items(), func(n models.Notification) models.ID { return n.ID }))
	assert.Equal(t, 2, l.UnreadCount())
}

func TestUserOrder(t *testing.T) {
	l := NewList(fetchOf(
		models.User{ID: "1", FirstName: "Zed", LastName: "cruz"},
		models.User{ID: "2", FirstName: "Ana", LastName: "Cruz"},
		models.User{ID: "3", FirstName: "Bo", LastName: "Abad"},
	), func(u models.User) models.ID { return u.ID }, userOrder)
	require.NoError(t, l.Refresh(context.Background()))
	assert.Equal(t, []models.ID{"3", "2", "1"}, ids(l.Items(), func(u models.User) models.ID { return u.ID }))
}
