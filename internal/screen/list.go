// Package screen holds the view state of each feature screen: a local,
// non-authoritative copy of what the backend last returned, in display order.
package screen

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/harrylevesque/campusclinic/internal/models"
)

// List is the fetch-render-submit loop shared by every list screen.
type List[T any] struct {
	fetch func(context.Context) ([]T, error)
	id    func(T) models.ID
	order func(a, b T) int

	mu        sync.Mutex
	items     []T
	err       error
	refreshed time.Time
}

// NewList builds a screen that loads with fetch, identifies rows by id and
// shows them sorted by order.
func NewList[T any](fetch func(context.Context) ([]T, error), id func(T) models.ID, order func(a, b T) int) *List[T] {
	return &List[T]{fetch: fetch, id: id, order: order}
}

// Refresh replaces the items with a fresh fetch. On failure the previous
// items stay and the error is kept for Err.
func (l *List[T]) Refresh(ctx context.Context) error {
	items, err := l.fetch(ctx)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.err = err
	if err != nil {
		return err
	}
	l.items = items
	l.refreshed = time.Now()
	return nil
}

// Err is the error of the last Refresh.
func (l *List[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *List[T]) RefreshedAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.refreshed
}

func (l *List[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Items returns a copy of the rows in display order.
func (l *List[T]) Items() []T {
	l.mu.Lock()
	out := slices.Clone(l.items)
	l.mu.Unlock()
	if l.order != nil {
		slices.SortStableFunc(out, l.order)
	}
	return out
}

// Filter returns the rows matching keep, in display order.
func (l *List[T]) Filter(keep func(T) bool) []T {
	var out []T
	for _, it := range l.Items() {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (l *List[T]) Find(id models.ID) (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		return l.items[i], true
	}
	var zero T
	return zero, false
}

// Submit runs a create or update against the backend and upserts the record it
// returns. Nothing changes locally when send fails.
func (l *List[T]) Submit(ctx context.Context, send func(context.Context) (T, error)) (T, error) {
	saved, err := send(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(l.id(saved)); i >= 0 {
		l.items[i] = saved
	} else {
		l.items = append(l.items, saved)
	}
	return saved, nil
}

// Delete removes id on the backend, then locally.
func (l *List[T]) Delete(ctx context.Context, id models.ID, remove func(context.Context, models.ID) error) error {
	if err := remove(ctx, id); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.index(id); i >= 0 {
		l.items = slices.Delete(l.items, i, i+1)
	}
	return nil
}

// index must be called with l.mu held.
func (l *List[T]) index(id models.ID) int {
	return slices.IndexFunc(l.items, func(it T) bool { return l.id(it) == id })
}
