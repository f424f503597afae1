package api

import (
	"context"

	"github.com/harrylevesque/campusclinic/internal/models"
)

type AnnouncementService struct {
	res resource[models.Announcement]
}

func (s *AnnouncementService) List(ctx context.Context) ([]models.Announcement, error) {
	return s.res.list(ctx, nil)
}

func (s *AnnouncementService) Get(ctx context.Context, id models.ID) (models.Announcement, error) {
	if err := requireID(id); err != nil {
		return models.Announcement{}, err
	}
	return s.res.get(ctx, id)
}

func (s *AnnouncementService) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	return s.res.create(ctx, a)
}

func (s *AnnouncementService) Update(ctx context.Context, id models.ID, a models.Announcement) (models.Announcement, error) {
	if err := requireID(id); err != nil {
		return models.Announcement{}, err
	}
	return s.res.update(ctx, id, a)
}

func (s *AnnouncementService) Delete(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.res.delete(ctx, id)
}

type EventService struct {
	res resource[models.Event]
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	return s.res.list(ctx, nil)
}

func (s *EventService) Get(ctx context.Context, id models.ID) (models.Event, error) {
	if err := requireID(id); err != nil {
		return models.Event{}, err
	}
	return s.res.get(ctx, id)
}

func (s *EventService) Create(ctx context.Context, e models.Event) (models.Event, error) {
	return s.res.create(ctx, e)
}

func (s *EventService) Update(ctx context.Context, id models.ID, e models.Event) (models.Event, error) {
	if err := requireID(id); err != nil {
		return models.Event{}, err
	}
	return s.res.update(ctx, id, e)
}

func (s *EventService) Delete(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.res.delete(ctx, id)
}
