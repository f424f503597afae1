package api

import (
	"context"
	"net/http"

	"github.com/harrylevesque/campusclinic/internal/models"
)

type NotificationService struct {
	res resource[models.Notification]
}

// List returns the signed-in user's notifications.
func (s *NotificationService) List(ctx context.Context) ([]models.Notification, error) {
	return s.res.list(ctx, nil)
}

type readPatch struct {
	Read bool `json:"read"`
}

func (s *NotificationService) MarkRead(ctx context.Context, id models.ID) (models.Notification, error) {
	if err := requireID(id); err != nil {
		return models.Notification{}, err
	}
	return s.res.update(ctx, id, readPatch{Read: true})
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.res.c.do(ctx, call{method: http.MethodPost, path: s.res.path + "/read-all"})
}

func (s *NotificationService) Delete(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.res.delete(ctx, id)
}
