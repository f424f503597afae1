package api

import (
	"context"
	"net/url"

	"github.com/harrylevesque/campusclinic/internal/models"
)

// RequestService handles appointment, leave, record and telehealth forms.
type RequestService struct {
	res resource[models.Request]
}

type RequestFilter struct {
	Status models.RequestStatus
	Kind   models.RequestKind
	User   models.ID
}

func (f RequestFilter) query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Kind != "" {
		q.Set("kind", string(f.Kind))
	}
	if !f.User.IsZero() {
		q.Set("user", f.User.String())
	}
	return q
}

// List returns the requests visible to the caller: their own for students and
// staff, everyone's for admins.
func (s *RequestService) List(ctx context.Context, f RequestFilter) ([]models.Request, error) {
	return s.res.list(ctx, f.query())
}

func (s *RequestService) Get(ctx context.Context, id models.ID) (models.Request, error) {
	if err := requireID(id); err != nil {
		return models.Request{}, err
	}
	return s.res.get(ctx, id)
}

// Submit files a new request. Status and reviewer fields are set by the backend.
func (s *RequestService) Submit(ctx context.Context, r models.Request) (models.Request, error) {
	r.ID = ""
	r.Status = ""
	r.Remarks = ""
	r.ReviewedBy = ""
	return s.res.create(ctx, r)
}

// Review approves or declines a pending request.
func (s *RequestService) Review(ctx context.Context, id models.ID, rv models.Review) (models.Request, error) {
	if err := requireID(id); err != nil {
		return models.Request{}, err
	}
	return s.res.update(ctx, id, rv)
}

// Cancel withdraws a request the caller submitted.
func (s *RequestService) Cancel(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.res.delete(ctx, id)
}
