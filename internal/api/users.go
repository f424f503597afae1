package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/harrylevesque/campusclinic/internal/models"
)

type UserService struct {
	c *Client
}

type UserFilter struct {
	Role   models.Role
	Search string
}

func (f UserFilter) query() url.Values {
	q := url.Values{}
	if f.Role != "" {
		q.Set("role", string(f.Role))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

func (s *UserService) res() resource[models.User] {
	return resource[models.User]{s.c, "/api/users"}
}

func (s *UserService) List(ctx context.Context, f UserFilter) ([]models.User, error) {
	return s.res().list(ctx, f.query())
}

func (s *UserService) Get(ctx context.Context, id models.ID) (models.User, error) {
	if err := requireID(id); err != nil {
		return models.User{}, err
	}
	return s.res().get(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id models.ID, p models.UserPatch) (models.User, error) {
	if err := requireID(id); err != nil {
		return models.User{}, err
	}
	return s.res().update(ctx, id, p)
}

func (s *UserService) Delete(ctx context.Context, id models.ID) error {
	if err := requireID(id); err != nil {
		return err
	}
	return s.res().delete(ctx, id)
}

// UploadPicture replaces the user's profile picture with the image read from r.
func (s *UserService) UploadPicture(ctx context.Context, id models.ID, filename string, r io.Reader) (models.User, error) {
	if err := requireID(id); err != nil {
		return models.User{}, err
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("profile_picture", filepath.Base(filename))
	if err != nil {
		return models.User{}, fmt.Errorf("build upload: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return models.User{}, fmt.Errorf("read picture: %w", err)
	}
	if err := mw.Close(); err != nil {
		return models.User{}, fmt.Errorf("build upload: %w", err)
	}

	var out models.User
	err = s.c.do(ctx, call{
		method:      http.MethodPost,
		path:        s.res().itemPath(id) + "/picture",
		raw:         &buf,
		contentType: mw.FormDataContentType(),
		out:         &out,
	})
	return out, err
}
