package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/harrylevesque/campusclinic/internal/models"
)

// maxPages bounds how many "next" links one list call follows.
const maxPages = 50

// resource is the CRUD loop every screen repeats against one endpoint family.
type resource[T any] struct {
	c    *Client
	path string
}

type page[T any] struct {
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

func (r resource[T]) itemPath(id models.ID) string {
	return r.path + "/" + url.PathEscape(id.String())
}

// list accepts both a bare JSON array and a paginated {"results": [...]}
// envelope, following "next" links on the same host.
func (r resource[T]) list(ctx context.Context, q url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := r.c.do(ctx, call{method: http.MethodGet, path: r.path, query: q, out: &raw}); err != nil {
		return nil, err
	}
	items, next, err := decodeList[T](raw)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("decode %s: %w", r.path, err)}
	}
	for pages := 1; next != "" && pages < maxPages; pages++ {
		if err := r.sameHost(next); err != nil {
			return nil, err
		}
		raw = nil
		if err := r.c.doURL(ctx, next, call{method: http.MethodGet, path: r.path, out: &raw}); err != nil {
			return nil, err
		}
		more, n, err := decodeList[T](raw)
		if err != nil {
			return nil, &Error{Kind: KindNetwork, Err: fmt.Errorf("decode %s: %w", r.path, err)}
		}
		items = append(items, more...)
		next = n
	}
	return items, nil
}

func (r resource[T]) sameHost(next string) error {
	u, err := url.Parse(next)
	if err != nil {
		return &Error{Kind: KindServer, Message: "bad pagination link", Err: err}
	}
	if u.Host != r.c.baseURL.Host {
		return &Error{Kind: KindServer, Message: fmt.Sprintf("pagination link points to foreign host %q", u.Host)}
	}
	return nil
}

func decodeList[T any](raw json.RawMessage) ([]T, string, error) {
	raw = bytes.TrimSpace(raw)
	items := []T{}
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return items, "", nil
	}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, "", err
		}
		return items, "", nil
	}
	var p page[T]
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, "", err
	}
	if p.Results != nil {
		items = p.Results
	}
	return items, p.Next, nil
}

func (r resource[T]) get(ctx context.Context, id models.ID) (T, error) {
	var out T
	err := r.c.do(ctx, call{method: http.MethodGet, path: r.itemPath(id), out: &out})
	return out, err
}

func (r resource[T]) create(ctx context.Context, body any) (T, error) {
	var out T
	err := r.c.do(ctx, call{method: http.MethodPost, path: r.path, body: body, out: &out})
	return out, err
}

func (r resource[T]) update(ctx context.Context, id models.ID, body any) (T, error) {
	var out T
	err := r.c.do(ctx, call{method: http.MethodPatch, path: r.itemPath(id), body: body, out: &out})
	return out, err
}

func (r resource[T]) delete(ctx context.Context, id models.ID) error {
	return r.c.do(ctx, call{method: http.MethodDelete, path: r.itemPath(id)})
}

func requireID(id models.ID) error {
	if id.IsZero() {
		return &Error{Kind: KindValidation, Fields: map[string][]string{"id": {"This field is required."}}}
	}
	return nil
}
