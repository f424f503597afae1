// Package api is the HTTP client for the clinic backend. Every screen of the
// client goes through one *Client; each entity family has its own service.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harrylevesque/campusclinic/internal/models"
)

const maxBodyBytes = 10 << 20

// TokenSource supplies the bearer token for each request. An empty token
// sends the request unauthenticated.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed bearer token.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// Client talks to one clinic backend.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
	logger  *zap.Logger
	newID   func() string

	Auth          *AuthService
	Users         *UserService
	Records       *RecordService
	Announcements *AnnouncementService
	Events        *EventService
	Stock         *StockService
	Requests      *RequestService
	Notifications *NotificationService
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRootCAs trusts pool for TLS connections to the backend.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(c *Client) {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}
		c.http.Transport = tr
	}
}

// New creates a client for the backend at baseURL (scheme, host, port).
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  StaticToken(""),
		logger:  zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, o := range opts {
		o(c)
	}
	c.Auth = &AuthService{c}
	c.Users = &UserService{c}
	c.Records = &RecordService{c}
	c.Announcements = &AnnouncementService{resource[models.Announcement]{c, "/api/announcements"}}
	c.Events = &EventService{resource[models.Event]{c, "/api/events"}}
	c.Stock = &StockService{resource[models.StockItem]{c, "/api/stock"}}
	c.Requests = &RequestService{resource[models.Request]{c, "/api/requests"}}
	c.Notifications = &NotificationService{resource[models.Notification]{c, "/api/notifications"}}
	return c, nil
}

func (c *Client) BaseURL() string { return c.baseURL.String() }

// validator is implemented by request bodies that can be checked before they
// leave the client.
type validator interface {
	Validate() error
}

type call struct {
	method    string
	path      string
	query     url.Values
	body      any
	out       any
	anonymous bool

	// raw, when set, is sent as-is with contentType instead of JSON-encoding body.
	raw         io.Reader
	contentType string
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do runs one request/response exchange. No retries.
func (c *Client) do(ctx context.Context, cl call) error {
	return c.doURL(ctx, c.endpoint(cl.path, cl.query), cl)
}

func (c *Client) doURL(ctx context.Context, target string, cl call) error {
	if v, ok := cl.body.(validator); ok {
		if err := v.Validate(); err != nil {
			return fromValidation(err)
		}
	}

	var body io.Reader
	contentType := ""
	switch {
	case cl.raw != nil:
		body, contentType = cl.raw, cl.contentType
	case cl.body != nil:
		data, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", cl.method, cl.path, err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", cl.method, cl.path, err)
	}
	reqID := c.newID()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if !cl.anonymous {
		token, err := c.tokens.Token()
		if err != nil {
			return fmt.Errorf("read access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed",
			zap.String("method", cl.method), zap.String("path", req.URL.Path),
			zap.String("request_id", reqID), zap.Error(err))
		return &Error{Kind: KindNetwork, RequestID: reqID, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	c.logger.Debug("request",
		zap.String("method", cl.method), zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode), zap.Duration("took", time.Since(start)),
		zap.String("request_id", reqID))
	if err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, RequestID: reqID, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		e := parseError(resp.StatusCode, data)
		e.RequestID = reqID
		c.logger.Warn("request rejected",
			zap.String("method", cl.method), zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode), zap.String("request_id", reqID),
			zap.String("kind", e.Kind.String()))
		return e
	}
	if cl.out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, cl.out); err != nil {
		return &Error{Kind: KindNetwork, Status: resp.StatusCode, RequestID: reqID, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
