package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/marktrack/marktrack-api/internal/models"
	appErrors "github.com/marktrack/marktrack-api/pkg/errors"
)

// defaultTimeout bounds every request. Timeouts and connection failures map
// to NETWORK_ERROR, distinguishable from application rejections.
const defaultTimeout = 10 * time.Second

// Client is the HTTP collaborator shared by the SDK components. It never
// retries automatically.
type Client struct {
	baseURL string
	http    *http.Client
	store   SessionStore
	logger  *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New builds a Client against baseURL using store for session persistence.
func New(baseURL string, store SessionStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		store:   store,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store exposes the session store for components sharing this client.
func (c *Client) Store() SessionStore {
	return c.store
}

// do issues a request and decodes the envelope into out (which may be nil).
// Envelope errors come back as *appErrors.Error so callers can branch on the
// code; transport failures come back as NETWORK_ERROR.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if session, err := c.store.Load(); err == nil && session != nil {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrNetwork.Code, appErrors.ErrNetwork.Status, appErrors.ErrNetwork.Message)
	}

	var envelope struct {
		Data  json.RawMessage  `json:"data"`
		Error *appErrors.Error `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, res.StatusCode, fmt.Sprintf("unexpected response (%d)", res.StatusCode))
	}
	if envelope.Error != nil {
		return envelope.Error
	}
	if res.StatusCode >= http.StatusBadRequest {
		return appErrors.New(appErrors.ErrInternal.Code, res.StatusCode, fmt.Sprintf("request failed (%d)", res.StatusCode))
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "decode response")
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// currentIdentity loads the stored identity, or nil when logged out.
func (c *Client) currentIdentity() *models.UserInfo {
	session, err := c.store.Load()
	if err != nil || session == nil {
		return nil
	}
	identity := session.Identity
	return &identity
}
