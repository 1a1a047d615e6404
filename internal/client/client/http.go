package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/sketchkeeper/internal/client/models"
	"github.com/dmitrijs2005/sketchkeeper/internal/common"
	"github.com/dmitrijs2005/sketchkeeper/internal/logging"
	"github.com/google/uuid"
)

const maxResponseSize = 32 << 20

type HTTPClient struct {
	base   *url.URL
	http   *http.Client
	loader Loader
	log    logging.Logger
}

type Option func(*HTTPClient)

func WithLoader(l Loader) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.loader = l
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		if l != nil {
			c.log = l
		}
	}
}

// NewHTTPClient builds a client for the server rooted at baseURL. Each
// request is bounded by timeout.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", baseURL, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid server url %q: scheme must be http or https", baseURL)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: missing host", baseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &HTTPClient{
		base:   base,
		http:   &http.Client{Jar: jar, Timeout: timeout},
		loader: noopLoader{},
		log:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) BaseURL() *url.URL {
	u := *c.base
	return &u
}

func (c *HTTPClient) endpoint(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.base.String() + "/api/" + strings.Join(escaped, "/")
}

// do sends one request and decodes the envelope. out, when non-nil,
// receives the decoded body of a successful response.
func (c *HTTPClient) do(ctx context.Context, method, endpoint string, in, out any) error {
	c.loader.Loading()
	defer c.loader.LoadingFinish()

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set(common.RequestIDHeaderName, reqID)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	ctx = logging.WithRequestID(ctx, reqID)
	started := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "url", endpoint, "error", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}
	c.log.Debug(ctx, "request done", "method", method, "url", endpoint,
		"status", resp.StatusCode, "duration", time.Since(started))

	var env envelope
	jsonErr := json.Unmarshal(raw, &env)

	if env.Error != "" {
		return &APIError{Message: env.Error, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &APIError{StatusCode: resp.StatusCode}
	}
	if out == nil {
		return nil
	}
	if jsonErr != nil {
		return fmt.Errorf("decode response: %w", jsonErr)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *HTTPClient) GetIdentity(ctx context.Context) (*models.Identity, error) {
	var resp identityResponse
	err := c.do(ctx, http.MethodGet, c.endpoint("user")+"/", nil, &resp)
	if errors.Is(err, ErrUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if resp.Email == "" {
		return nil, nil
	}
	id, err := parseUserID(string(resp.ID))
	if err != nil {
		return nil, err
	}
	return &models.Identity{UserID: id, Email: resp.Email}, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) error {
	req := credentialsRequest{Email: creds.Email, Password: creds.Password}
	return c.do(ctx, http.MethodPost, c.endpoint("user", "auth"), req, nil)
}

func (c *HTTPClient) Signup(ctx context.Context, creds models.Credentials) error {
	req := credentialsRequest{Email: creds.Email, Password: creds.Password}
	return c.do(ctx, http.MethodPost, c.endpoint("user")+"/", req, nil)
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, c.endpoint("user", "logout"), nil, nil)
}

func (c *HTTPClient) ListDocuments(ctx context.Context) ([]models.RemoteDocument, error) {
	var resp listResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("drawings", "mutables"), nil, &resp); err != nil {
		return nil, err
	}
	docs := make([]models.RemoteDocument, 0, len(resp.Results))
	for _, d := range resp.Results {
		docs = append(docs, d.toModel())
	}
	return docs, nil
}

func (c *HTTPClient) GetDocument(ctx context.Context, id string) (*models.RemoteDocument, error) {
	var resp documentResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("drawings", "mutable", id), nil, &resp); err != nil {
		return nil, err
	}
	doc := resp.toModel()
	if doc.ID == "" {
		doc.ID = id
	}
	return &doc, nil
}

func (c *HTTPClient) CreateDocument(ctx context.Context, name string, data []byte) (string, error) {
	var resp createDocumentResponse
	req := createDocumentRequest{Name: name, Data: string(data)}
	if err := c.do(ctx, http.MethodPost, c.endpoint("drawings", "mutable"), req, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", fmt.Errorf("decode response: missing id")
	}
	return string(resp.ID), nil
}

func (c *HTTPClient) UpdateDocumentData(ctx context.Context, id string, data []byte) error {
	req := patchDocumentRequest{Data: string(data)}
	return c.do(ctx, http.MethodPatch, c.endpoint("drawings", "mutable", id), req, nil)
}

func (c *HTTPClient) UpdateDocumentMetadata(ctx context.Context, id string, meta models.DocumentMetadata) error {
	req := patchDocumentRequest{Name: meta.Name}
	return c.do(ctx, http.MethodPatch, c.endpoint("drawings", "mutable", id), req, nil)
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.endpoint("drawings", "mutable", id), nil, nil)
}

func (c *HTTPClient) GetSnapshot(ctx context.Context, shortKey string) (*models.Snapshot, error) {
	var resp snapshotResponse
	if err := c.do(ctx, http.MethodGet, c.endpoint("drawings", "immutable", shortKey), nil, &resp); err != nil {
		return nil, err
	}
	return &models.Snapshot{ShortKey: shortKey, Data: []byte(resp.Data), CreatedAt: resp.CreatedAt.Time}, nil
}

func (c *HTTPClient) CreateSnapshot(ctx context.Context, data []byte) (string, error) {
	var resp createSnapshotResponse
	if err := c.do(ctx, http.MethodPost, c.endpoint("drawings", "immutable"), snapshotRequest{Data: string(data)}, &resp); err != nil {
		return "", err
	}
	if resp.ShortKey == "" {
		return "", fmt.Errorf("decode response: missing short_key")
	}
	return resp.ShortKey, nil
}

func (d documentResponse) toModel() models.RemoteDocument {
	doc := models.RemoteDocument{
		ID:        string(d.ID),
		Name:      d.Name,
		CreatedAt: d.CreatedAt.Time,
	}
	if d.Data != "" {
		doc.Data = []byte(d.Data)
	}
	return doc
}
