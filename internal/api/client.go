package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/namkunwoo/workreport-front/internal/domain"
)

// TokenSource supplies the current bearer token. The session monitor is
// the production implementation.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// AuthAPI is the authentication surface consumed by the session monitor.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, username, password string) (string, error)

	// Me returns the user owning token, or ErrUnauthorized.
	Me(ctx context.Context, token string) (*domain.User, error)

	// RefreshToken exchanges a still-valid token for a fresh one.
	RefreshToken(ctx context.Context, token string) (string, error)
}

// ReportAPI is the work-report surface consumed by the dashboard.
type ReportAPI interface {
	DatesWithReports(ctx context.Context) ([]time.Time, error)
	ReportsByDate(ctx context.Context, date time.Time) ([]domain.WorkReport, error)
	CreateReport(ctx context.Context, r domain.WorkReport) (*domain.WorkReport, error)
	UpdateReport(ctx context.Context, id string, r domain.WorkReport) (*domain.WorkReport, error)
	DeleteReport(ctx context.Context, id string) error
	ExportAll(ctx context.Context) (*Payload, error)
	ExportRange(ctx context.Context, start, end time.Time) (*Payload, error)
	Import(ctx context.Context, filename string, content io.Reader, mode domain.ImportMode) (string, error)
}

// Payload is a binary download.
type Payload struct {
	Data        []byte
	ContentType string
	Filename    string // from Content-Disposition, if the server sent one
}

// Client implements AuthAPI and ReportAPI over HTTP.
type Client struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	tokens   TokenSource
	observer Observer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver sets the call observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewClient creates a Client for the backend at baseURL. Report calls are
// authorized with the token from tokens at the time of each call.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 10 * time.Second,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		tokens:   tokens,
		observer: NoopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var (
	_ AuthAPI   = (*Client)(nil)
	_ ReportAPI = (*Client)(nil)
)

// ── auth ─────────────────────────────────────────────────────────────────────

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type userResponse struct {
	ID       json.RawMessage `json:"id"`
	Username string          `json:"username"`
	Name     string          `json:"name"`
	Email    string          `json:"email"`
}

func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", fmt.Errorf("marshaling login: %w", err)
	}
	data, _, err := c.do(ctx, http.MethodPost, "/auth/login", "", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	return decodeToken(data)
}

func (c *Client) Me(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	data, _, err := c.do(ctx, http.MethodGet, "/auth/me", token, "", nil)
	if err != nil {
		return nil, err
	}
	var resp userResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding user: %v", ErrInvalidResponse, err)
	}
	return &domain.User{
		ID:       decodeID(resp.ID),
		Username: resp.Username,
		Name:     resp.Name,
		Email:    resp.Email,
	}, nil
}

func (c *Client) RefreshToken(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	data, _, err := c.do(ctx, http.MethodPost, "/auth/refresh-token", token, "application/json", nil)
	if err != nil {
		return "", err
	}
	return decodeToken(data)
}

func decodeToken(data []byte) (string, error) {
	var resp tokenResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("%w: decoding token: %v", ErrInvalidResponse, err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidResponse)
	}
	return resp.Token, nil
}

// ── reports ──────────────────────────────────────────────────────────────────

func (c *Client) DatesWithReports(ctx context.Context) ([]time.Time, error) {
	data, _, err := c.do(ctx, http.MethodGet, "/work-reports/dates-with-reports", c.tokens.Token(), "", nil)
	if err != nil {
		return nil, err
	}
	raw, err := decodeDates(data)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(raw))
	for _, s := range raw {
		d, err := domain.ParseDate(s)
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

func (c *Client) ReportsByDate(ctx context.Context, date time.Time) ([]domain.WorkReport, error) {
	path := "/work-reports/by-date?date=" + url.QueryEscape(domain.FormatDate(date))
	data, _, err := c.do(ctx, http.MethodGet, path, c.tokens.Token(), "", nil)
	if err != nil {
		return nil, err
	}
	return DecodeReports(data)
}

func (c *Client) CreateReport(ctx context.Context, r domain.WorkReport) (*domain.WorkReport, error) {
	return c.sendReport(ctx, http.MethodPost, "/work-reports/create-report", r)
}

func (c *Client) UpdateReport(ctx context.Context, id string, r domain.WorkReport) (*domain.WorkReport, error) {
	if id == "" {
		return nil, fmt.Errorf("updating report: %w", ErrNotFound)
	}
	return c.sendReport(ctx, http.MethodPut, "/work-reports/"+url.PathEscape(id), r)
}

func (c *Client) sendReport(ctx context.Context, method, path string, r domain.WorkReport) (*domain.WorkReport, error) {
	body, err := json.Marshal(EncodeReport(r))
	if err != nil {
		return nil, fmt.Errorf("marshaling report: %w", err)
	}
	data, _, err := c.do(ctx, method, path, c.tokens.Token(), "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	// Some backends answer mutations with an empty body or a plain message.
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, nil
	}
	saved, err := DecodeReport(data)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (c *Client) DeleteReport(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("deleting report: %w", ErrNotFound)
	}
	_, _, err := c.do(ctx, http.MethodDelete, "/work-reports/"+url.PathEscape(id), c.tokens.Token(), "", nil)
	return err
}

// ── files ────────────────────────────────────────────────────────────────────

func (c *Client) ExportAll(ctx context.Context) (*Payload, error) {
	return c.download(ctx, "/work-reports/file/export-all")
}

func (c *Client) ExportRange(ctx context.Context, start, end time.Time) (*Payload, error) {
	q := url.Values{}
	q.Set("start", domain.FormatDate(start))
	q.Set("end", domain.FormatDate(end))
	return c.download(ctx, "/work-reports/file/export?"+q.Encode())
}

func (c *Client) download(ctx context.Context, path string) (*Payload, error) {
	data, header, err := c.do(ctx, http.MethodGet, path, c.tokens.Token(), "", nil)
	if err != nil {
		return nil, err
	}
	p := &Payload{Data: data, ContentType: header.Get("Content-Type")}
	if cd := header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			p.Filename = params["filename"]
		}
	}
	return p, nil
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) Import(ctx context.Context, filename string, content io.Reader, mode domain.ImportMode) (string, error) {
	if !mode.Valid() {
		return "", fmt.Errorf("unknown import mode %q", mode)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("reading import file: %w", err)
	}
	if err := w.WriteField("mode", string(mode)); err != nil {
		return "", fmt.Errorf("writing mode field: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	data, _, err := c.do(ctx, http.MethodPost, "/work-reports/file/import", c.tokens.Token(), w.FormDataContentType(), &buf)
	if err != nil {
		return "", err
	}
	var resp messageResponse
	if json.Unmarshal(data, &resp) == nil && resp.Message != "" {
		return resp.Message, nil
	}
	return strings.TrimSpace(string(data)), nil
}

// ── transport ────────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path, token, contentType string, body io.Reader) ([]byte, http.Header, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status := 0
	data, header, err := func() ([]byte, http.Header, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return nil, nil, fmt.Errorf("creating request: %w", err)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ErrTimeout
			}
			return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		defer resp.Body.Close()
		status = resp.StatusCode

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ErrTimeout
			}
			return nil, nil, fmt.Errorf("reading response: %w", err)
		}
		if err := statusError(resp.StatusCode, data); err != nil {
			return nil, nil, err
		}
		return data, resp.Header, nil
	}()

	c.observer.OnCallComplete(CallEvent{
		Method:    method,
		Path:      stripQuery(path),
		Status:    status,
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
		ErrorCode: errorCode(err),
	})
	return data, header, err
}

func statusError(code int, body []byte) error {
	if code >= 200 && code < 300 {
		return nil
	}
	msg := strings.TrimSpace(string(body))
	var mr messageResponse
	if json.Unmarshal(body, &mr) == nil && mr.Message != "" {
		msg = mr.Message
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	default:
		return &StatusError{Code: code, Message: msg}
	}
}

func stripQuery(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

// IsTransient reports whether err is a network-level failure rather than
// a rejection by the server.
func IsTransient(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrTimeout)
}
