// Package httpapi implements the service interfaces against the task API
// over HTTP.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"taskdeck/internal/service"
)

const (
	// APITimeout is the timeout for a single API call.
	APITimeout = 10 * time.Second

	// requestRate caps outgoing requests (per second / burst).
	requestRate  = 10
	requestBurst = 20
)

// CredentialSource yields the current session credential. The session store
// implements it; StaticCredential covers fixed-token clients.
type CredentialSource interface {
	Load() (string, error)
}

// StaticCredential is a CredentialSource with a fixed value.
type StaticCredential string

// Load implements CredentialSource.
func (c StaticCredential) Load() (string, error) { return string(c), nil }

// sessionTokenSource adapts a CredentialSource to oauth2. It is consulted on
// every request, so a credential saved mid-run (an in-process login) takes
// effect on the next call without rebuilding the client.
type sessionTokenSource struct {
	creds CredentialSource
}

func (s sessionTokenSource) Token() (*oauth2.Token, error) {
	cred, err := s.creds.Load()
	if err != nil {
		return nil, err
	}
	// No session yields an empty bearer, which protected endpoints reject
	// as unauthenticated; the auth endpoints ignore it.
	return &oauth2.Token{AccessToken: cred, TokenType: "Bearer"}, nil
}

// Client implements service.Authenticator and service.Service over the
// task API's REST endpoints.
type Client struct {
	base    *url.URL
	http    *http.Client
	log     *logrus.Entry
	limiter *rate.Limiter
}

// New creates a client for the API at baseURL. creds supplies the bearer
// credential per request; a nil creds makes a purely anonymous client.
func New(baseURL string, creds CredentialSource, log *logrus.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if log == nil {
		log = logrus.New()
		log.SetLevel(logrus.WarnLevel)
	}

	httpClient := &http.Client{}
	if creds != nil {
		// The transport is built directly rather than via oauth2.NewClient:
		// NewClient wraps the source in a ReuseTokenSource, whose cache
		// would outlive a logout or a login under another account.
		httpClient = &http.Client{
			Transport: &oauth2.Transport{Source: sessionTokenSource{creds: creds}},
		}
	}

	return &Client{
		base:    base,
		http:    httpClient,
		log:     log.WithField("component", "httpapi"),
		limiter: rate.NewLimiter(requestRate, requestBurst),
	}, nil
}

// loginResponse is the auth service's success payload.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// apiError is the structured error body the API returns on failure.
type apiError struct {
	Detail string `json:"detail"`
}

// credentials is the login/register request body.
type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// taskPage is the response of GET /tasks.
type taskPage struct {
	Tasks []service.Task `json:"tasks"`
	Total int            `json:"total"`
}

// Login implements service.Authenticator.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, credentials{email, password}, &resp)
	if err != nil {
		return "", err
	}
	// A 2xx without a credential is still a failed login, handled upstream.
	return resp.AccessToken, nil
}

// Register implements service.Authenticator.
func (c *Client) Register(ctx context.Context, email, password string) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, credentials{email, password}, nil)
}

// ListTasks implements service.Service. Filter fields are sent as query
// parameters only when set, so an unfiltered listing stays cache-friendly on
// the server side.
func (c *Client) ListTasks(ctx context.Context, page, limit int, filter service.Filter) ([]service.Task, int, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	if filter.Priority != "" {
		q.Set("priority", string(filter.Priority))
	}

	var resp taskPage
	if err := c.do(ctx, http.MethodGet, "/tasks", q, nil, &resp); err != nil {
		return nil, 0, err
	}
	return resp.Tasks, resp.Total, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, draft service.Draft) (service.Task, error) {
	var t service.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, draft, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// UpdateTask implements service.Service.
func (c *Client) UpdateTask(ctx context.Context, id string, draft service.Draft) (service.Task, error) {
	var t service.Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(id), nil, draft, &t); err != nil {
		return service.Task{}, err
	}
	return t, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), nil, nil, nil)
}

// Stats implements service.Service. A 2xx response whose body does not
// decode into a stats payload yields (nil, nil): the snapshot is absent and
// the caller keeps its previous value.
func (c *Client) Stats(ctx context.Context) (*service.Stats, error) {
	body, err := c.doRaw(ctx, http.MethodGet, "/admin/stats", nil, nil)
	if err != nil {
		return nil, err
	}
	var s service.Stats
	if err := json.Unmarshal(body, &s); err != nil {
		c.log.WithError(err).Debug("malformed stats payload, keeping previous snapshot")
		return nil, nil
	}
	return &s, nil
}

// do issues a request and decodes a JSON response into out (out may be nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	body, err := c.doRaw(ctx, method, path, query, in)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("malformed response from %s: %w", path, err)
	}
	return nil
}

// doRaw issues a request under the per-call timeout and returns the raw
// response body of a 2xx response. Non-2xx statuses map to errors; 401-class
// statuses map to service.ErrUnauthorized.
func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := *c.base
	u.Path = u.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("request timed out")
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"status":     resp.StatusCode,
		"request_id": reqID,
		"elapsed":    time.Since(start).Round(time.Millisecond).String(),
	}).Debug("api call")

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, statusError(resp.StatusCode, body)
}

// statusError maps a non-2xx response to an error. The structured detail
// message is preserved when present so the auth flow can surface it; 401
// and 403 unwrap to service.ErrUnauthorized through service.APIError.
func statusError(status int, body []byte) error {
	var e apiError
	_ = json.Unmarshal(body, &e)
	return &service.APIError{Status: status, Detail: e.Detail}
}
