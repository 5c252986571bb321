// Package client talks to the OpenFit HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/soodoh/openfit/internal/auth"
	"github.com/soodoh/openfit/internal/catalog"
	"github.com/soodoh/openfit/internal/dashboard"
	"github.com/soodoh/openfit/internal/ordering"
	"github.com/soodoh/openfit/internal/search"
	"github.com/soodoh/openfit/internal/workouts"
)

const DefaultUserAgent = "openfitctl/1.0"

// APIError is a non 2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openfit api: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New returns a client for the API at baseURL. Requests are traced through an
// otelhttp transport unless another http client is given.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set(auth.TokenHeader, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBytes, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		} else {
			apiErr.Message = strings.TrimSpace(string(respBytes))
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Login opens a session and keeps its token for the following requests.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var resp auth.LoginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", auth.Credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return err
	}
	c.setToken(resp.Token)
	return nil
}

func (c *Client) Logout(ctx context.Context) (bool, error) {
	var resp auth.LogoutResponse
	if err := c.do(ctx, http.MethodPost, "/auth/logout", nil, &resp); err != nil {
		return false, err
	}
	c.setToken("")
	return resp.LoggedOut, nil
}

func (c *Client) Me(ctx context.Context) (*auth.User, error) {
	var u auth.User
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) ListRoutines(ctx context.Context) ([]workouts.Routine, error) {
	var routines []workouts.Routine
	err := c.do(ctx, http.MethodGet, "/routines", nil, &routines)
	return routines, err
}

func (c *Client) CreateRoutine(ctx context.Context, in workouts.RoutineInput) (*workouts.Routine, error) {
	var routine workouts.Routine
	if err := c.do(ctx, http.MethodPost, "/routines", in, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

func (c *Client) GetRoutine(ctx context.Context, id uuid.UUID) (*workouts.RoutineDetail, error) {
	var routine workouts.RoutineDetail
	if err := c.do(ctx, http.MethodGet, "/routines/"+id.String(), nil, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

func (c *Client) DeleteRoutine(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/routines/"+id.String(), nil, nil)
}

func (c *Client) CreateRoutineDay(ctx context.Context, routineID uuid.UUID, in workouts.RoutineDayInput) (*workouts.RoutineDay, error) {
	var day workouts.RoutineDay
	if err := c.do(ctx, http.MethodPost, "/routines/"+routineID.String()+"/days", in, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

func (c *Client) GetRoutineDay(ctx context.Context, id uuid.UUID) (*workouts.RoutineDayDetail, error) {
	var day workouts.RoutineDayDetail
	if err := c.do(ctx, http.MethodGet, "/days/"+id.String(), nil, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

func parentPath(parent workouts.Parent) (string, error) {
	switch parent.Kind {
	case ordering.ParentRoutineDay:
		return "/days/" + parent.ID.String(), nil
	case ordering.ParentSession:
		return "/sessions/" + parent.ID.String(), nil
	default:
		return "", fmt.Errorf("set groups have no parent of kind %q", parent.Kind)
	}
}

func (c *Client) CreateSetGroup(ctx context.Context, parent workouts.Parent, in workouts.SetGroupInput) (*workouts.SetGroup, error) {
	path, err := parentPath(parent)
	if err != nil {
		return nil, err
	}
	var group workouts.SetGroup
	if err := c.do(ctx, http.MethodPost, path+"/groups", in, &group); err != nil {
		return nil, err
	}
	return &group, nil
}

// ReorderSetGroups sends the full new order of the parent's groups.
func (c *Client) ReorderSetGroups(ctx context.Context, parent workouts.Parent, ids []uuid.UUID) ([]workouts.SetGroup, error) {
	path, err := parentPath(parent)
	if err != nil {
		return nil, err
	}
	var groups []workouts.SetGroup
	err = c.do(ctx, http.MethodPut, path+"/groups/order", workouts.ReorderRequest{IDs: ids}, &groups)
	return groups, err
}

func (c *Client) CreateSet(ctx context.Context, groupID uuid.UUID, in workouts.SetInput) (*workouts.Set, error) {
	var set workouts.Set
	if err := c.do(ctx, http.MethodPost, "/groups/"+groupID.String()+"/sets", in, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func (c *Client) ReorderSets(ctx context.Context, groupID uuid.UUID, ids []uuid.UUID) ([]workouts.Set, error) {
	var sets []workouts.Set
	err := c.do(ctx, http.MethodPut, "/groups/"+groupID.String()+"/sets/order", workouts.ReorderRequest{IDs: ids}, &sets)
	return sets, err
}

func (c *Client) SetCompleted(ctx context.Context, setID uuid.UUID, completed bool) (*workouts.CompletionResult, error) {
	var result workouts.CompletionResult
	err := c.do(ctx, http.MethodPut, "/sets/"+setID.String()+"/completed", workouts.CompletedRequest{Completed: completed}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CountdownFinished completes a time based set once its countdown ran out.
func (c *Client) CountdownFinished(ctx context.Context, setID uuid.UUID) (*workouts.CompletionResult, error) {
	var result workouts.CompletionResult
	if err := c.do(ctx, http.MethodPost, "/sets/"+setID.String()+"/countdown", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) StartSession(ctx context.Context, in workouts.SessionInput) (*workouts.SessionDetail, error) {
	var session workouts.SessionDetail
	if err := c.do(ctx, http.MethodPost, "/sessions", in, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) GetSession(ctx context.Context, id uuid.UUID) (*workouts.SessionDetail, error) {
	var session workouts.SessionDetail
	if err := c.do(ctx, http.MethodGet, "/sessions/"+id.String(), nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CurrentSession returns the active session, or nil when there is none.
func (c *Client) CurrentSession(ctx context.Context) (*workouts.SessionDetail, error) {
	var session *workouts.SessionDetail
	if err := c.do(ctx, http.MethodGet, "/sessions/current", nil, &session); err != nil {
		return nil, err
	}
	return session, nil
}

func (c *Client) FinishSession(ctx context.Context, id uuid.UUID) (*workouts.Session, error) {
	var session workouts.Session
	if err := c.do(ctx, http.MethodPost, "/sessions/"+id.String()+"/finish", nil, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) ListSessions(ctx context.Context, page, size int) (*workouts.SessionsPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	var result workouts.SessionsPage
	if err := c.do(ctx, http.MethodGet, "/sessions?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Lookups(ctx context.Context, kind catalog.Kind) ([]catalog.Lookup, error) {
	var lookups []catalog.Lookup
	err := c.do(ctx, http.MethodGet, "/catalog/"+url.PathEscape(string(kind)), nil, &lookups)
	return lookups, err
}

// ApplyCatalogMutation needs an admin session.
func (c *Client) ApplyCatalogMutation(ctx context.Context, m catalog.Mutation) (*catalog.Lookup, error) {
	var lookup catalog.Lookup
	if err := c.do(ctx, http.MethodPost, "/admin/catalog", m, &lookup); err != nil {
		return nil, err
	}
	return &lookup, nil
}

func (c *Client) ListGyms(ctx context.Context) ([]workouts.Gym, error) {
	var gyms []workouts.Gym
	err := c.do(ctx, http.MethodGet, "/gyms", nil, &gyms)
	return gyms, err
}

func (c *Client) CreateGym(ctx context.Context, in workouts.GymInput) (*workouts.Gym, error) {
	var gym workouts.Gym
	if err := c.do(ctx, http.MethodPost, "/gyms", in, &gym); err != nil {
		return nil, err
	}
	return &gym, nil
}

func filterQuery(f search.Filter) url.Values {
	q := url.Values{}
	if f.Query != "" {
		q.Set("q", f.Query)
	}
	if f.Level != "" {
		q.Set("level", string(f.Level))
	}
	if f.EquipmentID != nil {
		q.Set("equipment", f.EquipmentID.String())
	}
	if f.CategoryID != nil {
		q.Set("category", f.CategoryID.String())
	}
	if f.PrimaryMuscleID != nil {
		q.Set("muscle", f.PrimaryMuscleID.String())
	}
	switch {
	case f.GymID != nil:
		q.Set("gym", f.GymID.String())
	case f.DefaultGym:
		q.Set("gym", "default")
	}
	return q
}

// SearchExercises fetches one cursor page. Pass the previous page's
// ContinueCursor to continue; an empty cursor starts over.
func (c *Client) SearchExercises(ctx context.Context, f search.Filter, cursor string, limit int) (*search.CursorPage, error) {
	q := filterQuery(f)
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var page search.CursorPage
	if err := c.do(ctx, http.MethodGet, "/search/exercises?"+q.Encode(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) PageExercises(ctx context.Context, f search.Filter, page, pageSize int) (*search.OffsetPage, error) {
	q := filterQuery(f)
	q.Set("page", strconv.Itoa(page))
	if pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(pageSize))
	}
	var result search.OffsetPage
	if err := c.do(ctx, http.MethodGet, "/search/exercises/pages?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Dashboard returns the summary computed in the named IANA time zone. An
// empty tz means UTC.
func (c *Client) Dashboard(ctx context.Context, tz string) (*dashboard.Summary, error) {
	path := "/dashboard"
	if tz != "" {
		path += "?" + url.Values{"tz": []string{tz}}.Encode()
	}
	var summary dashboard.Summary
	if err := c.do(ctx, http.MethodGet, path, nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
