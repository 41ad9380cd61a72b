package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/claude/gymsplit/internal/models"
	"github.com/claude/gymsplit/internal/workout"
)

// HTTPClient implements DataSource by calling the gymsplit REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// statusKind maps an API error back to the engine error kind so callers can
// match it with errors.Is.
func statusKind(status int, msg string) error {
	switch status {
	case http.StatusBadRequest:
		return workout.ErrInvalidInput
	case http.StatusForbidden:
		return workout.ErrUnauthorized
	case http.StatusNotFound:
		return workout.ErrNotFound
	case http.StatusUnprocessableEntity:
		if strings.Contains(msg, workout.ErrEmptyWorkout.Error()) {
			return workout.ErrEmptyWorkout
		}
		return workout.ErrNoRoutineConfigured
	case http.StatusInternalServerError, http.StatusServiceUnavailable:
		return workout.ErrStorage
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, params url.Values, body, dst any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpclient: encode body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(data))
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		if kind := statusKind(resp.StatusCode, msg); kind != nil {
			return fmt.Errorf("httpclient: %s returned %d: %w: %s", path, resp.StatusCode, kind, msg)
		}
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, msg)
	}

	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) userPath(userID int, suffix string) string {
	return "/api/v1/users/" + strconv.Itoa(userID) + "/workout" + suffix
}

func dayParams(day int) url.Values {
	if day == 0 {
		return nil
	}
	return url.Values{"day": {strconv.Itoa(day)}}
}

func (c *HTTPClient) State(ctx context.Context, userID int) (*models.ProgressionState, error) {
	var state models.ProgressionState
	if err := c.do(ctx, http.MethodGet, c.userPath(userID, "/state"), nil, nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *HTTPClient) Generate(ctx context.Context, userID, day int) (*models.GeneratedWorkout, error) {
	var generated models.GeneratedWorkout
	if err := c.do(ctx, http.MethodPost, c.userPath(userID, "/generate"), dayParams(day), nil, &generated); err != nil {
		return nil, err
	}
	return &generated, nil
}

func (c *HTTPClient) Toggle(ctx context.Context, userID, exerciseID int) (bool, error) {
	var resp struct {
		IsSelected bool `json:"is_selected"`
	}
	path := c.userPath(userID, "/selections/"+strconv.Itoa(exerciseID)+"/toggle")
	if err := c.do(ctx, http.MethodPost, path, nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.IsSelected, nil
}

func (c *HTTPClient) Selected(ctx context.Context, userID int) ([]int, error) {
	var resp struct {
		ExerciseIDs []int `json:"exercise_ids"`
	}
	if err := c.do(ctx, http.MethodGet, c.userPath(userID, "/selections"), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.ExerciseIDs == nil {
		return []int{}, nil
	}
	return resp.ExerciseIDs, nil
}

func (c *HTTPClient) Clear(ctx context.Context, userID, day int) (int, error) {
	var resp struct {
		Cleared int `json:"cleared"`
	}
	if err := c.do(ctx, http.MethodDelete, c.userPath(userID, "/selections"), dayParams(day), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Cleared, nil
}

func (c *HTTPClient) Complete(ctx context.Context, userID int, performances []models.Performance) (*models.CompletedWorkout, error) {
	body := map[string]any{"exercises": performances}
	var done models.CompletedWorkout
	if err := c.do(ctx, http.MethodPost, c.userPath(userID, "/complete"), nil, body, &done); err != nil {
		return nil, err
	}
	return &done, nil
}

func (c *HTTPClient) ListSessions(ctx context.Context, userID, limit int) ([]models.Session, error) {
	var params url.Values
	if limit > 0 {
		params = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var sessions []models.Session
	if err := c.do(ctx, http.MethodGet, c.userPath(userID, "/sessions"), params, nil, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) LogsForSessions(ctx context.Context, userID int, sessionIDs []int) ([]models.LogEntry, error) {
	body := map[string]any{"session_ids": sessionIDs}
	var logs []models.LogEntry
	if err := c.do(ctx, http.MethodPost, c.userPath(userID, "/sessions/logs"), nil, body, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}
