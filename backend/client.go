// Package backend is the JSON client for the collaborator HTTP surface
// of the agent backend: sessions, settings, workspace and sandbox
// files, sandbox command execution, and the remote-desktop bridge
// probes. All calls are plain request/response with no special
// concurrency semantics.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pkt.systems/agentdeck/schema"
	"pkt.systems/pslog"
)

const defaultRequestTimeout = 15 * time.Second

// Client talks to one backend base URL.
type Client struct {
	baseURL string
	http    *http.Client
	log     pslog.Logger
}

// New constructs a Client for the given http(s) base URL.
func New(baseURL string, logger pslog.Logger) *Client {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultRequestTimeout},
		log:     logger,
	}
}

// ListSessions returns the stored sessions, newest first.
func (c *Client) ListSessions(ctx context.Context) ([]schema.SessionInfo, error) {
	var payload struct {
		Sessions []schema.SessionInfo `json:"sessions"`
	}
	if err := c.get(ctx, "/api/sessions", &payload); err != nil {
		return nil, err
	}
	return payload.Sessions, nil
}

// GetSession returns one session by id.
func (c *Client) GetSession(ctx context.Context, id schema.SessionID) (schema.SessionInfo, error) {
	var session schema.SessionInfo
	err := c.get(ctx, "/api/sessions/"+url.PathEscape(string(id)), &session)
	if err != nil {
		return schema.SessionInfo{}, err
	}
	return session, nil
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id schema.SessionID) error {
	return c.do(ctx, http.MethodDelete, "/api/sessions/"+url.PathEscape(string(id)), nil, nil)
}

// GetSettings returns the active model configuration.
func (c *Client) GetSettings(ctx context.Context) (schema.Settings, error) {
	var settings schema.Settings
	if err := c.get(ctx, "/api/settings", &settings); err != nil {
		return schema.Settings{}, err
	}
	return settings, nil
}

// PutModel changes the active model.
func (c *Client) PutModel(ctx context.Context, provider, model string) error {
	body := map[string]string{"provider": provider, "model": model}
	return c.do(ctx, http.MethodPut, "/api/settings/model", body, nil)
}

// PutFallback changes the fallback model list.
func (c *Client) PutFallback(ctx context.Context, fallbacks []string) error {
	body := map[string][]string{"fallbacks": fallbacks}
	return c.do(ctx, http.MethodPut, "/api/settings/fallback", body, nil)
}

// ReadWorkspaceFile returns a text file under the workspace root.
func (c *Client) ReadWorkspaceFile(ctx context.Context, path string) (string, error) {
	return c.readFile(ctx, "/api/workspace/file", path)
}

// WriteWorkspaceFile writes a text file under the workspace root.
func (c *Client) WriteWorkspaceFile(ctx context.Context, path, content string) error {
	return c.do(ctx, http.MethodPut, "/api/workspace/file", schema.FileWriteRequest{Path: path, Content: content}, nil)
}

// ReadSandboxFile returns a text file from inside the sandbox.
func (c *Client) ReadSandboxFile(ctx context.Context, path string) (string, error) {
	return c.readFile(ctx, "/api/docker/file", path)
}

// ExecSandbox runs a command inside the sandbox.
func (c *Client) ExecSandbox(ctx context.Context, req schema.ExecRequest) (schema.ExecResult, error) {
	if strings.TrimSpace(req.Command) == "" {
		return schema.ExecResult{}, schema.ErrMissingField
	}
	var result schema.ExecResult
	if err := c.do(ctx, http.MethodPost, "/api/docker/exec", req, &result); err != nil {
		return schema.ExecResult{}, err
	}
	return result, nil
}

// ListReminders returns stored reminders.
func (c *Client) ListReminders(ctx context.Context) ([]schema.Reminder, error) {
	var payload struct {
		Reminders []schema.Reminder `json:"reminders"`
	}
	if err := c.get(ctx, "/api/reminders", &payload); err != nil {
		return nil, err
	}
	return payload.Reminders, nil
}

// CreateReminder stores a reminder. Input is validated before any
// network call; invalid input returns ErrMissingField.
func (c *Client) CreateReminder(ctx context.Context, input schema.ReminderInput) (schema.Reminder, error) {
	if err := input.Validate(); err != nil {
		return schema.Reminder{}, err
	}
	var reminder schema.Reminder
	if err := c.do(ctx, http.MethodPost, "/api/reminders", input, &reminder); err != nil {
		return schema.Reminder{}, err
	}
	return reminder, nil
}

// DismissReminder marks a fired reminder as handled.
func (c *Client) DismissReminder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPut, "/api/reminders/"+url.PathEscape(id)+"/dismiss", nil, nil)
}

// AddMemory stores a memory entry. Input is validated before any
// network call.
func (c *Client) AddMemory(ctx context.Context, input schema.MemoryInput) error {
	if err := input.Validate(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/memory", input, nil)
}

func (c *Client) readFile(ctx context.Context, route, path string) (string, error) {
	var payload struct {
		Content string `json:"content"`
	}
	endpoint := route + "?path=" + url.QueryEscape(path)
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return "", err
	}
	return payload.Content, nil
}

func (c *Client) get(ctx context.Context, route string, out any) error {
	return c.do(ctx, http.MethodGet, route, nil, out)
}

func (c *Client) do(ctx context.Context, method, route string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+route, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, route, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	switch {
	case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(route, "/api/sessions/"):
		return schema.ErrSessionNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%s %s: unexpected status %d", method, route, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
