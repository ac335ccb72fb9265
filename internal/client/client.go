// Package client talks to the task board HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	dto "tacly.com/taskboard/internal/data_models"
	model "tacly.com/taskboard/internal/models"
)

// Session identifies the signed-in user. It is passed to every call that
// needs authentication.
type Session struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s", e.StatusCode, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// File is an attachment to upload.
type File struct {
	Name    string
	Content io.Reader
}

type NewTask struct {
	Title       string
	Description string
	Status      string
	Priority    string
	Files       []File
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*model.User, error) {
	var user model.User
	err := c.doJSON(ctx, http.MethodPost, "/users/register", nil, dto.RegisterRequest{
		Name:     name,
		Email:    email,
		Password: password,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	var resp dto.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/users/login", nil, dto.LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: resp.UserID, Token: resp.Token, ExpiresAt: resp.ExpiresAt}, nil
}

func (c *Client) GoogleLogin(ctx context.Context, idToken string) (Session, error) {
	var resp dto.LoginResponse
	err := c.doJSON(ctx, http.MethodPost, "/users/google-login", nil, dto.GoogleLoginRequest{
		Token: idToken,
	}, &resp)
	if err != nil {
		return Session{}, err
	}
	return Session{UserID: resp.UserID, Token: resp.Token, ExpiresAt: resp.ExpiresAt}, nil
}

func (c *Client) ListTasks(ctx context.Context, s Session) ([]model.Task, error) {
	tasks := make([]model.Task, 0)
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/"+url.PathEscape(s.UserID), &s, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask sends the task as a multipart form so files can travel with it.
func (c *Client) CreateTask(ctx context.Context, s Session, t NewTask) (*model.Task, error) {
	body, contentType, err := multipartBody(map[string]string{
		"title":       t.Title,
		"description": t.Description,
		"status":      t.Status,
		"priority":    t.Priority,
		"userId":      s.UserID,
	}, t.Files)
	if err != nil {
		return nil, err
	}

	var task model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", &s, body, contentType, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask saves every scalar field of task and uploads files as new
// attachments.
func (c *Client) UpdateTask(ctx context.Context, s Session, task model.Task, files ...File) (*model.Task, error) {
	fields := map[string]string{
		"title":       task.Title,
		"description": task.Description,
		"status":      string(task.Status),
		"priority":    string(task.Priority),
		"userId":      task.UserID,
	}

	var updated model.Task
	path := "/tasks/" + url.PathEscape(task.ID)
	if len(files) == 0 {
		if err := c.doJSON(ctx, http.MethodPut, path, &s, fields, &updated); err != nil {
			return nil, err
		}
		return &updated, nil
	}

	body, contentType, err := multipartBody(fields, files)
	if err != nil {
		return nil, err
	}
	if err := c.do(ctx, http.MethodPut, path, &s, body, contentType, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteTask(ctx context.Context, s Session, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(id), &s, nil, nil)
}

// GetShared fetches the public view of a task. No session is needed.
func (c *Client) GetShared(ctx context.Context, id string) (*model.SharedTask, error) {
	var task model.SharedTask
	if err := c.doJSON(ctx, http.MethodGet, "/tasks/shared/"+url.PathEscape(id), nil, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteAttachment(ctx context.Context, s Session, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/tasks/attachment/"+url.PathEscape(id), &s, nil, nil)
}

func (c *Client) doJSON(ctx context.Context, method, path string, s *Session, in, out interface{}) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, s, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path string, s *Session, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s != nil {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body dto.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(raw))
	}
	if body.Error == "" {
		body.Error = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Error}
}

func multipartBody(fields map[string]string, files []File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if v == "" {
			continue
		}
		if err := w.WriteField(k, v); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create file part: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
