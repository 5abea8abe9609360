// Package todoclient provides thin HTTP wrappers around the task service routes:
// - one method per route, no retries, no status checks
// - typed transport errors (core.APIError)
// - JSON-path access to response bodies
package todoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"todocontract/internal/core"
	"todocontract/internal/httpclient"
)

// Operation names, used in errors, hooks and metrics labels
const (
	OpRoot   = "root"
	OpCreate = "create"
	OpUpdate = "update"
	OpGet    = "get"
	OpList   = "list"
	OpDelete = "delete"
)

// Route paths of the task service
const (
	rootPath   = "/"
	createPath = "/create-task"
	updatePath = "/update-task"
	getPath    = "/get-task/"
	listPath   = "/list-tasks/"
	deletePath = "/delete-task/"
)

// TaskAPI is the task service as the contract scenarios see it.
// *Client implements it over HTTP; tests may substitute their own.
type TaskAPI interface {
	Root(ctx context.Context) (*Response, error)
	CreateTask(ctx context.Context, req core.CreateTaskRequest) (*Response, error)
	UpdateTask(ctx context.Context, req core.UpdateTaskRequest) (*Response, error)
	GetTask(ctx context.Context, taskID string) (*Response, error)
	ListTasks(ctx context.Context, userID string) (*Response, error)
	DeleteTask(ctx context.Context, taskID string) (*Response, error)
}

// RequestInfo describes a request about to be sent
type RequestInfo struct {
	Op     string
	Method string
	Path   string
}

// ResponseInfo describes a finished request. StatusCode is 0 when Err is set.
type ResponseInfo struct {
	RequestInfo
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Hooks observe requests. Either function may be nil.
type Hooks struct {
	OnRequestStart func(info RequestInfo)
	OnRequestEnd   func(info ResponseInfo)
}

// Client calls the task service at a fixed base URL
type Client struct {
	httpClient *http.Client
	baseURL    string
	hooks      Hooks
}

// New creates a client for baseURL using the default HTTP client
func New(baseURL string, hooks Hooks) *Client {
	return NewWithHTTPClient(baseURL, httpclient.NewDefaultHTTPClient(), hooks)
}

// NewWithHTTPClient creates a client with a custom HTTP client.
// A nil httpClient falls back to the default one.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, hooks Hooks) *Client {
	if httpClient == nil {
		httpClient = httpclient.NewDefaultHTTPClient()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		hooks:      hooks,
	}
}

// BaseURL returns the base URL without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Root calls GET /
func (c *Client) Root(ctx context.Context) (*Response, error) {
	return c.do(ctx, OpRoot, http.MethodGet, rootPath, nil)
}

// CreateTask calls PUT /create-task
func (c *Client) CreateTask(ctx context.Context, req core.CreateTaskRequest) (*Response, error) {
	return c.do(ctx, OpCreate, http.MethodPut, createPath, req)
}

// UpdateTask calls PUT /update-task
func (c *Client) UpdateTask(ctx context.Context, req core.UpdateTaskRequest) (*Response, error) {
	return c.do(ctx, OpUpdate, http.MethodPut, updatePath, req)
}

// GetTask calls GET /get-task/{task_id}
func (c *Client) GetTask(ctx context.Context, taskID string) (*Response, error) {
	return c.do(ctx, OpGet, http.MethodGet, getPath+url.PathEscape(taskID), nil)
}

// ListTasks calls GET /list-tasks/{user_id}
func (c *Client) ListTasks(ctx context.Context, userID string) (*Response, error) {
	return c.do(ctx, OpList, http.MethodGet, listPath+url.PathEscape(userID), nil)
}

// DeleteTask calls DELETE /delete-task/{task_id}
func (c *Client) DeleteTask(ctx context.Context, taskID string) (*Response, error) {
	return c.do(ctx, OpDelete, http.MethodDelete, deletePath+url.PathEscape(taskID), nil)
}

// do executes a single request and returns whatever status the service answered with
func (c *Client) do(ctx context.Context, op, method, path string, body interface{}) (*Response, error) {
	info := RequestInfo{Op: op, Method: method, Path: path}
	if c.hooks.OnRequestStart != nil {
		c.hooks.OnRequestStart(info)
	}

	start := time.Now()
	resp, err := c.send(ctx, info, body)

	if c.hooks.OnRequestEnd != nil {
		end := ResponseInfo{RequestInfo: info, Duration: time.Since(start), Err: err}
		if resp != nil {
			end.StatusCode = resp.StatusCode
		}
		c.hooks.OnRequestEnd(end)
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, info RequestInfo, body interface{}) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, info, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewTransportError(info.Op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewTransportError(info.Op, err)
	}

	return &Response{
		Op:         info.Op,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

// buildRequest creates the HTTP request, JSON-encoding body when present
func (c *Client) buildRequest(ctx context.Context, info RequestInfo, body interface{}) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			apiErr := core.NewInvalidRequestError("failed to marshal request", err)
			apiErr.Op = info.Op
			return nil, apiErr
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, info.Method, c.baseURL+info.Path, bodyReader)
	if err != nil {
		apiErr := core.NewInvalidRequestError("failed to create request", err)
		apiErr.Op = info.Op
		return nil, apiErr
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}
