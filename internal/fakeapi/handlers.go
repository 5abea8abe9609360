package fakeapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"todocontract/internal/core"
)

// Handler holds the route handlers of the fake task service
type Handler struct {
	store *Store
}

// NewHandler creates handlers backed by store
func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// Root handles GET /
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": "Hello World from Todo API."})
}

// CreateTask handles PUT /create-task
func (h *Handler) CreateTask(c echo.Context) error {
	var req core.CreateTaskRequest
	if err := decodeBody(c, &req, core.CreateTaskFields); err != nil {
		return handleError(c, err)
	}
	if err := req.Validate(); err != nil {
		return handleError(c, err)
	}

	task := h.store.Create(req)
	return c.JSON(http.StatusOK, core.CreateTaskResponse{Task: task})
}

// GetTask handles GET /get-task/:task_id
func (h *Handler) GetTask(c echo.Context) error {
	taskID := pathParam(c, "task_id")
	task, ok := h.store.Get(taskID)
	if !ok {
		return handleError(c, core.NewNotFoundError("Task "+taskID+" not found"))
	}
	return c.JSON(http.StatusOK, task)
}

// UpdateTask handles PUT /update-task
func (h *Handler) UpdateTask(c echo.Context) error {
	var req core.UpdateTaskRequest
	if err := decodeBody(c, &req, core.UpdateTaskFields); err != nil {
		return handleError(c, err)
	}
	if err := req.Validate(); err != nil {
		return handleError(c, err)
	}

	if _, ok := h.store.Update(req); !ok {
		return handleError(c, core.NewNotFoundError("Task "+req.TaskID+" not found"))
	}
	return c.JSON(http.StatusOK, core.UpdateTaskResponse{UpdatedTaskID: req.TaskID})
}

// ListTasks handles GET /list-tasks/:user_id
func (h *Handler) ListTasks(c echo.Context) error {
	tasks := h.store.List(pathParam(c, "user_id"))
	return c.JSON(http.StatusOK, core.ListTasksResponse{Tasks: tasks})
}

// DeleteTask handles DELETE /delete-task/:task_id.
// Unknown ids still answer 200, as the live service does.
func (h *Handler) DeleteTask(c echo.Context) error {
	taskID := pathParam(c, "task_id")
	h.store.Delete(taskID)
	return c.JSON(http.StatusOK, core.DeleteTaskResponse{DeletedTaskID: taskID})
}

// decodeBody checks that every required field is present in the JSON body, then decodes it into v
func decodeBody(c echo.Context, v interface{}, required []string) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return core.NewInvalidRequestError("failed to read request body: "+err.Error(), err)
	}
	if err := core.CheckRequiredFields(body, required...); err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return core.NewInvalidRequestError("invalid request body: "+err.Error(), err)
	}
	return nil
}

// pathParam returns the unescaped value of a route parameter
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// handleError converts task errors to the service's {"detail": ...} responses
func handleError(c echo.Context, err error) error {
	var apiErr *core.APIError
	if errors.As(err, &apiErr) {
		return c.JSON(apiErr.HTTPStatusCode(), apiErr.ToJSON())
	}

	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"detail": "Internal Server Error",
	})
}
