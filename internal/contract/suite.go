// Package contract holds the executable contract of the task service: scenarios that drive a
// todoclient.TaskAPI and assert on status codes and body fields with testify.
//
// Scenarios take a T, which *testing.T satisfies. Execute runs a scenario outside go test.
package contract

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/require"

	"todocontract/internal/core"
	"todocontract/internal/payload"
	"todocontract/internal/todoclient"
)

// DefaultListCount is how many tasks the list scenario creates
const DefaultListCount = 3

// T is the part of *testing.T the scenarios use.
type T interface {
	require.TestingT
	Helper()
	Logf(format string, args ...interface{})
	Cleanup(func())
}

// Scenario is one independent contract check
type Scenario struct {
	Name string
	Run  func(ctx context.Context, t T)
}

// Suite binds the scenarios to a task API.
type Suite struct {
	API todoclient.TaskAPI

	// ListCount is N for the list scenario, >= 0
	ListCount int

	// Cleanup deletes tasks a scenario created once it finishes. Off by default: the
	// scenarios leave their tasks on the service.
	Cleanup bool
}

// NewSuite returns a suite with the default list count and no cleanup
func NewSuite(api todoclient.TaskAPI) *Suite {
	return &Suite{API: api, ListCount: DefaultListCount}
}

// Scenarios returns every scenario in a stable order
func (s *Suite) Scenarios() []Scenario {
	return []Scenario{
		{Name: "can_call_endpoint", Run: s.EndpointReachable},
		{Name: "can_create_task", Run: s.CreateThenRead},
		{Name: "can_update_task", Run: s.UpdateThenRead},
		{Name: "can_list_tasks", Run: s.ListCountMatches},
		{Name: "can_delete_task", Run: s.DeleteThenMiss},
	}
}

// EndpointReachable checks that GET / answers 200.
func (s *Suite) EndpointReachable(ctx context.Context, t T) {
	t.Helper()

	resp, err := s.API.Root(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.String())
}

// CreateThenRead creates a task with a fresh payload and reads it back.
func (s *Suite) CreateThenRead(ctx context.Context, t T) {
	t.Helper()
	s.CreateThenReadPayload(ctx, t, payload.NewTaskPayload())
}

// CreateThenReadPayload creates a task from p and checks that get returns the same
// content and user_id.
func (s *Suite) CreateThenReadPayload(ctx context.Context, t T, p core.CreateTaskRequest) {
	t.Helper()

	taskID := s.create(ctx, t, p)
	s.track(ctx, t, taskID)

	task := s.get(ctx, t, taskID)
	require.Equal(t, p.Content, task.Content)
	require.Equal(t, p.UserID, task.UserID)
}

// UpdateThenRead creates a task, updates its content and is_done, and checks that get
// reflects the update.
func (s *Suite) UpdateThenRead(ctx context.Context, t T) {
	t.Helper()

	p := payload.NewTaskPayload()
	taskID := s.create(ctx, t, p)
	s.track(ctx, t, taskID)

	update := payload.NewUpdatePayload(p.UserID, taskID)
	resp, err := s.API.UpdateTask(ctx, update)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.String())

	task := s.get(ctx, t, taskID)
	require.Equal(t, update.Content, task.Content)
	require.Equal(t, update.IsDone, task.IsDone)
}

// ListCountMatches creates the same payload ListCount times and checks that listing by its
// user_id returns exactly that many tasks. Assumes nothing else writes under the same
// user_id while it runs.
func (s *Suite) ListCountMatches(ctx context.Context, t T) {
	t.Helper()
	s.ListCountPayload(ctx, t, payload.NewTaskPayload(), s.ListCount)
}

// ListCountPayload creates p n times and checks the list length for p.UserID.
func (s *Suite) ListCountPayload(ctx context.Context, t T, p core.CreateTaskRequest, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		taskID := s.create(ctx, t, p)
		s.track(ctx, t, taskID)
	}

	resp, err := s.API.ListTasks(ctx, p.UserID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.String())

	tasks, err := resp.Tasks()
	require.NoError(t, err)
	require.Len(t, tasks, n)
}

// DeleteThenMiss creates a task, deletes it, and checks that get answers 404.
func (s *Suite) DeleteThenMiss(ctx context.Context, t T) {
	t.Helper()

	taskID := s.create(ctx, t, payload.NewTaskPayload())

	resp, err := s.API.DeleteTask(ctx, taskID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.String())

	resp, err = s.API.GetTask(ctx, taskID)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode, resp.String())
}

// create sends p, requires 200 and returns task.task_id from the response
func (s *Suite) create(ctx context.Context, t T, p core.CreateTaskRequest) string {
	t.Helper()

	resp, err := s.API.CreateTask(ctx, p)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.String())

	taskID := resp.Field("task.task_id").String()
	require.NotEmpty(t, taskID, "create response has no task.task_id: %s", resp.Body)
	return taskID
}

// get fetches taskID and requires 200 with a task body
func (s *Suite) get(ctx context.Context, t T, taskID string) core.Task {
	t.Helper()

	resp, err := s.API.GetTask(ctx, taskID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode, resp.String())

	task, err := resp.Task()
	require.NoError(t, err)
	return task
}

// track schedules deletion of taskID when cleanup is enabled
func (s *Suite) track(ctx context.Context, t T, taskID string) {
	if !s.Cleanup {
		return
	}
	cleanupCtx := context.WithoutCancel(ctx)
	t.Cleanup(func() {
		resp, err := s.API.DeleteTask(cleanupCtx, taskID)
		switch {
		case err != nil:
			t.Logf("cleanup of %s failed: %v", taskID, err)
		case resp.StatusCode != http.StatusOK:
			t.Logf("cleanup of %s: %s", taskID, resp.String())
		}
	})
}
