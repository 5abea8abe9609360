package contract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todocontract/internal/todoclient"
)

func scenarioByName(t *testing.T, s *Suite, name string) Scenario {
	t.Helper()
	for _, sc := range s.Scenarios() {
		if sc.Name == name {
			return sc
		}
	}
	t.Fatalf("no scenario %q", name)
	return Scenario{}
}

func TestExecute_PassesAgainstFake(t *testing.T) {
	suite, _ := newFakeSuite(t)

	for _, sc := range suite.Scenarios() {
		out := Execute(context.Background(), sc, nil)
		assert.True(t, out.Passed, "%s: %s", sc.Name, out.Failure())
		assert.Equal(t, sc.Name, out.Scenario)
		assert.Empty(t, out.Errors)
		assert.False(t, out.StartedAt.IsZero())
	}
}

func TestExecute_DetectsContractBreaks(t *testing.T) {
	tests := []struct {
		name      string
		scenario  string
		intercept func(c echo.Context) bool
		wantError string
	}{
		{
			name:     "get returns stale content",
			scenario: "can_create_task",
			intercept: func(c echo.Context) bool {
				if !strings.HasPrefix(c.Request().URL.Path, "/get-task/") {
					return false
				}
				_ = c.JSON(http.StatusOK, map[string]interface{}{
					"task_id": "task_x", "user_id": "someone", "content": "stale", "is_done": false,
				})
				return true
			},
			wantError: "stale",
		},
		{
			name:     "update is ignored",
			scenario: "can_update_task",
			intercept: func(c echo.Context) bool {
				if c.Request().URL.Path != "/update-task" {
					return false
				}
				_ = c.JSON(http.StatusOK, map[string]string{"updated_task_id": "ignored"})
				return true
			},
			wantError: "my updated content",
		},
		{
			name:     "list leaks other users",
			scenario: "can_list_tasks",
			intercept: func(c echo.Context) bool {
				if !strings.HasPrefix(c.Request().URL.Path, "/list-tasks/") {
					return false
				}
				_ = c.JSON(http.StatusOK, map[string]interface{}{
					"tasks": []map[string]string{{"task_id": "a"}, {"task_id": "b"}, {"task_id": "c"}, {"task_id": "d"}},
				})
				return true
			},
			wantError: "but has 4",
		},
		{
			name:     "delete does nothing",
			scenario: "can_delete_task",
			intercept: func(c echo.Context) bool {
				if c.Request().Method != http.MethodDelete {
					return false
				}
				_ = c.JSON(http.StatusOK, map[string]string{"deleted_task_id": "x"})
				return true
			},
			wantError: "404",
		},
		{
			name:     "create without task envelope",
			scenario: "can_create_task",
			intercept: func(c echo.Context) bool {
				if c.Request().URL.Path != "/create-task" {
					return false
				}
				_ = c.JSON(http.StatusOK, map[string]string{"task_id": "flat"})
				return true
			},
			wantError: "task.task_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suite, fake := newFakeSuite(t)
			fake.Intercept(tt.intercept)

			out := Execute(context.Background(), scenarioByName(t, suite, tt.scenario), nil)

			require.False(t, out.Passed)
			require.NotEmpty(t, out.Errors)
			assert.Contains(t, out.Failure(), tt.wantError)
		})
	}
}

func TestExecute_FailureStopsScenario(t *testing.T) {
	suite, fake := newFakeSuite(t)
	fake.FailNext(http.StatusInternalServerError, "boom")

	out := Execute(context.Background(), scenarioByName(t, suite, "can_create_task"), nil)

	require.False(t, out.Passed)
	assert.Contains(t, out.Failure(), "500")
	assert.Len(t, fake.Requests(), 1, "no request after the failed assertion")
}

func TestExecute_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	suite := NewSuite(todoclient.NewWithHTTPClient(baseURL, nil, todoclient.Hooks{}))
	out := Execute(context.Background(), scenarioByName(t, suite, "can_call_endpoint"), nil)

	require.False(t, out.Passed)
	assert.Contains(t, out.Failure(), "transport_error")
}

func TestExecute_Panic(t *testing.T) {
	out := Execute(context.Background(), Scenario{
		Name: "panics",
		Run:  func(ctx context.Context, t T) { panic("nil task") },
	}, nil)

	require.False(t, out.Passed)
	assert.Contains(t, out.Failure(), "panic: nil task")
}

func TestExecute_CleanupsRunLIFOAfterFailure(t *testing.T) {
	var order []int
	out := Execute(context.Background(), Scenario{
		Name: "fails",
		Run: func(ctx context.Context, t T) {
			t.Cleanup(func() { order = append(order, 1) })
			t.Cleanup(func() { order = append(order, 2) })
			require.Equal(t, 1, 2)
			t.Cleanup(func() { order = append(order, 3) })
		},
	}, nil)

	assert.False(t, out.Passed)
	assert.Equal(t, []int{2, 1}, order)
}

func TestRecorder(t *testing.T) {
	rec := NewRecorder(nil)
	assert.False(t, rec.Failed())

	rec.Helper()
	rec.Logf("ignored %d", 1)
	rec.Errorf("first %s\n", "problem")
	rec.Errorf("second")

	assert.True(t, rec.Failed())
	assert.Equal(t, []string{"first problem", "second"}, rec.Errors())
}
