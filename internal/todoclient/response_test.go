package todoclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todocontract/internal/core"
)

func TestResponse_Field(t *testing.T) {
	resp := &Response{Op: OpCreate, StatusCode: 200, Body: []byte(`{"task":{"task_id":"task_abc","is_done":false}}`)}

	assert.Equal(t, "task_abc", resp.Field("task.task_id").String())
	assert.False(t, resp.Field("task.is_done").Bool())
	assert.False(t, resp.Field("task.missing").Exists())
}

func TestResponse_CreatedTask(t *testing.T) {
	resp := &Response{Op: OpCreate, Body: []byte(`{"task":{"task_id":"task_1","user_id":"u1","content":"c","is_done":false}}`)}

	task, err := resp.CreatedTask()
	require.NoError(t, err)
	assert.Equal(t, core.Task{TaskID: "task_1", UserID: "u1", Content: "c"}, task)
}

func TestResponse_Task(t *testing.T) {
	resp := &Response{Op: OpGet, Body: []byte(`{"task_id":"task_1","user_id":"u1","content":"c","is_done":true}`)}

	task, err := resp.Task()
	require.NoError(t, err)
	assert.Equal(t, "task_1", task.TaskID)
	assert.True(t, task.IsDone)
}

func TestResponse_Tasks(t *testing.T) {
	resp := &Response{Op: OpList, Body: []byte(`{"tasks":[{"task_id":"a"},{"task_id":"b"}]}`)}

	tasks, err := resp.Tasks()
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "b", tasks[1].TaskID)

	empty := &Response{Op: OpList, Body: []byte(`{"tasks":[]}`)}
	tasks, err = empty.Tasks()
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestResponse_DecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		call func(r *Response) error
	}{
		{
			name: "get on non-json",
			body: `Internal Server Error`,
			call: func(r *Response) error { _, err := r.Task(); return err },
		},
		{
			name: "create without envelope",
			body: `{"task_id":"task_1"}`,
			call: func(r *Response) error { _, err := r.CreatedTask(); return err },
		},
		{
			name: "list without tasks",
			body: `{"detail":"Not Found"}`,
			call: func(r *Response) error { _, err := r.Tasks(); return err },
		},
		{
			name: "list with tasks object",
			body: `{"tasks":{"task_id":"a"}}`,
			call: func(r *Response) error { _, err := r.Tasks(); return err },
		},
		{
			name: "get on array",
			body: `[]`,
			call: func(r *Response) error { _, err := r.Task(); return err },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call(&Response{Op: OpGet, Body: []byte(tt.body)})
			require.Error(t, err)

			var apiErr *core.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, core.ErrorTypeDecode, apiErr.Type)
		})
	}
}

func TestResponse_String(t *testing.T) {
	resp := &Response{Op: OpDelete, StatusCode: 200, Body: []byte(`{"deleted_task_id":"task_1"}`)}
	assert.Equal(t, `delete -> 200 {"deleted_task_id":"task_1"}`, resp.String())
}
