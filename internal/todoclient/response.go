package todoclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"

	"todocontract/internal/core"
)

// Response is the raw outcome of one call. Status and body are not validated.
type Response struct {
	Op         string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Field returns the value at a gjson path, e.g. "task.task_id" or "tasks.#".
func (r *Response) Field(path string) gjson.Result {
	return gjson.GetBytes(r.Body, path)
}

// Decode unmarshals the body into v
func (r *Response) Decode(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return core.NewDecodeError(r.Op, "failed to unmarshal response: "+err.Error(), err)
	}
	return nil
}

// Task decodes the flat task object returned by get
func (r *Response) Task() (core.Task, error) {
	var task core.Task
	if err := r.requireObject(""); err != nil {
		return task, err
	}
	err := r.Decode(&task)
	return task, err
}

// CreatedTask decodes the {"task": {...}} envelope returned by create
func (r *Response) CreatedTask() (core.Task, error) {
	if err := r.requireObject("task"); err != nil {
		return core.Task{}, err
	}
	var envelope core.CreateTaskResponse
	err := r.Decode(&envelope)
	return envelope.Task, err
}

// Tasks decodes the {"tasks": [...]} envelope returned by list
func (r *Response) Tasks() ([]core.Task, error) {
	if !gjson.ValidBytes(r.Body) {
		return nil, core.NewDecodeError(r.Op, "response is not valid JSON", nil)
	}
	if !r.Field("tasks").IsArray() {
		return nil, core.NewDecodeError(r.Op, "response has no tasks array", nil)
	}
	var envelope core.ListTasksResponse
	if err := r.Decode(&envelope); err != nil {
		return nil, err
	}
	return envelope.Tasks, nil
}

// String renders the response for assertion messages
func (r *Response) String() string {
	return fmt.Sprintf("%s -> %d %s", r.Op, r.StatusCode, string(r.Body))
}

func (r *Response) requireObject(path string) error {
	if !gjson.ValidBytes(r.Body) {
		return core.NewDecodeError(r.Op, "response is not valid JSON", nil)
	}
	result := gjson.ParseBytes(r.Body)
	if path != "" {
		result = result.Get(path)
	}
	if !result.IsObject() {
		where := "response"
		if path != "" {
			where = path
		}
		return core.NewDecodeError(r.Op, where+" is not a JSON object", nil)
	}
	return nil
}
