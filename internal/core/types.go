package core

import "encoding/json"

// Task is a to-do item as the task service returns it.
type Task struct {
	TaskID  string `json:"task_id"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	IsDone  bool   `json:"is_done"`
	// CreatedTime and TTL are unix seconds stamped by the service
	CreatedTime int64 `json:"created_time,omitempty"`
	TTL         int64 `json:"ttl,omitempty"`
}

// CreateTaskRequest is the body of PUT /create-task.
type CreateTaskRequest struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
	IsDone  bool   `json:"is_done"`
}

// Validate reports an empty user_id. content may be any string, including "".
func (r CreateTaskRequest) Validate() error {
	return requireIDs(map[string]string{
		"user_id": r.UserID,
	})
}

// UpdateTaskRequest is the body of PUT /update-task.
type UpdateTaskRequest struct {
	UserID  string `json:"user_id"`
	TaskID  string `json:"task_id"`
	Content string `json:"content"`
	IsDone  bool   `json:"is_done"`
}

// Validate reports the first empty identifier. content may be any string, including "".
func (r UpdateTaskRequest) Validate() error {
	return requireIDs(map[string]string{
		"user_id": r.UserID,
		"task_id": r.TaskID,
	})
}

// ListPageSize is how many tasks the list route returns at most
const ListPageSize = 10

// CreateTaskResponse is the create envelope: {"task": {...}}.
type CreateTaskResponse struct {
	Task Task `json:"task"`
}

// ListTasksResponse is the list envelope: {"tasks": [...]}.
type ListTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

// UpdateTaskResponse is returned by PUT /update-task.
type UpdateTaskResponse struct {
	UpdatedTaskID string `json:"updated_task_id"`
}

// DeleteTaskResponse is returned by DELETE /delete-task/{task_id}.
type DeleteTaskResponse struct {
	DeletedTaskID string `json:"deleted_task_id"`
}

// Required body fields of the create and update routes
var (
	CreateTaskFields = []string{"user_id", "content"}
	UpdateTaskFields = []string{"user_id", "task_id", "content"}
)

// requiredFieldOrder fixes the order fields are checked in so errors are deterministic.
var requiredFieldOrder = []string{"user_id", "task_id", "content"}

// CheckRequiredFields reports the first of names that is absent from the JSON object in body.
// A present field passes whatever its value. body must already be a valid JSON object.
func CheckRequiredFields(body []byte, names ...string) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return NewInvalidRequestError("invalid request body: "+err.Error(), err)
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	for _, name := range requiredFieldOrder {
		if !wanted[name] {
			continue
		}
		if value, ok := raw[name]; !ok || string(value) == "null" {
			return NewValidationError("field required: " + name)
		}
	}
	return nil
}

func requireIDs(fields map[string]string) error {
	for _, name := range requiredFieldOrder {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if value == "" {
			return NewValidationError("field required: " + name)
		}
	}
	return nil
}
