// Package payload builds request bodies for the task service.
package payload

import (
	"strings"

	"github.com/google/uuid"

	"todocontract/internal/core"
)

const (
	// UserIDPrefix and ContentPrefix mark data created by this suite on the shared service
	UserIDPrefix  = "test_user_"
	ContentPrefix = "test_content_"

	// UpdatedContent is the content an update payload sets
	UpdatedContent = "my updated content"
)

// NewTaskPayload returns a creation payload with a fresh user_id and content.
// Every call draws new UUIDs so concurrent runs do not share a user_id.
func NewTaskPayload() core.CreateTaskRequest {
	return core.CreateTaskRequest{
		UserID:  UserIDPrefix + hexID(),
		Content: ContentPrefix + hexID(),
		IsDone:  false,
	}
}

// NewUpdatePayload returns an update payload for taskID that changes the content and marks
// the task done.
func NewUpdatePayload(userID, taskID string) core.UpdateTaskRequest {
	return core.UpdateTaskRequest{
		UserID:  userID,
		TaskID:  taskID,
		Content: UpdatedContent,
		IsDone:  true,
	}
}

// hexID is a v4 UUID without dashes.
func hexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
