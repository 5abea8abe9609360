package fakeapi

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"todocontract/internal/core"
)

// DefaultListLimit matches the page size of the live service's list route
const DefaultListLimit = core.ListPageSize

// taskTTL is how far ahead the service stamps the ttl field
const taskTTL = 24 * time.Hour

type storedTask struct {
	task core.Task
	seq  uint64
}

// Store is an in-memory task table. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	tasks     map[string]storedTask
	seq       uint64
	now       func() time.Time
	listLimit int
}

// NewStore creates an empty store. A nil now uses time.Now; listLimit <= 0 means no limit.
func NewStore(now func() time.Time, listLimit int) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		tasks:     make(map[string]storedTask),
		now:       now,
		listLimit: listLimit,
	}
}

// Create stores a new task and returns it with its generated id and timestamps.
func (s *Store) Create(req core.CreateTaskRequest) core.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	task := core.Task{
		TaskID:      "task_" + strings.ReplaceAll(uuid.NewString(), "-", ""),
		UserID:      req.UserID,
		Content:     req.Content,
		IsDone:      req.IsDone,
		CreatedTime: now.Unix(),
		TTL:         now.Add(taskTTL).Unix(),
	}
	s.insertLocked(task)
	return task
}

// Put stores task as-is, replacing any task with the same id.
func (s *Store) Put(task core.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertLocked(task)
}

func (s *Store) insertLocked(task core.Task) {
	s.seq++
	s.tasks[task.TaskID] = storedTask{task: task, seq: s.seq}
}

// Get returns the task with the given id.
func (s *Store) Get(taskID string) (core.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.tasks[taskID]
	return st.task, ok
}

// Update sets content and is_done on an existing task. user_id is rewritten as sent.
func (s *Store) Update(req core.UpdateTaskRequest) (core.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.tasks[req.TaskID]
	if !ok {
		return core.Task{}, false
	}
	st.task.UserID = req.UserID
	st.task.Content = req.Content
	st.task.IsDone = req.IsDone
	s.tasks[req.TaskID] = st
	return st.task, true
}

// List returns the user's tasks, newest first, capped at the list limit.
func (s *Store) List(userID string) []core.Task {
	s.mu.RLock()
	matches := make([]storedTask, 0)
	for _, st := range s.tasks {
		if st.task.UserID == userID {
			matches = append(matches, st)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool { return matches[i].seq > matches[j].seq })
	if s.listLimit > 0 && len(matches) > s.listLimit {
		matches = matches[:s.listLimit]
	}

	tasks := make([]core.Task, len(matches))
	for i, st := range matches {
		tasks[i] = st.task
	}
	return tasks
}

// Delete removes a task and reports whether it existed.
func (s *Store) Delete(taskID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[taskID]
	delete(s.tasks, taskID)
	return ok
}

// Len returns the number of stored tasks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// Reset drops every task.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = make(map[string]storedTask)
}
