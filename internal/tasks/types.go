package tasks

import (
	"time"

	tasks "google.golang.org/api/tasks/v1"
)

// TaskList represents a Google Tasks task list.
type TaskList struct {
	ID      string
	Title   string
	Updated time.Time
}

// Task represents a Google Tasks task.
type Task struct {
	ID        string
	Title     string
	Notes     string
	Status    string // "needsAction" or "completed"
	Due       time.Time
	Completed time.Time
	Parent    string // Parent task ID for subtasks
	Position  string // Position in the list
}

// TaskInput represents the input for creating or updating a task.
type TaskInput struct {
	Title  string
	Notes  string
	Status string // "needsAction" or "completed"
	Due    time.Time
	Parent string // Parent task ID for subtasks
}

// toTaskList converts a Google Tasks task list to our TaskList type.
func toTaskList(tl *tasks.TaskList) TaskList {
	if tl == nil {
		return TaskList{}
	}

	result := TaskList{
		ID:    tl.Id,
		Title: tl.Title,
	}
	if tl.Updated != "" {
		if t, err := time.Parse(time.RFC3339, tl.Updated); err == nil {
			result.Updated = t
		}
	}
	return result
}

// toTask converts a Google Tasks task to our Task type.
func toTask(t *tasks.Task) Task {
	if t == nil {
		return Task{}
	}

	result := Task{
		ID:       t.Id,
		Title:    t.Title,
		Notes:    t.Notes,
		Status:   t.Status,
		Parent:   t.Parent,
		Position: t.Position,
	}
	if t.Due != "" {
		if due, err := time.Parse(time.RFC3339, t.Due); err == nil {
			result.Due = due
		}
	}
	if t.Completed != nil && *t.Completed != "" {
		if completed, err := time.Parse(time.RFC3339, *t.Completed); err == nil {
			result.Completed = completed
		}
	}
	return result
}
