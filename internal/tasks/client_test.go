package tasks

import (
	"testing"

	tasks "google.golang.org/api/tasks/v1"
)

func TestToTaskList(t *testing.T) {
	// Test with nil task list
	result := toTaskList(nil)
	if result.ID != "" {
		t.Errorf("Expected empty ID for nil task list, got %s", result.ID)
	}

	tl := &tasks.TaskList{
		Id:      "list-1",
		Title:   "Errands",
		Updated: "2026-01-10T09:00:00Z",
	}
	result = toTaskList(tl)

	if result.ID != "list-1" {
		t.Errorf("Expected ID 'list-1', got %s", result.ID)
	}
	if result.Title != "Errands" {
		t.Errorf("Expected title 'Errands', got %s", result.Title)
	}
	if result.Updated.IsZero() {
		t.Error("Expected non-zero updated time")
	}
}

func TestToTaskListBadTimestamp(t *testing.T) {
	result := toTaskList(&tasks.TaskList{Id: "list-1", Updated: "yesterday"})
	if !result.Updated.IsZero() {
		t.Errorf("Expected zero time for unparseable timestamp, got %v", result.Updated)
	}
}

func TestToTask(t *testing.T) {
	// Test with nil task
	result := toTask(nil)
	if result.ID != "" {
		t.Errorf("Expected empty ID for nil task, got %s", result.ID)
	}

	completed := "2026-01-09T10:00:00Z"
	task := &tasks.Task{
		Id:        "task-1",
		Title:     "Buy milk",
		Notes:     "Oat, not dairy",
		Status:    "completed",
		Due:       "2026-01-10T00:00:00Z",
		Completed: &completed,
		Parent:    "parent-1",
		Position:  "00000000000000000001",
	}
	result = toTask(task)

	if result.ID != "task-1" {
		t.Errorf("Expected ID 'task-1', got %s", result.ID)
	}
	if result.Title != "Buy milk" {
		t.Errorf("Expected title 'Buy milk', got %s", result.Title)
	}
	if result.Status != "completed" {
		t.Errorf("Expected status 'completed', got %s", result.Status)
	}
	if result.Due.IsZero() {
		t.Error("Expected non-zero due date")
	}
	if result.Completed.IsZero() {
		t.Error("Expected non-zero completed date")
	}
	if result.Parent != "parent-1" {
		t.Errorf("Expected parent 'parent-1', got %s", result.Parent)
	}
}

func TestToTaskWithoutOptionalFields(t *testing.T) {
	result := toTask(&tasks.Task{Id: "task-2", Title: "Open-ended", Status: "needsAction"})
	if !result.Due.IsZero() {
		t.Errorf("Expected zero due date, got %v", result.Due)
	}
	if !result.Completed.IsZero() {
		t.Errorf("Expected zero completed date, got %v", result.Completed)
	}
}
