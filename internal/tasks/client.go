package tasks

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/google"
)

// Client wraps the Google Tasks service.
type Client struct {
	svc     *tasks.Service
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClient creates a Tasks client for the given account. Credentials come
// from the token provider, which refreshes and persists them transparently.
func NewClient(ctx context.Context, account string, provider *google.ManagerTokenProvider) (*Client, error) {
	if provider == nil {
		return nil, fmt.Errorf("token provider cannot be nil")
	}

	httpClient, err := provider.HTTPClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Google OAuth client for account %s: %w", account, err)
	}

	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// ListTaskLists lists all task lists for the authenticated user.
func (c *Client) ListTaskLists() ([]TaskList, error) {
	result, err := c.svc.Tasklists.List().Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}

	var lists []TaskList
	for _, tl := range result.Items {
		lists = append(lists, toTaskList(tl))
	}
	return lists, nil
}

// GetTaskList retrieves a task list by ID.
func (c *Client) GetTaskList(taskListID string) (*TaskList, error) {
	tl, err := c.svc.Tasklists.Get(taskListID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get task list: %w", err)
	}

	list := toTaskList(tl)
	return &list, nil
}

// CreateTaskList creates a new task list with the given title.
func (c *Client) CreateTaskList(title string) (*TaskList, error) {
	created, err := c.svc.Tasklists.Insert(&tasks.TaskList{Title: title}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create task list: %w", err)
	}

	list := toTaskList(created)
	return &list, nil
}

// UpdateTaskList renames a task list.
func (c *Client) UpdateTaskList(taskListID, title string) (*TaskList, error) {
	existing, err := c.svc.Tasklists.Get(taskListID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get task list: %w", err)
	}

	existing.Title = title
	updated, err := c.svc.Tasklists.Update(taskListID, existing).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update task list: %w", err)
	}

	list := toTaskList(updated)
	return &list, nil
}

// DeleteTaskList deletes a task list and all its tasks.
func (c *Client) DeleteTaskList(taskListID string) error {
	if err := c.svc.Tasklists.Delete(taskListID).Do(); err != nil {
		return fmt.Errorf("failed to delete task list: %w", err)
	}
	return nil
}

// ListTasks lists tasks in a task list, optionally including completed ones
// and restricting to a due-date window.
func (c *Client) ListTasks(taskListID string, showCompleted bool, dueMin, dueMax time.Time) ([]Task, error) {
	call := c.svc.Tasks.List(taskListID).ShowCompleted(showCompleted)
	if showCompleted {
		call = call.ShowHidden(true)
	}
	if !dueMin.IsZero() {
		call = call.DueMin(dueMin.Format(time.RFC3339))
	}
	if !dueMax.IsZero() {
		call = call.DueMax(dueMax.Format(time.RFC3339))
	}

	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var items []Task
	for _, t := range result.Items {
		items = append(items, toTask(t))
	}
	return items, nil
}

// GetTask retrieves a task by ID.
func (c *Client) GetTask(taskListID, taskID string) (*Task, error) {
	t, err := c.svc.Tasks.Get(taskListID, taskID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	task := toTask(t)
	return &task, nil
}

// CreateTask creates a task in the given task list.
func (c *Client) CreateTask(taskListID string, input TaskInput) (*Task, error) {
	t := &tasks.Task{
		Title: input.Title,
		Notes: input.Notes,
	}
	if input.Status != "" {
		t.Status = input.Status
	}
	if !input.Due.IsZero() {
		t.Due = input.Due.Format(time.RFC3339)
	}

	call := c.svc.Tasks.Insert(taskListID, t)
	if input.Parent != "" {
		call = call.Parent(input.Parent)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	task := toTask(created)
	return &task, nil
}

// UpdateTask updates a task. Only non-zero input fields are changed.
func (c *Client) UpdateTask(taskListID, taskID string, input TaskInput) (*Task, error) {
	existing, err := c.svc.Tasks.Get(taskListID, taskID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	if input.Title != "" {
		existing.Title = input.Title
	}
	if input.Notes != "" {
		existing.Notes = input.Notes
	}
	if input.Status != "" {
		existing.Status = input.Status
	}
	if !input.Due.IsZero() {
		existing.Due = input.Due.Format(time.RFC3339)
	}

	updated, err := c.svc.Tasks.Update(taskListID, taskID, existing).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	task := toTask(updated)
	return &task, nil
}

// CompleteTask marks a task as completed.
func (c *Client) CompleteTask(taskListID, taskID string) (*Task, error) {
	existing, err := c.svc.Tasks.Get(taskListID, taskID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	existing.Status = "completed"
	updated, err := c.svc.Tasks.Update(taskListID, taskID, existing).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	task := toTask(updated)
	return &task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(taskListID, taskID string) error {
	if err := c.svc.Tasks.Delete(taskListID, taskID).Do(); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ClearCompletedTasks removes all completed tasks from a task list.
func (c *Client) ClearCompletedTasks(taskListID string) error {
	if err := c.svc.Tasks.Clear(taskListID).Do(); err != nil {
		return fmt.Errorf("failed to clear completed tasks: %w", err)
	}
	return nil
}
