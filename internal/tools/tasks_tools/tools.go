package tasks_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/google"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/server"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/tasks"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/tools/common"
)

// getTasksClient retrieves or creates a tasks client for the specified account
func getTasksClient(account string, sc *server.ServerContext) (*tasks.Client, error) {
	if !sc.HasCredentials(account) {
		return nil, errors.New(google.AuthRequiredMessage(account))
	}
	client, err := sc.TasksClientForAccount(account)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks client for account %s: %w", account, err)
	}
	return client, nil
}

// RegisterTasksTools registers all Tasks-related tools with the MCP server
func RegisterTasksTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	if err := registerTaskListTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register task list tools: %w", err)
	}
	if err := registerTaskTools(s, sc, readOnly); err != nil {
		return fmt.Errorf("failed to register task tools: %w", err)
	}
	return nil
}

// registerTaskListTools registers task list management tools
func registerTaskListTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTaskListsTool := mcp.NewTool("tasks_list_task_lists",
		mcp.WithDescription("List all task lists for the authenticated user"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(listTaskListsTool, common.InstrumentedToolHandlerWithService("tasks_list_task_lists", "tasks", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			client, err := getTasksClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			lists, err := client.ListTaskLists()
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list task lists: %v", err)), nil
			}

			result, _ := json.MarshalIndent(lists, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	getTaskListTool := mcp.NewTool("tasks_get_task_list",
		mcp.WithDescription("Get details of a specific task list"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list to retrieve"),
		),
	)

	s.AddTool(getTaskListTool, common.InstrumentedToolHandlerWithService("tasks_get_task_list", "tasks", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			taskListID, ok := args["taskListId"].(string)
			if !ok || taskListID == "" {
				return mcp.NewToolResultError("taskListId is required"), nil
			}

			client, err := getTasksClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			taskList, err := client.GetTaskList(taskListID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get task list: %v", err)), nil
			}

			result, _ := json.MarshalIndent(taskList, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	if !readOnly {
		createTaskListTool := mcp.NewTool("tasks_create_task_list",
			mcp.WithDescription("Create a new task list"),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Title of the new task list"),
			),
		)

		s.AddTool(createTaskListTool, common.InstrumentedToolHandlerWithService("tasks_create_task_list", "tasks", "create", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args := request.GetArguments()
				account := common.GetAccountFromArgs(args)

				title, ok := args["title"].(string)
				if !ok || title == "" {
					return mcp.NewToolResultError("title is required"), nil
				}

				client, err := getTasksClient(account, sc)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}

				taskList, err := client.CreateTaskList(title)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to create task list: %v", err)), nil
				}

				result, _ := json.MarshalIndent(taskList, "", "  ")
				return mcp.NewToolResultText(string(result)), nil
			}))

		updateTaskListTool := mcp.NewTool("tasks_update_task_list",
			mcp.WithDescription("Rename an existing task list"),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("taskListId",
				mcp.Required(),
				mcp.Description("The ID of the task list to update"),
			),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("New title for the task list"),
			),
		)

		s.AddTool(updateTaskListTool, common.InstrumentedToolHandlerWithService("tasks_update_task_list", "tasks", "update", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args := request.GetArguments()
				account := common.GetAccountFromArgs(args)

				taskListID, ok := args["taskListId"].(string)
				if !ok || taskListID == "" {
					return mcp.NewToolResultError("taskListId is required"), nil
				}
				title, ok := args["title"].(string)
				if !ok || title == "" {
					return mcp.NewToolResultError("title is required"), nil
				}

				client, err := getTasksClient(account, sc)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}

				taskList, err := client.UpdateTaskList(taskListID, title)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to update task list: %v", err)), nil
				}

				result, _ := json.MarshalIndent(taskList, "", "  ")
				return mcp.NewToolResultText(string(result)), nil
			}))

		deleteTaskListTool := mcp.NewTool("tasks_delete_task_list",
			mcp.WithDescription("Delete a task list and all tasks in it"),
			mcp.WithString("account",
				mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
			),
			mcp.WithString("taskListId",
				mcp.Required(),
				mcp.Description("The ID of the task list to delete"),
			),
		)

		s.AddTool(deleteTaskListTool, common.InstrumentedToolHandlerWithService("tasks_delete_task_list", "tasks", "delete", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args := request.GetArguments()
				account := common.GetAccountFromArgs(args)

				taskListID, ok := args["taskListId"].(string)
				if !ok || taskListID == "" {
					return mcp.NewToolResultError("taskListId is required"), nil
				}

				client, err := getTasksClient(account, sc)
				if err != nil {
					return mcp.NewToolResultError(err.Error()), nil
				}

				if err := client.DeleteTaskList(taskListID); err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Failed to delete task list: %v", err)), nil
				}

				return mcp.NewToolResultText(fmt.Sprintf("Task list %s deleted", taskListID)), nil
			}))
	}

	return nil
}

// registerTaskTools registers task management tools
func registerTaskTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listTasksTool := mcp.NewTool("tasks_list_tasks",
		mcp.WithDescription("List tasks in a task list, optionally filtered by due date"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithBoolean("showCompleted",
			mcp.Description("Include completed tasks in the result"),
		),
		mcp.WithString("dueMin",
			mcp.Description("Only include tasks due after this time (RFC3339 format)"),
		),
		mcp.WithString("dueMax",
			mcp.Description("Only include tasks due before this time (RFC3339 format)"),
		),
	)

	s.AddTool(listTasksTool, common.InstrumentedToolHandlerWithService("tasks_list_tasks", "tasks", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			taskListID, ok := args["taskListId"].(string)
			if !ok || taskListID == "" {
				return mcp.NewToolResultError("taskListId is required"), nil
			}

			showCompleted, _ := args["showCompleted"].(bool)

			var dueMin, dueMax time.Time
			if dueMinVal, ok := args["dueMin"].(string); ok && dueMinVal != "" {
				t, err := time.Parse(time.RFC3339, dueMinVal)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Invalid dueMin time: %v", err)), nil
				}
				dueMin = t
			}
			if dueMaxVal, ok := args["dueMax"].(string); ok && dueMaxVal != "" {
				t, err := time.Parse(time.RFC3339, dueMaxVal)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Invalid dueMax time: %v", err)), nil
				}
				dueMax = t
			}

			client, err := getTasksClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			taskItems, err := client.ListTasks(taskListID, showCompleted, dueMin, dueMax)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list tasks: %v", err)), nil
			}

			result, _ := json.MarshalIndent(taskItems, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	getTaskTool := mcp.NewTool("tasks_get_task",
		mcp.WithDescription("Get details of a specific task"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to retrieve"),
		),
	)

	s.AddTool(getTaskTool, common.InstrumentedToolHandlerWithService("tasks_get_task", "tasks", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			taskListID, taskID, errResult := requireTaskArgs(args)
			if errResult != nil {
				return errResult, nil
			}

			client, err := getTasksClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			task, err := client.GetTask(taskListID, taskID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get task: %v", err)), nil
			}

			result, _ := json.MarshalIndent(task, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	if readOnly {
		return nil
	}

	createTaskTool := mcp.NewTool("tasks_create_task",
		mcp.WithDescription("Create a new task in a task list"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title of the task"),
		),
		mcp.WithString("notes",
			mcp.Description("Notes/description for the task"),
		),
		mcp.WithString("due",
			mcp.Description("Due date (RFC3339 format, e.g., '2026-01-15T00:00:00Z'). Google Tasks records the date portion only."),
		),
		mcp.WithString("parent",
			mcp.Description("Parent task ID, to create this task as a subtask"),
		),
	)

	s.AddTool(createTaskTool, common.InstrumentedToolHandlerWithService("tasks_create_task", "tasks", "create", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			taskListID, ok := args["taskListId"].(string)
			if !ok || taskListID == "" {
				return mcp.NewToolResultError("taskListId is required"), nil
			}
			title, ok := args["title"].(string)
			if !ok || title == "" {
				return mcp.NewToolResultError("title is required"), nil
			}

			input := tasks.TaskInput{Title: title}
			input.Notes, _ = args["notes"].(string)
			input.Parent, _ = args["parent"].(string)
			if dueVal, ok := args["due"].(string); ok && dueVal != "" {
				due, err := time.Parse(time.RFC3339, dueVal)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Invalid due time: %v", err)), nil
				}
				input.Due = due
			}

			client, err := getTasksClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			task, err := client.CreateTask(taskListID, input)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to create task: %v", err)), nil
			}

			result, _ := json.MarshalIndent(task, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	updateTaskTool := mcp.NewTool("tasks_update_task",
		mcp.WithDescription("Update an existing task"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to update"),
		),
		mcp.WithString("title",
			mcp.Description("New title for the task"),
		),
		mcp.WithString("notes",
			mcp.Description("New notes for the task"),
		),
		mcp.WithString("due",
			mcp.Description("New due date (RFC3339 format)"),
		),
		mcp.WithString("status",
			mcp.Description("Task status: 'needsAction' or 'completed'"),
		),
	)

	s.AddTool(updateTaskTool, common.InstrumentedToolHandlerWithService("tasks_update_task", "tasks", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			taskListID, taskID, errResult := requireTaskArgs(args)
			if errResult != nil {
				return errResult, nil
			}

			var input tasks.TaskInput
			input.Title, _ = args["title"].(string)
			input.Notes, _ = args["notes"].(string)
			input.Status, _ = args["status"].(string)
			if dueVal, ok := args["due"].(string); ok && dueVal != "" {
				due, err := time.Parse(time.RFC3339, dueVal)
				if err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("Invalid due time: %v", err)), nil
				}
				input.Due = due
			}

			client, err := getTasksClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			task, err := client.UpdateTask(taskListID, taskID, input)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to update task: %v", err)), nil
			}

			result, _ := json.MarshalIndent(task, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	completeTaskTool := mcp.NewTool("tasks_complete_task",
		mcp.WithDescription("Mark a task as completed"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to complete"),
		),
	)

	s.AddTool(completeTaskTool, common.InstrumentedToolHandlerWithService("tasks_complete_task", "tasks", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			taskListID, taskID, errResult := requireTaskArgs(args)
			if errResult != nil {
				return errResult, nil
			}

			client, err := getTasksClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			task, err := client.CompleteTask(taskListID, taskID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to complete task: %v", err)), nil
			}

			result, _ := json.MarshalIndent(task, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	deleteTaskTool := mcp.NewTool("tasks_delete_task",
		mcp.WithDescription("Delete a task from a task list"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list"),
		),
		mcp.WithString("taskId",
			mcp.Required(),
			mcp.Description("The ID of the task to delete"),
		),
	)

	s.AddTool(deleteTaskTool, common.InstrumentedToolHandlerWithService("tasks_delete_task", "tasks", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			taskListID, taskID, errResult := requireTaskArgs(args)
			if errResult != nil {
				return errResult, nil
			}

			client, err := getTasksClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			if err := client.DeleteTask(taskListID, taskID); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to delete task: %v", err)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Task %s deleted from list %s", taskID, taskListID)), nil
		}))

	clearCompletedTool := mcp.NewTool("tasks_clear_completed",
		mcp.WithDescription("Remove all completed tasks from a task list"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("taskListId",
			mcp.Required(),
			mcp.Description("The ID of the task list to clear"),
		),
	)

	s.AddTool(clearCompletedTool, common.InstrumentedToolHandlerWithService("tasks_clear_completed", "tasks", "delete", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			taskListID, ok := args["taskListId"].(string)
			if !ok || taskListID == "" {
				return mcp.NewToolResultError("taskListId is required"), nil
			}

			client, err := getTasksClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			if err := client.ClearCompletedTasks(taskListID); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to clear completed tasks: %v", err)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Completed tasks cleared from list %s", taskListID)), nil
		}))

	return nil
}

// requireTaskArgs validates the taskListId and taskId arguments shared by the
// per-task tools.
func requireTaskArgs(args map[string]interface{}) (taskListID, taskID string, errResult *mcp.CallToolResult) {
	taskListID, ok := args["taskListId"].(string)
	if !ok || taskListID == "" {
		return "", "", mcp.NewToolResultError("taskListId is required")
	}
	taskID, ok = args["taskId"].(string)
	if !ok || taskID == "" {
		return "", "", mcp.NewToolResultError("taskId is required")
	}
	return taskListID, taskID, nil
}
