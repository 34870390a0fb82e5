package gmail_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/gmail"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/google"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/server"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/tools/common"
)

// getGmailClient retrieves or creates a Gmail client for the specified account
func getGmailClient(account string, sc *server.ServerContext) (*gmail.Client, error) {
	if !sc.HasCredentials(account) {
		return nil, errors.New(google.AuthRequiredMessage(account))
	}
	client, err := sc.GmailClientForAccount(account)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client for account %s: %w", account, err)
	}
	return client, nil
}

// RegisterGmailTools registers all Gmail-related tools with the MCP server
func RegisterGmailTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	listMessagesTool := mcp.NewTool("gmail_list_messages",
		mcp.WithDescription("List/search Gmail messages using Gmail query syntax"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("query",
			mcp.Description("Gmail search query (e.g., 'is:unread', 'from:alice@example.com')"),
		),
		mcp.WithNumber("maxResults",
			mcp.Description("Maximum number of messages to return (default: 20)"),
		),
	)

	s.AddTool(listMessagesTool, common.InstrumentedToolHandlerWithService("gmail_list_messages", "gmail", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			query, _ := args["query"].(string)
			maxResults := int64(20)
			if maxVal, ok := args["maxResults"].(float64); ok && maxVal > 0 {
				maxResults = int64(maxVal)
			}

			client, err := getGmailClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			messages, err := client.ListMessages(query, maxResults)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to list messages: %v", err)), nil
			}

			result, _ := json.MarshalIndent(messages, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	getMessageTool := mcp.NewTool("gmail_get_message",
		mcp.WithDescription("Get the full content of a Gmail message, including its body"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to retrieve"),
		),
	)

	s.AddTool(getMessageTool, common.InstrumentedToolHandlerWithService("gmail_get_message", "gmail", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			messageID, ok := args["messageId"].(string)
			if !ok || messageID == "" {
				return mcp.NewToolResultError("messageId is required"), nil
			}

			client, err := getGmailClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			message, err := client.GetMessage(messageID)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to get message: %v", err)), nil
			}

			result, _ := json.MarshalIndent(message, "", "  ")
			return mcp.NewToolResultText(string(result)), nil
		}))

	if readOnly {
		return nil
	}

	sendEmailTool := mcp.NewTool("gmail_send_email",
		mcp.WithDescription("Send an email from the authenticated account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Comma-separated list of recipient email addresses"),
		),
		mcp.WithString("cc",
			mcp.Description("Comma-separated list of CC email addresses"),
		),
		mcp.WithString("bcc",
			mcp.Description("Comma-separated list of BCC email addresses"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body (plain text)"),
		),
	)

	s.AddTool(sendEmailTool, common.InstrumentedToolHandlerWithService("gmail_send_email", "gmail", "send", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			to, ok := args["to"].(string)
			if !ok || to == "" {
				return mcp.NewToolResultError("to is required"), nil
			}
			subject, ok := args["subject"].(string)
			if !ok || subject == "" {
				return mcp.NewToolResultError("subject is required"), nil
			}
			body, ok := args["body"].(string)
			if !ok || body == "" {
				return mcp.NewToolResultError("body is required"), nil
			}

			input := gmail.EmailInput{
				To:      splitAddresses(to),
				Subject: subject,
				Body:    body,
			}
			if ccVal, ok := args["cc"].(string); ok && ccVal != "" {
				input.Cc = splitAddresses(ccVal)
			}
			if bccVal, ok := args["bcc"].(string); ok && bccVal != "" {
				input.Bcc = splitAddresses(bccVal)
			}

			client, err := getGmailClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			messageID, err := client.SendEmail(input)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to send email: %v", err)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Email sent, message id %s", messageID)), nil
		}))

	modifyLabelsTool := mcp.NewTool("gmail_modify_labels",
		mcp.WithDescription("Add or remove labels on a Gmail message"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to modify"),
		),
		mcp.WithString("addLabels",
			mcp.Description("Comma-separated list of label IDs to add (e.g., 'STARRED,IMPORTANT')"),
		),
		mcp.WithString("removeLabels",
			mcp.Description("Comma-separated list of label IDs to remove (e.g., 'UNREAD')"),
		),
	)

	s.AddTool(modifyLabelsTool, common.InstrumentedToolHandlerWithService("gmail_modify_labels", "gmail", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			messageID, ok := args["messageId"].(string)
			if !ok || messageID == "" {
				return mcp.NewToolResultError("messageId is required"), nil
			}

			var addLabels, removeLabels []string
			if addVal, ok := args["addLabels"].(string); ok && addVal != "" {
				addLabels = splitAddresses(addVal)
			}
			if removeVal, ok := args["removeLabels"].(string); ok && removeVal != "" {
				removeLabels = splitAddresses(removeVal)
			}
			if len(addLabels) == 0 && len(removeLabels) == 0 {
				return mcp.NewToolResultError("at least one of addLabels or removeLabels is required"), nil
			}

			client, err := getGmailClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			if err := client.ModifyLabels(messageID, addLabels, removeLabels); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to modify labels: %v", err)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Labels updated on message %s", messageID)), nil
		}))

	archiveMessageTool := mcp.NewTool("gmail_archive_message",
		mcp.WithDescription("Archive a Gmail message by removing it from the inbox"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("messageId",
			mcp.Required(),
			mcp.Description("The ID of the message to archive"),
		),
	)

	s.AddTool(archiveMessageTool, common.InstrumentedToolHandlerWithService("gmail_archive_message", "gmail", "update", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args := request.GetArguments()
			account := common.GetAccountFromArgs(args)

			messageID, ok := args["messageId"].(string)
			if !ok || messageID == "" {
				return mcp.NewToolResultError("messageId is required"), nil
			}

			client, err := getGmailClient(account, sc)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}

			if err := client.ArchiveMessage(messageID); err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("Failed to archive message: %v", err)), nil
			}

			return mcp.NewToolResultText(fmt.Sprintf("Message %s archived", messageID)), nil
		}))

	return nil
}

// splitAddresses splits a comma-separated list, trimming whitespace.
func splitAddresses(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
