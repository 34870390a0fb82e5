package google_tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/google"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/instrumentation"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/server"
	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/tools/common"
)

// RegisterGoogleTools registers all Google OAuth-related tools with the MCP server
func RegisterGoogleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getAuthURLTool := mcp.NewTool("google_get_auth_url",
		mcp.WithDescription("Get the OAuth URL to authorize Google services access (Calendar, Tasks, Gmail) for a specific account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(getAuthURLTool, common.InstrumentedToolHandler("google_get_auth_url", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetAuthURL(ctx, request, sc)
		}))

	saveAuthCodeTool := mcp.NewTool("google_save_auth_code",
		mcp.WithDescription("Save the OAuth authorization code to complete Google services authentication (Calendar, Tasks, Gmail) for a specific account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
		mcp.WithString("authCode",
			mcp.Required(),
			mcp.Description("The authorization code from Google OAuth"),
		),
	)

	s.AddTool(saveAuthCodeTool, common.InstrumentedToolHandler("google_save_auth_code", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSaveAuthCode(ctx, request, sc)
		}))

	authStatusTool := mcp.NewTool("google_auth_status",
		mcp.WithDescription("Check whether a Google account is authorized and whether its stored token is currently usable"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(authStatusTool, common.InstrumentedToolHandler("google_auth_status", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleAuthStatus(ctx, request, sc)
		}))

	clearCredentialsTool := mcp.NewTool("google_clear_credentials",
		mcp.WithDescription("Remove the stored Google credentials for a specific account"),
		mcp.WithString("account",
			mcp.Description("Account name (default: 'default'). Used to manage multiple Google accounts."),
		),
	)

	s.AddTool(clearCredentialsTool, common.InstrumentedToolHandler("google_clear_credentials", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleClearCredentials(ctx, request, sc)
		}))

	return nil
}

func handleGetAuthURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	authURL := google.AuthURL()

	result := fmt.Sprintf(`To authorize Google services access (Calendar, Tasks, Gmail) for account "%s":

1. Visit this URL in your browser:
   %s

2. Sign in with your Google account
3. Grant access to Google services
4. Copy the authorization code

5. Call the google_save_auth_code tool with the code and account name to complete authentication`, account, authURL)

	return mcp.NewToolResultText(result), nil
}

func handleSaveAuthCode(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	authCode, ok := args["authCode"].(string)
	if !ok || authCode == "" {
		return mcp.NewToolResultError("authCode is required"), nil
	}

	acct, err := sc.AccountFor(account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to prepare account %s: %v", account, err)), nil
	}

	cred, err := google.Exchange(ctx, authCode)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to exchange authorization code for account %s: %v", account, err)), nil
	}

	if err := acct.Manager.Save(ctx, cred); err != nil {
		sc.Metrics().RecordTokenOperation(ctx, instrumentation.TokenOpSave, instrumentation.StatusError)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to save credentials for account %s: %v", account, err)), nil
	}
	sc.Metrics().RecordTokenOperation(ctx, instrumentation.TokenOpSave, instrumentation.StatusSuccess)

	// Cached API clients hold the previous token source.
	sc.DropClients(account)

	return mcp.NewToolResultText(fmt.Sprintf("Authorization successful for account '%s'. Google services token saved. You can now use all Calendar, Tasks and Gmail tools with this account.", account)), nil
}

func handleAuthStatus(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	if !sc.HasCredentials(account) {
		sc.Metrics().RecordTokenOperation(ctx, instrumentation.TokenOpLoad, instrumentation.StatusError)
		return mcp.NewToolResultText(fmt.Sprintf("Account '%s' is not authorized. Use google_get_auth_url to begin authorization.", account)), nil
	}
	sc.Metrics().RecordTokenOperation(ctx, instrumentation.TokenOpLoad, instrumentation.StatusSuccess)

	acct, err := sc.AccountFor(account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to prepare account %s: %v", account, err)), nil
	}

	ok, err := acct.Manager.Validate(ctx)
	if err != nil {
		sc.Metrics().RecordTokenRefresh(ctx, instrumentation.StatusError)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to validate credentials for account %s: %v", account, err)), nil
	}
	if !ok {
		sc.Metrics().RecordTokenRefresh(ctx, instrumentation.RefreshReauthRequired)
		return mcp.NewToolResultText(fmt.Sprintf("Account '%s' has stored credentials, but they are no longer usable. Re-authorize with google_get_auth_url.", account)), nil
	}

	sc.Metrics().RecordTokenRefresh(ctx, instrumentation.StatusSuccess)
	return mcp.NewToolResultText(fmt.Sprintf("Account '%s' is authorized and the stored token is valid.", account)), nil
}

func handleClearCredentials(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	account := common.GetAccountFromArgs(args)

	acct, err := sc.AccountFor(account)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to prepare account %s: %v", account, err)), nil
	}

	if err := acct.Manager.Clear(ctx); err != nil {
		sc.Metrics().RecordTokenOperation(ctx, instrumentation.TokenOpClear, instrumentation.StatusError)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to clear credentials for account %s: %v", account, err)), nil
	}
	sc.Metrics().RecordTokenOperation(ctx, instrumentation.TokenOpClear, instrumentation.StatusSuccess)

	sc.DropClients(account)

	return mcp.NewToolResultText(fmt.Sprintf("Credentials cleared for account '%s'.", account)), nil
}
