package common

import (
	"context"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/andhikapraa/google-calendar-tasks-mcp/internal/server"
)

func newTestContext(t *testing.T) *server.ServerContext {
	t.Helper()
	sc := server.NewServerContext(context.Background(), nil, nil)
	t.Cleanup(func() {
		_ = sc.Shutdown()
	})
	return sc
}

func TestInstrumentedToolHandler_Success(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandler_Error(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	expectedErr := errors.New("test error")
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return nil, expectedErr
	}

	wrapped := InstrumentedToolHandler("test_tool", sc, handler)

	_, err := wrapped(ctx, mcp.CallToolRequest{})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestInstrumentedToolHandler_ErrorResult(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("error message"), nil
	}

	wrapped := InstrumentedToolHandler("test_tool", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil {
		t.Fatal("expected result, got nil")
	}
	if !result.IsError {
		t.Error("expected result.IsError to be true")
	}
}

func TestInstrumentedToolHandlerWithService_Success(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	called := false
	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		called = true
		return mcp.NewToolResultText("success"), nil
	}

	wrapped := InstrumentedToolHandlerWithService("test_tool", "gmail", "list", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if !called {
		t.Error("expected handler to be called")
	}
	if result == nil {
		t.Error("expected result, got nil")
	}
}

func TestInstrumentedToolHandlerWithService_Error(t *testing.T) {
	ctx := context.Background()
	sc := newTestContext(t)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return mcp.NewToolResultError("api failure"), nil
	}

	wrapped := InstrumentedToolHandlerWithService("test_tool", "calendar", "create", sc, handler)

	result, err := wrapped(ctx, mcp.CallToolRequest{})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result == nil || !result.IsError {
		t.Error("expected an error result")
	}
}
