// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Dagaz task tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/dagaz/internal/query"
	"github.com/starford/dagaz/internal/taskservice"
)

// Server wraps the MCP server with Dagaz tools.
type Server struct {
	mcp *server.MCPServer
	svc *taskservice.Service
}

// New creates a new MCP server with all Dagaz tools registered.
func New(svc *taskservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("add_task",
		mcp.WithDescription("Add a task from a quick-add line. The line may carry #tags, "+
			"a !low/!med/!high priority, a trailing '+note ...' segment, and natural dates "+
			"(today, tomorrow, next week, optional clock time). Read the syntax first via "+
			"the get_quickadd_contract tool or the dagaz://quickadd-syntax resource."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The quick-add line")),
	), s.addTask)

	s.mcp.AddTool(mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks under a named filter with an optional search term."),
		mcp.WithString("filter", mcp.Description("One of: all, pending, doing, completed, today, overdue, scheduled, archived (default all)")),
		mcp.WithString("search", mcp.Description("Optional case-insensitive search over titles and #tags")),
	), s.listTasks)

	s.mcp.AddTool(mcp.NewTool("get_task",
		mcp.WithDescription("Read a single task by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
	), s.getTask)

	s.mcp.AddTool(mcp.NewTool("complete_task",
		mcp.WithDescription("Toggle the completion state of a task."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
	), s.completeTask)

	s.mcp.AddTool(mcp.NewTool("snooze_task",
		mcp.WithDescription("Push a task's due date and reminder 30 minutes into the future. "+
			"Fails when the task has no due date."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Task id")),
	), s.snoozeTask)

	s.mcp.AddTool(mcp.NewTool("get_quickadd_contract",
		mcp.WithDescription("Returns the quick-add line syntax. Call this before adding tasks."),
	), s.getQuickAddContract)

	// Resource: quick-add syntax.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://quickadd-syntax", "Quick-Add Syntax",
			mcp.WithResourceDescription("The quick-add line grammar parsed by add_task."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readQuickAddResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) addTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.AddQuick(ctx, text)
	if err != nil {
		return mcp.NewToolResultError("text is required"), nil
	}
	out, _ := json.MarshalIndent(t, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listTasks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := query.FilterAll
	if f, err := req.RequireString("filter"); err == nil && f != "" {
		filter = f
	}
	search := ""
	if q, err := req.RequireString("search"); err == nil {
		search = q
	}
	tasks := s.svc.List(filter, query.SortOrder, search, time.Now())
	out, _ := json.MarshalIndent(tasks, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getTask(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.Get(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(t, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) completeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.ToggleComplete(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(t, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) snoozeTask(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	t, err := s.svc.Snooze(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(t, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getQuickAddContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(QuickAddContract), nil
}

func (s *Server) readQuickAddResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://quickadd-syntax",
			MIMEType: "text/markdown",
			Text:     QuickAddContract,
		},
	}, nil
}
