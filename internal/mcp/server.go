// Package mcp exposes the lease broker and query surface as MCP (Model
// Context Protocol) tools, so agents can claim, renew, and release tasks
// through comment-driven automation instead of a local CLI.
package mcp

import (
	"context"
	"fmt"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patchkit/patchboard/internal/core"
	"github.com/patchkit/patchboard/internal/storage"
	"github.com/patchkit/patchboard/pkg/models"
)

// Server wraps the patchboard services and exposes them as MCP tools.
type Server struct {
	server   *gomcp.Server
	basePath string
	tasks    storage.TaskStore
	leaseMgr core.LeaseManager
	cfg      *core.Config
}

// NewServer creates an MCP server over the given services.
func NewServer(basePath string, tasks storage.TaskStore, leaseMgr core.LeaseManager, cfg *core.Config, version string) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{
		basePath: basePath,
		tasks:    tasks,
		leaseMgr: leaseMgr,
		cfg:      cfg,
	}
	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "patchboard", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run starts the server on stdio, blocking until the client disconnects or
// the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the unique task identifier (e.g. T-0001)"`
}

type taskOutput struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Type       string   `json:"type"`
	Status     string   `json:"status"`
	Priority   string   `json:"priority"`
	Owner      string   `json:"owner,omitempty"`
	DependsOn  []string `json:"depends_on,omitempty"`
	ParentEpic string   `json:"parent_epic,omitempty"`
	Children   []string `json:"children,omitempty"`
	Labels     []string `json:"labels,omitempty"`
	Archived   bool     `json:"archived,omitempty"`
}

type searchInput struct {
	Query    string `json:"query,omitempty" jsonschema:"substring to search for in title, context, plan, notes, and acceptance"`
	Status   string `json:"status,omitempty" jsonschema:"filter by status (todo, ready, in_progress, blocked, review, done)"`
	Priority string `json:"priority,omitempty" jsonschema:"filter by priority (e.g. P0..P4)"`
	Owner    string `json:"owner,omitempty" jsonschema:"filter by owner"`
	Label    string `json:"label,omitempty" jsonschema:"filter by label"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results"`
}

type searchResultOutput struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	MatchField   string `json:"match_field,omitempty"`
	MatchContext string `json:"match_context,omitempty"`
}

type searchOutput struct {
	Results []searchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

type claimInput struct {
	TaskID       string `json:"task_id" jsonschema:"required,the task to claim"`
	Actor        string `json:"actor" jsonschema:"required,who is claiming the task"`
	LeaseSeconds int    `json:"lease_seconds,omitempty" jsonschema:"lease duration in seconds (default from config)"`
	NoSteal      bool   `json:"no_steal,omitempty" jsonschema:"refuse to take over an expired lock"`
}

type renewInput struct {
	TaskID       string `json:"task_id" jsonschema:"required,the task whose lease to renew"`
	Actor        string `json:"actor" jsonschema:"required,the current lock holder"`
	LeaseSeconds int    `json:"lease_seconds,omitempty" jsonschema:"new lease duration in seconds (default from config)"`
}

type leaseOutput struct {
	TaskID         string `json:"task_id"`
	ClaimedBy      string `json:"claimed_by"`
	LeaseExpiresAt string `json:"lease_expires_at"`
	Branch         string `json:"branch,omitempty"`
}

type releaseInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task whose lease to release"`
	Actor  string `json:"actor" jsonschema:"required,who is releasing the lock"`
	Force  bool   `json:"force,omitempty" jsonschema:"release a lock held by another actor"`
	Status string `json:"status,omitempty" jsonschema:"optional new task status (e.g. review, done)"`
}

type releaseOutput struct {
	Message string `json:"message"`
}

type validateInput struct{}

type validateOutput struct {
	OK       bool     `json:"ok"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get task details by id, including status, dependencies, and epic relationships. Resolves archived tasks too.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "search_tasks",
		Description: "Search active tasks by substring with optional status/priority/owner/label filters. An empty query lists all filtered tasks.",
	}, s.handleSearch)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "claim_task",
		Description: "Claim a task: creates a time-bound lock and moves the task to in_progress. Fails if the task is done, has unfinished dependencies, or is locked by someone else.",
	}, s.handleClaim)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "renew_task",
		Description: "Extend an unexpired lock you hold. Expired locks cannot be renewed; re-claim instead.",
	}, s.handleRenew)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "release_task",
		Description: "Release a lock, optionally setting a new task status (e.g. review or done).",
	}, s.handleRelease)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "validate_board",
		Description: "Run all board consistency checks and return the accumulated errors and warnings.",
	}, s.handleValidate)
}

// --- Tool handlers ---

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}
	task, err := s.tasks.GetTask(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

func (s *Server) handleSearch(_ context.Context, _ *gomcp.CallToolRequest, input searchInput) (*gomcp.CallToolResult, searchOutput, error) {
	tasks, err := s.tasks.DiscoverTasks()
	if err != nil {
		return errorResult(fmt.Sprintf("loading tasks: %s", err)), searchOutput{}, nil
	}
	limit := input.Limit
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}
	results := core.Search(tasks, input.Query, core.SearchFilter{
		Status:   input.Status,
		Priority: input.Priority,
		Owner:    input.Owner,
		Label:    input.Label,
	}, limit)

	out := searchOutput{Results: []searchResultOutput{}}
	for _, r := range results {
		out.Results = append(out.Results, searchResultOutput{
			ID:           r.ID,
			Title:        r.Title,
			Status:       string(r.Status),
			MatchField:   r.MatchField,
			MatchContext: r.MatchContext,
		})
	}
	out.Count = len(out.Results)
	return nil, out, nil
}

func (s *Server) handleClaim(_ context.Context, _ *gomcp.CallToolRequest, input claimInput) (*gomcp.CallToolResult, leaseOutput, error) {
	if input.TaskID == "" || input.Actor == "" {
		return errorResult("task_id and actor are required"), leaseOutput{}, nil
	}
	seconds := input.LeaseSeconds
	if seconds <= 0 {
		seconds = s.cfg.LeaseSeconds
	}
	allowSteal := s.cfg.AllowStealExpired && !input.NoSteal
	lease, err := s.leaseMgr.Claim(input.TaskID, input.Actor, seconds, allowSteal)
	if err != nil {
		return errorResult(err.Error()), leaseOutput{}, nil
	}
	return nil, leaseToOutput(lease), nil
}

func (s *Server) handleRenew(_ context.Context, _ *gomcp.CallToolRequest, input renewInput) (*gomcp.CallToolResult, leaseOutput, error) {
	if input.TaskID == "" || input.Actor == "" {
		return errorResult("task_id and actor are required"), leaseOutput{}, nil
	}
	seconds := input.LeaseSeconds
	if seconds <= 0 {
		seconds = s.cfg.LeaseSeconds
	}
	lease, err := s.leaseMgr.Renew(input.TaskID, input.Actor, seconds)
	if err != nil {
		return errorResult(err.Error()), leaseOutput{}, nil
	}
	return nil, leaseToOutput(lease), nil
}

func (s *Server) handleRelease(_ context.Context, _ *gomcp.CallToolRequest, input releaseInput) (*gomcp.CallToolResult, releaseOutput, error) {
	if input.TaskID == "" || input.Actor == "" {
		return errorResult("task_id and actor are required"), releaseOutput{}, nil
	}
	if err := s.leaseMgr.Release(input.TaskID, input.Actor, input.Force, input.Status); err != nil {
		return errorResult(err.Error()), releaseOutput{}, nil
	}
	msg := fmt.Sprintf("released lock for %s", input.TaskID)
	if input.Status != "" {
		msg += fmt.Sprintf(" (status -> %s)", input.Status)
	}
	return nil, releaseOutput{Message: msg}, nil
}

func (s *Server) handleValidate(_ context.Context, _ *gomcp.CallToolRequest, _ validateInput) (*gomcp.CallToolResult, validateOutput, error) {
	active, err := s.tasks.DiscoverTasks()
	if err != nil {
		return errorResult(fmt.Sprintf("loading tasks: %s", err)), validateOutput{}, nil
	}
	all, err := s.tasks.DiscoverAllTasks()
	if err != nil {
		return errorResult(fmt.Sprintf("loading tasks: %s", err)), validateOutput{}, nil
	}
	_, boardDoc, boardErr := storage.LoadBoard(s.basePath)
	schemas := core.LoadSchemas(storage.SchemasDir(s.basePath))

	report := core.Validate(active, all, core.BoardInput{Doc: boardDoc, LoadErr: boardErr}, schemas)
	out := validateOutput{
		OK:       len(report.Errors) == 0,
		Errors:   report.Errors,
		Warnings: report.Warnings,
	}
	if out.Errors == nil {
		out.Errors = []string{}
	}
	if out.Warnings == nil {
		out.Warnings = []string{}
	}
	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t *models.Task) taskOutput {
	return taskOutput{
		ID:         t.ID,
		Title:      t.Title(),
		Type:       string(t.Type()),
		Status:     string(t.Status()),
		Priority:   t.Priority(),
		Owner:      t.Owner(),
		DependsOn:  t.DependsOn(),
		ParentEpic: t.ParentEpic(),
		Children:   t.Children(),
		Labels:     t.Labels(),
		Archived:   t.Archived,
	}
}

func leaseToOutput(l *models.Lease) leaseOutput {
	return leaseOutput{
		TaskID:         l.TaskID,
		ClaimedBy:      l.ClaimedBy,
		LeaseExpiresAt: l.LeaseExpiresAt,
		Branch:         l.Branch,
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}
