package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/patchkit/patchboard/internal/core"
	"github.com/patchkit/patchboard/internal/storage"
	"github.com/patchkit/patchboard/pkg/models"
)

// --- Test helpers ---

func newTestServer(t *testing.T) (*Server, storage.TaskStore, storage.LeaseStore) {
	t.Helper()
	base := t.TempDir()
	tasks := storage.NewTaskStore(base)
	leases := storage.NewLeaseStore(base)
	cfg := &core.Config{Actor: "alice", LeaseSeconds: 3600, SearchLimit: 20, AllowStealExpired: true}
	leaseMgr := core.NewLeaseManager(tasks, leases, nil, nil)
	return NewServer(base, tasks, leaseMgr, cfg, "test"), tasks, leases
}

func seedTask(t *testing.T, tasks storage.TaskStore, id, status string, extra map[string]any) {
	t.Helper()
	fm := map[string]any{
		"id":     id,
		"title":  "Task " + id,
		"status": status,
	}
	for k, v := range extra {
		fm[k] = v
	}
	err := tasks.SaveTask(&models.Task{
		ID:          id,
		Frontmatter: fm,
		Body:        "## Context\n\nTool surface fixture.\n",
	})
	if err != nil {
		t.Fatalf("seeding task %s: %v", id, err)
	}
}

// callTool connects a client over in-memory transports and calls one tool.
func callTool(t *testing.T, srv *Server, toolName string, args map[string]any) *gomcp.CallToolResult {
	t.Helper()

	ctx := context.Background()
	client := gomcp.NewClient(&gomcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)

	t1, t2 := gomcp.NewInMemoryTransports()

	go func() {
		_ = srv.MCPServer().Run(ctx, t1)
	}()

	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &gomcp.CallToolParams{
		Name:      toolName,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("call tool %s: %v", toolName, err)
	}
	return result
}

func decodeResult(t *testing.T, result *gomcp.CallToolResult, out any) {
	t.Helper()
	if result.StructuredContent != nil {
		data, err := json.Marshal(result.StructuredContent)
		if err != nil {
			t.Fatalf("marshalling structured content: %v", err)
		}
		if err := json.Unmarshal(data, out); err != nil {
			t.Fatalf("unmarshalling structured content: %v", err)
		}
		return
	}
	text := extractText(result)
	if err := json.Unmarshal([]byte(text), out); err != nil {
		t.Fatalf("unmarshalling tool output: %v (text was: %s)", err, text)
	}
}

func extractText(result *gomcp.CallToolResult) string {
	for _, c := range result.Content {
		if tc, ok := c.(*gomcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// --- Tests ---

func TestGetTask(t *testing.T) {
	srv, tasks, _ := newTestServer(t)
	seedTask(t, tasks, "T-0001", "ready", map[string]any{
		"type":       "task",
		"priority":   "high",
		"depends_on": []any{"T-0000"},
	})

	result := callTool(t, srv, "get_task", map[string]any{"task_id": "T-0001"})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out taskOutput
	decodeResult(t, result, &out)
	if out.ID != "T-0001" {
		t.Errorf("id = %s", out.ID)
	}
	if out.Status != "ready" {
		t.Errorf("status = %s", out.Status)
	}
	if len(out.DependsOn) != 1 || out.DependsOn[0] != "T-0000" {
		t.Errorf("depends_on = %v", out.DependsOn)
	}
}

func TestGetTaskNotFound(t *testing.T) {
	srv, _, _ := newTestServer(t)

	result := callTool(t, srv, "get_task", map[string]any{"task_id": "T-9999"})
	if !result.IsError {
		t.Fatal("expected error result for unknown task")
	}
	if extractText(result) == "" {
		t.Fatal("expected error message in result content")
	}
}

func TestSearchTasks(t *testing.T) {
	srv, tasks, _ := newTestServer(t)
	seedTask(t, tasks, "T-0001", "in_progress", map[string]any{"title": "Implement auth middleware"})
	seedTask(t, tasks, "T-0002", "ready", map[string]any{"title": "Update changelog"})

	result := callTool(t, srv, "search_tasks", map[string]any{
		"query":  "auth",
		"status": "in_progress",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out searchOutput
	decodeResult(t, result, &out)
	if out.Count != 1 {
		t.Fatalf("count = %d, want 1", out.Count)
	}
	if out.Results[0].ID != "T-0001" || out.Results[0].MatchField != "title" {
		t.Fatalf("results = %+v", out.Results)
	}
}

func TestClaimTask(t *testing.T) {
	srv, tasks, leases := newTestServer(t)
	seedTask(t, tasks, "T-0001", "ready", nil)

	result := callTool(t, srv, "claim_task", map[string]any{
		"task_id": "T-0001",
		"actor":   "alice",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out leaseOutput
	decodeResult(t, result, &out)
	if out.ClaimedBy != "alice" {
		t.Errorf("claimed_by = %s", out.ClaimedBy)
	}

	lease, err := leases.Load("T-0001")
	if err != nil || lease == nil {
		t.Fatalf("lease not persisted: %v", err)
	}
}

func TestClaimTaskAlreadyLocked(t *testing.T) {
	srv, tasks, _ := newTestServer(t)
	seedTask(t, tasks, "T-0001", "ready", nil)

	first := callTool(t, srv, "claim_task", map[string]any{"task_id": "T-0001", "actor": "alice"})
	if first.IsError {
		t.Fatalf("first claim failed: %s", extractText(first))
	}

	second := callTool(t, srv, "claim_task", map[string]any{"task_id": "T-0001", "actor": "bob"})
	if !second.IsError {
		t.Fatal("expected error for contested claim")
	}
	if !strings.Contains(extractText(second), "already locked") {
		t.Fatalf("error text = %s", extractText(second))
	}
}

func TestReleaseTask(t *testing.T) {
	srv, tasks, leases := newTestServer(t)
	seedTask(t, tasks, "T-0001", "ready", nil)
	if r := callTool(t, srv, "claim_task", map[string]any{"task_id": "T-0001", "actor": "alice"}); r.IsError {
		t.Fatalf("claim failed: %s", extractText(r))
	}

	result := callTool(t, srv, "release_task", map[string]any{
		"task_id": "T-0001",
		"actor":   "alice",
		"status":  "done",
	})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	if lease, err := leases.Load("T-0001"); err != nil || lease != nil {
		t.Fatalf("lock still present: %+v, %v", lease, err)
	}
	task, err := tasks.GetTask("T-0001")
	if err != nil {
		t.Fatalf("reloading task: %v", err)
	}
	if task.Status() != models.StatusDone {
		t.Errorf("status = %s, want done", task.Status())
	}
}

func TestValidateBoard(t *testing.T) {
	srv, tasks, _ := newTestServer(t)
	seedTask(t, tasks, "T-0001", "ready", map[string]any{"depends_on": []any{"T-0404"}})

	result := callTool(t, srv, "validate_board", map[string]any{})
	if result.IsError {
		t.Fatalf("expected success, got error: %s", extractText(result))
	}

	var out validateOutput
	decodeResult(t, result, &out)
	if out.OK {
		t.Fatal("expected validation failure")
	}
	found := false
	for _, e := range out.Errors {
		if strings.Contains(e, "T-0404") {
			found = true
		}
	}
	if !found {
		t.Fatalf("errors = %v", out.Errors)
	}
}
