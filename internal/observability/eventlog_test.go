package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestLog(t *testing.T) (EventLog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("opening event log: %v", err)
	}
	t.Cleanup(func() { log.Close() })
	return log, path
}

func TestEventLog_WriteAppendsJSONL(t *testing.T) {
	log, path := newTestLog(t)

	events := []Event{
		{Type: "lease.claimed", Message: "T-0001 claimed by alice"},
		{Type: "lease.released", Message: "T-0001 released by alice", Data: map[string]any{"task_id": "T-0001"}},
	}
	for _, e := range events {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("line count = %d, want 2", len(lines))
	}

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("event count = %d, want 2", len(got))
	}
	if got[0].Time.IsZero() {
		t.Fatal("write did not stamp the event time")
	}
	if got[1].Data["task_id"] != "T-0001" {
		t.Fatalf("data = %v", got[1].Data)
	}
}

func TestEventLog_ReadFilters(t *testing.T) {
	log, _ := newTestLog(t)

	early := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	late := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	for _, e := range []Event{
		{Time: early, Type: "lease.claimed", Message: "old claim"},
		{Time: late, Type: "lease.claimed", Message: "new claim"},
		{Time: late, Type: "task.archived", Message: "archive"},
	} {
		if err := log.Write(e); err != nil {
			t.Fatalf("writing event: %v", err)
		}
	}

	cutoff := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	got, err := log.Read(EventFilter{Since: &cutoff})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("since filter: event count = %d, want 2", len(got))
	}

	got, err = log.Read(EventFilter{Type: "task.archived"})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 1 || got[0].Message != "archive" {
		t.Fatalf("type filter: events = %+v", got)
	}
}

func TestEventLog_SkipsUndecodableLines(t *testing.T) {
	log, path := newTestLog(t)
	if err := log.Write(Event{Type: "lease.claimed", Message: "good"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("opening log for corruption: %v", err)
	}
	if _, err := f.WriteString("not json at all\n"); err != nil {
		t.Fatalf("appending junk: %v", err)
	}
	f.Close()
	if err := log.Write(Event{Type: "lease.released", Message: "also good"}); err != nil {
		t.Fatalf("writing event: %v", err)
	}

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("event count = %d, want 2 (junk line skipped)", len(got))
	}
}

func TestEventLog_ReadMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	log, err := NewJSONLEventLog(path)
	if err != nil {
		t.Fatalf("opening event log: %v", err)
	}
	defer log.Close()
	os.Remove(path)

	got, err := log.Read(EventFilter{})
	if err != nil {
		t.Fatalf("reading events: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("event count = %d, want 0", len(got))
	}
}
