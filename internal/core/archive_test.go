package core

import (
	"errors"
	"testing"
	"time"

	"github.com/patchkit/patchboard/internal/storage"
	"github.com/patchkit/patchboard/pkg/models"
)

func newTestArchiver(t *testing.T) (*Archiver, storage.TaskStore, storage.LeaseStore, *captureRecorder) {
	t.Helper()
	base := t.TempDir()
	tasks := storage.NewTaskStore(base)
	leases := storage.NewLeaseStore(base)
	rec := &captureRecorder{}
	a := NewArchiver(tasks, leases, rec)
	a.now = func() time.Time { return testClock }
	return a, tasks, leases, rec
}

func TestArchive_MovesTaskAndRecordsEvent(t *testing.T) {
	a, tasks, _, rec := newTestArchiver(t)
	seedTask(t, tasks, "T-0001", "done", nil)

	if err := a.Archive("T-0001"); err != nil {
		t.Fatalf("archiving: %v", err)
	}

	active, err := tasks.DiscoverTasks()
	if err != nil {
		t.Fatalf("discovering active: %v", err)
	}
	if _, ok := active["T-0001"]; ok {
		t.Fatal("task still in active set")
	}
	all, err := tasks.DiscoverAllTasks()
	if err != nil {
		t.Fatalf("discovering all: %v", err)
	}
	if task, ok := all["T-0001"]; !ok || !task.Archived {
		t.Fatal("task not resolvable as archived")
	}
	if got := rec.types(); len(got) != 1 || got[0] != "task.archived" {
		t.Fatalf("events = %v", got)
	}
}

func TestArchive_UnknownAndAlreadyArchived(t *testing.T) {
	a, tasks, _, _ := newTestArchiver(t)
	seedTask(t, tasks, "T-0001", "done", nil)

	if err := a.Archive("T-9999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown task: err = %v, want ErrNotFound", err)
	}

	if err := a.Archive("T-0001"); err != nil {
		t.Fatalf("archiving: %v", err)
	}
	if err := a.Archive("T-0001"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double archive: err = %v, want ErrInvalidState", err)
	}
}

func TestArchive_RefusesActiveLock(t *testing.T) {
	a, tasks, leases, _ := newTestArchiver(t)
	seedTask(t, tasks, "T-0001", "in_progress", nil)
	err := leases.Save(&models.Lease{
		TaskID:         "T-0001",
		ClaimedBy:      "alice",
		ClaimedAt:      "2026-08-28T09:30:00Z",
		LeaseSeconds:   3600,
		LeaseExpiresAt: "2026-08-28T10:30:00Z",
	})
	if err != nil {
		t.Fatalf("saving lease: %v", err)
	}

	if err := a.Archive("T-0001"); !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("err = %v, want ErrAlreadyLocked", err)
	}
}

func TestArchive_RemovesStaleLock(t *testing.T) {
	a, tasks, leases, _ := newTestArchiver(t)
	seedTask(t, tasks, "T-0001", "done", nil)
	err := leases.Save(&models.Lease{
		TaskID:         "T-0001",
		ClaimedBy:      "alice",
		ClaimedAt:      "2026-08-28T08:00:00Z",
		LeaseSeconds:   3600,
		LeaseExpiresAt: "2026-08-28T09:00:00Z",
	})
	if err != nil {
		t.Fatalf("saving lease: %v", err)
	}

	if err := a.Archive("T-0001"); err != nil {
		t.Fatalf("archiving with stale lock: %v", err)
	}
	lease, err := leases.Load("T-0001")
	if err != nil || lease != nil {
		t.Fatalf("stale lock not removed: %+v, %v", lease, err)
	}
}

func TestUnarchive_RestoresTask(t *testing.T) {
	a, tasks, _, rec := newTestArchiver(t)
	seedTask(t, tasks, "T-0001", "done", nil)
	if err := a.Archive("T-0001"); err != nil {
		t.Fatalf("archiving: %v", err)
	}

	if err := a.Unarchive("T-0001"); err != nil {
		t.Fatalf("unarchiving: %v", err)
	}
	active, err := tasks.DiscoverTasks()
	if err != nil {
		t.Fatalf("discovering active: %v", err)
	}
	if _, ok := active["T-0001"]; !ok {
		t.Fatal("task not restored to active set")
	}
	if got := rec.types(); got[len(got)-1] != "task.unarchived" {
		t.Fatalf("events = %v", got)
	}
}

func TestUnarchive_Failures(t *testing.T) {
	a, tasks, _, _ := newTestArchiver(t)
	seedTask(t, tasks, "T-0001", "todo", nil)

	if err := a.Unarchive("T-9999"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown task: err = %v, want ErrNotFound", err)
	}
	if err := a.Unarchive("T-0001"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("active task: err = %v, want ErrInvalidState", err)
	}
}
