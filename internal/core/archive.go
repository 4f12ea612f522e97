package core

import (
	"fmt"
	"time"

	"github.com/patchkit/patchboard/internal/storage"
)

// Archiver moves task folders between the active partition and the archive.
// Archived tasks stay resolvable for dependency and parent lookups but leave
// active validation and discovery.
type Archiver struct {
	tasks  storage.TaskStore
	leases storage.LeaseStore
	events EventRecorder

	now func() time.Time
}

// NewArchiver creates an Archiver over the given stores. events may be nil.
func NewArchiver(tasks storage.TaskStore, leases storage.LeaseStore, events EventRecorder) *Archiver {
	return &Archiver{tasks: tasks, leases: leases, events: events, now: time.Now}
}

// Archive moves a task to the archive partition. A task under an unexpired
// lease cannot be archived; a leftover expired lock file is removed after
// the move (best effort).
func (a *Archiver) Archive(taskID string) error {
	tasks, err := a.tasks.DiscoverTasks()
	if err != nil {
		return err
	}
	if _, ok := tasks[taskID]; !ok {
		all, err := a.tasks.DiscoverAllTasks()
		if err == nil {
			if t, archived := all[taskID]; archived && t.Archived {
				return fmt.Errorf("task %q is already archived: %w", taskID, ErrInvalidState)
			}
		}
		return fmt.Errorf("unknown task %q: %w", taskID, ErrNotFound)
	}

	lease, err := a.leases.Load(taskID)
	if err != nil {
		return err
	}
	if lease != nil && !lease.Expired(a.now()) {
		return fmt.Errorf("cannot archive %q: task has active lock by %q until %s: %w",
			taskID, lease.ClaimedBy, lease.LeaseExpiresAt, ErrAlreadyLocked)
	}

	if err := a.tasks.ArchiveTask(taskID); err != nil {
		return err
	}
	if lease != nil {
		// Expired lock left behind; its task is gone from the active set.
		if err := a.leases.Delete(taskID); err != nil {
			a.record("task.archived", fmt.Sprintf("stale lock for %s not removed: %v", taskID, err), taskID)
			return nil
		}
	}
	a.record("task.archived", fmt.Sprintf("%s archived", taskID), taskID)
	return nil
}

// Unarchive restores a task from the archive partition.
func (a *Archiver) Unarchive(taskID string) error {
	all, err := a.tasks.DiscoverAllTasks()
	if err != nil {
		return err
	}
	task, ok := all[taskID]
	if !ok {
		return fmt.Errorf("archived task %q not found: %w", taskID, ErrNotFound)
	}
	if !task.Archived {
		return fmt.Errorf("task %q is not archived (it exists in active tasks): %w", taskID, ErrInvalidState)
	}

	if err := a.tasks.UnarchiveTask(taskID); err != nil {
		return err
	}
	a.record("task.unarchived", fmt.Sprintf("%s unarchived", taskID), taskID)
	return nil
}

func (a *Archiver) record(eventType, message, taskID string) {
	if a.events != nil {
		a.events.Record(eventType, message, map[string]any{"task_id": taskID})
	}
}
