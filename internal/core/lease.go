package core

import (
	"fmt"
	"time"

	"github.com/patchkit/patchboard/internal/storage"
	"github.com/patchkit/patchboard/pkg/models"
)

// EventRecorder receives audit events from mutating operations. Recording is
// best-effort: implementations must not fail the operation.
type EventRecorder interface {
	Record(eventType, message string, data map[string]any)
}

// LeaseManager implements the claim/renew/release protocol over task and
// lease records. Lease state and task status are deliberately separate
// records: a lease can expire and be stolen without a third party rewriting
// the task, and the status rewrite happens only on explicit claim or
// release. Expiry is advisory wall-clock comparison; two actors racing
// between read and write is accepted and left to the surrounding git
// workflow to surface.
type LeaseManager interface {
	Claim(taskID, actor string, leaseSeconds int, allowStealExpired bool) (*models.Lease, error)
	Renew(taskID, actor string, leaseSeconds int) (*models.Lease, error)
	Release(taskID, actor string, force bool, newStatus string) error
}

type leaseManager struct {
	tasks  storage.TaskStore
	leases storage.LeaseStore
	events EventRecorder

	// branch supplies the advisory branch recorded on new leases; may be nil.
	branch func() string
	// now is the clock, injectable for tests.
	now func() time.Time
}

// NewLeaseManager creates a LeaseManager over the given stores. events and
// branch may be nil.
func NewLeaseManager(tasks storage.TaskStore, leases storage.LeaseStore, events EventRecorder, branch func() string) LeaseManager {
	return &leaseManager{
		tasks:  tasks,
		leases: leases,
		events: events,
		branch: branch,
		now:    time.Now,
	}
}

func (m *leaseManager) record(eventType, message string, data map[string]any) {
	if m.events != nil {
		m.events.Record(eventType, message, data)
	}
}

func (m *leaseManager) Claim(taskID, actor string, leaseSeconds int, allowStealExpired bool) (*models.Lease, error) {
	tasks, err := m.tasks.DiscoverTasks()
	if err != nil {
		return nil, err
	}
	task, ok := tasks[taskID]
	if !ok {
		return nil, fmt.Errorf("unknown task %q: %w", taskID, ErrNotFound)
	}
	if task.Status() == models.StatusDone {
		return nil, fmt.Errorf("task %q is done; refusing to claim: %w", taskID, ErrInvalidState)
	}

	// Dependency rule: every active dependency must be done. Dependencies
	// absent from the active set are archived, which counts as settled.
	for _, dep := range task.DependsOn() {
		depTask, active := tasks[dep]
		if active && depTask.Status() != models.StatusDone {
			return nil, fmt.Errorf("cannot claim %q: dependency %q is %q (must be done): %w",
				taskID, dep, depTask.Status(), ErrDependencyUnmet)
		}
	}

	now := m.now()
	existing, err := m.leases.Load(taskID)
	if err != nil {
		return nil, err
	}
	stolen := false
	if existing != nil {
		if !existing.Expired(now) {
			if existing.ClaimedBy == actor {
				return nil, fmt.Errorf("%q is already locked by you; use renew instead: %w", taskID, ErrAlreadyLocked)
			}
			return nil, fmt.Errorf("%q is already locked by %q until %s: %w",
				taskID, existing.ClaimedBy, existing.LeaseExpiresAt, ErrAlreadyLocked)
		}
		if !allowStealExpired {
			return nil, fmt.Errorf("%q has an expired lock; stealing disabled: %w", taskID, ErrLockExpiredNoSteal)
		}
		stolen = true
	}

	lease := &models.Lease{
		TaskID:         taskID,
		ClaimedBy:      actor,
		ClaimedAt:      models.FormatTime(now),
		LeaseSeconds:   leaseSeconds,
		LeaseExpiresAt: models.FormatTime(now.Add(time.Duration(leaseSeconds) * time.Second)),
		LastRenewedAt:  models.FormatTime(now),
	}
	if m.branch != nil {
		lease.Branch = m.branch()
	}

	updated := task.WithUpdates(map[string]any{
		"status":     string(models.StatusInProgress),
		"owner":      actor,
		"updated_at": now.UTC().Format("2006-01-02"),
	})
	if err := m.writePair(taskID, lease, updated); err != nil {
		return nil, err
	}

	eventType := "lease.claimed"
	if stolen {
		eventType = "lease.stolen"
	}
	m.record(eventType, fmt.Sprintf("%s claimed by %s", taskID, actor), map[string]any{
		"task_id": taskID, "actor": actor, "expires_at": lease.LeaseExpiresAt,
	})
	return lease, nil
}

// writePair persists the lease and the task record together. The filesystem
// cannot make the two writes atomic, so a failure after the first write is
// reported as a PartialWriteError naming which half landed.
func (m *leaseManager) writePair(taskID string, lease *models.Lease, task *models.Task) error {
	if err := m.leases.Save(lease); err != nil {
		return &PartialWriteError{TaskID: taskID, Err: err}
	}
	if err := m.tasks.SaveTask(task); err != nil {
		return &PartialWriteError{TaskID: taskID, LeaseDone: true, Err: err}
	}
	return nil
}

func (m *leaseManager) Renew(taskID, actor string, leaseSeconds int) (*models.Lease, error) {
	lease, err := m.leases.Load(taskID)
	if err != nil {
		return nil, err
	}
	if lease == nil {
		return nil, fmt.Errorf("no lock exists for %q (claim first): %w", taskID, ErrNotFound)
	}
	if lease.ClaimedBy != actor {
		return nil, fmt.Errorf("lock for %q is owned by %q, not %q: %w", taskID, lease.ClaimedBy, actor, ErrNotOwner)
	}
	now := m.now()
	// Renew never resurrects an expired lease: the steal decision must be
	// made explicitly via claim.
	if lease.Expired(now) {
		return nil, fmt.Errorf("lock for %q is expired; re-claim instead of renew: %w", taskID, ErrLeaseExpired)
	}

	lease.LeaseSeconds = leaseSeconds
	lease.LeaseExpiresAt = models.FormatTime(now.Add(time.Duration(leaseSeconds) * time.Second))
	lease.LastRenewedAt = models.FormatTime(now)
	if err := m.leases.Save(lease); err != nil {
		return nil, err
	}

	m.record("lease.renewed", fmt.Sprintf("%s renewed by %s", taskID, actor), map[string]any{
		"task_id": taskID, "actor": actor, "expires_at": lease.LeaseExpiresAt,
	})
	return lease, nil
}

func (m *leaseManager) Release(taskID, actor string, force bool, newStatus string) error {
	lease, err := m.leases.Load(taskID)
	if err != nil {
		return err
	}
	if lease == nil {
		return fmt.Errorf("no lock exists for %q: %w", taskID, ErrNotFound)
	}
	if lease.ClaimedBy != actor && !force {
		return fmt.Errorf("lock for %q is owned by %q, not %q (use --force to override): %w",
			taskID, lease.ClaimedBy, actor, ErrNotOwner)
	}
	if newStatus != "" && !models.ValidStatus(newStatus) {
		return fmt.Errorf("invalid status %q: %w", newStatus, ErrInvalidStatus)
	}

	if err := m.leases.Delete(taskID); err != nil {
		return &PartialWriteError{TaskID: taskID, Err: err}
	}

	// The lease is gone regardless; a missing task record is not an error
	// here, but a failed task write is a partial result.
	tasks, err := m.tasks.DiscoverTasks()
	if err != nil {
		return &PartialWriteError{TaskID: taskID, LeaseDone: true, Err: err}
	}
	if task, ok := tasks[taskID]; ok {
		updates := map[string]any{
			"updated_at": m.now().UTC().Format("2006-01-02"),
		}
		if newStatus != "" {
			// Owner is kept even when the status becomes done, for audit.
			updates["status"] = newStatus
		}
		if err := m.tasks.SaveTask(task.WithUpdates(updates)); err != nil {
			return &PartialWriteError{TaskID: taskID, LeaseDone: true, Err: err}
		}
	}

	m.record("lease.released", fmt.Sprintf("%s released by %s", taskID, actor), map[string]any{
		"task_id": taskID, "actor": actor, "new_status": newStatus, "forced": force,
	})
	return nil
}
