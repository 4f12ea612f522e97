// Package core contains the business logic for patchboard: the lease-based
// claim protocol, the consistency validator, search and index generation,
// archival, and tool configuration.
package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lease protocol and archival. Callers classify
// failures with errors.Is; the wrapped message carries the offending id and
// the relevant values (holder, expiry, dependency status).
var (
	// ErrNotFound reports an unknown task id or a missing lease.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState reports an operation against a task in a terminal state.
	ErrInvalidState = errors.New("invalid state")
	// ErrDependencyUnmet reports a claim against a task whose active
	// dependencies are not all done.
	ErrDependencyUnmet = errors.New("dependency not done")
	// ErrAlreadyLocked reports an unexpired lease held on the task.
	ErrAlreadyLocked = errors.New("already locked")
	// ErrLockExpiredNoSteal reports an expired lease that may not be stolen.
	ErrLockExpiredNoSteal = errors.New("expired lock may not be stolen")
	// ErrNotOwner reports an actor mismatch on renew or release.
	ErrNotOwner = errors.New("not lock owner")
	// ErrLeaseExpired reports a renew against an already expired lease.
	ErrLeaseExpired = errors.New("lease expired")
	// ErrInvalidStatus reports a status outside the allowed set.
	ErrInvalidStatus = errors.New("invalid status")
)

// PartialWriteError reports a claim or release that completed one of its two
// record writes but failed on the other. The repository is left inconsistent
// but recoverable: external tooling can reconcile by committing or reverting
// the half that succeeded. The filesystem gives no multi-file atomicity, so
// this is surfaced instead of assumed away.
type PartialWriteError struct {
	TaskID    string
	LeaseDone bool
	TaskDone  bool
	Err       error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write for %s (lease done: %v, task done: %v): %v",
		e.TaskID, e.LeaseDone, e.TaskDone, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
