package models

import "time"

// Lease is a time-bound exclusivity record granting one actor the right to
// work a task. Leases are stored separately from task records and correlated
// only by task id; expiry is advisory, compared against wall-clock time at
// call time.
type Lease struct {
	TaskID         string `json:"task_id"`
	ClaimedBy      string `json:"claimed_by"`
	ClaimedAt      string `json:"claimed_at"`
	LeaseSeconds   int    `json:"lease_seconds"`
	LeaseExpiresAt string `json:"lease_expires_at"`
	Branch         string `json:"branch,omitempty"`
	LastRenewedAt  string `json:"last_renewed_at,omitempty"`
}

// FormatTime renders a timestamp the way lease records store them:
// RFC 3339 in UTC with a trailing Z.
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ExpiresAt parses the lease expiry timestamp.
func (l *Lease) ExpiresAt() (time.Time, error) {
	return time.Parse(time.RFC3339, l.LeaseExpiresAt)
}

// Expired reports whether the lease no longer confers exclusivity at the
// given instant. A lease whose expiry cannot be parsed counts as expired.
func (l *Lease) Expired(now time.Time) bool {
	exp, err := l.ExpiresAt()
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
