package models

// LockInfo is the denormalized lease state embedded in index entries.
// Expired is computed at generation time.
type LockInfo struct {
	ClaimedBy      string `json:"claimed_by"`
	LeaseExpiresAt string `json:"lease_expires_at"`
	Expired        bool   `json:"expired"`
}

// TaskSummary is one task's denormalized entry in the generated index.
type TaskSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
	Owner      string    `json:"owner,omitempty"`
	Labels     []string  `json:"labels"`
	DependsOn  []string  `json:"depends_on"`
	Acceptance []string  `json:"acceptance"`
	Path       string    `json:"path"`
	Lock       *LockInfo `json:"lock"`
}

// BoardIndex is the fully regenerated read projection of all active tasks,
// written to the state directory for external consumers.
type BoardIndex struct {
	GeneratedAt string        `json:"generated_at"`
	Tasks       []TaskSummary `json:"tasks"`
}
