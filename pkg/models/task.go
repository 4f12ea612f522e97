package models

import "strings"

// TaskType distinguishes plain tasks from epics that aggregate children.
type TaskType string

const (
	TypeTask TaskType = "task"
	TypeEpic TaskType = "epic"
)

// TaskStatus represents the current lifecycle state of a task.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusReady      TaskStatus = "ready"
	StatusInProgress TaskStatus = "in_progress"
	StatusBlocked    TaskStatus = "blocked"
	StatusReview     TaskStatus = "review"
	StatusDone       TaskStatus = "done"
)

// AllStatuses lists every allowed task status.
var AllStatuses = []TaskStatus{
	StatusTodo, StatusReady, StatusInProgress, StatusBlocked, StatusReview, StatusDone,
}

// ValidStatus reports whether s is one of the allowed task statuses.
func ValidStatus(s string) bool {
	for _, st := range AllStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

// Task represents one task record: the raw frontmatter mapping kept verbatim
// so serialization round-trips, plus the markdown body after the frontmatter
// block. Typed accessors read from the mapping rather than duplicating state.
type Task struct {
	ID          string
	Path        string
	Frontmatter map[string]any
	Body        string
	Archived    bool
}

// NormalizeOptional maps the ways an optional reference field can be "unset"
// (absent, nil, empty, or the literal string "null") onto the empty string.
// Every reader of owner/parent_epic style fields goes through this so all
// consumers agree on what unset means.
func NormalizeOptional(v any) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(toString(v))
	if s == "null" {
		return ""
	}
	return s
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func (t *Task) stringField(key string) string {
	v, ok := t.Frontmatter[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(toString(v))
}

func (t *Task) listField(key string) []string {
	v, ok := t.Frontmatter[key]
	if !ok || v == nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, strings.TrimSpace(toString(item)))
	}
	return out
}

// Status returns the task's lifecycle status as recorded in the frontmatter.
func (t *Task) Status() TaskStatus {
	return TaskStatus(t.stringField("status"))
}

// Title returns the task title, or "" when unset.
func (t *Task) Title() string {
	return t.stringField("title")
}

// Type returns the task type, defaulting to TypeTask when unset.
func (t *Task) Type() TaskType {
	if v := t.stringField("type"); v != "" {
		return TaskType(v)
	}
	return TypeTask
}

// Owner returns the task owner, or "" when unset.
func (t *Task) Owner() string {
	return NormalizeOptional(t.Frontmatter["owner"])
}

// ParentEpic returns the id of the epic this task belongs to, or "" when unset.
func (t *Task) ParentEpic() string {
	return NormalizeOptional(t.Frontmatter["parent_epic"])
}

// DependsOn returns the ordered list of task ids this task depends on.
func (t *Task) DependsOn() []string {
	return t.listField("depends_on")
}

// Children returns the child task ids. Only meaningful when Type is TypeEpic.
func (t *Task) Children() []string {
	return t.listField("children")
}

// Priority returns the task priority label, or "" when unset.
func (t *Task) Priority() string {
	return t.stringField("priority")
}

// Labels returns the task's labels.
func (t *Task) Labels() []string {
	return t.listField("labels")
}

// Acceptance returns the acceptance criteria.
func (t *Task) Acceptance() []string {
	return t.listField("acceptance")
}

// WithUpdates returns a copy of the task with the given frontmatter keys
// replaced. The receiver is not modified.
func (t *Task) WithUpdates(updates map[string]any) *Task {
	fm := make(map[string]any, len(t.Frontmatter)+len(updates))
	for k, v := range t.Frontmatter {
		fm[k] = v
	}
	for k, v := range updates {
		fm[k] = v
	}
	return &Task{
		ID:          t.ID,
		Path:        t.Path,
		Frontmatter: fm,
		Body:        t.Body,
		Archived:    t.Archived,
	}
}
