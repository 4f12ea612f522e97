package core

import (
	"strings"

	"github.com/patchkit/patchboard/internal/storage"
	"github.com/patchkit/patchboard/pkg/models"
)

// snippetContext is the number of characters of surrounding context kept on
// each side of a match.
const snippetContext = 50

// SearchFilter narrows a search to tasks matching every non-empty field.
type SearchFilter struct {
	Status   string
	Priority string
	Owner    string
	Label    string
}

// SearchResult is one matching task. MatchField and MatchContext are empty
// when the query was empty (filter-only search).
type SearchResult struct {
	ID           string
	Title        string
	Status       models.TaskStatus
	Priority     string
	Owner        string
	Labels       []string
	Path         string
	MatchField   string
	MatchContext string
}

// Search scans tasks in deterministic id order, applies the filter, then
// tests the query case-insensitively against title, context, plan, notes,
// and acceptance criteria, in that order, stopping at the first field that
// matches. An empty query returns all filtered tasks up to limit.
func Search(tasks map[string]*models.Task, query string, filter SearchFilter, limit int) []SearchResult {
	queryLower := strings.ToLower(query)
	var results []SearchResult

	for _, id := range storage.SortedIDs(tasks) {
		task := tasks[id]
		if !matchesFilter(task, filter) {
			continue
		}

		result := SearchResult{
			ID:       id,
			Title:    task.Title(),
			Status:   task.Status(),
			Priority: task.Priority(),
			Owner:    task.Owner(),
			Labels:   task.Labels(),
			Path:     task.Path,
		}

		if queryLower != "" {
			field, context := matchTask(task, queryLower, query)
			if field == "" {
				continue
			}
			result.MatchField = field
			result.MatchContext = context
		}

		results = append(results, result)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results
}

func matchesFilter(task *models.Task, filter SearchFilter) bool {
	if filter.Status != "" && string(task.Status()) != filter.Status {
		return false
	}
	if filter.Priority != "" && task.Priority() != filter.Priority {
		return false
	}
	if filter.Owner != "" && task.Owner() != filter.Owner {
		return false
	}
	if filter.Label != "" {
		found := false
		for _, label := range task.Labels() {
			if label == filter.Label {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// matchTask tests each searchable field in priority order and returns the
// first match: the field name and a display snippet.
func matchTask(task *models.Task, queryLower, query string) (field, context string) {
	if strings.Contains(strings.ToLower(task.Title()), queryLower) {
		return "title", task.Title()
	}

	sections := task.Sections()
	for _, name := range []string{"context", "plan", "notes"} {
		if snippet := extractMatchContext(sections[name], query); snippet != "" {
			return name, snippet
		}
	}

	for _, criterion := range task.Acceptance() {
		if strings.Contains(strings.ToLower(criterion), queryLower) {
			return "acceptance", criterion
		}
	}
	return "", ""
}

// extractMatchContext returns a snippet of text around the first
// case-insensitive occurrence of query, with ellipsis markers on truncated
// sides, or "" when there is no match.
func extractMatchContext(text, query string) string {
	if text == "" || query == "" {
		return ""
	}
	pos := strings.Index(strings.ToLower(text), strings.ToLower(query))
	if pos < 0 {
		return ""
	}

	start := pos - snippetContext
	if start < 0 {
		start = 0
	}
	end := pos + len(query) + snippetContext
	if end > len(text) {
		end = len(text)
	}

	snippet := text[start:end]
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(text) {
		snippet = snippet + "..."
	}
	return snippet
}
