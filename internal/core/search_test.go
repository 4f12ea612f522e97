package core

import (
	"strings"
	"testing"

	"github.com/patchkit/patchboard/pkg/models"
)

func searchFixture() map[string]*models.Task {
	auth := makeTask("T-0001", "in_progress", map[string]any{
		"title":    "Implement auth middleware",
		"priority": "high",
		"owner":    "alice",
		"labels":   []any{"backend", "security"},
	})
	tokens := makeTask("T-0002", "in_progress", map[string]any{
		"title": "Rotate signing keys",
	})
	tokens.Body = "## Context\n\nThe auth tokens expire too early and sessions drop.\n\n## Plan\n\nRotate keys weekly.\n"
	unrelated := makeTask("T-0003", "ready", map[string]any{
		"title":  "Update changelog",
		"owner":  "alice",
		"labels": []any{"docs"},
	})
	acceptance := makeTask("T-0004", "todo", map[string]any{
		"title":      "Harden login route",
		"acceptance": []any{"Requests without auth headers get 401"},
	})
	return taskSet(auth, tokens, unrelated, acceptance)
}

func resultIDs(results []SearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}

func TestSearch_QueryWithStatusFilter(t *testing.T) {
	results := Search(searchFixture(), "auth", SearchFilter{Status: "in_progress"}, 20)
	if got := resultIDs(results); strings.Join(got, ",") != "T-0001,T-0002" {
		t.Fatalf("result ids = %v", got)
	}
	if results[0].MatchField != "title" {
		t.Fatalf("T-0001 match field = %q, want title", results[0].MatchField)
	}
	if results[1].MatchField != "context" {
		t.Fatalf("T-0002 match field = %q, want context", results[1].MatchField)
	}
}

func TestSearch_FieldPriorityOrder(t *testing.T) {
	// "auth" appears in T-0001's title, T-0002's context section, and
	// T-0004's acceptance criteria; the reported field follows priority.
	results := Search(searchFixture(), "auth", SearchFilter{}, 20)
	byID := map[string]SearchResult{}
	for _, r := range results {
		byID[r.ID] = r
	}
	if byID["T-0001"].MatchField != "title" {
		t.Fatalf("T-0001 match field = %q", byID["T-0001"].MatchField)
	}
	if byID["T-0002"].MatchField != "context" {
		t.Fatalf("T-0002 match field = %q", byID["T-0002"].MatchField)
	}
	if byID["T-0004"].MatchField != "acceptance" {
		t.Fatalf("T-0004 match field = %q", byID["T-0004"].MatchField)
	}
	if _, ok := byID["T-0003"]; ok {
		t.Fatal("non-matching task returned")
	}
}

func TestSearch_CaseInsensitive(t *testing.T) {
	results := Search(searchFixture(), "AUTH", SearchFilter{}, 20)
	if len(results) == 0 {
		t.Fatal("uppercase query found nothing")
	}
}

func TestSearch_EmptyQueryFilterOnly(t *testing.T) {
	results := Search(searchFixture(), "", SearchFilter{Owner: "alice"}, 20)
	if got := resultIDs(results); strings.Join(got, ",") != "T-0001,T-0003" {
		t.Fatalf("result ids = %v", got)
	}
	for _, r := range results {
		if r.MatchField != "" || r.MatchContext != "" {
			t.Fatalf("filter-only result carries match info: %+v", r)
		}
	}
}

func TestSearch_LabelFilter(t *testing.T) {
	results := Search(searchFixture(), "", SearchFilter{Label: "security"}, 20)
	if got := resultIDs(results); strings.Join(got, ",") != "T-0001" {
		t.Fatalf("result ids = %v", got)
	}
}

func TestSearch_LimitTruncates(t *testing.T) {
	results := Search(searchFixture(), "", SearchFilter{}, 2)
	if got := resultIDs(results); strings.Join(got, ",") != "T-0001,T-0002" {
		t.Fatalf("result ids = %v", got)
	}
}

func TestExtractMatchContext(t *testing.T) {
	long := strings.Repeat("a", 80) + " needle " + strings.Repeat("b", 80)

	tests := []struct {
		name  string
		text  string
		query string
		want  string
	}{
		{"no match", "nothing here", "needle", ""},
		{"short text untruncated", "a needle in text", "needle", "a needle in text"},
		{"both sides truncated", long, "needle",
			"..." + strings.Repeat("a", 49) + " needle " + strings.Repeat("b", 49) + "..."},
		{"match at start", "needle " + strings.Repeat("b", 80), "needle",
			"needle " + strings.Repeat("b", 49) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractMatchContext(tt.text, tt.query); got != tt.want {
				t.Fatalf("snippet = %q, want %q", got, tt.want)
			}
		})
	}
}
