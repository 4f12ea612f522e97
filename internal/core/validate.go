package core

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/patchkit/patchboard/internal/storage"
	"github.com/patchkit/patchboard/pkg/models"
)

// Report holds the diagnostics accumulated by one validation run. Errors
// affect the exit code; warnings are advisory and never do on their own.
type Report struct {
	Errors   []string
	Warnings []string
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// BoardInput carries the board configuration into a validation run. Doc is
// the raw decoded document; LoadErr is set when the board could not be read.
type BoardInput struct {
	Doc     any
	LoadErr error
}

// Validate runs every invariant check over the task set and returns the full
// report. It is a pure function of its inputs: no records are written and
// lease records are never read (lease state and task status are decoupled by
// design, so their agreement is deliberately not a validated invariant).
//
// Stages run in a fixed order -- board schema, task schema, folder/id
// convention, status enum, dependency existence, dependency readiness, epic
// reference existence, epic bidirectional consistency, cycle detection --
// and all diagnostics are collected rather than failing fast. Cycle
// detection alone stops at the first cycle found, so one underlying cycle
// does not produce a report per member epic.
func Validate(active, all map[string]*models.Task, board BoardInput, schemas *SchemaSet) Report {
	var report Report

	validateBoard(&report, board, schemas)

	ids := storage.SortedIDs(active)

	for _, id := range ids {
		task := active[id]

		if folder := filepath.Base(filepath.Dir(task.Path)); folder != id {
			// The id in the record is authoritative; the folder name is a
			// convention.
			report.warnf("%s: folder name %q does not match frontmatter id %q", id, folder, id)
		}

		if schemas.Task != nil {
			for _, msg := range validateAgainst(schemas.Task, task.Frontmatter) {
				report.errorf("%s: invalid frontmatter: %s", id, msg)
			}
		}

		if st := string(task.Status()); !models.ValidStatus(st) {
			report.errorf("%s: invalid status %q", id, st)
		}

		for _, dep := range task.DependsOn() {
			if _, ok := all[dep]; !ok {
				report.errorf("%s: depends_on references missing task %q", id, dep)
			}
		}
	}

	validateReadiness(&report, active, all, ids)
	validateEpicRefs(&report, active, all, ids)
	validateEpicBidirectional(&report, active, ids)
	validateEpicCycles(&report, active, ids)

	return report
}

func validateBoard(report *Report, board BoardInput, schemas *SchemaSet) {
	if schemas.TaskErr != nil {
		// Task records can still be checked structurally without a schema.
		report.warnf("skipping task schema checks: %v", schemas.TaskErr)
	}
	if board.LoadErr != nil {
		report.errorf("%v", board.LoadErr)
		return
	}
	if schemas.BoardErr != nil {
		report.errorf("%v", schemas.BoardErr)
		return
	}
	if schemas.Board != nil {
		for _, msg := range validateAgainst(schemas.Board, board.Doc) {
			report.errorf("invalid board config: %s", msg)
		}
	}
}

// validateReadiness enforces the readiness rule: a task may not be ready or
// in_progress while an active dependency is unfinished. Archived
// dependencies are settled and always satisfy the rule.
func validateReadiness(report *Report, active, all map[string]*models.Task, ids []string) {
	for _, id := range ids {
		task := active[id]
		st := task.Status()
		if st != models.StatusReady && st != models.StatusInProgress {
			continue
		}
		for _, dep := range task.DependsOn() {
			depTask, known := all[dep]
			if !known || depTask.Archived {
				continue
			}
			if depTask.Status() != models.StatusDone {
				report.errorf("%s: status %q requires deps done, but %q is %q",
					id, st, dep, depTask.Status())
			}
		}
	}
}

func validateEpicRefs(report *Report, active, all map[string]*models.Task, ids []string) {
	for _, id := range ids {
		task := active[id]

		if parent := task.ParentEpic(); parent != "" {
			if _, ok := all[parent]; !ok {
				report.errorf("%s: parent_epic references missing task %q", id, parent)
			} else if parentTask, isActive := active[parent]; isActive && parentTask.Type() != models.TypeEpic {
				report.warnf("%s: parent_epic %q has type %q, expected %q",
					id, parent, parentTask.Type(), models.TypeEpic)
			}
		}

		for _, child := range task.Children() {
			if _, ok := all[child]; !ok {
				report.errorf("%s: children references missing task %q", id, child)
			}
		}
	}
}

// validateEpicBidirectional checks that children lists and parent_epic
// back-references agree. Both directions are warnings: drift here does not
// affect execution order, only bookkeeping.
func validateEpicBidirectional(report *Report, active map[string]*models.Task, ids []string) {
	for _, id := range ids {
		task := active[id]
		if task.Type() != models.TypeEpic {
			continue
		}

		children := task.Children()
		for _, child := range children {
			childTask, ok := active[child]
			if !ok {
				continue
			}
			if childTask.ParentEpic() != id {
				report.warnf("%s: child %q has parent_epic=%q, expected %q",
					id, child, childTask.ParentEpic(), id)
			}
		}

		childSet := make(map[string]struct{}, len(children))
		for _, child := range children {
			childSet[child] = struct{}{}
		}
		for _, otherID := range ids {
			if active[otherID].ParentEpic() != id {
				continue
			}
			if _, listed := childSet[otherID]; !listed {
				report.warnf("%s: task %q has parent_epic=%q but is not in children list", id, otherID, id)
			}
		}
	}
}

// validateEpicCycles walks the epic-contains-child-epic relation and reports
// the first cycle found. Non-epic children are leaves and cannot close a
// cycle.
func validateEpicCycles(report *Report, active map[string]*models.Task, ids []string) {
	for _, id := range ids {
		if active[id].Type() != models.TypeEpic {
			continue
		}
		if cycle := findEpicCycle(id, active); cycle != nil {
			report.errorf("%s: circular epic reference detected: %s", id, strings.Join(cycle, " -> "))
			return
		}
	}
}

// findEpicCycle runs a depth-first search from start using an explicit stack.
// Each frame carries its own path snapshot, so sibling branches cannot alias
// each other's state. A node repeated on its own path is a cycle; the
// returned slice runs from the first occurrence through the repeat,
// inclusive.
func findEpicCycle(start string, tasks map[string]*models.Task) []string {
	type frame struct {
		id   string
		path []string
	}
	stack := []frame{{id: start}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for i, seen := range f.path {
			if seen == f.id {
				cycle := append([]string{}, f.path[i:]...)
				return append(cycle, f.id)
			}
		}

		task, ok := tasks[f.id]
		if !ok || task.Type() != models.TypeEpic {
			continue
		}
		path := make([]string, 0, len(f.path)+1)
		path = append(path, f.path...)
		path = append(path, f.id)

		for _, child := range task.Children() {
			if childTask, ok := tasks[child]; ok && childTask.Type() == models.TypeEpic {
				stack = append(stack, frame{id: child, path: path})
			}
		}
	}
	return nil
}
