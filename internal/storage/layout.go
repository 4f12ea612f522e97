// Package storage implements the record store: task records as markdown with
// YAML frontmatter, lease records as JSON documents, and the board
// configuration, all under a repo-local .patchboard/ directory. All writes
// are whole-file overwrites; a crash mid-write can corrupt a single record
// but never its neighbors.
package storage

import "path/filepath"

// Directory and file layout under <base>/.patchboard/.

func PatchboardDir(basePath string) string {
	return filepath.Join(basePath, ".patchboard")
}

func TasksDir(basePath string) string {
	return filepath.Join(PatchboardDir(basePath), "tasks")
}

func ArchivedDir(basePath string) string {
	return filepath.Join(TasksDir(basePath), ".archived")
}

func LocksDir(basePath string) string {
	return filepath.Join(PatchboardDir(basePath), "state", "locks")
}

func BoardPath(basePath string) string {
	return filepath.Join(PatchboardDir(basePath), "planning", "boards", "kanban.yaml")
}

func SchemasDir(basePath string) string {
	return filepath.Join(PatchboardDir(basePath), "schemas")
}

func IndexPath(basePath string) string {
	return filepath.Join(PatchboardDir(basePath), "state", "index.json")
}

func EventLogPath(basePath string) string {
	return filepath.Join(PatchboardDir(basePath), "state", "events.jsonl")
}
