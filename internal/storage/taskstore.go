package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/patchkit/patchboard/pkg/models"
)

// TaskStore defines the interface for loading and saving task records under
// the tasks partition and its .archived sibling.
type TaskStore interface {
	// DiscoverTasks loads all active tasks, keyed by id.
	DiscoverTasks() (map[string]*models.Task, error)
	// DiscoverAllTasks merges active and archived tasks. Active entries win
	// on id collision; archived tasks are marked Archived.
	DiscoverAllTasks() (map[string]*models.Task, error)
	// GetTask loads a single task by id, active partition first.
	GetTask(id string) (*models.Task, error)
	// SaveTask overwrites the task record at its path.
	SaveTask(task *models.Task) error
	// ArchiveTask moves a task folder from the active partition to .archived.
	ArchiveTask(id string) error
	// UnarchiveTask moves a task folder from .archived back to the active
	// partition.
	UnarchiveTask(id string) error
	// TaskPath returns the record path a task with the given id would occupy
	// in the active partition.
	TaskPath(id string) string
}

type fileTaskStore struct {
	basePath string
}

// NewTaskStore creates a TaskStore rooted at basePath.
func NewTaskStore(basePath string) TaskStore {
	return &fileTaskStore{basePath: basePath}
}

func (s *fileTaskStore) TaskPath(id string) string {
	return filepath.Join(TasksDir(s.basePath), id, "task.md")
}

func (s *fileTaskStore) archivedPath(id string) string {
	return filepath.Join(ArchivedDir(s.basePath), id, "task.md")
}

// discoverIn enumerates task folders under dir. Folder names starting with
// "_" (templates) or "." (hidden, including .archived) are skipped, as are
// folders without a task.md.
func discoverIn(dir string, archived bool) (map[string]*models.Task, error) {
	tasks := map[string]*models.Task{}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return tasks, nil
		}
		return nil, fmt.Errorf("reading task directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name, "task.md")
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading task record %s: %w", path, err)
		}
		fm, body, err := ParseFrontmatter(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing task record %s: %w", path, err)
		}
		id := strings.TrimSpace(models.NormalizeOptional(fm["id"]))
		if id == "" {
			id = name
		}
		tasks[id] = &models.Task{
			ID:          id,
			Path:        path,
			Frontmatter: fm,
			Body:        body,
			Archived:    archived,
		}
	}
	return tasks, nil
}

func (s *fileTaskStore) DiscoverTasks() (map[string]*models.Task, error) {
	return discoverIn(TasksDir(s.basePath), false)
}

func (s *fileTaskStore) DiscoverAllTasks() (map[string]*models.Task, error) {
	tasks, err := s.DiscoverTasks()
	if err != nil {
		return nil, err
	}
	archivedTasks, err := discoverIn(ArchivedDir(s.basePath), true)
	if err != nil {
		return nil, err
	}
	// Active entries win on collision; none are expected, but an archived
	// record is semantically settled so the active one is authoritative.
	for id, task := range archivedTasks {
		if _, seen := tasks[id]; !seen {
			tasks[id] = task
		}
	}
	return tasks, nil
}

func (s *fileTaskStore) GetTask(id string) (*models.Task, error) {
	for _, candidate := range []struct {
		path     string
		archived bool
	}{
		{s.TaskPath(id), false},
		{s.archivedPath(id), true},
	} {
		raw, err := os.ReadFile(candidate.path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("reading task record %s: %w", candidate.path, err)
		}
		fm, body, err := ParseFrontmatter(string(raw))
		if err != nil {
			return nil, fmt.Errorf("parsing task record %s: %w", candidate.path, err)
		}
		return &models.Task{
			ID:          id,
			Path:        candidate.path,
			Frontmatter: fm,
			Body:        body,
			Archived:    candidate.archived,
		}, nil
	}
	return nil, fmt.Errorf("task %s not found", id)
}

func (s *fileTaskStore) SaveTask(task *models.Task) error {
	path := task.Path
	if path == "" {
		path = s.TaskPath(task.ID)
	}
	content, err := RenderTask(task.Frontmatter, task.Body)
	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("saving task %s: creating directory: %w", task.ID, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("saving task %s: writing file: %w", task.ID, err)
	}
	return nil
}

func (s *fileTaskStore) ArchiveTask(id string) error {
	src := filepath.Join(TasksDir(s.basePath), id)
	dest := filepath.Join(ArchivedDir(s.basePath), id)
	return moveTaskFolder(src, dest)
}

func (s *fileTaskStore) UnarchiveTask(id string) error {
	src := filepath.Join(ArchivedDir(s.basePath), id)
	dest := filepath.Join(TasksDir(s.basePath), id)
	return moveTaskFolder(src, dest)
}

// moveTaskFolder relocates a whole task folder. os.Rename is atomic on the
// same filesystem, which is the best this tool can do.
func moveTaskFolder(src, dest string) error {
	if _, err := os.Stat(src); err != nil {
		return fmt.Errorf("moving task folder: %w", err)
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("moving task folder: destination %s already exists", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("moving task folder: creating directory: %w", err)
	}
	if err := os.Rename(src, dest); err != nil {
		return fmt.Errorf("moving task folder: %w", err)
	}
	return nil
}

// SortedIDs returns the task ids in deterministic lexicographic order.
func SortedIDs(tasks map[string]*models.Task) []string {
	ids := make([]string, 0, len(tasks))
	for id := range tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
