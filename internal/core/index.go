package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patchkit/patchboard/internal/storage"
	"github.com/patchkit/patchboard/pkg/models"
)

// Indexer materializes the denormalized task index. It is a pure read
// projection: generating the index never mutates task or lease records.
type Indexer struct {
	basePath string
	tasks    storage.TaskStore
	leases   storage.LeaseStore

	// now is the clock, injectable for tests.
	now func() time.Time
}

// NewIndexer creates an Indexer over the given stores.
func NewIndexer(basePath string, tasks storage.TaskStore, leases storage.LeaseStore) *Indexer {
	return &Indexer{
		basePath: basePath,
		tasks:    tasks,
		leases:   leases,
		now:      time.Now,
	}
}

// Build assembles the index document for every active task, embedding lease
// status with expiry computed at generation time.
func (ix *Indexer) Build() (*models.BoardIndex, error) {
	tasks, err := ix.tasks.DiscoverTasks()
	if err != nil {
		return nil, err
	}

	now := ix.now()
	index := &models.BoardIndex{
		GeneratedAt: models.FormatTime(now),
		Tasks:       []models.TaskSummary{},
	}

	for _, id := range storage.SortedIDs(tasks) {
		task := tasks[id]

		var lock *models.LockInfo
		lease, err := ix.leases.Load(id)
		if err != nil {
			return nil, err
		}
		if lease != nil {
			lock = &models.LockInfo{
				ClaimedBy:      lease.ClaimedBy,
				LeaseExpiresAt: lease.LeaseExpiresAt,
				Expired:        lease.Expired(now),
			}
		}

		relPath, err := filepath.Rel(ix.basePath, task.Path)
		if err != nil {
			relPath = task.Path
		}
		index.Tasks = append(index.Tasks, models.TaskSummary{
			ID:         id,
			Title:      task.Title(),
			Type:       string(task.Type()),
			Status:     string(task.Status()),
			Priority:   task.Priority(),
			Owner:      task.Owner(),
			Labels:     emptyIfNil(task.Labels()),
			DependsOn:  emptyIfNil(task.DependsOn()),
			Acceptance: emptyIfNil(task.Acceptance()),
			Path:       filepath.ToSlash(relPath),
			Lock:       lock,
		})
	}
	return index, nil
}

// Write regenerates the index document from scratch and overwrites the index
// file, returning its path.
func (ix *Indexer) Write() (string, error) {
	index, err := ix.Build()
	if err != nil {
		return "", err
	}
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling index: %w", err)
	}
	data = append(data, '\n')

	path := storage.IndexPath(ix.basePath)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return "", fmt.Errorf("writing index: creating directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("writing index: %w", err)
	}
	return path, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
