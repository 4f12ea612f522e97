package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/patchkit/patchboard/pkg/models"
)

// LeaseStore defines the interface for lease records, stored one JSON file
// per task under the locks directory.
type LeaseStore interface {
	// Load returns the lease for a task, or (nil, nil) when no lease exists.
	Load(taskID string) (*models.Lease, error)
	// Save overwrites the lease record for its task.
	Save(lease *models.Lease) error
	// Delete removes the lease record for a task.
	Delete(taskID string) error
	// Path returns the record path for a task's lease.
	Path(taskID string) string
}

type jsonLeaseStore struct {
	basePath string
}

// NewLeaseStore creates a LeaseStore rooted at basePath.
func NewLeaseStore(basePath string) LeaseStore {
	return &jsonLeaseStore{basePath: basePath}
}

func (s *jsonLeaseStore) Path(taskID string) string {
	return filepath.Join(LocksDir(s.basePath), taskID+".lock.json")
}

func (s *jsonLeaseStore) Load(taskID string) (*models.Lease, error) {
	data, err := os.ReadFile(s.Path(taskID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("loading lease for %s: %w", taskID, err)
	}
	var lease models.Lease
	if err := json.Unmarshal(data, &lease); err != nil {
		return nil, fmt.Errorf("loading lease for %s: parsing JSON: %w", taskID, err)
	}
	if lease.TaskID == "" {
		lease.TaskID = taskID
	}
	return &lease, nil
}

func (s *jsonLeaseStore) Save(lease *models.Lease) error {
	data, err := json.MarshalIndent(lease, "", "  ")
	if err != nil {
		return fmt.Errorf("saving lease for %s: marshaling JSON: %w", lease.TaskID, err)
	}
	data = append(data, '\n')
	if err := os.MkdirAll(LocksDir(s.basePath), 0o750); err != nil {
		return fmt.Errorf("saving lease for %s: creating directory: %w", lease.TaskID, err)
	}
	if err := os.WriteFile(s.Path(lease.TaskID), data, 0o600); err != nil {
		return fmt.Errorf("saving lease for %s: writing file: %w", lease.TaskID, err)
	}
	return nil
}

func (s *jsonLeaseStore) Delete(taskID string) error {
	if err := os.Remove(s.Path(taskID)); err != nil {
		return fmt.Errorf("deleting lease for %s: %w", taskID, err)
	}
	return nil
}
