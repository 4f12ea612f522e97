package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/patchkit/patchboard/internal/storage"
)

func TestInitCommand_ScaffoldsLayout(t *testing.T) {
	base := t.TempDir()

	if err := initCmd.RunE(initCmd, []string{base}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, path := range []string{
		filepath.Join(storage.SchemasDir(base), "task.schema.json"),
		filepath.Join(storage.SchemasDir(base), "board.schema.json"),
		storage.BoardPath(base),
		filepath.Join(storage.PatchboardDir(base), "config.yaml"),
		filepath.Join(storage.TasksDir(base), "_template", "task.md"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing scaffolded file %s: %v", path, err)
		}
	}
	if info, err := os.Stat(storage.LocksDir(base)); err != nil || !info.IsDir() {
		t.Errorf("locks directory not created: %v", err)
	}
}

func TestInitCommand_SkipsExistingFiles(t *testing.T) {
	base := t.TempDir()
	boardPath := storage.BoardPath(base)
	if err := os.MkdirAll(filepath.Dir(boardPath), 0o750); err != nil {
		t.Fatalf("creating board dir: %v", err)
	}
	custom := "name: My Board\ncolumns: []\n"
	if err := os.WriteFile(boardPath, []byte(custom), 0o600); err != nil {
		t.Fatalf("writing custom board: %v", err)
	}

	if err := initCmd.RunE(initCmd, []string{base}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := os.ReadFile(boardPath)
	if err != nil {
		t.Fatalf("reading board: %v", err)
	}
	if string(raw) != custom {
		t.Fatal("existing board config was overwritten")
	}
}

func TestInitCommand_TemplateScaffoldIsDiscoverySafe(t *testing.T) {
	base := setupCLI(t)
	if err := initCmd.RunE(initCmd, []string{base}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The _template folder must not show up as a task.
	tasks, err := Tasks.DiscoverTasks()
	if err != nil {
		t.Fatalf("discovering tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("scaffold leaked into discovery: %v", storage.SortedIDs(tasks))
	}
}
