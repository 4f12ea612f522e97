// Package internal provides the App struct that wires all patchboard
// services together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"

	"github.com/patchkit/patchboard/internal/cli"
	"github.com/patchkit/patchboard/internal/core"
	"github.com/patchkit/patchboard/internal/integration"
	"github.com/patchkit/patchboard/internal/observability"
	"github.com/patchkit/patchboard/internal/storage"
)

// App holds all service dependencies for patchboard.
type App struct {
	BasePath string

	Cfg *core.Config

	// Record store
	Tasks  storage.TaskStore
	Leases storage.LeaseStore

	// Core services
	LeaseMgr core.LeaseManager
	Indexer  *core.Indexer
	Archiver *core.Archiver

	// Observability
	EventLog observability.EventLog
}

// NewApp creates and wires all patchboard services rooted at basePath.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	cfg, err := core.LoadConfig(basePath)
	if err != nil {
		return nil, err
	}
	app.Cfg = cfg

	app.Tasks = storage.NewTaskStore(basePath)
	app.Leases = storage.NewLeaseStore(basePath)

	app.EventLog, err = observability.NewJSONLEventLog(storage.EventLogPath(basePath))
	if err != nil {
		// Non-fatal: the audit trail is best-effort.
		app.EventLog = nil
	}
	recorder := &observability.Recorder{Log: app.EventLog}

	branch := func() string { return integration.CurrentBranch(basePath) }
	app.LeaseMgr = core.NewLeaseManager(app.Tasks, app.Leases, recorder, branch)
	app.Indexer = core.NewIndexer(basePath, app.Tasks, app.Leases)
	app.Archiver = core.NewArchiver(app.Tasks, app.Leases, recorder)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Tasks = app.Tasks
	cli.Leases = app.Leases
	cli.LeaseMgr = app.LeaseMgr
	cli.Indexer = app.Indexer
	cli.Archiver = app.Archiver
	cli.Cfg = app.Cfg
	cli.EventLog = app.EventLog

	return app, nil
}

// Close releases resources held by the App. Safe to call when the event log
// is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the directory whose .patchboard/ tree to
// operate on: PATCHBOARD_BASE if set, otherwise the nearest ancestor of the
// working directory containing .patchboard/, otherwise the working directory
// itself.
func ResolveBasePath() string {
	if base := os.Getenv("PATCHBOARD_BASE"); base != "" {
		return base
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	cwd := dir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".patchboard")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}
