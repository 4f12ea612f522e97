// Package cli implements the patchboard command-line interface, one cobra
// command per file. Service dependencies are package-level variables set
// during application wiring.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchkit/patchboard/internal/core"
	"github.com/patchkit/patchboard/internal/observability"
	"github.com/patchkit/patchboard/internal/storage"
)

// Services wired by internal.NewApp before Execute runs.
var (
	BasePath string
	Tasks    storage.TaskStore
	Leases   storage.LeaseStore
	LeaseMgr core.LeaseManager
	Indexer  *core.Indexer
	Archiver *core.Archiver
	Cfg      *core.Config
	EventLog observability.EventLog
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "patchboard",
	Short: "Repo-native task board with lease-based task locking",
	Long: `Patchboard keeps the repository as the system of record for a lightweight
kanban board: tasks are markdown files with YAML frontmatter, work assignment
is mediated by time-bound lock leases, and a board configuration declares the
workflow rules.

Mutations are plain file writes meant to be committed; the tool prints the
git commands to run after each change.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("patchboard %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printNextSteps prints the git commands that publish a mutation.
func printNextSteps(commitMsg string, paths ...string) {
	fmt.Println()
	fmt.Println("Next:")
	fmt.Printf("  git add %s\n", strings.Join(paths, " "))
	fmt.Printf("  git commit -m %q\n", commitMsg)
}
