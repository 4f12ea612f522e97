package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patchkit/patchboard/internal/core"
	"github.com/patchkit/patchboard/internal/storage"
)

var validateVerbose bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check task, lock, and board invariants",
	Long: `Run every consistency check over the board: schema conformance, status
values, dependency existence and readiness, epic parent/child agreement, and
epic cycle detection.

All diagnostics are collected before reporting. Errors set a non-zero exit
code; warnings are advisory and printed to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task store not initialized")
		}

		active, err := Tasks.DiscoverTasks()
		if err != nil {
			return err
		}
		all, err := Tasks.DiscoverAllTasks()
		if err != nil {
			return err
		}
		_, boardDoc, boardErr := storage.LoadBoard(BasePath)
		schemas := core.LoadSchemas(storage.SchemasDir(BasePath))

		report := core.Validate(active, all, core.BoardInput{Doc: boardDoc, LoadErr: boardErr}, schemas)

		if validateVerbose || len(report.Warnings) > 0 {
			for _, w := range report.Warnings {
				fmt.Fprintf(os.Stderr, "WARNING: %s\n", w)
			}
		}
		if len(report.Errors) > 0 {
			for _, e := range report.Errors {
				fmt.Fprintf(os.Stderr, "ERROR: %s\n", e)
			}
			return fmt.Errorf("validation failed with %d error(s)", len(report.Errors))
		}

		if validateVerbose {
			fmt.Println("OK: validation passed")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateVerbose, "verbose", false, "Print warnings and the success summary")
	rootCmd.AddCommand(validateCmd)
}
