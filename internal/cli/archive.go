package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive <task-id>",
	Short: "Move a task to the archive partition",
	Long: `Move a task folder to the .archived partition. Archived tasks leave
active discovery and validation but stay resolvable by id, and they satisfy
downstream dependency checks.

A task under an unexpired lock cannot be archived.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Archiver == nil {
			return fmt.Errorf("archiver not initialized")
		}
		taskID := args[0]
		if err := Archiver.Archive(taskID); err != nil {
			return err
		}
		fmt.Printf("Archived %s\n", taskID)
		printNextSteps(fmt.Sprintf("Archive %s", taskID), ".patchboard/tasks/")
		return nil
	},
}

var unarchiveCmd = &cobra.Command{
	Use:   "unarchive <task-id>",
	Short: "Restore a task from the archive partition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Archiver == nil {
			return fmt.Errorf("archiver not initialized")
		}
		taskID := args[0]
		if err := Archiver.Unarchive(taskID); err != nil {
			return err
		}
		fmt.Printf("Unarchived %s\n", taskID)
		printNextSteps(fmt.Sprintf("Unarchive %s", taskID), ".patchboard/tasks/")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
}
