package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	releaseActor  string
	releaseForce  bool
	releaseStatus string
)

var releaseCmd = &cobra.Command{
	Use:   "release <task-id>",
	Short: "Release a task lock",
	Long: `Delete the lock lease for a task, optionally setting a new task status
(for example --status review or --status done). The task owner is kept for
audit even when the status becomes done.

Releasing a lock held by another actor requires --force.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if LeaseMgr == nil {
			return fmt.Errorf("lease manager not initialized")
		}

		taskID := args[0]
		actor := releaseActor
		if actor == "" {
			actor = Cfg.Actor
		}

		if err := LeaseMgr.Release(taskID, actor, releaseForce, releaseStatus); err != nil {
			return err
		}

		fmt.Printf("Released lock for %s\n", taskID)
		if releaseStatus != "" {
			printNextSteps(fmt.Sprintf("Release %s lock (%s)", taskID, releaseStatus),
				relToBase(Leases.Path(taskID)), relToBase(Tasks.TaskPath(taskID)))
		} else {
			printNextSteps(fmt.Sprintf("Release %s lock", taskID), relToBase(Leases.Path(taskID)))
		}
		return nil
	},
}

func init() {
	releaseCmd.Flags().StringVar(&releaseActor, "actor", "", "Who is releasing the lock (defaults to config)")
	releaseCmd.Flags().BoolVar(&releaseForce, "force", false, "Release a lock held by another actor")
	releaseCmd.Flags().StringVar(&releaseStatus, "status", "", "New task status after release")
	rootCmd.AddCommand(releaseCmd)
}
