package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	claimActor   string
	claimLease   int
	claimNoSteal bool
)

var claimCmd = &cobra.Command{
	Use:   "claim <task-id>",
	Short: "Claim a task under a time-bound lock",
	Long: `Create a lock lease for a task and move it to in_progress with you as
owner. Claiming fails when the task is done, has unfinished active
dependencies, or is locked by another actor whose lease has not expired.

An expired lease is taken over by default; pass --no-steal to refuse
instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if LeaseMgr == nil {
			return fmt.Errorf("lease manager not initialized")
		}

		taskID := args[0]
		actor := claimActor
		if actor == "" {
			actor = Cfg.Actor
		}
		if actor == "" {
			return fmt.Errorf("no actor given (use --actor or set defaults.actor in config)")
		}
		seconds := claimLease
		if seconds <= 0 {
			seconds = Cfg.LeaseSeconds
		}

		lease, err := LeaseMgr.Claim(taskID, actor, seconds, Cfg.AllowStealExpired && !claimNoSteal)
		if err != nil {
			return err
		}

		lockPath := Leases.Path(taskID)
		fmt.Printf("Claimed %s as %s\n", taskID, actor)
		fmt.Printf("  Lock: %s\n", lockPath)
		fmt.Printf("  Expires: %s\n", lease.LeaseExpiresAt)
		printNextSteps(fmt.Sprintf("Claim %s", taskID),
			relToBase(lockPath), relToBase(Tasks.TaskPath(taskID)))
		return nil
	},
}

func init() {
	claimCmd.Flags().StringVar(&claimActor, "actor", "", "Who is claiming the task (defaults to config)")
	claimCmd.Flags().IntVar(&claimLease, "lease", 0, "Lease duration in seconds (defaults to config)")
	claimCmd.Flags().BoolVar(&claimNoSteal, "no-steal", false, "Refuse to take over an expired lock")
	rootCmd.AddCommand(claimCmd)
}

// relToBase renders a path relative to the base directory for display in the
// git next-steps block.
func relToBase(path string) string {
	rel, err := filepath.Rel(BasePath, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
