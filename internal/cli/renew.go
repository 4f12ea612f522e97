package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	renewActor string
	renewLease int
)

var renewCmd = &cobra.Command{
	Use:   "renew <task-id>",
	Short: "Extend an unexpired lock you hold",
	Long: `Recompute the lease expiry of a lock you hold from the current time.

An expired lease cannot be renewed: re-claim the task instead, which makes
the steal decision explicit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if LeaseMgr == nil {
			return fmt.Errorf("lease manager not initialized")
		}

		taskID := args[0]
		actor := renewActor
		if actor == "" {
			actor = Cfg.Actor
		}
		seconds := renewLease
		if seconds <= 0 {
			seconds = Cfg.LeaseSeconds
		}

		lease, err := LeaseMgr.Renew(taskID, actor, seconds)
		if err != nil {
			return err
		}

		fmt.Printf("Renewed %s as %s\n", taskID, actor)
		fmt.Printf("  Expires: %s\n", lease.LeaseExpiresAt)
		printNextSteps(fmt.Sprintf("Renew %s lock", taskID), relToBase(Leases.Path(taskID)))
		return nil
	},
}

func init() {
	renewCmd.Flags().StringVar(&renewActor, "actor", "", "The current lock holder (defaults to config)")
	renewCmd.Flags().IntVar(&renewLease, "lease", 0, "New lease duration in seconds (defaults to config)")
	rootCmd.AddCommand(renewCmd)
}
