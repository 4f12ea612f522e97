package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Regenerate the task index document",
	Long: `Write a denormalized summary of every active task, with embedded lock
status, to the state directory. The index is fully regenerated on each run
and never feeds back into the source records.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Indexer == nil {
			return fmt.Errorf("indexer not initialized")
		}
		path, err := Indexer.Write()
		if err != nil {
			return err
		}
		fmt.Printf("Wrote index: %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
