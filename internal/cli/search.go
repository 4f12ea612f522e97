package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patchkit/patchboard/internal/core"
)

var (
	searchStatus   string
	searchPriority string
	searchOwner    string
	searchLabel    string
	searchLimit    int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search tasks by substring with optional filters",
	Long: `Search active tasks case-insensitively across title, context, plan, notes,
and acceptance criteria, in that order; the first matching field is reported
with a snippet of surrounding text.

Without a query, all tasks matching the filters are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task store not initialized")
		}

		query := ""
		if len(args) > 0 {
			query = args[0]
		}
		limit := searchLimit
		if limit <= 0 {
			limit = Cfg.SearchLimit
		}

		tasks, err := Tasks.DiscoverTasks()
		if err != nil {
			return err
		}
		results := core.Search(tasks, query, core.SearchFilter{
			Status:   searchStatus,
			Priority: searchPriority,
			Owner:    searchOwner,
			Label:    searchLabel,
		}, limit)

		if len(results) == 0 {
			fmt.Println("No matching tasks found.")
			return nil
		}

		fmt.Printf("Found %d matching task(s):\n\n", len(results))
		for _, r := range results {
			title := r.Title
			if title == "" {
				title = "Untitled"
			}
			fmt.Printf("  %s: %s\n", r.ID, title)
			fmt.Printf("    Status: %s  Priority: %s  Owner: %s\n",
				orDash(string(r.Status)), orDash(r.Priority), orDash(r.Owner))
			if len(r.Labels) > 0 {
				fmt.Printf("    Labels: %s\n", strings.Join(r.Labels, ", "))
			}
			if r.MatchField != "" {
				fmt.Printf("    Match in %s: %s\n", r.MatchField, r.MatchContext)
			}
			fmt.Println()
		}
		return nil
	},
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	searchCmd.Flags().StringVar(&searchStatus, "status", "", "Filter by status (todo, ready, in_progress, blocked, review, done)")
	searchCmd.Flags().StringVar(&searchPriority, "priority", "", "Filter by priority (e.g. P0..P4)")
	searchCmd.Flags().StringVar(&searchOwner, "owner", "", "Filter by owner")
	searchCmd.Flags().StringVar(&searchLabel, "label", "", "Filter by label")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 0, "Max results (defaults to config)")
	rootCmd.AddCommand(searchCmd)
}
