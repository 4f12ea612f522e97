package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/patchkit/patchboard/internal/observability"
)

var (
	eventsSince string
	eventsType  string
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show the audit trail of lock and archive operations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if EventLog == nil {
			return fmt.Errorf("event log not initialized")
		}

		filter := observability.EventFilter{Type: eventsType}
		if eventsSince != "" {
			since, err := parseSince(eventsSince)
			if err != nil {
				return err
			}
			filter.Since = &since
		}

		events, err := EventLog.Read(filter)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No events.")
			return nil
		}
		for _, e := range events {
			fmt.Printf("%s  %-16s %s\n", e.Time.Format(time.RFC3339), e.Type, e.Message)
		}
		return nil
	},
}

// parseSince parses a duration like "24h", "7d", or "30d" into the
// corresponding instant in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid duration %q", s)
		}
		return now.Add(-time.Duration(days) * 24 * time.Hour), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}
	return now.Add(-d), nil
}

func init() {
	eventsCmd.Flags().StringVar(&eventsSince, "since", "", "Only events newer than this (e.g. 24h, 7d)")
	eventsCmd.Flags().StringVar(&eventsType, "type", "", "Only events of this type (e.g. lease.claimed)")
	rootCmd.AddCommand(eventsCmd)
}
