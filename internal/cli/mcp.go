package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	pbmcp "github.com/patchkit/patchboard/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the patchboard MCP server on stdio",
	Long: `Start the MCP (Model Context Protocol) server on stdio transport.

The server is the broker surface for comment-driven automation: it exposes
claim_task, renew_task, release_task, search_tasks, get_task, and
validate_board as MCP tools.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if LeaseMgr == nil {
			return fmt.Errorf("lease manager not initialized")
		}

		srv := pbmcp.NewServer(BasePath, Tasks, LeaseMgr, Cfg, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
