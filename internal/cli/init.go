package cli

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates
var templateFS embed.FS

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a .patchboard directory",
	Long: `Create the .patchboard layout in the given directory (default: current
directory): task and lock directories, the default board configuration, the
task and board schemas, and a task template.

Safe to run on an existing board -- files that already exist are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := "."
		if len(args) > 0 {
			base = args[0]
		}
		absBase, err := filepath.Abs(base)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		files := []struct {
			src  string
			dest string
		}{
			{"templates/task.schema.json", filepath.Join(absBase, ".patchboard", "schemas", "task.schema.json")},
			{"templates/board.schema.json", filepath.Join(absBase, ".patchboard", "schemas", "board.schema.json")},
			{"templates/kanban.yaml", filepath.Join(absBase, ".patchboard", "planning", "boards", "kanban.yaml")},
			{"templates/config.yaml", filepath.Join(absBase, ".patchboard", "config.yaml")},
			{"templates/task.md", filepath.Join(absBase, ".patchboard", "tasks", "_template", "task.md")},
		}

		var created, skipped []string
		for _, f := range files {
			src, dest := f.src, f.dest
			if _, err := os.Stat(dest); err == nil {
				skipped = append(skipped, dest)
				continue
			}
			data, err := templateFS.ReadFile(src)
			if err != nil {
				return fmt.Errorf("reading embedded template %s: %w", src, err)
			}
			if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
				return fmt.Errorf("creating directory for %s: %w", dest, err)
			}
			if err := os.WriteFile(dest, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", dest, err)
			}
			created = append(created, dest)
		}

		locksDir := filepath.Join(absBase, ".patchboard", "state", "locks")
		if err := os.MkdirAll(locksDir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", locksDir, err)
		}

		if len(created) > 0 {
			fmt.Println("Created:")
			for _, p := range created {
				rel, _ := filepath.Rel(absBase, p)
				fmt.Printf("  %s\n", rel)
			}
		}
		if len(skipped) > 0 {
			fmt.Println("Skipped (already exist):")
			for _, p := range skipped {
				rel, _ := filepath.Rel(absBase, p)
				fmt.Printf("  %s\n", rel)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
