package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/patchkit/patchboard/internal/storage"
	"github.com/patchkit/patchboard/pkg/models"
)

var boardPlain bool

// Column styles.
var (
	boardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	columnStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(28)

	focusedColumnStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(0, 1).
				Width(28)

	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("62"))

	cardIDStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212"))

	overLimitStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
)

type boardColumn struct {
	name     string
	wipLimit int
	tasks    []*models.Task
}

type boardModel struct {
	title   string
	columns []boardColumn
	focused int
}

func (m boardModel) Init() tea.Cmd {
	return nil
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "left", "h":
			if m.focused > 0 {
				m.focused--
			}
		case "right", "l":
			if m.focused < len(m.columns)-1 {
				m.focused++
			}
		}
	}
	return m, nil
}

func (m boardModel) View() string {
	rendered := make([]string, 0, len(m.columns))
	for i, col := range m.columns {
		style := columnStyle
		if i == m.focused {
			style = focusedColumnStyle
		}
		rendered = append(rendered, style.Render(renderColumn(col)))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	return boardTitleStyle.Render(m.title) + "\n\n" + board + "\n\n  ←/→ switch column · q quit\n"
}

func renderColumn(col boardColumn) string {
	header := fmt.Sprintf("%s (%d)", col.name, len(col.tasks))
	if col.wipLimit > 0 && len(col.tasks) > col.wipLimit {
		header = overLimitStyle.Render(header + fmt.Sprintf(" over WIP %d", col.wipLimit))
	} else {
		header = columnHeaderStyle.Render(header)
	}

	lines := []string{header}
	for _, task := range col.tasks {
		title := task.Title()
		if len(title) > 22 {
			title = title[:19] + "..."
		}
		lines = append(lines, cardIDStyle.Render(task.ID))
		lines = append(lines, "  "+title)
	}
	if len(col.tasks) == 0 {
		lines = append(lines, "  (empty)")
	}
	return strings.Join(lines, "\n")
}

// buildBoardModel groups active tasks into the board's columns. Without a
// readable board config, one column per status is used.
func buildBoardModel() (boardModel, error) {
	tasks, err := Tasks.DiscoverTasks()
	if err != nil {
		return boardModel{}, err
	}

	title := "patchboard"
	var columns []boardColumn
	board, _, err := storage.LoadBoard(BasePath)
	if err == nil && len(board.Columns) > 0 {
		if board.Name != "" {
			title = board.Name
		}
		for _, c := range board.Columns {
			columns = append(columns, boardColumn{name: c.Name, wipLimit: c.WIPLimit})
		}
	} else {
		for _, st := range models.AllStatuses {
			columns = append(columns, boardColumn{name: string(st)})
		}
	}

	statusColumn := map[string]int{}
	for i, col := range columns {
		if err == nil && len(board.Columns) > 0 {
			for _, st := range board.Columns[i].Statuses {
				statusColumn[st] = i
			}
		} else {
			statusColumn[col.name] = i
		}
	}

	for _, id := range storage.SortedIDs(tasks) {
		task := tasks[id]
		if i, ok := statusColumn[string(task.Status())]; ok {
			columns[i].tasks = append(columns[i].tasks, task)
		}
	}
	return boardModel{title: title, columns: columns}, nil
}

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the kanban board",
	Long: `Render active tasks as kanban columns, using the column layout from the
board configuration when present. Interactive by default; --plain prints a
static rendering and exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Tasks == nil {
			return fmt.Errorf("task store not initialized")
		}
		model, err := buildBoardModel()
		if err != nil {
			return err
		}
		if boardPlain {
			fmt.Println(model.View())
			return nil
		}
		if _, err := tea.NewProgram(model).Run(); err != nil {
			return fmt.Errorf("running board view: %w", err)
		}
		return nil
	},
}

func init() {
	boardCmd.Flags().BoolVar(&boardPlain, "plain", false, "Print a static board instead of the interactive view")
	rootCmd.AddCommand(boardCmd)
}
