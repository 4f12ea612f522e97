package models

// Board is the kanban board configuration. The validator checks the raw
// document against the board schema; the typed form is used only for display
// (column layout on the board view).
type Board struct {
	Name    string        `yaml:"name"`
	Columns []BoardColumn `yaml:"columns"`
}

// BoardColumn maps one display column to the task statuses it contains.
type BoardColumn struct {
	Name     string   `yaml:"name"`
	Statuses []string `yaml:"statuses"`
	WIPLimit int      `yaml:"wip_limit,omitempty"`
}
