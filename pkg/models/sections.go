package models

import "strings"

// sectionNames are the recognized body headings, in search priority order.
var sectionNames = []string{"context", "plan", "notes"}

// Sections splits the task body into its named sections by `## <name>`
// headings (case-insensitive). Text before the first recognized heading is
// dropped; unrecognized headings become part of the current section.
func (t *Task) Sections() map[string]string {
	sections := map[string]string{"context": "", "plan": "", "notes": ""}

	current := ""
	var lines []string
	flush := func() {
		if current != "" {
			sections[current] = strings.TrimSpace(strings.Join(lines, "\n"))
		}
		lines = nil
	}

	for _, line := range strings.Split(t.Body, "\n") {
		if name := sectionHeading(line); name != "" {
			flush()
			current = name
			continue
		}
		if current != "" {
			lines = append(lines, line)
		}
	}
	flush()

	return sections
}

func sectionHeading(line string) string {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, name := range sectionNames {
		if strings.HasPrefix(lower, "## "+name) {
			return name
		}
	}
	return ""
}
