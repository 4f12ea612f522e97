package storage

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatterRe matches a leading `---\n<yaml>\n---\n` block. The trailing
// \s* absorbs the blank line conventionally left between the block and the
// body, so parse(render(fm, body)) gives the body back without a leading
// newline.
var frontmatterRe = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n`)

// FormatError reports a task record whose leading frontmatter block is
// missing or malformed.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "malformed task record: " + e.Reason
}

// ParseFrontmatter splits a raw task record into its frontmatter mapping and
// markdown body. The record must start with a `--- ... ---` block containing
// a YAML mapping.
func ParseFrontmatter(raw string) (map[string]any, string, error) {
	loc := frontmatterRe.FindStringSubmatchIndex(raw)
	if loc == nil {
		return nil, "", &FormatError{Reason: "missing YAML frontmatter (expected leading '--- ... ---')"}
	}
	fmRaw := raw[loc[2]:loc[3]]
	body := raw[loc[1]:]

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(fmRaw), &fm); err != nil {
		return nil, "", &FormatError{Reason: fmt.Sprintf("frontmatter must be a YAML mapping: %v", err)}
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, body, nil
}

// RenderTask serializes a frontmatter mapping and body back into record form.
// The result always carries exactly one trailing newline.
func RenderTask(fm map[string]any, body string) (string, error) {
	y, err := yaml.Marshal(fm)
	if err != nil {
		return "", fmt.Errorf("marshaling frontmatter: %w", err)
	}
	content := "---\n" + strings.TrimRight(string(y), "\n") + "\n---\n\n" + strings.TrimLeft(body, "\n")
	return strings.TrimRight(content, " \t\n") + "\n", nil
}
