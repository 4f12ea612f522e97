// Package integration holds thin wrappers around external tools, currently
// just git.
package integration

import (
	"os/exec"
	"strings"
)

// CurrentBranch returns the checked-out branch of the repository at dir, or
// "" when dir is not a git repository or git is unavailable. The result is
// advisory metadata recorded on lease records, so failures are swallowed.
func CurrentBranch(dir string) string {
	cmd := exec.Command("git", "rev-parse", "--abbrev-ref", "HEAD")
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
