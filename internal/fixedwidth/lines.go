package fixedwidth

import (
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r\n|\n\r|\n|\r`)

// SplitLines splits file content on any of the accepted line terminators.
// Trailing blank lines are dropped; blank lines in the middle are kept so
// callers can report them with their line number.
func SplitLines(content string) []string {
	lines := lineBreak.Split(content, -1)
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
