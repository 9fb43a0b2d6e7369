package cli

import (
	"strings"
)

const software = "agwsession"

// LongDesc normalises a command's long description to follow the
// conventions.
func LongDesc(s string) string {
	if len(s) == 0 {
		return s
	}
	return strings.TrimSpace(trimIndentation(s))
}

// Examples normalises a command's examples to follow the conventions, and
// names the software in them.
func Examples(s string) string {
	if len(s) == 0 {
		return s
	}
	trimmed := strings.ReplaceAll(trimIndentation(s), "{{.Software}}", software)
	lines := strings.Split(strings.Trim(trimmed, "\n"), "\n")
	for i, line := range lines {
		if len(line) > 0 {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}

func trimIndentation(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, "\t")
	}
	return strings.Join(lines, "\n")
}
