package textsource

import (
	"regexp"
	"strings"
)

var (
	reCRLF = regexp.MustCompile(`\r\n?`)
	reNUL  = regexp.MustCompile(`\x00+`)
)

// Normalize unifies line endings and drops NUL bytes some PDF producers emit.
// Line structure is kept intact: party resolution works line by line.
func Normalize(s string) string {
	if s == "" {
		return s
	}
	s = reCRLF.ReplaceAllString(s, "\n")
	s = reNUL.ReplaceAllString(s, "")
	return strings.TrimPrefix(s, "\ufeff")
}
