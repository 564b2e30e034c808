package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CleanupName tidies a guest or companion name: strips surrounding
// whitespace, collapses inner runs of spaces, title-cases, and removes a
// trailing period.
func CleanupName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = cases.Title(language.Und).String(s)
	s = strings.TrimSuffix(s, ".")
	return s
}
