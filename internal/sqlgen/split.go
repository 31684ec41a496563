package sqlgen

import (
	"regexp"
	"strings"
)

var (
	commentRegex = regexp.MustCompile(`(?m)^\s*--.*$`)
	stringRegex  = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"|` + "`(?:[^`]|``)*`")
)

// SplitStatements splits a script on semicolons that sit outside string
// literals and quoted identifiers. Line comments are dropped.
func SplitStatements(script string) []string {
	script = commentRegex.ReplaceAllString(script, "")

	quoted := make(map[int]bool)
	for _, match := range stringRegex.FindAllStringIndex(script, -1) {
		for i := match[0]; i < match[1]; i++ {
			quoted[i] = true
		}
	}

	statements := make([]string, 0, strings.Count(script, ";")+1)
	var current strings.Builder

	for i, char := range script {
		if char == ';' && !quoted[i] {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			current.Reset()
			continue
		}
		current.WriteRune(char)
	}

	if stmt := strings.TrimSpace(current.String()); stmt != "" {
		statements = append(statements, stmt)
	}
	return statements
}
