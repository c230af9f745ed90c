package tools

import "regexp"

var namePattern = regexp.MustCompile(`^[\w .]*$`)

// ValidName reports whether name only uses letters, digits, underscore, space and dot.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}
