package textutil

import "strings"

// CollapseSpace trims value and replaces every run of whitespace with a
// single space.
func CollapseSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
