package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// ContainsFold reports whether substr appears in s under Unicode case folding.
func ContainsFold(s, substr string) bool {
	folder := cases.Fold()
	return strings.Contains(folder.String(s), folder.String(substr))
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	folder := cases.Fold()
	return folder.String(a) == folder.String(b)
}
