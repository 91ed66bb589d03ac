package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var percentPattern = regexp.MustCompile(`(\d+)%`)

// Progress is a point-in-time completion signal read from the engine's stderr.
type Progress struct {
	// Fraction is Percent/100 clamped to [0, 1].
	Fraction float64
	Percent  int
	Label    string
	// Line is the raw stderr line that carried the percentage.
	Line string
}

// ParseProgress extracts the first NN% on line.
func ParseProgress(line string) (Progress, bool) {
	match := percentPattern.FindStringSubmatch(line)
	if match == nil {
		return Progress{}, false
	}
	percent, err := strconv.Atoi(match[1])
	if err != nil {
		return Progress{}, false
	}
	fraction := float64(percent) / 100
	fraction = max(0, min(1, fraction))
	return Progress{
		Fraction: fraction,
		Percent:  percent,
		Label:    fmt.Sprintf("processing %d%%", percent),
		Line:     strings.TrimRight(line, "\r\n"),
	}, true
}
