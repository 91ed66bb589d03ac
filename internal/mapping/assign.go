package mapping

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"voicecheck/internal/textutil"
)

// Assign sets the id of the mapping for fileName. It reports false when no
// mapping has that file name.
func Assign(mappings []Mapping, fileName, id string) bool {
	for i := range mappings {
		if mappings[i].FileName == fileName {
			mappings[i].Assign(id)
			return true
		}
	}
	return false
}

// Assignments maps audio file names to script row ids.
type Assignments map[string]string

type assignmentFile struct {
	Assignments Assignments `toml:"assignments"`
}

// LoadAssignments reads a TOML file of the form
//
//	[assignments]
//	"a1.wav" = "A1"
func LoadAssignments(path string) (Assignments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read assignments: %w", err)
	}
	var file assignmentFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse assignments: %w", err)
	}
	if file.Assignments == nil {
		return Assignments{}, nil
	}
	return file.Assignments, nil
}

// ParsePairs converts "file=ID" strings into Assignments.
func ParsePairs(pairs []string) (Assignments, error) {
	out := make(Assignments, len(pairs))
	for _, pair := range pairs {
		name, id, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid mapping %q: expected file=ID", pair)
		}
		out[name] = strings.TrimSpace(id)
	}
	return out, nil
}

// Apply assigns ids to existing mappings in sorted name order, so when two
// names share a base name the later one wins. Only AssignedID is touched. File
// names with no matching mapping are returned in sorted order.
func Apply(mappings []Mapping, assignments Assignments) []string {
	var unknown []string
	for _, name := range slices.Sorted(maps.Keys(assignments)) {
		if !Assign(mappings, filepath.Base(name), assignments[name]) {
			unknown = append(unknown, name)
		}
	}
	slices.Sort(unknown)
	return unknown
}

// AutoAssign pairs still-unassigned mappings whose file stem equals a script
// id, compared case-insensitively. The first matching id wins. It returns the
// number of mappings assigned.
func AutoAssign(mappings []Mapping, ids []string) int {
	assigned := 0
	for i := range mappings {
		if mappings[i].Assigned() {
			continue
		}
		stem := strings.TrimSuffix(mappings[i].FileName, filepath.Ext(mappings[i].FileName))
		for _, id := range ids {
			if id == Unassigned || strings.TrimSpace(id) == "" {
				continue
			}
			if textutil.EqualFold(stem, id) {
				mappings[i].Assign(id)
				assigned++
				break
			}
		}
	}
	return assigned
}
