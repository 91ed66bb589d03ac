package script

import "strings"

// Unassigned is the reserved id placeholder meaning "no script row chosen".
// It is never a valid row id.
const Unassigned = "未選択"

// Table is the decoded script file. Rows[0] is the header when present.
type Table struct {
	Rows [][]string
	// IDs starts with Unassigned followed by the trimmed first cell of every
	// data row, in file order.
	IDs []string
	// Encoding names the decoding that produced Rows.
	Encoding string
}

// Header returns the first row, or nil for an empty table.
func (t *Table) Header() []string {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// DataRows returns every row after the header.
func (t *Table) DataRows() [][]string {
	if t == nil || len(t.Rows) < 2 {
		return nil
	}
	return t.Rows[1:]
}

// Empty reports whether the table has no rows at all.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

func newTable(lines []string, delimiter, encodingName string) *Table {
	table := &Table{
		Rows:     make([][]string, 0, len(lines)),
		IDs:      []string{Unassigned},
		Encoding: encodingName,
	}
	for i, line := range lines {
		row := strings.Split(line, delimiter)
		table.Rows = append(table.Rows, row)
		if i > 0 {
			table.IDs = append(table.IDs, strings.TrimSpace(row[0]))
		}
	}
	return table
}
