// Package script ingests the delimited script file that lists the expected
// line for every recording.
//
// Files are decoded as UTF-8 first. When the opening lines are dominated by
// replacement characters the whole file is decoded again with a configurable
// legacy encoding (Shift_JIS by default). Rows are split naively on the
// delimiter with trailing empty fields kept; quoting is not interpreted.
package script
