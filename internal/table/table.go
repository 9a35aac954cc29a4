package table

import (
	"strconv"
	"strings"
)

// Row maps a header name to a cell value. Values are either string or
// float64, depending on how the extraction payload encoded them. A missing
// header key means an empty cell.
type Row map[string]any

// Table is one extracted table. Headers are ordered and unique within the
// table; Rows are keyed by header name. The struct is treated as read-only
// once built: formatting derives display strings from it and never writes
// back.
type Table struct {
	Headers []string
	Rows    []Row
	Title   string
	Summary string
}

// Result is the ordered set of tables produced by a single extraction. Each
// new extraction replaces the previous Result wholesale.
type Result struct {
	Tables []Table
}

// Value returns the raw cell value for the given header, or empty string when
// the row has no entry for it.
func (t *Table) Value(row int, header string) any {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	if v, ok := t.Rows[row][header]; ok {
		return v
	}
	return ""
}

// ValueAt is Value by column index.
func (t *Table) ValueAt(row, col int) any {
	if col < 0 || col >= len(t.Headers) {
		return ""
	}
	return t.Value(row, t.Headers[col])
}

// FromPositional builds a Table from an ordered header list and positional
// value rows. Positions missing relative to headers become empty strings;
// values beyond the header count are dropped. Duplicate headers are
// disambiguated with a numeric suffix so row keys stay unique.
func FromPositional(title, summary string, headers []string, rows [][]string) Table {
	hs := uniqueHeaders(headers)
	t := Table{Headers: hs, Title: strings.TrimSpace(title), Summary: strings.TrimSpace(summary)}
	for _, src := range rows {
		row := make(Row, len(hs))
		for i, h := range hs {
			if i < len(src) {
				row[h] = src[i]
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func uniqueHeaders(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]int{}
	for i, h := range in {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "Column " + strconv.Itoa(i+1)
		}
		if n, ok := seen[h]; ok {
			seen[h] = n + 1
			h = h + " (" + strconv.Itoa(n+1) + ")"
		}
		seen[h] = 1
		out = append(out, h)
	}
	return out
}
