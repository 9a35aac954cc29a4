// Package export serializes tables and cell selections into delimited text
// and file formats. All output goes through the same transform pipeline as
// the display path; the only difference is that exported numbers carry no
// thousands separators so the text stays machine-parseable.
package export

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/hyperifyio/gotabular/internal/normalize"
	"github.com/hyperifyio/gotabular/internal/selection"
	"github.com/hyperifyio/gotabular/internal/table"
)

// Clipboard is the external write-only collaborator for copy operations.
// Delivery success is outside this package's correctness contract; the
// serializer's only obligation is handing over separator-stripped text.
type Clipboard interface {
	Write(ctx context.Context, text string) error
}

// WriterClipboard adapts any io.Writer (stdout, a file) to the Clipboard
// collaborator.
type WriterClipboard struct {
	W io.Writer
}

func (c WriterClipboard) Write(_ context.Context, text string) error {
	_, err := io.WriteString(c.W, text)
	return err
}

// TableText renders the full table as tab-separated text: one header line,
// then one line per row. A nil or empty table yields empty output, never an
// error.
func TableText(t *table.Table, opts normalize.Options) string {
	if t == nil || len(t.Headers) == 0 {
		return ""
	}
	lines := make([]string, 0, len(t.Rows)+1)
	lines = append(lines, strings.Join(headerRow(t, opts), "\t"))
	for i := range t.Rows {
		cells := make([]string, len(t.Headers))
		for j, h := range t.Headers {
			cells[j] = normalize.Apply(t.Value(i, h), opts).Plain
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return strings.Join(lines, "\n")
}

// SelectionText renders the selected cells one formatted value per line.
// Cells are emitted in canonical reading order (row ascending, then column
// ascending) regardless of selection order; out-of-range cells are skipped.
func SelectionText(t *table.Table, cells []selection.Cell, opts normalize.Options) string {
	if t == nil || len(t.Headers) == 0 || len(cells) == 0 {
		return ""
	}
	ordered := make([]selection.Cell, len(cells))
	copy(ordered, cells)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Row != ordered[j].Row {
			return ordered[i].Row < ordered[j].Row
		}
		return ordered[i].Col < ordered[j].Col
	})
	lines := make([]string, 0, len(ordered))
	for _, c := range ordered {
		if c.Row < 0 || c.Row >= len(t.Rows) || c.Col < 0 || c.Col >= len(t.Headers) {
			continue
		}
		lines = append(lines, normalize.Apply(t.ValueAt(c.Row, c.Col), opts).Plain)
	}
	return strings.Join(lines, "\n")
}

func headerRow(t *table.Table, opts normalize.Options) []string {
	out := make([]string, len(t.Headers))
	for i, h := range t.Headers {
		if opts.TitleCase {
			h = normalize.TitleCase(h)
		}
		out[i] = h
	}
	return out
}
