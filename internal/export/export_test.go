package export

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/hyperifyio/gotabular/internal/normalize"
	"github.com/hyperifyio/gotabular/internal/selection"
	"github.com/hyperifyio/gotabular/internal/table"
)

func sampleTable() table.Table {
	return table.FromPositional("Income Statement", "", []string{"Line Item", "Amount"}, [][]string{
		{"Revenue", "1,234.50"},
		{"cost of goods", "(350.25)"},
		{"notes", "see appendix"},
	})
}

func TestTableText_StripsSeparators(t *testing.T) {
	tbl := sampleTable()
	opts := normalize.Options{Multiplier: 1, DecimalPlaces: 2}
	got := TableText(&tbl, opts)
	lines := strings.Split(got, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "Line Item\tAmount" {
		t.Fatalf("bad header line %q", lines[0])
	}
	if lines[1] != "Revenue\t1234.50" {
		t.Fatalf("export must strip thousands separators, got %q", lines[1])
	}
	if lines[2] != "cost of goods\t-350.25" {
		t.Fatalf("accounting negative must export signed, got %q", lines[2])
	}
	if lines[3] != "notes\tsee appendix" {
		t.Fatalf("text cells pass through, got %q", lines[3])
	}
}

func TestTableText_TitleCasesHeaders(t *testing.T) {
	tbl := sampleTable()
	opts := normalize.Options{Multiplier: 1, DecimalPlaces: 2, TitleCase: true}
	got := TableText(&tbl, opts)
	if !strings.HasPrefix(got, "Line Item\tAmount") {
		t.Fatalf("unexpected header line in %q", got)
	}
	if !strings.Contains(got, "Cost of Goods\t-350.25") {
		t.Fatalf("expected title-cased text cell, got %q", got)
	}
}

func TestTableText_AbsentTableIsNoop(t *testing.T) {
	opts := normalize.DefaultOptions()
	if got := TableText(nil, opts); got != "" {
		t.Fatalf("nil table must produce no output, got %q", got)
	}
	empty := table.Table{}
	if got := TableText(&empty, opts); got != "" {
		t.Fatalf("empty table must produce no output, got %q", got)
	}
	if got := SelectionText(nil, []selection.Cell{{Row: 0, Col: 0}}, opts); got != "" {
		t.Fatalf("nil table selection must produce no output, got %q", got)
	}
}

func TestSelectionText_CanonicalOrder(t *testing.T) {
	tbl := table.FromPositional("", "", []string{"A", "B", "C", "D"}, [][]string{
		{"00", "01", "02", "03"},
		{"10", "11", "12", "13"},
		{"20", "21", "22", "23"},
	})
	opts := normalize.Options{Multiplier: 1, DecimalPlaces: 0}
	// Selected in order (2,1), (0,0), (1,3): export must sort to reading order.
	cells := []selection.Cell{{Row: 2, Col: 1}, {Row: 0, Col: 0}, {Row: 1, Col: 3}}
	got := SelectionText(&tbl, cells, opts)
	want := "0\n13\n21"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestSelectionText_SkipsOutOfRange(t *testing.T) {
	tbl := sampleTable()
	opts := normalize.Options{Multiplier: 1, DecimalPlaces: 2}
	got := SelectionText(&tbl, []selection.Cell{{Row: 99, Col: 0}, {Row: 0, Col: 1}}, opts)
	if got != "1234.50" {
		t.Fatalf("expected only in-range cell, got %q", got)
	}
}

func TestWriteCSV(t *testing.T) {
	tbl := sampleTable()
	var buf bytes.Buffer
	opts := normalize.Options{Multiplier: 1, DecimalPlaces: 2}
	if err := WriteCSV(&buf, &tbl, opts); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "Line Item,Amount" {
		t.Fatalf("bad csv header %q", lines[0])
	}
	if lines[2] != "cost of goods,-350.25" {
		t.Fatalf("bad csv row %q", lines[2])
	}
}

func TestWriteCSV_AbsentTable(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil, normalize.DefaultOptions()); err != nil {
		t.Fatalf("absent table must not error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("absent table must write nothing, got %q", buf.String())
	}
}

func TestWriterClipboard(t *testing.T) {
	var buf bytes.Buffer
	var clip Clipboard = WriterClipboard{W: &buf}
	if err := clip.Write(context.Background(), "ok"); err != nil {
		t.Fatalf("clipboard write: %v", err)
	}
	if buf.String() != "ok" {
		t.Fatalf("expected ok, got %q", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	tbl := sampleTable()
	path := t.TempDir() + "/out.xlsx"
	opts := normalize.Options{Multiplier: 1, DecimalPlaces: 2, TitleCase: true}
	if err := WriteXLSX(path, []table.Table{tbl, tbl}, opts); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Fatalf("expected workbook on disk, err=%v", err)
	}
}

func TestWritePDF(t *testing.T) {
	tbl := sampleTable()
	path := t.TempDir() + "/out.pdf"
	opts := normalize.Options{Multiplier: 1, DecimalPlaces: 2}
	if err := WritePDF(path, []table.Table{tbl}, opts); err != nil {
		t.Fatalf("write pdf: %v", err)
	}
	if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
		t.Fatalf("expected pdf on disk, err=%v", err)
	}
}
