package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/hyperifyio/gotabular/internal/normalize"
	"github.com/hyperifyio/gotabular/internal/table"
)

// WriteCSV writes the table as RFC 4180 CSV with pipeline-formatted,
// separator-stripped values. An absent table writes nothing.
func WriteCSV(w io.Writer, t *table.Table, opts normalize.Options) error {
	if t == nil || len(t.Headers) == 0 {
		return nil
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(headerRow(t, opts)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range t.Rows {
		rec := make([]string, len(t.Headers))
		for j, h := range t.Headers {
			rec[j] = normalize.Apply(t.Value(i, h), opts).Plain
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
