package export

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/hyperifyio/gotabular/internal/normalize"
	"github.com/hyperifyio/gotabular/internal/table"
)

// WriteXLSX writes every table to one workbook, one sheet per table. Numeric
// cells carry the raw transformed value so spreadsheet formulas keep working;
// text cells carry the (optionally title-cased) string.
func WriteXLSX(path string, tables []table.Table, opts normalize.Options) error {
	if len(tables) == 0 {
		return errors.New("no tables to export")
	}
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DCE6F1"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	seen := map[string]bool{}
	for ti, t := range tables {
		name := sheetName(t, ti)
		if seen[name] {
			name = "Table " + strconv.Itoa(ti+1)
		}
		seen[name] = true
		if ti == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %q: %w", name, err)
			}
		}
		for i, h := range headerRow(&tables[ti], opts) {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			if err := f.SetCellValue(name, cell, h); err != nil {
				return fmt.Errorf("write header cell: %w", err)
			}
			_ = f.SetCellStyle(name, cell, cell, headerStyle)
		}
		for ri := range t.Rows {
			for ci, h := range t.Headers {
				cell, _ := excelize.CoordinatesToCellName(ci+1, ri+2)
				fv := normalize.Apply(t.Value(ri, h), opts)
				if fv.Numeric {
					err = f.SetCellValue(name, cell, fv.Number)
				} else {
					err = f.SetCellValue(name, cell, fv.Display)
				}
				if err != nil {
					return fmt.Errorf("write cell %s!%s: %w", name, cell, err)
				}
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// sheetName derives a workbook-safe sheet name from the table title. Excel
// caps names at 31 characters and forbids a handful of characters.
func sheetName(t table.Table, idx int) string {
	name := t.Title
	if name == "" {
		name = "Table " + strconv.Itoa(idx+1)
	}
	clean := make([]rune, 0, len(name))
	for _, r := range name {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			clean = append(clean, ' ')
		default:
			clean = append(clean, r)
		}
	}
	if len(clean) > 31 {
		clean = clean[:31]
	}
	return string(clean)
}
