package spreadsheet

import (
	"io"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/riskibarqy/icl-ladder/internal/domain/schema"
)

// Workbook is a decoded xlsx file: every sheet as a header row plus data rows.
type Workbook struct {
	Name   string
	Sheets []schema.Table
}

// Sheet returns the first sheet whose name satisfies match.
func (w Workbook) Sheet(match func(string) bool) (schema.Table, bool) {
	for _, sheet := range w.Sheets {
		if match(sheet.Name) {
			return sheet, true
		}
	}
	return schema.Table{}, false
}

func ReadFile(path string) (Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Workbook{}, crerr.Wrapf(err, "open workbook %s", path)
	}
	defer f.Close()

	return decode(filepath.Base(path), f)
}

// Read decodes a workbook from r, e.g. an uploaded file.
func Read(name string, r io.Reader) (Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Workbook{}, crerr.Wrapf(err, "open workbook %s", name)
	}
	defer f.Close()

	return decode(name, f)
}

func decode(name string, f *excelize.File) (Workbook, error) {
	workbook := Workbook{Name: name}
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			return Workbook{}, crerr.Wrapf(err, "read sheet %q of %s", sheetName, name)
		}

		table := schema.Table{Name: sheetName}
		if len(rows) > 0 {
			table.Header = rows[0]
			table.Rows = rows[1:]
		}
		workbook.Sheets = append(workbook.Sheets, table)
	}
	return workbook, nil
}
