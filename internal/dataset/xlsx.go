package dataset

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned when the requested worksheet does not exist.
var ErrSheetNotFound = errors.New("sheet not found")

// LoadXLSX reads one worksheet of an .xlsx workbook. The first non-empty row
// is the header; cells are read as their formatted string values.
func LoadXLSX(path string, opt LoadOptions) (*Frame, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := opt.Sheet
	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrEmptyDataset, filepath.Base(path))
		}
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrSheetNotFound, sheet, sheets)
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	name := filepath.Base(path)
	var fr *Frame
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if fr == nil {
			if isBlank(cols) {
				continue
			}
			fr = newFrame(name, cols)
			continue
		}
		if opt.MaxRows > 0 && len(fr.Records) >= opt.MaxRows {
			break
		}
		fr.add(cols)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if fr == nil {
		return nil, fmt.Errorf("%w: %s has no header", ErrEmptyDataset, name)
	}
	return fr, nil
}
