package dataset

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(t *testing.T, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for name, rows := range sheets {
		if name != "Sheet1" {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	p := filepath.Join(t.TempDir(), "hops.xlsx")
	require.NoError(t, f.SaveAs(p))
	return p
}

func TestLoadXLSX(t *testing.T) {
	p := writeWorkbook(t, map[string][][]any{
		"Sheet1": {
			{"plot", "alpha", "variety"},
			{"A1", 12.5, "cascade"},
			{"B3", 10.2},
			{"C2", 9, "citra"},
		},
		"Yield": {
			{"plot", "kg"},
			{"A1", 420},
		},
	})

	f, err := Load(p, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "hops.xlsx", f.Name)
	assert.Equal(t, []string{"plot", "alpha", "variety"}, f.Header)
	require.Len(t, f.Records, 3)
	assert.Equal(t, []string{"A1", "12.5", "cascade"}, f.Records[0])
	assert.Equal(t, []string{"B3", "10.2", ""}, f.Records[1])

	f, err = Load(p, LoadOptions{Sheet: "Yield"})
	require.NoError(t, err)
	assert.Equal(t, []string{"plot", "kg"}, f.Header)
	assert.Equal(t, [][]string{{"A1", "420"}}, f.Records)

	f, err = Load(p, LoadOptions{MaxRows: 1})
	require.NoError(t, err)
	assert.Len(t, f.Records, 1)

	_, err = Load(p, LoadOptions{Sheet: "Missing"})
	assert.ErrorIs(t, err, ErrSheetNotFound)
}

func TestLoadXLSXEmptySheet(t *testing.T) {
	p := writeWorkbook(t, map[string][][]any{"Sheet1": nil})
	_, err := LoadXLSX(p, LoadOptions{})
	assert.ErrorIs(t, err, ErrEmptyDataset)
}
