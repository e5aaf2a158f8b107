package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/mlstart-cli/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoadPadsAndSkipsBlankRows(t *testing.T) {
	p := writeFile(t, "hops.csv", "\ufeffplot, alpha,variety\nA1,12.5,cascade\n\nB3,10.2\n,,\n")
	f, err := Load(p, LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "hops.csv", f.Name)
	assert.Equal(t, []string{"plot", "alpha", "variety"}, f.Header)
	require.Len(t, f.Records, 2)
	assert.Equal(t, []string{"B3", "10.2", ""}, f.Records[1])
	assert.Equal(t, 1, f.Index("alpha"))
	assert.Equal(t, -1, f.Index("missing"))
}

func TestLoadTSVAndMaxRows(t *testing.T) {
	p := writeFile(t, "data.tsv", "a\tb\n1\t2\n3\t4\n5\t6\n")
	f, err := Load(p, LoadOptions{MaxRows: 2})
	require.NoError(t, err)
	require.Len(t, f.Records, 2)
	assert.Equal(t, []string{"3", "4"}, f.Records[1])
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), LoadOptions{})
	assert.Error(t, err)

	_, err = Load(writeFile(t, "empty.csv", ""), LoadOptions{})
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, err = ParseDelimiter("#")
	assert.Error(t, err)
	d, err := ParseDelimiter("tab")
	require.NoError(t, err)
	assert.Equal(t, '\t', d)
}

func TestIdentifyColumns(t *testing.T) {
	f, err := Read(strings.NewReader("age,city,score,,notes\n?,Oslo,1.5,x,\n31,Bergen,abc,y,hello\n"), "t.csv", ',', 0)
	require.NoError(t, err)

	numeric, categorical, err := IdentifyColumns(f)
	require.NoError(t, err)
	// only the first non-missing value decides the kind
	assert.Equal(t, []string{"age", "score"}, numeric)
	assert.Equal(t, []string{"city", "notes"}, categorical)

	_, _, err = IdentifyColumns(&Frame{Header: []string{"a"}})
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestIsMissing(t *testing.T) {
	for _, v := range []string{"", " ", "NULL", "NaN", "?", "None"} {
		assert.True(t, IsMissing(v), v)
	}
	for _, v := range []string{"0", "n/a", "x"} {
		assert.False(t, IsMissing(v), v)
	}
}

func numericTable(cols map[string][]float64, order ...string) *Table {
	t := &Table{}
	for _, name := range order {
		c := &Column{Name: name, Kind: Numeric}
		for _, v := range cols[name] {
			c.Cells = append(c.Cells, Cell{Num: v, Valid: true})
		}
		t.Columns = append(t.Columns, c)
	}
	return t
}

func TestSplitFeaturesAndTarget(t *testing.T) {
	tb := numericTable(map[string][]float64{
		"x1": {1, 2, 3},
		"y":  {0.9, 1, 0},
		"x2": {4, 5, 6},
	}, "x1", "y", "x2")

	X, y, features, err := Split(tb, "y", task.Classification)
	require.NoError(t, err)
	assert.Equal(t, []string{"x1", "x2"}, features)
	assert.Equal(t, [][]float64{{1, 4}, {2, 5}, {3, 6}}, X)
	assert.Equal(t, []float64{0, 1, 0}, y)

	_, y, _, err = Split(tb, "y", task.Regression)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.9, 1, 0}, y)

	_, _, _, err = Split(tb, "zzz", task.Regression)
	assert.ErrorIs(t, err, ErrTargetNotFound)

	tb.Columns[2].Cells[1].Valid = false
	_, _, _, err = Split(tb, "y", task.Regression)
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, _, _, err = Split(tb, "y", task.Unknown)
	assert.ErrorIs(t, err, task.ErrInvalidTask)
}

func TestTableOps(t *testing.T) {
	tb := numericTable(map[string][]float64{"a": {1, 2, 3}, "b": {4, 5, 6}}, "a", "b")
	cp := tb.Clone()
	tb.KeepRows([]bool{true, false, true})
	assert.Equal(t, 2, tb.Len())
	assert.Equal(t, 3, cp.Len())
	assert.Equal(t, 3.0, tb.Column("a").Cells[1].Num)

	assert.True(t, tb.Drop("a"))
	assert.False(t, tb.Drop("a"))
	assert.Equal(t, []string{"b"}, tb.Names())
}

func TestTrainTestSplit(t *testing.T) {
	var X [][]float64
	var y []float64
	for i := 0; i < 10; i++ {
		X = append(X, []float64{float64(i)})
		y = append(y, float64(i))
	}
	p, err := TrainTestSplit(X, y, 0.2, 42)
	require.NoError(t, err)
	assert.Len(t, p.XTest, 2)
	assert.Len(t, p.XTrain, 8)

	again, err := TrainTestSplit(X, y, 0.2, 42)
	require.NoError(t, err)
	assert.Equal(t, p.YTest, again.YTest)

	seen := map[float64]bool{}
	for _, v := range append(append([]float64{}, p.YTrain...), p.YTest...) {
		seen[v] = true
	}
	assert.Len(t, seen, 10)
	for i, row := range p.XTest {
		assert.Equal(t, row[0], p.YTest[i])
	}

	small, err := TrainTestSplit(X[:2], y[:2], 0.9, 1)
	require.NoError(t, err)
	assert.Len(t, small.XTrain, 1)
	assert.Len(t, small.XTest, 1)

	_, err = TrainTestSplit(X[:1], y[:1], 0.2, 1)
	assert.Error(t, err)
	_, err = TrainTestSplit(X, y, 1.5, 1)
	assert.Error(t, err)
}

func TestProfileMarkdown(t *testing.T) {
	f, err := Read(strings.NewReader(
		"temp,variety,label\n"+
			"10,cascade,1\n"+
			"12,citra,0\n"+
			"?,cascade,1\n"+
			"14,cascade,0\n"), "brew.csv", ',', 0)
	require.NoError(t, err)

	p, err := NewProfile(f, ProfileOptions{Target: "label"})
	require.NoError(t, err)
	require.Len(t, p.Cols, 3)
	assert.Equal(t, Numeric, p.Cols[0].Kind)
	assert.Equal(t, 1, p.Cols[0].Missing)
	assert.InDelta(t, 12, p.Cols[0].Mean, 1e-12)
	assert.InDelta(t, 2, p.Cols[0].Std, 1e-12)
	assert.Equal(t, task.Classification, p.Task)
	assert.Equal(t, 2, p.Classes)

	md := p.Markdown()
	assert.Contains(t, md, "[DATASET SUMMARY]")
	assert.Contains(t, md, "- temp: numeric (non-null 3, missing 25.0%")
	assert.Contains(t, md, "top: cascade(3), citra(1)")
	assert.Contains(t, md, "Inferred task: classification")

	_, err = NewProfile(f, ProfileOptions{Target: "nope"})
	assert.ErrorIs(t, err, ErrTargetNotFound)
}
