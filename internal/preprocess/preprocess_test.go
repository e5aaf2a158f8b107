package preprocess

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/mlstart-cli/internal/dataset"
	"github.com/KaramelBytes/mlstart-cli/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableFrom(t *testing.T, csv string) *dataset.Table {
	t.Helper()
	f, err := dataset.Read(strings.NewReader(csv), "test.csv", ',', 0)
	require.NoError(t, err)
	numeric, _, err := dataset.IdentifyColumns(f)
	require.NoError(t, err)
	return dataset.NewTable(f, numeric)
}

func nums(c *dataset.Column) []float64 {
	out := make([]float64, len(c.Cells))
	for i, cell := range c.Cells {
		out[i] = cell.Num
	}
	return out
}

func TestNormalizeMissing(t *testing.T) {
	tb := tableFrom(t, "n,c\n1,red\nabc,@@\nNaN,a-1\n")
	c := &Context{Task: task.Classification}
	require.NoError(t, NormalizeMissing(tb, c))

	n := tb.Column("n")
	assert.True(t, n.Cells[0].Valid)
	assert.Equal(t, 1.0, n.Cells[0].Num)
	assert.False(t, n.Cells[1].Valid)
	assert.False(t, n.Cells[2].Valid)

	col := tb.Column("c")
	assert.True(t, col.Cells[0].Valid)
	assert.False(t, col.Cells[1].Valid, "symbols only")
	assert.True(t, col.Cells[2].Valid)
}

func TestImputeMissing(t *testing.T) {
	tb := tableFrom(t, "n,c,empty,y\n1,b,,1\n?,a,,0\n5,a,,1\n3,b,,0\n4,?,,1\n")
	c := &Context{Task: task.Classification, Target: "y"}
	require.NoError(t, NormalizeMissing(tb, c))
	require.NoError(t, ImputeMissing(tb, c))

	assert.Nil(t, tb.Column("empty"))
	assert.InDelta(t, 3.25, tb.Column("n").Cells[1].Num, 1e-12)
	// a and b both appear twice; b was seen first
	assert.Equal(t, "b", tb.Column("c").Cells[4].Str)
	assert.Contains(t, c.Warnings, `dropped column "empty": no values present`)

	tb = tableFrom(t, "x,y\n1,?\n2,?\n")
	c = &Context{Task: task.Regression, Target: "y"}
	require.NoError(t, NormalizeMissing(tb, c))
	assert.ErrorIs(t, ImputeMissing(tb, c), ErrEmptyTarget)
}

func TestEncodeCategorical(t *testing.T) {
	t.Run("classification label encodes sorted values", func(t *testing.T) {
		tb := tableFrom(t, "color,label\nred,yes\nblue,no\ngreen,yes\n")
		c := &Context{Task: task.Classification, Target: "label"}
		require.NoError(t, EncodeCategorical(tb, c))
		assert.Equal(t, []float64{2, 0, 1}, nums(tb.Column("color")))
		assert.Equal(t, []float64{1, 0, 1}, nums(tb.Column("label")))
		assert.Equal(t, dataset.Numeric, tb.Column("color").Kind)
	})

	t.Run("regression one-hot expands features", func(t *testing.T) {
		tb := tableFrom(t, "color,grade,price\nred,b,10\nblue,a,20\nred,a,30\n")
		c := &Context{Task: task.Regression, Target: "grade"}
		require.NoError(t, EncodeCategorical(tb, c))
		assert.Equal(t, []string{"grade", "price", "color_blue", "color_red"}, tb.Names())
		assert.Equal(t, []float64{0, 1, 0}, nums(tb.Column("color_blue")))
		assert.Equal(t, []float64{1, 0, 1}, nums(tb.Column("color_red")))
		// the target stays a single label-encoded column
		assert.Equal(t, []float64{1, 0, 0}, nums(tb.Column("grade")))
	})

	t.Run("name collision", func(t *testing.T) {
		tb := tableFrom(t, "color,color_red,y\nred,1,1\n")
		c := &Context{Task: task.Regression, Target: "y"}
		assert.Error(t, EncodeCategorical(tb, c))
	})
}

func TestScaleNumeric(t *testing.T) {
	tb := tableFrom(t, "a,flat,y\n1,7,10\n2,7,20\n3,7,30\n")
	c := &Context{Task: task.Regression, Target: "y", Numeric: []string{"a", "flat", "y"}}
	require.NoError(t, NormalizeMissing(tb, c))
	require.NoError(t, ScaleNumeric(tb, c))

	z := math.Sqrt(1.5)
	assert.InDeltaSlice(t, []float64{-z, 0, z}, nums(tb.Column("a")), 1e-12)
	assert.Equal(t, []float64{0, 0, 0}, nums(tb.Column("flat")))
	assert.Equal(t, []float64{10, 20, 30}, nums(tb.Column("y")))
}

func TestRemoveDuplicates(t *testing.T) {
	tb := tableFrom(t, "a,b\n1,x\n2,y\n1,x\n1,y\n")
	c := &Context{Task: task.Classification}
	require.NoError(t, NormalizeMissing(tb, c))
	require.NoError(t, RemoveDuplicates(tb, c))
	assert.Equal(t, 3, tb.Len())
	assert.Equal(t, []float64{1, 2, 1}, nums(tb.Column("a")))
	assert.Equal(t, []string{"removed 1 duplicate rows"}, c.Warnings)
}

func TestHandleOutliers(t *testing.T) {
	csv := "v,y\n1,1\n2,2\n3,3\n4,4\n100,5\n"

	tb := tableFrom(t, csv)
	c := &Context{Task: task.Regression, Target: "y", Numeric: []string{"v", "y"}}
	require.NoError(t, NormalizeMissing(tb, c))
	require.NoError(t, HandleOutliers(tb, c))
	assert.Equal(t, []float64{1, 2, 3, 4}, nums(tb.Column("v")))
	assert.Equal(t, []float64{1, 2, 3, 4}, nums(tb.Column("y")))

	tb = tableFrom(t, csv)
	c = &Context{Task: task.Classification, Target: "y", Numeric: []string{"v", "y"}}
	require.NoError(t, NormalizeMissing(tb, c))
	require.NoError(t, HandleOutliers(tb, c))
	assert.Equal(t, 5, tb.Len())
}

func TestPipelineRun(t *testing.T) {
	in := tableFrom(t, "size,color,,price\n1,red,x,10\n2,blue,y,20\n?,red,z,30\n2,blue,y,20\n")
	p := &Pipeline{Task: task.Regression, Target: "price"}

	out, warnings, err := p.Run(in)
	require.NoError(t, err)
	assert.Equal(t, []string{"size", "price", "color_blue", "color_red"}, out.Names())
	assert.Equal(t, 3, out.Len())
	assert.Equal(t, []float64{10, 20, 30}, nums(out.Column("price")))
	assert.Equal(t, []float64{1, 0, 1}, nums(out.Column("color_red")))
	assert.Contains(t, warnings, "dropped unnamed column")
	assert.Contains(t, warnings, "removed 1 duplicate rows")

	// the input is left untouched
	assert.Equal(t, 4, in.Len())
	assert.Equal(t, dataset.Categorical, in.Column("color").Kind)

	X, y, features, err := dataset.Split(out, "price", task.Regression)
	require.NoError(t, err)
	assert.Len(t, X, 3)
	assert.Len(t, y, 3)
	assert.Equal(t, []string{"size", "color_blue", "color_red"}, features)
}

func TestPipelineErrors(t *testing.T) {
	in := tableFrom(t, "a,b\n1,2\n")
	_, _, err := (&Pipeline{Task: task.Regression, Target: "zzz"}).Run(in)
	assert.ErrorIs(t, err, dataset.ErrTargetNotFound)

	_, _, err = (&Pipeline{Target: "b"}).Run(in)
	assert.ErrorIs(t, err, task.ErrInvalidTask)

	in = tableFrom(t, "a,b\n1,?\n")
	_, _, err = (&Pipeline{Task: task.Regression, Target: "b"}).Run(in)
	assert.ErrorIs(t, err, ErrEmptyTarget)
}
