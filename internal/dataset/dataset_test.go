package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const salesCSV = "region,product,sales,quantity\n" +
	"North,A,100,1\n" +
	"South,B,200,2\n" +
	"North,A,300,3\n" +
	"East,C,400,4\n"

func writeCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func loadSales(t *testing.T) *Dataset {
	t.Helper()
	d, err := Load(writeCSV(t, "sales.csv", salesCSV))
	require.NoError(t, err)
	return d
}

func TestLoad(t *testing.T) {
	d := loadSales(t)

	assert.Equal(t, "sales.csv", d.Name())
	assert.Equal(t, []string{"region", "product", "sales", "quantity"}, d.Columns())
	assert.Equal(t, 4, d.Len())
	assert.True(t, d.Has("sales"))
	assert.False(t, d.Has("Sales"))
	assert.Equal(t, []string{"South", "B", "200", "2"}, d.Row(1))
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_EmptyFile(t *testing.T) {
	_, err := Load(writeCSV(t, "empty.csv", ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing header")
}

func TestLoad_BOMAndRaggedRows(t *testing.T) {
	d, err := Load(writeCSV(t, "bom.csv", "\ufeffa,b\n1\n2,3,4\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, d.Columns())
	assert.Equal(t, []string{"1", ""}, d.Row(0))
	assert.Equal(t, []string{"2", "3"}, d.Row(1))
}

func TestLoad_TSV(t *testing.T) {
	d, err := Load(writeCSV(t, "data.tsv", "x\ty\n1\t2\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, d.Columns())
}

func TestNew_DuplicateColumn(t *testing.T) {
	_, err := New("dup", []string{"a", "a"}, nil)
	require.Error(t, err)
}

func TestFloats(t *testing.T) {
	d, err := New("t", []string{"n", "s", "gaps"}, [][]string{
		{"1.5", "x", ""},
		{" 2 ", "y", "NA"},
		{"-3", "z", "7"},
	})
	require.NoError(t, err)

	vals, err := d.Floats("n")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2, -3}, vals)

	_, err = d.Floats("s")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = d.Floats("missing")
	assert.ErrorIs(t, err, ErrColumnNotFound)

	gaps, err := d.Floats("gaps")
	require.NoError(t, err)
	assert.True(t, math.IsNaN(gaps[0]))
	assert.True(t, math.IsNaN(gaps[1]))
	assert.Equal(t, 7.0, gaps[2])
}

func TestFormatRows(t *testing.T) {
	d := loadSales(t)
	out := d.FormatRows([]int{2})

	assert.Contains(t, out, "region")
	assert.Contains(t, out, "quantity")
	assert.Contains(t, out, "300")
	assert.NotContains(t, out, "South")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "42", FormatNumber(42))
	assert.Equal(t, "-3", FormatNumber(-3))
	assert.Equal(t, "1.75", FormatNumber(1.75))
	assert.Equal(t, "NaN", FormatNumber(math.NaN()))
}
