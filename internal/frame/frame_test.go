package frame

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortByColumnMissingFirst(t *testing.T) {
	f := New()
	f.Time = []uint64{0, 1, 2, 3}
	f.AddColumn("EpochTime", []float64{30, math.NaN(), 10, 20})
	f.AddColumn("v", []float64{3, 0, 1, 2})

	require.NoError(t, f.SortByColumn("EpochTime"))

	epochs, _ := f.Column("EpochTime")
	assert.True(t, math.IsNaN(epochs[0]))
	assert.Equal(t, []float64{10, 20, 30}, epochs[1:])

	// Every other column follows the same row order.
	v, _ := f.Column("v")
	assert.Equal(t, []float64{0, 1, 2, 3}, v)
	assert.Equal(t, []uint64{1, 2, 3, 0}, f.Time)
}

func TestSortByColumnUnknown(t *testing.T) {
	f := New()
	assert.Error(t, f.SortByColumn("nope"))
}

func TestSetColumnResetsKind(t *testing.T) {
	f := New()
	f.AddColumn("NodePower", []float64{1})
	f.SetKind("NodePower", Float32)
	f.SetColumn("NodePower", []float64{2})
	assert.Equal(t, Float64, f.Columns[0].Kind)
}

func TestWriteCSV(t *testing.T) {
	f := New()
	f.Time = []uint64{0, 10}
	f.AddColumn("Task__RSS", []float64{1024, math.NaN()})
	f.AddColumn("Energy__NodePower", []float64{42.5, 43.25})
	f.SetKind("Task__RSS", Uint64)
	f.SetKind("Energy__NodePower", Float32)

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, f.WriteCSV(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"ElapsedTime,Task__RSS,Energy__NodePower\n0,1024,42.5\n10,,43.25\n",
		string(raw))
}

func TestRowsPrefersTime(t *testing.T) {
	f := New()
	assert.Equal(t, 0, f.Rows())
	assert.True(t, f.IsEmpty())

	f.AddColumn("v", []float64{1, 2})
	assert.Equal(t, 2, f.Rows())

	f.Time = []uint64{7}
	assert.Equal(t, 1, f.Rows())
}
