package hdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToFrameScalar(t *testing.T) {
	v := 7.5
	f, err := (&Dataset{Scalar: &v}).ToFrame()
	require.NoError(t, err)
	assert.Equal(t, 1, f.Rows())
	vals, ok := f.Column("value")
	require.True(t, ok)
	assert.Equal(t, []float64{7.5}, vals)
}

func TestToFrameRecord(t *testing.T) {
	d := &Dataset{Fields: []Field{
		{Name: "ElapsedTime", Values: []float64{0, 10}},
		{Name: "NodePower", Values: []float64{100, 110}},
	}}
	f, err := d.ToFrame()
	require.NoError(t, err)
	assert.Equal(t, []string{"ElapsedTime", "NodePower"}, f.ColumnNames())
	assert.Equal(t, 2, f.Rows())
}

func TestToFrameRecordLengthMismatch(t *testing.T) {
	d := &Dataset{Fields: []Field{
		{Name: "a", Values: []float64{1, 2}},
		{Name: "b", Values: []float64{1}},
	}}
	_, err := d.ToFrame()
	assert.ErrorContains(t, err, "expected 2")
}

func TestToFrameArray(t *testing.T) {
	f, err := (&Dataset{Array: &Array{Dims: []int{3}, Data: []float64{1, 2, 3}}}).ToFrame()
	require.NoError(t, err)
	vals, _ := f.Column("value")
	assert.Equal(t, []float64{1, 2, 3}, vals)
}

func TestToFrameMatrixFlattens(t *testing.T) {
	d := &Dataset{Array: &Array{Dims: []int{2, 3}, Data: []float64{1, 2, 3, 4, 5, 6}}}
	f, err := d.ToFrame()
	require.NoError(t, err)
	assert.Equal(t, []string{"col_0", "col_1", "col_2"}, f.ColumnNames())
	col1, _ := f.Column("col_1")
	assert.Equal(t, []float64{2, 5}, col1)
}

func TestToFrameBadShapes(t *testing.T) {
	_, err := (&Dataset{Array: &Array{Dims: []int{2, 2}, Data: []float64{1, 2, 3}}}).ToFrame()
	assert.Error(t, err)

	_, err = (&Dataset{}).ToFrame()
	assert.Error(t, err)
}
