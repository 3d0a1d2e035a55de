package hdf

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreservesDocumentOrder(t *testing.T) {
	doc := `{
		"measurement": {
			"zeta": {"data": 1},
			"alpha": {"data": 2},
			"mid": {"data": 3}
		}
	}`
	nodes, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	group := nodes[0]
	assert.Equal(t, "measurement", group.Name)
	require.Len(t, group.Children, 3)
	assert.Equal(t, "zeta", group.Children[0].Name)
	assert.Equal(t, "alpha", group.Children[1].Name)
	assert.Equal(t, "mid", group.Children[2].Name)
}

func TestParseDatasetShapes(t *testing.T) {
	doc := `{
		"scalar": {"data": 42.5},
		"vector": {"data": [1, null, 3]},
		"matrix": {"data": [[1, 2], [3, 4]]},
		"record": {"fields": {"ElapsedTime": [0, 10], "NodePower": [100, 110]}}
	}`
	nodes, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, nodes, 4)

	scalar := nodes[0].Dataset
	require.NotNil(t, scalar)
	require.NotNil(t, scalar.Scalar)
	assert.Equal(t, 42.5, *scalar.Scalar)

	vector := nodes[1].Dataset
	require.NotNil(t, vector.Array)
	assert.Equal(t, []int{3}, vector.Array.Dims)
	assert.Equal(t, 1.0, vector.Array.Data[0])
	assert.True(t, math.IsNaN(vector.Array.Data[1]))
	assert.Equal(t, 3.0, vector.Array.Data[2])

	matrix := nodes[2].Dataset
	require.NotNil(t, matrix.Array)
	assert.Equal(t, []int{2, 2}, matrix.Array.Dims)
	assert.Equal(t, []float64{1, 2, 3, 4}, matrix.Array.Data)

	record := nodes[3].Dataset
	require.Len(t, record.Fields, 2)
	assert.Equal(t, "ElapsedTime", record.Fields[0].Name)
	assert.Equal(t, []float64{0, 10}, record.Fields[0].Values)
	assert.Equal(t, "NodePower", record.Fields[1].Name)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"root not object", `[1, 2]`},
		{"ragged rows", `{"m": {"data": [[1, 2], [3]]}}`},
		{"scalar amid subarrays", `{"m": {"data": [[1], 2]}}`},
		{"dataset with children", `{"m": {"data": 1, "child": {"data": 2}}}`},
		{"multidimensional field", `{"m": {"fields": {"a": [[1], [2]]}}}`},
		{"truncated", `{"m": {"data": [1, 2`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestSanitizeParts(t *testing.T) {
	assert.Equal(t, "run_0__Energy", SanitizeParts([]string{"run/0", "Energy"}))
	assert.Equal(t, "plain", SanitizeParts([]string{"plain"}))
}

func TestPrefix(t *testing.T) {
	tests := []struct {
		parts []string
		want  string
	}{
		{[]string{"measurement", "Energy"}, "Energy"},
		{[]string{"measurement", "node", "Task"}, "node__Task"},
		{[]string{"Energy"}, "Energy"},
		{[]string{"measurement", "run/0"}, "run_0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Prefix(tt.parts), "parts=%v", tt.parts)
	}
}
