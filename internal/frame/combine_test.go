package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameWith(times []uint64, name string, values []float64) *Frame {
	f := New()
	f.Time = times
	f.AddColumn(name, values)
	return f
}

func TestCombineTimelineUnion(t *testing.T) {
	a := frameWith([]uint64{0, 10, 20}, "NodePower", []float64{100, 110, 120})
	b := frameWith([]uint64{5, 10, 30}, "RSS", []float64{1, 2, 3})

	combined := Combine([]Input{
		{Prefix: "Energy", Frame: a},
		{Prefix: "Task", Frame: b},
	})

	assert.Equal(t, []uint64{0, 5, 10, 20, 30}, combined.Time)
	assert.Equal(t, []string{"Energy__NodePower", "Task__RSS"}, combined.ColumnNames())
	assert.Equal(t, 5, combined.Rows())
}

func TestCombineInterpolatesInteriorGapsOnly(t *testing.T) {
	a := frameWith([]uint64{0, 10, 20}, "NodePower", []float64{100, 100, 100})
	b := frameWith([]uint64{0, 20}, "RSS", []float64{1024, 5120})

	combined := Combine([]Input{
		{Prefix: "Energy", Frame: a},
		{Prefix: "Task", Frame: b},
	})

	rss, ok := combined.Column("Task__RSS")
	require.True(t, ok)
	// Row-positional fill: the single interior row gets the midpoint.
	assert.Equal(t, []float64{1024, 3072, 5120}, rss)
}

func TestCombineLeavesEdgesMissing(t *testing.T) {
	a := frameWith([]uint64{0, 10, 20, 30}, "NodePower", []float64{1, 1, 1, 1})
	b := frameWith([]uint64{10, 20}, "RSS", []float64{7, 9})

	combined := Combine([]Input{
		{Prefix: "Energy", Frame: a},
		{Prefix: "Task", Frame: b},
	})

	rss, ok := combined.Column("Task__RSS")
	require.True(t, ok)
	assert.True(t, math.IsNaN(rss[0]))
	assert.Equal(t, 7.0, rss[1])
	assert.Equal(t, 9.0, rss[2])
	assert.True(t, math.IsNaN(rss[3]))
}

func TestCombineDuplicateKeysFirstRowWins(t *testing.T) {
	b := New()
	b.Time = []uint64{0, 10, 10, 20}
	b.AddColumn("RSS", []float64{1, 2, 99, 4})

	combined := Combine([]Input{{Prefix: "Task", Frame: b}})

	require.Equal(t, 3, combined.Rows())
	rss, ok := combined.Column("Task__RSS")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 4}, rss)
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   []float64
	}{
		{
			name:   "even gap",
			values: []float64{0, math.NaN(), math.NaN(), 9},
			want:   []float64{0, 3, 6, 9},
		},
		{
			name:   "multiple gaps",
			values: []float64{1, math.NaN(), 3, math.NaN(), 5},
			want:   []float64{1, 2, 3, 4, 5},
		},
		{
			name:   "no gaps",
			values: []float64{1, 2, 3},
			want:   []float64{1, 2, 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interpolate(tt.values)
			assert.Equal(t, tt.want, tt.values)
		})
	}
}

func TestInterpolateAllMissing(t *testing.T) {
	values := []float64{math.NaN(), math.NaN()}
	interpolate(values)
	assert.True(t, math.IsNaN(values[0]))
	assert.True(t, math.IsNaN(values[1]))
}
