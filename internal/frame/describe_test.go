package frame

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	f := New()
	f.Time = []uint64{0, 10, 20, 30, 40}
	f.AddColumn("v", []float64{1, 2, 3, 4, math.NaN()})

	s := f.Describe()
	require.Equal(t, []string{"ElapsedTime", "v"}, s.Columns)
	require.Len(t, s.Rows, 9)

	get := func(statistic string) float64 {
		for _, row := range s.Rows {
			if row.Statistic == statistic {
				return row.Values[1]
			}
		}
		t.Fatalf("statistic %s not found", statistic)
		return 0
	}

	assert.Equal(t, 4.0, get("count"))
	assert.Equal(t, 1.0, get("null_count"))
	assert.Equal(t, 2.5, get("mean"))
	assert.InDelta(t, 1.2909944, get("std"), 1e-6)
	assert.Equal(t, 1.0, get("min"))
	assert.Equal(t, 1.75, get("25%"))
	assert.Equal(t, 2.5, get("50%"))
	assert.Equal(t, 3.25, get("75%"))
	assert.Equal(t, 4.0, get("max"))
}

func TestDescribeAllMissing(t *testing.T) {
	f := New()
	f.AddColumn("v", []float64{math.NaN(), math.NaN()})

	s := f.Describe()
	require.Equal(t, []string{"v"}, s.Columns)
	assert.Equal(t, 0.0, s.Rows[0].Values[0]) // count
	assert.Equal(t, 2.0, s.Rows[1].Values[0]) // null_count
	assert.True(t, math.IsNaN(s.Rows[2].Values[0]))
	assert.True(t, math.IsNaN(s.Rows[8].Values[0]))
}

func TestDescribeSingleValueStd(t *testing.T) {
	f := New()
	f.AddColumn("v", []float64{5})

	s := f.Describe()
	assert.True(t, math.IsNaN(s.Rows[3].Values[0]))
	assert.Equal(t, 5.0, s.Rows[2].Values[0])
}

func TestPercentileSorted(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}
	assert.Equal(t, 10.0, percentileSorted(sorted, 0))
	assert.Equal(t, 25.0, percentileSorted(sorted, 0.5))
	assert.Equal(t, 40.0, percentileSorted(sorted, 1))
	assert.True(t, math.IsNaN(percentileSorted(nil, 0.5)))
}
