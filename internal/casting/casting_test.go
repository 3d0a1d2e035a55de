package casting

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energy-analysis/internal/frame"
)

func TestApplyPowerDomain(t *testing.T) {
	f := frame.New()
	f.Time = []uint64{0, 1, 2, 3}
	f.AddColumn("Energy__NodePower", []float64{-5, math.NaN(), 20000, 42.5})

	Apply(f)

	power, ok := f.Column("Energy__NodePower")
	require.True(t, ok)
	assert.True(t, math.IsNaN(power[0]), "negative power must become null")
	assert.True(t, math.IsNaN(power[1]), "null stays null")
	assert.True(t, math.IsNaN(power[2]), "out-of-range power must become null")
	assert.Equal(t, 42.5, power[3])
	assert.Equal(t, frame.Float32, f.Columns[0].Kind)
}

func TestApplyRules(t *testing.T) {
	tests := []struct {
		column   string
		value    float64
		want     float64
		wantNull bool
		kind     frame.Kind
	}{
		{column: "Task__CPUFrequency", value: 2400.7, want: 2400, kind: frame.Uint16},
		{column: "Task__CPUFrequency", value: 10001, wantNull: true, kind: frame.Uint16},
		{column: "Energy__EpochTime", value: 1700000000, want: 1700000000, kind: frame.Int64},
		{column: "Energy__EpochTime", value: 4102444801, wantNull: true, kind: frame.Int64},
		{column: "Task__RSS", value: 1024.9, want: 1024, kind: frame.Uint64},
		{column: "Task__RSS_MB", value: 1.5, want: 1.5, kind: frame.Float32},
		{column: "Task__CPUUtilization", value: 101, wantNull: true, kind: frame.Float32},
		{column: "Task__CPUUtilization_normalized", value: 0.5, want: 0.5, kind: frame.Float32},
		{column: "Task__CPUUtilization_normalized", value: 1.5, wantNull: true, kind: frame.Float32},
		{column: "Energy_used_J", value: math.Inf(1), wantNull: true, kind: frame.Float32},
		{column: "Energy_used_J", value: 2000, want: 2000, kind: frame.Float32},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			f := frame.New()
			f.Time = []uint64{0}
			f.AddColumn(tt.column, []float64{tt.value})

			Apply(f)

			got, ok := f.Column(tt.column)
			require.True(t, ok)
			if tt.wantNull {
				assert.True(t, math.IsNaN(got[0]), "value %g should be null", tt.value)
			} else {
				assert.Equal(t, tt.want, got[0])
			}
			assert.Equal(t, tt.kind, f.Columns[0].Kind)
		})
	}
}

func TestApplyLeavesUnmatchedColumns(t *testing.T) {
	f := frame.New()
	f.Time = []uint64{0}
	f.AddColumn("Task__Mystery", []float64{-1e12})

	Apply(f)

	got, _ := f.Column("Task__Mystery")
	assert.Equal(t, -1e12, got[0])
	assert.Equal(t, frame.Float64, f.Columns[0].Kind)
}

func TestMatchOrder(t *testing.T) {
	// Derived energy columns must hit their own rule, not the generic
	// energy suffix rule.
	rule, ok := match("Energy_used_J")
	require.True(t, ok)
	assert.Equal(t, "energy-derived", rule.Name)

	rule, ok = match("Energy__Energy")
	require.True(t, ok)
	assert.Equal(t, "energy", rule.Name)

	rule, ok = match("Task__CPUUtilization_normalized")
	require.True(t, ok)
	assert.Equal(t, "utilization-normalized", rule.Name)
}
