package energy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquivalentAppliance(t *testing.T) {
	tests := []struct {
		name   string
		joules float64
		want   Equivalent
	}{
		{
			name:   "exact ten minute dishwasher",
			joules: 1000 * 600,
			want:   Equivalent{Name: "a dishwasher", Amount: 10, Unit: "m"},
		},
		{
			name:   "small job falls back to closest",
			joules: 2000,
			want:   Equivalent{Name: "a light bulb", Amount: 33.3, Unit: "s"},
		},
		{
			name:   "long job reported in hours",
			joules: 1800 * 7200,
			want:   Equivalent{Name: "a hair dryer", Amount: 2, Unit: "h"},
		},
		{
			name:   "zero energy",
			joules: 0,
			want:   Equivalent{Name: "negligible usage", Amount: 0, Unit: "s"},
		},
		{
			name:   "negative energy",
			joules: -5,
			want:   Equivalent{Name: "negligible usage", Amount: 0, Unit: "s"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EquivalentAppliance(tt.joules))
		})
	}
}

func TestEquivalentApplianceNaN(t *testing.T) {
	got := EquivalentAppliance(math.NaN())
	assert.Equal(t, "negligible usage", got.Name)
}

func TestEquivalentApplianceDeterministic(t *testing.T) {
	first := EquivalentAppliance(123456)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EquivalentAppliance(123456))
	}
}

func TestEquivalentSentence(t *testing.T) {
	e := Equivalent{Name: "a dishwasher", Amount: 10, Unit: "m"}
	assert.Equal(t, "That's about the same energy as using a dishwasher for 10 minutes.", e.Sentence())

	neg := EquivalentAppliance(0)
	assert.Equal(t, "Energy use too small to compare with everyday appliances.", neg.Sentence())
}
