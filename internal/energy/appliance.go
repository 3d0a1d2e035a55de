package energy

import (
	"fmt"
	"math"
)

// applianceEntry pairs an everyday appliance with its typical wattage.
type applianceEntry struct {
	Name  string
	Watts float64
}

var applianceCatalog = []applianceEntry{
	{"a hair dryer", 1800},
	{"a microwave oven", 1200},
	{"an electric kettle", 1500},
	{"a vacuum cleaner", 800},
	{"a refrigerator", 150},
	{"a light bulb", 60},
	{"a washing machine", 500},
	{"a gaming PC", 400},
	{"a laptop", 60},
	{"a dishwasher", 1000},
}

const targetMinutes = 10.0

// Equivalent describes a job's energy as runtime of a household appliance.
type Equivalent struct {
	Name   string
	Amount float64
	Unit   string // "s", "m" or "h"
}

// UnitName expands the unit abbreviation for human-readable output.
func (e Equivalent) UnitName() string {
	switch e.Unit {
	case "s":
		return "seconds"
	case "m":
		return "minutes"
	case "h":
		return "hours"
	}
	return e.Unit
}

// Sentence renders the analogy for log output.
func (e Equivalent) Sentence() string {
	if e.Name == "negligible usage" {
		return "Energy use too small to compare with everyday appliances."
	}
	return fmt.Sprintf("That's about the same energy as using %s for %g %s.", e.Name, e.Amount, e.UnitName())
}

// EquivalentAppliance picks the catalog appliance whose runtime at its
// typical wattage best matches the given energy. Candidates must run for
// 1-120 minutes and are judged by distance to a 10-minute target; when no
// candidate qualifies, the appliance numerically closest to 10 minutes
// wins regardless of the bound. Non-positive or NaN energy is reported as
// negligible usage.
func EquivalentAppliance(joules float64) Equivalent {
	if joules <= 0 || math.IsNaN(joules) {
		return Equivalent{Name: "negligible usage", Amount: 0, Unit: "s"}
	}

	bestName := "a light bulb"
	bestSeconds := joules / 60
	bestDelta := math.Inf(1)

	for _, entry := range applianceCatalog {
		seconds := joules / entry.Watts
		if seconds < 1 {
			continue
		}
		minutes := seconds / 60
		delta := math.Abs(minutes - targetMinutes)
		if minutes >= 1 && minutes <= 120 && delta < bestDelta {
			bestName = entry.Name
			bestSeconds = seconds
			bestDelta = delta
		}
	}

	if math.IsInf(bestDelta, 1) {
		closest := math.Inf(1)
		for _, entry := range applianceCatalog {
			delta := math.Abs(joules/entry.Watts/60 - targetMinutes)
			if delta < closest {
				closest = delta
				bestName = entry.Name
				bestSeconds = joules / entry.Watts
			}
		}
	}

	switch {
	case bestSeconds < 60:
		return Equivalent{Name: bestName, Amount: round1(bestSeconds), Unit: "s"}
	case bestSeconds < 3600:
		return Equivalent{Name: bestName, Amount: round1(bestSeconds / 60), Unit: "m"}
	default:
		return Equivalent{Name: bestName, Amount: round2(bestSeconds / 3600), Unit: "h"}
	}
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
