package energy

import (
	"log/slog"
	"math"
	"strings"

	"energy-analysis/internal/frame"
)

// Metrics is the fixed per-(job, group) energy summary record.
type Metrics struct {
	EnergyToSolutionJ  float64
	TimeToSolutionS    float64
	AveragePowerW      float64
	PeakPowerW         float64
	PeakPowerTimeS     float64
	EnergyDelayProduct float64
	Appliance          Equivalent
}

// ComputeProfile derives cumulative energy columns and summary metrics on
// the combined frame. A power column (NodePower/CurrPower, literal or
// prefixed) takes precedence; without one, a cumulative Energy column
// drives the computation and a synthetic NodePower is reconstructed from
// its increments. Returns nil when the frame is empty or carries neither
// column; both are "nothing to compute" outcomes, not errors.
func ComputeProfile(f *frame.Frame, jobID, groupName string, log *slog.Logger) *Metrics {
	if f.IsEmpty() {
		log.Warn("combined frame empty; skipping energy metrics",
			"job", jobID, "group", groupName)
		return nil
	}

	powerColumn := findColumn(f, isPowerColumn)
	energyColumn := findColumn(f, isEnergyColumn)
	if powerColumn == "" && energyColumn == "" {
		log.Warn("no power or energy column found; skipping energy metrics",
			"job", jobID, "group", groupName)
		return nil
	}

	elapsed := elapsedSeconds(f)
	diff := forwardDiff(elapsed)

	if powerColumn != "" {
		log.Info("computing energy profile from power column",
			"job", jobID, "group", groupName, "column", powerColumn)

		power, _ := f.Column(powerColumn)
		f.SetColumn("NodePower", append([]float64(nil), power...))

		increments := make([]float64, len(elapsed))
		for i := range increments {
			increments[i] = fillZero(diff[i]) * power[i]
		}
		f.SetColumn("ElapsedTime_Diff", fillZeroAll(diff))
		f.SetColumn("Energy_Increment_J", increments)
		f.SetColumn("Energy_used_J", cumulativeSum(increments))
	} else {
		log.Info("computing energy profile from cumulative energy column (power missing)",
			"job", jobID, "group", groupName, "column", energyColumn)

		cumulative, _ := f.Column(energyColumn)
		used := append([]float64(nil), cumulative...)
		increments := fillZeroAll(forwardDiff(used))
		power := make([]float64, len(elapsed))
		for i := range power {
			if !math.IsNaN(diff[i]) && diff[i] > 0 {
				power[i] = increments[i] / diff[i]
			} else {
				power[i] = math.NaN()
			}
		}
		f.SetColumn("Energy_used_J", used)
		f.SetColumn("Energy_Increment_J", increments)
		f.SetColumn("NodePower", power)
	}

	used, _ := f.Column("Energy_used_J")
	power, _ := f.Column("NodePower")

	ets := maxIgnoringNaN(used)
	tts := maxIgnoringNaN(elapsed)
	peakPower, peakTime := peak(power, elapsed)

	avg := math.NaN()
	if tts != 0 && !math.IsNaN(tts) {
		avg = ets / tts
	}
	edp := math.NaN()
	if tts != 0 && !math.IsNaN(tts) && !math.IsNaN(ets) {
		edp = ets * tts
	}

	return &Metrics{
		EnergyToSolutionJ:  ets,
		TimeToSolutionS:    tts,
		AveragePowerW:      avg,
		PeakPowerW:         peakPower,
		PeakPowerTimeS:     peakTime,
		EnergyDelayProduct: edp,
		Appliance:          EquivalentAppliance(ets),
	}
}

func isPowerColumn(name string) bool {
	return name == "NodePower" || name == "CurrPower" ||
		strings.HasSuffix(name, "__NodePower") || strings.HasSuffix(name, "__CurrPower")
}

func isEnergyColumn(name string) bool {
	return name == "Energy" || strings.HasSuffix(name, "__Energy")
}

func findColumn(f *frame.Frame, match func(string) bool) string {
	for _, col := range f.Columns {
		if match(col.Name) {
			return col.Name
		}
	}
	return ""
}

func elapsedSeconds(f *frame.Frame) []float64 {
	out := make([]float64, len(f.Time))
	for i, t := range f.Time {
		out[i] = float64(t)
	}
	return out
}

// forwardDiff leaves the first element (and any element following a NaN)
// as NaN; callers decide how to fill it.
func forwardDiff(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i] - values[i-1]
	}
	return out
}

func fillZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func fillZeroAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = fillZero(v)
	}
	return out
}

// cumulativeSum keeps NaN positions as NaN without breaking the running
// total for later rows.
func cumulativeSum(values []float64) []float64 {
	out := make([]float64, len(values))
	total := 0.0
	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = math.NaN()
			continue
		}
		total += v
		out[i] = total
	}
	return out
}

func maxIgnoringNaN(values []float64) float64 {
	best := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(best) || v > best {
			best = v
		}
	}
	return best
}

// peak returns the first row holding the largest non-missing power value.
func peak(power, elapsed []float64) (float64, float64) {
	bestPower, bestTime := math.NaN(), math.NaN()
	for i, v := range power {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(bestPower) || v > bestPower {
			bestPower = v
			bestTime = elapsed[i]
		}
	}
	return bestPower, bestTime
}
