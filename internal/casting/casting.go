// Package casting normalizes column types and domains before durable
// storage. Corrupt or out-of-range sensor readings become null instead of
// failing the pipeline, and every matched column is narrowed to a storage
// width that bounds the artifact size.
package casting

import (
	"math"
	"strings"

	"energy-analysis/internal/frame"
)

// Rule declares a valid domain and target type for columns whose name
// satisfies the predicate. Rules are evaluated in order; the first match
// wins and unmatched columns are left untouched.
type Rule struct {
	Name  string
	Match func(column string) bool
	Min   float64
	Max   float64
	Kind  frame.Kind
}

const (
	maxElapsed     = float64(1<<63 - 1)
	maxElapsedDiff = 365 * 24 * 3600 * 1000 // one year of millisecond ticks
	maxEpoch       = 4102444800             // 2100-01-01
)

var Rules = []Rule{
	{Name: "elapsed", Match: literal("ElapsedTime"), Min: 0, Max: maxElapsed, Kind: frame.Uint64},
	{Name: "elapsed-diff", Match: literal("ElapsedTime_Diff"), Min: 0, Max: maxElapsedDiff, Kind: frame.Uint64},
	{Name: "epoch", Match: literalOrSuffix("EpochTime", "__EpochTime"), Min: 0, Max: maxEpoch, Kind: frame.Int64},
	{Name: "cpu-frequency", Match: suffix("__CPUFrequency"), Min: 0, Max: 10000, Kind: frame.Uint16},
	{Name: "memory-bytes", Match: suffixAny("__RSS", "__VMSize"), Min: 0, Max: maxElapsed, Kind: frame.Uint64},
	{Name: "memory-mb", Match: suffixAny("__GPUMemMB", "__RSS_MB"), Min: 0, Max: 1e6, Kind: frame.Float32},
	{Name: "pages", Match: suffix("__Pages"), Min: 0, Max: float64(1<<32 - 1), Kind: frame.Uint32},
	{Name: "node-power", Match: literalOrSuffix("NodePower", "__NodePower"), Min: 0, Max: 10000, Kind: frame.Float32},
	{Name: "curr-power", Match: literalOrSuffix("CurrPower", "__CurrPower"), Min: 0, Max: 10000, Kind: frame.Float32},
	{Name: "energy-derived", Match: literalAny("Energy_Increment_J", "Energy_used_J"), Min: 0, Max: math.Inf(1), Kind: frame.Float32},
	{Name: "energy", Match: literalOrSuffix("Energy", "__Energy"), Min: 0, Max: math.Inf(1), Kind: frame.Float32},
	{Name: "utilization", Match: suffixAny("__CPUUtilization", "__GPUUtilization"), Min: 0, Max: 100, Kind: frame.Float32},
	{Name: "utilization-normalized", Match: suffix("__CPUUtilization_normalized"), Min: 0, Max: 1, Kind: frame.Float32},
	{Name: "cpu-time", Match: suffix("__CPUTime"), Min: 0, Max: math.Inf(1), Kind: frame.Float32},
	{Name: "io-mb", Match: suffixAny("__ReadMB", "__WriteMB"), Min: 0, Max: math.Inf(1), Kind: frame.Float32},
}

// Apply casts every matching column of the frame in place: non-finite or
// out-of-domain values become null, then the column takes its target
// storage kind.
func Apply(f *frame.Frame) {
	for ci := range f.Columns {
		col := &f.Columns[ci]
		rule, ok := match(col.Name)
		if !ok {
			continue
		}
		for i, v := range col.Values {
			if math.IsNaN(v) {
				continue
			}
			if math.IsInf(v, 0) || v < rule.Min || v > rule.Max {
				col.Values[i] = math.NaN()
				continue
			}
			col.Values[i] = convert(v, rule.Kind)
		}
		col.Kind = rule.Kind
	}
}

func match(column string) (Rule, bool) {
	for _, rule := range Rules {
		if rule.Match(column) {
			return rule, true
		}
	}
	return Rule{}, false
}

// convert narrows the stored value to the rule's storage width: integer
// kinds truncate toward zero, float32 rounds through single precision.
func convert(v float64, kind frame.Kind) float64 {
	switch kind {
	case frame.Float32:
		return float64(float32(v))
	case frame.Int64, frame.Uint16, frame.Uint32, frame.Uint64:
		return math.Trunc(v)
	default:
		return v
	}
}

func literal(name string) func(string) bool {
	return func(column string) bool { return column == name }
}

func literalAny(names ...string) func(string) bool {
	return func(column string) bool {
		for _, n := range names {
			if column == n {
				return true
			}
		}
		return false
	}
}

func suffix(s string) func(string) bool {
	return func(column string) bool { return strings.HasSuffix(column, s) }
}

func suffixAny(suffixes ...string) func(string) bool {
	return func(column string) bool {
		for _, s := range suffixes {
			if strings.HasSuffix(column, s) {
				return true
			}
		}
		return false
	}
}

func literalOrSuffix(name, s string) func(string) bool {
	return func(column string) bool {
		return column == name || strings.HasSuffix(column, s)
	}
}
