// Package energy derives unit-converted columns and per-job energy
// metrics from a combined telemetry table.
package energy

import (
	"math"
	"strings"

	"energy-analysis/internal/frame"
)

// DefaultCPUCores is the assumed per-node core count used to normalize
// CPU utilization when the config does not override it. It matches the
// cluster the telemetry recorder was deployed on.
const DefaultCPUCores = 32.0

// derivedRule maps a column-name suffix to a scaled sibling column.
type derivedRule struct {
	suffix  string
	renamed string
	divisor func(cores float64) float64
}

var derivedRules = []derivedRule{
	{suffix: "__RSS", renamed: "__RSS_MB", divisor: func(float64) float64 { return 1024.0 }},
	{suffix: "__CPUUtilization", renamed: "__CPUUtilization_normalized", divisor: func(cores float64) float64 { return cores }},
}

// AddDerivedColumns appends a scaled sibling for every column matching a
// derivation rule: resident-set sizes in megabytes and CPU utilization
// normalized by the assumed core count.
func AddDerivedColumns(f *frame.Frame, cores float64) {
	if cores <= 0 || math.IsNaN(cores) {
		cores = DefaultCPUCores
	}
	// Snapshot first: appended columns must not feed the rules again.
	existing := make([]frame.Column, len(f.Columns))
	copy(existing, f.Columns)

	for _, col := range existing {
		for _, rule := range derivedRules {
			if !strings.HasSuffix(col.Name, rule.suffix) {
				continue
			}
			div := rule.divisor(cores)
			scaled := make([]float64, len(col.Values))
			for i, v := range col.Values {
				scaled[i] = v / div
			}
			name := strings.TrimSuffix(col.Name, rule.suffix) + rule.renamed
			f.AddColumn(name, scaled)
		}
	}
}
