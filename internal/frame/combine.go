package frame

import (
	"math"
	"sort"
)

// Input is one (prefix, frame) contribution to a combine. Prefixes must be
// unique across the inputs of one combine; the caller guarantees this.
type Input struct {
	Prefix string
	Frame  *Frame
}

// Combine merges the input frames onto one timeline.
//
// The timeline is the sorted distinct union of all input ElapsedTime values.
// Every value column is renamed to "<prefix>__<name>" and left-joined onto
// the timeline; rows with no match become missing and are then linearly
// interpolated across interior gaps only. When one input carries duplicate
// ElapsedTime keys, the first row per key wins so the result's row count
// always equals the timeline length.
func Combine(inputs []Input) *Frame {
	timeline := buildTimeline(inputs)
	combined := &Frame{Time: timeline}

	rowOf := make(map[uint64]int, len(timeline))
	for i, t := range timeline {
		rowOf[t] = i
	}

	for _, in := range inputs {
		src := in.Frame
		// First occurrence per key within this frame.
		srcRow := make(map[uint64]int, len(src.Time))
		for r, t := range src.Time {
			if _, seen := srcRow[t]; !seen {
				srcRow[t] = r
			}
		}
		for _, col := range src.Columns {
			vals := make([]float64, len(timeline))
			for i := range vals {
				vals[i] = math.NaN()
			}
			for t, r := range srcRow {
				vals[rowOf[t]] = col.Values[r]
			}
			combined.AddColumn(in.Prefix+"__"+col.Name, vals)
		}
	}

	for ci := range combined.Columns {
		interpolate(combined.Columns[ci].Values)
	}
	return combined
}

func buildTimeline(inputs []Input) []uint64 {
	seen := make(map[uint64]struct{})
	var timeline []uint64
	for _, in := range inputs {
		for _, t := range in.Frame.Time {
			if _, ok := seen[t]; !ok {
				seen[t] = struct{}{}
				timeline = append(timeline, t)
			}
		}
	}
	sort.Slice(timeline, func(i, j int) bool { return timeline[i] < timeline[j] })
	return timeline
}

// interpolate fills interior runs of missing values linearly by row
// position (equal weight per row, matching the original pipeline). Values
// before the first or after the last observation stay missing.
func interpolate(values []float64) {
	prev := -1
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if prev >= 0 && i-prev > 1 {
			step := (v - values[prev]) / float64(i-prev)
			for k := prev + 1; k < i; k++ {
				values[k] = values[prev] + step*float64(k-prev)
			}
		}
		prev = i
	}
}

// Interpolate applies interior-gap interpolation to one named column.
func (f *Frame) Interpolate(name string) {
	if vals, ok := f.Column(name); ok {
		interpolate(vals)
	}
}
