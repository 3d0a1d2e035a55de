package pricing

import "sort"

// SelectBlocks picks the block start times that cover [minTS, maxTS].
//
// Coverage is the first available block at or after minTS, the block
// immediately before it (a block spans forward in time, so the previous
// block covers the left edge), and every further block up to and
// including maxTS. The result is sorted and deduplicated.
func SelectBlocks(minTS, maxTS int64, available []int64) []int64 {
	if len(available) == 0 {
		return nil
	}
	sorted := append([]int64(nil), available...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := sort.Search(len(sorted), func(i int) bool { return sorted[i] >= minTS })

	chosen := make(map[int64]struct{})
	if idx < len(sorted) {
		chosen[sorted[idx]] = struct{}{}
	}
	if idx > 0 {
		chosen[sorted[idx-1]] = struct{}{}
	}
	for _, ts := range sorted[idx:] {
		if ts > maxTS {
			break
		}
		chosen[ts] = struct{}{}
	}

	out := make([]int64, 0, len(chosen))
	for ts := range chosen {
		out = append(out, ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
