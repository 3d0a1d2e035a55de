package frame

import (
	"encoding/csv"
	"math"
	"os"
	"sort"
	"strconv"
)

// Summary holds descriptive statistics for every column of a frame, one
// row per statistic in a fixed order.
type Summary struct {
	Columns []string
	Rows    []SummaryRow
}

type SummaryRow struct {
	Statistic string
	Values    []float64
}

var describeStatistics = []string{
	"count", "null_count", "mean", "std", "min", "25%", "50%", "75%", "max",
}

// Describe computes count, null count, mean, sample standard deviation,
// min, quartiles and max for the key column and every value column.
// Quartiles interpolate linearly between order statistics.
func (f *Frame) Describe() *Summary {
	s := &Summary{}
	for range describeStatistics {
		s.Rows = append(s.Rows, SummaryRow{})
	}
	for i, name := range describeStatistics {
		s.Rows[i].Statistic = name
	}

	appendStats := func(name string, values []float64) {
		s.Columns = append(s.Columns, name)
		stats := columnStats(values)
		for i := range s.Rows {
			s.Rows[i].Values = append(s.Rows[i].Values, stats[i])
		}
	}

	if f.Time != nil {
		vals := make([]float64, len(f.Time))
		for i, t := range f.Time {
			vals[i] = float64(t)
		}
		appendStats("ElapsedTime", vals)
	}
	for _, col := range f.Columns {
		appendStats(col.Name, col.Values)
	}
	return s
}

// columnStats returns values aligned with describeStatistics.
func columnStats(values []float64) []float64 {
	present := make([]float64, 0, len(values))
	nulls := 0
	sum := 0.0
	for _, v := range values {
		if math.IsNaN(v) {
			nulls++
			continue
		}
		present = append(present, v)
		sum += v
	}

	out := make([]float64, len(describeStatistics))
	out[0] = float64(len(present))
	out[1] = float64(nulls)
	if len(present) == 0 {
		for i := 2; i < len(out); i++ {
			out[i] = math.NaN()
		}
		return out
	}

	mean := sum / float64(len(present))
	out[2] = mean

	// Sample standard deviation.
	if len(present) > 1 {
		ss := 0.0
		for _, v := range present {
			d := v - mean
			ss += d * d
		}
		out[3] = math.Sqrt(ss / float64(len(present)-1))
	} else {
		out[3] = math.NaN()
	}

	sort.Float64s(present)
	out[4] = present[0]
	out[5] = percentileSorted(present, 0.25)
	out[6] = percentileSorted(present, 0.50)
	out[7] = percentileSorted(present, 0.75)
	out[8] = present[len(present)-1]
	return out
}

func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	// Linear interpolation between order stats.
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// WriteCSV writes the summary with a leading statistic column.
func (s *Summary) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	header := append([]string{"statistic"}, s.Columns...)
	if err := w.Write(header); err != nil {
		return err
	}
	record := make([]string, 0, len(header))
	for _, row := range s.Rows {
		record = record[:0]
		record = append(record, row.Statistic)
		for _, v := range row.Values {
			if math.IsNaN(v) {
				record = append(record, "")
			} else {
				record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
			}
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}
