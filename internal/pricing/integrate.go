package pricing

import (
	"encoding/csv"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"

	"energy-analysis/internal/frame"
)

// PriceColumn is the name the joined price series takes in the combined
// table, and CostColumn the running-cost column derived from it.
const (
	PriceColumn = "Price_EUR_per_MWh"
	CostColumn  = "Cumulative_cost_EUR"
)

// joulesPerKWh is used verbatim by the running-cost formula even though
// the price is quoted per MWh, reproducing the recorder's original output
// (the strict EUR value would need a further /1000; kept for
// compatibility with existing archives).
const joulesPerKWh = 3_600_000.0

// Integrate joins a price series onto the combined frame by
// nearest-timestamp match on the epoch column, interpolates residual
// missing prices, and adds a running cost column when a cumulative energy
// column is present. The frame is left sorted by the epoch column.
func Integrate(f *frame.Frame, epochColumn string, series Series, log *slog.Logger) {
	if epochColumn == "" || !f.HasColumn(epochColumn) {
		log.Warn("no epoch time column detected; skipping price integration")
		return
	}
	if len(series) == 0 {
		return
	}

	if err := f.SortByColumn(epochColumn); err != nil {
		log.Warn("cannot sort by epoch column; skipping price integration", "error", err)
		return
	}

	epochs, _ := f.Column(epochColumn)
	prices := make([]float64, len(epochs))
	for i, e := range epochs {
		if math.IsNaN(e) {
			prices[i] = math.NaN()
			continue
		}
		prices[i] = series[nearestIndex(series, int64(e))].Price
	}
	f.SetColumn(PriceColumn, prices)
	f.Interpolate(PriceColumn)

	used, ok := f.Column("Energy_used_J")
	if !ok {
		return
	}
	prices, _ = f.Column(PriceColumn)
	cost := make([]float64, len(used))
	for i := range cost {
		cost[i] = used[i] / joulesPerKWh * prices[i]
	}
	f.SetColumn(CostColumn, cost)
}

// nearestIndex finds the series entry closest in time to ts; on an exact
// tie the earlier entry wins.
func nearestIndex(series Series, ts int64) int {
	i := sort.Search(len(series), func(k int) bool { return series[k].EpochTime >= ts })
	if i == 0 {
		return 0
	}
	if i == len(series) {
		return len(series) - 1
	}
	if series[i].EpochTime-ts < ts-series[i-1].EpochTime {
		return i
	}
	return i - 1
}

// WriteCSV writes the fetched price series artifact.
func (s Series) WriteCSV(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"EpochTime", PriceColumn}); err != nil {
		return err
	}
	for _, p := range s {
		record := []string{
			strconv.FormatInt(p.EpochTime, 10),
			strconv.FormatFloat(p.Price, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return w.Error()
}
