// Package pipeline sequences the per-file, per-group processing states:
// discover datasets, extract and filter, combine, derive, profile,
// integrate prices, cast, and persist artifacts. It is the only component
// with control-flow authority; every lower stage reports failure upward
// and the pipeline decides what survives.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"energy-analysis/internal/casting"
	"energy-analysis/internal/config"
	"energy-analysis/internal/energy"
	"energy-analysis/internal/frame"
	"energy-analysis/internal/hdf"
	"energy-analysis/internal/pricing"
	"energy-analysis/internal/storage"
)

// Sink receives a final table for durable storage.
type Sink interface {
	StoreTable(name string, f *frame.Frame) error
}

// PriceFetcher retrieves the price series covering a set of epoch
// timestamps; nil means no coverage and is never fatal.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, epochTimes []float64, p pricing.Params) pricing.Series
}

// Counters aggregates what a run processed and what it skipped, so
// callers can tell "nothing to do" from "everything failed" without
// parsing logs. The process exit stays zero either way.
type Counters struct {
	Files         int
	FailedFiles   int
	Groups        int
	UsableGroups  int
	SkippedGroups int
	TotalDatasets int
	EmptyDatasets int
	ZeroPower     int
	DatasetErrors int
}

func (c *Counters) add(g groupCounts) {
	c.TotalDatasets += g.total
	c.EmptyDatasets += g.empty
	c.ZeroPower += g.zeroPower
	c.DatasetErrors += g.errors
}

type groupCounts struct {
	total     int
	empty     int
	zeroPower int
	errors    int
}

// Pipeline owns one run's collaborators.
type Pipeline struct {
	cfg    *config.Config
	prices PriceFetcher
	sink   Sink
	log    *slog.Logger
}

// New assembles a pipeline. prices may be nil when price fetching is
// disabled; sink may be nil when no relational sink is configured.
func New(cfg *config.Config, prices PriceFetcher, sink Sink, log *slog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, prices: prices, sink: sink, log: log}
}

// Run processes every file the source supplies, sequentially and in
// discovery order. A file that cannot be opened is logged and skipped;
// a run with nothing to process returns with a warning only.
func (p *Pipeline) Run(ctx context.Context, source storage.Source) (Counters, error) {
	var counters Counters

	if err := p.cfg.EnsureDirectories(); err != nil {
		return counters, err
	}
	files, err := source.Files(ctx)
	if err != nil {
		return counters, err
	}
	if len(files) == 0 {
		p.log.Warn("no telemetry files found", "source", p.cfg.SourceDir)
		return counters, nil
	}

	for _, path := range files {
		if err := p.ProcessFile(ctx, path, &counters); err != nil {
			counters.FailedFiles++
			var openErr *hdf.OpenError
			if errors.As(err, &openErr) {
				p.log.Error("cannot open telemetry file",
					"file", filepath.Base(path), "size_bytes", openErr.Size, "error", openErr.Err)
				continue
			}
			p.log.Error("failed to process telemetry file",
				"file", filepath.Base(path), "error", err)
			continue
		}
		counters.Files++
	}

	if counters.UsableGroups == 0 {
		p.log.Warn("run produced no usable groups",
			"files", len(files),
			"empty_datasets", counters.EmptyDatasets,
			"zero_power_datasets", counters.ZeroPower,
			"dataset_errors", counters.DatasetErrors)
	}
	return counters, nil
}

// ProcessFile handles every top-level group of one telemetry file.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, counters *Counters) error {
	label := filepath.Base(path)
	fileStem := stem(label)
	jobID := jobIDFromStem(fileStem)
	log := p.log.With("job", jobID, "file", label)
	log.Info("processing telemetry file")

	file, err := hdf.Open(path)
	if err != nil {
		return err
	}

	for _, node := range file.Nodes {
		counters.Groups++
		if err := p.processGroup(ctx, fileStem, jobID, node, counters, log); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) processGroup(
	ctx context.Context,
	fileStem, jobID string,
	node *hdf.Node,
	counters *Counters,
	log *slog.Logger,
) error {
	groupName := node.Name
	log = log.With("group", groupName)

	inputs, counts := p.extractFrames(node, log)
	counters.add(counts)
	if len(inputs) == 0 {
		counters.SkippedGroups++
		log.Warn("no usable datasets in group",
			"empty", counts.empty, "zero_power", counts.zeroPower,
			"errors", counts.errors, "total", counts.total)
		return nil
	}

	log.Info("combining frames", "frames", len(inputs))
	combined := frame.Combine(inputs)
	if combined.IsEmpty() {
		counters.SkippedGroups++
		log.Warn("combined table is empty; skipping group")
		return nil
	}

	epochColumn := resolveEpochColumn(combined)

	energy.AddDerivedColumns(combined, p.cfg.CPUCores)
	metrics := energy.ComputeProfile(combined, jobID, groupName, log)

	outputName := hdf.SanitizeParts([]string{fileStem, groupName, "combined"})

	if metrics != nil {
		summaryPath := filepath.Join(p.cfg.SummaryDir, outputName+"_summary.csv")
		if err := energy.WriteSummaryCSV(summaryPath, jobID, groupName, metrics); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
		log.Info("saved summary", "path", summaryPath)
		log.Info(metrics.Appliance.Sentence())
	}

	if p.cfg.FetchPrice {
		if err := p.integratePrices(ctx, combined, epochColumn, outputName, jobID, groupName, log); err != nil {
			return err
		}
	}

	casting.Apply(combined)

	dataPath := filepath.Join(p.cfg.OutputDir, outputName+".csv")
	if err := combined.WriteCSV(dataPath); err != nil {
		return fmt.Errorf("failed to write combined data: %w", err)
	}
	statsPath := filepath.Join(p.cfg.StatsDir, outputName+"_stats.csv")
	if err := combined.Describe().WriteCSV(statsPath); err != nil {
		return fmt.Errorf("failed to write stats: %w", err)
	}
	log.Info("saved combined data", "path", dataPath, "rows", combined.Rows(), "cols", combined.Width())
	log.Info("saved combined stats", "path", statsPath)

	if p.sink != nil {
		if err := p.sink.StoreTable(outputName, combined); err != nil {
			// The relational sink is best-effort; the CSV artifacts are
			// already on disk.
			log.Warn("failed to store table in relational sink", "error", err)
		}
	}

	counters.UsableGroups++
	return nil
}

// extractFrames converts and filters every dataset under a group. A
// dataset that fails extraction, is empty, or reports all-zero node
// power is skipped without affecting its siblings.
func (p *Pipeline) extractFrames(node *hdf.Node, log *slog.Logger) ([]frame.Input, groupCounts) {
	var inputs []frame.Input
	var counts groupCounts

	for _, entry := range hdf.Datasets(node) {
		counts.total++
		datasetPath := strings.Join(entry.Path, "/")

		fr, err := entry.Dataset.ToFrame()
		if err != nil {
			counts.errors++
			log.Error("skipping dataset", "dataset", datasetPath, "error", err)
			continue
		}
		if fr.IsEmpty() {
			counts.empty++
			log.Warn("data missing: dataset empty", "dataset", datasetPath)
			continue
		}
		if allZeroPower(fr) {
			counts.zeroPower++
			log.Warn("data missing: NodePower contains only zeros", "dataset", datasetPath)
			continue
		}

		normalize(fr)
		inputs = append(inputs, frame.Input{Prefix: hdf.Prefix(entry.Path), Frame: fr})
	}
	return inputs, counts
}

func (p *Pipeline) integratePrices(
	ctx context.Context,
	combined *frame.Frame,
	epochColumn, outputName, jobID, groupName string,
	log *slog.Logger,
) error {
	if epochColumn == "" {
		log.Warn("skipping price integration: no epoch column")
		return nil
	}
	if p.prices == nil {
		log.Warn("skipping price integration: no price fetcher configured")
		return nil
	}

	log.Info("integrating price data")
	epochs, _ := combined.Column(epochColumn)
	series := p.prices.FetchPrices(ctx, epochs, pricing.Params{
		FilterID:   p.cfg.Price.FilterID,
		Region:     p.cfg.Price.Region,
		Resolution: p.cfg.Price.Resolution,
	})
	if series == nil {
		return nil
	}

	pricing.Integrate(combined, epochColumn, series, log)

	pricePath := filepath.Join(p.cfg.PriceDir, outputName+"_price.csv")
	if err := series.WriteCSV(pricePath); err != nil {
		return fmt.Errorf("failed to write price data: %w", err)
	}
	log.Info("saved price data", "path", pricePath)

	if cost, ok := combined.Column(pricing.CostColumn); ok {
		log.Info("estimated cumulative cost",
			"job", jobID, "group", groupName, "eur", maxIgnoringNaN(cost))
	}
	return nil
}

// resolveEpochColumn picks the wall-clock column used for price joins:
// the energy monitor's own epoch column when present, otherwise the
// first prefixed epoch column. The winner is aliased to a plain
// "EpochTime" column so downstream stages see one canonical name.
func resolveEpochColumn(f *frame.Frame) string {
	if f.HasColumn("EpochTime") {
		return "EpochTime"
	}
	chosen := ""
	if f.HasColumn("Energy__EpochTime") {
		chosen = "Energy__EpochTime"
	} else {
		for _, col := range f.Columns {
			if strings.HasSuffix(col.Name, "__EpochTime") {
				chosen = col.Name
				break
			}
		}
	}
	if chosen == "" {
		return ""
	}
	vals, _ := f.Column(chosen)
	f.AddColumn("EpochTime", append([]float64(nil), vals...))
	return "EpochTime"
}

// normalize enforces the extractor's post-conditions: an ElapsedTime
// column becomes the unsigned key (synthesized as the row index when
// absent), then rows are sorted by it.
func normalize(fr *frame.Frame) {
	if vals, ok := fr.Column("ElapsedTime"); ok {
		t := make([]uint64, len(vals))
		for i, v := range vals {
			if !math.IsNaN(v) && v > 0 {
				t[i] = uint64(v)
			}
		}
		fr.RemoveColumn("ElapsedTime")
		fr.Time = t
	} else {
		t := make([]uint64, fr.Rows())
		for i := range t {
			t[i] = uint64(i)
		}
		fr.Time = t
	}
	fr.SortByTime()
}

// allZeroPower reports a frame whose NodePower column sums to exactly
// zero after null-fill; such telemetry carries no usable signal.
func allZeroPower(fr *frame.Frame) bool {
	power, ok := fr.Column("NodePower")
	if !ok {
		return false
	}
	sum := 0.0
	for _, v := range power {
		if !math.IsNaN(v) {
			sum += v
		}
	}
	return sum == 0
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

func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func jobIDFromStem(fileStem string) string {
	if i := strings.Index(fileStem, "_"); i >= 0 {
		return fileStem[:i]
	}
	return fileStem
}
