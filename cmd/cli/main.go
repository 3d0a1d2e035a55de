package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"energy-analysis/internal/config"
	"energy-analysis/internal/pipeline"
	"energy-analysis/internal/pricing"
	"energy-analysis/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	switch os.Args[1] {
	case "run":
		cmdRun(os.Args[2:], log)
	case "prices":
		cmdPrices(os.Args[2:], log)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli run --config config.yaml")
	fmt.Println("  cli run --source data --fetch-price")
	fmt.Println("  cli prices --from 2024-01-01T00:00:00Z --to 2024-01-02T00:00:00Z --out prices.csv")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - run processes every telemetry export in the source directory")
	fmt.Println("  - prices fetches day-ahead prices for a time window and writes CSV")
}

func cmdRun(args []string, log *slog.Logger) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config")
	source := fs.String("source", "", "Override: directory of telemetry exports")
	fetchPrice := fs.Bool("fetch-price", false, "Override: fetch electricity prices")
	keepBatch := fs.Bool("keep-batch", false, "Process batch job files as well")
	useMinio := fs.Bool("minio", false, "Read telemetry from the configured object store")
	_ = fs.Parse(args)

	cfg, err := config.LoadUnchecked(*cfgPath)
	if err != nil {
		fatal(log, "failed to load config", err)
	}
	if *source != "" {
		cfg.SourceDir = *source
	}
	if *fetchPrice {
		cfg.FetchPrice = true
	}
	if err := cfg.Validate(); err != nil {
		fatal(log, "invalid config", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src storage.Source
	if *useMinio {
		ms, err := storage.NewMinioSource(cfg.ObjectStore)
		if err != nil {
			fatal(log, "failed to connect to object store", err)
		}
		defer ms.Close()
		src = ms
	} else {
		if err := cfg.ValidateSource(); err != nil {
			fatal(log, "invalid source", err)
		}
		src = &storage.DirSource{Dir: cfg.SourceDir, KeepBatchFiles: *keepBatch}
	}

	var prices pipeline.PriceFetcher
	if cfg.FetchPrice {
		prices = pricing.NewClient("", cfg.Workers, log)
	}

	var sink pipeline.Sink
	if cfg.Database.DatabasePath != "" {
		s, err := storage.NewSQLiteSink(cfg.Database.DatabasePath)
		if err != nil {
			fatal(log, "failed to open database", err)
		}
		defer s.Close()
		sink = s
	}

	pipe := pipeline.New(cfg, prices, sink, log)
	counters, err := pipe.Run(ctx, src)
	if err != nil {
		fatal(log, "run failed", err)
	}

	log.Info("run complete",
		"files", counters.Files,
		"failed_files", counters.FailedFiles,
		"groups", counters.UsableGroups,
		"skipped_groups", counters.SkippedGroups,
		"datasets", counters.TotalDatasets,
		"empty_datasets", counters.EmptyDatasets,
		"zero_power_datasets", counters.ZeroPower,
		"dataset_errors", counters.DatasetErrors)
}

func cmdPrices(args []string, log *slog.Logger) {
	fs := flag.NewFlagSet("prices", flag.ExitOnError)
	from := fs.String("from", "", "Window start (RFC 3339 or epoch seconds)")
	to := fs.String("to", "", "Window end (RFC 3339 or epoch seconds)")
	filterID := fs.Int("filter", 4169, "SMARD filter id")
	region := fs.String("region", "DE-LU", "SMARD region")
	resolution := fs.String("resolution", "quarterhour", "SMARD resolution")
	outPath := fs.String("out", "prices.csv", "Output CSV path")
	workers := fs.Int("workers", 0, "Concurrent block fetches (0=auto)")
	_ = fs.Parse(args)

	start, err := parseTime(*from)
	if err != nil {
		fatal(log, "invalid --from", err)
	}
	end, err := parseTime(*to)
	if err != nil {
		fatal(log, "invalid --to", err)
	}
	if !end.After(start) {
		fatal(log, "invalid window", fmt.Errorf("--to %s is not after --from %s", end, start))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := pricing.NewClient("", *workers, log)
	series := client.FetchPrices(ctx,
		[]float64{float64(start.Unix()), float64(end.Unix())},
		pricing.Params{FilterID: *filterID, Region: *region, Resolution: *resolution})
	if series == nil {
		fatal(log, "no price data available for window", fmt.Errorf("%s to %s", start, end))
	}

	if err := series.WriteCSV(*outPath); err != nil {
		fatal(log, "failed to write prices", err)
	}
	log.Info("wrote price data", "path", *outPath, "points", len(series))
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("value is required")
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Parse(time.RFC3339, s)
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
