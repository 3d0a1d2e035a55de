// Package pricing retrieves day-ahead electricity prices from the SMARD
// market-data service and joins them onto combined telemetry tables.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultBaseURL = "https://www.smard.de"

// requestTimeout bounds every index and block request independently.
const requestTimeout = 10 * time.Second

// Params identifies one SMARD series: dataset filter, bidding zone and
// resolution (e.g. 4169, "DE-LU", "quarterhour" for the day-ahead auction).
type Params struct {
	FilterID   int
	Region     string
	Resolution string
}

// StatusError reports a non-2xx response from the price provider.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("price provider returned status %d for %s", e.StatusCode, e.URL)
}

// HTTPClient allows injecting a stub transport in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches SMARD price blocks over HTTP.
type Client struct {
	BaseURL string
	Workers int // bounded-pool size hint; capped by the block count
	HTTP    HTTPClient

	log *slog.Logger
}

// NewClient creates a SMARD client. An empty baseURL selects the public
// endpoint; a non-positive workers hint falls back to the CPU count.
func NewClient(baseURL string, workers int, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Client{
		BaseURL: baseURL,
		Workers: workers,
		HTTP:    &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// Point is one price sample: epoch seconds to price in EUR/MWh.
type Point struct {
	EpochTime int64
	Price     float64
}

// Series is a deduplicated price table sorted by EpochTime.
type Series []Point

type indexResponse struct {
	Timestamps []int64 `json:"timestamps"`
}

type blockResponse struct {
	// Each row is [epoch_ms, price]; the price may be null.
	Series [][]*float64 `json:"series"`
}

// FetchPrices retrieves the price series covering the given epoch
// timestamps. Every failure path is non-fatal and returns nil: no usable
// timestamps, an unreachable index, no covering blocks, or zero usable
// rows. Individual block failures drop only that block.
func (c *Client) FetchPrices(ctx context.Context, epochTimes []float64, p Params) Series {
	minTS, maxTS, ok := epochBounds(epochTimes)
	if !ok {
		c.log.Warn("epoch time series is empty; skipping price fetch")
		return nil
	}

	available, err := c.fetchIndex(ctx, p)
	if err != nil {
		c.log.Warn("failed to fetch price index", "error", err)
		return nil
	}

	blocks := SelectBlocks(minTS, maxTS, available)
	if len(blocks) == 0 {
		c.log.Warn("no price blocks cover requested interval",
			"min", minTS, "max", maxTS, "region", p.Region)
		return nil
	}

	rows := c.fetchBlocks(ctx, blocks, p)
	series := buildSeries(rows)
	if len(series) == 0 {
		c.log.Warn("no price rows retrieved for requested interval")
		return nil
	}

	c.log.Info("fetched price series",
		"points", len(series), "min", minTS, "max", maxTS, "region", p.Region)
	return series
}

func (c *Client) fetchIndex(ctx context.Context, p Params) ([]int64, error) {
	url := fmt.Sprintf("%s/app/chart_data/%d/%s/index_%s.json",
		c.BaseURL, p.FilterID, p.Region, p.Resolution)

	var idx indexResponse
	if err := c.getJSON(ctx, url, &idx); err != nil {
		return nil, err
	}
	// Index timestamps are milliseconds; block selection works in seconds.
	out := make([]int64, len(idx.Timestamps))
	for i, ms := range idx.Timestamps {
		out[i] = ms / 1000
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// fetchBlocks retrieves the selected blocks through a bounded worker
// pool. Results are kept in block order so the merged series never
// depends on completion order; a failed block is logged and dropped
// without affecting its siblings.
func (c *Client) fetchBlocks(ctx context.Context, blocks []int64, p Params) [][]*float64 {
	workers := c.Workers
	if len(blocks) < workers {
		workers = len(blocks)
	}

	results := make([][][]*float64, len(blocks))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ts := range blocks {
		i, ts := i, ts
		g.Go(func() error {
			url := fmt.Sprintf("%s/app/chart_data/%d/%s/%d_%s_%s_%d.json",
				c.BaseURL, p.FilterID, p.Region, p.FilterID, p.Region, p.Resolution, ts*1000)

			var block blockResponse
			if err := c.getJSON(ctx, url, &block); err != nil {
				c.log.Warn("failed to fetch price block", "block", ts, "error", err)
				return nil
			}
			results[i] = block.Series
			return nil
		})
	}
	_ = g.Wait() // workers never return errors; failures are per-block

	var rows [][]*float64
	for _, blockRows := range results {
		rows = append(rows, blockRows...)
	}
	return rows
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{StatusCode: resp.StatusCode, URL: url}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// buildSeries drops null prices, converts millisecond epochs to seconds,
// deduplicates by epoch (first occurrence wins) and sorts.
func buildSeries(rows [][]*float64) Series {
	seen := make(map[int64]struct{}, len(rows))
	series := make(Series, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 || row[0] == nil || row[1] == nil {
			continue
		}
		epoch := int64(*row[0]) / 1000
		if _, dup := seen[epoch]; dup {
			continue
		}
		seen[epoch] = struct{}{}
		series = append(series, Point{EpochTime: epoch, Price: *row[1]})
	}
	sort.Slice(series, func(i, j int) bool { return series[i].EpochTime < series[j].EpochTime })
	return series
}

func epochBounds(epochTimes []float64) (int64, int64, bool) {
	minTS, maxTS := int64(0), int64(0)
	found := false
	for _, v := range epochTimes {
		if math.IsNaN(v) {
			continue
		}
		ts := int64(v)
		if !found {
			minTS, maxTS = ts, ts
			found = true
			continue
		}
		if ts < minTS {
			minTS = ts
		}
		if ts > maxTS {
			maxTS = ts
		}
	}
	return minTS, maxTS, found
}
