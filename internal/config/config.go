package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"energy-analysis/internal/energy"
)

// PriceSettings selects the SMARD series used for cost estimation.
type PriceSettings struct {
	FilterID   int    `yaml:"filter_id"`
	Region     string `yaml:"region"`
	Resolution string `yaml:"resolution"`
}

// SinkSettings configures the optional relational sink.
type SinkSettings struct {
	DatabasePath string `yaml:"database_path"`
}

// ObjectStoreSettings configures the optional object-storage source.
// Credentials come from the environment, never from the YAML file.
type ObjectStoreSettings struct {
	Endpoint  string `yaml:"endpoint" envconfig:"MINIO_ENDPOINT"`
	Bucket    string `yaml:"bucket" envconfig:"MINIO_BUCKET"`
	UseSSL    bool   `yaml:"use_ssl" envconfig:"MINIO_USE_SSL"`
	AccessKey string `yaml:"-" envconfig:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"-" envconfig:"MINIO_SECRET_KEY"`
}

// Config is the on-disk configuration shape (YAML) plus
// environment-derived settings. Created once per run, read-only after.
type Config struct {
	SourceDir  string `yaml:"source_dir"`
	OutputDir  string `yaml:"output_dir"`
	StatsDir   string `yaml:"stats_dir"`
	SummaryDir string `yaml:"summary_dir"`
	PriceDir   string `yaml:"price_dir"`

	FetchPrice bool          `yaml:"fetch_price"`
	Price      PriceSettings `yaml:"price"`

	// CPUCores is the assumed per-node core count used to normalize CPU
	// utilization. The recorder's original value is 32.
	CPUCores float64 `yaml:"cpu_cores"`

	// Workers bounds the price-block fetch pool. SLURM exposes the
	// allocated CPU count through the environment on compute nodes.
	Workers int `yaml:"workers" envconfig:"SLURM_CPUS_ON_NODE"`

	Database    SinkSettings        `yaml:"database"`
	ObjectStore ObjectStoreSettings `yaml:"object_store"`
}

// Default returns the configuration used when no YAML file is given.
func Default() Config {
	return Config{
		SourceDir:  "data",
		OutputDir:  "output",
		StatsDir:   "stats",
		SummaryDir: "summaries",
		PriceDir:   "prices",
		Price: PriceSettings{
			FilterID:   4169, // day-ahead auction
			Region:     "DE-LU",
			Resolution: "quarterhour",
		},
		CPUCores: energy.DefaultCPUCores,
	}
}

// Load reads a YAML config, overlays environment settings, and validates
// the result. An empty path yields the defaults plus environment.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	c := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &c); err != nil {
			return nil, err
		}
		// Relative directories are interpreted against the config file.
		c.resolvePaths(filepath.Dir(path))
	}
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("environment config invalid: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.SourceDir == "" {
		return errors.New("source_dir is required")
	}
	if c.FetchPrice {
		if c.Price.FilterID <= 0 {
			return errors.New("price.filter_id must be positive")
		}
		if c.Price.Region == "" || c.Price.Resolution == "" {
			return errors.New("price.region and price.resolution are required")
		}
	}
	if c.CPUCores <= 0 {
		return fmt.Errorf("cpu_cores must be positive, got %g", c.CPUCores)
	}
	return nil
}

// ValidateSource fails when the configured source directory is missing.
func (c *Config) ValidateSource() error {
	info, err := os.Stat(c.SourceDir)
	if err != nil {
		return fmt.Errorf("source directory not found: %s", c.SourceDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", c.SourceDir)
	}
	return nil
}

// EnsureDirectories creates every output directory requested by the run.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.OutputDir, c.StatsDir, c.SummaryDir}
	if c.FetchPrice {
		dirs = append(dirs, c.PriceDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) resolvePaths(base string) {
	resolve := func(p *string) {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	resolve(&c.SourceDir)
	resolve(&c.OutputDir)
	resolve(&c.StatsDir)
	resolve(&c.SummaryDir)
	resolve(&c.PriceDir)
	resolve(&c.Database.DatabasePath)
}
