package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/lightning-analysis/internal/dataset"
)

// Config holds all analysis settings, populated from environment variables.
type Config struct {
	LogLevel  string
	LogFormat string

	// Regression configuration.
	TargetColumn dataset.Field
	TestSize     float64
	RandomSeed   int64
	OneHotRegion bool

	TopCorrelations int

	// MetricsTextfile, when set, is where the run writes its metrics in
	// the Prometheus text exposition format.
	MetricsTextfile string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	testSize, err := parseTestSize()
	if err != nil {
		return nil, err
	}

	seed, err := parseRandomSeed()
	if err != nil {
		return nil, err
	}

	topN, err := parseTopCorrelations()
	if err != nil {
		return nil, err
	}

	oneHot, err := parseOneHotRegion()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:  sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),

		TargetColumn: dataset.Field(sharedcfg.EnvOrDefault("TARGET_COLUMN", "mcg")),
		TestSize:     testSize,
		RandomSeed:   seed,
		OneHotRegion: oneHot,

		TopCorrelations: topN,
		MetricsTextfile: os.Getenv("METRICS_TEXTFILE"),
	}

	if !analyzableColumn(cfg.TargetColumn) {
		return nil, fmt.Errorf("TARGET_COLUMN %q is not a numeric dataset column", cfg.TargetColumn)
	}

	return cfg, nil
}

func parseTestSize() (float64, error) {
	s := sharedcfg.EnvOrDefault("TEST_SIZE", "0.2")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 || v >= 1 {
		return 0, errors.New("TEST_SIZE must be a fraction strictly between 0 and 1")
	}
	return v, nil
}

func parseRandomSeed() (int64, error) {
	s := sharedcfg.EnvOrDefault("RANDOM_SEED", "42")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.New("RANDOM_SEED must be an integer")
	}
	return v, nil
}

func parseTopCorrelations() (int, error) {
	s := sharedcfg.EnvOrDefault("TOP_CORRELATIONS", "5")
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, errors.New("TOP_CORRELATIONS must be a positive integer")
	}
	return v, nil
}

func parseOneHotRegion() (bool, error) {
	s := sharedcfg.EnvOrDefault("ONE_HOT_REGION", "true")
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("ONE_HOT_REGION must be a boolean")
	}
	return v, nil
}

// analyzableColumn reports whether f is a numeric column a model can
// target. The raw timestamp is excluded; its derived components are not.
func analyzableColumn(f dataset.Field) bool {
	if f == dataset.FieldTime {
		return false
	}
	for _, s := range dataset.SourceFields() {
		if f == s {
			return true
		}
	}
	for _, d := range dataset.DerivedTimeFields() {
		if f == d {
			return true
		}
	}
	return false
}
