// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvKernelRadius  = "FIREMASK_KERNEL_RADIUS"
	EnvMaxSide       = "FIREMASK_MAX_SIDE"
	EnvMinRegionArea = "FIREMASK_MIN_REGION_AREA"
	EnvResultsDir    = "FIREMASK_RESULTS_DIR"
	EnvCacheSize     = "FIREMASK_CACHE_SIZE"
	EnvLogLevel      = "FIREMASK_LOG_LEVEL"
	EnvLogFormat     = "FIREMASK_LOG_FORMAT"
)

// Config holds the process settings.
type Config struct {
	// KernelRadius is the default morphology radius for fire_analyze.
	KernelRadius int

	// MaxSide downsizes inputs whose longest side exceeds it. 0 disables.
	MaxSide int

	// MinRegionArea drops fire regions smaller than this many pixels.
	MinRegionArea int

	// ResultsDir is the default directory for persisted composites. Empty
	// means results are only returned inline.
	ResultsDir string

	// CacheSize is the number of decoded images kept between tool calls.
	// 0 keeps every image.
	CacheSize int

	LogLevel  logrus.Level
	LogFormat string // "text" or "json"
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		KernelRadius:  2,
		MaxSide:       0,
		MinRegionArea: 1,
		CacheSize:     16,
		LogLevel:      logrus.InfoLevel,
		LogFormat:     "text",
	}
}

// Load reads the given .env files, or ./.env when none are named, and then
// the environment. A missing ./.env is not an error; a named file that
// cannot be read is. Variables already set in the environment take
// precedence over .env entries.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(files...); err != nil {
		return nil, errors.Wrap(err, "load env file")
	}

	cfg := Default()
	var err error

	if cfg.KernelRadius, err = intVar(EnvKernelRadius, cfg.KernelRadius, 1); err != nil {
		return nil, err
	}
	if cfg.MaxSide, err = intVar(EnvMaxSide, cfg.MaxSide, 0); err != nil {
		return nil, err
	}
	if cfg.MinRegionArea, err = intVar(EnvMinRegionArea, cfg.MinRegionArea, 1); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = intVar(EnvCacheSize, cfg.CacheSize, 0); err != nil {
		return nil, err
	}
	cfg.ResultsDir = strings.TrimSpace(os.Getenv(EnvResultsDir))

	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", EnvLogLevel)
		}
		cfg.LogLevel = level
	}

	if v := strings.ToLower(strings.TrimSpace(os.Getenv(EnvLogFormat))); v != "" {
		if v != "text" && v != "json" {
			return nil, errors.Errorf("%s: unknown format %q (want text or json)", EnvLogFormat, v)
		}
		cfg.LogFormat = v
	}

	return cfg, nil
}

// intVar reads an integer variable, falling back to def when unset.
func intVar(name string, def, minimum int) (int, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(err, "%s", name)
	}
	if n < minimum {
		return 0, errors.Errorf("%s: %d is below the minimum of %d", name, n, minimum)
	}
	return n, nil
}
