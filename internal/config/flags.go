package config

import "flag"

var (
	flagConfig    = flag.String("config", "", "Path to config file")
	flagDebug     = flag.Bool("debug", false, "Enable debug logging")
	flagDataDir   = flag.String("data", "", "Game data directory")
	flagNoCache   = flag.Bool("no-cache", false, "Disable snapshot and extraction caches")
	flagCacheDir  = flag.String("cache-dir", "", "Snapshot cache directory")
	flagWorkers   = flag.Int("workers", 0, "Parallel model loads")
	flagUnitScale = flag.Float64("unit-scale", 0, "Game units to output units factor")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDataDir != "" {
		cfg.Data.DataDir = *flagDataDir
	}
	if *flagNoCache {
		cfg.Cache.Enabled = false
	}
	if *flagCacheDir != "" {
		cfg.Cache.Dir = *flagCacheDir
	}
	if *flagWorkers > 0 {
		cfg.Loading.Workers = *flagWorkers
	}
	if *flagUnitScale > 0 {
		cfg.Geometry.UnitScale = float32(*flagUnitScale)
	}
}
