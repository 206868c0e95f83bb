// Package config handles loader configuration.
package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Faultbox/vvardenfell/internal/logger"
)

// Config holds all loader settings.
type Config struct {
	Data     DataConfig     `yaml:"data"`
	Cache    CacheConfig    `yaml:"cache"`
	Geometry GeometryConfig `yaml:"geometry"`
	Loading  LoadingConfig  `yaml:"loading"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DataConfig holds game data file paths. Relative archive and content
// paths are resolved against DataDir.
type DataConfig struct {
	DataDir  string   `yaml:"data_dir"`
	Archives []string `yaml:"archives"` // lowest priority first
	Content  []string `yaml:"content"`  // load order
}

// CacheConfig holds snapshot and extracted-bytes cache settings.
type CacheConfig struct {
	Enabled              bool   `yaml:"enabled"`
	Dir                  string `yaml:"dir"` // empty means ConfigDir()/cache
	ExtractMaxBytes      int64  `yaml:"extract_max_bytes"`
	ExtractMaxEntryBytes int64  `yaml:"extract_max_entry_bytes"`
}

// GeometryConfig holds model conversion settings. The three switches
// enable the optional mesh passes of the model package.
type GeometryConfig struct {
	UnitScale           float32 `yaml:"unit_scale"`
	BonesPerVertex      int     `yaml:"bones_per_vertex"`
	GenerateNormals     bool    `yaml:"generate_normals"`
	WeldVertices        bool    `yaml:"weld_vertices"`
	OptimizeVertexCache bool    `yaml:"optimize_vertex_cache"`
}

// LoadingConfig holds concurrency settings.
type LoadingConfig struct {
	Workers int `yaml:"workers"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			DataDir:  "Data Files",
			Archives: []string{"Morrowind.bsa"},
			Content:  []string{"Morrowind.esm"},
		},
		Cache: CacheConfig{
			Enabled:              true,
			ExtractMaxBytes:      256 << 20,
			ExtractMaxEntryBytes: 4 << 20,
		},
		Geometry: GeometryConfig{
			UnitScale:      1.0 / 70,
			BonesPerVertex: 4,
		},
		Loading: LoadingConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Geometry.UnitScale <= 0 {
		errs = append(errs, fmt.Errorf("geometry.unit_scale must be positive, got %v", c.Geometry.UnitScale))
	}
	if c.Geometry.BonesPerVertex < 1 || c.Geometry.BonesPerVertex > 8 {
		errs = append(errs, fmt.Errorf("geometry.bones_per_vertex must be 1..8, got %d", c.Geometry.BonesPerVertex))
	}
	if c.Loading.Workers < 1 {
		errs = append(errs, fmt.Errorf("loading.workers must be at least 1, got %d", c.Loading.Workers))
	}
	if c.Cache.ExtractMaxEntryBytes > c.Cache.ExtractMaxBytes {
		errs = append(errs, errors.New("cache.extract_max_entry_bytes exceeds cache.extract_max_bytes"))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	return errors.Join(errs...)
}

// ArchivePaths returns the archive paths in priority order, lowest first.
func (c *Config) ArchivePaths() []string {
	return c.resolve(c.Data.Archives)
}

// ContentPaths returns the content files in load order.
func (c *Config) ContentPaths() []string {
	return c.resolve(c.Data.Content)
}

// CacheDir returns the snapshot directory.
func (c *Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	return filepath.Join(ConfigDir(), "cache")
}

func (c *Config) resolve(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		if filepath.IsAbs(name) || c.Data.DataDir == "" {
			out[i] = name
		} else {
			out[i] = filepath.Join(c.Data.DataDir, name)
		}
	}
	return out
}
