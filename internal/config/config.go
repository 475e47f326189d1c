// Package config provides configuration management for repoprep runs
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config represents the global configuration for dataset preparation
type Config struct {
	// Dataset layout
	DataDir     string `json:"data_dir" yaml:"data_dir"`         // Directory holding dataset.csv and the split files
	DatasetFile string `json:"dataset_file" yaml:"dataset_file"` // Name of the unsplit dataset file

	// Splitting
	Seed       uint64  `json:"seed" yaml:"seed"`               // PRNG seed for the shuffle
	TrainRatio float64 `json:"train_ratio" yaml:"train_ratio"` // Fraction of rows in train.csv
	ValRatio   float64 `json:"val_ratio" yaml:"val_ratio"`     // Fraction of rows in val.csv; the rest is test.csv

	// Cleaning
	OutlierFactor float64 `json:"outlier_factor" yaml:"outlier_factor"` // Upper fence is Q3 + factor*IQR

	// Parallel Processing Configuration
	ParallelThreshold int `json:"parallel_threshold" yaml:"parallel_threshold"` // Minimum rows to trigger parallel column processing
	WorkerPoolSize    int `json:"worker_pool_size" yaml:"worker_pool_size"`     // Number of worker goroutines (0 = auto-detect)

	// Output
	Compression string `json:"compression" yaml:"compression"`   // Parquet codec
	SQLiteTable string `json:"sqlite_table" yaml:"sqlite_table"` // Table name for SQLite exports

	// Debugging Configuration
	VerboseLogging    bool `json:"verbose_logging" yaml:"verbose_logging"`       // Enable debug logging
	MetricsCollection bool `json:"metrics_collection" yaml:"metrics_collection"` // Enable per-step metrics
}

// Global configuration instance
var (
	globalConfig Config
	configMutex  sync.RWMutex
)

// Default configuration values
const (
	DefaultDataDir           = "DataFiles"
	DefaultDatasetFile       = "dataset.csv"
	DefaultSeed              = 42
	DefaultTrainRatio        = 0.7
	DefaultValRatio          = 0.2
	DefaultOutlierFactor     = 3.0
	DefaultParallelThreshold = 1000
	DefaultCompression       = "snappy"
	DefaultSQLiteTable       = "repositories"
)

var supportedCompressions = []string{"snappy", "gzip", "lz4", "zstd", "uncompressed"}

func init() {
	globalConfig = NewConfig()
}

// NewConfig creates a new configuration with default values
func NewConfig() Config {
	return Config{
		DataDir:     DefaultDataDir,
		DatasetFile: DefaultDatasetFile,

		Seed:       DefaultSeed,
		TrainRatio: DefaultTrainRatio,
		ValRatio:   DefaultValRatio,

		OutlierFactor: DefaultOutlierFactor,

		ParallelThreshold: DefaultParallelThreshold,
		WorkerPoolSize:    0, // Auto-detect

		Compression: DefaultCompression,
		SQLiteTable: DefaultSQLiteTable,

		VerboseLogging:    false,
		MetricsCollection: false,
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("DataDir must not be empty")
	}

	if c.DatasetFile == "" {
		return fmt.Errorf("DatasetFile must not be empty")
	}

	if c.TrainRatio <= 0 || c.TrainRatio >= 1 {
		return fmt.Errorf("TrainRatio must be in (0, 1), got %f", c.TrainRatio)
	}

	if c.ValRatio < 0 || c.TrainRatio+c.ValRatio > 1 {
		return fmt.Errorf("ValRatio must be non-negative and TrainRatio+ValRatio at most 1, got %f+%f",
			c.TrainRatio, c.ValRatio)
	}

	if c.OutlierFactor <= 0 {
		return fmt.Errorf("OutlierFactor must be positive, got %f", c.OutlierFactor)
	}

	if c.ParallelThreshold <= 0 {
		return fmt.Errorf("ParallelThreshold must be positive, got %d", c.ParallelThreshold)
	}

	if c.WorkerPoolSize < 0 {
		return fmt.Errorf("WorkerPoolSize must be non-negative, got %d", c.WorkerPoolSize)
	}

	if !isSupportedCompression(c.Compression) {
		return fmt.Errorf("Compression must be one of %s, got %q",
			strings.Join(supportedCompressions, ", "), c.Compression)
	}

	if c.SQLiteTable == "" {
		return fmt.Errorf("SQLiteTable must not be empty")
	}

	return nil
}

// WithDefaults returns a new configuration with default values filled in for
// zero values of the fields where zero is not a usable setting
func (c Config) WithDefaults() Config {
	defaults := NewConfig()

	if c.DataDir == "" {
		c.DataDir = defaults.DataDir
	}
	if c.DatasetFile == "" {
		c.DatasetFile = defaults.DatasetFile
	}
	if c.TrainRatio == 0 {
		c.TrainRatio = defaults.TrainRatio
	}
	if c.OutlierFactor == 0 {
		c.OutlierFactor = defaults.OutlierFactor
	}
	if c.ParallelThreshold == 0 {
		c.ParallelThreshold = defaults.ParallelThreshold
	}
	if c.Compression == "" {
		c.Compression = defaults.Compression
	}
	if c.SQLiteTable == "" {
		c.SQLiteTable = defaults.SQLiteTable
	}

	// Seed and ValRatio are valid at zero and booleans at false, so they are
	// left as given; NewConfig and the loaders supply their defaults.

	return c
}

// Workers resolves WorkerPoolSize, mapping 0 to the CPU count
func (c Config) Workers() int {
	if c.WorkerPoolSize > 0 {
		return c.WorkerPoolSize
	}
	return runtime.NumCPU()
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = config
}

// GetGlobalConfig returns the current global configuration
func GetGlobalConfig() Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// LoadFromJSON loads configuration from JSON data. Absent keys keep their
// NewConfig values.
func LoadFromJSON(data []byte) (Config, error) {
	config := NewConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parsing JSON configuration: %w", err)
	}
	return config.WithDefaults(), nil
}

// LoadFromFile loads configuration from a file (supports JSON, YAML). Absent
// keys keep their NewConfig values.
func LoadFromFile(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %s: %w", filename, err)
	}

	config := NewConfig()
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".json":
		err = json.Unmarshal(data, &config)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &config)
	default:
		return Config{}, fmt.Errorf("unsupported config file format: %s", ext)
	}

	if err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", filename, err)
	}

	return config.WithDefaults(), nil
}

// LoadFromEnv overlays REPOPREP_* environment variables on base.
// Values that fail to parse are ignored.
func LoadFromEnv(base Config) Config {
	config := base

	if val := os.Getenv("REPOPREP_DATA_DIR"); val != "" {
		config.DataDir = val
	}

	if val := os.Getenv("REPOPREP_DATASET_FILE"); val != "" {
		config.DatasetFile = val
	}

	if val := os.Getenv("REPOPREP_SEED"); val != "" {
		if parsed, err := strconv.ParseUint(val, 10, 64); err == nil {
			config.Seed = parsed
		}
	}

	if val := os.Getenv("REPOPREP_TRAIN_RATIO"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.TrainRatio = parsed
		}
	}

	if val := os.Getenv("REPOPREP_VAL_RATIO"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.ValRatio = parsed
		}
	}

	if val := os.Getenv("REPOPREP_OUTLIER_FACTOR"); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			config.OutlierFactor = parsed
		}
	}

	if val := os.Getenv("REPOPREP_PARALLEL_THRESHOLD"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.ParallelThreshold = parsed
		}
	}

	if val := os.Getenv("REPOPREP_WORKER_POOL_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			config.WorkerPoolSize = parsed
		}
	}

	if val := os.Getenv("REPOPREP_COMPRESSION"); val != "" {
		config.Compression = strings.ToLower(val)
	}

	if val := os.Getenv("REPOPREP_SQLITE_TABLE"); val != "" {
		config.SQLiteTable = val
	}

	if val := os.Getenv("REPOPREP_VERBOSE_LOGGING"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.VerboseLogging = parsed
		}
	}

	if val := os.Getenv("REPOPREP_METRICS_COLLECTION"); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			config.MetricsCollection = parsed
		}
	}

	return config
}

func isSupportedCompression(name string) bool {
	for _, c := range supportedCompressions {
		if c == name {
			return true
		}
	}
	return false
}
