package hugegraph

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/hupe1980/hugegraph/resource"
	"github.com/hupe1980/hugegraph/storage/snapshot"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("hugegraph: invalid config")

// Config holds the process-wide settings of a Runtime.
type Config struct {
	// Concurrency is the number of goroutines used to build paged arrays.
	Concurrency int

	// MemoryLimitBytes caps page memory reserved through the controller.
	// 0 tracks usage without a limit.
	MemoryLimitBytes int64

	// MaxWorkers caps the goroutines filling pages at the same time.
	MaxWorkers int64

	// IOLimitBytesPerSec caps snapshot throughput. 0 is unlimited.
	IOLimitBytesPerSec int64

	// MaxSupersteps bounds computations of pipelines that set no limit of
	// their own. 0 is unlimited.
	MaxSupersteps int

	// LogLevel is one of debug, info, warn, error. Empty means info.
	LogLevel string

	// LogFormat is text or json. Empty means text.
	LogFormat string

	// SnapshotCompression is one of none, lz4, zstd. Empty means lz4.
	SnapshotCompression string

	// SnapshotDir, when set, exports snapshots to this local directory
	// unless WithSnapshotSink names another sink.
	SnapshotDir string
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Concurrency:         4,
		MaxWorkers:          4,
		MaxSupersteps:       0,
		LogLevel:            "info",
		LogFormat:           "text",
		SnapshotCompression: "lz4",
	}
}

type fileConfig struct {
	Concurrency         int    `toml:"concurrency"`
	MemoryLimitBytes    int64  `toml:"memory_limit_bytes"`
	MaxWorkers          int64  `toml:"max_workers"`
	IOLimitBytesPerSec  int64  `toml:"io_limit_bytes_per_sec"`
	MaxSupersteps       int    `toml:"max_supersteps"`
	LogLevel            string `toml:"log_level"`
	LogFormat           string `toml:"log_format"`
	SnapshotCompression string `toml:"snapshot_compression"`
	SnapshotDir         string `toml:"snapshot_dir"`
}

// LoadConfig reads a TOML file. Keys missing from the file keep their
// DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return mergeConfig(raw, meta)
}

// ParseConfig is LoadConfig for in-memory TOML.
func ParseConfig(data []byte) (Config, error) {
	var raw fileConfig
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return mergeConfig(raw, meta)
}

func mergeConfig(raw fileConfig, meta toml.MetaData) (Config, error) {
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, undecoded[0].String())
	}

	cfg := DefaultConfig()

	if meta.IsDefined("concurrency") {
		cfg.Concurrency = raw.Concurrency
	}
	if meta.IsDefined("memory_limit_bytes") {
		cfg.MemoryLimitBytes = raw.MemoryLimitBytes
	}
	if meta.IsDefined("max_workers") {
		cfg.MaxWorkers = raw.MaxWorkers
	}
	if meta.IsDefined("io_limit_bytes_per_sec") {
		cfg.IOLimitBytesPerSec = raw.IOLimitBytesPerSec
	}
	if meta.IsDefined("max_supersteps") {
		cfg.MaxSupersteps = raw.MaxSupersteps
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.ToLower(strings.TrimSpace(raw.LogLevel))
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(raw.LogFormat))
	}
	if meta.IsDefined("snapshot_compression") {
		cfg.SnapshotCompression = strings.ToLower(strings.TrimSpace(raw.SnapshotCompression))
	}
	if meta.IsDefined("snapshot_dir") {
		cfg.SnapshotDir = strings.TrimSpace(raw.SnapshotDir)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Concurrency < 1:
		return fmt.Errorf("%w: concurrency %d, want >= 1", ErrInvalidConfig, c.Concurrency)
	case c.MemoryLimitBytes < 0:
		return fmt.Errorf("%w: negative memory_limit_bytes", ErrInvalidConfig)
	case c.MaxWorkers < 0:
		return fmt.Errorf("%w: negative max_workers", ErrInvalidConfig)
	case c.IOLimitBytesPerSec < 0:
		return fmt.Errorf("%w: negative io_limit_bytes_per_sec", ErrInvalidConfig)
	case c.MaxSupersteps < 0:
		return fmt.Errorf("%w: negative max_supersteps", ErrInvalidConfig)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("%w: log_format %q, want text or json", ErrInvalidConfig, c.LogFormat)
	}
	if _, err := c.compression(); err != nil {
		return err
	}
	return nil
}

func (c Config) level() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
}

func (c Config) compression() (snapshot.Compression, error) {
	switch c.SnapshotCompression {
	case "none":
		return snapshot.CompressionNone, nil
	case "lz4", "":
		return snapshot.CompressionLZ4, nil
	case "zstd":
		return snapshot.CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("%w: snapshot_compression %q", ErrInvalidConfig, c.SnapshotCompression)
	}
}

func (c Config) resourceConfig() resource.Config {
	return resource.Config{
		MemoryLimitBytes:   c.MemoryLimitBytes,
		MaxWorkers:         c.MaxWorkers,
		IOLimitBytesPerSec: c.IOLimitBytesPerSec,
	}
}
