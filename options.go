package hugegraph

import (
	"log/slog"
	"path/filepath"

	"github.com/hupe1980/hugegraph/blobstore"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	store            blobstore.Store
	committer        blobstore.Committer
}

// Option configures a Runtime.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring pipelines.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hugegraph.BasicMetricsCollector{}
//	rt, _ := hugegraph.New(hugegraph.DefaultConfig(), hugegraph.WithMetricsCollector(metrics))
//	// ... run pipelines ...
//	stats := metrics.GetStats()
//	fmt.Printf("Supersteps: %d, Avg latency: %dns\n", stats.SuperstepCount, stats.SuperstepAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging. It replaces the logger built from
// Config.LogLevel and Config.LogFormat. Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := hugegraph.NewJSONLogger(slog.LevelInfo)
//	rt, _ := hugegraph.New(cfg, hugegraph.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithSnapshotSink makes the default storages export their columns to store
// on Flush, with versions tracked by committer.
//
// Example with S3 and DynamoDB:
//
//	store, _ := s3.New(ctx, "my-bucket", "graphs/")
//	committer := s3.NewDDBCommitter(dynamodb.NewFromConfig(awsCfg), "commits", "s3://my-bucket/graphs")
//	rt, _ := hugegraph.New(cfg, hugegraph.WithSnapshotSink(store, committer))
func WithSnapshotSink(store blobstore.Store, committer blobstore.Committer) Option {
	return func(o *options) {
		o.store = store
		o.committer = committer
	}
}

func applyOptions(cfg Config, optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = loggerFromConfig(cfg)
	}
	if o.store == nil && o.committer == nil && cfg.SnapshotDir != "" {
		o.store = blobstore.NewLocalStore(filepath.Join(cfg.SnapshotDir, "blobs"))
		o.committer = blobstore.NewLocalCommitter(filepath.Join(cfg.SnapshotDir, "commits"))
	}
	return o
}
