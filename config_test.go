package hugegraph_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hupe1980/hugegraph"
	"github.com/hupe1980/hugegraph/storage/snapshot"
	"github.com/hupe1980/hugegraph/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hugegraph.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
concurrency = 16
memory_limit_bytes = 1073741824
io_limit_bytes_per_sec = 1048576
log_level = " DEBUG "
log_format = "json"
`), 0o600))

	cfg, err := hugegraph.LoadConfig(path)
	require.NoError(t, err)

	want := hugegraph.DefaultConfig()
	want.Concurrency = 16
	want.MemoryLimitBytes = 1 << 30
	want.IOLimitBytesPerSec = 1 << 20
	want.LogLevel = "debug"
	want.LogFormat = "json"
	assert.Equal(t, want, cfg)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := hugegraph.LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestParseConfig_Empty(t *testing.T) {
	cfg, err := hugegraph.ParseConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, hugegraph.DefaultConfig(), cfg)
}

func TestParseConfig_ExplicitZeroOverridesDefault(t *testing.T) {
	cfg, err := hugegraph.ParseConfig([]byte("max_workers = 0"))
	require.NoError(t, err)
	assert.Zero(t, cfg.MaxWorkers)
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown key", `page_size = 4096`},
		{"zero concurrency", `concurrency = 0`},
		{"negative memory", `memory_limit_bytes = -1`},
		{"negative workers", `max_workers = -2`},
		{"negative io", `io_limit_bytes_per_sec = -1`},
		{"negative supersteps", `max_supersteps = -1`},
		{"log level", `log_level = "trace"`},
		{"log format", `log_format = "xml"`},
		{"compression", `snapshot_compression = "gzip"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := hugegraph.ParseConfig([]byte(tt.data))
			assert.ErrorIs(t, err, hugegraph.ErrInvalidConfig)
		})
	}
}

func TestParseConfig_Malformed(t *testing.T) {
	_, err := hugegraph.ParseConfig([]byte(`concurrency = "eight"`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, hugegraph.ErrInvalidConfig)
}

func TestSnapshotDir(t *testing.T) {
	dir := t.TempDir()
	cfg, err := hugegraph.ParseConfig([]byte(`snapshot_dir = "` + filepath.ToSlash(dir) + `"`))
	require.NoError(t, err)

	rt, err := hugegraph.New(cfg, hugegraph.WithLogger(nil))
	require.NoError(t, err)
	require.NotNil(t, rt.SnapshotWriter())
	hugegraph.RegisterDefaults(rt)
	registerComponents(rt)

	_, err = rt.RunPipeline(context.Background(), pipelineID, testutil.MustCSR(4, nil))
	require.NoError(t, err)

	// A second runtime on the same directory reads the committed snapshot.
	other, err := hugegraph.New(cfg, hugegraph.WithLogger(nil))
	require.NoError(t, err)
	labels, version, err := snapshot.Latest[int64](context.Background(), other.SnapshotReader(), "labels")
	require.NoError(t, err)
	defer labels.Release()
	assert.Equal(t, uint64(1), version)
	assert.Equal(t, []int64{0, 1, 2, 3}, labels.ToSlice())

	_, err = os.Stat(filepath.Join(dir, "blobs", "labels"))
	assert.NoError(t, err)
}

func TestConfig_ZeroValueStringsUseDefaults(t *testing.T) {
	cfg := hugegraph.Config{Concurrency: 1}
	require.NoError(t, cfg.Validate())

	rt, err := hugegraph.New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, rt.Logger())
}
