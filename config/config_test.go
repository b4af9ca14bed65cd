package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultsAreUsable(t *testing.T) {
	r := Defaults()
	require.Greater(t, r.Workers, 0)
	require.Greater(t, r.ReporterPeriod.Seconds(), 0.0)
	require.Greater(t, r.SeenCacheBits, uint(0))
	require.LessOrEqual(t, r.SeenCacheBits, uint(24))
}

func TestLoadAppliesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "linearcheck.toml")
	contents := "workers = 3\nreporter_period = \"1s\"\nseen_cache_bits = 10\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, r.Workers)
	require.Equal(t, "1s", r.ReporterPeriod.String())
	require.Equal(t, uint(10), r.SeenCacheBits)
}

func TestLoadEmptyPathResolvesDefaults(t *testing.T) {
	r, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Defaults(), r)
}

func TestLoadRejectsUnparseableReporterPeriod(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "linearcheck.toml")
	require.NoError(t, os.WriteFile(path, []byte("reporter_period = \"not-a-duration\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestNegativeReporterPeriodDisablesReporter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "linearcheck.toml")
	require.NoError(t, os.WriteFile(path, []byte("reporter_period = \"-1s\"\n"), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	require.Zero(t, r.ReporterPeriod)
}

func TestSeenCacheBitsCappedAtMax(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "linearcheck.toml")
	require.NoError(t, os.WriteFile(path, []byte("seen_cache_bits = 30\n"), 0o644))

	r, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint(24), r.SeenCacheBits)
}
