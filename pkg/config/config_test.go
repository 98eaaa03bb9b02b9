package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "node.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
nodeHost: 10.0.0.5
nodePort: 9100
peers:
  - host: 10.0.0.6
    port: 9100
  - host: 10.0.0.7
    port: 9100
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.5", cfg.NodeHost)
	assert.Len(t, cfg.Peers, 2)
	assert.True(t, cfg.EnableWAL, "enableWal should default true")
	assert.Equal(t, 30_000, cfg.RegisterBufferRejectThresholdInMs)
}

func TestValidateRejectsRejectThresholdBelowSleepInterval(t *testing.T) {
	cfg := Default()
	cfg.RegisterBufferSleepIntervalInMs = 100
	cfg.RegisterBufferRejectThresholdInMs = 50

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registerBufferRejectThresholdInMs")
}

func TestElectionBackoffRangeMatchesSpecDefaults(t *testing.T) {
	cfg := Default()
	least, random := cfg.ElectionBackoffRange()
	assert.Equal(t, int64(5_000), least.Milliseconds())
	assert.Equal(t, int64(5_000), random.Milliseconds())
}
