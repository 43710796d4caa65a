package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, info, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.False(t, info.FileFound)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
port = 9090

[data]
path = "/srv/data/orders.csv"
delimiter = ";"

[data.columns]
shipping_cost = "Freight"

[dashboard]
top_states = 5
`), 0o644))

	cfg, info, err := Load(path)
	require.NoError(t, err)
	assert.True(t, info.FileFound)
	assert.True(t, info.PortSpecified)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/srv/data/orders.csv", cfg.Data.Path)
	assert.Equal(t, "latin1", cfg.Data.Encoding)
	assert.Equal(t, 5, cfg.Dashboard.TopStates)

	opts := cfg.LoadOptions()
	assert.Equal(t, ';', opts.Delimiter)
	assert.Equal(t, "Freight", opts.Columns["shipping_cost"])
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SUPERSTORE_DATA_PATH", "/tmp/other.csv")
	t.Setenv("SUPERSTORE_PORT", "7000")

	cfg, info, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/other.csv", cfg.Data.Path)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.True(t, info.PortSpecified)
}

func TestLoadRejectsBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nport = "), 0o644))
	_, _, err := Load(path)
	assert.Error(t, err)
}
