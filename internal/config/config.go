package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"superstore/internal/engine"
)

// AppConfig is the full server configuration.
type AppConfig struct {
	Server    ServerConfig    `toml:"server"`
	Data      DataConfig      `toml:"data"`
	Log       LogConfig       `toml:"log"`
	Dashboard DashboardConfig `toml:"dashboard"`
}

type ServerConfig struct {
	Port      int      `toml:"port"`
	RateLimit float64  `toml:"rate_limit"` // requests per second per client; 0 disables
	CORS      []string `toml:"cors"`
}

// DataConfig describes the source file. Columns maps a field name such as
// "shipping_cost" to the header used in the file.
type DataConfig struct {
	Path        string            `toml:"path"`
	Encoding    string            `toml:"encoding"`
	Delimiter   string            `toml:"delimiter"`
	DateLayouts []string          `toml:"date_layouts"`
	Columns     map[string]string `toml:"columns"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type DashboardConfig struct {
	TopStates int `toml:"top_states"`
}

// LoadInfo reports which settings came from the file.
type LoadInfo struct {
	FileFound     bool
	PortSpecified bool
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:      8080,
			RateLimit: 20,
			CORS:      []string{"*"},
		},
		Data: DataConfig{
			Path:        "Global_Superstore2.csv",
			Encoding:    "latin1",
			Delimiter:   ",",
			DateLayouts: append([]string(nil), engine.DefaultDateLayouts...),
		},
		Log: LogConfig{Level: "info"},
		Dashboard: DashboardConfig{
			TopStates: engine.DefaultTopStates,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
// SUPERSTORE_DATA_PATH and SUPERSTORE_PORT override the file.
func Load(path string) (*AppConfig, LoadInfo, error) {
	cfg := DefaultConfig()
	info := LoadInfo{}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, info, err
		default:
			info.FileFound = true
			info.PortSpecified = portSpecified(data)
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, info, err
			}
		}
	}

	if v := os.Getenv("SUPERSTORE_DATA_PATH"); v != "" {
		cfg.Data.Path = v
	}
	if v := os.Getenv("SUPERSTORE_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			cfg.Server.Port = p
			info.PortSpecified = true
		}
	}
	return cfg, info, nil
}

func portSpecified(data []byte) bool {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return false
	}
	server, ok := raw["server"].(map[string]any)
	if !ok {
		return false
	}
	_, ok = server["port"]
	return ok
}

// LoadOptions converts the data section into loader options.
func (c *AppConfig) LoadOptions() engine.LoadOptions {
	opts := engine.LoadOptions{
		Encoding:    c.Data.Encoding,
		DateLayouts: c.Data.DateLayouts,
		Columns:     c.Data.Columns,
	}
	if d := []rune(c.Data.Delimiter); len(d) > 0 {
		opts.Delimiter = d[0]
	}
	return opts
}
