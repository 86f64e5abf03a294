package config

import "time"

// Config holds runtime settings for the storymap CLI.
//
// Fields:
//   - APIBaseURL: base URL of the story API, without a trailing slash.
//   - DatabasePath: filesystem path of the local SQLite database.
//   - OnlineCheckInterval: how often the client probes API reachability.
//   - ProbeTimeout: per-probe deadline; a probe slower than this counts as
//     offline.
//
// Units: intervals are time.Duration values (e.g., 5*time.Second).
type Config struct {
	APIBaseURL          string
	DatabasePath        string
	OnlineCheckInterval time.Duration
	ProbeTimeout        time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "https://story-api.dicoding.dev/v1"
	c.DatabasePath = "storymap.db"
	c.OnlineCheckInterval = 5 * time.Second
	c.ProbeTimeout = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
