package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Cache backends understood by [CacheConfig.Backend].
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendFiles  = "files"
)

// Environment variables consulted by [Config.ApplyEnv].
const (
	EnvUser         = "PLAYTIME_USER"
	EnvRange        = "PLAYTIME_RANGE"
	EnvCacheBackend = "PLAYTIME_CACHE_BACKEND"
	EnvDatabasePath = "PLAYTIME_DATABASE_PATH"
	EnvUserAgent    = "PLAYTIME_USER_AGENT"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	ListenBrainz ListenBrainzConfig `toml:"listenbrainz"`
	MusicBrainz  MusicBrainzConfig  `toml:"musicbrainz"`
	Cache        CacheConfig        `toml:"cache"`
	Database     DatabaseConfig     `toml:"database"`
	Rules        RulesConfig        `toml:"rules"`
}

// ListenBrainzConfig points the history fetcher at a user's statistics.
type ListenBrainzConfig struct {
	BaseURL           string  `toml:"base_url"`
	User              string  `toml:"user"`
	Range             string  `toml:"range"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// MinIntervalFloorMS is the smallest accepted musicbrainz.min_interval_ms.
const MinIntervalFloorMS = 1000

// MusicBrainzConfig contains metadata service settings.
type MusicBrainzConfig struct {
	BaseURL       string `toml:"base_url"`
	UserAgent     string `toml:"user_agent"`
	MinIntervalMS int    `toml:"min_interval_ms"`
}

// MinInterval is the enforced spacing between consecutive metadata requests.
func (c MusicBrainzConfig) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalMS) * time.Millisecond
}

// CacheConfig selects where raw metadata responses are persisted.
type CacheConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RulesConfig contains the locations of the user-curated override tables.
type RulesConfig struct {
	SkipPath  string `toml:"skip_path"`
	RemapPath string `toml:"remap_path"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfig, err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv loads variables from a dotenv file into the process environment.
//
// A missing file is not an error. Variables already set in the environment win.
func LoadEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("%w: failed to load %s: %v", ErrConfig, path, err)
	}
	return nil
}

// ApplyEnv overrides config values with any PLAYTIME_* variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvUser); v != "" {
		c.ListenBrainz.User = v
	}
	if v := os.Getenv(EnvRange); v != "" {
		c.ListenBrainz.Range = v
	}
	if v := os.Getenv(EnvCacheBackend); v != "" {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv(EnvDatabasePath); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(EnvUserAgent); v != "" {
		c.MusicBrainz.UserAgent = v
	}
}

// Validate reports the first setting that would make a run impossible.
func (c *Config) Validate() error {
	switch {
	case c.ListenBrainz.User == "":
		return fmt.Errorf("%w: listenbrainz.user is required", ErrConfig)
	case c.ListenBrainz.Range == "":
		return fmt.Errorf("%w: listenbrainz.range is required", ErrConfig)
	case c.MusicBrainz.MinIntervalMS < MinIntervalFloorMS:
		return fmt.Errorf("%w: musicbrainz.min_interval_ms must be at least %d, got %d",
			ErrConfig, MinIntervalFloorMS, c.MusicBrainz.MinIntervalMS)
	case c.MusicBrainz.UserAgent == "":
		return fmt.Errorf("%w: musicbrainz.user_agent is required", ErrConfig)
	}

	switch c.Cache.Backend {
	case CacheBackendSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("%w: database.path is required for the sqlite cache", ErrConfig)
		}
	case CacheBackendFiles:
		if c.Cache.Dir == "" {
			return fmt.Errorf("%w: cache.dir is required for the files cache", ErrConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrConfig, c.Cache.Backend)
	}

	return nil
}
