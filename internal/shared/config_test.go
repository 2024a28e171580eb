package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.ListenBrainz.Range != "this_year" {
			t.Errorf("expected range this_year, got %s", config.ListenBrainz.Range)
		}

		if config.MusicBrainz.MinIntervalMS != 1000 {
			t.Errorf("expected min interval 1000ms, got %d", config.MusicBrainz.MinIntervalMS)
		}

		if config.Cache.Backend != CacheBackendSQLite {
			t.Errorf("expected sqlite cache backend, got %s", config.Cache.Backend)
		}

		if config.Rules.RemapPath != "./bad_data.json" {
			t.Errorf("expected remap path ./bad_data.json, got %s", config.Rules.RemapPath)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[listenbrainz]
user = "someone"
range = "all_time"

[musicbrainz]
min_interval_ms = 1500

[cache]
backend = "files"
dir = "/tmp/mb"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.ListenBrainz.User != "someone" {
			t.Errorf("expected user someone, got %s", config.ListenBrainz.User)
		}

		if config.MusicBrainz.MinInterval().Milliseconds() != 1500 {
			t.Errorf("expected 1500ms interval, got %v", config.MusicBrainz.MinInterval())
		}

		if config.Cache.Backend != CacheBackendFiles || config.Cache.Dir != "/tmp/mb" {
			t.Errorf("unexpected cache config %+v", config.Cache)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})

	t.Run("LoadConfig Malformed", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[listenbrainz\nuser="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrConfig) {
			t.Errorf("expected ErrConfig, got %v", err)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tt := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "empty user", mutate: func(c *Config) { c.ListenBrainz.User = "" }},
		{name: "empty range", mutate: func(c *Config) { c.ListenBrainz.Range = "" }},
		{name: "zero interval", mutate: func(c *Config) { c.MusicBrainz.MinIntervalMS = 0 }},
		{name: "interval below floor", mutate: func(c *Config) { c.MusicBrainz.MinIntervalMS = 10 }},
		{name: "interval just below floor", mutate: func(c *Config) { c.MusicBrainz.MinIntervalMS = 999 }},
		{name: "empty user agent", mutate: func(c *Config) { c.MusicBrainz.UserAgent = "" }},
		{name: "unknown backend", mutate: func(c *Config) { c.Cache.Backend = "redis" }},
		{name: "files backend without dir", mutate: func(c *Config) {
			c.Cache.Backend = CacheBackendFiles
			c.Cache.Dir = ""
		}},
		{name: "sqlite backend without path", mutate: func(c *Config) { c.Database.Path = "" }},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(config)

			if err := config.Validate(); !errors.Is(err, ErrConfig) {
				t.Errorf("Validate() = %v, want ErrConfig", err)
			}
		})
	}
}

func TestEnv(t *testing.T) {
	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvUser, "other")
		t.Setenv(EnvRange, "month")
		t.Setenv(EnvCacheBackend, "FILES")
		t.Setenv(EnvDatabasePath, "/tmp/x.db")
		t.Setenv(EnvUserAgent, "agent/1.0")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.ListenBrainz.User != "other" {
			t.Errorf("expected user other, got %s", config.ListenBrainz.User)
		}
		if config.ListenBrainz.Range != "month" {
			t.Errorf("expected range month, got %s", config.ListenBrainz.Range)
		}
		if config.Cache.Backend != CacheBackendFiles {
			t.Errorf("expected files backend, got %s", config.Cache.Backend)
		}
		if config.Database.Path != "/tmp/x.db" {
			t.Errorf("expected database path /tmp/x.db, got %s", config.Database.Path)
		}
		if config.MusicBrainz.UserAgent != "agent/1.0" {
			t.Errorf("expected user agent agent/1.0, got %s", config.MusicBrainz.UserAgent)
		}
	})

	t.Run("LoadEnv Missing File", func(t *testing.T) {
		if err := LoadEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("missing .env should not fail: %v", err)
		}
	})

	t.Run("LoadEnv Sets Variables", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envPath, []byte("PLAYTIME_RANGE=week\n"), 0644); err != nil {
			t.Fatalf("failed to write .env: %v", err)
		}
		t.Setenv(EnvRange, "")
		os.Unsetenv(EnvRange)

		if err := LoadEnv(envPath); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}

		if got := os.Getenv(EnvRange); got != "week" {
			t.Errorf("expected PLAYTIME_RANGE=week, got %q", got)
		}
	})
}
