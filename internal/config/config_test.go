package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		cfg := DefaultConfig()

		if cfg.Server.Addr != ":3000" {
			t.Errorf("expected addr :3000, got %s", cfg.Server.Addr)
		}
		if cfg.Database.Driver != "sqlite" {
			t.Errorf("expected sqlite driver, got %s", cfg.Database.Driver)
		}
		if !cfg.Auth.Enabled {
			t.Error("expected auth to be enabled by default")
		}
		if cfg.Pagination.SongsPerPage != 10 {
			t.Errorf("expected 10 songs per page, got %d", cfg.Pagination.SongsPerPage)
		}
		if len(cfg.Uploads.ImageExtensions) != 4 {
			t.Errorf("expected 4 image extensions, got %v", cfg.Uploads.ImageExtensions)
		}
		if cfg.Catalog.AtomicCascade {
			t.Error("expected best-effort cascade by default")
		}
		if cfg.Auth.Secret != "" {
			t.Errorf("expected no default secret, got %q", cfg.Auth.Secret)
		}
		if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("default config without a secret should not validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		contents := `[database]
driver = "postgres"
dsn = "postgres://music@localhost/music"

[pagination]
artists_per_page = 25

[uploads]
song_extensions = ["flac"]
`
		if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		t.Setenv("JWT_SECRET", "config-test-secret")
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Database.Driver != "postgres" {
			t.Errorf("expected postgres driver, got %s", cfg.Database.Driver)
		}
		if cfg.Pagination.ArtistsPerPage != 25 {
			t.Errorf("expected 25 artists per page, got %d", cfg.Pagination.ArtistsPerPage)
		}
		if cfg.Pagination.AlbumsPerPage != 4 {
			t.Errorf("unset values should keep defaults, got %d", cfg.Pagination.AlbumsPerPage)
		}
		if len(cfg.Uploads.SongExtensions) != 1 || cfg.Uploads.SongExtensions[0] != "flac" {
			t.Errorf("expected [flac], got %v", cfg.Uploads.SongExtensions)
		}
	})

	t.Run("LoadMissingFile", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "config-test-secret")
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if cfg.Database.DSN == "" {
			t.Error("expected default dsn")
		}
	})

	t.Run("LoadWithoutSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")
		t.Setenv("AUTH_ENABLED", "")
		if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("LoadInvalidFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("[database\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"PORT":            "8080",
		"DSN":             "postgres://db",
		"DB_DRIVER":       "postgres",
		"JWT_SECRET":      "s3cret",
		"AUTH_ENABLED":    "false",
		"STORAGE_BACKEND": "s3",
		"BUCKET_NAME":     "music",
		"LOG_LEVEL":       "debug",
	}
	cfg := DefaultConfig()
	if err := cfg.ApplyEnv(func(k string) string { return env[k] }); err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Database.DSN != "postgres://db" || cfg.Database.Driver != "postgres" {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Auth.Secret != "s3cret" || cfg.Auth.Enabled {
		t.Errorf("auth = %+v", cfg.Auth)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.Bucket != "music" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	bad := DefaultConfig()
	err := bad.ApplyEnv(func(k string) string {
		if k == "AUTH_ENABLED" {
			return "sometimes"
		}
		return ""
	})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("ApplyEnv() error = %v, want ErrInvalidConfig", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }},
		{"auth without secret", func(c *Config) { c.Auth.Secret = "" }},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "ftp" }},
		{"s3 without bucket", func(c *Config) { c.Storage.Backend = "s3"; c.Storage.Bucket = "" }},
		{"zero page size", func(c *Config) { c.Pagination.AlbumsPerPage = 0 }},
		{"zero upload limit", func(c *Config) { c.Uploads.MaxUploadMB = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Auth.Secret = "config-test-secret"
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	t.Run("disabled auth needs no secret", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Auth.Enabled = false
		cfg.Auth.Secret = ""
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}
