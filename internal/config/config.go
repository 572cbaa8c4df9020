// Package config builds the process-wide configuration once at start-up.
//
// Values come from the embedded defaults, then an optional TOML file, then the
// environment (a .env file in the working directory is loaded first).
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Auth       AuthConfig       `toml:"auth"`
	Storage    StorageConfig    `toml:"storage"`
	Uploads    UploadConfig     `toml:"uploads"`
	Pagination PaginationConfig `toml:"pagination"`
	Catalog    CatalogConfig    `toml:"catalog"`
	Log        LogConfig        `toml:"log"`
}

type ServerConfig struct {
	Addr      string `toml:"addr"`
	RateLimit int    `toml:"rate_limit"`
}

type DatabaseConfig struct {
	Driver string `toml:"driver"`
	DSN    string `toml:"dsn"`
}

// AuthConfig holds the shared token secret. The issuer and the gate must be
// built from the same value.
type AuthConfig struct {
	Enabled bool   `toml:"enabled"`
	Secret  string `toml:"secret"`
}

type StorageConfig struct {
	Backend         string `toml:"backend"`
	UserImages      string `toml:"user_images"`
	ArtistImages    string `toml:"artist_images"`
	AlbumImages     string `toml:"album_images"`
	SongFiles       string `toml:"song_files"`
	Bucket          string `toml:"bucket"`
	AccountID       string `toml:"account_id"`
	AccessKeyID     string `toml:"access_key_id"`
	AccessKeySecret string `toml:"access_key_secret"`
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
}

type UploadConfig struct {
	ImageExtensions []string `toml:"image_extensions"`
	SongExtensions  []string `toml:"song_extensions"`
	MaxUploadMB     int64    `toml:"max_upload_mb"`
}

// MaxUploadBytes is the multipart memory/size limit for a single upload.
func (u UploadConfig) MaxUploadBytes() int64 {
	return u.MaxUploadMB << 20
}

type PaginationConfig struct {
	ArtistsPerPage int `toml:"artists_per_page"`
	AlbumsPerPage  int `toml:"albums_per_page"`
	SongsPerPage   int `toml:"songs_per_page"`
}

type CatalogConfig struct {
	AtomicCascade bool `toml:"atomic_cascade"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the configuration described by the embedded example file.
func DefaultConfig() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &cfg
}

// Load reads the TOML file at path on top of the defaults, applies environment
// overrides and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if _, err := toml.DecodeFile(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	// .env is optional
	_ = godotenv.Load()
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables looked up through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + strings.TrimPrefix(port, ":")
	}
	setString(&c.Database.Driver, getenv("DB_DRIVER"))
	setString(&c.Database.DSN, getenv("DSN"))
	setString(&c.Auth.Secret, getenv("JWT_SECRET"))
	setString(&c.Storage.Backend, getenv("STORAGE_BACKEND"))
	setString(&c.Storage.Bucket, getenv("BUCKET_NAME"))
	setString(&c.Storage.AccountID, getenv("ACCOUNT_ID"))
	setString(&c.Storage.AccessKeyID, getenv("ACCESS_KEY_ID"))
	setString(&c.Storage.AccessKeySecret, getenv("ACCESS_KEY_SECRET"))
	setString(&c.Log.Level, getenv("LOG_LEVEL"))

	if v := getenv("AUTH_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: AUTH_ENABLED=%q", ErrInvalidConfig, v)
		}
		c.Auth.Enabled = enabled
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database dsn is required", ErrInvalidConfig)
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return fmt.Errorf("%w: auth secret is required when auth is enabled", ErrInvalidConfig)
	}
	switch c.Storage.Backend {
	case "local":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("%w: storage bucket is required for the s3 backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	if c.Pagination.ArtistsPerPage <= 0 || c.Pagination.AlbumsPerPage <= 0 || c.Pagination.SongsPerPage <= 0 {
		return fmt.Errorf("%w: page sizes must be positive", ErrInvalidConfig)
	}
	if c.Uploads.MaxUploadMB <= 0 {
		return fmt.Errorf("%w: max_upload_mb must be positive", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile writes the example configuration to path, refusing to overwrite.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
