// Package store persists users and the artist/album/song catalog with gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/petermazzocco/go-music-api/internal/config"
	"github.com/petermazzocco/go-music-api/models"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidID   = errors.New("invalid id")
	ErrDuplicate   = errors.New("duplicate record")
	ErrAlbumLookup = errors.New("album lookup failed")
)

// Store wraps a gorm connection. A Store handed to a Transaction callback is
// bound to that transaction.
type Store struct {
	db     *gorm.DB
	logger *log.Logger
}

// New wraps an already opened gorm connection.
func New(db *gorm.DB, logger *log.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Open connects to the configured database. Foreign-key constraints are not
// created; album and song references are kept consistent by the catalog code.
func Open(cfg config.DatabaseConfig, logger *log.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: gormlogger.New(logger, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", cfg.Driver, err)
	}
	return New(db, logger), nil
}

// Migrate creates or updates the tables for every model.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Artist{},
		&models.Album{},
		&models.Song{},
	); err != nil {
		return fmt.Errorf("auto migrating models: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting sql db: %w", err)
	}
	return sqlDB.Close()
}

// Transaction runs fn with a Store bound to a single database transaction.
// The transaction is rolled back if fn returns an error.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, logger: s.logger})
	})
}

func (s *Store) Users() *UserRepository {
	return &UserRepository{db: s.db}
}

func (s *Store) Artists() *ArtistRepository {
	return &ArtistRepository{db: s.db}
}

func (s *Store) Albums() *AlbumRepository {
	return &AlbumRepository{db: s.db}
}

func (s *Store) Songs() *SongRepository {
	return &SongRepository{db: s.db}
}

// checkID rejects identifiers that could never name a record.
func checkID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// translate maps gorm errors onto the package sentinels.
func translate(err error, action string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", action, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", action, err)
	}
}

func first[T any](ctx context.Context, db *gorm.DB, id string, preloads ...string) (*T, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	q := db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	var record T
	if err := q.Where("id = ?", id).First(&record).Error; err != nil {
		return nil, translate(err, "querying record")
	}
	return &record, nil
}

func updateColumns[T any](ctx context.Context, db *gorm.DB, id string, cols map[string]any, preloads ...string) (*T, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if len(cols) > 0 {
		var model T
		result := db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(cols)
		if result.Error != nil {
			return nil, translate(result.Error, "updating record")
		}
		if result.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return first[T](ctx, db, id, preloads...)
}

// remove deletes the record and returns it as it was before removal.
func remove[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	record, err := first[T](ctx, db, id)
	if err != nil {
		return nil, err
	}
	var model T
	result := db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if result.Error != nil {
		return nil, translate(result.Error, "deleting record")
	}
	if result.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return record, nil
}
