// Package filestore keeps uploaded images and audio files, either on local
// disk or in an S3-compatible bucket.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/petermazzocco/go-music-api/internal/config"
)

// Kind groups stored files by the entity they belong to.
type Kind string

const (
	UserImages   Kind = "users"
	ArtistImages Kind = "artists"
	AlbumImages  Kind = "albums"
	SongFiles    Kind = "songs"
)

var (
	ErrNotExist    = errors.New("file does not exist")
	ErrInvalidName = errors.New("invalid file name")
)

type Store interface {
	Save(ctx context.Context, kind Kind, name string, r io.Reader, contentType string) error
	Open(ctx context.Context, kind Kind, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, kind Kind, name string) error
}

// New builds the backend selected by cfg.Backend.
func New(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "local":
		return NewLocal(map[Kind]string{
			UserImages:   cfg.UserImages,
			ArtistImages: cfg.ArtistImages,
			AlbumImages:  cfg.AlbumImages,
			SongFiles:    cfg.SongFiles,
		}), nil
	case "s3":
		return NewS3(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// AllowedExtension returns the lower-cased extension of filename (without the
// dot) and whether it is in allowed. Comparison ignores case.
func AllowedExtension(filename string, allowed []string) (string, bool) {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return "", false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return ext, true
		}
	}
	return ext, false
}

// NewName returns a random file name with the given extension.
func NewName(ext string) string {
	return uuid.NewString() + "." + ext
}

// checkName rejects anything that is not a plain file name.
func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
