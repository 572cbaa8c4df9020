package store

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/petermazzocco/go-music-api/models"
)

type artistRemover interface {
	Delete(ctx context.Context, id string) (*models.Artist, error)
}

type albumRemover interface {
	ListByArtist(ctx context.Context, artistID string) ([]models.Album, error)
	Delete(ctx context.Context, id string) (*models.Album, error)
}

type songRemover interface {
	DeleteByAlbum(ctx context.Context, albumID string) ([]models.Song, error)
}

// CascadeResult lists what an artist removal touched. Albums holds every album
// found for the artist, including any whose removal failed; Removed holds only
// the albums that are actually gone.
type CascadeResult struct {
	Artist  *models.Artist `json:"artist"`
	Albums  []models.Album `json:"albums"`
	Songs   []models.Song  `json:"songs"`
	Removed []models.Album `json:"-"`
}

// AlbumResult lists what an album removal touched.
type AlbumResult struct {
	Album *models.Album `json:"album"`
	Songs []models.Song `json:"songs"`
}

// Cascade removes a parent record together with everything that references
// it. By default it is best-effort: once the parent is gone, failures on
// children are logged and skipped. A strict cascade stops at the first child
// failure, which is only useful inside a transaction.
type Cascade struct {
	artists artistRemover
	albums  albumRemover
	songs   songRemover
	strict  bool
	logger  *log.Logger
}

func NewCascade(artists artistRemover, albums albumRemover, songs songRemover, logger *log.Logger) *Cascade {
	return &Cascade{artists: artists, albums: albums, songs: songs, logger: logger}
}

// Strict returns a copy of the cascade that fails on any child removal error.
func (c *Cascade) Strict() *Cascade {
	strict := *c
	strict.strict = true
	return &strict
}

// DeleteArtist removes the artist, then each of its albums and their songs.
// Only a missing artist or a failed album lookup abort the whole operation.
func (c *Cascade) DeleteArtist(ctx context.Context, artistID string) (*CascadeResult, error) {
	artist, err := c.artists.Delete(ctx, artistID)
	if err != nil {
		return nil, err
	}

	albums, err := c.albums.ListByArtist(ctx, artist.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: artist %s: %v", ErrAlbumLookup, artist.ID, err)
	}

	if albums == nil {
		albums = []models.Album{}
	}
	result := &CascadeResult{Artist: artist, Albums: albums, Songs: []models.Song{}, Removed: []models.Album{}}
	for _, album := range albums {
		removed, err := c.DeleteAlbum(ctx, album.ID)
		if err != nil {
			if c.strict {
				return nil, err
			}
			c.logger.Warn("skipping album during artist removal", "artist_id", artist.ID, "album_id", album.ID, "err", err)
			continue
		}
		result.Removed = append(result.Removed, *removed.Album)
		result.Songs = append(result.Songs, removed.Songs...)
	}
	return result, nil
}

// DeleteAlbum removes a single album and its songs. A missing album aborts;
// a failed song removal is logged and the album is still reported removed.
func (c *Cascade) DeleteAlbum(ctx context.Context, albumID string) (*AlbumResult, error) {
	album, err := c.albums.Delete(ctx, albumID)
	if err != nil {
		return nil, fmt.Errorf("removing album %s: %w", albumID, err)
	}

	songs, err := c.songs.DeleteByAlbum(ctx, album.ID)
	if err != nil {
		if c.strict {
			return nil, fmt.Errorf("removing songs of album %s: %w", album.ID, err)
		}
		c.logger.Warn("songs left behind after album removal", "album_id", album.ID, "err", err)
		songs = nil
	}
	if songs == nil {
		songs = []models.Song{}
	}
	return &AlbumResult{Album: album, Songs: songs}, nil
}

func (s *Store) cascade() *Cascade {
	return NewCascade(s.Artists(), s.Albums(), s.Songs(), s.logger)
}

// DeleteArtistCascade removes an artist and everything under it. With atomic
// set the removal runs in one transaction and any failure rolls it all back;
// otherwise it is best-effort.
func (s *Store) DeleteArtistCascade(ctx context.Context, artistID string, atomic bool) (*CascadeResult, error) {
	if !atomic {
		return s.cascade().DeleteArtist(ctx, artistID)
	}

	var result *CascadeResult
	err := s.Transaction(ctx, func(tx *Store) error {
		var err error
		result, err = tx.cascade().Strict().DeleteArtist(ctx, artistID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteAlbumCascade removes an album and its songs, transactionally when
// atomic is set.
func (s *Store) DeleteAlbumCascade(ctx context.Context, albumID string, atomic bool) (*AlbumResult, error) {
	if !atomic {
		return s.cascade().DeleteAlbum(ctx, albumID)
	}

	var result *AlbumResult
	err := s.Transaction(ctx, func(tx *Store) error {
		var err error
		result, err = tx.cascade().Strict().DeleteAlbum(ctx, albumID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
