package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/petermazzocco/go-music-api/models"
)

func TestDeleteArtistCascade(t *testing.T) {
	ctx := context.Background()

	for _, atomic := range []bool{false, true} {
		name := "best effort"
		if atomic {
			name = "atomic"
		}
		t.Run(name, func(t *testing.T) {
			s := setupTestStore(t)
			artist := mustCreateArtist(t, s, "Queen")
			other := mustCreateArtist(t, s, "Abba")
			otherAlbum := mustCreateAlbum(t, s, other.ID, "Arrival", 1976)
			otherSong := mustCreateSong(t, s, otherAlbum.ID, 1)

			// 3 albums, 2+0+4 songs
			var albumIDs, songIDs []string
			for i, count := range []int{2, 0, 4} {
				album := mustCreateAlbum(t, s, artist.ID, "album", 1970+i)
				albumIDs = append(albumIDs, album.ID)
				for n := 1; n <= count; n++ {
					songIDs = append(songIDs, mustCreateSong(t, s, album.ID, n).ID)
				}
			}

			result, err := s.DeleteArtistCascade(ctx, artist.ID, atomic)
			if err != nil {
				t.Fatalf("DeleteArtistCascade() error = %v", err)
			}
			if result.Artist.ID != artist.ID {
				t.Errorf("Artist = %s, want %s", result.Artist.ID, artist.ID)
			}
			if len(result.Albums) != 3 {
				t.Errorf("len(Albums) = %d, want 3", len(result.Albums))
			}
			if len(result.Songs) != 6 {
				t.Errorf("len(Songs) = %d, want 6", len(result.Songs))
			}

			if _, err := s.Artists().Get(ctx, artist.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("artist still present: %v", err)
			}
			for _, id := range albumIDs {
				if _, err := s.Albums().Get(ctx, id); !errors.Is(err, ErrNotFound) {
					t.Errorf("album %s still present: %v", id, err)
				}
			}
			for _, id := range songIDs {
				if _, err := s.Songs().Get(ctx, id); !errors.Is(err, ErrNotFound) {
					t.Errorf("song %s still present: %v", id, err)
				}
			}

			if _, err := s.Albums().Get(ctx, otherAlbum.ID); err != nil {
				t.Errorf("unrelated album removed: %v", err)
			}
			if _, err := s.Songs().Get(ctx, otherSong.ID); err != nil {
				t.Errorf("unrelated song removed: %v", err)
			}
		})
	}
}

func TestDeleteArtistCascade_Errors(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	if _, err := s.DeleteArtistCascade(ctx, uuid.NewString(), false); !errors.Is(err, ErrNotFound) {
		t.Errorf("absent artist error = %v, want ErrNotFound", err)
	}
	if _, err := s.DeleteArtistCascade(ctx, "not-an-id", false); !errors.Is(err, ErrInvalidID) {
		t.Errorf("malformed id error = %v, want ErrInvalidID", err)
	}
	if _, err := s.DeleteArtistCascade(ctx, uuid.NewString(), true); !errors.Is(err, ErrNotFound) {
		t.Errorf("atomic absent artist error = %v, want ErrNotFound", err)
	}
}

// failSongDeletes makes every delete against the songs table fail.
func failSongDeletes(t *testing.T, s *Store) {
	t.Helper()
	err := s.db.Callback().Delete().Before("gorm:delete").Register("test:fail_song_deletes", func(tx *gorm.DB) {
		if tx.Statement.Table == "songs" {
			tx.AddError(errors.New("disk full"))
		}
	})
	if err != nil {
		t.Fatalf("registering callback: %v", err)
	}
}

func TestDeleteArtistCascade_SongFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("best effort keeps removals", func(t *testing.T) {
		s := setupTestStore(t)
		artist := mustCreateArtist(t, s, "Queen")
		album := mustCreateAlbum(t, s, artist.ID, "Jazz", 1978)
		song := mustCreateSong(t, s, album.ID, 1)
		failSongDeletes(t, s)

		result, err := s.DeleteArtistCascade(ctx, artist.ID, false)
		if err != nil {
			t.Fatalf("DeleteArtistCascade() error = %v", err)
		}
		if len(result.Songs) != 0 {
			t.Errorf("len(Songs) = %d, want 0", len(result.Songs))
		}
		if _, err := s.Albums().Get(ctx, album.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("album still present: %v", err)
		}
		// The song is orphaned; best effort does not roll back.
		if _, err := s.Songs().Get(ctx, song.ID); err != nil {
			t.Errorf("orphaned song lookup error = %v", err)
		}
	})

	t.Run("atomic rolls back", func(t *testing.T) {
		s := setupTestStore(t)
		artist := mustCreateArtist(t, s, "Queen")
		album := mustCreateAlbum(t, s, artist.ID, "Jazz", 1978)
		song := mustCreateSong(t, s, album.ID, 1)
		failSongDeletes(t, s)

		if _, err := s.DeleteArtistCascade(ctx, artist.ID, true); err == nil {
			t.Fatal("DeleteArtistCascade() error = nil, want failure")
		}
		if _, err := s.Artists().Get(ctx, artist.ID); err != nil {
			t.Errorf("artist not restored: %v", err)
		}
		if _, err := s.Albums().Get(ctx, album.ID); err != nil {
			t.Errorf("album not restored: %v", err)
		}
		if _, err := s.Songs().Get(ctx, song.ID); err != nil {
			t.Errorf("song not restored: %v", err)
		}
	})
}

func TestDeleteAlbumCascade(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)
	artist := mustCreateArtist(t, s, "Queen")
	album := mustCreateAlbum(t, s, artist.ID, "Jazz", 1978)
	keep := mustCreateAlbum(t, s, artist.ID, "Innuendo", 1991)
	mustCreateSong(t, s, album.ID, 1)
	mustCreateSong(t, s, album.ID, 2)
	kept := mustCreateSong(t, s, keep.ID, 1)

	result, err := s.DeleteAlbumCascade(ctx, album.ID, false)
	if err != nil {
		t.Fatalf("DeleteAlbumCascade() error = %v", err)
	}
	if result.Album.ID != album.ID || len(result.Songs) != 2 {
		t.Errorf("result = %+v", result)
	}
	if _, err := s.Songs().Get(ctx, kept.ID); err != nil {
		t.Errorf("song of another album removed: %v", err)
	}
	if _, err := s.DeleteAlbumCascade(ctx, album.ID, true); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

type fakeArtists struct {
	artist *models.Artist
	err    error
}

func (f *fakeArtists) Delete(ctx context.Context, id string) (*models.Artist, error) {
	return f.artist, f.err
}

type fakeAlbums struct {
	albums    []models.Album
	lookupErr error
	failing   map[string]error
	deleted   []string
}

func (f *fakeAlbums) ListByArtist(ctx context.Context, artistID string) ([]models.Album, error) {
	return f.albums, f.lookupErr
}

func (f *fakeAlbums) Delete(ctx context.Context, id string) (*models.Album, error) {
	if err := f.failing[id]; err != nil {
		return nil, err
	}
	f.deleted = append(f.deleted, id)
	return &models.Album{ID: id}, nil
}

type fakeSongs struct {
	byAlbum map[string][]models.Song
	failing map[string]error
}

func (f *fakeSongs) DeleteByAlbum(ctx context.Context, albumID string) ([]models.Song, error) {
	if err := f.failing[albumID]; err != nil {
		return nil, err
	}
	return f.byAlbum[albumID], nil
}

func TestCascade_DeleteArtist(t *testing.T) {
	ctx := context.Background()
	artist := &models.Artist{ID: "artist"}
	albums := []models.Album{{ID: "a1"}, {ID: "a2"}, {ID: "a3"}}
	songs := map[string][]models.Song{
		"a1": {{ID: "s1"}, {ID: "s2"}},
		"a2": {{ID: "s3"}},
		"a3": {{ID: "s4"}, {ID: "s5"}, {ID: "s6"}},
	}

	t.Run("artist not found is fatal", func(t *testing.T) {
		albumRepo := &fakeAlbums{albums: albums}
		c := NewCascade(&fakeArtists{err: ErrNotFound}, albumRepo, &fakeSongs{}, log.New(io.Discard))
		if _, err := c.DeleteArtist(ctx, "artist"); !errors.Is(err, ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
		if len(albumRepo.deleted) != 0 {
			t.Errorf("albums removed after a failed artist removal: %v", albumRepo.deleted)
		}
	})

	t.Run("album lookup failure is fatal", func(t *testing.T) {
		c := NewCascade(
			&fakeArtists{artist: artist},
			&fakeAlbums{lookupErr: errors.New("connection reset")},
			&fakeSongs{},
			log.New(io.Discard),
		)
		if _, err := c.DeleteArtist(ctx, "artist"); !errors.Is(err, ErrAlbumLookup) {
			t.Errorf("error = %v, want ErrAlbumLookup", err)
		}
	})

	t.Run("failed album is skipped", func(t *testing.T) {
		var logs bytes.Buffer
		albumRepo := &fakeAlbums{albums: albums, failing: map[string]error{"a2": ErrNotFound}}
		c := NewCascade(&fakeArtists{artist: artist}, albumRepo, &fakeSongs{byAlbum: songs}, log.New(&logs))

		result, err := c.DeleteArtist(ctx, "artist")
		if err != nil {
			t.Fatalf("DeleteArtist() error = %v", err)
		}
		if len(result.Albums) != 3 {
			t.Errorf("len(Albums) = %d, want 3 attempted", len(result.Albums))
		}
		if len(result.Songs) != 5 {
			t.Errorf("len(Songs) = %d, want 5", len(result.Songs))
		}
		if len(albumRepo.deleted) != 2 {
			t.Errorf("deleted = %v, want a1 and a3", albumRepo.deleted)
		}
		if len(result.Removed) != 2 || result.Removed[0].ID != "a1" || result.Removed[1].ID != "a3" {
			t.Errorf("Removed = %+v, want a1 and a3", result.Removed)
		}
		if !strings.Contains(logs.String(), "a2") {
			t.Errorf("skipped album not logged: %q", logs.String())
		}
	})

	t.Run("failed songs are skipped", func(t *testing.T) {
		albumRepo := &fakeAlbums{albums: albums}
		songRepo := &fakeSongs{byAlbum: songs, failing: map[string]error{"a3": errors.New("timeout")}}
		c := NewCascade(&fakeArtists{artist: artist}, albumRepo, songRepo, log.New(io.Discard))

		result, err := c.DeleteArtist(ctx, "artist")
		if err != nil {
			t.Fatalf("DeleteArtist() error = %v", err)
		}
		if len(result.Songs) != 3 {
			t.Errorf("len(Songs) = %d, want 3", len(result.Songs))
		}
		if len(albumRepo.deleted) != 3 {
			t.Errorf("deleted = %v, want all three", albumRepo.deleted)
		}
	})

	t.Run("strict stops at first failure", func(t *testing.T) {
		failure := errors.New("timeout")
		albumRepo := &fakeAlbums{albums: albums, failing: map[string]error{"a2": failure}}
		c := NewCascade(&fakeArtists{artist: artist}, albumRepo, &fakeSongs{byAlbum: songs}, log.New(io.Discard)).Strict()

		if _, err := c.DeleteArtist(ctx, "artist"); !errors.Is(err, failure) {
			t.Errorf("error = %v, want %v", err, failure)
		}
		if len(albumRepo.deleted) != 1 {
			t.Errorf("deleted = %v, want only a1", albumRepo.deleted)
		}
	})

	t.Run("no albums", func(t *testing.T) {
		c := NewCascade(&fakeArtists{artist: artist}, &fakeAlbums{}, &fakeSongs{}, log.New(io.Discard))
		result, err := c.DeleteArtist(ctx, "artist")
		if err != nil {
			t.Fatalf("DeleteArtist() error = %v", err)
		}
		if result.Albums == nil || result.Songs == nil || result.Removed == nil || len(result.Albums)+len(result.Songs)+len(result.Removed) != 0 {
			t.Errorf("result = %+v, want empty non-nil lists", result)
		}
	})
}
