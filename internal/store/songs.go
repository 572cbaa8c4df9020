package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/petermazzocco/go-music-api/models"
)

type SongRepository struct {
	db *gorm.DB
}

func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	if err := checkID(song.AlbumID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(song).Error, "creating song")
}

// Get returns the song with its album and the album's artist populated.
func (r *SongRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	return first[models.Song](ctx, r.db, id, "Album.Artist")
}

// ListByAlbum returns the album's songs ordered by track number.
func (r *SongRepository) ListByAlbum(ctx context.Context, albumID string) ([]models.Song, error) {
	if err := checkID(albumID); err != nil {
		return nil, err
	}
	var songs []models.Song
	err := r.db.WithContext(ctx).
		Preload("Album.Artist").
		Where("album_id = ?", albumID).
		Order("number").
		Find(&songs).Error
	if err != nil {
		return nil, translate(err, "listing songs by album")
	}
	return songs, nil
}

// List returns one page of songs grouped by album and ordered by number.
func (r *SongRepository) List(ctx context.Context, page, limit int) ([]models.Song, Page, error) {
	songs, p, err := paginate[models.Song](ctx, r.db.Model(&models.Song{}), page, limit,
		orderBy("album_id", "number"), preload("Album.Artist"))
	if err != nil {
		return nil, Page{}, translate(err, "listing songs")
	}
	return songs, p, nil
}

func (r *SongRepository) Update(ctx context.Context, id string, update models.SongUpdate) (*models.Song, error) {
	return updateColumns[models.Song](ctx, r.db, id, update.Columns(), "Album.Artist")
}

func (r *SongRepository) SetFile(ctx context.Context, id, file string) (*models.Song, error) {
	return updateColumns[models.Song](ctx, r.db, id, map[string]any{"file": file}, "Album.Artist")
}

func (r *SongRepository) Delete(ctx context.Context, id string) (*models.Song, error) {
	return remove[models.Song](ctx, r.db, id)
}

// DeleteByAlbum removes every song of the album and returns the removed rows.
func (r *SongRepository) DeleteByAlbum(ctx context.Context, albumID string) ([]models.Song, error) {
	if err := checkID(albumID); err != nil {
		return nil, err
	}
	var songs []models.Song
	db := r.db.WithContext(ctx)
	if err := db.Where("album_id = ?", albumID).Find(&songs).Error; err != nil {
		return nil, translate(err, "finding songs to delete")
	}
	if len(songs) == 0 {
		return songs, nil
	}
	if err := db.Where("album_id = ?", albumID).Delete(&models.Song{}).Error; err != nil {
		return nil, translate(err, "deleting songs")
	}
	return songs, nil
}
