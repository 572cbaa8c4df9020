package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/petermazzocco/go-music-api/models"
)

type AlbumRepository struct {
	db *gorm.DB
}

// Create inserts an album. The caller is expected to have checked that the
// referenced artist exists.
func (r *AlbumRepository) Create(ctx context.Context, album *models.Album) error {
	if err := checkID(album.ArtistID); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(album).Error, "creating album")
}

// Get returns the album with its artist populated.
func (r *AlbumRepository) Get(ctx context.Context, id string) (*models.Album, error) {
	return first[models.Album](ctx, r.db, id, "Artist")
}

// ListByArtist returns the artist's albums ordered by year. An artist without
// albums yields an empty slice, not ErrNotFound.
func (r *AlbumRepository) ListByArtist(ctx context.Context, artistID string) ([]models.Album, error) {
	if err := checkID(artistID); err != nil {
		return nil, err
	}
	var albums []models.Album
	err := r.db.WithContext(ctx).
		Preload("Artist").
		Where("artist_id = ?", artistID).
		Order("year").
		Find(&albums).Error
	if err != nil {
		return nil, translate(err, "listing albums by artist")
	}
	return albums, nil
}

// List returns one page of albums ordered by year, artists populated.
func (r *AlbumRepository) List(ctx context.Context, page, limit int) ([]models.Album, Page, error) {
	albums, p, err := paginate[models.Album](ctx, r.db.Model(&models.Album{}), page, limit,
		orderBy("year", "id"), preload("Artist"))
	if err != nil {
		return nil, Page{}, translate(err, "listing albums")
	}
	return albums, p, nil
}

func (r *AlbumRepository) Update(ctx context.Context, id string, update models.AlbumUpdate) (*models.Album, error) {
	return updateColumns[models.Album](ctx, r.db, id, update.Columns(), "Artist")
}

func (r *AlbumRepository) SetImage(ctx context.Context, id, image string) (*models.Album, error) {
	return updateColumns[models.Album](ctx, r.db, id, map[string]any{"image": image}, "Artist")
}

// Delete removes only the album row; its songs are left in place.
func (r *AlbumRepository) Delete(ctx context.Context, id string) (*models.Album, error) {
	return remove[models.Album](ctx, r.db, id)
}
