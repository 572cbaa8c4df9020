package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/petermazzocco/go-music-api/models"
)

type ArtistRepository struct {
	db *gorm.DB
}

// Create inserts an artist. A taken name yields ErrDuplicate.
func (r *ArtistRepository) Create(ctx context.Context, artist *models.Artist) error {
	return translate(r.db.WithContext(ctx).Create(artist).Error, "creating artist")
}

func (r *ArtistRepository) Get(ctx context.Context, id string) (*models.Artist, error) {
	return first[models.Artist](ctx, r.db, id)
}

// List returns one page of artists ordered by name.
func (r *ArtistRepository) List(ctx context.Context, page, limit int) ([]models.Artist, Page, error) {
	artists, p, err := paginate[models.Artist](ctx, r.db.Model(&models.Artist{}), page, limit, orderBy("name"))
	if err != nil {
		return nil, Page{}, translate(err, "listing artists")
	}
	return artists, p, nil
}

func (r *ArtistRepository) Update(ctx context.Context, id string, update models.ArtistUpdate) (*models.Artist, error) {
	return updateColumns[models.Artist](ctx, r.db, id, update.Columns())
}

func (r *ArtistRepository) SetImage(ctx context.Context, id, image string) (*models.Artist, error) {
	return updateColumns[models.Artist](ctx, r.db, id, map[string]any{"image": image})
}

// Delete removes only the artist row. Albums referencing it are left in
// place; use Store.DeleteArtistCascade to remove the whole subtree.
func (r *ArtistRepository) Delete(ctx context.Context, id string) (*models.Artist, error) {
	return remove[models.Artist](ctx, r.db, id)
}
