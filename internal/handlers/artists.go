package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/petermazzocco/go-music-api/internal/filestore"
	"github.com/petermazzocco/go-music-api/internal/store"
	"github.com/petermazzocco/go-music-api/models"
)

type artistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) GetArtist(w http.ResponseWriter, r *http.Request) {
	artist, err := h.store.Artists().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, r, err, "artist_does_not_exist", "error_get_artist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artist": artist})
}

func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	artists, page, err := h.store.Artists().List(r.Context(), pageParam(r), h.cfg.Pagination.ArtistsPerPage)
	if err != nil {
		h.storeError(w, r, err, "there_is_not_artists", "error_get_artists")
		return
	}
	writeJSON(w, http.StatusOK, paginated(page, "artists", artists))
}

func (h *Handler) CreateArtist(w http.ResponseWriter, r *http.Request) {
	var req artistRequest
	if err := decodeJSON(r, &req); err != nil || !present(req.Name) || req.Description == nil {
		writeMessage(w, http.StatusPartialContent, "artist_incomplete")
		return
	}

	artist := models.Artist{Name: *req.Name, Description: *req.Description}
	if err := h.store.Artists().Create(r.Context(), &artist); err != nil {
		if !errors.Is(err, store.ErrDuplicate) {
			h.logger.Error("creating artist", "err", err)
		}
		writeMessage(w, http.StatusInternalServerError, "error_new_artist")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artist": artist})
}

func (h *Handler) UpdateArtist(w http.ResponseWriter, r *http.Request) {
	var update models.ArtistUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeMessage(w, http.StatusPartialContent, "artist_incomplete")
		return
	}

	artist, err := h.store.Artists().Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		h.storeError(w, r, err, "artist_update_not_found", "artist_update_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artist": artist})
}

// DeleteArtist removes the artist with all of its albums and their songs,
// then the files they referenced.
func (h *Handler) DeleteArtist(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.store.DeleteArtistCascade(ctx, chi.URLParam(r, "id"), h.cfg.Catalog.AtomicCascade)
	if err != nil {
		h.storeError(w, r, err, "artist_delete_not_found", "artist_delete_error")
		return
	}

	h.removeFiles(ctx, filestore.ArtistImages, result.Artist.Image)
	// Albums that survived a best-effort cascade keep their covers
	for _, album := range result.Removed {
		h.removeFiles(ctx, filestore.AlbumImages, album.Image)
	}
	for _, song := range result.Songs {
		h.removeFiles(ctx, filestore.SongFiles, song.File)
	}
	h.logger.Info("artist removed", "artist_id", result.Artist.ID, "albums", len(result.Removed), "songs", len(result.Songs))

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) UploadArtistImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.receiveUpload(w, r, upload{
		field:    "image",
		kind:     filestore.ArtistImages,
		allowed:  h.cfg.Uploads.ImageExtensions,
		entity:   "artist",
		missing:  "artist_upload_image_incomplete",
		badExt:   "artist_image_error_ext",
		notFound: "artist_image_not_exist",
		failed:   "artist_image_error",
	},
		func(ctx context.Context) (string, error) {
			artist, err := h.store.Artists().Get(ctx, id)
			if err != nil {
				return "", err
			}
			return artist.Image, nil
		},
		func(ctx context.Context, name string) (any, error) {
			return h.store.Artists().SetImage(ctx, id, name)
		},
	)
}

func (h *Handler) GetArtistImage(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, filestore.ArtistImages, chi.URLParam(r, "image"), http.StatusNotFound, "artist_get_image_not_exist")
}

// paginated builds the listing body: page metadata plus the items under key.
func paginated(page store.Page, key string, items any) map[string]any {
	return map[string]any{
		"total": page.Total,
		"limit": page.Limit,
		"page":  page.Page,
		"pages": page.Pages,
		key:     items,
	}
}
