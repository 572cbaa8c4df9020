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

type albumRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Year        *int    `json:"year"`
	Artist      *string `json:"artist"`
}

func (h *Handler) GetAlbum(w http.ResponseWriter, r *http.Request) {
	album, err := h.store.Albums().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, r, err, "album_does_not_exist", "album_get_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"album": album})
}

func (h *Handler) ListAlbumsByArtist(w http.ResponseWriter, r *http.Request) {
	albums, err := notFoundOr(h.store.Albums().ListByArtist(r.Context(), chi.URLParam(r, "id")))
	if err != nil {
		h.storeError(w, r, err, "albums_does_not_exists", "album_get_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"albums": albums})
}

// ListAlbums answers 404 when the catalog holds no albums at all.
func (h *Handler) ListAlbums(w http.ResponseWriter, r *http.Request) {
	albums, page, err := h.store.Albums().List(r.Context(), pageParam(r), h.cfg.Pagination.AlbumsPerPage)
	if err != nil {
		h.storeError(w, r, err, "albums_does_not_exists", "album_get_error")
		return
	}
	if page.Total == 0 {
		writeMessage(w, http.StatusNotFound, "albums_does_not_exists")
		return
	}
	writeJSON(w, http.StatusOK, paginated(page, "albums", albums))
}

func (h *Handler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req albumRequest
	if err := decodeJSON(r, &req); err != nil || !present(req.Title, req.Artist) || req.Year == nil {
		writeMessage(w, http.StatusPartialContent, "album_incomplete")
		return
	}

	// The referenced artist must exist
	if _, err := h.store.Artists().Get(ctx, *req.Artist); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeMessage(w, http.StatusPartialContent, "album_invalid_artist")
			return
		}
		h.storeError(w, r, err, "album_invalid_artist", "album_error_save")
		return
	}

	album := models.Album{
		Title:    *req.Title,
		Year:     *req.Year,
		ArtistID: *req.Artist,
	}
	if req.Description != nil {
		album.Description = *req.Description
	}
	if err := h.store.Albums().Create(ctx, &album); err != nil {
		h.logger.Error("creating album", "err", err)
		writeMessage(w, http.StatusInternalServerError, "album_error_save")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"album": album})
}

// UpdateAlbum never touches the image or the artist reference.
func (h *Handler) UpdateAlbum(w http.ResponseWriter, r *http.Request) {
	var update models.AlbumUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeMessage(w, http.StatusPartialContent, "album_incomplete")
		return
	}

	album, err := h.store.Albums().Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		h.storeError(w, r, err, "album_edit_not_found", "album_edit_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"album": album})
}

// DeleteAlbum removes the album and its songs.
func (h *Handler) DeleteAlbum(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.store.DeleteAlbumCascade(ctx, chi.URLParam(r, "id"), h.cfg.Catalog.AtomicCascade)
	if err != nil {
		h.storeError(w, r, err, "album_delete_not_found", "album_delete_error")
		return
	}

	h.removeFiles(ctx, filestore.AlbumImages, result.Album.Image)
	for _, song := range result.Songs {
		h.removeFiles(ctx, filestore.SongFiles, song.File)
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) UploadAlbumImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.receiveUpload(w, r, upload{
		field:    "image",
		kind:     filestore.AlbumImages,
		allowed:  h.cfg.Uploads.ImageExtensions,
		entity:   "album",
		missing:  "album_upload_image_incomplete",
		badExt:   "album_image_error_ext",
		notFound: "album_image_not_exist",
		failed:   "album_image_error",
	},
		func(ctx context.Context) (string, error) {
			album, err := h.store.Albums().Get(ctx, id)
			if err != nil {
				return "", err
			}
			return album.Image, nil
		},
		func(ctx context.Context, name string) (any, error) {
			return h.store.Albums().SetImage(ctx, id, name)
		},
	)
}

func (h *Handler) GetAlbumImage(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, filestore.AlbumImages, chi.URLParam(r, "image"), http.StatusNotFound, "album_get_image_not_exist")
}
