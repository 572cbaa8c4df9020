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

type songRequest struct {
	Number   *int    `json:"number"`
	Name     *string `json:"name"`
	Duration *string `json:"duration"`
	Album    *string `json:"album"`
}

func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.store.Songs().Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, r, err, "song_get_not_exist", "song_get_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"song": song})
}

func (h *Handler) ListSongsByAlbum(w http.ResponseWriter, r *http.Request) {
	songs, err := notFoundOr(h.store.Songs().ListByAlbum(r.Context(), chi.URLParam(r, "id")))
	if err != nil {
		h.storeError(w, r, err, "songsbyalbum_album_not_exist", "songsbyalbum_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"songs": songs})
}

func (h *Handler) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, page, err := h.store.Songs().List(r.Context(), pageParam(r), h.cfg.Pagination.SongsPerPage)
	if err != nil {
		h.storeError(w, r, err, "songs_get_not_found", "songs_get_error")
		return
	}
	writeJSON(w, http.StatusOK, paginated(page, "songs", songs))
}

func (h *Handler) CreateSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req songRequest
	if err := decodeJSON(r, &req); err != nil || !present(req.Name, req.Duration, req.Album) || req.Number == nil {
		writeMessage(w, http.StatusPartialContent, "song_save_incomplete")
		return
	}

	// The referenced album must exist
	if _, err := h.store.Albums().Get(ctx, *req.Album); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("looking up album for song", "err", err)
			writeMessage(w, http.StatusInternalServerError, "song_save_error")
			return
		}
		writeMessage(w, http.StatusNotFound, "song_album_not_exist")
		return
	}

	song := models.Song{
		Number:   *req.Number,
		Name:     *req.Name,
		Duration: *req.Duration,
		AlbumID:  *req.Album,
	}
	if err := h.store.Songs().Create(ctx, &song); err != nil {
		h.logger.Error("creating song", "err", err)
		writeMessage(w, http.StatusInternalServerError, "song_save_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"song": song})
}

// UpdateSong never touches the file or the album reference.
func (h *Handler) UpdateSong(w http.ResponseWriter, r *http.Request) {
	var update models.SongUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeMessage(w, http.StatusPartialContent, "song_save_incomplete")
		return
	}

	song, err := h.store.Songs().Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		h.storeError(w, r, err, "song_update_not_exist", "song_update_error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"song": song})
}

func (h *Handler) DeleteSong(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	song, err := h.store.Songs().Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.storeError(w, r, err, "song_delete_not_exist", "song_delete_error")
		return
	}
	h.removeFiles(ctx, filestore.SongFiles, song.File)
	writeJSON(w, http.StatusOK, map[string]any{"song": song})
}

func (h *Handler) UploadSongFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.receiveUpload(w, r, upload{
		field:    "song",
		kind:     filestore.SongFiles,
		allowed:  h.cfg.Uploads.SongExtensions,
		entity:   "song",
		missing:  "song_upload_file_missing",
		badExt:   "song_upload_file_ext_err",
		notFound: "song_upload_file_not_exist",
		failed:   "song_upload_file_err",
	},
		func(ctx context.Context) (string, error) {
			song, err := h.store.Songs().Get(ctx, id)
			if err != nil {
				return "", err
			}
			return song.File, nil
		},
		func(ctx context.Context, name string) (any, error) {
			return h.store.Songs().SetFile(ctx, id, name)
		},
	)
}

func (h *Handler) GetSongFile(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, filestore.SongFiles, chi.URLParam(r, "file"), http.StatusNotFound, "song_get_file_not_exist")
}
