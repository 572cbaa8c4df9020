package handlers

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/petermazzocco/go-music-api/internal/filestore"
)

// upload describes one upload endpoint: the form field to read, where the file
// goes, which extensions are accepted, and the message keys to answer with.
type upload struct {
	field    string
	kind     filestore.Kind
	allowed  []string
	entity   string
	missing  string
	badExt   string
	notFound string
	failed   string
}

// receiveUpload stores the file from the request and attaches it to an entity.
// current returns the entity's present file name and fails if the entity does
// not exist; attach records the new name and returns the updated entity.
func (h *Handler) receiveUpload(
	w http.ResponseWriter,
	r *http.Request,
	u upload,
	current func(ctx context.Context) (string, error),
	attach func(ctx context.Context, name string) (any, error),
) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Uploads.MaxUploadBytes())

	// Parse multipart form
	file, header, err := r.FormFile(u.field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, u.failed)
			return
		}
		writeMessage(w, http.StatusPartialContent, u.missing)
		return
	}
	defer file.Close()

	// Unsupported extensions are a soft failure and nothing is written
	ext, ok := filestore.AllowedExtension(header.Filename, u.allowed)
	if !ok {
		writeMessage(w, http.StatusOK, u.badExt)
		return
	}

	// The entity must exist before anything is stored
	previous, err := current(ctx)
	if err != nil {
		h.storeError(w, r, err, u.notFound, u.failed)
		return
	}

	name := filestore.NewName(ext)
	if err := h.files.Save(ctx, u.kind, name, file, header.Header.Get("Content-Type")); err != nil {
		h.logger.Error("saving upload", "kind", u.kind, "err", err)
		writeMessage(w, http.StatusInternalServerError, u.failed)
		return
	}

	entity, err := attach(ctx, name)
	if err != nil {
		h.removeFiles(ctx, u.kind, name)
		h.storeError(w, r, err, u.notFound, u.failed)
		return
	}

	// Replaced files are no longer referenced
	if previous != "" && previous != name {
		h.removeFiles(ctx, u.kind, previous)
	}
	h.logger.Info("file uploaded", "kind", u.kind, "name", name)

	writeJSON(w, http.StatusOK, map[string]any{u.entity: entity})
}

// serveFile streams a stored file. A missing file is answered with
// missingStatus and missingMessage.
func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, kind filestore.Kind, name string, missingStatus int, missingMessage string) {
	rc, err := h.files.Open(r.Context(), kind, name)
	if err != nil {
		if errors.Is(err, filestore.ErrNotExist) || errors.Is(err, filestore.ErrInvalidName) {
			writeMessage(w, missingStatus, missingMessage)
			return
		}
		h.logger.Error("opening stored file", "kind", kind, "name", name, "err", err)
		writeMessage(w, http.StatusInternalServerError, missingMessage)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("streaming stored file", "kind", kind, "name", name, "err", err)
	}
}

// removeFiles deletes stored files, logging failures.
func (h *Handler) removeFiles(ctx context.Context, kind filestore.Kind, names ...string) {
	for _, name := range names {
		if name == "" {
			continue
		}
		if err := h.files.Delete(ctx, kind, name); err != nil {
			h.logger.Warn("removing stored file", "kind", kind, "name", name, "err", err)
		}
	}
}
