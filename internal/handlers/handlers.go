// Package handlers implements the JSON HTTP API over the catalog store.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/petermazzocco/go-music-api/internal/auth"
	"github.com/petermazzocco/go-music-api/internal/config"
	"github.com/petermazzocco/go-music-api/internal/filestore"
	"github.com/petermazzocco/go-music-api/internal/store"
)

type Handler struct {
	store  *store.Store
	files  filestore.Store
	issuer *auth.Issuer
	cfg    *config.Config
	logger *log.Logger
}

func New(s *store.Store, files filestore.Store, issuer *auth.Issuer, cfg *config.Config, logger *log.Logger) *Handler {
	return &Handler{store: s, files: files, issuer: issuer, cfg: cfg, logger: logger}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// writeMessage answers with a message key. Internal errors never reach the client.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeJSON(r *http.Request, dest any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dest)
}

// storeError maps a storage failure to 404 for a missing record and 500 for
// anything else, malformed identifiers included.
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error, notFound, fault string) {
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, notFound)
		return
	}
	h.logger.Error("storage error", "path", r.URL.Path, "err", err)
	writeMessage(w, http.StatusInternalServerError, fault)
}

// pageParam reads the optional 1-based {page} segment. Anything unusable means page 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(chi.URLParam(r, "page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func present(values ...*string) bool {
	for _, v := range values {
		if v == nil || *v == "" {
			return false
		}
	}
	return true
}

// notFoundOr is used by lookups that treat an empty result as missing.
func notFoundOr[T any](items []T, err error) ([]T, error) {
	if err == nil && len(items) == 0 {
		return nil, store.ErrNotFound
	}
	return items, err
}
