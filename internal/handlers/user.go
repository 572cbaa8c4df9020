package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/petermazzocco/go-music-api/internal/auth"
	"github.com/petermazzocco/go-music-api/internal/filestore"
	"github.com/petermazzocco/go-music-api/internal/store"
	"github.com/petermazzocco/go-music-api/models"
)

type registerRequest struct {
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type loginRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	GetHash  hashFlag `json:"gethash"`
}

// hashFlag accepts both true and "true".
type hashFlag bool

func (f *hashFlag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = hashFlag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = hashFlag(s == "true")
	return nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil || !present(req.Name, req.Surname, req.Email, req.Password) {
		writeMessage(w, http.StatusPartialContent, "user_incomplete")
		return
	}

	hashed, err := auth.HashPassword(*req.Password)
	if err != nil {
		h.logger.Error("hashing password", "err", err)
		writeMessage(w, http.StatusInternalServerError, "user_no_registered")
		return
	}

	user := models.User{
		Name:     *req.Name,
		Surname:  *req.Surname,
		Email:    strings.ToLower(strings.TrimSpace(*req.Email)),
		Password: hashed,
		Role:     models.RoleAdmin,
	}
	if err := h.store.Users().Create(r.Context(), &user); err != nil {
		if !errors.Is(err, store.ErrDuplicate) {
			h.logger.Error("creating user", "err", err)
		}
		writeMessage(w, http.StatusInternalServerError, "user_no_registered")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Login answers with the user record, or with a signed token when gethash is set.
// Every failure looks the same to the client.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusNotFound, "user_password_incorrect")
		return
	}

	user, err := h.store.Users().FindByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("looking up user", "err", err)
		}
		writeMessage(w, http.StatusNotFound, "user_password_incorrect")
		return
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		writeMessage(w, http.StatusNotFound, "user_password_incorrect")
		return
	}

	if !req.GetHash {
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
		return
	}

	token, err := h.issuer.Issue(*user)
	if err != nil {
		h.logger.Error("issuing token", "err", err)
		writeMessage(w, http.StatusInternalServerError, "user_password_incorrect")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// UpdateUser changes name and surname only; email, role and image are not
// reachable from the payload.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var update models.UserUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeMessage(w, http.StatusPartialContent, "user_incomplete")
		return
	}

	user, err := h.store.Users().Update(r.Context(), chi.URLParam(r, "id"), update)
	if err != nil {
		h.storeError(w, r, err, "user_not_updated", "error_update_user")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *Handler) UploadUserImage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.receiveUpload(w, r, upload{
		field:    "image",
		kind:     filestore.UserImages,
		allowed:  h.cfg.Uploads.ImageExtensions,
		entity:   "user",
		missing:  "user_upload_image_incomplete",
		badExt:   "user_image_error_ext",
		notFound: "user_image_not_exist",
		failed:   "user_image_error",
	},
		func(ctx context.Context) (string, error) {
			user, err := h.store.Users().Get(ctx, id)
			if err != nil {
				return "", err
			}
			return user.Image, nil
		},
		func(ctx context.Context, name string) (any, error) {
			return h.store.Users().SetImage(ctx, id, name)
		},
	)
}

// GetUserImage reports a missing image as a soft failure.
func (h *Handler) GetUserImage(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, filestore.UserImages, chi.URLParam(r, "image"), http.StatusOK, "user_get_image_not_exist")
}
