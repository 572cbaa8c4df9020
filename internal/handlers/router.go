package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/petermazzocco/go-music-api/internal/auth"
	"github.com/petermazzocco/go-music-api/internal/logging"
)

// NewRouter mounts the API under /api. Registration, login and file downloads
// are public; everything else goes through the gate.
func NewRouter(h *Handler, gate *auth.Gate) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		if limit := h.cfg.Server.RateLimit; limit > 0 {
			r.Use(httprate.Limit(
				limit,
				1*time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
			))
		}

		// Public routes
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Get("/get-image-user/{image}", h.GetUserImage)
		r.Get("/get-image-artist/{image}", h.GetArtistImage)
		r.Get("/get-image-album/{image}", h.GetAlbumImage)
		r.Get("/get-file-song/{file}", h.GetSongFile)

		// Routes for authenticated users
		r.Group(func(r chi.Router) {
			r.Use(gate.Middleware)

			r.Put("/user/{id}", h.UpdateUser)
			r.Post("/upload-image-user/{id}", h.UploadUserImage)

			r.Get("/artist/{id}", h.GetArtist)
			r.Get("/artists", h.ListArtists)
			r.Get("/artists/{page}", h.ListArtists)
			r.Post("/artist", h.CreateArtist)
			r.Put("/artist/{id}", h.UpdateArtist)
			r.Delete("/artist/{id}", h.DeleteArtist)
			r.Post("/upload-image-artist/{id}", h.UploadArtistImage)

			r.Get("/album/{id}", h.GetAlbum)
			r.Get("/albumsbyartist/{id}", h.ListAlbumsByArtist)
			r.Get("/albums", h.ListAlbums)
			r.Get("/albums/{page}", h.ListAlbums)
			r.Post("/album", h.CreateAlbum)
			r.Put("/album/{id}", h.UpdateAlbum)
			r.Delete("/album/{id}", h.DeleteAlbum)
			r.Post("/upload-image-album/{id}", h.UploadAlbumImage)

			r.Get("/song/{id}", h.GetSong)
			r.Get("/songsbyalbum/{id}", h.ListSongsByAlbum)
			r.Get("/songs", h.ListSongs)
			r.Get("/songs/{page}", h.ListSongs)
			r.Post("/song", h.CreateSong)
			r.Put("/song/{id}", h.UpdateSong)
			r.Delete("/song/{id}", h.DeleteSong)
			r.Post("/upload-file-song/{id}", h.UploadSongFile)
		})
	})

	return r
}

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Error("health check failed", "err", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
