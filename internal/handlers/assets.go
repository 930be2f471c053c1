package handlers

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"spinwheel/internal/config"
	"spinwheel/internal/viewmodel"
)

// AssetsHandler serves the embedded front end and the offline manifest.
type AssetsHandler struct {
	static  fs.FS
	offline config.OfflineSettings
}

func NewAssetsHandler(static fs.FS, offline config.OfflineSettings) *AssetsHandler {
	return &AssetsHandler{static: static, offline: offline}
}

func (h *AssetsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/precache.json", h.precache)
	r.Get("/sw.js", h.rootFile("sw.js", "application/javascript"))
	r.Get("/manifest.json", h.rootFile("manifest.json", "application/manifest+json"))
	r.Mount("/static", http.StripPrefix("/static", http.FileServer(http.FS(h.static))))
}

func (h *AssetsHandler) precache(w http.ResponseWriter, r *http.Request) {
	urls := h.offline.Assets
	if urls == nil {
		urls = []string{}
	}
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, http.StatusOK, viewmodel.PrecacheManifest{Cache: h.offline.CacheName, URLs: urls})
}

// rootFile serves a file that must live at the site root, like the service
// worker whose scope is its own path.
func (h *AssetsHandler) rootFile(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := fs.ReadFile(h.static, name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(body)
	}
}
