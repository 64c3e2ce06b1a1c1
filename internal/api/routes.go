package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RegisterRoutes mounts the directory API routes.
func RegisterRoutes(r chi.Router, store *Store, logger *zap.Logger) {
	r.Route("/api/directory", func(r chi.Router) {
		r.Get("/", handleList(store, logger))
		r.Get("/{key}", handleGet(store, logger))
	})
}

func handleList(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := store.Keys(r.Context())
		if err != nil {
			logger.Error("listing directories", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if keys == nil {
			keys = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{"directories": keys})
	}
}

func handleGet(store *Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := strings.ToLower(strings.TrimSpace(chi.URLParam(r, "key")))
		p, err := store.Get(r.Context(), key)
		if err != nil {
			logger.Error("getting directory", zap.String("key", key), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if p == nil {
			writeError(w, http.StatusNotFound, "directory not found")
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
