package server

import (
	"encoding/json"
	"net/http"

	"github.com/condatools/condafeed/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// New builds the HTTP handler exposing the currently loaded configuration.
// Every request reads a complete snapshot; a reload between requests swaps
// the snapshot atomically.
func New(store *config.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/info", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(store.Current()); err != nil {
			logrus.Warnf("Encoding /info response: %v", err)
		}
	})

	return r
}
