// Package api serves the costume records as JSON.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Register adds the API endpoints under /api on r. throttle wraps the
// submission endpoint; pass nil to leave it unthrottled.
func Register(r *mux.Router, costumes Costumes, throttle mux.MiddlewareFunc) {
	if throttle == nil {
		throttle = func(h http.Handler) http.Handler { return h }
	}

	h := &CostumesHandler{Store: costumes}
	api := r.PathPrefix("/api").Subrouter()
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	// Public.
	api.HandleFunc("/costumes", h.List).Methods(http.MethodGet)
	api.Handle("/costumes", throttle(http.HandlerFunc(h.Create))).Methods(http.MethodPost)
	api.HandleFunc("/costumes/{id}", h.Get).Methods(http.MethodGet)

	// Moderation. No authentication, like the admin pages.
	api.HandleFunc("/admin/costumes", h.ListAll).Methods(http.MethodGet)
	api.HandleFunc("/admin/costumes/{id}", h.Update).Methods(http.MethodPut)
	api.HandleFunc("/admin/costumes/{id}", h.Delete).Methods(http.MethodDelete)
}
