package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	webembed "github.com/costumeconnections/costumes/web"
)

const (
	photoPath     = "/costumes/photo"
	healthTimeout = 2 * time.Second
)

// Register adds the page routes to r. throttle wraps the public submission
// route; pass nil to leave it unthrottled.
func (s *Server) Register(r *mux.Router, throttle mux.MiddlewareFunc) {
	if throttle == nil {
		throttle = func(h http.Handler) http.Handler { return h }
	}

	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(webembed.Static))))
	r.HandleFunc("/health", s.Health).Methods(http.MethodGet)

	// Public routes.
	r.HandleFunc("/", s.Home).Methods(http.MethodGet)
	r.HandleFunc("/costumes", s.CostumesPage).Methods(http.MethodGet)
	r.HandleFunc("/costumes/costume", s.CostumePage).Methods(http.MethodGet)
	r.HandleFunc("/costumes/costume/share.png", s.ShareCode).Methods(http.MethodGet)
	r.HandleFunc(photoPath, s.PhotoGet).Methods(http.MethodGet)
	r.HandleFunc("/sell", s.SellPage).Methods(http.MethodGet)
	r.Handle("/sell/submit", throttle(http.HandlerFunc(s.SellSubmit))).Methods(http.MethodPost)

	// Admin routes.
	r.HandleFunc("/admin/costumes", s.AdminCostumesPage).Methods(http.MethodGet)
	r.HandleFunc("/admin/costumes/costume", s.AdminCostumePage).Methods(http.MethodGet)
	r.HandleFunc("/admin/costume/edit", s.AdminEditPage).Methods(http.MethodGet)
	r.HandleFunc("/admin/costume/edit/submit", s.AdminEditSubmit).Methods(http.MethodPost)
	r.HandleFunc("/admin/costume/delete", s.AdminDelete).Methods(http.MethodGet)
}
