package web

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/skip2/go-qrcode"
)

// shareCodeSize is the edge length of share codes, in pixels.
const shareCodeSize = 320

// PhotoGet handles GET /costumes/photo?costumeId=X[&size=thumb].
func (s *Server) PhotoGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data, mime, err := s.Store.GetPhoto(r.Context(), q.Get("costumeId"), q.Get("size") == "thumb")
	if err != nil {
		slog.Error("failed to get photo", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if data == nil {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Disposition", "inline")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write photo response", "error", err)
	}
}

// ShareCode handles GET /costumes/costume/share.png?costumeId=X. It returns a
// QR code linking to the costume's public page.
func (s *Server) ShareCode(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("costumeId")
	if id == "" {
		http.Redirect(w, r, "/costumes", http.StatusSeeOther)
		return
	}

	costume, err := s.Store.Get(r.Context(), id)
	if err != nil {
		slog.Error("failed to get costume", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if costume == nil {
		http.NotFound(w, r)
		return
	}

	link := s.baseURL(r) + "/costumes/costume?costumeId=" + url.QueryEscape(costume.ID)
	png, err := qrcode.Encode(link, qrcode.Medium, shareCodeSize)
	if err != nil {
		slog.Error("failed to encode share code", "id", costume.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := w.Write(png); err != nil {
		slog.Error("failed to write share code", "error", err)
	}
}

// baseURL is PublicURL, or the scheme and host the request arrived on.
func (s *Server) baseURL(r *http.Request) string {
	if s.PublicURL != "" {
		return s.PublicURL
	}
	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	return scheme + "://" + r.Host
}
