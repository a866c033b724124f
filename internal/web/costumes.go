package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/costumeconnections/costumes/internal/imaging"
	"github.com/costumeconnections/costumes/internal/model"
	"github.com/costumeconnections/costumes/internal/store"
)

// Home handles GET /.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "index.html", &PageData{Title: "Home"})
}

// CostumesPage handles GET /costumes.
func (s *Server) CostumesPage(w http.ResponseWriter, r *http.Request) {
	costumes, err := s.Store.ListApproved(r.Context())
	if err != nil {
		slog.Error("failed to list approved costumes", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "costumes.html", &struct {
		PageData
		Costumes []model.Costume
	}{
		PageData: PageData{Title: "Costumes"},
		Costumes: costumes,
	})
}

// CostumePage handles GET /costumes/costume?costumeId=X.
func (s *Server) CostumePage(w http.ResponseWriter, r *http.Request) {
	s.costumeView(w, r, singleView{parent: "/costumes", page: "costume.html", title: "Costume", titleFormat: "%s"})
}

// singleView describes a page showing one costume.
type singleView struct {
	parent      string // redirect target when costumeId is absent
	page        string
	title       string // used when the costume is missing or untitled
	titleFormat string
	admin       bool
}

func (s *Server) costumeView(w http.ResponseWriter, r *http.Request, v singleView) {
	id := r.URL.Query().Get("costumeId")
	if id == "" {
		http.Redirect(w, r, v.parent, http.StatusSeeOther)
		return
	}

	costume, err := s.Store.Get(r.Context(), id)
	if err != nil {
		slog.Error("failed to get costume", "id", id, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := PageData{Title: v.title, Admin: v.admin}
	status := http.StatusOK
	var statuses []string
	switch {
	case costume == nil:
		status = http.StatusNotFound
		data.Error = "That costume could not be found."
	default:
		statuses = model.StatusOptions(costume.Status)
		if costume.Title != "" {
			data.Title = fmt.Sprintf(v.titleFormat, costume.Title)
		}
	}

	s.Templates.RenderStatus(w, status, v.page, &struct {
		PageData
		Costume  *model.Costume
		Statuses []string
	}{
		PageData: data,
		Costume:  costume,
		Statuses: statuses,
	})
}

// SellPage handles GET /sell.
func (s *Server) SellPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "sell.html", &PageData{Title: "Sell"})
}

// SellSubmit handles POST /sell/submit. Whatever happens, the seller is sent
// back to the catalog.
func (s *Server) SellSubmit(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/costumes", http.StatusSeeOther)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	form, err := readCostumeForm(r)
	if err != nil {
		slog.Warn("failed to read costume submission", "error", err)
		return
	}

	costume := form.Costume
	costume.Status = model.StatusPending

	id, err := s.Store.Create(r.Context(), costume)
	if err != nil {
		slog.Error("failed to create costume", "error", err)
		return
	}
	slog.Info("costume submitted", "id", id, "title", costume.Title)

	if err := s.attachPhoto(r, id, costume); err != nil {
		slog.Warn("failed to attach costume photo", "id", id, "error", err)
	}
}

// attachPhoto stores the optional "photo" upload of a submission. When the
// seller left imageUrl blank it is pointed at the stored photo.
func (s *Server) attachPhoto(r *http.Request, id string, costume model.Costume) error {
	if r.MultipartForm == nil {
		return nil
	}
	file, _, err := r.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	result, err := imaging.Process(file)
	if err != nil {
		return err
	}

	ctx := r.Context()
	if err := s.Store.SetPhoto(ctx, id, &store.Photo{Image: result.Image, Thumb: result.Thumb, MIME: result.MIME}); err != nil {
		return err
	}

	if costume.ImageURL == "" {
		costume.ImageURL = photoURL(id)
		if _, err := s.Store.Update(ctx, id, costume); err != nil {
			return err
		}
	}
	slog.Info("costume photo stored", "id", id, "bytes", len(result.Image))
	return nil
}

func photoURL(id string) string {
	return photoPath + "?costumeId=" + url.QueryEscape(id)
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.Store.Ping(ctx); err != nil {
		slog.Error("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unhealthy"}`))
		return
	}
	w.Write([]byte(`{"status":"healthy"}`))
}
