package web

import (
	"log/slog"
	"net/http"

	"github.com/costumeconnections/costumes/internal/model"
)

// The admin pages have no authentication; anyone who knows the URLs can
// moderate submissions.

// AdminCostumesPage handles GET /admin/costumes.
func (s *Server) AdminCostumesPage(w http.ResponseWriter, r *http.Request) {
	costumes, err := s.Store.ListAll(r.Context())
	if err != nil {
		slog.Error("failed to list costumes", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.Templates.Render(w, "admin_costumes.html", &struct {
		PageData
		Costumes []model.Costume
	}{
		PageData: PageData{Title: "Costumes", Admin: true},
		Costumes: costumes,
	})
}

// AdminCostumePage handles GET /admin/costumes/costume?costumeId=X.
func (s *Server) AdminCostumePage(w http.ResponseWriter, r *http.Request) {
	s.costumeView(w, r, singleView{
		parent:      "/admin/costumes",
		page:        "admin_costume.html",
		title:       "Costume",
		titleFormat: "%s",
		admin:       true,
	})
}

// AdminEditPage handles GET /admin/costume/edit?costumeId=X.
func (s *Server) AdminEditPage(w http.ResponseWriter, r *http.Request) {
	s.costumeView(w, r, singleView{
		parent:      "/admin/costumes",
		page:        "admin_edit.html",
		title:       "Edit costume",
		titleFormat: "Edit %s",
		admin:       true,
	})
}

// AdminEditSubmit handles POST /admin/costume/edit/submit. The form carries
// the complete record; every field is replaced.
func (s *Server) AdminEditSubmit(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/admin/costumes", http.StatusSeeOther)

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	form, err := readCostumeForm(r)
	if err != nil {
		slog.Warn("failed to read costume edit", "error", err)
		return
	}

	n, err := s.Store.Update(r.Context(), form.CostumeID, form.Costume)
	if err != nil {
		slog.Error("failed to update costume", "id", form.CostumeID, "error", err)
		return
	}
	slog.Info("costume updated", "id", form.CostumeID, "modified", n, "status", form.Status)
}

// AdminDelete handles GET /admin/costume/delete?costumeId=X.
func (s *Server) AdminDelete(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/admin/costumes", http.StatusSeeOther)

	id := r.URL.Query().Get("costumeId")
	n, err := s.Store.Delete(r.Context(), id)
	if err != nil {
		slog.Error("failed to delete costume", "id", id, "error", err)
		return
	}
	if n == 1 {
		slog.Info("costume deleted", "id", id)
	}
}
