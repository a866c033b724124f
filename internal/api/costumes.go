package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/costumeconnections/costumes/internal/model"
)

// Costumes is the store contract the API handlers rely on.
type Costumes interface {
	ListApproved(ctx context.Context) ([]model.Costume, error)
	ListAll(ctx context.Context) ([]model.Costume, error)
	Get(ctx context.Context, id string) (*model.Costume, error)
	Create(ctx context.Context, c model.Costume) (string, error)
	Update(ctx context.Context, id string, c model.Costume) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// CostumesHandler handles the costume endpoints.
type CostumesHandler struct {
	Store Costumes
}

// List handles GET /api/costumes.
func (h *CostumesHandler) List(w http.ResponseWriter, r *http.Request) {
	costumes, err := h.Store.ListApproved(r.Context())
	if err != nil {
		slog.Error("failed to list approved costumes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list costumes")
		return
	}
	writeJSON(w, http.StatusOK, costumes)
}

// ListAll handles GET /api/admin/costumes.
func (h *CostumesHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	costumes, err := h.Store.ListAll(r.Context())
	if err != nil {
		slog.Error("failed to list costumes", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list costumes")
		return
	}
	writeJSON(w, http.StatusOK, costumes)
}

// Get handles GET /api/costumes/{id}.
func (h *CostumesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	costume, err := h.Store.Get(r.Context(), id)
	if err != nil {
		slog.Error("failed to get costume", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get costume")
		return
	}
	if costume == nil {
		writeError(w, http.StatusNotFound, "costume %q not found", id)
		return
	}
	writeJSON(w, http.StatusOK, costume)
}

// Create handles POST /api/costumes. New costumes always wait for review.
func (h *CostumesHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, status, err := readCostume(w, r)
	if err != nil {
		slog.Warn("rejected costume submission", "error", err)
		writeError(w, status, "invalid request body: %v", err)
		return
	}
	c.Status = model.StatusPending

	id, err := h.Store.Create(r.Context(), c)
	if err != nil {
		slog.Error("failed to create costume", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create costume")
		return
	}
	slog.Info("costume submitted", "id", id, "title", c.Title)

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Update handles PUT /api/admin/costumes/{id}. Every field is replaced.
func (h *CostumesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	c, status, err := readCostume(w, r)
	if err != nil {
		slog.Warn("rejected costume update", "id", id, "error", err)
		writeError(w, status, "invalid request body: %v", err)
		return
	}

	n, err := h.Store.Update(r.Context(), id, c)
	if err != nil {
		slog.Error("failed to update costume", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update costume")
		return
	}
	slog.Info("costume updated", "id", id, "modified", n, "status", c.Status)

	writeJSON(w, http.StatusOK, map[string]int64{"modified": n})
}

// Delete handles DELETE /api/admin/costumes/{id}.
func (h *CostumesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	n, err := h.Store.Delete(r.Context(), id)
	if err != nil {
		slog.Error("failed to delete costume", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete costume")
		return
	}
	if n == 1 {
		slog.Info("costume deleted", "id", id)
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
}
