package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/costumeconnections/costumes/internal/model"
)

// maxBodyBytes bounds a JSON costume body.
const maxBodyBytes = 1 << 20

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON writes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "status", status, "error", err)
	}
}

// writeError writes an {"error": ...} body.
func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, errorBody{Error: fmt.Sprintf(format, args...)})
}

// readCostume decodes a costume from the request body. On failure it also
// returns the status to answer with: 413 for an oversized body, else 400.
func readCostume(w http.ResponseWriter, r *http.Request) (model.Costume, int, error) {
	var c model.Costume
	defer r.Body.Close()

	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&c)
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return c, http.StatusRequestEntityTooLarge, err
	case err != nil:
		return c, http.StatusBadRequest, err
	}
	c.ID = ""
	return c, http.StatusOK, nil
}
