package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Aireenelz/rag-employee-learning-system/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeAppError maps the error taxonomy to HTTP: bad input 400, rank
// rejection 403, broken collaborator 502, anything else 500.
func writeAppError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperr.ErrPermission):
		status = http.StatusForbidden
	case errors.Is(err, apperr.ErrDependency):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
