package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/sagarc03/imagevault"
)

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateResponse is the body of a successful create.
type CreateResponse struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
}

// ReplaceResponse is the body of a successful replace.
type ReplaceResponse struct {
	Name       string    `json:"name"`
	Owner      string    `json:"owner"`
	ModifiedAt time.Time `json:"modified_at"`
}

// DeleteResponse is the body of a successful delete.
type DeleteResponse struct {
	Name    string `json:"name"`
	Deleted bool   `json:"deleted"`
}

// WriteError writes a JSON error response
func WriteError(w http.ResponseWriter, code int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// HandleError writes the error response matching the error kind.
// Storage faults fall through to a generic internal error so file
// system paths never leak to the caller.
func HandleError(w http.ResponseWriter, err error) {
	slog.Error("request error", "error", err)

	switch {
	case errors.Is(err, imagevault.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Object not found")
	case errors.Is(err, imagevault.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", "An object with the same name already exists")
	case errors.Is(err, imagevault.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "You are not the owner of this object")
	case errors.Is(err, imagevault.ErrInvalidExtension):
		WriteError(w, http.StatusBadRequest, "invalid_file_type", "Only .jpg and .jpeg files are accepted")
	case errors.Is(err, imagevault.ErrInvalidName):
		WriteError(w, http.StatusBadRequest, "invalid_name", "Invalid file name")
	case errors.Is(err, imagevault.ErrInvalidFilter):
		WriteError(w, http.StatusBadRequest, "invalid_filter", "Invalid filter type")
	case errors.Is(err, imagevault.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, "invalid_input", "Invalid input")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, code int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(data)
}
