package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/safetrip/travel-circle/internal/circle"
	"github.com/safetrip/travel-circle/internal/companion"
	"github.com/safetrip/travel-circle/internal/matching"
	"github.com/safetrip/travel-circle/internal/tribe"
)

// maxBodyBytes bounds request bodies; every form here is small.
const maxBodyBytes = 64 << 10

var errBadRequest = errors.New("httpapi: bad request")

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeServiceError maps domain errors to status codes. Anything
// unrecognised is logged and reported as 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, matching.ErrInvalidPreference),
		errors.Is(err, tribe.ErrInvalidGroup):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, circle.ErrInvalidCount),
		errors.Is(err, circle.ErrIncompleteMembers):
		writeError(w, http.StatusBadRequest, "invalid_circle", err.Error())
	case errors.Is(err, companion.ErrCandidateNotFound),
		errors.Is(err, tribe.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, tribe.ErrGroupFull):
		writeError(w, http.StatusConflict, "group_full", err.Error())
	default:
		log.Printf("[httpapi] %s %s: %v", r.Method, r.URL.Path, err)
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
