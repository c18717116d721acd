package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/isdelr/shopdesk-be/internal/services"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps request bodies. The shop logo may arrive as a base64
// data URI, hence the headroom.
const maxBodyBytes = 5 << 20

// messageResponse is the body of every error and of plain acknowledgements.
type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

// decodeJSON reads a JSON body into v, answering 400 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// writeError translates a service error into a status code and a message
// that is safe to show. Unexpected errors are logged and hidden behind
// failMsg.
func writeError(w http.ResponseWriter, err error, failMsg string) {
	var validation *services.ValidationError
	var conflict *services.ConflictError

	switch {
	case errors.As(err, &validation):
		writeMessage(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeMessage(w, http.StatusBadRequest, "Invalid credentials")
	case errors.Is(err, services.ErrExhaustedRetries):
		log.Warn().Err(err).Msg("Invoice id allocation kept colliding")
		writeMessage(w, http.StatusConflict, "Could not assign an invoice id, please retry")
	case errors.As(err, &conflict):
		writeMessage(w, http.StatusConflict, conflict.Message)
	case errors.Is(err, services.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, services.ErrExhaustedSequence):
		log.Error().Err(err).Msg("Invoice id sequence exhausted")
		writeMessage(w, http.StatusInternalServerError, "Invoice id sequence exhausted")
	default:
		log.Error().Err(err).Msg(failMsg)
		writeMessage(w, http.StatusInternalServerError, failMsg)
	}
}

// notFoundMessage turns "invoice INV00009: not found" into
// "invoice INV00009 not found".
func notFoundMessage(err error) string {
	what := strings.TrimSuffix(err.Error(), ": "+services.ErrNotFound.Error())
	if what == err.Error() {
		return "Not found"
	}
	return what + " not found"
}
