package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/desertthunder/lineup/internal/models"
	"github.com/desertthunder/lineup/internal/shared"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func errorBody(msg, code string) models.ErrorBody {
	return models.ErrorBody{Error: msg, Code: code}
}

// statusFor maps a wire error code to its HTTP status.
func statusFor(code string) int {
	switch code {
	case shared.CodeNotFound:
		return http.StatusNotFound
	case shared.CodeInvalidInput, shared.CodeNoChange:
		return http.StatusBadRequest
	case shared.CodeAlreadyLinked, shared.CodeStaleSnapshot:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v. Malformed bodies are invalid input.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return shared.NewInvalidInput("request body is empty")
		}
		return shared.NewInvalidInput("malformed request body: %v", err)
	}
	return nil
}
