package api

import (
	"encoding/json"
	"net/http"
	"time"

	stderrors "prospect-lookup/internal/common/errors"
)

// errorBody is the JSON error envelope every endpoint shares.
type errorBody struct {
	Error struct {
		Code      string    `json:"code"`
		Message   string    `json:"message"`
		Details   string    `json:"details,omitempty"`
		Retryable bool      `json:"retryable"`
		Timestamp time.Time `json:"timestamp"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeStandardError renders a StandardError with its mapped HTTP status.
func writeStandardError(w http.ResponseWriter, stdErr *stderrors.StandardError) {
	body := errorBody{}
	body.Error.Code = string(stdErr.Code)
	body.Error.Message = stdErr.Message
	body.Error.Details = stdErr.Details
	body.Error.Retryable = stdErr.Retryable
	body.Error.Timestamp = stdErr.Timestamp

	writeJSON(w, stderrors.HTTPStatus(stdErr.Code), body)
}

// writeError renders a plain code/message pair at the given status.
func writeError(w http.ResponseWriter, status int, code, message string) {
	body := errorBody{}
	body.Error.Code = code
	body.Error.Message = message
	body.Error.Timestamp = time.Now().UTC()

	writeJSON(w, status, body)
}
