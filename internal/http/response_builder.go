// Package http provides HTTP server and handler implementations.
//
// This file writes the uniform JSON envelope: every answer carries status
// and code, successes add data and failures add a message.

package http

import (
	"encoding/json"
	"net/http"

	"mywallet/internal/core"
	"mywallet/internal/log"
)

// writeJSON encodes v with the given status code.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to encode response",
			log.FieldError, err,
			log.FieldStatusCode, status)
	}
}

// writeResult sends a successful envelope using its own code as HTTP status.
func writeResult[T any](w http.ResponseWriter, r *http.Request, res *core.Result[T]) {
	writeJSON(w, r, res.Code, res)
}

// writeError sends the FAILED envelope for err. Server-side failures were
// already logged with their cause by the services.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := core.Failure(err)
	logger := log.FromContext(r.Context())
	if res.Code >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Request failed", log.FieldError, err, log.FieldStatusCode, res.Code)
	} else {
		logger.DebugContext(r.Context(), "Request rejected", log.FieldError, err, log.FieldStatusCode, res.Code)
	}
	writeJSON(w, r, res.Code, res)
}
