// Package server provides the HTTP request handlers.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/blockrun/blockrun/pkg/blocks"
	"github.com/blockrun/blockrun/pkg/version"
)

// executeRequest is the body of POST /api/execute.
type executeRequest struct {
	Code string `json:"code"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

// handleExecute runs the submitted program and reports the outcome. A failed
// run is still HTTP 200: the failure lives in the result body. Non-2xx is
// reserved for transport problems.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	// The JSON envelope needs some headroom beyond the source itself.
	r.Body = http.MaxBytesReader(w, r.Body, int64(s.cfg.Execute.MaxSourceBytes)+4096)

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Execute.Timeout.Duration)
	defer cancel()

	result := s.runner.Run(ctx, req.Code)
	writeJSON(w, http.StatusOK, result)
}

// handleBlocks serves the palette catalog.
func (s *Server) handleBlocks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"categories": blocks.Catalog(),
	})
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
