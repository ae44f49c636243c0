package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/evcraddock/homefront/internal/importqueue"
	"github.com/evcraddock/homefront/internal/listing"
)

// handleImportReceive queues a draft from the browser extension. The admin
// token has already been checked.
func (s *Server) handleImportReceive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	receipt, err := s.imports.Receive(r.Context(), body)
	if errors.Is(err, importqueue.ErrInvalidDraft) {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		storageError(w, r, err)
		return
	}

	apiJSON(w, receipt, http.StatusOK)
}

// handleImportList returns the queue. It always answers 200.
func (s *Server) handleImportList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	apiJSON(w, map[string]interface{}{"imports": s.imports.List(r.Context())}, http.StatusOK)
}

type promoteRequest struct {
	ID string `json:"id"`
}

// handleImportPromote turns a queued draft into a listing.
func (s *Server) handleImportPromote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req promoteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		apiError(w, "id is required", http.StatusBadRequest)
		return
	}

	listingID, err := s.imports.Promote(r.Context(), req.ID, s.listings)
	switch {
	case errors.Is(err, importqueue.ErrNotFound):
		apiError(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, importqueue.ErrInvalidDraft), errors.Is(err, listing.ErrInvalid):
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, importqueue.ErrNotConfigured):
		apiError(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		storageError(w, r, err)
		return
	}

	apiJSON(w, map[string]interface{}{"ok": true, "id": listingID, "importId": req.ID}, http.StatusOK)
}
