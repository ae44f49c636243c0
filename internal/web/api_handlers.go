package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/evcraddock/homefront/internal/listing"
	"github.com/evcraddock/homefront/internal/respond"
)

// apiError writes a JSON error response.
func apiError(w http.ResponseWriter, msg string, code int) {
	respond.Error(w, msg, code)
}

// apiJSON writes a JSON response with the given status code.
func apiJSON(w http.ResponseWriter, data interface{}, code int) {
	respond.JSON(w, data, code)
}

// readBody reads a size-limited request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return body, nil
}

// storageError logs err and reports it as a 500 with its message.
func storageError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed", "path", r.URL.Path, "error", err)
	apiError(w, err.Error(), http.StatusInternalServerError)
}

// handleListings routes /listings requests.
func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.apiListListings(w, r)
	case http.MethodPost:
		s.apiUpsertListing(w, r)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiListListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.listings.ListActive(r.Context())
	if err != nil {
		storageError(w, r, err)
		return
	}
	apiJSON(w, map[string]interface{}{"listings": listings}, http.StatusOK)
}

func (s *Server) apiUpsertListing(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var l listing.Listing
	if err := json.Unmarshal(body, &l); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	id, err := s.listings.Upsert(r.Context(), &l)
	if errors.Is(err, listing.ErrInvalid) {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		storageError(w, r, err)
		return
	}

	apiJSON(w, map[string]interface{}{"ok": true, "id": id}, http.StatusOK)
}
