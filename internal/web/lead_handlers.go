package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/evcraddock/homefront/internal/lead"
)

// handleLeads routes /leads. Anyone may submit a lead; reading them needs the
// admin token.
func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.apiCreateLead(w, r)
	case http.MethodGet:
		s.listLeads.ServeHTTP(w, r)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiCreateLead(w http.ResponseWriter, r *http.Request) {
	var l lead.Lead
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&l); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	err := s.leads.Create(r.Context(), &l)
	if errors.Is(err, lead.ErrInvalid) {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		storageError(w, r, err)
		return
	}

	apiJSON(w, map[string]interface{}{"ok": true, "id": l.ID}, http.StatusCreated)
}

func (s *Server) apiListLeads(w http.ResponseWriter, r *http.Request) {
	leads, err := s.leads.List(r.Context())
	if err != nil {
		storageError(w, r, err)
		return
	}
	apiJSON(w, map[string]interface{}{"leads": leads}, http.StatusOK)
}

// handleConversations routes /conversations. POST stores a transcript; GET
// with ?leadId= lists a lead's transcripts and needs the admin token.
func (s *Server) handleConversations(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.apiCreateConversation(w, r)
	case http.MethodGet:
		s.listConversations.ServeHTTP(w, r)
	default:
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) apiCreateConversation(w http.ResponseWriter, r *http.Request) {
	var c lead.Conversation
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&c); err != nil {
		apiError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return
	}

	err := s.leads.CreateConversation(r.Context(), &c)
	if errors.Is(err, lead.ErrInvalid) {
		apiError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		storageError(w, r, err)
		return
	}

	apiJSON(w, map[string]interface{}{"ok": true, "id": c.ID}, http.StatusCreated)
}

func (s *Server) apiListConversations(w http.ResponseWriter, r *http.Request) {
	leadID := r.URL.Query().Get("leadId")
	if leadID == "" {
		apiError(w, "leadId is required", http.StatusBadRequest)
		return
	}

	convs, err := s.leads.ListConversations(r.Context(), leadID)
	if err != nil {
		storageError(w, r, err)
		return
	}
	apiJSON(w, map[string]interface{}{"conversations": convs}, http.StatusOK)
}
