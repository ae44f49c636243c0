// Package web provides the HTTP API: listings, leads and the import queue.
package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/evcraddock/homefront/internal/auth"
	"github.com/evcraddock/homefront/internal/importqueue"
	"github.com/evcraddock/homefront/internal/lead"
	"github.com/evcraddock/homefront/internal/listing"
	"github.com/evcraddock/homefront/internal/logging"
)

// maxBodyBytes caps request bodies. Drafts carry image URL lists, not images.
const maxBodyBytes = 1 << 20

// Server is the API HTTP server.
type Server struct {
	listings   *listing.Repository
	leads      *lead.Repository
	imports    *importqueue.Service
	adminToken string
	mux        *http.ServeMux
	handler    http.Handler

	// Token-guarded reads on otherwise public routes.
	listLeads         http.Handler
	listConversations http.Handler
}

// NewServer creates a server over the given stores. adminToken guards the
// import receive and promote endpoints and lead reads.
func NewServer(listings *listing.Repository, leads *lead.Repository, imports *importqueue.Service, adminToken string) *Server {
	s := &Server{
		listings:   listings,
		leads:      leads,
		imports:    imports,
		adminToken: adminToken,
		mux:        http.NewServeMux(),
	}

	s.listLeads = s.requireToken(http.HandlerFunc(s.apiListLeads))
	s.listConversations = s.requireToken(http.HandlerFunc(s.apiListConversations))

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/listings", s.handleListings)
	s.mux.HandleFunc("/leads", s.handleLeads)
	s.mux.HandleFunc("/conversations", s.handleConversations)
	s.mux.Handle("/import/receive", s.requireToken(http.HandlerFunc(s.handleImportReceive)))
	s.mux.HandleFunc("/import/list", s.handleImportList)
	s.mux.Handle("/import/promote", s.requireToken(http.HandlerFunc(s.handleImportPromote)))

	s.handler = logging.RequestLogger(cors(s.mux))

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return auth.RequireAdminToken(s.adminToken, next)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		apiError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
