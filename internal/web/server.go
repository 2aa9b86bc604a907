package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/hackclub/ship-search/internal/search"
	"github.com/hackclub/ship-search/internal/storage"
)

// Lister is the read side of the listing endpoint. Satisfied by the SQLite
// store and by the legacy CSV source.
type Lister interface {
	List() ([]*storage.Ship, error)
}

// Server serves the listing and search API. searcher, keywords and counter
// may be nil (legacy CSV mode serves listing only).
type Server struct {
	ships    Lister
	searcher *search.Service
	keywords *search.KeywordIndex
	vectors  *search.VectorIndex
}

// NewServer creates a server over the given collaborators.
func NewServer(ships Lister, searcher *search.Service, keywords *search.KeywordIndex, vectors *search.VectorIndex) *Server {
	return &Server{
		ships:    ships,
		searcher: searcher,
		keywords: keywords,
		vectors:  vectors,
	}
}

// Handler returns the routed handler with permissive CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ships", s.handleShips)
	mux.HandleFunc("/search", s.handleSearch)
	mux.HandleFunc("/healthz", s.handleHealth)

	return cors(mux)
}

// cors allows any origin, mirroring the permissive policy of the service's
// previous deployment.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// handleShips lists every synced ship, approval date ascending. An empty or
// mid-sweep store yields an empty array, never an error.
func (s *Server) handleShips(w http.ResponseWriter, r *http.Request) {
	ships, err := s.ships.List()
	if err != nil {
		log.Printf("Error listing ships: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if ships == nil {
		ships = []*storage.Ship{}
	}
	writeJSON(w, http.StatusOK, ships)
}

// handleSearch returns the id of the best-matching ship for ?q=. The default
// mode is semantic; mode=keyword uses the Bleve index instead.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing q parameter")
		return
	}

	if r.URL.Query().Get("mode") == "keyword" {
		s.handleKeywordSearch(w, query)
		return
	}

	if s.searcher == nil {
		writeError(w, http.StatusServiceUnavailable, "search not available")
		return
	}

	id, err := s.searcher.Search(r.Context(), query)
	switch {
	case errors.Is(err, search.ErrNoMatch):
		writeError(w, http.StatusNotFound, "no match")
	case errors.Is(err, search.ErrUpstream):
		log.Printf("Error embedding query: %v", err)
		writeError(w, http.StatusBadGateway, "embedding service failed")
	case err != nil:
		log.Printf("Error searching: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	}
}

func (s *Server) handleKeywordSearch(w http.ResponseWriter, query string) {
	if s.keywords == nil {
		writeError(w, http.StatusServiceUnavailable, "keyword search not available")
		return
	}

	hits, err := s.keywords.Search(query, 1)
	if err != nil {
		log.Printf("Error in keyword search: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if len(hits) == 0 {
		writeError(w, http.StatusNotFound, "no match")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"id": hits[0].ID})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{"status": "ok"}

	if db, ok := s.ships.(*storage.DB); ok {
		if count, err := db.Count(); err == nil {
			status["ships"] = count
		}
	}
	if s.vectors != nil {
		status["embedded"] = s.vectors.Count()
	}
	if s.keywords != nil {
		if count, err := s.keywords.Count(); err == nil {
			status["indexed"] = count
		}
	}

	writeJSON(w, http.StatusOK, status)
}
