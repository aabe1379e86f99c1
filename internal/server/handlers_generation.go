package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/company-pulse/internal/generation"
	"github.com/jonathan/company-pulse/internal/types"
)

// handleExtractHighlights extracts highlights from text supplied in the request.
func (s *Server) handleExtractHighlights(w http.ResponseWriter, r *http.Request) {
	var req types.HighlightRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.generator.ExtractHighlights(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleGenerateSocial writes posts from highlights supplied in the request.
func (s *Server) handleGenerateSocial(w http.ResponseWriter, r *http.Request) {
	var req types.SocialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	out, err := s.generator.GenerateSocialContent(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, out)
}

// handleProviderHealth returns the cached provider health, or probes every
// provider when ?check=true.
func (s *Server) handleProviderHealth(w http.ResponseWriter, r *http.Request) {
	check, _ := strconv.ParseBool(r.URL.Query().Get("check"))

	var health []generation.ProviderHealth
	if check {
		health = s.generator.CheckHealth(r.Context())
	} else {
		health = s.generator.Health().Snapshot()
	}
	if health == nil {
		health = []generation.ProviderHealth{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"providers": health,
		"checked":   check,
	})
}
