package server

import (
	"net/http"
	"strconv"

	"github.com/jonathan/company-pulse/internal/companies"
	"github.com/jonathan/company-pulse/internal/pipeline"
	"github.com/jonathan/company-pulse/internal/types"
)

// ResolveCompanyResponse is the body of POST /companies/resolve. Company is
// set when the request asked to create or when a confident match exists.
type ResolveCompanyResponse struct {
	Resolution *companies.Resolution `json:"resolution"`
	Company    *types.Company        `json:"company,omitempty"`
}

// parseQueryInt parses an integer query parameter with default and max values
func parseQueryInt(r *http.Request, key string, defaultValue, maxValue int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		return defaultValue
	}
	if maxValue > 0 && val > maxValue {
		return maxValue
	}
	return val
}

// pathID parses a positive integer path value.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ErrValidation{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// handleResolveCompany maps a free-text name to known companies, optionally
// creating one when nothing matches well enough.
func (s *Server) handleResolveCompany(w http.ResponseWriter, r *http.Request) {
	var req types.ResolveCompanyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	resolver := s.news.Resolver()
	res, err := resolver.Resolve(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := ResolveCompanyResponse{Resolution: res}
	switch {
	case req.Create:
		var ticker *string
		if req.Ticker != "" {
			ticker = &req.Ticker
		}
		company, err := resolver.FindOrCreate(r.Context(), req.Name, ticker)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Company = company
	case res.Best() != nil && res.Best().Confidence > companies.AcceptConfidence:
		resp.Company = &res.Best().Company
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleListCompanies lists known companies with simple paging.
func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	limit := parseQueryInt(r, "limit", 50, 200)
	offset := parseQueryInt(r, "offset", 0, 0)

	all, err := s.news.Store().ListCompanies(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page := []types.Company{}
	if offset < len(all) {
		page = all[offset:min(offset+limit, len(all))]
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"companies": page,
		"total":     len(all),
		"limit":     limit,
		"offset":    offset,
	})
}

// handleGetCompany retrieves a company by ID
func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	company, err := s.news.Store().GetCompany(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if company == nil {
		s.writeError(w, r, &pipeline.NotFoundError{Kind: "company", ID: id})
		return
	}

	s.jsonResponse(w, http.StatusOK, company)
}
