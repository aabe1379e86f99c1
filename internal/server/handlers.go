package server

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/company-pulse/internal/db"
	"github.com/jonathan/company-pulse/internal/pipeline"
	"github.com/jonathan/company-pulse/internal/types"
)

// ArticleResponse is a stored article with its generated posts.
type ArticleResponse struct {
	types.NewsArticle
	SocialContent []types.SocialContent `json:"social_content"`
}

// handleFetchNews runs a news query and returns the processed articles.
func (s *Server) handleFetchNews(w http.ResponseWriter, r *http.Request) {
	var req types.NewsQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.news.FetchNews(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleFetchNewsStream runs a news query and streams progress via SSE
func (s *Server) handleFetchNewsStream(w http.ResponseWriter, r *http.Request) {
	var req types.NewsQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	res, err := s.news.FetchNewsWithProgress(r.Context(), req, sse.Progress())
	if err != nil {
		log.Printf("[HTTP] News stream for %q failed: %v", req.Company, err)
		sse.WriteError(err)
		return
	}
	sse.WriteResult(res.RunID, res)
}

// handleListArticles lists stored articles for a company.
// Query parameters: source, since (RFC 3339), q, limit, offset.
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filter := db.ArticleFilter{
		CompanyID:  id,
		SourceName: r.URL.Query().Get("source"),
		Search:     strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:      parseQueryInt(r, "limit", db.DefaultListLimit, 200),
		Offset:     parseQueryInt(r, "offset", 0, 0),
	}
	if since := r.URL.Query().Get("since"); since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			s.writeError(w, r, &ErrValidation{Field: "since", Message: "must be an RFC 3339 timestamp"})
			return
		}
		filter.Since = t
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

	articles, err := s.news.Store().ListArticles(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if articles == nil {
		articles = []types.NewsArticle{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"company":  company,
		"articles": articles,
		"limit":    filter.Limit,
		"offset":   filter.Offset,
	})
}

// handleGetArticle returns one stored article and its posts.
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	article, err := s.news.Store().GetArticle(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if article == nil {
		s.writeError(w, r, &pipeline.NotFoundError{Kind: "article", ID: id})
		return
	}

	posts, err := s.news.Store().ListSocialContent(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if posts == nil {
		posts = []types.SocialContent{}
	}

	s.jsonResponse(w, http.StatusOK, ArticleResponse{NewsArticle: *article, SocialContent: posts})
}

// handleGenerateForArticle extracts highlights and writes posts for a stored article.
func (s *Server) handleGenerateForArticle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.GenerateContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.news.GenerateForArticle(r.Context(), id, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, res)
}

// handleGenerateForArticleStream is handleGenerateForArticle with SSE progress.
func (s *Server) handleGenerateForArticleStream(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req types.GenerateContentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	var runID string
	progress := sse.Progress()
	res, err := s.news.GenerateForArticleWithProgress(r.Context(), id, req, func(e pipeline.ProgressEvent) {
		runID = e.RunID
		progress(e)
	})
	if err != nil {
		log.Printf("[HTTP] Generation stream for article %d failed: %v", id, err)
		sse.WriteError(err)
		return
	}
	sse.WriteResult(runID, res)
}
