// Package pipeline ties company resolution, news aggregation, processing,
// persistence and content generation into one service.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/company-pulse/internal/aggregator"
	"github.com/jonathan/company-pulse/internal/cache"
	"github.com/jonathan/company-pulse/internal/companies"
	"github.com/jonathan/company-pulse/internal/db"
	"github.com/jonathan/company-pulse/internal/events"
	"github.com/jonathan/company-pulse/internal/generation"
	"github.com/jonathan/company-pulse/internal/metrics"
	"github.com/jonathan/company-pulse/internal/processing"
	"github.com/jonathan/company-pulse/internal/sources"
	"github.com/jonathan/company-pulse/internal/types"
)

// DefaultMaxArticles is used when a news query leaves MaxArticles unset.
const DefaultMaxArticles = 20

// Searcher aggregates raw articles. *aggregator.Aggregator implements it.
type Searcher interface {
	Aggregate(ctx context.Context, companyName string, maxArticles int) (*aggregator.Result, error)
}

// Generator produces highlights and posts. *generation.Orchestrator implements it.
type Generator interface {
	ExtractHighlights(ctx context.Context, req types.HighlightRequest) (*generation.HighlightOutcome, error)
	GenerateSocialContent(ctx context.Context, req types.SocialRequest) (*generation.SocialOutcome, error)
}

// Config tunes the service.
type Config struct {
	Criteria           processing.Criteria
	CacheTTL           time.Duration
	DefaultMaxArticles int
}

// DefaultConfig returns the default service configuration.
func DefaultConfig() Config {
	return Config{
		Criteria:           processing.DefaultCriteria(),
		CacheTTL:           cache.DefaultNewsTTL,
		DefaultMaxArticles: DefaultMaxArticles,
	}
}

// Deps are the collaborators of a Service. Store, Searcher and Generator are
// required; Cache and Events may be nil.
type Deps struct {
	Store     db.Store
	Searcher  Searcher
	Generator Generator
	Cache     cache.Cache
	Events    events.Publisher
}

// Service runs news queries and content generation.
type Service struct {
	store     db.Store
	resolver  *companies.Resolver
	searcher  Searcher
	processor *processing.Processor
	generator Generator
	cache     cache.Cache
	events    events.Publisher
	cfg       Config
	now       func() time.Time
}

// NewService builds a service from its collaborators.
func NewService(deps Deps, cfg Config) (*Service, error) {
	if deps.Store == nil || deps.Searcher == nil || deps.Generator == nil {
		return nil, fmt.Errorf("pipeline: store, searcher and generator are required")
	}
	if err := cfg.Criteria.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid criteria: %w", err)
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultNewsTTL
	}
	if cfg.DefaultMaxArticles <= 0 {
		cfg.DefaultMaxArticles = DefaultMaxArticles
	}
	pub := deps.Events
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		store:     deps.Store,
		resolver:  companies.NewResolver(deps.Store),
		searcher:  deps.Searcher,
		processor: processing.New(),
		generator: deps.Generator,
		cache:     deps.Cache,
		events:    pub,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

// Resolver returns the company resolver backed by the service store.
func (s *Service) Resolver() *companies.Resolver {
	return s.resolver
}

// Store returns the service store.
func (s *Service) Store() db.Store {
	return s.store
}

// NewsResult is the outcome of a news query.
type NewsResult struct {
	RunID             string              `json:"run_id"`
	Company           types.Company       `json:"company"`
	Articles          []types.NewsArticle `json:"articles"`
	Sources           []string            `json:"sources"`
	SourceErrors      []*sources.Error    `json:"source_errors,omitempty"`
	OriginalCount     int                 `json:"original_count"`
	FilteredCount     int                 `json:"filtered_count"`
	DuplicatesRemoved int                 `json:"duplicates_removed"`
	Stored            int                 `json:"stored"`
	Cached            bool                `json:"cached"`
	ProcessingTime    time.Duration       `json:"processing_time"`
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// FetchNews resolves the company, aggregates and processes its news, and
// stores new articles. Cache, persistence and event failures are logged and
// do not fail the query.
func (s *Service) FetchNews(ctx context.Context, req types.NewsQueryRequest) (*NewsResult, error) {
	return s.FetchNewsWithProgress(ctx, req, nil)
}

// FetchNewsWithProgress is FetchNews reporting each step to onProgress.
func (s *Service) FetchNewsWithProgress(ctx context.Context, req types.NewsQueryRequest, onProgress ProgressCallback) (*NewsResult, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()

	company, err := s.resolver.FindOrCreate(ctx, req.Company, nil)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error", "none").Inc()
		return nil, err
	}
	emit(onProgress, runID, StepResolve, fmt.Sprintf("Resolved %q to %s (#%d)", req.Company, company.Name, company.ID), company)

	maxArticles := req.MaxArticles
	if maxArticles <= 0 {
		maxArticles = s.cfg.DefaultMaxArticles
	}
	key := cache.NewsKey(company.ID, maxArticles)
	cacheable := s.cache != nil && !hasOverrides(req)

	if cacheable && !req.SkipCache {
		cached, ok, err := cache.GetJSON[NewsResult](ctx, s.cache, key)
		if err != nil {
			log.Printf("[PIPELINE] Cache read %s failed: %v", key, err)
		}
		if ok {
			cached.Cached = true
			emit(onProgress, runID, StepCache, "Served from cache", nil)
			metrics.PipelineRunsTotal.WithLabelValues("success", "hit").Inc()
			return &cached, nil
		}
	}

	agg, err := s.searcher.Aggregate(ctx, company.Name, maxArticles)
	if err != nil {
		metrics.PipelineRunsTotal.WithLabelValues("error", "miss").Inc()
		return nil, fmt.Errorf("failed to aggregate news for %s: %w", company.Name, err)
	}
	emit(onProgress, runID, StepAggregate,
		fmt.Sprintf("Collected %d articles from %d sources (%d failed)", len(agg.Articles), len(agg.Sources), len(agg.Errors)), nil)

	criteria := s.criteria(req)
	processed := s.processor.Process(agg.Articles, company.Name, criteria)
	emit(onProgress, runID, StepProcess,
		fmt.Sprintf("Kept %d of %d articles (%d duplicates)", processed.FilteredCount, processed.OriginalCount, processed.DuplicatesRemoved), nil)

	articles, stored := s.persist(ctx, processed.Records(company.ID, s.now()))
	emit(onProgress, runID, StepPersist, fmt.Sprintf("Stored %d new articles", stored), nil)

	res := &NewsResult{
		RunID:             runID,
		Company:           *company,
		Articles:          articles,
		Sources:           agg.Sources,
		SourceErrors:      agg.Errors,
		OriginalCount:     processed.OriginalCount,
		FilteredCount:     processed.FilteredCount,
		DuplicatesRemoved: processed.DuplicatesRemoved,
		Stored:            stored,
	}

	s.publish(ctx, events.SubjectNewsProcessed, events.NewsProcessed{
		RunID:       runID,
		CompanyID:   company.ID,
		CompanyName: company.Name,
		ArticleIDs:  articleIDs(articles),
		Returned:    len(articles),
		Stored:      stored,
	})
	emit(onProgress, runID, StepPublish, "Published news event", nil)

	res.ProcessingTime = time.Since(start)
	if cacheable {
		if err := cache.SetJSON(ctx, s.cache, key, res, s.cfg.CacheTTL); err != nil {
			log.Printf("[PIPELINE] Cache write %s failed: %v", key, err)
		}
	}

	metrics.PipelineRunsTotal.WithLabelValues("success", "miss").Inc()
	log.Printf("[PIPELINE] Run %s: %d articles for %s (%d stored) in %s",
		runID, len(articles), company.Name, stored, res.ProcessingTime.Round(time.Millisecond))
	return res, nil
}

func hasOverrides(req types.NewsQueryRequest) bool {
	return req.MinRelevance != nil || req.MinQuality != nil || req.MaxAgeHours > 0 || len(req.RequiredKeywords) > 0
}

func (s *Service) criteria(req types.NewsQueryRequest) processing.Criteria {
	c := s.cfg.Criteria
	if req.MinRelevance != nil {
		c.MinRelevance = *req.MinRelevance
	}
	if req.MinQuality != nil {
		c.MinQuality = *req.MinQuality
	}
	if req.MaxAgeHours > 0 {
		c.MaxAgeHours = float64(req.MaxAgeHours)
	}
	if len(req.RequiredKeywords) > 0 {
		c.RequiredKeywords = req.RequiredKeywords
	}
	return c
}

// persist stores new records and returns the records to report, in input
// order, with ids filled in for new and previously stored articles.
func (s *Service) persist(ctx context.Context, records []types.NewsArticle) ([]types.NewsArticle, int) {
	if len(records) == 0 {
		return []types.NewsArticle{}, 0
	}

	created, err := s.store.CreateArticles(ctx, records)
	if err != nil {
		log.Printf("[PIPELINE] Failed to store %d articles: %v", len(records), err)
		return records, 0
	}

	byURL := make(map[string]types.NewsArticle, len(created))
	for _, a := range created {
		byURL[a.SourceURL] = a
	}

	out := make([]types.NewsArticle, len(records))
	for i, rec := range records {
		if a, ok := byURL[rec.SourceURL]; ok {
			out[i] = a
			continue
		}
		existing, err := s.store.GetArticleByURL(ctx, rec.SourceURL)
		if err != nil {
			log.Printf("[PIPELINE] Failed to load stored article %s: %v", rec.SourceURL, err)
		}
		if existing != nil {
			out[i] = *existing
		} else {
			out[i] = rec
		}
	}
	return out, len(created)
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		log.Printf("[PIPELINE] Failed to publish %s: %v", subject, err)
	}
}

func articleIDs(articles []types.NewsArticle) []int64 {
	ids := make([]int64, 0, len(articles))
	for _, a := range articles {
		if a.ID > 0 {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

// GenerationResult is the outcome of generating content for a stored article.
type GenerationResult struct {
	Article    types.NewsArticle            `json:"article"`
	Highlights *generation.HighlightOutcome `json:"highlights"`
	Social     *generation.SocialOutcome    `json:"social"`
	Content    []types.SocialContent        `json:"content"`
}

// GenerateForArticle extracts highlights for a stored article, saves them,
// writes posts for the requested platforms and upserts them per platform.
func (s *Service) GenerateForArticle(ctx context.Context, articleID int64, req types.GenerateContentRequest) (*GenerationResult, error) {
	return s.GenerateForArticleWithProgress(ctx, articleID, req, nil)
}

// GenerateForArticleWithProgress is GenerateForArticle reporting each step to onProgress.
func (s *Service) GenerateForArticleWithProgress(ctx context.Context, articleID int64, req types.GenerateContentRequest, onProgress ProgressCallback) (*GenerationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()

	article, err := s.store.GetArticle(ctx, articleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load article %d: %w", articleID, err)
	}
	if article == nil {
		return nil, &NotFoundError{Kind: "article", ID: articleID}
	}
	company, err := s.store.GetCompany(ctx, article.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company %d: %w", article.CompanyID, err)
	}
	if company == nil {
		return nil, &NotFoundError{Kind: "company", ID: article.CompanyID}
	}

	highlights, err := s.generator.ExtractHighlights(ctx, types.HighlightRequest{
		CompanyName: company.Name,
		Title:       article.Title,
		Content:     articleText(article),
	})
	if err != nil {
		return nil, err
	}
	emit(onProgress, runID, StepHighlights, fmt.Sprintf("Extracted %d highlights via %s (score %.0f)",
		len(highlights.Data.Highlights), highlights.Data.Provider, highlights.FinalQualityScore), highlights.Data)

	article.Highlights = highlights.Data.Highlights
	if err := s.store.UpdateHighlights(ctx, article.ID, article.Highlights); err != nil {
		log.Printf("[PIPELINE] Failed to store highlights for article %d: %v", article.ID, err)
	}

	social, err := s.generator.GenerateSocialContent(ctx, types.SocialRequest{
		CompanyName:  company.Name,
		ArticleTitle: article.Title,
		ArticleURL:   article.SourceURL,
		Highlights:   article.Highlights,
		Platforms:    req.Platforms,
	})
	if err != nil {
		return nil, err
	}
	emit(onProgress, runID, StepSocial, fmt.Sprintf("Generated %d posts via %s (score %.0f)",
		len(social.Data.Posts), social.Data.Provider, social.FinalQualityScore), social.Data)

	content := make([]types.SocialContent, 0, len(social.Data.Posts))
	for _, post := range social.Data.Posts {
		sc := types.SocialContent{
			ArticleID:      article.ID,
			Platform:       post.Platform,
			Content:        post.Content,
			Hashtags:       post.Hashtags,
			CharacterCount: post.CharacterCount,
		}
		if err := s.store.UpsertSocialContent(ctx, &sc); err != nil {
			log.Printf("[PIPELINE] Failed to store %s post for article %d: %v", post.Platform, article.ID, err)
		}
		content = append(content, sc)
	}
	emit(onProgress, runID, StepStore, fmt.Sprintf("Stored %d posts", len(content)), nil)

	s.publish(ctx, events.SubjectContentGenerated, events.ContentGenerated{
		ArticleID:         article.ID,
		CompanyID:         company.ID,
		Platforms:         req.Platforms,
		HighlightProvider: highlights.Data.Provider,
		SocialProvider:    social.Data.Provider,
		QualityScore:      social.FinalQualityScore,
	})

	return &GenerationResult{
		Article:    *article,
		Highlights: highlights,
		Social:     social,
		Content:    content,
	}, nil
}

// articleText is the text sent for highlight extraction; the title stands in
// when the body is empty.
func articleText(a *types.NewsArticle) string {
	if a.Body == "" {
		return a.Title
	}
	return a.Body
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
