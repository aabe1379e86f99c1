package db

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonathan/company-pulse/internal/types"
)

// Memory is an in-process Store for tests and runs without a database.
type Memory struct {
	mu       sync.RWMutex
	now      func() time.Time
	comps    map[int64]types.Company
	articles map[int64]types.NewsArticle
	social   map[int64]types.SocialContent
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		now:      time.Now,
		comps:    make(map[int64]types.Company),
		articles: make(map[int64]types.NewsArticle),
		social:   make(map[int64]types.SocialContent),
	}
}

// Close is a no-op.
func (m *Memory) Close() {}

func nextID[T any](rows map[int64]T) int64 {
	var highest int64
	for id := range rows {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}

func copyCompany(c types.Company) types.Company {
	c.Aliases = append([]string{}, c.Aliases...)
	if c.Ticker != nil {
		t := *c.Ticker
		c.Ticker = &t
	}
	return c
}

func copyArticle(a types.NewsArticle) types.NewsArticle {
	a.Highlights = append([]types.Highlight{}, a.Highlights...)
	return a
}

func copySocial(sc types.SocialContent) types.SocialContent {
	sc.Hashtags = append([]string{}, sc.Hashtags...)
	return sc
}

func (m *Memory) nameTaken(name string, except int64) bool {
	for id, c := range m.comps {
		if id != except && strings.EqualFold(c.Name, name) {
			return true
		}
	}
	return false
}

// ListCompanies returns every company ordered by id.
func (m *Memory) ListCompanies(_ context.Context) ([]types.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Company, 0, len(m.comps))
	for _, c := range m.comps {
		out = append(out, copyCompany(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCompany returns the company with id, or nil.
func (m *Memory) GetCompany(_ context.Context, id int64) (*types.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.comps[id]
	if !ok {
		return nil, nil
	}
	c = copyCompany(c)
	return &c, nil
}

// GetCompanyByName returns the company whose name matches case-insensitively, or nil.
func (m *Memory) GetCompanyByName(_ context.Context, name string) (*types.Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	name = strings.TrimSpace(name)
	for _, c := range m.comps {
		if strings.EqualFold(c.Name, name) {
			c = copyCompany(c)
			return &c, nil
		}
	}
	return nil, nil
}

// CreateCompany stores c and fills in its id and timestamps.
func (m *Memory) CreateCompany(_ context.Context, c *types.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTaken(c.Name, 0) {
		return fmt.Errorf("company %q: %w", c.Name, ErrDuplicate)
	}
	if c.Aliases == nil {
		c.Aliases = []string{}
	}
	now := m.now()
	c.ID = nextID(m.comps)
	c.CreatedAt, c.UpdatedAt = now, now
	m.comps[c.ID] = copyCompany(*c)
	return nil
}

// UpdateCompany stores c's name, aliases and ticker.
func (m *Memory) UpdateCompany(_ context.Context, c *types.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.comps[c.ID]
	if !ok {
		return fmt.Errorf("company %d: %w", c.ID, ErrNotFound)
	}
	if m.nameTaken(c.Name, c.ID) {
		return fmt.Errorf("company %q: %w", c.Name, ErrDuplicate)
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = m.now()
	m.comps[c.ID] = copyCompany(*c)
	return nil
}

// DeleteCompany removes a company together with its articles and social content.
func (m *Memory) DeleteCompany(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comps[id]; !ok {
		return fmt.Errorf("company %d: %w", id, ErrNotFound)
	}
	delete(m.comps, id)
	for aid, a := range m.articles {
		if a.CompanyID == id {
			m.deleteArticleLocked(aid)
		}
	}
	return nil
}

// GetArticle returns the article with id, or nil.
func (m *Memory) GetArticle(_ context.Context, id int64) (*types.NewsArticle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.articles[id]
	if !ok {
		return nil, nil
	}
	a = copyArticle(a)
	return &a, nil
}

// GetArticleByURL returns the article stored under url, or nil.
func (m *Memory) GetArticleByURL(_ context.Context, url string) (*types.NewsArticle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if a, ok := m.findURL(url); ok {
		a = copyArticle(a)
		return &a, nil
	}
	return nil, nil
}

func (m *Memory) findURL(url string) (types.NewsArticle, bool) {
	for _, a := range m.articles {
		if a.SourceURL == url {
			return a, true
		}
	}
	return types.NewsArticle{}, false
}

// ListArticles returns the articles matching f, newest first.
func (m *Memory) ListArticles(_ context.Context, f ArticleFilter) ([]types.NewsArticle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []types.NewsArticle
	for _, a := range m.articles {
		switch {
		case f.CompanyID > 0 && a.CompanyID != f.CompanyID:
			continue
		case f.SourceName != "" && a.SourceName != f.SourceName:
			continue
		case !f.Since.IsZero() && a.PublishedAt.Before(f.Since):
			continue
		case search != "" && !strings.Contains(strings.ToLower(a.Title), search):
			continue
		}
		out = append(out, copyArticle(a))
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].PublishedAt.After(out[j].PublishedAt)
		}
		return out[i].ID > out[j].ID
	})

	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[max(f.Offset, 0):]
	if len(out) > f.limit() {
		out = out[:f.limit()]
	}
	return out, nil
}

func (m *Memory) insertArticleLocked(a *types.NewsArticle) bool {
	if _, dup := m.findURL(a.SourceURL); dup {
		return false
	}
	if a.Highlights == nil {
		a.Highlights = []types.Highlight{}
	}
	if a.FetchedAt.IsZero() {
		a.FetchedAt = m.now()
	}
	a.ID = nextID(m.articles)
	m.articles[a.ID] = copyArticle(*a)
	return true
}

// CreateArticle stores a and fills in its id. An already stored URL returns ErrDuplicate.
func (m *Memory) CreateArticle(_ context.Context, a *types.NewsArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comps[a.CompanyID]; !ok {
		return fmt.Errorf("company %d: %w", a.CompanyID, ErrNotFound)
	}
	if !m.insertArticleLocked(a) {
		return fmt.Errorf("article %q: %w", a.SourceURL, ErrDuplicate)
	}
	return nil
}

// CreateArticles stores articles, skipping URLs already present, and returns
// the inserted records with their ids.
func (m *Memory) CreateArticles(_ context.Context, articles []types.NewsArticle) ([]types.NewsArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range articles {
		if _, ok := m.comps[a.CompanyID]; !ok {
			return nil, fmt.Errorf("company %d: %w", a.CompanyID, ErrNotFound)
		}
	}

	var created []types.NewsArticle
	for i := range articles {
		a := articles[i]
		if m.insertArticleLocked(&a) {
			created = append(created, a)
		}
	}
	return created, nil
}

// UpdateHighlights replaces the highlight list of an article.
func (m *Memory) UpdateHighlights(_ context.Context, id int64, highlights []types.Highlight) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.articles[id]
	if !ok {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	a.Highlights = append([]types.Highlight{}, highlights...)
	m.articles[id] = a
	return nil
}

// DeleteArticle removes an article and its social content.
func (m *Memory) DeleteArticle(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[id]; !ok {
		return fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	m.deleteArticleLocked(id)
	return nil
}

func (m *Memory) deleteArticleLocked(id int64) {
	delete(m.articles, id)
	for sid, sc := range m.social {
		if sc.ArticleID == id {
			delete(m.social, sid)
		}
	}
}

// UpsertSocialContent stores sc, replacing any earlier post for the same
// article and platform.
func (m *Memory) UpsertSocialContent(_ context.Context, sc *types.SocialContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[sc.ArticleID]; !ok {
		return fmt.Errorf("article %d: %w", sc.ArticleID, ErrNotFound)
	}
	if sc.Hashtags == nil {
		sc.Hashtags = []string{}
	}

	sc.ID = nextID(m.social)
	for id, existing := range m.social {
		if existing.ArticleID == sc.ArticleID && existing.Platform == sc.Platform {
			sc.ID = id
			break
		}
	}
	sc.CreatedAt = m.now()
	m.social[sc.ID] = copySocial(*sc)
	return nil
}

// ListSocialContent returns the stored posts of an article ordered by platform.
func (m *Memory) ListSocialContent(_ context.Context, articleID int64) ([]types.SocialContent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []types.SocialContent
	for _, sc := range m.social {
		if sc.ArticleID == articleID {
			out = append(out, copySocial(sc))
		}
	}
	slices.SortFunc(out, func(a, b types.SocialContent) int {
		return strings.Compare(string(a.Platform), string(b.Platform))
	})
	return out, nil
}
