// Package aggregator fans a company query out to every news source and merges
// the results into one deduplicated, relevance-sorted list.
package aggregator

import (
	"context"
	"log"
	"time"

	"github.com/jonathan/company-pulse/internal/fanout"
	"github.com/jonathan/company-pulse/internal/metrics"
	"github.com/jonathan/company-pulse/internal/sources"
	"github.com/jonathan/company-pulse/internal/types"
)

// Default configuration values.
const (
	DefaultSourceTimeout = 10 * time.Second
	DefaultMaxPerSource  = 50
)

// Config tunes the aggregator.
type Config struct {
	// SourceTimeout bounds each connector call.
	SourceTimeout time.Duration `json:"source_timeout" yaml:"source_timeout"`
	// MaxPerSource caps every connector's quota regardless of maxArticles.
	MaxPerSource int `json:"max_per_source" yaml:"max_per_source"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SourceTimeout: DefaultSourceTimeout,
		MaxPerSource:  DefaultMaxPerSource,
	}
}

// Result is the merged output of one aggregation.
type Result struct {
	Articles []types.RawArticle `json:"articles"`
	// Sources lists connectors that answered without error, in connector order.
	Sources []string         `json:"sources"`
	Errors  []*sources.Error `json:"errors,omitempty"`
}

// Aggregator queries a fixed set of connectors.
type Aggregator struct {
	connectors []sources.Connector
	cfg        Config
	now        func() time.Time
}

// New creates an aggregator. Zero config values fall back to defaults.
func New(connectors []sources.Connector, cfg Config) *Aggregator {
	if cfg.SourceTimeout <= 0 {
		cfg.SourceTimeout = DefaultSourceTimeout
	}
	if cfg.MaxPerSource <= 0 {
		cfg.MaxPerSource = DefaultMaxPerSource
	}
	return &Aggregator{connectors: connectors, cfg: cfg, now: time.Now}
}

// Connectors returns the configured connector names.
func (a *Aggregator) Connectors() []string {
	names := make([]string, len(a.connectors))
	for i, c := range a.connectors {
		names[i] = c.Name()
	}
	return names
}

// Quota returns the per-connector article cap for maxArticles.
func (a *Aggregator) Quota(maxArticles int) int {
	if len(a.connectors) == 0 || maxArticles <= 0 {
		return 0
	}
	n := len(a.connectors)
	return min((maxArticles+n-1)/n, a.cfg.MaxPerSource)
}

// Aggregate searches every connector concurrently and merges the results.
// Individual failures are reported in Result.Errors; an error is returned only
// when every connector failed and no article was collected.
func (a *Aggregator) Aggregate(ctx context.Context, companyName string, maxArticles int) (*Result, error) {
	quota := a.Quota(maxArticles)
	res := &Result{}
	if quota == 0 {
		return res, nil
	}

	tasks := make([]fanout.Task[[]types.RawArticle], len(a.connectors))
	for i, c := range a.connectors {
		tasks[i] = fanout.Task[[]types.RawArticle]{
			Name: c.Name(),
			Run: func(ctx context.Context) ([]types.RawArticle, error) {
				return c.Search(ctx, companyName, quota)
			},
		}
	}

	log.Printf("[AGGREGATOR] Searching %d sources for %q (quota %d)", len(tasks), companyName, quota)
	outcomes := fanout.Run(ctx, a.cfg.SourceTimeout, tasks)

	var merged []types.RawArticle
	for _, o := range outcomes {
		if o.Err != nil {
			srcErr := sources.AsError(o.Name, o.Err)
			res.Errors = append(res.Errors, srcErr)
			status := metrics.StatusError
			if srcErr.Code == sources.CodeTimeout {
				status = metrics.StatusTimeout
			}
			metrics.ObserveSourceFetch(o.Name, status, 0, o.Duration)
			log.Printf("[AGGREGATOR] Source %s failed: %v", o.Name, srcErr)
			continue
		}

		articles := o.Value
		if len(articles) > quota {
			articles = articles[:quota]
		}
		res.Sources = append(res.Sources, o.Name)
		metrics.ObserveSourceFetch(o.Name, metrics.StatusSuccess, len(articles), o.Duration)
		merged = append(merged, articles...)
	}

	if len(res.Errors) == len(a.connectors) && len(merged) == 0 {
		return res, res.Errors[0]
	}

	unique := Dedup(merged)
	SortByRelevance(unique, companyName, a.now())
	if len(unique) > maxArticles {
		unique = unique[:maxArticles]
	}
	res.Articles = unique

	log.Printf("[AGGREGATOR] %d raw, %d unique, %d returned for %q (%d source errors)",
		len(merged), len(unique), len(res.Articles), companyName, len(res.Errors))
	return res, nil
}
