// Package scheduler refreshes news for a watchlist of companies on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jonathan/company-pulse/internal/pipeline"
	"github.com/jonathan/company-pulse/internal/types"
)

// WatchlistJob is the name of the watchlist refresh job.
const WatchlistJob = "watchlist"

// Defaults.
const (
	DefaultSchedule   = "0 */6 * * *"
	DefaultJobTimeout = 30 * time.Minute
)

// Job represents a scheduled task
type Job func(ctx context.Context) error

// NewsFetcher runs a news query. *pipeline.Service implements it.
type NewsFetcher interface {
	FetchNews(ctx context.Context, req types.NewsQueryRequest) (*pipeline.NewsResult, error)
}

// Config configures the watchlist.
type Config struct {
	Schedule    string        `json:"schedule" yaml:"schedule"`
	Timezone    string        `json:"timezone" yaml:"timezone"`
	Companies   []string      `json:"companies" yaml:"companies"`
	MaxArticles int           `json:"max_articles" yaml:"max_articles"`
	JobTimeout  time.Duration `json:"-" yaml:"-"`
}

// Scheduler manages periodic tasks
type Scheduler struct {
	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[string]cron.EntryID
	fetcher NewsFetcher
	cfg     Config
}

// New creates a scheduler in the configured timezone (UTC when unset).
func New(fetcher NewsFetcher, cfg Config) (*Scheduler, error) {
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %s: %w", tz, err)
	}
	if cfg.Schedule == "" {
		cfg.Schedule = DefaultSchedule
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultJobTimeout
	}

	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		jobs:    make(map[string]cron.EntryID),
		fetcher: fetcher,
		cfg:     cfg,
	}, nil
}

// AddJob adds a job with a cron schedule such as "0 7 * * *".
func (s *Scheduler) AddJob(name, schedule string, job Job) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
		defer cancel()

		log.Printf("[scheduler] Starting job: %s", name)
		start := time.Now()

		if err := job(ctx); err != nil {
			log.Printf("[scheduler] Job %s failed: %v", name, err)
		} else {
			log.Printf("[scheduler] Job %s completed in %v", name, time.Since(start))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule job %s: %w", name, err)
	}

	s.mu.Lock()
	if old, ok := s.jobs[name]; ok {
		s.cron.Remove(old)
	}
	s.jobs[name] = entryID
	s.mu.Unlock()

	log.Printf("[scheduler] Added job: %s (schedule: %s)", name, schedule)
	return nil
}

// AddWatchlist schedules RefreshWatchlist on the configured schedule.
func (s *Scheduler) AddWatchlist() error {
	if len(s.cfg.Companies) == 0 {
		return errors.New("watchlist is empty")
	}
	return s.AddJob(WatchlistJob, s.cfg.Schedule, s.RefreshWatchlist)
}

// RefreshWatchlist fetches fresh news for every watched company in turn.
// Failures are logged per company; an error is returned only when every
// company failed.
func (s *Scheduler) RefreshWatchlist(ctx context.Context) error {
	var errs []error
	for _, company := range s.cfg.Companies {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := s.fetcher.FetchNews(ctx, types.NewsQueryRequest{
			Company:     company,
			MaxArticles: s.cfg.MaxArticles,
			SkipCache:   true,
		})
		if err != nil {
			log.Printf("[scheduler] Refresh for %q failed: %v", company, err)
			errs = append(errs, fmt.Errorf("%s: %w", company, err))
			continue
		}
		log.Printf("[scheduler] Refreshed %q: %d articles, %d new", company, len(res.Articles), res.Stored)
	}

	if len(errs) > 0 && len(errs) == len(s.cfg.Companies) {
		return errors.Join(errs...)
	}
	return nil
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entryID, ok := s.jobs[name]; ok {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
		log.Printf("[scheduler] Removed job: %s", name)
	}
}

// Start begins running scheduled jobs
func (s *Scheduler) Start() {
	log.Println("[scheduler] Starting scheduler")
	s.cron.Start()
}

// Stop halts the scheduler. The returned context is done when running jobs finish.
func (s *Scheduler) Stop() context.Context {
	log.Println("[scheduler] Stopping scheduler")
	return s.cron.Stop()
}

// JobInfo contains information about a scheduled job
type JobInfo struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run"`
}

// ListJobs returns info about scheduled jobs, sorted by name.
func (s *Scheduler) ListJobs() []JobInfo {
	entries := s.cron.Entries()

	s.mu.Lock()
	infos := make([]JobInfo, 0, len(s.jobs))
	for name, entryID := range s.jobs {
		for _, entry := range entries {
			if entry.ID == entryID {
				infos = append(infos, JobInfo{Name: name, NextRun: entry.Next, LastRun: entry.Prev})
				break
			}
		}
	}
	s.mu.Unlock()

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
