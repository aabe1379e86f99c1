package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/jonathan/company-pulse/internal/aggregator"
	"github.com/jonathan/company-pulse/internal/cache"
	"github.com/jonathan/company-pulse/internal/config"
	"github.com/jonathan/company-pulse/internal/db"
	"github.com/jonathan/company-pulse/internal/events"
	"github.com/jonathan/company-pulse/internal/fetch"
	"github.com/jonathan/company-pulse/internal/generation"
	"github.com/jonathan/company-pulse/internal/llm"
	"github.com/jonathan/company-pulse/internal/pipeline"
	"github.com/jonathan/company-pulse/internal/sources"
)

// browserTimeout bounds one headless render of a newsroom page.
const browserTimeout = 30 * time.Second

// app holds the wired services shared by every command.
type app struct {
	cfg          *config.Config
	store        db.Store
	cache        cache.Cache
	events       events.Publisher
	providers    []*generation.LLMProvider
	orchestrator *generation.Orchestrator
	news         *pipeline.Service
}

// loadConfig loads the config file named by --config, with environment
// overrides and defaults applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

// newApp connects the configured backends. Without a database URL, Redis
// address or NATS URL it falls back to in-memory storage, an in-process
// cache and no events.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	a := &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.DatabaseURL != "" {
		store, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.store = store
	} else {
		log.Println("[APP] DATABASE_URL not set, keeping data in memory")
		a.store = db.NewMemory()
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.cache = rc
	} else {
		a.cache = cache.NewMemory()
	}

	if cfg.NATS.URL != "" {
		pub, err := events.NewNATSPublisher(cfg.NATS)
		if err != nil {
			return nil, err
		}
		a.events = pub
	} else {
		a.events = events.Nop{}
	}

	a.providers, err = buildProviders(ctx, cfg)
	if err != nil {
		return nil, err
	}
	generic := make([]generation.Provider, len(a.providers))
	for i, p := range a.providers {
		generic[i] = p
	}
	a.orchestrator = generation.NewOrchestrator(generic, nil, generation.NewHealthCache(cfg.Cooldown()), generation.Config{
		HighlightThreshold: cfg.Generation.HighlightThreshold,
		SocialThreshold:    cfg.Generation.SocialThreshold,
		CallTimeout:        cfg.CallTimeout(),
		Cooldown:           cfg.Cooldown(),
		HealthTimeout:      cfg.HealthTimeout(),
	})

	agg := aggregator.New(buildConnectors(cfg), aggregator.Config{
		SourceTimeout: cfg.SourceTimeout(),
		MaxPerSource:  cfg.Sources.MaxPerSource,
	})

	a.news, err = pipeline.NewService(pipeline.Deps{
		Store:     a.store,
		Searcher:  agg,
		Generator: a.orchestrator,
		Cache:     a.cache,
		Events:    a.events,
	}, pipeline.Config{
		Criteria: cfg.Processing,
		CacheTTL: cfg.CacheTTL(),
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Close releases every backend connection.
func (a *app) Close() {
	for _, p := range a.providers {
		if err := p.Close(); err != nil {
			log.Printf("[APP] Failed to close provider %s: %v", p.Name(), err)
		}
	}
	if a.events != nil {
		a.events.Close()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Printf("[APP] Failed to close cache: %v", err)
		}
	}
	if a.store != nil {
		a.store.Close()
	}
}

// buildConnectors returns the news sources enabled by cfg. NewsAPI needs a
// key and the newsroom scraper needs at least one configured newsroom; the
// RSS search feeds are always on.
func buildConnectors(cfg *config.Config) []sources.Connector {
	opts := fetch.DefaultOptions()
	opts.Timeout = cfg.SourceTimeout()

	var connectors []sources.Connector
	if cfg.Sources.NewsAPIKey != "" {
		connectors = append(connectors, sources.NewNewsAPIConnector(cfg.Sources.NewsAPIKey))
	} else {
		log.Println("[APP] NEWSAPI_KEY not set, NewsAPI source disabled")
	}

	feeds := cfg.Sources.RSSFeeds
	if len(feeds) == 0 {
		feeds = sources.DefaultRSSFeeds
	}
	connectors = append(connectors, sources.NewRSSConnector("rss", feeds, opts))

	if len(cfg.Sources.Newsrooms) > 0 {
		var renderer fetch.Renderer
		if cfg.Sources.UseBrowser {
			renderer = &fetch.Browser{Timeout: browserTimeout, Verbose: cfg.Verbose}
		}
		connectors = append(connectors, sources.NewNewsroomConnector(cfg.Sources.Newsrooms, opts, renderer))
	}
	return connectors
}

// buildProviders creates one generation provider per name in the configured
// order. The position in the order is the provider's priority. Providers
// without an API key are skipped.
func buildProviders(ctx context.Context, cfg *config.Config) ([]*generation.LLMProvider, error) {
	var providers []*generation.LLMProvider
	for priority, name := range cfg.Providers.Order {
		key := cfg.ProviderKey(name)
		if key == "" {
			log.Printf("[APP] No API key for provider %s, skipping", name)
			continue
		}

		llmCfg, err := llm.ConfigFor(llm.Provider(name))
		if err != nil {
			return nil, err
		}
		if llmCfg.Provider == llm.ProviderOpenAI && cfg.Providers.OpenAIBaseURL != "" {
			llmCfg.BaseURL = cfg.Providers.OpenAIBaseURL
		}

		client, err := llm.NewClient(ctx, llmCfg, key)
		if err != nil {
			for _, p := range providers {
				_ = p.Close()
			}
			return nil, fmt.Errorf("failed to create %s client: %w", name, err)
		}
		providers = append(providers, generation.NewLLMProvider(name, client, priority).WithTier(llm.ModelTier(cfg.Providers.Tier)))
	}

	if len(providers) == 0 {
		log.Println("[APP] No generation provider configured, highlight and post generation will fail")
	}
	return providers, nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
