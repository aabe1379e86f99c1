package generation

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/company-pulse/internal/fanout"
	"github.com/jonathan/company-pulse/internal/metrics"
	"github.com/jonathan/company-pulse/internal/quality"
	"github.com/jonathan/company-pulse/internal/types"
)

// Operation names used in logs and metrics.
const (
	OpHighlights = "highlights"
	OpSocial     = "social"
)

// Scorer rates generation output. *quality.Validator implements it.
type Scorer interface {
	ValidateHighlights(highlights []types.Highlight, companyName string) *quality.Report
	ValidateSocialContent(resp *types.SocialResponse, requested []types.Platform, companyName string) *quality.Report
}

// Config tunes the orchestrator.
type Config struct {
	HighlightThreshold float64
	SocialThreshold    float64
	CallTimeout        time.Duration
	Cooldown           time.Duration
	HealthTimeout      time.Duration
}

// DefaultConfig returns the default orchestrator configuration.
func DefaultConfig() Config {
	return Config{
		HighlightThreshold: quality.DefaultThreshold,
		SocialThreshold:    quality.DefaultThreshold,
		CallTimeout:        60 * time.Second,
		Cooldown:           DefaultCooldown,
		HealthTimeout:      DefaultHealthTimeout,
	}
}

// Outcome is a generation result with its provenance.
type Outcome[T any] struct {
	Data            T                         `json:"data"`
	PrimaryAttempt  types.GenerationAttempt   `json:"primary_attempt"`
	FallbackAttempt *types.GenerationAttempt  `json:"fallback_attempt,omitempty"`
	Attempts        []types.GenerationAttempt `json:"attempts"`
	// FinalQualityScore is the score of Data, 0-100.
	FinalQualityScore   float64         `json:"final_quality_score"`
	Report              *quality.Report `json:"quality_report"`
	Accepted            bool            `json:"accepted"`
	TotalProcessingTime time.Duration   `json:"total_processing_time"`
}

// HighlightOutcome is the result of ExtractHighlights.
type HighlightOutcome = Outcome[*types.HighlightResponse]

// SocialOutcome is the result of GenerateSocialContent.
type SocialOutcome = Outcome[*types.SocialResponse]

// Orchestrator tries providers one at a time until one produces output that
// passes the quality threshold.
type Orchestrator struct {
	providers []Provider
	scorer    Scorer
	health    *HealthCache
	cfg       Config
}

// NewOrchestrator builds an orchestrator. A nil scorer uses a quality.Validator
// with the configured thresholds; a nil health cache gets a fresh one.
func NewOrchestrator(providers []Provider, scorer Scorer, health *HealthCache, cfg Config) *Orchestrator {
	if scorer == nil {
		scorer = &quality.Validator{
			HighlightThreshold: cfg.HighlightThreshold,
			SocialThreshold:    cfg.SocialThreshold,
		}
	}
	if health == nil {
		health = NewHealthCache(cfg.Cooldown)
	}
	return &Orchestrator{
		providers: providers,
		scorer:    scorer,
		health:    health,
		cfg:       cfg,
	}
}

// Providers returns the configured providers.
func (o *Orchestrator) Providers() []Provider {
	return o.providers
}

// Health returns the shared health cache.
func (o *Orchestrator) Health() *HealthCache {
	return o.health
}

// CheckHealth probes all providers and returns their states.
func (o *Orchestrator) CheckHealth(ctx context.Context) []ProviderHealth {
	return o.health.CheckAll(ctx, o.providers, o.cfg.HealthTimeout)
}

// ExtractHighlights extracts highlights with quality-driven fallback.
func (o *Orchestrator) ExtractHighlights(ctx context.Context, req types.HighlightRequest) (*HighlightOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return run(ctx, o, OpHighlights,
		func(ctx context.Context, p Provider) (*types.HighlightResponse, error) {
			return p.ExtractHighlights(ctx, req)
		},
		func(resp *types.HighlightResponse) *quality.Report {
			return o.scorer.ValidateHighlights(resp.Highlights, req.CompanyName)
		},
	)
}

// GenerateSocialContent writes posts with quality-driven fallback.
func (o *Orchestrator) GenerateSocialContent(ctx context.Context, req types.SocialRequest) (*SocialOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return run(ctx, o, OpSocial,
		func(ctx context.Context, p Provider) (*types.SocialResponse, error) {
			return p.GenerateSocialContent(ctx, req)
		},
		func(resp *types.SocialResponse) *quality.Report {
			return o.scorer.ValidateSocialContent(resp, req.Platforms, req.CompanyName)
		},
	)
}

// run walks the provider order. It returns the first acceptable result, else
// the best-scoring one, and fails only when no provider returned anything.
func run[T any](
	ctx context.Context,
	o *Orchestrator,
	op string,
	call func(context.Context, Provider) (T, error),
	score func(T) *quality.Report,
) (*Outcome[T], error) {
	start := time.Now()

	order := o.health.Order(o.providers)
	if len(order) == 0 {
		return nil, &ProviderError{Provider: "none", Code: CodeNotConfigured, Message: "no generation provider is configured"}
	}

	var (
		best     *Outcome[T]
		attempts []types.GenerationAttempt
		lastErr  *ProviderError
	)

	for _, p := range order {
		if err := ctx.Err(); err != nil {
			return nil, abandoned(op, err)
		}

		res := fanout.Run(ctx, o.cfg.CallTimeout, []fanout.Task[T]{{
			Name: p.Name(),
			Run: func(ctx context.Context) (T, error) {
				return call(ctx, p)
			},
		}})[0]

		attempt := types.GenerationAttempt{Provider: p.Name(), Duration: res.Duration}

		if res.Err != nil {
			// The caller gave up; the provider is not at fault.
			if err := ctx.Err(); err != nil {
				return nil, abandoned(op, err)
			}
			lastErr = asProviderError(p.Name(), res.Err)
			attempt.Error = lastErr.Error()
			attempts = append(attempts, attempt)
			o.health.RecordFailure(p.Name(), res.Duration, lastErr)
			metrics.ObserveProviderAttempt(p.Name(), op, false, 0, res.Duration)
			log.Printf("[GENERATION] %s via %s failed: %v", op, p.Name(), lastErr)
			continue
		}

		report := score(res.Value)
		attempt.Success = true
		attempt.QualityScore = report.Score
		attempts = append(attempts, attempt)
		o.health.RecordSuccess(p.Name(), res.Duration)
		metrics.ObserveProviderAttempt(p.Name(), op, true, report.Score, res.Duration)

		if best == nil || better(report, best) {
			best = &Outcome[T]{
				Data:              res.Value,
				FinalQualityScore: report.Score,
				Report:            report,
				Accepted:          report.IsAcceptable,
			}
		}

		if report.IsAcceptable {
			log.Printf("[GENERATION] %s via %s accepted (score %.0f)", op, p.Name(), report.Score)
			break
		}
		log.Printf("[GENERATION] %s via %s below threshold (score %.0f, %d issues)",
			op, p.Name(), report.Score, len(report.Issues))
	}

	if len(attempts) > 1 {
		metrics.FallbacksTotal.WithLabelValues(op).Inc()
	}

	if best == nil {
		return nil, &ProviderError{
			Provider: lastErr.Provider,
			Code:     CodeAllProvidersFailed,
			Message:  fmt.Sprintf("all %d providers failed; last error from %s", len(attempts), lastErr.Provider),
			Cause:    lastErr,
		}
	}

	best.Attempts = attempts
	best.PrimaryAttempt = attempts[0]
	if len(attempts) > 1 {
		fallback := attempts[len(attempts)-1]
		best.FallbackAttempt = &fallback
	}
	best.TotalProcessingTime = time.Since(start)
	return best, nil
}

func abandoned(op string, err error) error {
	log.Printf("[GENERATION] %s abandoned by caller: %v", op, err)
	return fmt.Errorf("%s abandoned: %w", op, err)
}

// better prefers an acceptable report, then the higher score.
func better[T any](report *quality.Report, best *Outcome[T]) bool {
	if report.IsAcceptable != best.Accepted {
		return report.IsAcceptable
	}
	return report.Score > best.FinalQualityScore
}
