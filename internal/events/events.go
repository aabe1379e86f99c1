// Package events announces processed news and generated content on NATS.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/company-pulse/internal/types"
)

// Subjects.
const (
	SubjectNewsProcessed    = "company_pulse.news.processed"
	SubjectContentGenerated = "company_pulse.content.generated"
)

const (
	envelopeSource  = "company-pulse"
	envelopeVersion = "1.0"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID        string          `json:"id"`
	Subject   string          `json:"subject"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Data      json.RawMessage `json:"data"`
}

// NewsProcessed is published after a pipeline run stores new articles.
type NewsProcessed struct {
	RunID       string  `json:"run_id"`
	CompanyID   int64   `json:"company_id"`
	CompanyName string  `json:"company_name"`
	ArticleIDs  []int64 `json:"article_ids"`
	Returned    int     `json:"returned"`
	Stored      int     `json:"stored"`
}

// ContentGenerated is published after highlights and posts are stored for an article.
type ContentGenerated struct {
	ArticleID         int64            `json:"article_id"`
	CompanyID         int64            `json:"company_id"`
	Platforms         []types.Platform `json:"platforms"`
	HighlightProvider string           `json:"highlight_provider"`
	SocialProvider    string           `json:"social_provider"`
	QualityScore      float64          `json:"quality_score"`
}

// Publisher sends an event payload on a subject.
type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// NewEnvelope wraps payload with a fresh message id.
func NewEnvelope(subject string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s payload: %w", subject, err)
	}
	return Envelope{
		ID:        uuid.NewString(),
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Source:    envelopeSource,
		Version:   envelopeVersion,
		Data:      data,
	}, nil
}

// Nop discards every event.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, string, any) error { return nil }

// Close does nothing.
func (Nop) Close() {}

// Recorder keeps published envelopes in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Envelope
	// Err, when set, is returned by Publish instead of recording.
	Err error
}

// Publish records the event.
func (r *Recorder) Publish(_ context.Context, subject string, payload any) error {
	if r.Err != nil {
		return r.Err
	}
	env, err := NewEnvelope(subject, payload)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, env)
	return nil
}

// Events returns the recorded envelopes in publish order.
func (r *Recorder) Events() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.events...)
}

// Close does nothing.
func (r *Recorder) Close() {}
