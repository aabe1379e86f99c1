package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/jonathan/company-pulse/internal/metrics"
)

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL  string `json:"url" yaml:"url"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// NATSPublisher publishes envelopes on a core NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to NATS.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	name := cfg.Name
	if name == "" {
		name = envelopeSource
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[EVENTS] NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Printf("[EVENTS] NATS reconnected to %s", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	log.Printf("[EVENTS] Connected to NATS at %s", nc.ConnectedUrl())
	return &NATSPublisher{conn: nc}, nil
}

// Publish wraps payload in an Envelope and publishes it. The envelope id is
// also sent as the Nats-Msg-Id header so JetStream consumers can dedupe.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env, err := NewEnvelope(subject, payload)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(subject, "error").Inc()
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		metrics.EventsPublished.WithLabelValues(subject, "error").Inc()
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	msg := nats.NewMsg(subject)
	msg.Header.Set(nats.MsgIdHdr, env.ID)
	msg.Data = data

	if err := p.conn.PublishMsg(msg); err != nil {
		metrics.EventsPublished.WithLabelValues(subject, "error").Inc()
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	metrics.EventsPublished.WithLabelValues(subject, "ok").Inc()
	return nil
}

// Close drains and closes the connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
