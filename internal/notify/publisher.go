package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/constellation/internal/constellation"
)

// DefaultSubject carries view snapshots.
const DefaultSubject = "constellation.updated"

// ErrNoConnection is returned when publishing without a NATS connection.
var ErrNoConnection = errors.New("nats connection not configured")

// Notifier delivers a freshly built view.
type Notifier interface {
	Publish(ctx context.Context, v *constellation.View) error
}

// Publisher sends view snapshots as JSON on a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
	logger  *zap.Logger
	metrics *Metrics
}

// NewPublisher creates a publisher. An empty subject selects DefaultSubject.
func NewPublisher(nc *nats.Conn, subject string, logger *zap.Logger) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		nc:      nc,
		subject: subject,
		logger:  logger,
		metrics: NewMetrics(),
	}
}

// Subject returns the subject snapshots are published on.
func (p *Publisher) Subject() string {
	return p.subject
}

// Publish encodes v and publishes it.
func (p *Publisher) Publish(ctx context.Context, v *constellation.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.nc == nil {
		return ErrNoConnection
	}

	data, err := json.Marshal(v)
	if err != nil {
		p.metrics.PublishErrors.Inc()
		return fmt.Errorf("marshal view: %w", err)
	}

	if err := p.nc.Publish(p.subject, data); err != nil {
		p.metrics.PublishErrors.Inc()
		return fmt.Errorf("publish view: %w", err)
	}

	p.metrics.Published.Inc()
	p.logger.Debug("published view snapshot",
		zap.String("subject", p.subject),
		zap.Int("bytes", len(data)),
		zap.Int("gardens", len(v.GardenSummaries)))
	return nil
}
