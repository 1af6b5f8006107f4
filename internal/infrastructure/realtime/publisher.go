package realtime

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/core/domain"
	"github.com/socialfeed/gateway/internal/infrastructure/queue"
	"github.com/socialfeed/gateway/internal/pkg/metrics"
)

// eventsKey routes every event to the same dispatcher worker so observers
// receive them in commit order.
const eventsKey = "feed-events"

// Broadcaster delivers an event to observers, locally or across instances.
type Broadcaster interface {
	Broadcast(event domain.Event)
}

// Enqueuer accepts background jobs without blocking.
type Enqueuer interface {
	Enqueue(job queue.Job) bool
}

// Publisher implements ports.Notifier. Publish only enqueues; delivery runs
// on a dispatcher worker.
type Publisher struct {
	jobs Enqueuer
	out  Broadcaster
	log  zerolog.Logger
}

func NewPublisher(jobs Enqueuer, out Broadcaster, log zerolog.Logger) *Publisher {
	return &Publisher{jobs: jobs, out: out, log: log}
}

func (p *Publisher) Publish(_ context.Context, event domain.Event) {
	accepted := p.jobs.Enqueue(queue.Job{
		Key:  eventsKey,
		Name: "broadcast",
		Run: func(context.Context) error {
			p.out.Broadcast(event)
			return nil
		},
	})
	if !accepted {
		p.log.Warn().Str("event_kind", event.Kind).Msg("change event dropped")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(event.Kind).Inc()
}
