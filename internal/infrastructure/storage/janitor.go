package storage

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/socialfeed/gateway/internal/infrastructure/queue"
	"github.com/socialfeed/gateway/internal/pkg/metrics"
)

// Remover deletes a stored asset.
type Remover interface {
	Remove(ref string) (bool, error)
}

// Enqueuer accepts background jobs without blocking.
type Enqueuer interface {
	Enqueue(job queue.Job) bool
}

// Janitor implements ports.AssetCleaner. Removal runs on a dispatcher worker
// and failures never reach the request that scheduled it.
type Janitor struct {
	store Remover
	jobs  Enqueuer
	log   zerolog.Logger
}

func NewJanitor(store Remover, jobs Enqueuer, log zerolog.Logger) *Janitor {
	return &Janitor{store: store, jobs: jobs, log: log}
}

func (j *Janitor) Schedule(ref string) {
	if ref == "" {
		return
	}
	j.jobs.Enqueue(queue.Job{
		Key:  ref,
		Name: "asset_cleanup",
		Run: func(context.Context) error {
			j.remove(ref)
			return nil
		},
	})
}

func (j *Janitor) remove(ref string) {
	removed, err := j.store.Remove(ref)
	switch {
	case err != nil:
		metrics.AssetCleanupsTotal.WithLabelValues("failed").Inc()
		j.log.Warn().Err(err).Str("image", ref).Msg("image cleanup failed")
	case removed:
		metrics.AssetCleanupsTotal.WithLabelValues("removed").Inc()
		j.log.Debug().Str("image", ref).Msg("image removed")
	default:
		metrics.AssetCleanupsTotal.WithLabelValues("missing").Inc()
	}
}
