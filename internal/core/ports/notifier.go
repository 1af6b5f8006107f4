package ports

import (
	"context"

	"github.com/socialfeed/gateway/internal/core/domain"
)

// Notifier publishes committed changes to live observers. Publish must not
// block on delivery and never fails; undeliverable events are dropped.
type Notifier interface {
	Publish(ctx context.Context, event domain.Event)
}

// AssetCleaner schedules best-effort removal of a stored image.
type AssetCleaner interface {
	Schedule(ref string)
}

// IdempotencyStore remembers the result of a create keyed by caller and
// client-supplied key.
type IdempotencyStore interface {
	Lookup(ctx context.Context, scope, key string) (string, bool, error)
	Remember(ctx context.Context, scope, key, value string) error
}
