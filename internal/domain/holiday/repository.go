package holiday

import (
	"context"

	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, h *Holiday) error
	Update(ctx context.Context, h *Holiday) error
	Delete(ctx context.Context, id ulid.ULID) error
	GetByID(ctx context.Context, id ulid.ULID) (*Holiday, error)
	List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Holiday], error)
	ListActive(ctx context.Context) ([]*Holiday, error)
}

// CacheInvalidator is notified after calendar writes so fee snapshots can be rebuilt.
type CacheInvalidator interface {
	Invalidate()
}
