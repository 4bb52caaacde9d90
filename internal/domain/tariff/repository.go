package tariff

import (
	"context"

	"Parking/internal/domain/holiday"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Repository interface {
	Create(ctx context.Context, t *Tariff) error
	Update(ctx context.Context, t *Tariff) error
	Delete(ctx context.Context, id ulid.ULID) error
	GetByID(ctx context.Context, id ulid.ULID) (*Tariff, error)
	List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Tariff], error)
	ListActive(ctx context.Context) ([]*Tariff, error)
}

// CalendarSource builds the holiday calendar for fee decisions.
type CalendarSource interface {
	Calendar(ctx context.Context) (*holiday.Calendar, error)
}
