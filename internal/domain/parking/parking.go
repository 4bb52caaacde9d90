package parking

import (
	"context"
	"time"

	"Parking/internal/domain/shared"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Lot struct {
	Id        ulid.ULID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Capacity  int       `json:"capacity"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Spot struct {
	Id    ulid.ULID `json:"id"`
	LotId ulid.ULID `json:"lotId"`
	Code  string    `json:"code"`
	// VehicleType restricts the spot to one vehicle type. Empty accepts any.
	VehicleType shared.VehicleType `json:"vehicleType"`
	IsOccupied  bool               `json:"isOccupied"`
	IsActive    bool               `json:"isActive"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func (s *Spot) Accepts(vt shared.VehicleType) bool {
	return s.VehicleType == "" || s.VehicleType == vt
}

type Occupancy struct {
	LotId          ulid.ULID `json:"lotId"`
	Capacity       int       `json:"capacity"`
	Spots          int64     `json:"spots"`
	OccupiedSpots  int64     `json:"occupiedSpots"`
	ActiveSessions int64     `json:"activeSessions"`
	Available      int64     `json:"available"`
	Rate           float64   `json:"rate"`
}

type Repository interface {
	CreateLot(ctx context.Context, lot *Lot) error
	UpdateLot(ctx context.Context, lot *Lot) error
	DeleteLot(ctx context.Context, id ulid.ULID) error
	GetLot(ctx context.Context, id ulid.ULID) (*Lot, error)
	ListLots(ctx context.Context, page query.Page) (*query.Result[*Lot], error)

	CreateSpot(ctx context.Context, spot *Spot) error
	UpdateSpot(ctx context.Context, spot *Spot) error
	GetSpot(ctx context.Context, id ulid.ULID) (*Spot, error)
	ListSpots(ctx context.Context, lotID ulid.ULID) ([]*Spot, error)
	// Occupy flips a free active spot to occupied and fails with
	// ErrSpotUnavailable when another writer got there first.
	Occupy(ctx context.Context, spotID ulid.ULID) error
	Release(ctx context.Context, spotID ulid.ULID) error
}

type OccupancyCounter interface {
	CountSpots(ctx context.Context, lotID ulid.ULID) (total int64, occupied int64, err error)
	CountActiveSessions(ctx context.Context, lotID ulid.ULID) (int64, error)
}
