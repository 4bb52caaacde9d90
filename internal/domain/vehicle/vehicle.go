package vehicle

import (
	"context"
	"time"

	"Parking/internal/domain/shared"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Vehicle struct {
	Id              ulid.ULID          `json:"id"`
	PlateNumber     string             `json:"plateNumber"`
	VehicleType     shared.VehicleType `json:"vehicleType"`
	OwnerName       string             `json:"ownerName"`
	OwnerPhone      string             `json:"ownerPhone"`
	CreditAccountId *ulid.ULID         `json:"creditAccountId,omitempty"`
	IsBlacklisted   bool               `json:"isBlacklisted"`
	Description     string             `json:"description"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type Filter struct {
	VehicleType   *shared.VehicleType
	IsBlacklisted *bool
	Search        *string
}

type Repository interface {
	Create(ctx context.Context, v *Vehicle) error
	Update(ctx context.Context, v *Vehicle) error
	Delete(ctx context.Context, id ulid.ULID) error
	GetByID(ctx context.Context, id ulid.ULID) (*Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*Vehicle, error)
	List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Vehicle], error)
}
