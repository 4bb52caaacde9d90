package reservation

import (
	"context"
	"time"

	"Parking/internal/domain/shared"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a reservation may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Holding statuses block the spot for their window.
func (s Status) Holding() bool {
	return s == StatusPending || s == StatusConfirmed
}

type Reservation struct {
	Id              ulid.ULID          `json:"id"`
	LotId           ulid.ULID          `json:"lotId"`
	SpotId          *ulid.ULID         `json:"spotId,omitempty"`
	PlateNumber     string             `json:"plateNumber"`
	VehicleType     shared.VehicleType `json:"vehicleType"`
	StartTime       time.Time          `json:"startTime"`
	EndTime         time.Time          `json:"endTime"`
	Status          Status             `json:"status"`
	EstimatedAmount int64              `json:"estimatedAmount"`
	Description     string             `json:"description"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

func (r *Reservation) Minutes() int {
	d := r.EndTime.Sub(r.StartTime)
	return int((d + time.Minute - 1) / time.Minute)
}

// Overlaps uses half-open windows, so back-to-back reservations do not collide.
func (r *Reservation) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && r.EndTime.After(start)
}

type Filter struct {
	LotId       *ulid.ULID
	SpotId      *ulid.ULID
	PlateNumber *string
	Status      *Status
	From        *time.Time
	To          *time.Time
}

type Repository interface {
	// CreateWithNoOverlap inserts r unless a holding reservation on the same
	// spot overlaps its window, in which case it returns ErrSpotUnavailable.
	CreateWithNoOverlap(ctx context.Context, r *Reservation) error
	// UpdateStatus moves a reservation to status under a row lock when the
	// transition table allows it.
	UpdateStatus(ctx context.Context, id ulid.ULID, status Status, at time.Time) (*Reservation, error)
	GetByID(ctx context.Context, id ulid.ULID) (*Reservation, error)
	List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Reservation], error)
}
