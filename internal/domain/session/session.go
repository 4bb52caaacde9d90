package session

import (
	"context"
	"time"

	"Parking/internal/domain/shared"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "CASH"
	PaymentCard   PaymentMethod = "CARD"
	PaymentCredit PaymentMethod = "CREDIT"
	PaymentOnline PaymentMethod = "ONLINE"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentCredit, PaymentOnline:
		return true
	}
	return false
}

type Session struct {
	Id              ulid.ULID          `json:"id"`
	PlateNumber     string             `json:"plateNumber"`
	VehicleType     shared.VehicleType `json:"vehicleType"`
	VehicleId       *ulid.ULID         `json:"vehicleId,omitempty"`
	EntryTime       time.Time          `json:"entryTime"`
	ExitTime        *time.Time         `json:"exitTime,omitempty"`
	DurationMinutes int                `json:"durationMinutes"`
	TariffId        *ulid.ULID         `json:"tariffId,omitempty"`
	TotalAmount     int64              `json:"totalAmount"`
	PaidAmount      int64              `json:"paidAmount"`
	Status          Status             `json:"status"`
	PaymentMethod   PaymentMethod      `json:"paymentMethod"`
	CreditAccountId *ulid.ULID         `json:"creditAccountId,omitempty"`
	LotId           *ulid.ULID         `json:"lotId,omitempty"`
	SpotId          *ulid.ULID         `json:"spotId,omitempty"`
	EntryCamera     string             `json:"entryCamera"`
	ExitCamera      string             `json:"exitCamera"`
	Description     string             `json:"description"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

func (s *Session) Outstanding() int64 {
	if s.PaidAmount >= s.TotalAmount {
		return 0
	}
	return s.TotalAmount - s.PaidAmount
}

type Filter struct {
	Status        *Status
	PlateNumber   *string
	VehicleType   *shared.VehicleType
	PaymentMethod *PaymentMethod
	LotId         *ulid.ULID
	From          *time.Time
	To            *time.Time
}

type Repository interface {
	Create(ctx context.Context, s *Session) error
	// Transition persists s only if the stored status is still from. A false
	// result means another writer moved the session first.
	Transition(ctx context.Context, s *Session, from Status) (bool, error)
	GetByID(ctx context.Context, id ulid.ULID) (*Session, error)
	// FindActiveByPlate returns nil, nil when the plate has no active session.
	FindActiveByPlate(ctx context.Context, plate string) (*Session, error)
	List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Session], error)
}
