package reservation

import (
	"context"
	"strings"
	"time"

	"Parking/internal/domain/parking"
	"Parking/internal/domain/shared"
	"Parking/internal/domain/tariff"
	appErrors "Parking/internal/errors"
	"Parking/internal/logger"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Estimator interface {
	Estimate(ctx context.Context, entry time.Time, minutes int, vt shared.VehicleType) (*tariff.Quote, error)
}

type LotFinder interface {
	GetLot(ctx context.Context, id ulid.ULID) (*parking.Lot, error)
	GetSpot(ctx context.Context, id ulid.ULID) (*parking.Spot, error)
}

// Events receives reservation lifecycle events on reservation.<status>.
type Events interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type Service struct {
	Repository Repository
	Estimator  Estimator
	Lots       LotFinder
	Events     Events
	Clock      func() time.Time
}

func NewService(repo Repository, estimator Estimator, lots LotFinder, events Events) *Service {
	return &Service{
		Repository: repo,
		Estimator:  estimator,
		Lots:       lots,
		Events:     events,
		Clock:      time.Now,
	}
}

type CreateRequest struct {
	LotId       ulid.ULID
	SpotId      *ulid.ULID
	PlateNumber string
	VehicleType shared.VehicleType
	StartTime   time.Time
	EndTime     time.Time
	Description string
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Reservation, error) {
	plate := shared.NormalizePlate(req.PlateNumber)
	if plate == "" {
		return nil, appErrors.NewValidationError("plate_number", "is required")
	}
	if !req.VehicleType.IsValid() {
		return nil, appErrors.NewValidationError("vehicle_type", "is invalid")
	}
	if !req.EndTime.After(req.StartTime) {
		return nil, appErrors.NewValidationError("end_time", "must be after start_time")
	}
	now := s.now()
	if !req.EndTime.After(now) {
		return nil, appErrors.NewValidationError("end_time", "must be in the future")
	}

	lot, err := s.Lots.GetLot(ctx, req.LotId)
	if err != nil {
		return nil, err
	}
	if !lot.IsActive {
		return nil, appErrors.NewValidationError("lot_id", "lot is not active")
	}
	if req.SpotId != nil {
		spot, err := s.Lots.GetSpot(ctx, *req.SpotId)
		if err != nil {
			return nil, err
		}
		if spot.LotId != lot.Id {
			return nil, appErrors.NewValidationError("spot_id", "does not belong to the lot")
		}
		if !spot.IsActive || !spot.Accepts(req.VehicleType) {
			return nil, appErrors.ErrSpotUnavailable.WithDetails(map[string]interface{}{"spot_id": spot.Id.String()})
		}
	}

	r := &Reservation{
		Id:          pkg.NewID(),
		LotId:       lot.Id,
		SpotId:      req.SpotId,
		PlateNumber: plate,
		VehicleType: req.VehicleType,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      StatusPending,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	amount, err := s.estimate(ctx, r)
	if err != nil {
		return nil, err
	}
	r.EstimatedAmount = amount

	if err := s.Repository.CreateWithNoOverlap(ctx, r); err != nil {
		return nil, err
	}

	logger.Info().
		Str("reservation_id", r.Id.String()).
		Str("plate_number", plate).
		Time("start_time", r.StartTime).
		Time("end_time", r.EndTime).
		Int64("estimated_amount", amount).
		Msg("reservation created")
	s.publish(ctx, r)
	return r, nil
}

// estimate prices the window; no applicable tariff yields a zero estimate.
func (s *Service) estimate(ctx context.Context, r *Reservation) (int64, error) {
	if s.Estimator == nil {
		return 0, nil
	}
	q, err := s.Estimator.Estimate(ctx, r.StartTime, r.Minutes(), r.VehicleType)
	if err != nil {
		if appErrors.HasCode(err, appErrors.ErrNoApplicableTariff.Code) {
			return 0, nil
		}
		return 0, err
	}
	return q.Fee.Amount, nil
}

func (s *Service) Confirm(ctx context.Context, id ulid.ULID) (*Reservation, error) {
	return s.transition(ctx, id, StatusConfirmed)
}

func (s *Service) Cancel(ctx context.Context, id ulid.ULID) (*Reservation, error) {
	return s.transition(ctx, id, StatusCancelled)
}

func (s *Service) Complete(ctx context.Context, id ulid.ULID) (*Reservation, error) {
	return s.transition(ctx, id, StatusCompleted)
}

func (s *Service) transition(ctx context.Context, id ulid.ULID, to Status) (*Reservation, error) {
	r, err := s.Repository.UpdateStatus(ctx, id, to, s.now())
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("reservation_id", r.Id.String()).
		Str("status", string(to)).
		Msg("reservation status changed")
	s.publish(ctx, r)
	return r, nil
}

func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Reservation, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Reservation], error) {
	if filter.PlateNumber != nil {
		plate := shared.NormalizePlate(*filter.PlateNumber)
		filter.PlateNumber = &plate
	}
	return s.Repository.List(ctx, filter, page)
}

func (s *Service) publish(ctx context.Context, r *Reservation) {
	if s.Events == nil {
		return
	}
	key := "reservation." + strings.ToLower(string(r.Status))
	payload := map[string]any{
		"reservation_id": r.Id.String(),
		"lot_id":         r.LotId.String(),
		"plate_number":   r.PlateNumber,
		"status":         string(r.Status),
		"start":          r.StartTime.Unix(),
		"end":            r.EndTime.Unix(),
	}
	if err := s.Events.PublishJSON(ctx, key, payload); err != nil {
		logger.Warn().Err(err).Str("reservation_id", r.Id.String()).Msg("failed to publish reservation event")
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}
