package parking

import (
	"context"
	"strings"
	"time"

	"Parking/internal/domain/shared"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Service struct {
	Repository Repository
	Counter    OccupancyCounter
}

func NewService(repo Repository, counter OccupancyCounter) *Service {
	return &Service{Repository: repo, Counter: counter}
}

type LotRequest struct {
	Name     *string
	Address  *string
	Capacity *int
	IsActive *bool
}

type SpotRequest struct {
	Code        *string
	VehicleType *shared.VehicleType
	IsActive    *bool
}

func (s *Service) CreateLot(ctx context.Context, req *LotRequest) (*Lot, error) {
	lot := &Lot{Id: pkg.NewID(), IsActive: true}
	if err := applyLot(lot, req); err != nil {
		return nil, err
	}
	if lot.Name == "" {
		return nil, appErrors.NewValidationError("name", "is required")
	}
	now := time.Now()
	lot.CreatedAt, lot.UpdatedAt = now, now
	if err := s.Repository.CreateLot(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

func (s *Service) UpdateLot(ctx context.Context, id ulid.ULID, req *LotRequest) (*Lot, error) {
	lot, err := s.GetLot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyLot(lot, req); err != nil {
		return nil, err
	}
	lot.UpdatedAt = time.Now()
	if err := s.Repository.UpdateLot(ctx, lot); err != nil {
		return nil, err
	}
	return lot, nil
}

func applyLot(lot *Lot, req *LotRequest) error {
	if req.Name != nil {
		name := shared.NormalizeName(*req.Name)
		if name == "" {
			return appErrors.NewValidationError("name", "cannot be empty")
		}
		lot.Name = name
	}
	if req.Address != nil {
		lot.Address = strings.TrimSpace(*req.Address)
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return appErrors.NewValidationError("capacity", "must not be negative")
		}
		lot.Capacity = *req.Capacity
	}
	if req.IsActive != nil {
		lot.IsActive = *req.IsActive
	}
	return nil
}

func (s *Service) DeleteLot(ctx context.Context, id ulid.ULID) error {
	return s.Repository.DeleteLot(ctx, id)
}

func (s *Service) GetLot(ctx context.Context, id ulid.ULID) (*Lot, error) {
	return s.Repository.GetLot(ctx, id)
}

func (s *Service) ListLots(ctx context.Context, page query.Page) (*query.Result[*Lot], error) {
	return s.Repository.ListLots(ctx, page)
}

func (s *Service) CreateSpot(ctx context.Context, lotID ulid.ULID, req *SpotRequest) (*Spot, error) {
	if _, err := s.GetLot(ctx, lotID); err != nil {
		return nil, err
	}
	spot := &Spot{Id: pkg.NewID(), LotId: lotID, IsActive: true}
	if err := applySpot(spot, req); err != nil {
		return nil, err
	}
	if spot.Code == "" {
		return nil, appErrors.NewValidationError("code", "is required")
	}
	now := time.Now()
	spot.CreatedAt, spot.UpdatedAt = now, now
	if err := s.Repository.CreateSpot(ctx, spot); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return nil, appErrors.NewConflictError("spot code")
		}
		return nil, err
	}
	return spot, nil
}

func (s *Service) UpdateSpot(ctx context.Context, id ulid.ULID, req *SpotRequest) (*Spot, error) {
	spot, err := s.GetSpot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applySpot(spot, req); err != nil {
		return nil, err
	}
	spot.UpdatedAt = time.Now()
	if err := s.Repository.UpdateSpot(ctx, spot); err != nil {
		return nil, err
	}
	return spot, nil
}

func applySpot(spot *Spot, req *SpotRequest) error {
	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code == "" {
			return appErrors.NewValidationError("code", "cannot be empty")
		}
		spot.Code = code
	}
	if req.VehicleType != nil {
		if *req.VehicleType != "" && !req.VehicleType.IsValid() {
			return appErrors.NewValidationError("vehicle_type", "is invalid")
		}
		spot.VehicleType = *req.VehicleType
	}
	if req.IsActive != nil {
		spot.IsActive = *req.IsActive
	}
	return nil
}

func (s *Service) GetSpot(ctx context.Context, id ulid.ULID) (*Spot, error) {
	return s.Repository.GetSpot(ctx, id)
}

func (s *Service) ListSpots(ctx context.Context, lotID ulid.ULID) ([]*Spot, error) {
	if _, err := s.GetLot(ctx, lotID); err != nil {
		return nil, err
	}
	return s.Repository.ListSpots(ctx, lotID)
}

func (s *Service) Occupancy(ctx context.Context, lotID ulid.ULID) (*Occupancy, error) {
	lot, err := s.GetLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	total, occupied, err := s.Counter.CountSpots(ctx, lotID)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	active, err := s.Counter.CountActiveSessions(ctx, lotID)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	occ := &Occupancy{
		LotId:          lot.Id,
		Capacity:       lot.Capacity,
		Spots:          total,
		OccupiedSpots:  occupied,
		ActiveSessions: active,
	}
	occ.Available = int64(lot.Capacity) - active
	if occ.Available < 0 {
		occ.Available = 0
	}
	if lot.Capacity > 0 {
		occ.Rate = float64(active) / float64(lot.Capacity)
	}
	return occ, nil
}

// Admit checks that a lot can take one more vehicle and, when a spot is
// given, claims it for the vehicle type.
func (s *Service) Admit(ctx context.Context, lotID ulid.ULID, spotID *ulid.ULID, vt shared.VehicleType) error {
	lot, err := s.GetLot(ctx, lotID)
	if err != nil {
		return err
	}
	if !lot.IsActive {
		return appErrors.ErrLotFull.WithDetails(map[string]interface{}{"lot_id": lot.Id.String(), "reason": "inactive"})
	}
	if lot.Capacity > 0 {
		active, err := s.Counter.CountActiveSessions(ctx, lotID)
		if err != nil {
			return appErrors.NewDatabaseError(err)
		}
		if active >= int64(lot.Capacity) {
			return appErrors.ErrLotFull.WithDetails(map[string]interface{}{"lot_id": lot.Id.String(), "capacity": lot.Capacity})
		}
	}
	if spotID == nil {
		return nil
	}

	spot, err := s.GetSpot(ctx, *spotID)
	if err != nil {
		return err
	}
	if spot.LotId != lotID {
		return appErrors.NewValidationError("spot_id", "does not belong to the lot")
	}
	if !spot.Accepts(vt) {
		return appErrors.ErrSpotUnavailable.WithDetails(map[string]interface{}{"spot_id": spot.Id.String(), "vehicle_type": string(spot.VehicleType)})
	}
	return s.Repository.Occupy(ctx, *spotID)
}

func (s *Service) Release(ctx context.Context, spotID ulid.ULID) error {
	return s.Repository.Release(ctx, spotID)
}
