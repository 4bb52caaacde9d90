package vehicle

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
}

func NewService(repo Repository) *Service {
	return &Service{Repository: repo}
}

type CreateRequest struct {
	PlateNumber     string
	VehicleType     shared.VehicleType
	OwnerName       string
	OwnerPhone      string
	CreditAccountId *ulid.ULID
	IsBlacklisted   bool
	Description     string
}

type UpdateRequest struct {
	VehicleType     *shared.VehicleType
	OwnerName       *string
	OwnerPhone      *string
	CreditAccountId *ulid.ULID
	ClearAccount    bool
	IsBlacklisted   *bool
	Description     *string
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Vehicle, error) {
	plate := shared.NormalizePlate(req.PlateNumber)
	if plate == "" {
		return nil, appErrors.NewValidationError("plate_number", "is required")
	}
	if !req.VehicleType.IsValid() {
		return nil, appErrors.NewValidationError("vehicle_type", "is invalid")
	}

	if _, err := s.Repository.GetByPlate(ctx, plate); err == nil {
		return nil, appErrors.ErrPlateAlreadyExists
	} else if !appErrors.HasCode(err, appErrors.ErrVehicleNotFound.Code) {
		return nil, err
	}

	now := time.Now()
	v := &Vehicle{
		Id:              pkg.NewID(),
		PlateNumber:     plate,
		VehicleType:     req.VehicleType,
		OwnerName:       shared.NormalizeName(req.OwnerName),
		OwnerPhone:      strings.TrimSpace(req.OwnerPhone),
		CreditAccountId: req.CreditAccountId,
		IsBlacklisted:   req.IsBlacklisted,
		Description:     strings.TrimSpace(req.Description),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repository.Create(ctx, v); err != nil {
		if shared.IsUniqueConstraintError(err) {
			return nil, appErrors.ErrPlateAlreadyExists.WithError(err)
		}
		return nil, err
	}
	return v, nil
}

func (s *Service) Update(ctx context.Context, id ulid.ULID, req *UpdateRequest) (*Vehicle, error) {
	v, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.VehicleType != nil {
		if !req.VehicleType.IsValid() {
			return nil, appErrors.NewValidationError("vehicle_type", "is invalid")
		}
		v.VehicleType = *req.VehicleType
	}
	if req.OwnerName != nil {
		v.OwnerName = shared.NormalizeName(*req.OwnerName)
	}
	if req.OwnerPhone != nil {
		v.OwnerPhone = strings.TrimSpace(*req.OwnerPhone)
	}
	if req.ClearAccount {
		v.CreditAccountId = nil
	} else if req.CreditAccountId != nil {
		v.CreditAccountId = req.CreditAccountId
	}
	if req.IsBlacklisted != nil {
		v.IsBlacklisted = *req.IsBlacklisted
	}
	if req.Description != nil {
		v.Description = strings.TrimSpace(*req.Description)
	}
	v.UpdatedAt = time.Now()

	if err := s.Repository.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) Delete(ctx context.Context, id ulid.ULID) error {
	return s.Repository.Delete(ctx, id)
}

func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Vehicle, error) {
	return s.Repository.GetByID(ctx, id)
}

// GetByPlate looks a plate up after normalizing it the way camera reads are normalized.
func (s *Service) GetByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	normalized := shared.NormalizePlate(plate)
	if normalized == "" {
		return nil, appErrors.NewValidationError("plate_number", "is required")
	}
	return s.Repository.GetByPlate(ctx, normalized)
}

func (s *Service) List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Vehicle], error) {
	return s.Repository.List(ctx, filter, page)
}
