package holiday

import (
	"context"
	"strings"
	"time"

	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Service struct {
	Repository  Repository
	Location    *time.Location
	Invalidator CacheInvalidator
}

func NewService(repo Repository, loc *time.Location) *Service {
	return &Service{Repository: repo, Location: loc}
}

type CreateRequest struct {
	Date        time.Time
	Name        string
	Type        Type
	IsRecurring bool
	Description string
}

type UpdateRequest struct {
	Date        *time.Time
	Name        *string
	Type        *Type
	IsRecurring *bool
	IsActive    *bool
	Description *string
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Holiday, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, appErrors.NewValidationError("name", "is required")
	}
	if !req.Type.IsValid() {
		return nil, appErrors.NewValidationError("type", "is invalid")
	}
	if req.Type == TypeFriday {
		return nil, appErrors.NewValidationError("type", "fridays are implicit holidays and cannot be created")
	}
	if req.Date.IsZero() {
		return nil, appErrors.NewValidationError("date", "is required")
	}

	now := time.Now()
	h := &Holiday{
		Id:          pkg.NewID(),
		Date:        pkg.DateIn(req.Date, s.location()),
		Name:        name,
		Type:        req.Type,
		IsRecurring: req.IsRecurring,
		IsActive:    true,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Repository.Create(ctx, h); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	s.invalidate()
	return h, nil
}

func (s *Service) Update(ctx context.Context, id ulid.ULID, req *UpdateRequest) (*Holiday, error) {
	h, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Type == TypeFriday {
		return nil, appErrors.NewValidationError("type", "friday holidays cannot be modified")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, appErrors.NewValidationError("name", "cannot be empty")
		}
		h.Name = name
	}
	if req.Type != nil {
		if !req.Type.IsValid() || *req.Type == TypeFriday {
			return nil, appErrors.NewValidationError("type", "is invalid")
		}
		h.Type = *req.Type
	}
	if req.Date != nil {
		h.Date = pkg.DateIn(*req.Date, s.location())
	}
	if req.IsRecurring != nil {
		h.IsRecurring = *req.IsRecurring
	}
	if req.IsActive != nil {
		h.IsActive = *req.IsActive
	}
	if req.Description != nil {
		h.Description = strings.TrimSpace(*req.Description)
	}
	h.UpdatedAt = time.Now()

	if err := s.Repository.Update(ctx, h); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	s.invalidate()
	return h, nil
}

func (s *Service) Delete(ctx context.Context, id ulid.ULID) error {
	h, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if h.Type == TypeFriday {
		return appErrors.NewValidationError("type", "friday holidays cannot be deleted")
	}
	if err := s.Repository.Delete(ctx, id); err != nil {
		return appErrors.NewDatabaseError(err)
	}
	s.invalidate()
	return nil
}

func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Holiday, error) {
	h, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		if appErrors.IsAppError(err) {
			return nil, err
		}
		return nil, appErrors.ErrHolidayNotFound.WithError(err)
	}
	return h, nil
}

func (s *Service) List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Holiday], error) {
	res, err := s.Repository.List(ctx, filter, page)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

// Calendar loads the active holiday rows into a calendar for the deployment zone.
func (s *Service) Calendar(ctx context.Context) (*Calendar, error) {
	rows, err := s.Repository.ListActive(ctx)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return NewCalendar(rows, s.location()), nil
}

func (s *Service) Check(ctx context.Context, at time.Time) (DayInfo, error) {
	cal, err := s.Calendar(ctx)
	if err != nil {
		return DayInfo{}, err
	}
	return cal.Describe(at), nil
}

func (s *Service) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *Service) invalidate() {
	if s.Invalidator != nil {
		s.Invalidator.Invalidate()
	}
}
