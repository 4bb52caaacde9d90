package tariff

import (
	"context"
	"strings"
	"sync"
	"time"

	"Parking/internal/domain/holiday"
	"Parking/internal/domain/shared"
	appErrors "Parking/internal/errors"
	"Parking/internal/logger"
	"Parking/internal/obs"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
)

const (
	snapshotKey = "active"
	snapshotTTL = time.Minute
)

// Snapshot is the immutable input set handed to the engine.
type Snapshot struct {
	Tariffs  []*Tariff
	Calendar *holiday.Calendar
}

type Service struct {
	Repository Repository
	Calendars  CalendarSource
	cache      *expirable.LRU[string, *Snapshot]

	// generation counts invalidations; a load only lands in cache if none
	// happened while it ran.
	mu         sync.Mutex
	generation uint64
}

func NewService(repo Repository, calendars CalendarSource) *Service {
	return &Service{
		Repository: repo,
		Calendars:  calendars,
		cache:      expirable.NewLRU[string, *Snapshot](1, nil, snapshotTTL),
	}
}

type CreateRequest struct {
	Name          string
	Description   string
	VehicleType   shared.VehicleType
	EntranceFee   int64
	FreeMinutes   int
	HourlyRate    int64
	DailyRate     int64
	NightlyRate   int64
	DailyCap      *int64
	NightlyCap    *int64
	WeeklyCap     *int64
	MonthlyCap    *int64
	IsHolidayRate bool
	IsWeekendRate bool
	ValidFrom     *time.Time
	ValidTo       *time.Time
}

type UpdateRequest struct {
	Name          *string
	Description   *string
	EntranceFee   *int64
	FreeMinutes   *int
	HourlyRate    *int64
	DailyRate     *int64
	NightlyRate   *int64
	DailyCap      *int64
	NightlyCap    *int64
	WeeklyCap     *int64
	MonthlyCap    *int64
	IsHolidayRate *bool
	IsWeekendRate *bool
	ValidFrom     *time.Time
	ValidTo       *time.Time
	IsActive      *bool
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Tariff, error) {
	now := time.Now()
	validFrom := now
	if req.ValidFrom != nil {
		validFrom = *req.ValidFrom
	}

	t := &Tariff{
		Id:            pkg.NewID(),
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		VehicleType:   req.VehicleType,
		EntranceFee:   req.EntranceFee,
		FreeMinutes:   req.FreeMinutes,
		HourlyRate:    req.HourlyRate,
		DailyRate:     req.DailyRate,
		NightlyRate:   req.NightlyRate,
		DailyCap:      req.DailyCap,
		NightlyCap:    req.NightlyCap,
		WeeklyCap:     req.WeeklyCap,
		MonthlyCap:    req.MonthlyCap,
		IsHolidayRate: req.IsHolidayRate,
		IsWeekendRate: req.IsWeekendRate,
		ValidFrom:     validFrom,
		ValidTo:       req.ValidTo,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := validate(t); err != nil {
		return nil, err
	}
	if err := s.Repository.Create(ctx, t); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	s.Invalidate()

	logger.Info().
		Str("tariff_id", t.Id.String()).
		Str("vehicle_type", string(t.VehicleType)).
		Msg("tariff created")
	return t, nil
}

func (s *Service) Update(ctx context.Context, id ulid.ULID, req *UpdateRequest) (*Tariff, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		t.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		t.Description = strings.TrimSpace(*req.Description)
	}
	if req.EntranceFee != nil {
		t.EntranceFee = *req.EntranceFee
	}
	if req.FreeMinutes != nil {
		t.FreeMinutes = *req.FreeMinutes
	}
	if req.HourlyRate != nil {
		t.HourlyRate = *req.HourlyRate
	}
	if req.DailyRate != nil {
		t.DailyRate = *req.DailyRate
	}
	if req.NightlyRate != nil {
		t.NightlyRate = *req.NightlyRate
	}
	if req.DailyCap != nil {
		t.DailyCap = capOrNil(*req.DailyCap)
	}
	if req.NightlyCap != nil {
		t.NightlyCap = capOrNil(*req.NightlyCap)
	}
	if req.WeeklyCap != nil {
		t.WeeklyCap = capOrNil(*req.WeeklyCap)
	}
	if req.MonthlyCap != nil {
		t.MonthlyCap = capOrNil(*req.MonthlyCap)
	}
	if req.IsHolidayRate != nil {
		t.IsHolidayRate = *req.IsHolidayRate
	}
	if req.IsWeekendRate != nil {
		t.IsWeekendRate = *req.IsWeekendRate
	}
	if req.ValidFrom != nil {
		t.ValidFrom = *req.ValidFrom
	}
	if req.ValidTo != nil {
		if req.ValidTo.IsZero() {
			t.ValidTo = nil
		} else {
			validTo := *req.ValidTo
			t.ValidTo = &validTo
		}
	}
	if req.IsActive != nil {
		t.IsActive = *req.IsActive
	}
	t.UpdatedAt = time.Now()

	if err := validate(t); err != nil {
		return nil, err
	}
	if err := s.Repository.Update(ctx, t); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	s.Invalidate()
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id ulid.ULID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.Repository.Delete(ctx, id); err != nil {
		return appErrors.NewDatabaseError(err)
	}
	s.Invalidate()
	return nil
}

func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Tariff, error) {
	t, err := s.Repository.GetByID(ctx, id)
	if err != nil {
		if appErrors.IsAppError(err) {
			return nil, err
		}
		return nil, appErrors.ErrTariffNotFound.WithError(err)
	}
	return t, nil
}

func (s *Service) List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Tariff], error) {
	res, err := s.Repository.List(ctx, filter, page)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

// Calculate prices a completed or hypothetical window against the active rules.
func (s *Service) Calculate(ctx context.Context, entry, exit time.Time, vehicleType shared.VehicleType) (*Quote, error) {
	ctx, span := obs.Tracer("tariff").Start(ctx, "tariff.Calculate")
	defer span.End()
	span.SetAttributes(attribute.String("vehicle_type", string(vehicleType)))

	if !vehicleType.IsValid() {
		return nil, appErrors.NewValidationError("vehicle_type", "is invalid")
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	q, err := Price(entry, exit, vehicleType, snap.Tariffs, snap.Calendar)
	obs.FeesCalculated.WithLabelValues(string(vehicleType), obs.Outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(
		attribute.String("tariff_id", q.Tariff.Id.String()),
		attribute.Int64("amount", q.Fee.Amount),
	)
	return q, nil
}

func (s *Service) Estimate(ctx context.Context, entry time.Time, minutes int, vehicleType shared.VehicleType) (*Quote, error) {
	if minutes < 0 {
		return nil, appErrors.NewValidationError("estimated_minutes", "must not be negative")
	}
	return s.Calculate(ctx, entry, entry.Add(time.Duration(minutes)*time.Minute), vehicleType)
}

// Snapshot returns the cached active tariff set and calendar, loading them on a miss.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	if s.cache != nil {
		if snap, ok := s.cache.Get(snapshotKey); ok {
			return snap, nil
		}
	}
	gen := s.currentGeneration()

	tariffs, err := s.Repository.ListActive(ctx)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	var cal *holiday.Calendar
	if s.Calendars != nil {
		cal, err = s.Calendars.Calendar(ctx)
		if err != nil {
			return nil, err
		}
	}

	snap := &Snapshot{Tariffs: tariffs, Calendar: cal}
	s.mu.Lock()
	if s.cache != nil && s.generation == gen {
		s.cache.Add(snapshotKey, snap)
	}
	s.mu.Unlock()
	return snap, nil
}

// Invalidate drops the cached snapshot after any tariff or holiday write.
// Loads already in flight are not cached.
func (s *Service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *Service) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

func validate(t *Tariff) error {
	if t.Name == "" {
		return appErrors.NewValidationError("name", "is required")
	}
	if !t.VehicleType.IsValid() {
		return appErrors.NewValidationError("vehicle_type", "is invalid")
	}
	if t.EntranceFee < 0 || t.HourlyRate < 0 || t.DailyRate < 0 || t.NightlyRate < 0 {
		return appErrors.NewValidationError("rates", "must not be negative")
	}
	if t.FreeMinutes < 0 {
		return appErrors.NewValidationError("free_minutes", "must not be negative")
	}
	for field, c := range map[string]*int64{
		"daily_cap":   t.DailyCap,
		"nightly_cap": t.NightlyCap,
		"weekly_cap":  t.WeeklyCap,
		"monthly_cap": t.MonthlyCap,
	} {
		if c != nil && *c <= 0 {
			return appErrors.NewValidationError(field, "must be greater than zero")
		}
	}
	if t.ValidTo != nil && t.ValidTo.Before(t.ValidFrom) {
		return appErrors.NewValidationError("valid_to", "must not be before valid_from")
	}
	return nil
}

// capOrNil lets a PATCH clear a cap by sending zero.
func capOrNil(v int64) *int64 {
	if v == 0 {
		return nil
	}
	return &v
}
