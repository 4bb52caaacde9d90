package reservation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"Parking/internal/domain/parking"
	"Parking/internal/domain/reservation"
	"Parking/internal/domain/shared"
	"Parking/internal/domain/tariff"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tehran = time.FixedZone("IRST", 3*3600+1800)

type memoryReservations struct {
	items map[ulid.ULID]*reservation.Reservation
}

func (m *memoryReservations) CreateWithNoOverlap(ctx context.Context, r *reservation.Reservation) error {
	if r.SpotId != nil {
		for _, other := range m.items {
			if other.SpotId != nil && *other.SpotId == *r.SpotId && other.Status.Holding() && other.Overlaps(r.StartTime, r.EndTime) {
				return appErrors.ErrSpotUnavailable
			}
		}
	}
	cp := *r
	m.items[r.Id] = &cp
	return nil
}

func (m *memoryReservations) UpdateStatus(ctx context.Context, id ulid.ULID, status reservation.Status, at time.Time) (*reservation.Reservation, error) {
	r, ok := m.items[id]
	if !ok {
		return nil, appErrors.ErrReservationNotFound
	}
	if !reservation.CanTransition(r.Status, status) {
		return nil, appErrors.ErrInvalidTransition
	}
	r.Status = status
	r.UpdatedAt = at
	cp := *r
	return &cp, nil
}

func (m *memoryReservations) GetByID(ctx context.Context, id ulid.ULID) (*reservation.Reservation, error) {
	if r, ok := m.items[id]; ok {
		return r, nil
	}
	return nil, appErrors.ErrReservationNotFound
}

func (m *memoryReservations) List(ctx context.Context, filter reservation.Filter, page query.Page) (*query.Result[*reservation.Reservation], error) {
	var out []*reservation.Reservation
	for _, r := range m.items {
		out = append(out, r)
	}
	return query.NewResult(out, page, int64(len(out))), nil
}

type fakeLots struct {
	lot   *parking.Lot
	spots map[ulid.ULID]*parking.Spot
}

func (f *fakeLots) GetLot(ctx context.Context, id ulid.ULID) (*parking.Lot, error) {
	if f.lot != nil && f.lot.Id == id {
		return f.lot, nil
	}
	return nil, appErrors.ErrLotNotFound
}

func (f *fakeLots) GetSpot(ctx context.Context, id ulid.ULID) (*parking.Spot, error) {
	if s, ok := f.spots[id]; ok {
		return s, nil
	}
	return nil, appErrors.ErrSpotNotFound
}

type fakeEstimator struct {
	err     error
	minutes []int
}

func (f *fakeEstimator) Estimate(ctx context.Context, entry time.Time, minutes int, vt shared.VehicleType) (*tariff.Quote, error) {
	f.minutes = append(f.minutes, minutes)
	if f.err != nil {
		return nil, f.err
	}
	return &tariff.Quote{Fee: tariff.Fee{Amount: int64(minutes) * 100}}, nil
}

type recordingEvents struct {
	keys []string
}

func (r *recordingEvents) PublishJSON(ctx context.Context, key string, v any) error {
	r.keys = append(r.keys, key)
	return nil
}

type fixture struct {
	svc       *reservation.Service
	estimator *fakeEstimator
	events    *recordingEvents
	lot       *parking.Lot
	spot      *parking.Spot
	now       time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	lot := &parking.Lot{Id: ulid.Make(), Name: "North", Capacity: 10, IsActive: true}
	spot := &parking.Spot{Id: ulid.Make(), LotId: lot.Id, Code: "A1", IsActive: true}
	f := &fixture{
		estimator: &fakeEstimator{},
		events:    &recordingEvents{},
		lot:       lot,
		spot:      spot,
		now:       time.Date(2026, 10, 14, 8, 0, 0, 0, tehran),
	}
	repo := &memoryReservations{items: make(map[ulid.ULID]*reservation.Reservation)}
	lots := &fakeLots{lot: lot, spots: map[ulid.ULID]*parking.Spot{spot.Id: spot}}
	f.svc = reservation.NewService(repo, f.estimator, lots, f.events)
	f.svc.Clock = func() time.Time { return f.now }
	return f
}

func (f *fixture) request(start time.Time, d time.Duration) *reservation.CreateRequest {
	return &reservation.CreateRequest{
		LotId:       f.lot.Id,
		SpotId:      &f.spot.Id,
		PlateNumber: "12 ب 345-67",
		VehicleType: shared.VehicleCar,
		StartTime:   start,
		EndTime:     start.Add(d),
	}
}

func TestCreateEstimatesWindow(t *testing.T) {
	f := newFixture(t)
	start := f.now.Add(time.Hour)

	r, err := f.svc.Create(context.Background(), f.request(start, 90*time.Minute+30*time.Second))
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusPending, r.Status)
	assert.Equal(t, "12ب34567", r.PlateNumber)
	assert.Equal(t, []int{91}, f.estimator.minutes, "partial minutes round up")
	assert.Equal(t, int64(9100), r.EstimatedAmount)
	assert.Equal(t, []string{"reservation.pending"}, f.events.keys)
}

func TestCreateWithoutTariffEstimatesZero(t *testing.T) {
	f := newFixture(t)
	f.estimator.err = appErrors.ErrNoApplicableTariff

	r, err := f.svc.Create(context.Background(), f.request(f.now.Add(time.Hour), time.Hour))
	require.NoError(t, err)
	assert.Zero(t, r.EstimatedAmount)
}

func TestCreatePropagatesEstimatorFailure(t *testing.T) {
	f := newFixture(t)
	f.estimator.err = appErrors.NewDatabaseError(errors.New("timeout"))

	_, err := f.svc.Create(context.Background(), f.request(f.now.Add(time.Hour), time.Hour))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDatabase.Code))
}

func TestCreateRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.now.Add(time.Hour)

	first, err := f.svc.Create(ctx, f.request(start, 2*time.Hour))
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.request(start.Add(time.Hour), time.Hour))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSpotUnavailable.Code))

	_, err = f.svc.Create(ctx, f.request(start.Add(2*time.Hour), time.Hour))
	require.NoError(t, err, "back-to-back windows do not overlap")

	_, err = f.svc.Cancel(ctx, first.Id)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.request(start, time.Hour))
	require.NoError(t, err, "cancelled reservations release the window")
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	otherLot := ulid.Make()

	tests := []struct {
		name   string
		mutate func(r *reservation.CreateRequest)
		code   string
	}{
		{"empty plate", func(r *reservation.CreateRequest) { r.PlateNumber = " " }, appErrors.ErrValidation.Code},
		{"end before start", func(r *reservation.CreateRequest) { r.EndTime = r.StartTime }, appErrors.ErrValidation.Code},
		{"past window", func(r *reservation.CreateRequest) {
			r.StartTime = f.now.Add(-3 * time.Hour)
			r.EndTime = f.now.Add(-time.Hour)
		}, appErrors.ErrValidation.Code},
		{"unknown lot", func(r *reservation.CreateRequest) { r.LotId = otherLot }, appErrors.ErrLotNotFound.Code},
		{"wrong vehicle type", func(r *reservation.CreateRequest) {
			f.spot.VehicleType = shared.VehicleMotorcycle
		}, appErrors.ErrSpotUnavailable.Code},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(f.now.Add(time.Hour), time.Hour)
			tt.mutate(req)
			_, err := f.svc.Create(context.Background(), req)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to reservation.Status
		ok       bool
	}{
		{reservation.StatusPending, reservation.StatusConfirmed, true},
		{reservation.StatusPending, reservation.StatusCancelled, true},
		{reservation.StatusPending, reservation.StatusCompleted, false},
		{reservation.StatusConfirmed, reservation.StatusCompleted, true},
		{reservation.StatusConfirmed, reservation.StatusCancelled, true},
		{reservation.StatusCancelled, reservation.StatusConfirmed, false},
		{reservation.StatusCompleted, reservation.StatusCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, reservation.CanTransition(tt.from, tt.to))
		})
	}
}

func TestConfirmThenComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.svc.Create(ctx, f.request(f.now.Add(time.Hour), time.Hour))
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, r.Id)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition.Code))

	_, err = f.svc.Confirm(ctx, r.Id)
	require.NoError(t, err)
	done, err := f.svc.Complete(ctx, r.Id)
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusCompleted, done.Status)
	assert.Equal(t, []string{"reservation.pending", "reservation.confirmed", "reservation.completed"}, f.events.keys)
}
