package parking_test

import (
	"context"
	"testing"

	"Parking/internal/domain/parking"
	"Parking/internal/domain/shared"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryParking struct {
	lots   map[ulid.ULID]*parking.Lot
	spots  map[ulid.ULID]*parking.Spot
	active map[ulid.ULID]int64
}

func newMemoryParking() *memoryParking {
	return &memoryParking{
		lots:   make(map[ulid.ULID]*parking.Lot),
		spots:  make(map[ulid.ULID]*parking.Spot),
		active: make(map[ulid.ULID]int64),
	}
}

func (m *memoryParking) CreateLot(ctx context.Context, lot *parking.Lot) error {
	m.lots[lot.Id] = lot
	return nil
}

func (m *memoryParking) UpdateLot(ctx context.Context, lot *parking.Lot) error {
	m.lots[lot.Id] = lot
	return nil
}

func (m *memoryParking) DeleteLot(ctx context.Context, id ulid.ULID) error {
	delete(m.lots, id)
	return nil
}

func (m *memoryParking) GetLot(ctx context.Context, id ulid.ULID) (*parking.Lot, error) {
	if lot, ok := m.lots[id]; ok {
		return lot, nil
	}
	return nil, appErrors.ErrLotNotFound
}

func (m *memoryParking) ListLots(ctx context.Context, page query.Page) (*query.Result[*parking.Lot], error) {
	var out []*parking.Lot
	for _, l := range m.lots {
		out = append(out, l)
	}
	return query.NewResult(out, page, int64(len(out))), nil
}

func (m *memoryParking) CreateSpot(ctx context.Context, spot *parking.Spot) error {
	m.spots[spot.Id] = spot
	return nil
}

func (m *memoryParking) UpdateSpot(ctx context.Context, spot *parking.Spot) error {
	m.spots[spot.Id] = spot
	return nil
}

func (m *memoryParking) GetSpot(ctx context.Context, id ulid.ULID) (*parking.Spot, error) {
	if s, ok := m.spots[id]; ok {
		return s, nil
	}
	return nil, appErrors.ErrSpotNotFound
}

func (m *memoryParking) ListSpots(ctx context.Context, lotID ulid.ULID) ([]*parking.Spot, error) {
	var out []*parking.Spot
	for _, s := range m.spots {
		if s.LotId == lotID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryParking) Occupy(ctx context.Context, spotID ulid.ULID) error {
	s, ok := m.spots[spotID]
	if !ok || s.IsOccupied || !s.IsActive {
		return appErrors.ErrSpotUnavailable
	}
	s.IsOccupied = true
	return nil
}

func (m *memoryParking) Release(ctx context.Context, spotID ulid.ULID) error {
	if s, ok := m.spots[spotID]; ok {
		s.IsOccupied = false
	}
	return nil
}

func (m *memoryParking) CountSpots(ctx context.Context, lotID ulid.ULID) (int64, int64, error) {
	var total, occupied int64
	for _, s := range m.spots {
		if s.LotId != lotID {
			continue
		}
		total++
		if s.IsOccupied {
			occupied++
		}
	}
	return total, occupied, nil
}

func (m *memoryParking) CountActiveSessions(ctx context.Context, lotID ulid.ULID) (int64, error) {
	return m.active[lotID], nil
}

func ptr[T any](v T) *T { return &v }

func newLot(t *testing.T, svc *parking.Service, capacity int) *parking.Lot {
	t.Helper()
	lot, err := svc.CreateLot(context.Background(), &parking.LotRequest{
		Name:     ptr("  North   Gate "),
		Capacity: ptr(capacity),
	})
	require.NoError(t, err)
	return lot
}

func TestCreateLotValidation(t *testing.T) {
	repo := newMemoryParking()
	svc := parking.NewService(repo, repo)

	_, err := svc.CreateLot(context.Background(), &parking.LotRequest{Capacity: ptr(10)})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))

	_, err = svc.CreateLot(context.Background(), &parking.LotRequest{Name: ptr("A"), Capacity: ptr(-1)})
	require.Error(t, err)

	lot := newLot(t, svc, 10)
	assert.Equal(t, "North Gate", lot.Name)
	assert.True(t, lot.IsActive)
}

func TestAdmitRespectsCapacity(t *testing.T) {
	repo := newMemoryParking()
	svc := parking.NewService(repo, repo)
	lot := newLot(t, svc, 2)
	ctx := context.Background()

	repo.active[lot.Id] = 1
	require.NoError(t, svc.Admit(ctx, lot.Id, nil, shared.VehicleCar))

	repo.active[lot.Id] = 2
	err := svc.Admit(ctx, lot.Id, nil, shared.VehicleCar)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrLotFull.Code))
}

func TestAdmitUnlimitedLot(t *testing.T) {
	repo := newMemoryParking()
	svc := parking.NewService(repo, repo)
	lot := newLot(t, svc, 0)
	repo.active[lot.Id] = 500

	require.NoError(t, svc.Admit(context.Background(), lot.Id, nil, shared.VehicleBus))
}

func TestAdmitInactiveLot(t *testing.T) {
	repo := newMemoryParking()
	svc := parking.NewService(repo, repo)
	lot := newLot(t, svc, 10)
	_, err := svc.UpdateLot(context.Background(), lot.Id, &parking.LotRequest{IsActive: ptr(false)})
	require.NoError(t, err)

	err = svc.Admit(context.Background(), lot.Id, nil, shared.VehicleCar)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrLotFull.Code))
}

func TestAdmitClaimsSpot(t *testing.T) {
	repo := newMemoryParking()
	svc := parking.NewService(repo, repo)
	ctx := context.Background()
	lot := newLot(t, svc, 10)

	moto, err := svc.CreateSpot(ctx, lot.Id, &parking.SpotRequest{Code: ptr(" m-01 "), VehicleType: ptr(shared.VehicleMotorcycle)})
	require.NoError(t, err)
	assert.Equal(t, "M-01", moto.Code)

	err = svc.Admit(ctx, lot.Id, &moto.Id, shared.VehicleCar)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSpotUnavailable.Code), "car cannot take a motorcycle spot")

	require.NoError(t, svc.Admit(ctx, lot.Id, &moto.Id, shared.VehicleMotorcycle))
	err = svc.Admit(ctx, lot.Id, &moto.Id, shared.VehicleMotorcycle)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrSpotUnavailable.Code), "spot is already taken")

	require.NoError(t, svc.Release(ctx, moto.Id))
	require.NoError(t, svc.Admit(ctx, lot.Id, &moto.Id, shared.VehicleMotorcycle))
}

func TestAdmitSpotFromAnotherLot(t *testing.T) {
	repo := newMemoryParking()
	svc := parking.NewService(repo, repo)
	ctx := context.Background()
	a, b := newLot(t, svc, 10), newLot(t, svc, 10)

	spot, err := svc.CreateSpot(ctx, b.Id, &parking.SpotRequest{Code: ptr("B1")})
	require.NoError(t, err)

	err = svc.Admit(ctx, a.Id, &spot.Id, shared.VehicleCar)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
}

func TestOccupancy(t *testing.T) {
	repo := newMemoryParking()
	svc := parking.NewService(repo, repo)
	ctx := context.Background()
	lot := newLot(t, svc, 4)

	for _, code := range []string{"A1", "A2", "A3"} {
		_, err := svc.CreateSpot(ctx, lot.Id, &parking.SpotRequest{Code: ptr(code)})
		require.NoError(t, err)
	}
	spots, err := svc.ListSpots(ctx, lot.Id)
	require.NoError(t, err)
	require.NoError(t, repo.Occupy(ctx, spots[0].Id))
	repo.active[lot.Id] = 3

	occ, err := svc.Occupancy(ctx, lot.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(3), occ.Spots)
	assert.Equal(t, int64(1), occ.OccupiedSpots)
	assert.Equal(t, int64(1), occ.Available)
	assert.InDelta(t, 0.75, occ.Rate, 1e-9)

	repo.active[lot.Id] = 6
	occ, err = svc.Occupancy(ctx, lot.Id)
	require.NoError(t, err)
	assert.Zero(t, occ.Available)
}
