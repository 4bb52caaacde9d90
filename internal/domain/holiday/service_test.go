package holiday_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"Parking/internal/domain/holiday"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHolidayRepository struct {
	rows    map[ulid.ULID]*holiday.Holiday
	deleted []ulid.ULID
}

func newFakeHolidayRepository(rows ...*holiday.Holiday) *fakeHolidayRepository {
	f := &fakeHolidayRepository{rows: make(map[ulid.ULID]*holiday.Holiday)}
	for _, h := range rows {
		f.rows[h.Id] = h
	}
	return f
}

func (f *fakeHolidayRepository) Create(ctx context.Context, h *holiday.Holiday) error {
	f.rows[h.Id] = h
	return nil
}

func (f *fakeHolidayRepository) Update(ctx context.Context, h *holiday.Holiday) error {
	f.rows[h.Id] = h
	return nil
}

func (f *fakeHolidayRepository) Delete(ctx context.Context, id ulid.ULID) error {
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeHolidayRepository) GetByID(ctx context.Context, id ulid.ULID) (*holiday.Holiday, error) {
	h, ok := f.rows[id]
	if !ok {
		return nil, errors.New("record not found")
	}
	return h, nil
}

func (f *fakeHolidayRepository) List(ctx context.Context, filter holiday.Filter, page query.Page) (*query.Result[*holiday.Holiday], error) {
	items := make([]*holiday.Holiday, 0, len(f.rows))
	for _, h := range f.rows {
		items = append(items, h)
	}
	return query.NewResult(items, page, int64(len(items))), nil
}

func (f *fakeHolidayRepository) ListActive(ctx context.Context) ([]*holiday.Holiday, error) {
	var out []*holiday.Holiday
	for _, h := range f.rows {
		if h.IsActive {
			out = append(out, h)
		}
	}
	return out, nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate() { c.calls++ }

func TestServiceRejectsFridayRows(t *testing.T) {
	t.Parallel()

	friday := &holiday.Holiday{Id: ulid.Make(), Name: "Friday", Type: holiday.TypeFriday, IsActive: true}
	repo := newFakeHolidayRepository(friday)
	inv := &countingInvalidator{}
	svc := holiday.NewService(repo, tehran)
	svc.Invalidator = inv
	ctx := context.Background()

	_, err := svc.Create(ctx, &holiday.CreateRequest{Date: time.Now(), Name: "Friday", Type: holiday.TypeFriday})
	assert.True(t, appErrors.HasCode(err, "VALIDATION_ERROR"))

	err = svc.Delete(ctx, friday.Id)
	assert.True(t, appErrors.HasCode(err, "VALIDATION_ERROR"))
	assert.Empty(t, repo.deleted)
	assert.Zero(t, inv.calls)
}

func TestServiceCreateAndCheck(t *testing.T) {
	t.Parallel()

	repo := newFakeHolidayRepository()
	inv := &countingInvalidator{}
	svc := holiday.NewService(repo, tehran)
	svc.Invalidator = inv
	ctx := context.Background()

	h, err := svc.Create(ctx, &holiday.CreateRequest{
		Date: time.Date(2026, 2, 11, 15, 30, 0, 0, tehran),
		Name: "  Revolution Day ",
		Type: holiday.TypeOfficial,
	})
	require.NoError(t, err)
	assert.Equal(t, "Revolution Day", h.Name)
	assert.Equal(t, time.Date(2026, 2, 11, 0, 0, 0, 0, tehran), h.Date)
	assert.Equal(t, 1, inv.calls)

	info, err := svc.Check(ctx, time.Date(2026, 2, 11, 20, 0, 0, 0, tehran))
	require.NoError(t, err)
	assert.True(t, info.IsHoliday)
	assert.False(t, info.IsWeekend)

	require.NoError(t, svc.Delete(ctx, h.Id))
	assert.Equal(t, 2, inv.calls)

	_, err = svc.Get(ctx, h.Id)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrHolidayNotFound.Code))
}

func TestServiceUpdateDeactivates(t *testing.T) {
	t.Parallel()

	row := &holiday.Holiday{Id: ulid.Make(), Name: "Custom", Type: holiday.TypeCustom, IsActive: true,
		Date: time.Date(2026, 5, 5, 0, 0, 0, 0, tehran)}
	repo := newFakeHolidayRepository(row)
	svc := holiday.NewService(repo, tehran)

	inactive := false
	_, err := svc.Update(context.Background(), row.Id, &holiday.UpdateRequest{IsActive: &inactive})
	require.NoError(t, err)

	cal, err := svc.Calendar(context.Background())
	require.NoError(t, err)
	assert.False(t, cal.IsHoliday(time.Date(2026, 5, 5, 12, 0, 0, 0, tehran)))

	friday := holiday.TypeFriday
	_, err = svc.Update(context.Background(), row.Id, &holiday.UpdateRequest{Type: &friday})
	assert.True(t, appErrors.HasCode(err, "VALIDATION_ERROR"))
}
