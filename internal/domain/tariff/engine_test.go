package tariff_test

import (
	"testing"
	"time"

	"Parking/internal/domain/holiday"
	"Parking/internal/domain/shared"
	"Parking/internal/domain/tariff"
	appErrors "Parking/internal/errors"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tehran = time.FixedZone("IRST", 3*3600+1800)

func int64Ptr(v int64) *int64 { return &v }

func standardCarTariff() *tariff.Tariff {
	return &tariff.Tariff{
		Id:          ulid.Make(),
		Name:        "standard",
		VehicleType: shared.VehicleCar,
		EntranceFee: 5000,
		FreeMinutes: 15,
		HourlyRate:  10000,
		DailyCap:    int64Ptr(80000),
		ValidFrom:   time.Date(2020, 1, 1, 0, 0, 0, 0, tehran),
		IsActive:    true,
		CreatedAt:   time.Date(2020, 1, 1, 0, 0, 0, 0, tehran),
	}
}

type stubCalendar struct {
	holiday bool
	weekend bool
}

func (c stubCalendar) IsHoliday(time.Time) bool { return c.holiday }
func (c stubCalendar) IsWeekend(time.Time) bool { return c.weekend }

func TestCalculateFeeScenarios(t *testing.T) {
	t.Parallel()

	entry := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)
	tr := standardCarTariff()

	tests := []struct {
		name       string
		exit       time.Time
		wantAmount int64
		wantHours  int
		wantCap    bool
	}{
		{name: "inside free window", exit: entry.Add(10 * time.Minute), wantAmount: 5000},
		{name: "free window boundary", exit: entry.Add(15 * time.Minute), wantAmount: 5000},
		{name: "one minute past free window", exit: entry.Add(16 * time.Minute), wantAmount: 15000, wantHours: 1},
		{name: "two hours twenty", exit: entry.Add(2*time.Hour + 20*time.Minute), wantAmount: 35000, wantHours: 3},
		{name: "daily cap", exit: entry.Add(26 * time.Hour), wantAmount: 80000, wantHours: 26, wantCap: true},
		{name: "exit before entry", exit: entry.Add(-time.Hour), wantAmount: 5000},
		{name: "seconds are truncated", exit: entry.Add(15*time.Minute + 59*time.Second), wantAmount: 5000},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			fee := tariff.CalculateFee(entry, tt.exit, tr)
			assert.Equal(t, tt.wantAmount, fee.Amount)
			assert.Equal(t, tt.wantHours, fee.BillableHours)
			assert.Equal(t, tt.wantCap, fee.CapApplied)
			assert.GreaterOrEqual(t, fee.DurationMinutes, 0)
		})
	}
}

func TestCalculateFeeIsMonotonicWithoutCap(t *testing.T) {
	t.Parallel()

	tr := standardCarTariff()
	tr.DailyCap = nil
	entry := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)

	prev := int64(-1)
	for minutes := 0; minutes <= 3*24*60; minutes += 7 {
		fee := tariff.CalculateFee(entry, entry.Add(time.Duration(minutes)*time.Minute), tr)
		require.GreaterOrEqual(t, fee.Amount, prev, "minutes=%d", minutes)
		if minutes <= tr.FreeMinutes {
			require.Equal(t, tr.EntranceFee, fee.Amount)
		}
		prev = fee.Amount
	}
}

func TestCalculateFeeNeverExceedsDailyCap(t *testing.T) {
	t.Parallel()

	tr := standardCarTariff()
	entry := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)
	for hours := 0; hours < 72; hours++ {
		fee := tariff.CalculateFee(entry, entry.Add(time.Duration(hours)*time.Hour), tr)
		assert.LessOrEqual(t, fee.Amount, *tr.DailyCap)
	}
}

func TestSelectRanking(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, tehran)
	entry := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)

	regular := standardCarTariff()
	regular.Name = "regular"
	regular.CreatedAt = base

	holidayRate := standardCarTariff()
	holidayRate.Name = "holiday"
	holidayRate.IsHolidayRate = true
	holidayRate.CreatedAt = base

	weekendRate := standardCarTariff()
	weekendRate.Name = "weekend"
	weekendRate.IsWeekendRate = true
	weekendRate.CreatedAt = base

	both := standardCarTariff()
	both.Name = "holiday+weekend"
	both.IsHolidayRate = true
	both.IsWeekendRate = true
	both.CreatedAt = base

	newerRegular := standardCarTariff()
	newerRegular.Name = "newer regular"
	newerRegular.CreatedAt = base.Add(time.Hour)

	all := []*tariff.Tariff{regular, holidayRate, weekendRate, both}

	tests := []struct {
		name    string
		cal     tariff.Calendar
		tariffs []*tariff.Tariff
		want    string
	}{
		{name: "working day prefers regular", cal: stubCalendar{}, tariffs: all, want: "regular"},
		{name: "friday prefers holiday and weekend", cal: stubCalendar{holiday: true, weekend: true}, tariffs: all, want: "holiday+weekend"},
		{name: "official holiday on weekday", cal: stubCalendar{holiday: true}, tariffs: all, want: "holiday"},
		{name: "holiday flag outranks weekend flag", cal: stubCalendar{holiday: true, weekend: true}, tariffs: []*tariff.Tariff{regular, holidayRate, weekendRate}, want: "holiday"},
		{name: "most recent wins ties", cal: stubCalendar{}, tariffs: []*tariff.Tariff{regular, newerRegular}, want: "newer regular"},
		{name: "falls back to mismatched flags", cal: stubCalendar{}, tariffs: []*tariff.Tariff{holidayRate}, want: "holiday"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tariff.Select(entry, shared.VehicleCar, tt.tariffs, tt.cal)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestSelectFiltersCandidates(t *testing.T) {
	t.Parallel()

	entry := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)

	inactive := standardCarTariff()
	inactive.IsActive = false

	motorcycle := standardCarTariff()
	motorcycle.VehicleType = shared.VehicleMotorcycle

	expired := standardCarTariff()
	expired.ValidTo = func() *time.Time { v := entry.Add(-time.Minute); return &v }()

	future := standardCarTariff()
	future.ValidFrom = entry.Add(time.Minute)

	assert.Nil(t, tariff.Select(entry, shared.VehicleCar, []*tariff.Tariff{inactive, motorcycle, expired, future}, stubCalendar{}))

	closesAtEntry := standardCarTariff()
	closesAtEntry.ValidTo = &entry
	assert.Same(t, closesAtEntry, tariff.Select(entry, shared.VehicleCar, []*tariff.Tariff{closesAtEntry}, stubCalendar{}))
}

func TestPriceUsesHolidayCalendar(t *testing.T) {
	t.Parallel()

	regular := standardCarTariff()
	regular.Name = "regular"

	holidayRate := standardCarTariff()
	holidayRate.Name = "holiday"
	holidayRate.IsHolidayRate = true
	holidayRate.HourlyRate = 20000

	newYear := &holiday.Holiday{
		Date:        time.Date(2020, 3, 21, 0, 0, 0, 0, tehran),
		Name:        "Nowruz",
		Type:        holiday.TypeOfficial,
		IsRecurring: true,
		IsActive:    true,
	}
	cal := holiday.NewCalendar([]*holiday.Holiday{newYear}, tehran)

	tariffs := []*tariff.Tariff{regular, holidayRate}

	nowruz := time.Date(2026, 3, 21, 10, 0, 0, 0, tehran)
	q, err := tariff.Price(nowruz, nowruz.Add(time.Hour), shared.VehicleCar, tariffs, cal)
	require.NoError(t, err)
	assert.Equal(t, "holiday", q.Tariff.Name)
	assert.True(t, q.IsHoliday)

	friday := time.Date(2026, 10, 16, 10, 0, 0, 0, tehran)
	q, err = tariff.Price(friday, friday.Add(time.Hour), shared.VehicleCar, tariffs, cal)
	require.NoError(t, err)
	assert.Equal(t, "holiday", q.Tariff.Name)
	assert.True(t, q.IsWeekend)

	wednesday := time.Date(2026, 10, 14, 10, 0, 0, 0, tehran)
	q, err = tariff.Price(wednesday, wednesday.Add(time.Hour), shared.VehicleCar, tariffs, cal)
	require.NoError(t, err)
	assert.Equal(t, "regular", q.Tariff.Name)
	assert.Equal(t, int64(15000), q.Fee.Amount)
}

func TestPriceWithoutTariff(t *testing.T) {
	t.Parallel()

	entry := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)
	_, err := tariff.Price(entry, entry.Add(time.Hour), shared.VehicleBus, []*tariff.Tariff{standardCarTariff()}, stubCalendar{})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNoApplicableTariff.Code))
}

func TestEstimateMatchesPrice(t *testing.T) {
	t.Parallel()

	tariffs := []*tariff.Tariff{standardCarTariff()}
	entry := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)

	for _, minutes := range []int{0, 10, 15, 16, 60, 140, 1560} {
		est, err := tariff.Estimate(entry, minutes, shared.VehicleCar, tariffs, stubCalendar{})
		require.NoError(t, err)
		price, err := tariff.Price(entry, entry.Add(time.Duration(minutes)*time.Minute), shared.VehicleCar, tariffs, stubCalendar{})
		require.NoError(t, err)
		assert.Equal(t, price.Fee, est.Fee, "minutes=%d", minutes)
	}

	_, err := tariff.Estimate(entry, -1, shared.VehicleCar, tariffs, stubCalendar{})
	assert.True(t, appErrors.HasCode(err, "VALIDATION_ERROR"))
}
