package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"Parking/internal/domain/report"
	appErrors "Parking/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tehran = time.FixedZone("IRST", 3*3600+1800)

type fakeReportRepository struct {
	summary   *report.RevenueSummary
	daily     []report.DailyRevenue
	breakdown map[report.Dimension][]report.Breakdown
	credits   []report.CreditTotal
	traffic   *report.TrafficSummary
	hourly    []report.HourlyCount
	mix       []report.Breakdown
	active    int64
	err       error
}

func (f *fakeReportRepository) RevenueSummary(ctx context.Context, from, to time.Time) (*report.RevenueSummary, error) {
	return f.summary, f.err
}

func (f *fakeReportRepository) RevenueByDay(ctx context.Context, from, to time.Time, tz string) ([]report.DailyRevenue, error) {
	return f.daily, nil
}

func (f *fakeReportRepository) RevenueBreakdown(ctx context.Context, dim report.Dimension, from, to time.Time) ([]report.Breakdown, error) {
	return f.breakdown[dim], nil
}

func (f *fakeReportRepository) CreditTotals(ctx context.Context, from, to time.Time) ([]report.CreditTotal, error) {
	return f.credits, nil
}

func (f *fakeReportRepository) TrafficSummary(ctx context.Context, from, to time.Time) (*report.TrafficSummary, error) {
	return f.traffic, f.err
}

func (f *fakeReportRepository) HourlyTraffic(ctx context.Context, from, to time.Time, tz string) ([]report.HourlyCount, error) {
	return f.hourly, nil
}

func (f *fakeReportRepository) VehicleMix(ctx context.Context, from, to time.Time) ([]report.Breakdown, error) {
	return f.mix, nil
}

func (f *fakeReportRepository) ActiveSessions(ctx context.Context) (int64, error) {
	return f.active, nil
}

func TestFinancialReport(t *testing.T) {
	repo := &fakeReportRepository{
		summary: &report.RevenueSummary{Sessions: 4, Billed: 100000, Collected: 80000},
		daily:   []report.DailyRevenue{{Date: "2026-10-15", Sessions: 4, Billed: 100000}},
		breakdown: map[report.Dimension][]report.Breakdown{
			report.ByVehicleType:   {{Key: "CAR", Count: 3, Amount: 75000}, {Key: "TRUCK", Count: 1, Amount: 25000}},
			report.ByPaymentMethod: {{Key: "CREDIT", Count: 4, Amount: 100000}},
		},
		credits: []report.CreditTotal{
			{Type: "CHARGE", Count: 2, Amount: 500000},
			{Type: "DEDUCTION", Count: 3, Amount: 60000},
			{Type: "REFUND", Count: 1, Amount: 5000},
		},
	}
	svc := report.NewService(repo, tehran)
	from := time.Date(2026, 10, 14, 0, 0, 0, 0, tehran)
	to := from.AddDate(0, 0, 3)

	rep, err := svc.Financial(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), rep.Outstanding)
	assert.InDelta(t, 25000, rep.AverageFee, 1e-9)

	require.Len(t, rep.ByDay, 3)
	assert.Equal(t, "2026-10-14", rep.ByDay[0].Date)
	assert.Zero(t, rep.ByDay[0].Billed)
	assert.Equal(t, int64(100000), rep.ByDay[1].Billed)
	assert.Equal(t, "2026-10-16", rep.ByDay[2].Date)

	assert.InDelta(t, 75, rep.ByVehicleType[0].Percentage, 1e-9)
	assert.InDelta(t, 100, rep.ByPaymentMethod[0].Percentage, 1e-9)
	assert.Equal(t, report.CreditSummary{Charged: 500000, Deducted: 60000, Refunded: 5000, Transactions: 6}, rep.Credit)
}

func TestTrafficReportPeakHour(t *testing.T) {
	repo := &fakeReportRepository{
		traffic: &report.TrafficSummary{Entries: 9, Exits: 7, Cancelled: 1, AverageDurationMinutes: 84.5},
		hourly: []report.HourlyCount{
			{Hour: 8, Entries: 4, Exits: 0},
			{Hour: 17, Entries: 5, Exits: 6},
			{Hour: 18, Entries: 0, Exits: 1},
		},
		mix:    []report.Breakdown{{Key: "CAR", Count: 6}, {Key: "MOTORCYCLE", Count: 3}},
		active: 2,
	}
	svc := report.NewService(repo, tehran)
	from := time.Date(2026, 10, 14, 0, 0, 0, 0, tehran)

	rep, err := svc.Traffic(context.Background(), from, from.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, rep.ByHour, 24)
	assert.Equal(t, 17, rep.PeakHour)
	assert.Equal(t, int64(5), rep.PeakHourEntries)
	assert.Equal(t, int64(6), rep.ByHour[17].Exits)
	assert.Equal(t, int64(2), rep.ActiveSessions)
	assert.InDelta(t, 66.666, rep.ByVehicleType[0].Percentage, 0.01)
}

func TestReportPeriodValidation(t *testing.T) {
	svc := report.NewService(&fakeReportRepository{}, tehran)
	from := time.Date(2026, 10, 14, 0, 0, 0, 0, tehran)

	tests := []struct {
		name     string
		from, to time.Time
	}{
		{"missing", time.Time{}, from},
		{"reversed", from, from.Add(-time.Hour)},
		{"empty", from, from},
		{"too long", from, from.AddDate(2, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Financial(context.Background(), tt.from, tt.to)
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation.Code))
		})
	}
}

func TestReportWrapsStoreFailures(t *testing.T) {
	repo := &fakeReportRepository{err: errors.New("statement timeout")}
	svc := report.NewService(repo, tehran)
	from := time.Date(2026, 10, 14, 0, 0, 0, 0, tehran)

	_, err := svc.Traffic(context.Background(), from, from.AddDate(0, 0, 1))
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrDatabase.Code))
}
