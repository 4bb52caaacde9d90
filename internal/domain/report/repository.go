package report

import (
	"context"
	"time"
)

type Dimension string

const (
	ByVehicleType   Dimension = "vehicle_type"
	ByPaymentMethod Dimension = "payment_method"
)

// Repository aggregates over [from, to). Revenue queries count completed
// sessions by exit time; traffic queries count sessions by entry time.
type Repository interface {
	RevenueSummary(ctx context.Context, from, to time.Time) (*RevenueSummary, error)
	RevenueByDay(ctx context.Context, from, to time.Time, tz string) ([]DailyRevenue, error)
	RevenueBreakdown(ctx context.Context, dim Dimension, from, to time.Time) ([]Breakdown, error)
	CreditTotals(ctx context.Context, from, to time.Time) ([]CreditTotal, error)

	TrafficSummary(ctx context.Context, from, to time.Time) (*TrafficSummary, error)
	HourlyTraffic(ctx context.Context, from, to time.Time, tz string) ([]HourlyCount, error)
	VehicleMix(ctx context.Context, from, to time.Time) ([]Breakdown, error)
	ActiveSessions(ctx context.Context) (int64, error)
}
