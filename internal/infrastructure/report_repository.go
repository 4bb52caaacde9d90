package infrastructure

import (
	"context"
	"fmt"
	"time"

	"Parking/internal/domain/report"
	"Parking/internal/domain/session"
	appErrors "Parking/internal/errors"

	"gorm.io/gorm"
)

type ReportRepository struct {
	DB *gorm.DB
}

func (r *ReportRepository) completed(ctx context.Context, from, to time.Time) *gorm.DB {
	return r.DB.WithContext(ctx).Table("parking_sessions").
		Where("status = ? AND exit_time >= ? AND exit_time < ?", string(session.StatusCompleted), from, to)
}

func (r *ReportRepository) RevenueSummary(ctx context.Context, from, to time.Time) (*report.RevenueSummary, error) {
	var out report.RevenueSummary
	err := r.completed(ctx, from, to).
		Select("COUNT(*) AS sessions, COALESCE(SUM(total_amount), 0) AS billed, COALESCE(SUM(paid_amount), 0) AS collected").
		Scan(&out).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return &out, nil
}

func (r *ReportRepository) RevenueByDay(ctx context.Context, from, to time.Time, tz string) ([]report.DailyRevenue, error) {
	var rows []report.DailyRevenue
	day := "TO_CHAR(exit_time AT TIME ZONE ?, 'YYYY-MM-DD')"
	err := r.completed(ctx, from, to).
		Select(day+" AS date, COUNT(*) AS sessions, COALESCE(SUM(total_amount), 0) AS billed", tz).
		Group("1").
		Order("1").
		Scan(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return rows, nil
}

func (r *ReportRepository) RevenueBreakdown(ctx context.Context, dim report.Dimension, from, to time.Time) ([]report.Breakdown, error) {
	switch dim {
	case report.ByVehicleType, report.ByPaymentMethod:
	default:
		return nil, appErrors.NewValidationError("dimension", "is invalid")
	}
	var rows []report.Breakdown
	err := r.completed(ctx, from, to).
		Select(fmt.Sprintf("%s AS key, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount", dim)).
		Group(string(dim)).
		Order("amount DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return rows, nil
}

func (r *ReportRepository) CreditTotals(ctx context.Context, from, to time.Time) ([]report.CreditTotal, error) {
	var rows []report.CreditTotal
	err := r.DB.WithContext(ctx).Table("credit_transactions").
		Select("type, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return rows, nil
}

func (r *ReportRepository) TrafficSummary(ctx context.Context, from, to time.Time) (*report.TrafficSummary, error) {
	var out report.TrafficSummary
	err := r.DB.WithContext(ctx).Table("parking_sessions").
		Select(`COUNT(*) AS entries,
			COUNT(*) FILTER (WHERE status = ?) AS exits,
			COUNT(*) FILTER (WHERE status = ?) AS cancelled,
			COALESCE(AVG(duration_minutes) FILTER (WHERE status = ?), 0) AS average_duration_minutes`,
			string(session.StatusCompleted), string(session.StatusCancelled), string(session.StatusCompleted)).
		Where("entry_time >= ? AND entry_time < ?", from, to).
		Scan(&out).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return &out, nil
}

// HourlyTraffic buckets entries by local entry hour and exits by local exit hour.
func (r *ReportRepository) HourlyTraffic(ctx context.Context, from, to time.Time, tz string) ([]report.HourlyCount, error) {
	type bucket struct {
		Hour  int
		Count int64
	}
	var entries, exits []bucket

	err := r.DB.WithContext(ctx).Table("parking_sessions").
		Select("EXTRACT(HOUR FROM entry_time AT TIME ZONE ?)::int AS hour, COUNT(*) AS count", tz).
		Where("entry_time >= ? AND entry_time < ?", from, to).
		Group("1").
		Scan(&entries).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	err = r.completed(ctx, from, to).
		Select("EXTRACT(HOUR FROM exit_time AT TIME ZONE ?)::int AS hour, COUNT(*) AS count", tz).
		Group("1").
		Scan(&exits).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	byHour := make(map[int]*report.HourlyCount)
	get := func(h int) *report.HourlyCount {
		if c, ok := byHour[h]; ok {
			return c
		}
		c := &report.HourlyCount{Hour: h}
		byHour[h] = c
		return c
	}
	for _, b := range entries {
		get(b.Hour).Entries = b.Count
	}
	for _, b := range exits {
		get(b.Hour).Exits = b.Count
	}
	out := make([]report.HourlyCount, 0, len(byHour))
	for h := 0; h < 24; h++ {
		if c, ok := byHour[h]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *ReportRepository) VehicleMix(ctx context.Context, from, to time.Time) ([]report.Breakdown, error) {
	var rows []report.Breakdown
	err := r.DB.WithContext(ctx).Table("parking_sessions").
		Select("vehicle_type AS key, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS amount").
		Where("entry_time >= ? AND entry_time < ?", from, to).
		Group("vehicle_type").
		Order("count DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return rows, nil
}

func (r *ReportRepository) ActiveSessions(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Table("parking_sessions").
		Where("status = ?", string(session.StatusActive)).
		Count(&count).Error
	if err != nil {
		return 0, appErrors.NewDatabaseError(err)
	}
	return count, nil
}
