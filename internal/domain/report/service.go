package report

import (
	"context"
	"time"

	appErrors "Parking/internal/errors"

	"golang.org/x/sync/errgroup"
)

const maxSpan = 366 * 24 * time.Hour

type Service struct {
	Repository Repository
	Location   *time.Location
}

func NewService(repo Repository, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{Repository: repo, Location: loc}
}

func (s *Service) Financial(ctx context.Context, from, to time.Time) (*FinancialReport, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	rep := &FinancialReport{From: from, To: to}
	var (
		summary *RevenueSummary
		daily   []DailyRevenue
		credits []CreditTotal
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = s.Repository.RevenueSummary(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		daily, err = s.Repository.RevenueByDay(gctx, from, to, s.Location.String())
		return err
	})
	g.Go(func() (err error) {
		rep.ByVehicleType, err = s.Repository.RevenueBreakdown(gctx, ByVehicleType, from, to)
		return err
	})
	g.Go(func() (err error) {
		rep.ByPaymentMethod, err = s.Repository.RevenueBreakdown(gctx, ByPaymentMethod, from, to)
		return err
	})
	g.Go(func() (err error) {
		credits, err = s.Repository.CreditTotals(gctx, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrap(err)
	}

	rep.Sessions = summary.Sessions
	rep.Billed = summary.Billed
	rep.Collected = summary.Collected
	if rep.Billed > rep.Collected {
		rep.Outstanding = rep.Billed - rep.Collected
	}
	if rep.Sessions > 0 {
		rep.AverageFee = float64(rep.Billed) / float64(rep.Sessions)
	}
	rep.ByDay = s.fillDays(from, to, daily)
	withPercentages(rep.ByVehicleType, rep.Billed)
	withPercentages(rep.ByPaymentMethod, rep.Billed)
	rep.Credit = summarizeCredit(credits)
	return rep, nil
}

func (s *Service) Traffic(ctx context.Context, from, to time.Time) (*TrafficReport, error) {
	if err := validatePeriod(from, to); err != nil {
		return nil, err
	}

	rep := &TrafficReport{From: from, To: to}
	var (
		summary *TrafficSummary
		hourly  []HourlyCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		summary, err = s.Repository.TrafficSummary(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		hourly, err = s.Repository.HourlyTraffic(gctx, from, to, s.Location.String())
		return err
	})
	g.Go(func() (err error) {
		rep.ByVehicleType, err = s.Repository.VehicleMix(gctx, from, to)
		return err
	})
	g.Go(func() (err error) {
		rep.ActiveSessions, err = s.Repository.ActiveSessions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, wrap(err)
	}

	rep.Entries = summary.Entries
	rep.Exits = summary.Exits
	rep.Cancelled = summary.Cancelled
	rep.AverageDurationMinutes = summary.AverageDurationMinutes

	rep.ByHour = make([]HourlyCount, 24)
	for h := range rep.ByHour {
		rep.ByHour[h].Hour = h
	}
	for _, hc := range hourly {
		if hc.Hour < 0 || hc.Hour > 23 {
			continue
		}
		rep.ByHour[hc.Hour].Entries += hc.Entries
		rep.ByHour[hc.Hour].Exits += hc.Exits
	}
	for _, hc := range rep.ByHour {
		if hc.Entries > rep.PeakHourEntries {
			rep.PeakHour = hc.Hour
			rep.PeakHourEntries = hc.Entries
		}
	}

	var total int64
	for _, b := range rep.ByVehicleType {
		total += b.Count
	}
	for i := range rep.ByVehicleType {
		if total > 0 {
			rep.ByVehicleType[i].Percentage = float64(rep.ByVehicleType[i].Count) / float64(total) * 100
		}
	}
	return rep, nil
}

// fillDays returns one row per local calendar day in [from, to), zero-filled.
func (s *Service) fillDays(from, to time.Time, rows []DailyRevenue) []DailyRevenue {
	byDate := make(map[string]DailyRevenue, len(rows))
	for _, r := range rows {
		byDate[r.Date] = r
	}

	start := from.In(s.Location)
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, s.Location)
	var out []DailyRevenue
	for d := start; d.Before(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		row, ok := byDate[key]
		if !ok {
			row = DailyRevenue{Date: key}
		}
		out = append(out, row)
	}
	return out
}

func withPercentages(rows []Breakdown, total int64) {
	if total <= 0 {
		return
	}
	for i := range rows {
		rows[i].Percentage = float64(rows[i].Amount) / float64(total) * 100
	}
}

func summarizeCredit(totals []CreditTotal) CreditSummary {
	var sum CreditSummary
	for _, t := range totals {
		sum.Transactions += t.Count
		switch t.Type {
		case "CHARGE":
			sum.Charged += t.Amount
		case "DEDUCTION":
			sum.Deducted += t.Amount
		case "REFUND":
			sum.Refunded += t.Amount
		case "ADJUSTMENT", "MONTHLY_RESET":
			sum.Adjusted += t.Amount
		}
	}
	return sum
}

func validatePeriod(from, to time.Time) error {
	if from.IsZero() || to.IsZero() {
		return appErrors.NewValidationError("from", "from and to are required")
	}
	if !to.After(from) {
		return appErrors.NewValidationError("to", "must be after from")
	}
	if to.Sub(from) > maxSpan {
		return appErrors.NewValidationError("to", "period must not exceed 366 days")
	}
	return nil
}

func wrap(err error) error {
	if appErrors.IsAppError(err) {
		return err
	}
	return appErrors.NewDatabaseError(err)
}
