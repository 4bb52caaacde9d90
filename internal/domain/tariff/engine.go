package tariff

import (
	"slices"
	"time"

	"Parking/internal/domain/shared"
	appErrors "Parking/internal/errors"
)

// Calendar is the holiday view the selector needs. *holiday.Calendar satisfies it.
type Calendar interface {
	IsHoliday(t time.Time) bool
	IsWeekend(t time.Time) bool
}

// Select picks the tariff that governs a session entering at entry.
// Candidates must match the vehicle type, be active and be valid at entry.
// Ranking prefers a matching holiday flag, then a matching weekend flag,
// then the most recently created rule. Nil means no tariff applies.
func Select(entry time.Time, vehicleType shared.VehicleType, tariffs []*Tariff, cal Calendar) *Tariff {
	var isHoliday, isWeekend bool
	if cal != nil {
		isHoliday = cal.IsHoliday(entry)
		isWeekend = cal.IsWeekend(entry)
	}

	candidates := make([]*Tariff, 0, len(tariffs))
	for _, t := range tariffs {
		if t == nil || !t.IsActive || t.VehicleType != vehicleType || !t.ValidAt(entry) {
			continue
		}
		candidates = append(candidates, t)
	}
	if len(candidates) == 0 {
		return nil
	}

	rank := func(t *Tariff) int {
		r := 0
		if t.IsHolidayRate == isHoliday {
			r += 2
		}
		if t.IsWeekendRate == isWeekend {
			r++
		}
		return r
	}

	slices.SortStableFunc(candidates, func(a, b *Tariff) int {
		if ra, rb := rank(a), rank(b); ra != rb {
			return rb - ra
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
		return b.Id.Compare(a.Id)
	})
	return candidates[0]
}

type Fee struct {
	DurationMinutes int   `json:"durationMinutes"`
	BillableMinutes int   `json:"billableMinutes"`
	BillableHours   int   `json:"billableHours"`
	Amount          int64 `json:"amount"`
	CapApplied      bool  `json:"capApplied"`
}

// CalculateFee bills the entrance fee plus every started hour past the free
// window, capped by the daily cap. Weekly and monthly caps are not applied.
// A negative window is treated as zero minutes.
func CalculateFee(entry, exit time.Time, t *Tariff) Fee {
	duration := int(exit.Sub(entry) / time.Minute)
	if duration < 0 {
		duration = 0
	}

	billable := duration - t.FreeMinutes
	if billable < 0 {
		billable = 0
	}
	hours := (billable + 59) / 60

	fee := Fee{
		DurationMinutes: duration,
		BillableMinutes: billable,
		BillableHours:   hours,
		Amount:          t.EntranceFee + int64(hours)*t.HourlyRate,
	}
	if t.DailyCap != nil && fee.Amount > *t.DailyCap {
		fee.Amount = *t.DailyCap
		fee.CapApplied = true
	}
	return fee
}

type Quote struct {
	Tariff    *Tariff            `json:"tariff"`
	Vehicle   shared.VehicleType `json:"vehicleType"`
	Entry     time.Time          `json:"entryTime"`
	Exit      time.Time          `json:"exitTime"`
	IsHoliday bool               `json:"isHoliday"`
	IsWeekend bool               `json:"isWeekend"`
	Fee       Fee                `json:"fee"`
}

// Price selects the governing tariff for entry and bills the window up to exit.
func Price(entry, exit time.Time, vehicleType shared.VehicleType, tariffs []*Tariff, cal Calendar) (*Quote, error) {
	selected := Select(entry, vehicleType, tariffs, cal)
	if selected == nil {
		return nil, appErrors.ErrNoApplicableTariff.WithDetails(map[string]interface{}{
			"vehicleType": string(vehicleType),
			"entryTime":   entry,
		})
	}

	q := &Quote{
		Tariff:  selected,
		Vehicle: vehicleType,
		Entry:   entry,
		Exit:    exit,
		Fee:     CalculateFee(entry, exit, selected),
	}
	if cal != nil {
		q.IsHoliday = cal.IsHoliday(entry)
		q.IsWeekend = cal.IsWeekend(entry)
	}
	return q, nil
}

// Estimate prices a planned stay of the given length starting at entry.
func Estimate(entry time.Time, minutes int, vehicleType shared.VehicleType, tariffs []*Tariff, cal Calendar) (*Quote, error) {
	if minutes < 0 {
		return nil, appErrors.NewValidationError("estimated_minutes", "must not be negative")
	}
	return Price(entry, entry.Add(time.Duration(minutes)*time.Minute), vehicleType, tariffs, cal)
}
