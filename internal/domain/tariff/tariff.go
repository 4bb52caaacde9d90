package tariff

import (
	"time"

	"Parking/internal/domain/shared"

	"github.com/oklog/ulid/v2"
)

type Tariff struct {
	Id            ulid.ULID          `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description,omitempty"`
	VehicleType   shared.VehicleType `json:"vehicleType"`
	EntranceFee   int64              `json:"entranceFee"`
	FreeMinutes   int                `json:"freeMinutes"`
	HourlyRate    int64              `json:"hourlyRate"`
	DailyRate     int64              `json:"dailyRate"`
	NightlyRate   int64              `json:"nightlyRate"`
	DailyCap      *int64             `json:"dailyCap,omitempty"`
	NightlyCap    *int64             `json:"nightlyCap,omitempty"`
	WeeklyCap     *int64             `json:"weeklyCap,omitempty"`
	MonthlyCap    *int64             `json:"monthlyCap,omitempty"`
	IsHolidayRate bool               `json:"isHolidayRate"`
	IsWeekendRate bool               `json:"isWeekendRate"`
	ValidFrom     time.Time          `json:"validFrom"`
	ValidTo       *time.Time         `json:"validTo,omitempty"`
	IsActive      bool               `json:"isActive"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// ValidAt reports whether at lies in [ValidFrom, ValidTo]. An unset ValidTo is open-ended.
func (t *Tariff) ValidAt(at time.Time) bool {
	if at.Before(t.ValidFrom) {
		return false
	}
	return t.ValidTo == nil || !at.After(*t.ValidTo)
}

type Filter struct {
	VehicleType   *shared.VehicleType
	IsActive      *bool
	IsHolidayRate *bool
	IsWeekendRate *bool
	Search        *string
}
