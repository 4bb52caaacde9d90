package contracts

import "time"

type TariffCreateRequest struct {
	Name          string     `json:"name" binding:"required,max=100"`
	Description   string     `json:"description" binding:"omitempty"`
	VehicleType   string     `json:"vehicleType" binding:"required,oneof=CAR MOTORCYCLE TRUCK BUS VAN OTHER"`
	EntranceFee   int64      `json:"entranceFee" binding:"gte=0"`
	FreeMinutes   int        `json:"freeMinutes" binding:"gte=0"`
	HourlyRate    int64      `json:"hourlyRate" binding:"gte=0"`
	DailyRate     int64      `json:"dailyRate" binding:"gte=0"`
	NightlyRate   int64      `json:"nightlyRate" binding:"gte=0"`
	DailyCap      *int64     `json:"dailyCap" binding:"omitempty,gte=0"`
	NightlyCap    *int64     `json:"nightlyCap" binding:"omitempty,gte=0"`
	WeeklyCap     *int64     `json:"weeklyCap" binding:"omitempty,gte=0"`
	MonthlyCap    *int64     `json:"monthlyCap" binding:"omitempty,gte=0"`
	IsHolidayRate bool       `json:"isHolidayRate"`
	IsWeekendRate bool       `json:"isWeekendRate"`
	ValidFrom     *time.Time `json:"validFrom"`
	ValidTo       *time.Time `json:"validTo"`
}

type TariffUpdateRequest struct {
	Name          *string    `json:"name" binding:"omitempty,max=100"`
	Description   *string    `json:"description"`
	EntranceFee   *int64     `json:"entranceFee" binding:"omitempty,gte=0"`
	FreeMinutes   *int       `json:"freeMinutes" binding:"omitempty,gte=0"`
	HourlyRate    *int64     `json:"hourlyRate" binding:"omitempty,gte=0"`
	DailyRate     *int64     `json:"dailyRate" binding:"omitempty,gte=0"`
	NightlyRate   *int64     `json:"nightlyRate" binding:"omitempty,gte=0"`
	DailyCap      *int64     `json:"dailyCap" binding:"omitempty,gte=0"`
	NightlyCap    *int64     `json:"nightlyCap" binding:"omitempty,gte=0"`
	WeeklyCap     *int64     `json:"weeklyCap" binding:"omitempty,gte=0"`
	MonthlyCap    *int64     `json:"monthlyCap" binding:"omitempty,gte=0"`
	IsHolidayRate *bool      `json:"isHolidayRate"`
	IsWeekendRate *bool      `json:"isWeekendRate"`
	ValidFrom     *time.Time `json:"validFrom"`
	ValidTo       *time.Time `json:"validTo"`
	IsActive      *bool      `json:"isActive"`
}

type FeeCalculateRequest struct {
	EntryTime   time.Time `json:"entryTime" binding:"required"`
	ExitTime    time.Time `json:"exitTime" binding:"required"`
	VehicleType string    `json:"vehicleType" binding:"required,oneof=CAR MOTORCYCLE TRUCK BUS VAN OTHER"`
}

type FeeEstimateRequest struct {
	EntryTime   time.Time `json:"entryTime" binding:"required"`
	Minutes     int       `json:"minutes" binding:"gte=0"`
	VehicleType string    `json:"vehicleType" binding:"required,oneof=CAR MOTORCYCLE TRUCK BUS VAN OTHER"`
}
