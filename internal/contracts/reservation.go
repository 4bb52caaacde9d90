package contracts

import "time"

type ReservationCreateRequest struct {
	LotId       string    `json:"lotId" binding:"required"`
	SpotId      *string   `json:"spotId"`
	PlateNumber string    `json:"plateNumber" binding:"required,max=20"`
	VehicleType string    `json:"vehicleType" binding:"required,oneof=CAR MOTORCYCLE TRUCK BUS VAN OTHER"`
	StartTime   time.Time `json:"startTime" binding:"required"`
	EndTime     time.Time `json:"endTime" binding:"required"`
	Description string    `json:"description"`
}
