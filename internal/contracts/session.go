package contracts

import "time"

type EntryRequest struct {
	PlateNumber     string     `json:"plateNumber" binding:"required,max=20"`
	VehicleType     string     `json:"vehicleType" binding:"omitempty,oneof=CAR MOTORCYCLE TRUCK BUS VAN OTHER"`
	EntryTime       *time.Time `json:"entryTime"`
	LotId           *string    `json:"lotId"`
	SpotId          *string    `json:"spotId"`
	CreditAccountId *string    `json:"creditAccountId"`
	Camera          string     `json:"camera" binding:"omitempty,max=50"`
	Description     string     `json:"description"`
}

type ExitRequest struct {
	ExitTime      *time.Time `json:"exitTime"`
	PaymentMethod string     `json:"paymentMethod" binding:"required,oneof=CASH CARD CREDIT ONLINE"`
	PaidAmount    *int64     `json:"paidAmount" binding:"omitempty,gte=0"`
	AllowNegative bool       `json:"allowNegative"`
	Camera        string     `json:"camera" binding:"omitempty,max=50"`
}
