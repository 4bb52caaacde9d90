package contracts

type VehicleCreateRequest struct {
	PlateNumber     string  `json:"plateNumber" binding:"required,max=20"`
	VehicleType     string  `json:"vehicleType" binding:"required,oneof=CAR MOTORCYCLE TRUCK BUS VAN OTHER"`
	OwnerName       string  `json:"ownerName" binding:"omitempty,max=100"`
	OwnerPhone      string  `json:"ownerPhone" binding:"omitempty,max=20"`
	CreditAccountId *string `json:"creditAccountId"`
	IsBlacklisted   bool    `json:"isBlacklisted"`
	Description     string  `json:"description"`
}

type VehicleUpdateRequest struct {
	VehicleType     *string `json:"vehicleType" binding:"omitempty,oneof=CAR MOTORCYCLE TRUCK BUS VAN OTHER"`
	OwnerName       *string `json:"ownerName" binding:"omitempty,max=100"`
	OwnerPhone      *string `json:"ownerPhone" binding:"omitempty,max=20"`
	CreditAccountId *string `json:"creditAccountId"`
	ClearAccount    bool    `json:"clearAccount"`
	IsBlacklisted   *bool   `json:"isBlacklisted"`
	Description     *string `json:"description"`
}
