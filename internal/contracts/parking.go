package contracts

type LotRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Address  *string `json:"address"`
	Capacity *int    `json:"capacity" binding:"omitempty,gte=0"`
	IsActive *bool   `json:"isActive"`
}

type SpotRequest struct {
	Code        *string `json:"code" binding:"omitempty,max=20"`
	VehicleType *string `json:"vehicleType" binding:"omitempty,oneof=CAR MOTORCYCLE TRUCK BUS VAN OTHER"`
	IsActive    *bool   `json:"isActive"`
}
