package contracts

type HolidayCreateRequest struct {
	Date        string `json:"date" binding:"required"`
	Name        string `json:"name" binding:"required,max=100"`
	Type        string `json:"type" binding:"required,oneof=OFFICIAL FRIDAY RELIGIOUS CUSTOM"`
	IsRecurring bool   `json:"isRecurring"`
	Description string `json:"description"`
}

type HolidayUpdateRequest struct {
	Date        *string `json:"date"`
	Name        *string `json:"name" binding:"omitempty,max=100"`
	Type        *string `json:"type" binding:"omitempty,oneof=OFFICIAL FRIDAY RELIGIOUS CUSTOM"`
	IsRecurring *bool   `json:"isRecurring"`
	IsActive    *bool   `json:"isActive"`
	Description *string `json:"description"`
}
