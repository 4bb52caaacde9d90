package contracts

import "Parking/internal/domain/credit"

type CreditSettingsRequest struct {
	LowBalanceThreshold  *int64 `json:"lowBalanceThreshold" binding:"omitempty,gte=0"`
	WarningThreshold1    *int64 `json:"warningThreshold1" binding:"omitempty,gte=0"`
	WarningThreshold2    *int64 `json:"warningThreshold2" binding:"omitempty,gte=0"`
	CriticalThreshold    *int64 `json:"criticalThreshold" binding:"omitempty,gte=0"`
	AutoMonthlyCharge    *bool  `json:"autoMonthlyCharge"`
	MonthlyChargeAmount  *int64 `json:"monthlyChargeAmount" binding:"omitempty,gte=0"`
	ChargeDayOfMonth     *int   `json:"chargeDayOfMonth" binding:"omitempty,min=1,max=28"`
	EmailEnabled         *bool  `json:"emailEnabled"`
	SmsEnabled           *bool  `json:"smsEnabled"`
	InAppEnabled         *bool  `json:"inAppEnabled"`
	SuspendOnZeroBalance *bool  `json:"suspendOnZeroBalance"`
}

// Apply overlays the provided fields onto s.
func (r *CreditSettingsRequest) Apply(s *credit.Settings) {
	setInt64(&s.LowBalanceThreshold, r.LowBalanceThreshold)
	setInt64(&s.WarningThreshold1, r.WarningThreshold1)
	setInt64(&s.WarningThreshold2, r.WarningThreshold2)
	setInt64(&s.CriticalThreshold, r.CriticalThreshold)
	setBool(&s.AutoMonthlyCharge, r.AutoMonthlyCharge)
	setInt64(&s.MonthlyChargeAmount, r.MonthlyChargeAmount)
	if r.ChargeDayOfMonth != nil {
		s.ChargeDayOfMonth = *r.ChargeDayOfMonth
	}
	setBool(&s.EmailEnabled, r.EmailEnabled)
	setBool(&s.SmsEnabled, r.SmsEnabled)
	setBool(&s.InAppEnabled, r.InAppEnabled)
	setBool(&s.SuspendOnZeroBalance, r.SuspendOnZeroBalance)
}

func setInt64(dst *int64, v *int64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

type CreditAccountCreateRequest struct {
	OwnerName      string                 `json:"ownerName" binding:"required,max=100"`
	PlateNumber    string                 `json:"plateNumber" binding:"omitempty,max=20"`
	Phone          string                 `json:"phone" binding:"omitempty,max=20"`
	Email          string                 `json:"email" binding:"omitempty,email"`
	InitialBalance int64                  `json:"initialBalance" binding:"gte=0"`
	MonthlyLimit   int64                  `json:"monthlyLimit" binding:"gte=0"`
	CreditLimit    int64                  `json:"creditLimit" binding:"gte=0"`
	AutoCharge     bool                   `json:"autoCharge"`
	Description    string                 `json:"description"`
	Settings       *CreditSettingsRequest `json:"settings"`
}

type CreditAccountUpdateRequest struct {
	OwnerName    *string `json:"ownerName" binding:"omitempty,max=100"`
	PlateNumber  *string `json:"plateNumber" binding:"omitempty,max=20"`
	Phone        *string `json:"phone" binding:"omitempty,max=20"`
	Email        *string `json:"email" binding:"omitempty,email"`
	MonthlyLimit *int64  `json:"monthlyLimit" binding:"omitempty,gte=0"`
	CreditLimit  *int64  `json:"creditLimit" binding:"omitempty,gte=0"`
	AutoCharge   *bool   `json:"autoCharge"`
	IsActive     *bool   `json:"isActive"`
	Description  *string `json:"description"`
}

type CreditChargeRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"omitempty,max=255"`
	ReferenceId string `json:"referenceId" binding:"omitempty,max=64"`
	Reactivate  bool   `json:"reactivate"`
}

type CreditDeductRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0"`
	Description   string `json:"description" binding:"omitempty,max=255"`
	ReferenceId   string `json:"referenceId" binding:"omitempty,max=64"`
	AllowNegative bool   `json:"allowNegative"`
}

type CreditRefundRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

type CreditAdjustRequest struct {
	Type        string `json:"type" binding:"required,oneof=ADJUSTMENT MONTHLY_RESET"`
	Amount      int64  `json:"amount"`
	Description string `json:"description" binding:"omitempty,max=255"`
}

type CreditTransactionDeleteRequest struct {
	Ids []string `json:"ids" binding:"required,min=1,dive,required"`
}

type CreditTransactionDeleteResponse struct {
	Deleted int64           `json:"deleted"`
	Account *credit.Account `json:"account"`
}

type CreditAccountResponse struct {
	Account  *credit.Account  `json:"account"`
	Settings *credit.Settings `json:"settings,omitempty"`
}
