package credit

import (
	"time"

	appErrors "Parking/internal/errors"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"
)

type Account struct {
	Id             ulid.ULID  `json:"id"`
	OwnerName      string     `json:"ownerName"`
	PlateNumber    string     `json:"plateNumber"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email"`
	Balance        int64      `json:"balance"`
	MonthlyLimit   int64      `json:"monthlyLimit"`
	CreditLimit    int64      `json:"creditLimit"`
	IsActive       bool       `json:"isActive"`
	AutoCharge     bool       `json:"autoCharge"`
	LastChargedAt  *time.Time `json:"lastChargedAt,omitempty"`
	NextChargeDate *time.Time `json:"nextChargeDate,omitempty"`
	Description    string     `json:"description"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Settings holds the per-account thresholds and channel toggles.
// The threshold ladder requires LowBalance > Warning1 > Warning2 > Critical >= 0.
type Settings struct {
	AccountId            ulid.ULID `json:"accountId"`
	LowBalanceThreshold  int64     `json:"lowBalanceThreshold" validate:"gtfield=WarningThreshold1"`
	WarningThreshold1    int64     `json:"warningThreshold1" validate:"gtfield=WarningThreshold2"`
	WarningThreshold2    int64     `json:"warningThreshold2" validate:"gtfield=CriticalThreshold"`
	CriticalThreshold    int64     `json:"criticalThreshold" validate:"gte=0"`
	AutoMonthlyCharge    bool      `json:"autoMonthlyCharge"`
	MonthlyChargeAmount  int64     `json:"monthlyChargeAmount" validate:"gte=0"`
	ChargeDayOfMonth     int       `json:"chargeDayOfMonth" validate:"min=1,max=28"`
	EmailEnabled         bool      `json:"emailEnabled"`
	SmsEnabled           bool      `json:"smsEnabled"`
	InAppEnabled         bool      `json:"inAppEnabled"`
	SuspendOnZeroBalance bool      `json:"suspendOnZeroBalance"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func DefaultSettings(accountID ulid.ULID) Settings {
	return Settings{
		AccountId:           accountID,
		LowBalanceThreshold: 100000,
		WarningThreshold1:   50000,
		WarningThreshold2:   20000,
		CriticalThreshold:   5000,
		ChargeDayOfMonth:    1,
		InAppEnabled:        true,
	}
}

var settingsValidator = validator.New()

func (s Settings) Validate() error {
	if err := settingsValidator.Struct(s); err != nil {
		return appErrors.ParseValidationErrors(err)
	}
	if s.AutoMonthlyCharge && s.MonthlyChargeAmount <= 0 {
		return appErrors.NewValidationError("monthly_charge_amount", "must be greater than zero when auto monthly charge is enabled")
	}
	return nil
}

type TransactionType string

const (
	TransactionCharge       TransactionType = "CHARGE"
	TransactionDeduction    TransactionType = "DEDUCTION"
	TransactionRefund       TransactionType = "REFUND"
	TransactionAdjustment   TransactionType = "ADJUSTMENT"
	TransactionMonthlyReset TransactionType = "MONTHLY_RESET"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionCharge, TransactionDeduction, TransactionRefund, TransactionAdjustment, TransactionMonthlyReset:
		return true
	}
	return false
}

// Apply returns the balance after a transaction of this type and amount.
func (t TransactionType) Apply(balance, amount int64) (int64, error) {
	switch t {
	case TransactionCharge, TransactionRefund:
		if amount <= 0 {
			return 0, appErrors.NewValidationError("amount", "must be greater than zero")
		}
		return balance + amount, nil
	case TransactionDeduction:
		if amount <= 0 {
			return 0, appErrors.NewValidationError("amount", "must be greater than zero")
		}
		return balance - amount, nil
	case TransactionAdjustment:
		if amount == 0 {
			return 0, appErrors.NewValidationError("amount", "must not be zero")
		}
		return balance + amount, nil
	case TransactionMonthlyReset:
		if amount < 0 {
			return 0, appErrors.NewValidationError("amount", "must not be negative")
		}
		return amount, nil
	default:
		return 0, appErrors.NewValidationError("type", "is invalid")
	}
}

type Transaction struct {
	Id            ulid.ULID       `json:"id"`
	AccountId     ulid.ULID       `json:"accountId"`
	Amount        int64           `json:"amount"`
	Type          TransactionType `json:"type"`
	BalanceBefore int64           `json:"balanceBefore"`
	BalanceAfter  int64           `json:"balanceAfter"`
	Description   string          `json:"description"`
	ReferenceId   string          `json:"referenceId"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type NotificationType string

const (
	NotificationLowBalance          NotificationType = "LOW_BALANCE"
	NotificationWarningLevel1       NotificationType = "WARNING_LEVEL_1"
	NotificationWarningLevel2       NotificationType = "WARNING_LEVEL_2"
	NotificationCriticalBalance     NotificationType = "CRITICAL_BALANCE"
	NotificationZeroBalance         NotificationType = "ZERO_BALANCE"
	NotificationCreditLimitExceeded NotificationType = "CREDIT_LIMIT_EXCEEDED"
	NotificationAccountSuspended    NotificationType = "ACCOUNT_SUSPENDED"
	NotificationAccountReactivated  NotificationType = "ACCOUNT_REACTIVATED"
	NotificationManualCharge        NotificationType = "MANUAL_CHARGE"
	NotificationMonthlyCharge       NotificationType = "MONTHLY_CHARGE"
	NotificationMonthlyChargeFailed NotificationType = "MONTHLY_CHARGE_FAILED"
)

// IsAlert reports whether the type belongs to the balance alerts that the
// 24 hour dedup window applies to.
func (t NotificationType) IsAlert() bool {
	switch t {
	case NotificationLowBalance, NotificationWarningLevel1, NotificationWarningLevel2,
		NotificationCriticalBalance, NotificationZeroBalance, NotificationCreditLimitExceeded:
		return true
	}
	return false
}

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

type Notification struct {
	Id        ulid.ULID        `json:"id"`
	AccountId ulid.ULID        `json:"accountId"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Severity  Severity         `json:"severity"`
	IsRead    bool             `json:"isRead"`
	IsSent    bool             `json:"isSent"`
	SentAt    *time.Time       `json:"sentAt,omitempty"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

type MonthlyChargeStatus string

const (
	MonthlyChargeProcessing MonthlyChargeStatus = "PROCESSING"
	MonthlyChargeCompleted  MonthlyChargeStatus = "COMPLETED"
	MonthlyChargeFailed     MonthlyChargeStatus = "FAILED"
)

type MonthlyCharge struct {
	Id            ulid.ULID           `json:"id"`
	AccountId     ulid.ULID           `json:"accountId"`
	Amount        int64               `json:"amount"`
	Status        MonthlyChargeStatus `json:"status"`
	TransactionId *ulid.ULID          `json:"transactionId,omitempty"`
	ErrorMessage  string              `json:"errorMessage"`
	// ChargedFor is the billing month as YYYY-MM.
	ChargedFor  string     `json:"chargedFor"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

type AccountFilter struct {
	Search     *string
	IsActive   *bool
	AutoCharge *bool
}

type TransactionFilter struct {
	AccountId *ulid.ULID
	Type      *TransactionType
	From      *time.Time
	To        *time.Time
}

type NotificationFilter struct {
	AccountId *ulid.ULID
	Type      *NotificationType
	Severity  *Severity
	Unread    bool
}
