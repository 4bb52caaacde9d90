package credit

import (
	"time"

	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type ChargeInput struct {
	Amount      int64
	Description string
	ReferenceId string
	// Reactivate allows charging a suspended account and marks it active again.
	Reactivate bool
	Monthly    bool
	// Opening is the first credit of a new account and never reads as a reactivation.
	Opening bool
}

type DeductInput struct {
	Amount        int64
	Description   string
	ReferenceId   string
	AllowNegative bool
}

// Outcome is the result of one balance mutation. Account is an updated copy;
// the input account is never modified.
type Outcome struct {
	Account       *Account        `json:"account,omitempty"`
	Transaction   *Transaction    `json:"transaction,omitempty"`
	Notifications []*Notification `json:"notifications"`
}

type Alert struct {
	Type     NotificationType
	Severity Severity
}

var amountPrinter = message.NewPrinter(language.English)

func formatAmount(v int64) string {
	return amountPrinter.Sprintf("%d", v)
}

func Charge(acc *Account, settings Settings, in ChargeInput, now time.Time) (*Outcome, error) {
	if in.Amount <= 0 {
		return nil, appErrors.NewValidationError("amount", "must be greater than zero")
	}
	if !acc.IsActive && !in.Reactivate {
		return nil, appErrors.ErrInactiveAccount.WithDetails(map[string]interface{}{
			"account_id": acc.Id.String(),
		})
	}

	next := *acc
	before := acc.Balance
	after, err := TransactionCharge.Apply(before, in.Amount)
	if err != nil {
		return nil, err
	}
	next.Balance = after
	next.LastChargedAt = &now
	next.UpdatedAt = now
	if in.Reactivate {
		next.IsActive = true
	}

	out := &Outcome{
		Account:     &next,
		Transaction: newTransaction(&next, TransactionCharge, in.Amount, before, in.Description, in.ReferenceId, now),
	}

	kind := NotificationManualCharge
	if in.Monthly {
		kind = NotificationMonthlyCharge
	}
	out.Notifications = append(out.Notifications, newNotification(&next, Alert{kind, SeverityLow}, in.Amount, now))
	if before <= 0 && after > 0 && !in.Opening {
		out.Notifications = append(out.Notifications, newNotification(&next, Alert{NotificationAccountReactivated, SeverityMedium}, after, now))
	}
	return out, nil
}

func Deduct(acc *Account, settings Settings, in DeductInput, now time.Time) (*Outcome, error) {
	if in.Amount <= 0 {
		return nil, appErrors.NewValidationError("amount", "must be greater than zero")
	}
	if !acc.IsActive {
		return nil, appErrors.ErrInactiveAccount.WithDetails(map[string]interface{}{
			"account_id": acc.Id.String(),
		})
	}

	before := acc.Balance
	if before < in.Amount {
		withinLimit := acc.CreditLimit > 0 && before-in.Amount >= -acc.CreditLimit
		if !in.AllowNegative && !withinLimit {
			return nil, appErrors.ErrInsufficientBalance.WithDetails(map[string]interface{}{
				"balance":      before,
				"amount":       in.Amount,
				"credit_limit": acc.CreditLimit,
			})
		}
	}

	after, err := TransactionDeduction.Apply(before, in.Amount)
	if err != nil {
		return nil, err
	}
	next := *acc
	next.Balance = after
	next.UpdatedAt = now

	out := &Outcome{
		Account:     &next,
		Transaction: newTransaction(&next, TransactionDeduction, in.Amount, before, in.Description, in.ReferenceId, now),
	}
	for _, a := range EvaluateAlerts(after, acc.CreditLimit, settings) {
		out.Notifications = append(out.Notifications, newNotification(&next, a, after, now))
	}
	if after <= 0 && settings.SuspendOnZeroBalance {
		next.IsActive = false
		out.Notifications = append(out.Notifications, newNotification(&next, Alert{NotificationAccountSuspended, SeverityCritical}, after, now))
	}
	return out, nil
}

// Adjust applies a REFUND, ADJUSTMENT or MONTHLY_RESET. Alerts are evaluated
// only when the balance went down.
func Adjust(acc *Account, settings Settings, typ TransactionType, amount int64, description string, now time.Time) (*Outcome, error) {
	switch typ {
	case TransactionRefund, TransactionAdjustment, TransactionMonthlyReset:
	default:
		return nil, appErrors.NewValidationError("type", "must be REFUND, ADJUSTMENT or MONTHLY_RESET")
	}

	before := acc.Balance
	after, err := typ.Apply(before, amount)
	if err != nil {
		return nil, err
	}
	next := *acc
	next.Balance = after
	next.UpdatedAt = now

	out := &Outcome{
		Account:     &next,
		Transaction: newTransaction(&next, typ, amount, before, description, "", now),
	}
	if after < before {
		for _, a := range EvaluateAlerts(after, acc.CreditLimit, settings) {
			out.Notifications = append(out.Notifications, newNotification(&next, a, after, now))
		}
	}
	if before <= 0 && after > 0 {
		out.Notifications = append(out.Notifications, newNotification(&next, Alert{NotificationAccountReactivated, SeverityMedium}, after, now))
	}
	return out, nil
}

// Tier returns the single threshold tier a balance falls in, first match wins.
func Tier(balance int64, s Settings) (Alert, bool) {
	switch {
	case balance <= s.CriticalThreshold && balance > 0:
		return Alert{NotificationCriticalBalance, SeverityCritical}, true
	case balance <= s.WarningThreshold2 && balance > s.CriticalThreshold:
		return Alert{NotificationWarningLevel2, SeverityHigh}, true
	case balance <= s.WarningThreshold1 && balance > s.WarningThreshold2:
		return Alert{NotificationWarningLevel1, SeverityMedium}, true
	case balance <= s.LowBalanceThreshold && balance > s.WarningThreshold1:
		return Alert{NotificationLowBalance, SeverityLow}, true
	}
	return Alert{}, false
}

// EvaluateAlerts returns at most one tier alert plus the independent
// zero-balance and credit-limit alerts.
func EvaluateAlerts(balance, creditLimit int64, s Settings) []Alert {
	var alerts []Alert
	if a, ok := Tier(balance, s); ok {
		alerts = append(alerts, a)
	}
	if balance <= 0 {
		alerts = append(alerts, Alert{NotificationZeroBalance, SeverityCritical})
	}
	if creditLimit > 0 && balance < -creditLimit {
		alerts = append(alerts, Alert{NotificationCreditLimitExceeded, SeverityCritical})
	}
	return alerts
}

// NextChargeDate is the auto-charge date that follows a charge made at now.
// Only a charge made after the configured day moves to the following month;
// the day is clamped to the month length.
func NextChargeDate(now time.Time, chargeDay int, loc *time.Location) time.Time {
	local := now.In(loc)
	y, m := local.Year(), local.Month()
	if local.Day() > chargeDay {
		m++
		if m > time.December {
			m = time.January
			y++
		}
	}
	return pkg.ClampDay(y, m, chargeDay, loc)
}

// IsDue reports whether an eligible account should be charged by the monthly sweep.
func IsDue(acc *Account, s Settings, now time.Time, loc *time.Location, force bool) bool {
	if force {
		return true
	}
	if now.In(loc).Day() == s.ChargeDayOfMonth {
		return true
	}
	return acc.NextChargeDate == nil || !acc.NextChargeDate.After(now)
}

func newTransaction(acc *Account, typ TransactionType, amount, before int64, description, ref string, now time.Time) *Transaction {
	return &Transaction{
		Id:            pkg.NewID(),
		AccountId:     acc.Id,
		Amount:        amount,
		Type:          typ,
		BalanceBefore: before,
		BalanceAfter:  acc.Balance,
		Description:   description,
		ReferenceId:   ref,
		CreatedAt:     now,
	}
}

func newNotification(acc *Account, a Alert, amount int64, now time.Time) *Notification {
	title, body := render(a.Type, amount)
	return &Notification{
		Id:        pkg.NewID(),
		AccountId: acc.Id,
		Type:      a.Type,
		Title:     title,
		Message:   body,
		Severity:  a.Severity,
		CreatedAt: now,
	}
}

// FailureNotification builds the MONTHLY_CHARGE_FAILED notice for an account.
func FailureNotification(acc *Account, amount int64, reason string, now time.Time) *Notification {
	n := newNotification(acc, Alert{NotificationMonthlyChargeFailed, SeverityHigh}, amount, now)
	if reason != "" {
		n.Message += " (" + reason + ")"
	}
	return n
}

func render(t NotificationType, amount int64) (string, string) {
	v := formatAmount(amount)
	switch t {
	case NotificationCriticalBalance:
		return "موجودی بحرانی", "موجودی حساب شما به " + v + " ریال رسیده و در وضعیت بحرانی است."
	case NotificationWarningLevel2:
		return "هشدار سطح ۲ موجودی", "موجودی حساب شما " + v + " ریال است. لطفا حساب را شارژ کنید."
	case NotificationWarningLevel1:
		return "هشدار سطح ۱ موجودی", "موجودی حساب شما به " + v + " ریال کاهش یافته است."
	case NotificationLowBalance:
		return "موجودی کم", "موجودی حساب شما " + v + " ریال است."
	case NotificationZeroBalance:
		return "اتمام موجودی", "موجودی حساب شما " + v + " ریال است و اعتبار شما به پایان رسیده است."
	case NotificationCreditLimitExceeded:
		return "عبور از سقف اعتبار", "بدهی حساب شما با موجودی " + v + " ریال از سقف اعتبار مجاز عبور کرده است."
	case NotificationAccountSuspended:
		return "تعلیق حساب", "حساب شما به دلیل اتمام موجودی غیرفعال شد."
	case NotificationAccountReactivated:
		return "فعال‌سازی مجدد حساب", "حساب شما با موجودی " + v + " ریال دوباره فعال شد."
	case NotificationManualCharge:
		return "شارژ حساب", "مبلغ " + v + " ریال به حساب شما اضافه شد."
	case NotificationMonthlyCharge:
		return "شارژ ماهانه", "شارژ ماهانه به مبلغ " + v + " ریال انجام شد."
	case NotificationMonthlyChargeFailed:
		return "خطا در شارژ ماهانه", "شارژ ماهانه به مبلغ " + v + " ریال انجام نشد."
	}
	return string(t), v
}
