package credit_test

import (
	"testing"
	"time"

	"Parking/internal/domain/credit"
	appErrors "Parking/internal/errors"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tehran = time.FixedZone("IRST", 3*3600+1800)

func ladderSettings() credit.Settings {
	return credit.Settings{
		LowBalanceThreshold: 100000,
		WarningThreshold1:   50000,
		WarningThreshold2:   20000,
		CriticalThreshold:   5000,
		ChargeDayOfMonth:    1,
		InAppEnabled:        true,
	}
}

func activeAccount(balance int64) *credit.Account {
	return &credit.Account{Id: ulid.Make(), OwnerName: "Sara", Balance: balance, IsActive: true}
}

func notificationTypes(notes []*credit.Notification) []credit.NotificationType {
	out := make([]credit.NotificationType, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Type)
	}
	return out
}

func TestDeductHitsCriticalBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)
	acc := activeAccount(12000)

	out, err := credit.Deduct(acc, ladderSettings(), credit.DeductInput{Amount: 7000}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), out.Account.Balance)
	assert.Equal(t, int64(12000), acc.Balance, "input account is not modified")
	assert.Equal(t, int64(12000), out.Transaction.BalanceBefore)
	assert.Equal(t, int64(5000), out.Transaction.BalanceAfter)
	assert.Equal(t, credit.TransactionDeduction, out.Transaction.Type)

	require.Len(t, out.Notifications, 1)
	assert.Equal(t, credit.NotificationCriticalBalance, out.Notifications[0].Type)
	assert.Equal(t, credit.SeverityCritical, out.Notifications[0].Severity)
	assert.Contains(t, out.Notifications[0].Message, "5,000")
}

func TestDeductInsufficientBalance(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)

	_, err := credit.Deduct(activeAccount(12000), ladderSettings(), credit.DeductInput{Amount: 15000}, now)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInsufficientBalance.Code))

	withLimit := activeAccount(12000)
	withLimit.CreditLimit = 5000
	out, err := credit.Deduct(withLimit, ladderSettings(), credit.DeductInput{Amount: 15000}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(-3000), out.Account.Balance)

	_, err = credit.Deduct(withLimit, ladderSettings(), credit.DeductInput{Amount: 18000}, now)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInsufficientBalance.Code))
}

func TestDeductAllowNegativeExceedsCreditLimit(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)
	acc := activeAccount(1000)
	acc.CreditLimit = 2000

	out, err := credit.Deduct(acc, ladderSettings(), credit.DeductInput{Amount: 6000, AllowNegative: true}, now)
	require.NoError(t, err)
	assert.Equal(t, int64(-5000), out.Account.Balance)
	assert.Equal(t, []credit.NotificationType{
		credit.NotificationZeroBalance,
		credit.NotificationCreditLimitExceeded,
	}, notificationTypes(out.Notifications))
	assert.True(t, out.Account.IsActive)
}

func TestDeductSuspendsOnZeroBalance(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)
	settings := ladderSettings()
	settings.SuspendOnZeroBalance = true

	out, err := credit.Deduct(activeAccount(4000), settings, credit.DeductInput{Amount: 4000}, now)
	require.NoError(t, err)
	assert.False(t, out.Account.IsActive)
	assert.Equal(t, []credit.NotificationType{
		credit.NotificationZeroBalance,
		credit.NotificationAccountSuspended,
	}, notificationTypes(out.Notifications))

	_, err = credit.Deduct(out.Account, settings, credit.DeductInput{Amount: 1}, now)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInactiveAccount.Code))
}

func TestTierLadderIsExclusive(t *testing.T) {
	t.Parallel()

	s := ladderSettings()
	tests := []struct {
		balance int64
		want    credit.NotificationType
		ok      bool
	}{
		{balance: 200000},
		{balance: 100000, want: credit.NotificationLowBalance, ok: true},
		{balance: 50001, want: credit.NotificationLowBalance, ok: true},
		{balance: 50000, want: credit.NotificationWarningLevel1, ok: true},
		{balance: 20001, want: credit.NotificationWarningLevel1, ok: true},
		{balance: 20000, want: credit.NotificationWarningLevel2, ok: true},
		{balance: 5001, want: credit.NotificationWarningLevel2, ok: true},
		{balance: 5000, want: credit.NotificationCriticalBalance, ok: true},
		{balance: 1, want: credit.NotificationCriticalBalance, ok: true},
		{balance: 0},
		{balance: -10},
	}

	for _, tt := range tests {
		a, ok := credit.Tier(tt.balance, s)
		assert.Equal(t, tt.ok, ok, "balance=%d", tt.balance)
		assert.Equal(t, tt.want, a.Type, "balance=%d", tt.balance)

		tiers := 0
		for _, alert := range credit.EvaluateAlerts(tt.balance, 0, s) {
			switch alert.Type {
			case credit.NotificationLowBalance, credit.NotificationWarningLevel1,
				credit.NotificationWarningLevel2, credit.NotificationCriticalBalance:
				tiers++
			}
		}
		assert.LessOrEqual(t, tiers, 1, "balance=%d", tt.balance)
	}
}

func TestDeductThenChargeRestoresBalance(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)
	for _, amount := range []int64{1, 7000, 11999, 12000} {
		acc := activeAccount(12000)
		d, err := credit.Deduct(acc, ladderSettings(), credit.DeductInput{Amount: amount}, now)
		require.NoError(t, err)
		c, err := credit.Charge(d.Account, ladderSettings(), credit.ChargeInput{Amount: amount}, now)
		require.NoError(t, err)
		assert.Equal(t, acc.Balance, c.Account.Balance, "amount=%d", amount)
	}
}

func TestChargeReactivation(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)

	tests := []struct {
		name            string
		balance         int64
		amount          int64
		opening         bool
		wantReactivated bool
	}{
		{name: "from zero", balance: 0, amount: 1000, wantReactivated: true},
		{name: "from debt to positive", balance: -500, amount: 1000, wantReactivated: true},
		{name: "debt stays negative", balance: -5000, amount: 1000},
		{name: "debt to exactly zero", balance: -1000, amount: 1000},
		{name: "already positive", balance: 10, amount: 1000},
		{name: "opening credit", balance: 0, amount: 1000, opening: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := credit.ChargeInput{Amount: tt.amount, Opening: tt.opening}
			out, err := credit.Charge(activeAccount(tt.balance), ladderSettings(), in, now)
			require.NoError(t, err)
			types := notificationTypes(out.Notifications)
			assert.Equal(t, credit.NotificationManualCharge, types[0])
			assert.Equal(t, tt.wantReactivated, len(types) == 2 && types[1] == credit.NotificationAccountReactivated)
			require.NotNil(t, out.Account.LastChargedAt)
			assert.Equal(t, now, *out.Account.LastChargedAt)
		})
	}
}

func TestChargeSuspendedAccount(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)
	acc := activeAccount(0)
	acc.IsActive = false

	_, err := credit.Charge(acc, ladderSettings(), credit.ChargeInput{Amount: 1000}, now)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInactiveAccount.Code))

	out, err := credit.Charge(acc, ladderSettings(), credit.ChargeInput{Amount: 1000, Reactivate: true}, now)
	require.NoError(t, err)
	assert.True(t, out.Account.IsActive)
	assert.Contains(t, notificationTypes(out.Notifications), credit.NotificationAccountReactivated)

	_, err = credit.Charge(activeAccount(0), ladderSettings(), credit.ChargeInput{Amount: 0}, now)
	assert.True(t, appErrors.HasCode(err, "VALIDATION_ERROR"))
}

func TestTransactionTypeApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		typ     credit.TransactionType
		balance int64
		amount  int64
		want    int64
		wantErr bool
	}{
		{typ: credit.TransactionCharge, balance: 100, amount: 50, want: 150},
		{typ: credit.TransactionCharge, balance: 100, amount: -50, wantErr: true},
		{typ: credit.TransactionDeduction, balance: 100, amount: 150, want: -50},
		{typ: credit.TransactionDeduction, balance: 100, amount: 0, wantErr: true},
		{typ: credit.TransactionRefund, balance: -20, amount: 20, want: 0},
		{typ: credit.TransactionAdjustment, balance: 100, amount: -30, want: 70},
		{typ: credit.TransactionAdjustment, balance: 100, amount: 0, wantErr: true},
		{typ: credit.TransactionMonthlyReset, balance: 100, amount: 40000, want: 40000},
		{typ: credit.TransactionMonthlyReset, balance: 100, amount: -1, wantErr: true},
		{typ: credit.TransactionType("BONUS"), balance: 100, amount: 1, wantErr: true},
	}

	for _, tt := range tests {
		got, err := tt.typ.Apply(tt.balance, tt.amount)
		if tt.wantErr {
			assert.Error(t, err, "%s %d", tt.typ, tt.amount)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %d", tt.typ, tt.amount)
	}
}

func TestAdjustEvaluatesAlertsOnDecrease(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)

	out, err := credit.Adjust(activeAccount(30000), ladderSettings(), credit.TransactionAdjustment, -15000, "correction", now)
	require.NoError(t, err)
	assert.Equal(t, int64(15000), out.Account.Balance)
	assert.Equal(t, []credit.NotificationType{credit.NotificationWarningLevel2}, notificationTypes(out.Notifications))

	out, err = credit.Adjust(activeAccount(30000), ladderSettings(), credit.TransactionMonthlyReset, 40000, "reset", now)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), out.Account.Balance)
	assert.Empty(t, out.Notifications)

	_, err = credit.Adjust(activeAccount(1), ladderSettings(), credit.TransactionDeduction, 1, "", now)
	assert.True(t, appErrors.HasCode(err, "VALIDATION_ERROR"))
}

func TestSettingsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ladderSettings().Validate())

	bad := ladderSettings()
	bad.WarningThreshold2 = bad.WarningThreshold1
	assert.True(t, appErrors.HasCode(bad.Validate(), "VALIDATION_ERROR"))

	bad = ladderSettings()
	bad.ChargeDayOfMonth = 31
	assert.Error(t, bad.Validate())

	bad = ladderSettings()
	bad.AutoMonthlyCharge = true
	assert.Error(t, bad.Validate())
}

func TestNextChargeDate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		now  time.Time
		day  int
		want time.Time
	}{
		{name: "before charge day", now: time.Date(2026, 10, 3, 10, 0, 0, 0, tehran), day: 5, want: time.Date(2026, 10, 5, 0, 0, 0, 0, tehran)},
		{name: "on charge day stays in month", now: time.Date(2026, 10, 5, 10, 0, 0, 0, tehran), day: 5, want: time.Date(2026, 10, 5, 0, 0, 0, 0, tehran)},
		{name: "after charge day", now: time.Date(2026, 10, 20, 10, 0, 0, 0, tehran), day: 5, want: time.Date(2026, 11, 5, 0, 0, 0, 0, tehran)},
		{name: "year rollover", now: time.Date(2026, 12, 29, 10, 0, 0, 0, tehran), day: 28, want: time.Date(2027, 1, 28, 0, 0, 0, 0, tehran)},
		{name: "clamped to month length", now: time.Date(2027, 2, 10, 10, 0, 0, 0, tehran), day: 31, want: time.Date(2027, 2, 28, 0, 0, 0, 0, tehran)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, credit.NextChargeDate(tt.now, tt.day, tehran), tt.name)
	}
}

func TestIsDue(t *testing.T) {
	t.Parallel()

	s := ladderSettings()
	s.ChargeDayOfMonth = 10
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, tehran)
	future := now.Add(48 * time.Hour)
	past := now.Add(-time.Hour)

	assert.True(t, credit.IsDue(&credit.Account{}, s, now, tehran, false), "unset next charge date")
	assert.True(t, credit.IsDue(&credit.Account{NextChargeDate: &past}, s, now, tehran, false))
	assert.False(t, credit.IsDue(&credit.Account{NextChargeDate: &future}, s, now, tehran, false))
	assert.True(t, credit.IsDue(&credit.Account{NextChargeDate: &future}, s, now, tehran, true))

	s.ChargeDayOfMonth = 14
	assert.True(t, credit.IsDue(&credit.Account{NextChargeDate: &future}, s, now, tehran, false))
}
