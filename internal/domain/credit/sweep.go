package credit

import (
	"context"
	"time"

	appErrors "Parking/internal/errors"
	"Parking/internal/logger"
	"Parking/internal/obs"
	"Parking/internal/pkg"

	"github.com/oklog/ulid/v2"
)

type SweepError struct {
	AccountId ulid.ULID `json:"accountId"`
	Message   string    `json:"message"`
}

type SweepResult struct {
	Processed  int          `json:"processed"`
	Successful int          `json:"successful"`
	Failed     int          `json:"failed"`
	Skipped    int          `json:"skipped"`
	Errors     []SweepError `json:"errors,omitempty"`
}

type CheckResult struct {
	Checked    int `json:"checked"`
	Created    int `json:"created"`
	Suppressed int `json:"suppressed"`
	Failed     int `json:"failed"`
}

// SweepDueAccounts charges every eligible auto-charge account that is due.
// Accounts are processed one by one and a failure never stops the sweep.
func (s *Service) SweepDueAccounts(ctx context.Context, now time.Time, force bool) (*SweepResult, error) {
	accounts, err := s.Repository.ListAutoChargeAccounts(ctx)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	loc := s.location()
	month := now.In(loc).Format("2006-01")
	res := &SweepResult{}

	for _, acc := range accounts {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		settings, err := loadSettings(ctx, s.Repository, acc.Id)
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, SweepError{AccountId: acc.Id, Message: err.Error()})
			continue
		}
		if !acc.IsActive || !acc.AutoCharge || !settings.AutoMonthlyCharge || !IsDue(acc, settings, now, loc, force) {
			res.Skipped++
			obs.SweepAccounts.WithLabelValues("monthly", "skipped").Inc()
			continue
		}
		if !force {
			done, err := s.Repository.HasCompletedMonthlyCharge(ctx, acc.Id, month)
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, SweepError{AccountId: acc.Id, Message: err.Error()})
				continue
			}
			if done {
				res.Skipped++
				obs.SweepAccounts.WithLabelValues("monthly", "skipped").Inc()
				continue
			}
		}

		res.Processed++
		if err := s.chargeMonthly(ctx, acc, settings, month, now); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, SweepError{AccountId: acc.Id, Message: err.Error()})
			obs.SweepAccounts.WithLabelValues("monthly", "failed").Inc()
			continue
		}
		res.Successful++
		obs.SweepAccounts.WithLabelValues("monthly", "successful").Inc()
	}

	logger.Info().
		Int("processed", res.Processed).
		Int("successful", res.Successful).
		Int("failed", res.Failed).
		Int("skipped", res.Skipped).
		Bool("force", force).
		Msg("monthly charge sweep finished")
	return res, nil
}

func (s *Service) chargeMonthly(ctx context.Context, acc *Account, settings Settings, month string, now time.Time) error {
	mc := &MonthlyCharge{
		Id:         pkg.NewID(),
		AccountId:  acc.Id,
		Amount:     settings.MonthlyChargeAmount,
		Status:     MonthlyChargeProcessing,
		ChargedFor: month,
		CreatedAt:  now,
	}
	if err := s.Repository.CreateMonthlyCharge(ctx, mc); err != nil {
		return appErrors.NewDatabaseError(err)
	}

	loc := s.location()
	out, err := s.mutate(ctx, acc.Id, "monthly_charge", func(locked *Account, current Settings, at time.Time) (*Outcome, error) {
		o, err := Charge(locked, current, ChargeInput{
			Amount:      current.MonthlyChargeAmount,
			Description: "شارژ ماهانه " + month,
			ReferenceId: mc.Id.String(),
			Monthly:     true,
		}, at)
		if err != nil {
			return nil, err
		}
		next := NextChargeDate(at, current.ChargeDayOfMonth, loc)
		o.Account.NextChargeDate = &next
		return o, nil
	})

	completed := s.now()
	mc.CompletedAt = &completed
	if err != nil {
		mc.Status = MonthlyChargeFailed
		mc.ErrorMessage = err.Error()
		if uerr := s.Repository.UpdateMonthlyCharge(ctx, mc); uerr != nil {
			logger.Error().Err(uerr).Str("monthly_charge_id", mc.Id.String()).Msg("failed to record monthly charge failure")
		}
		s.notifyFailure(ctx, acc, settings, err, now)
		logger.Warn().Err(err).Str("account_id", acc.Id.String()).Msg("monthly charge failed")
		return err
	}

	mc.Status = MonthlyChargeCompleted
	mc.TransactionId = &out.Transaction.Id
	if err := s.Repository.UpdateMonthlyCharge(ctx, mc); err != nil {
		logger.Error().Err(err).Str("monthly_charge_id", mc.Id.String()).Msg("failed to complete monthly charge record")
	}
	return nil
}

func (s *Service) notifyFailure(ctx context.Context, acc *Account, settings Settings, cause error, now time.Time) {
	reason := cause.Error()
	if appErr, ok := appErrors.AsAppError(cause); ok {
		reason = appErr.Message
	}
	n := FailureNotification(acc, settings.MonthlyChargeAmount, reason, now)
	if err := s.Repository.CreateNotifications(ctx, []*Notification{n}); err != nil {
		logger.Error().Err(err).Str("account_id", acc.Id.String()).Msg("failed to store monthly charge failure notification")
		return
	}
	s.deliver(ctx, acc, settings, []*Notification{n})
}

// CheckNotifications re-evaluates balance alerts for every active account and
// creates only those not already raised within the last 24 hours, unless force
// is set. Running it twice on an unchanged balance creates nothing the second time.
func (s *Service) CheckNotifications(ctx context.Context, now time.Time, force bool) (*CheckResult, error) {
	accounts, err := s.Repository.ListActiveAccounts(ctx)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}

	res := &CheckResult{}
	for _, acc := range accounts {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		res.Checked++

		created, suppressed, err := s.checkAccount(ctx, acc, now, force)
		res.Created += created
		res.Suppressed += suppressed
		if err != nil {
			res.Failed++
			obs.SweepAccounts.WithLabelValues("notifications", "failed").Inc()
			logger.Warn().Err(err).Str("account_id", acc.Id.String()).Msg("notification check failed")
			continue
		}
		obs.SweepAccounts.WithLabelValues("notifications", "successful").Inc()
	}

	logger.Info().
		Int("checked", res.Checked).
		Int("created", res.Created).
		Int("suppressed", res.Suppressed).
		Bool("force", force).
		Msg("notification check finished")
	return res, nil
}

func (s *Service) checkAccount(ctx context.Context, acc *Account, now time.Time, force bool) (int, int, error) {
	settings, err := loadSettings(ctx, s.Repository, acc.Id)
	if err != nil {
		return 0, 0, err
	}

	var (
		notes      []*Notification
		suppressed int
	)
	for _, a := range EvaluateAlerts(acc.Balance, acc.CreditLimit, settings) {
		if !force {
			recent, err := s.Repository.HasRecentNotification(ctx, acc.Id, a.Type, a.Severity, now.Add(-dedupWindow))
			if err != nil {
				return 0, suppressed, err
			}
			if recent {
				suppressed++
				continue
			}
		}
		notes = append(notes, newNotification(acc, a, acc.Balance, now))
	}
	if len(notes) == 0 {
		return 0, suppressed, nil
	}
	if err := s.Repository.CreateNotifications(ctx, notes); err != nil {
		return 0, suppressed, err
	}
	s.deliver(ctx, acc, settings, notes)
	return len(notes), suppressed, nil
}
