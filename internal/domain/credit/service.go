package credit

import (
	"context"
	"strings"
	"time"

	"Parking/internal/domain/shared"
	appErrors "Parking/internal/errors"
	"Parking/internal/logger"
	"Parking/internal/notifier"
	"Parking/internal/obs"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
)

const dedupWindow = 24 * time.Hour

type Service struct {
	Repository Repository
	Notifier   notifier.Notifier
	Location   *time.Location
	Clock      func() time.Time
}

func NewService(repo Repository, n notifier.Notifier, loc *time.Location) *Service {
	return &Service{Repository: repo, Notifier: n, Location: loc, Clock: time.Now}
}

type CreateAccountRequest struct {
	OwnerName      string
	PlateNumber    string
	Phone          string
	Email          string
	InitialBalance int64
	MonthlyLimit   int64
	CreditLimit    int64
	AutoCharge     bool
	Description    string
	Settings       *Settings
}

type UpdateAccountRequest struct {
	OwnerName    *string
	PlateNumber  *string
	Phone        *string
	Email        *string
	MonthlyLimit *int64
	CreditLimit  *int64
	AutoCharge   *bool
	IsActive     *bool
	Description  *string
}

type AdjustRequest struct {
	Type        TransactionType
	Amount      int64
	Description string
}

type mutation func(acc *Account, settings Settings, now time.Time) (*Outcome, error)

func (s *Service) CreateAccount(ctx context.Context, req *CreateAccountRequest) (*Account, error) {
	name := shared.NormalizeName(req.OwnerName)
	if name == "" {
		return nil, appErrors.NewValidationError("owner_name", "is required")
	}
	if req.InitialBalance < 0 {
		return nil, appErrors.NewValidationError("initial_balance", "must not be negative")
	}
	if req.MonthlyLimit < 0 {
		return nil, appErrors.NewValidationError("monthly_limit", "must not be negative")
	}
	if req.CreditLimit < 0 {
		return nil, appErrors.NewValidationError("credit_limit", "must not be negative")
	}

	now := s.now()
	acc := &Account{
		Id:           pkg.NewID(),
		OwnerName:    name,
		PlateNumber:  shared.NormalizePlate(req.PlateNumber),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		MonthlyLimit: req.MonthlyLimit,
		CreditLimit:  req.CreditLimit,
		IsActive:     true,
		AutoCharge:   req.AutoCharge,
		Description:  strings.TrimSpace(req.Description),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	settings := DefaultSettings(acc.Id)
	if req.Settings != nil {
		settings = *req.Settings
		settings.AccountId = acc.Id
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.UpdatedAt = now

	var notes []*Notification
	err := s.Repository.Transaction(ctx, func(st Store) error {
		if err := st.CreateAccount(ctx, acc, &settings); err != nil {
			return err
		}
		if req.InitialBalance <= 0 {
			return nil
		}
		out, err := Charge(acc, settings, ChargeInput{
			Amount:      req.InitialBalance,
			Description: "شارژ اولیه",
			Opening:     true,
		}, now)
		if err != nil {
			return err
		}
		if err := st.SaveAccount(ctx, out.Account); err != nil {
			return err
		}
		if err := st.CreateTransaction(ctx, out.Transaction); err != nil {
			return err
		}
		acc, notes = out.Account, out.Notifications
		return st.CreateNotifications(ctx, notes)
	})
	if err != nil {
		return nil, wrapRepoError(err)
	}

	logger.Info().
		Str("account_id", acc.Id.String()).
		Str("plate_number", acc.PlateNumber).
		Int64("balance", acc.Balance).
		Msg("credit account created")

	s.deliver(ctx, acc, settings, notes)
	return acc, nil
}

func (s *Service) UpdateAccount(ctx context.Context, id ulid.ULID, req *UpdateAccountRequest) (*Account, error) {
	var updated *Account
	err := s.Repository.Transaction(ctx, func(st Store) error {
		acc, err := st.LockAccount(ctx, id)
		if err != nil {
			return err
		}
		if req.OwnerName != nil {
			name := shared.NormalizeName(*req.OwnerName)
			if name == "" {
				return appErrors.NewValidationError("owner_name", "cannot be empty")
			}
			acc.OwnerName = name
		}
		if req.PlateNumber != nil {
			acc.PlateNumber = shared.NormalizePlate(*req.PlateNumber)
		}
		if req.Phone != nil {
			acc.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Email != nil {
			acc.Email = strings.TrimSpace(*req.Email)
		}
		if req.MonthlyLimit != nil {
			if *req.MonthlyLimit < 0 {
				return appErrors.NewValidationError("monthly_limit", "must not be negative")
			}
			acc.MonthlyLimit = *req.MonthlyLimit
		}
		if req.CreditLimit != nil {
			if *req.CreditLimit < 0 {
				return appErrors.NewValidationError("credit_limit", "must not be negative")
			}
			acc.CreditLimit = *req.CreditLimit
		}
		if req.AutoCharge != nil {
			acc.AutoCharge = *req.AutoCharge
		}
		if req.IsActive != nil {
			acc.IsActive = *req.IsActive
		}
		if req.Description != nil {
			acc.Description = strings.TrimSpace(*req.Description)
		}
		acc.UpdatedAt = s.now()
		updated = acc
		return st.SaveAccount(ctx, acc)
	})
	if err != nil {
		return nil, wrapRepoError(err)
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Account, error) {
	acc, err := s.Repository.GetAccount(ctx, id)
	if err != nil {
		return nil, wrapRepoError(err)
	}
	return acc, nil
}

func (s *Service) List(ctx context.Context, filter AccountFilter, page query.Page) (*query.Result[*Account], error) {
	res, err := s.Repository.ListAccounts(ctx, filter, page)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

func (s *Service) GetSettings(ctx context.Context, accountID ulid.ULID) (*Settings, error) {
	if _, err := s.Get(ctx, accountID); err != nil {
		return nil, err
	}
	settings, err := loadSettings(ctx, s.Repository, accountID)
	if err != nil {
		return nil, wrapRepoError(err)
	}
	return &settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, accountID ulid.ULID, settings Settings) (*Settings, error) {
	if _, err := s.Get(ctx, accountID); err != nil {
		return nil, err
	}
	settings.AccountId = accountID
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	settings.UpdatedAt = s.now()
	if err := s.Repository.SaveSettings(ctx, &settings); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return &settings, nil
}

func (s *Service) Charge(ctx context.Context, accountID ulid.ULID, in ChargeInput) (*Outcome, error) {
	return s.mutate(ctx, accountID, "charge", func(acc *Account, settings Settings, now time.Time) (*Outcome, error) {
		return Charge(acc, settings, in, now)
	})
}

func (s *Service) Deduct(ctx context.Context, accountID ulid.ULID, in DeductInput) (*Outcome, error) {
	return s.mutate(ctx, accountID, "deduct", func(acc *Account, settings Settings, now time.Time) (*Outcome, error) {
		return Deduct(acc, settings, in, now)
	})
}

func (s *Service) Refund(ctx context.Context, accountID ulid.ULID, amount int64, description string) (*Outcome, error) {
	return s.Adjust(ctx, accountID, AdjustRequest{Type: TransactionRefund, Amount: amount, Description: description})
}

func (s *Service) Adjust(ctx context.Context, accountID ulid.ULID, req AdjustRequest) (*Outcome, error) {
	return s.mutate(ctx, accountID, strings.ToLower(string(req.Type)), func(acc *Account, settings Settings, now time.Time) (*Outcome, error) {
		return Adjust(acc, settings, req.Type, req.Amount, req.Description, now)
	})
}

func (s *Service) ListTransactions(ctx context.Context, filter TransactionFilter, page query.Page) (*query.Result[*Transaction], error) {
	res, err := s.Repository.ListTransactions(ctx, filter, page)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

// DeleteTransactions removes ledger rows and reconciles the balance to the
// balanceAfter of the latest remaining row, or zero when none remain.
func (s *Service) DeleteTransactions(ctx context.Context, accountID ulid.ULID, ids []ulid.ULID) (int64, *Account, error) {
	if len(ids) == 0 {
		return 0, nil, appErrors.NewValidationError("ids", "is required")
	}
	var (
		deleted int64
		acc     *Account
	)
	err := s.Repository.Transaction(ctx, func(st Store) error {
		var err error
		if _, err = st.LockAccount(ctx, accountID); err != nil {
			return err
		}
		if deleted, err = st.DeleteTransactions(ctx, accountID, ids); err != nil {
			return err
		}
		acc, err = s.reconcile(ctx, st, accountID)
		return err
	})
	if err != nil {
		return 0, nil, wrapRepoError(err)
	}

	logger.Info().
		Str("account_id", accountID.String()).
		Int64("deleted", deleted).
		Int64("balance", acc.Balance).
		Msg("credit transactions deleted")
	return deleted, acc, nil
}

func (s *Service) Reconcile(ctx context.Context, accountID ulid.ULID) (*Account, error) {
	var acc *Account
	err := s.Repository.Transaction(ctx, func(st Store) error {
		var err error
		acc, err = s.reconcile(ctx, st, accountID)
		return err
	})
	if err != nil {
		return nil, wrapRepoError(err)
	}
	return acc, nil
}

func (s *Service) reconcile(ctx context.Context, st Store, accountID ulid.ULID) (*Account, error) {
	acc, err := st.LockAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	latest, err := st.LatestTransaction(ctx, accountID)
	if err != nil {
		return nil, err
	}
	acc.Balance = 0
	if latest != nil {
		acc.Balance = latest.BalanceAfter
	}
	acc.UpdatedAt = s.now()
	if err := st.SaveAccount(ctx, acc); err != nil {
		return nil, err
	}
	return acc, nil
}

func (s *Service) ListNotifications(ctx context.Context, filter NotificationFilter, page query.Page) (*query.Result[*Notification], error) {
	res, err := s.Repository.ListNotifications(ctx, filter, page)
	if err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	return res, nil
}

func (s *Service) MarkRead(ctx context.Context, id ulid.ULID) (*Notification, error) {
	n, err := s.Repository.GetNotification(ctx, id)
	if err != nil {
		if appErrors.IsAppError(err) {
			return nil, err
		}
		return nil, appErrors.ErrNotificationNotFound.WithError(err)
	}
	if n.IsRead {
		return n, nil
	}
	now := s.now()
	if err := s.Repository.MarkNotificationRead(ctx, id, now); err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	n.IsRead = true
	n.ReadAt = &now
	return n, nil
}

// mutate runs one balance change under the account row lock, persists the
// ledger row and the surviving notifications, then delivers after commit.
func (s *Service) mutate(ctx context.Context, accountID ulid.ULID, op string, fn mutation) (*Outcome, error) {
	ctx, span := obs.Tracer("credit").Start(ctx, "credit."+op)
	defer span.End()
	span.SetAttributes(attribute.String("account_id", accountID.String()))

	var (
		out      *Outcome
		settings Settings
	)
	now := s.now()
	err := s.Repository.Transaction(ctx, func(st Store) error {
		acc, err := st.LockAccount(ctx, accountID)
		if err != nil {
			return err
		}
		if settings, err = loadSettings(ctx, st, accountID); err != nil {
			return err
		}
		if out, err = fn(acc, settings, now); err != nil {
			return err
		}
		if err := st.SaveAccount(ctx, out.Account); err != nil {
			return err
		}
		if out.Transaction != nil {
			if err := st.CreateTransaction(ctx, out.Transaction); err != nil {
				return err
			}
		}
		if out.Notifications, err = dedup(ctx, st, out.Notifications, now); err != nil {
			return err
		}
		if len(out.Notifications) > 0 {
			return st.CreateNotifications(ctx, out.Notifications)
		}
		return nil
	})
	obs.CreditOperations.WithLabelValues(op, obs.Outcome(err)).Inc()
	if err != nil {
		span.RecordError(err)
		return nil, wrapRepoError(err)
	}

	logger.Info().
		Str("account_id", accountID.String()).
		Str("operation", op).
		Int64("balance_before", out.Transaction.BalanceBefore).
		Int64("balance_after", out.Transaction.BalanceAfter).
		Int("notifications", len(out.Notifications)).
		Msg("credit balance updated")

	s.deliver(ctx, out.Account, settings, out.Notifications)
	return out, nil
}

// dedup drops balance alerts already raised for the same type and severity
// within the last 24 hours.
func dedup(ctx context.Context, st Store, notes []*Notification, now time.Time) ([]*Notification, error) {
	kept := notes[:0]
	for _, n := range notes {
		if n.Type.IsAlert() {
			recent, err := st.HasRecentNotification(ctx, n.AccountId, n.Type, n.Severity, now.Add(-dedupWindow))
			if err != nil {
				return nil, err
			}
			if recent {
				continue
			}
		}
		kept = append(kept, n)
	}
	return kept, nil
}

func (s *Service) deliver(ctx context.Context, acc *Account, settings Settings, notes []*Notification) {
	if s.Notifier == nil || len(notes) == 0 {
		return
	}
	channels := Channels(settings)
	if len(channels) == 0 {
		return
	}

	sent := make([]ulid.ULID, 0, len(notes))
	for _, n := range notes {
		report := s.Notifier.Notify(ctx, notifier.Message{
			Id: n.Id.String(),
			Recipient: notifier.Recipient{
				AccountId: acc.Id.String(),
				Name:      acc.OwnerName,
				Phone:     acc.Phone,
				Email:     acc.Email,
			},
			Type:      string(n.Type),
			Severity:  string(n.Severity),
			Title:     n.Title,
			Body:      n.Message,
			Channels:  channels,
			CreatedAt: n.CreatedAt,
		})
		if report.Delivered() {
			sent = append(sent, n.Id)
		}
	}
	if len(sent) == 0 {
		return
	}
	if err := s.Repository.MarkNotificationsSent(ctx, sent, s.now()); err != nil {
		logger.Warn().Err(err).Str("account_id", acc.Id.String()).Msg("failed to mark notifications sent")
	}
}

// Channels lists the delivery channels enabled in the settings.
func Channels(s Settings) []notifier.Channel {
	var out []notifier.Channel
	if s.InAppEnabled {
		out = append(out, notifier.ChannelInApp)
	}
	if s.SmsEnabled {
		out = append(out, notifier.ChannelSMS)
	}
	if s.EmailEnabled {
		out = append(out, notifier.ChannelEmail)
	}
	return out
}

func loadSettings(ctx context.Context, st Store, accountID ulid.ULID) (Settings, error) {
	settings, err := st.GetSettings(ctx, accountID)
	if err != nil {
		return Settings{}, err
	}
	if settings == nil {
		return DefaultSettings(accountID), nil
	}
	return *settings, nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}

func (s *Service) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func wrapRepoError(err error) error {
	if appErrors.IsAppError(err) {
		return err
	}
	return appErrors.NewDatabaseError(err)
}
