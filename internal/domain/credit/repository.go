package credit

import (
	"context"
	"time"

	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

// Store is the unit-of-work view used inside a balance mutation.
// LockAccount holds the account row until the surrounding transaction ends.
type Store interface {
	CreateAccount(ctx context.Context, acc *Account, settings *Settings) error
	LockAccount(ctx context.Context, id ulid.ULID) (*Account, error)
	// GetSettings returns nil, nil when the account has no settings row.
	GetSettings(ctx context.Context, accountID ulid.ULID) (*Settings, error)
	SaveAccount(ctx context.Context, acc *Account) error
	CreateTransaction(ctx context.Context, tx *Transaction) error
	CreateNotifications(ctx context.Context, notes []*Notification) error
	HasRecentNotification(ctx context.Context, accountID ulid.ULID, typ NotificationType, severity Severity, since time.Time) (bool, error)
	DeleteTransactions(ctx context.Context, accountID ulid.ULID, ids []ulid.ULID) (int64, error)
	// LatestTransaction returns nil, nil when the account has no transactions.
	LatestTransaction(ctx context.Context, accountID ulid.ULID) (*Transaction, error)
}

type Repository interface {
	Store
	Transaction(ctx context.Context, fn func(Store) error) error

	GetAccount(ctx context.Context, id ulid.ULID) (*Account, error)
	ListAccounts(ctx context.Context, filter AccountFilter, page query.Page) (*query.Result[*Account], error)
	ListAutoChargeAccounts(ctx context.Context) ([]*Account, error)
	ListActiveAccounts(ctx context.Context) ([]*Account, error)
	SaveSettings(ctx context.Context, settings *Settings) error

	ListTransactions(ctx context.Context, filter TransactionFilter, page query.Page) (*query.Result[*Transaction], error)
	ListNotifications(ctx context.Context, filter NotificationFilter, page query.Page) (*query.Result[*Notification], error)
	GetNotification(ctx context.Context, id ulid.ULID) (*Notification, error)
	MarkNotificationRead(ctx context.Context, id ulid.ULID, at time.Time) error
	MarkNotificationsSent(ctx context.Context, ids []ulid.ULID, at time.Time) error

	CreateMonthlyCharge(ctx context.Context, mc *MonthlyCharge) error
	UpdateMonthlyCharge(ctx context.Context, mc *MonthlyCharge) error
	HasCompletedMonthlyCharge(ctx context.Context, accountID ulid.ULID, month string) (bool, error)
}
