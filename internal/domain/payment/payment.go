package payment

import (
	"context"
	"time"

	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

// Payment is one online payment for either a completed session's
// outstanding fee or a credit account top-up.
type Payment struct {
	Id             ulid.ULID  `json:"id"`
	SessionId      *ulid.ULID `json:"sessionId,omitempty"`
	AccountId      *ulid.ULID `json:"accountId,omitempty"`
	Amount         int64      `json:"amount"`
	Currency       string     `json:"currency"`
	Status         Status     `json:"status"`
	Gateway        string     `json:"gateway"`
	Authority      string     `json:"authority"`
	RedirectURL    string     `json:"redirectUrl"`
	ReferenceId    string     `json:"referenceId"`
	GatewayMessage string     `json:"gatewayMessage"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	// AppliedAt is set once a paid amount has been credited to its session or account.
	AppliedAt      *time.Time `json:"appliedAt,omitempty"`
}

// Unapplied reports whether the payment is paid but not yet credited.
func (p *Payment) Unapplied() bool {
	return p.Status == StatusPaid && p.AppliedAt == nil
}

type Filter struct {
	SessionId *ulid.ULID
	AccountId *ulid.ULID
	Status    *Status
	From      *time.Time
	To        *time.Time
}

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id ulid.ULID) (*Payment, error)
	GetByAuthority(ctx context.Context, authority string) (*Payment, error)
	// Settle writes the final status only if the payment is still pending and
	// reports whether this call performed the transition.
	Settle(ctx context.Context, p *Payment) (bool, error)
	// ClaimApply sets AppliedAt on a paid payment that has none and reports
	// whether this call set it. ReleaseApply clears it again.
	ClaimApply(ctx context.Context, id ulid.ULID, at time.Time) (bool, error)
	ReleaseApply(ctx context.Context, id ulid.ULID) error
	List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Payment], error)
}

type Authorization struct {
	Authority   string
	RedirectURL string
}

type Verification struct {
	Status      Status
	ReferenceId string
	Message     string
}

// Gateway is an online payment provider. Verify returns StatusPending while
// the provider has no final answer.
type Gateway interface {
	Name() string
	Request(ctx context.Context, p *Payment, token string) (*Authorization, error)
	Verify(ctx context.Context, authority string) (*Verification, error)
}
