package payment

import (
	"context"
	"time"

	"Parking/internal/domain/credit"
	"Parking/internal/domain/session"
	appErrors "Parking/internal/errors"
	"Parking/internal/logger"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/oklog/ulid/v2"
)

type SessionPayer interface {
	Get(ctx context.Context, id ulid.ULID) (*session.Session, error)
	MarkPaid(ctx context.Context, id ulid.ULID, amount int64) (*session.Session, error)
}

type CreditCharger interface {
	Get(ctx context.Context, id ulid.ULID) (*credit.Account, error)
	Charge(ctx context.Context, accountID ulid.ULID, in credit.ChargeInput) (*credit.Outcome, error)
}

type Service struct {
	Repository Repository
	Gateway    Gateway
	Sessions   SessionPayer
	Credit     CreditCharger
	Currency   string
	Clock      func() time.Time
}

func NewService(repo Repository, gw Gateway, sessions SessionPayer, charger CreditCharger, currency string) *Service {
	return &Service{
		Repository: repo,
		Gateway:    gw,
		Sessions:   sessions,
		Credit:     charger,
		Currency:   currency,
		Clock:      time.Now,
	}
}

type CreateRequest struct {
	SessionId *ulid.ULID
	AccountId *ulid.ULID
	// Amount defaults to the session's outstanding fee. Required for top-ups.
	Amount int64
	// Token is the gateway card token or source id, when the gateway needs one.
	Token string
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Payment, error) {
	if (req.SessionId == nil) == (req.AccountId == nil) {
		return nil, appErrors.NewValidationError("session_id", "exactly one of session_id or account_id is required")
	}
	if req.Amount < 0 {
		return nil, appErrors.NewValidationError("amount", "must be positive")
	}

	amount := req.Amount
	if req.SessionId != nil {
		sess, err := s.Sessions.Get(ctx, *req.SessionId)
		if err != nil {
			return nil, err
		}
		if sess.Status != session.StatusCompleted {
			return nil, appErrors.ErrSessionNotActive.WithDetails(map[string]interface{}{"status": string(sess.Status)})
		}
		outstanding := sess.Outstanding()
		if amount == 0 {
			amount = outstanding
		}
		if amount > outstanding {
			return nil, appErrors.NewValidationError("amount", "exceeds the outstanding fee")
		}
	} else if _, err := s.Credit.Get(ctx, *req.AccountId); err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, appErrors.NewValidationError("amount", "must be positive")
	}

	now := s.now()
	p := &Payment{
		Id:        pkg.NewID(),
		SessionId: req.SessionId,
		AccountId: req.AccountId,
		Amount:    amount,
		Currency:  s.Currency,
		Status:    StatusPending,
		Gateway:   s.Gateway.Name(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	auth, err := s.Gateway.Request(ctx, p, req.Token)
	if err != nil {
		logger.Error().Err(err).Str("payment_id", p.Id.String()).Str("gateway", p.Gateway).Msg("payment request failed")
		return nil, appErrors.ErrPaymentGateway.WithError(err)
	}
	p.Authority = auth.Authority
	p.RedirectURL = auth.RedirectURL

	if err := s.Repository.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info().
		Str("payment_id", p.Id.String()).
		Str("gateway", p.Gateway).
		Int64("amount", p.Amount).
		Msg("payment requested")
	return p, nil
}

// Verify asks the gateway for the final outcome and applies a paid payment to
// its session or credit account. A payment is applied at most once; a paid
// payment whose apply failed is applied again by the next Verify.
func (s *Service) Verify(ctx context.Context, id ulid.ULID) (*Payment, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.verify(ctx, p)
}

// VerifyByAuthority handles gateway callbacks that only carry the authority.
func (s *Service) VerifyByAuthority(ctx context.Context, authority string) (*Payment, error) {
	if authority == "" {
		return nil, appErrors.NewValidationError("authority", "is required")
	}
	p, err := s.Repository.GetByAuthority(ctx, authority)
	if err != nil {
		return nil, err
	}
	return s.verify(ctx, p)
}

func (s *Service) verify(ctx context.Context, p *Payment) (*Payment, error) {
	if p.Unapplied() {
		return s.applyOnce(ctx, p)
	}
	if p.Status != StatusPending {
		return p, nil
	}

	v, err := s.Gateway.Verify(ctx, p.Authority)
	if err != nil {
		return nil, appErrors.ErrPaymentGateway.WithError(err)
	}
	if v.Status == StatusPending {
		return p, nil
	}

	now := s.now()
	p.Status = v.Status
	p.ReferenceId = v.ReferenceId
	p.GatewayMessage = v.Message
	p.UpdatedAt = now
	if v.Status == StatusPaid {
		p.PaidAt = &now
	}

	settled, err := s.Repository.Settle(ctx, p)
	if err != nil {
		return nil, err
	}
	if !settled {
		return s.Get(ctx, p.Id)
	}

	logger.Info().
		Str("payment_id", p.Id.String()).
		Str("status", string(p.Status)).
		Str("reference_id", p.ReferenceId).
		Msg("payment settled")

	if p.Status == StatusPaid {
		return s.applyOnce(ctx, p)
	}
	return p, nil
}

// applyOnce claims the applied marker before crediting, so concurrent
// verifications credit a payment once. A failed apply releases the marker.
func (s *Service) applyOnce(ctx context.Context, p *Payment) (*Payment, error) {
	now := s.now()
	claimed, err := s.Repository.ClaimApply(ctx, p.Id, now)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return s.Get(ctx, p.Id)
	}

	if err := s.apply(ctx, p); err != nil {
		logger.Error().Err(err).Str("payment_id", p.Id.String()).Msg("failed to apply settled payment")
		if rerr := s.Repository.ReleaseApply(ctx, p.Id); rerr != nil {
			logger.Error().Err(rerr).Str("payment_id", p.Id.String()).Msg("failed to release payment apply marker")
		}
		return nil, err
	}
	p.AppliedAt = &now
	return p, nil
}

func (s *Service) apply(ctx context.Context, p *Payment) error {
	if p.SessionId != nil {
		_, err := s.Sessions.MarkPaid(ctx, *p.SessionId, p.Amount)
		return err
	}
	_, err := s.Credit.Charge(ctx, *p.AccountId, credit.ChargeInput{
		Amount:      p.Amount,
		Description: "شارژ آنلاین",
		ReferenceId: p.Id.String(),
		Reactivate:  true,
	})
	return err
}

func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Payment, error) {
	return s.Repository.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter, page query.Page) (*query.Result[*Payment], error) {
	return s.Repository.List(ctx, filter, page)
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock()
}
