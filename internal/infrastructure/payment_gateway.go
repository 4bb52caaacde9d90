package infrastructure

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"Parking/config"
	"Parking/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// OfflineGateway approves every payment. It backs development and cashier
// desks that settle outside any provider.
type OfflineGateway struct {
	CallbackURL string
}

func (g *OfflineGateway) Name() string { return "offline" }

func (g *OfflineGateway) Request(ctx context.Context, p *payment.Payment, token string) (*payment.Authorization, error) {
	authority := uuid.NewString()
	auth := &payment.Authorization{Authority: authority}
	if g.CallbackURL != "" {
		auth.RedirectURL = g.CallbackURL + "?authority=" + url.QueryEscape(authority)
	}
	return auth, nil
}

func (g *OfflineGateway) Verify(ctx context.Context, authority string) (*payment.Verification, error) {
	if _, err := uuid.Parse(authority); err != nil {
		return nil, fmt.Errorf("invalid offline authority %q: %w", authority, err)
	}
	return &payment.Verification{
		Status:      payment.StatusPaid,
		ReferenceId: "OFF-" + strings.ToUpper(authority[:8]),
		Message:     "approved offline",
	}, nil
}

type OmiseGateway struct {
	Client    *omise.Client
	ReturnURI string
}

func NewOmiseGateway(pub, sec, returnURI string) (*OmiseGateway, error) {
	client, err := omise.NewClient(pub, sec)
	if err != nil {
		return nil, fmt.Errorf("create omise client: %w", err)
	}
	client.SetDebug(false)
	return &OmiseGateway{Client: client, ReturnURI: returnURI}, nil
}

func (g *OmiseGateway) Name() string { return "omise" }

// Request creates a charge from a card token or a source id (src_...).
func (g *OmiseGateway) Request(ctx context.Context, p *payment.Payment, token string) (*payment.Authorization, error) {
	if token == "" {
		return nil, fmt.Errorf("omise requires a card token or source id")
	}
	op := &operations.CreateCharge{
		Amount:      p.Amount,
		Currency:    strings.ToLower(p.Currency),
		ReturnURI:   g.ReturnURI,
		Description: "parking payment " + p.Id.String(),
		Metadata:    map[string]any{"payment_id": p.Id.String()},
	}
	if strings.HasPrefix(token, "src_") {
		op.Source = token
	} else {
		op.Card = token
	}

	ch := &omise.Charge{}
	if err := g.Client.Do(ch, op); err != nil {
		return nil, err
	}
	return &payment.Authorization{Authority: ch.ID, RedirectURL: ch.AuthorizeURI}, nil
}

func (g *OmiseGateway) Verify(ctx context.Context, authority string) (*payment.Verification, error) {
	ch := &omise.Charge{}
	if err := g.Client.Do(ch, &operations.RetrieveCharge{ChargeID: authority}); err != nil {
		return nil, err
	}

	switch string(ch.Status) {
	case "successful":
		return &payment.Verification{Status: payment.StatusPaid, ReferenceId: ch.ID}, nil
	case "failed", "expired", "reversed":
		msg := string(ch.Status)
		if ch.FailureMessage != nil {
			msg = *ch.FailureMessage
		}
		return &payment.Verification{Status: payment.StatusFailed, ReferenceId: ch.ID, Message: msg}, nil
	default:
		return &payment.Verification{Status: payment.StatusPending}, nil
	}
}

// NewPaymentGateway picks the provider named by PAYMENT_DRIVER.
func NewPaymentGateway(cfg *config.Config) (payment.Gateway, error) {
	switch cfg.Payment.Driver {
	case "omise":
		return NewOmiseGateway(cfg.Payment.OmisePublic, cfg.Payment.OmiseSecret, cfg.Payment.CallbackURL)
	case "offline", "":
		return &OfflineGateway{CallbackURL: cfg.Payment.CallbackURL}, nil
	default:
		return nil, fmt.Errorf("unknown payment driver %q", cfg.Payment.Driver)
	}
}
