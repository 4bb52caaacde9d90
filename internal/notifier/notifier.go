package notifier

import (
	"context"
	"errors"
	"time"

	"Parking/internal/logger"
	"Parking/internal/obs"

	"github.com/cenkalti/backoff/v4"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelInApp Channel = "in_app"
)

type Recipient struct {
	AccountId string `json:"account_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
}

type Message struct {
	Id        string    `json:"id"`
	Recipient Recipient `json:"recipient"`
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Channels  []Channel `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Result struct {
	Channel Channel
	Err     error
}

// Report holds the per-channel outcome of one Notify call.
type Report struct {
	Results []Result
}

// Delivered reports whether at least one channel accepted the message.
func (r Report) Delivered() bool {
	for _, res := range r.Results {
		if res.Err == nil {
			return true
		}
	}
	return false
}

func (r Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) Report
}

// Sender moves one message over one channel.
type Sender interface {
	Send(ctx context.Context, channel Channel, msg Message) error
}

var ErrMissingAddress = errors.New("recipient has no address for channel")

// Dispatcher fans a message out to its channels through a Sender, retrying
// transient failures. Delivery errors end up in the Report and the logs.
type Dispatcher struct {
	Sender  Sender
	Backoff func() backoff.BackOff
}

func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{
		Sender: sender,
		Backoff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxElapsedTime = 2 * time.Second
			return b
		},
	}
}

func (d *Dispatcher) Notify(ctx context.Context, msg Message) Report {
	report := Report{Results: make([]Result, 0, len(msg.Channels))}
	for _, ch := range msg.Channels {
		err := d.send(ctx, ch, msg)
		obs.NotificationDeliveries.WithLabelValues(string(ch), obs.Outcome(err)).Inc()
		if err != nil {
			logger.Warn().
				Err(err).
				Str("notification_id", msg.Id).
				Str("account_id", msg.Recipient.AccountId).
				Str("channel", string(ch)).
				Msg("notification delivery failed")
		}
		report.Results = append(report.Results, Result{Channel: ch, Err: err})
	}
	return report
}

func (d *Dispatcher) send(ctx context.Context, ch Channel, msg Message) error {
	switch ch {
	case ChannelSMS:
		if msg.Recipient.Phone == "" {
			return ErrMissingAddress
		}
	case ChannelEmail:
		if msg.Recipient.Email == "" {
			return ErrMissingAddress
		}
	}

	if d.Backoff == nil {
		return d.Sender.Send(ctx, ch, msg)
	}
	return backoff.Retry(func() error {
		return d.Sender.Send(ctx, ch, msg)
	}, backoff.WithContext(d.Backoff(), ctx))
}
