package notifier_test

import (
	"context"
	"errors"
	"testing"

	"Parking/internal/notifier"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sendFn func(ctx context.Context, ch notifier.Channel, msg notifier.Message) error
	calls  map[notifier.Channel]int
}

func (f *fakeSender) Send(ctx context.Context, ch notifier.Channel, msg notifier.Message) error {
	if f.calls == nil {
		f.calls = make(map[notifier.Channel]int)
	}
	f.calls[ch]++
	if f.sendFn != nil {
		return f.sendFn(ctx, ch, msg)
	}
	return nil
}

type fakePublisher struct {
	keys   []string
	values []any
}

func (f *fakePublisher) PublishJSON(ctx context.Context, key string, v any) error {
	f.keys = append(f.keys, key)
	f.values = append(f.values, v)
	return nil
}

func newDispatcher(sender notifier.Sender) *notifier.Dispatcher {
	d := notifier.NewDispatcher(sender)
	d.Backoff = func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 2)
	}
	return d
}

func TestDispatcherReportsPerChannel(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{
		sendFn: func(ctx context.Context, ch notifier.Channel, msg notifier.Message) error {
			if ch == notifier.ChannelEmail {
				return errors.New("smtp down")
			}
			return nil
		},
	}
	d := newDispatcher(sender)

	report := d.Notify(context.Background(), notifier.Message{
		Id:        "n1",
		Recipient: notifier.Recipient{AccountId: "a1", Phone: "09120000000", Email: "a@example.com"},
		Channels:  []notifier.Channel{notifier.ChannelInApp, notifier.ChannelSMS, notifier.ChannelEmail},
	})

	require.Len(t, report.Results, 3)
	assert.True(t, report.Delivered())
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, 3, sender.calls[notifier.ChannelEmail], "initial attempt plus two retries")
	assert.Equal(t, 1, sender.calls[notifier.ChannelSMS])
}

func TestDispatcherSkipsMissingAddress(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	d := newDispatcher(sender)

	report := d.Notify(context.Background(), notifier.Message{
		Id:       "n2",
		Channels: []notifier.Channel{notifier.ChannelSMS, notifier.ChannelEmail},
	})

	assert.False(t, report.Delivered())
	assert.Equal(t, 2, report.Failed())
	for _, res := range report.Results {
		assert.ErrorIs(t, res.Err, notifier.ErrMissingAddress)
	}
	assert.Empty(t, sender.calls)
}

func TestAMQPSenderRoutesByChannel(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	s := &notifier.AMQPSender{Publisher: pub}

	require.NoError(t, s.Send(context.Background(), notifier.ChannelSMS, notifier.Message{Id: "n3"}))
	require.NoError(t, s.Send(context.Background(), notifier.ChannelInApp, notifier.Message{Id: "n3"}))

	assert.Equal(t, []string{"notification.sms", "notification.in_app"}, pub.keys)
}
