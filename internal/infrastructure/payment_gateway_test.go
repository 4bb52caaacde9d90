package infrastructure_test

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"Parking/config"
	"Parking/internal/domain/payment"
	"Parking/internal/infrastructure"
	"Parking/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfflineGatewayApproves(t *testing.T) {
	gw := &infrastructure.OfflineGateway{CallbackURL: "http://localhost/api/payments/callback"}
	p := &payment.Payment{Id: pkg.NewID(), Amount: 25000}

	auth, err := gw.Request(context.Background(), p, "")
	require.NoError(t, err)
	require.NotEmpty(t, auth.Authority)

	u, err := url.Parse(auth.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, auth.Authority, u.Query().Get("authority"))

	v, err := gw.Verify(context.Background(), auth.Authority)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusPaid, v.Status)
	assert.True(t, strings.HasPrefix(v.ReferenceId, "OFF-"))

	_, err = gw.Verify(context.Background(), "forged")
	assert.Error(t, err)
}

func TestNewPaymentGatewayDrivers(t *testing.T) {
	cfg := &config.Config{}

	gw, err := infrastructure.NewPaymentGateway(cfg)
	require.NoError(t, err)
	assert.Equal(t, "offline", gw.Name())

	cfg.Payment.Driver = "carrier-pigeon"
	_, err = infrastructure.NewPaymentGateway(cfg)
	assert.Error(t, err)
}
