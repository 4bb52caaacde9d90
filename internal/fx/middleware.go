package fx

import (
	"time"

	"Parking/config"
	"Parking/internal/domain/user"
	"Parking/internal/middleware"

	"go.uber.org/fx"
)

type limiters struct {
	fx.Out

	Auth *middleware.RateLimiter `name:"auth"`
	User *middleware.RateLimiter `name:"user"`
}

var MiddlewareModule = fx.Module("middleware",
	fx.Provide(
		newJwtService,
		newRateLimiters,
	),
)

func newJwtService(cfg *config.Config, userSvc *user.Service) (*middleware.JwtService, error) {
	return middleware.NewJwtService(cfg.JWT, userSvc)
}

// Login and register share a tight per-IP budget; authenticated traffic gets
// a per-user one sized for camera-driven entry and exit bursts.
func newRateLimiters() limiters {
	return limiters{
		Auth: middleware.NewRateLimiter(20, time.Minute),
		User: middleware.NewRateLimiter(600, time.Minute),
	}
}
