package fx

import (
	"time"

	"Parking/config"
	"Parking/internal/domain/auth"
	"Parking/internal/domain/credit"
	"Parking/internal/domain/holiday"
	"Parking/internal/domain/parking"
	"Parking/internal/domain/payment"
	"Parking/internal/domain/report"
	"Parking/internal/domain/reservation"
	"Parking/internal/domain/session"
	"Parking/internal/domain/tariff"
	"Parking/internal/domain/user"
	"Parking/internal/domain/vehicle"
	"Parking/internal/infrastructure"
	"Parking/internal/middleware"
	"Parking/internal/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var RoutesModule = fx.Module("routes",
	fx.Provide(
		newHandler,
		newRouter,
	),
)

type handlerParams struct {
	fx.In

	Users        *user.Service
	Auth         *auth.Service
	Jwt          *middleware.JwtService
	Tariffs      *tariff.Service
	Holidays     *holiday.Service
	Sessions     *session.Service
	Credit       *credit.Service
	Vehicles     *vehicle.Service
	Parking      *parking.Service
	Reservations *reservation.Service
	Payments     *payment.Service
	Reports      *report.Service
	Pinger       *infrastructure.DatabasePinger
	Location     *time.Location
}

func newHandler(p handlerParams) *routes.Handler {
	return &routes.Handler{
		UserService:        p.Users,
		AuthService:        p.Auth,
		JwtService:         p.Jwt,
		TariffService:      p.Tariffs,
		HolidayService:     p.Holidays,
		SessionService:     p.Sessions,
		CreditService:      p.Credit,
		VehicleService:     p.Vehicles,
		ParkingService:     p.Parking,
		ReservationService: p.Reservations,
		PaymentService:     p.Payments,
		ReportService:      p.Reports,
		Health:             p.Pinger,
		Location:           p.Location,
		Now:                time.Now,
	}
}

type routerParams struct {
	fx.In

	Config      *config.Config
	Handler     *routes.Handler
	AuthLimiter *middleware.RateLimiter `name:"auth"`
	UserLimiter *middleware.RateLimiter `name:"user"`
}

func newRouter(p routerParams) *gin.Engine {
	if p.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	routes.Register(router, p.Handler, routes.RouterOptions{
		CORSOrigins: p.Config.Server.CORSOrigins,
		AuthLimiter: p.AuthLimiter,
		UserLimiter: p.UserLimiter,
	})
	return router
}
