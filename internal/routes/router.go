package routes

import (
	"Parking/internal/domain/user"
	"Parking/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	CORSOrigins []string
	AuthLimiter *middleware.RateLimiter
	UserLimiter *middleware.RateLimiter
}

// Register mounts every endpoint on router. Reads need VIEWER, day to day
// desk operations need OPERATOR and configuration needs ADMIN.
func Register(router *gin.Engine, h *Handler, opts RouterOptions) {
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics())
	router.Use(middleware.CORSMiddleware(opts.CORSOrigins))

	router.GET("/healthz", h.Healthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	{
		auth := public.Group("/auth")
		if opts.AuthLimiter != nil {
			auth.Use(middleware.RateLimit(opts.AuthLimiter))
		}
		auth.POST("/login", h.Authenticate)
		auth.POST("/register", h.Registration)

		public.GET("/payments/callback", h.PaymentCallback)
	}

	private := router.Group("/api")
	private.Use(middleware.AuthMiddleware(h.JwtService))
	if opts.UserLimiter != nil {
		private.Use(middleware.RateLimitByUser(opts.UserLimiter))
	}
	private.Use(middleware.RequireRole(user.RoleViewer))

	operator := middleware.RequireRole(user.RoleOperator)
	admin := middleware.RequireRole(user.RoleAdmin)

	{
		users := private.Group("/users")
		users.GET("/me", h.GetCurrentUser)
		users.PATCH("/me/password", h.UpdateUserPassword)
		users.GET("", admin, h.ListUsers)
		users.PATCH("/:id/role", admin, h.UpdateUserRole)

		tariffs := private.Group("/tariffs")
		tariffs.GET("", h.ListTariffs)
		tariffs.GET("/:id", h.GetTariff)
		tariffs.POST("/calculate", h.CalculateFee)
		tariffs.POST("/estimate", h.EstimateFee)
		tariffs.POST("", admin, h.CreateTariff)
		tariffs.PATCH("/:id", admin, h.UpdateTariff)
		tariffs.DELETE("/:id", admin, h.DeleteTariff)

		holidays := private.Group("/holidays")
		holidays.GET("", h.ListHolidays)
		holidays.GET("/check", h.CheckHoliday)
		holidays.POST("", admin, h.CreateHoliday)
		holidays.PATCH("/:id", admin, h.UpdateHoliday)
		holidays.DELETE("/:id", admin, h.DeleteHoliday)

		sessions := private.Group("/sessions")
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.POST("/entry", operator, h.RegisterEntry)
		sessions.POST("/:id/exit", operator, h.RegisterExit)
		sessions.POST("/:id/cancel", operator, h.CancelSession)

		accounts := private.Group("/credit/accounts")
		accounts.GET("", h.ListCreditAccounts)
		accounts.GET("/:id", h.GetCreditAccount)
		accounts.GET("/:id/settings", h.GetCreditSettings)
		accounts.GET("/:id/transactions", h.ListCreditTransactions)
		accounts.GET("/:id/notifications", h.ListCreditNotifications)
		accounts.POST("", operator, h.CreateCreditAccount)
		accounts.PATCH("/:id", operator, h.UpdateCreditAccount)
		accounts.PUT("/:id/settings", operator, h.UpdateCreditSettings)
		accounts.POST("/:id/charge", operator, h.ChargeCredit)
		accounts.POST("/:id/deduct", operator, h.DeductCredit)
		accounts.POST("/:id/refund", operator, h.RefundCredit)
		accounts.POST("/:id/adjust", admin, h.AdjustCredit)
		accounts.POST("/:id/reconcile", admin, h.ReconcileCreditAccount)
		accounts.DELETE("/:id/transactions", admin, h.DeleteCreditTransactions)

		credit := private.Group("/credit")
		credit.GET("/notifications", h.ListCreditNotifications)
		credit.POST("/notifications/:id/read", operator, h.MarkCreditNotificationRead)
		credit.POST("/sweeps/monthly", admin, h.RunMonthlyCharges)
		credit.POST("/sweeps/notifications", admin, h.RunNotificationCheck)

		vehicles := private.Group("/vehicles")
		vehicles.GET("", h.ListVehicles)
		vehicles.GET("/plate/:plate", h.GetVehicleByPlate)
		vehicles.GET("/:id", h.GetVehicle)
		vehicles.POST("", operator, h.CreateVehicle)
		vehicles.PATCH("/:id", operator, h.UpdateVehicle)
		vehicles.DELETE("/:id", operator, h.DeleteVehicle)

		lots := private.Group("/lots")
		lots.GET("", h.ListLots)
		lots.GET("/:id", h.GetLot)
		lots.GET("/:id/occupancy", h.GetOccupancy)
		lots.GET("/:id/spots", h.ListSpots)
		lots.POST("", admin, h.CreateLot)
		lots.PATCH("/:id", admin, h.UpdateLot)
		lots.DELETE("/:id", admin, h.DeleteLot)
		lots.POST("/:id/spots", admin, h.CreateSpot)

		spots := private.Group("/spots")
		spots.GET("/:id", h.GetSpot)
		spots.PATCH("/:id", admin, h.UpdateSpot)

		reservations := private.Group("/reservations")
		reservations.GET("", h.ListReservations)
		reservations.GET("/:id", h.GetReservation)
		reservations.POST("", operator, h.CreateReservation)
		reservations.POST("/:id/confirm", operator, h.ConfirmReservation)
		reservations.POST("/:id/cancel", operator, h.CancelReservation)
		reservations.POST("/:id/complete", operator, h.CompleteReservation)

		payments := private.Group("/payments")
		payments.GET("", h.ListPayments)
		payments.GET("/:id", h.GetPayment)
		payments.POST("", operator, h.CreatePayment)
		payments.POST("/:id/verify", operator, h.VerifyPayment)

		reports := private.Group("/reports")
		reports.GET("/financial", h.FinancialReport)
		reports.GET("/traffic", h.TrafficReport)
	}
}
