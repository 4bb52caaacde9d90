package routes

import (
	"strconv"
	"time"

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
	appErrors "Parking/internal/errors"
	"Parking/internal/logger"
	"Parking/internal/middleware"
	"Parking/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

type Handler struct {
	UserService        *user.Service
	AuthService        *auth.Service
	JwtService         *middleware.JwtService
	TariffService      *tariff.Service
	HolidayService     *holiday.Service
	SessionService     *session.Service
	CreditService      *credit.Service
	VehicleService     *vehicle.Service
	ParkingService     *parking.Service
	ReservationService *reservation.Service
	PaymentService     *payment.Service
	ReportService      *report.Service
	Health             Pinger
	Location           *time.Location
	Now                func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) location() *time.Location {
	if h.Location != nil {
		return h.Location
	}
	return time.UTC
}

func (h *Handler) GetUserIDFromContext(c *gin.Context) (ulid.ULID, error) {
	userIDStr, exists := c.Get(middleware.ContextUserID)
	if !exists {
		return ulid.ULID{}, appErrors.ErrUnauthorized
	}
	userID, err := pkg.ParseID(userIDStr.(string))
	if err != nil {
		return ulid.ULID{}, appErrors.ErrUnauthorized.WithError(err)
	}
	return userID, nil
}

func (h *Handler) pathID(c *gin.Context, name string) (ulid.ULID, error) {
	id, err := pkg.ParseID(c.Param(name))
	if err != nil {
		return ulid.ULID{}, appErrors.NewValidationError(name, "must be a valid id")
	}
	return id, nil
}

func (h *Handler) optionalID(field string, raw *string) (*ulid.ULID, error) {
	id, err := pkg.ParseIDPtr(raw)
	if err != nil {
		return nil, appErrors.NewValidationError(field, "must be a valid id")
	}
	return id, nil
}

func (h *Handler) queryString(c *gin.Context, name string) *string {
	v := c.Query(name)
	if v == "" {
		return nil
	}
	return &v
}

func (h *Handler) queryBool(c *gin.Context, name string) (*bool, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, appErrors.NewValidationError(name, "must be true or false")
	}
	return &b, nil
}

// queryTime accepts a calendar date or an RFC3339 instant. With endOfDay a
// bare date means the start of the following day, so ranges stay half-open.
func (h *Handler) queryTime(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	v := c.Query(name)
	if v == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", v, h.location()); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, appErrors.NewValidationError(name, "must be YYYY-MM-DD or RFC3339")
	}
	return &t, nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	event := logger.Warn()
	if appErr.StatusCode >= 500 {
		event = logger.Error()
	}
	event = event.Str("code", appErr.Code).Str("path", c.FullPath())
	if appErr.Err != nil {
		event = event.Err(appErr.Err)
	}
	event.Msg("request_error")
	payload := gin.H{
		"error":   appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Details) > 0 {
		payload["details"] = appErr.Details
	}
	c.JSON(appErr.StatusCode, payload)
}

func (h *Handler) bindError(c *gin.Context, err error) {
	appErr := appErrors.ParseValidationErrors(err)
	if appErr.Code == appErrors.ErrBadRequest.Code {
		appErr = appErr.WithDetails(map[string]interface{}{"reason": err.Error()})
	}
	h.respondError(c, appErr)
}
