package routes

import (
	"net/http"
	"time"

	appErrors "Parking/internal/errors"

	"github.com/gin-gonic/gin"
)

// reportPeriod reads from/to, defaulting to the current month so far.
func (h *Handler) reportPeriod(c *gin.Context) (time.Time, time.Time, error) {
	now := h.now().In(h.location())
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, h.location())
	to := now

	f, err := h.queryTime(c, "from", false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if f != nil {
		from = *f
	}
	t, err := h.queryTime(c, "to", true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if t != nil {
		to = *t
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, appErrors.NewValidationError("to", "must be after from")
	}
	return from, to, nil
}

func (h *Handler) FinancialReport(c *gin.Context) {
	from, to, err := h.reportPeriod(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	rep, err := h.ReportService.Financial(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *Handler) TrafficReport(c *gin.Context) {
	from, to, err := h.reportPeriod(c)
	if err != nil {
		h.respondError(c, err)
		return
	}
	rep, err := h.ReportService.Traffic(c.Request.Context(), from, to)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}
