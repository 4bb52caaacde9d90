package routes

import (
	"net/http"

	"Parking/internal/contracts"
	"Parking/internal/domain/holiday"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateHoliday(c *gin.Context) {
	var body contracts.HolidayCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	date, err := pkg.ParseDate(body.Date, h.location())
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("date", "must be YYYY-MM-DD"))
		return
	}
	hol, err := h.HolidayService.Create(c.Request.Context(), &holiday.CreateRequest{
		Date:        date,
		Name:        body.Name,
		Type:        holiday.Type(body.Type),
		IsRecurring: body.IsRecurring,
		Description: body.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, hol)
}

func (h *Handler) ListHolidays(c *gin.Context) {
	var filter holiday.Filter
	if t := c.Query("type"); t != "" {
		ht := holiday.Type(t)
		filter.Type = &ht
	}
	var err error
	if filter.IsActive, err = h.queryBool(c, "active"); err != nil {
		h.respondError(c, err)
		return
	}
	if filter.From, err = h.queryTime(c, "from", false); err != nil {
		h.respondError(c, err)
		return
	}
	if filter.To, err = h.queryTime(c, "to", true); err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.HolidayService.List(c.Request.Context(), filter, query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateHoliday(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.HolidayUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	req := &holiday.UpdateRequest{
		Name:        body.Name,
		IsRecurring: body.IsRecurring,
		IsActive:    body.IsActive,
		Description: body.Description,
	}
	if body.Date != nil {
		date, err := pkg.ParseDate(*body.Date, h.location())
		if err != nil {
			h.respondError(c, appErrors.NewValidationError("date", "must be YYYY-MM-DD"))
			return
		}
		req.Date = &date
	}
	if body.Type != nil {
		t := holiday.Type(*body.Type)
		req.Type = &t
	}
	hol, err := h.HolidayService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hol)
}

func (h *Handler) DeleteHoliday(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.HolidayService.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CheckHoliday(c *gin.Context) {
	at := h.now()
	if raw := c.Query("date"); raw != "" {
		d, err := pkg.ParseDate(raw, h.location())
		if err != nil {
			h.respondError(c, appErrors.NewValidationError("date", "must be YYYY-MM-DD"))
			return
		}
		at = d
	}
	info, err := h.HolidayService.Check(c.Request.Context(), at)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
