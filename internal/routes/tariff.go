package routes

import (
	"net/http"

	"Parking/internal/contracts"
	"Parking/internal/domain/shared"
	"Parking/internal/domain/tariff"
	"Parking/internal/pkg/query"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateTariff(c *gin.Context) {
	var body contracts.TariffCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	t, err := h.TariffService.Create(c.Request.Context(), &tariff.CreateRequest{
		Name:          body.Name,
		Description:   body.Description,
		VehicleType:   shared.VehicleType(body.VehicleType),
		EntranceFee:   body.EntranceFee,
		FreeMinutes:   body.FreeMinutes,
		HourlyRate:    body.HourlyRate,
		DailyRate:     body.DailyRate,
		NightlyRate:   body.NightlyRate,
		DailyCap:      body.DailyCap,
		NightlyCap:    body.NightlyCap,
		WeeklyCap:     body.WeeklyCap,
		MonthlyCap:    body.MonthlyCap,
		IsHolidayRate: body.IsHolidayRate,
		IsWeekendRate: body.IsWeekendRate,
		ValidFrom:     body.ValidFrom,
		ValidTo:       body.ValidTo,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) ListTariffs(c *gin.Context) {
	var filter tariff.Filter
	if vt := c.Query("vehicleType"); vt != "" {
		v := shared.VehicleType(vt)
		filter.VehicleType = &v
	}
	var err error
	if filter.IsActive, err = h.queryBool(c, "active"); err != nil {
		h.respondError(c, err)
		return
	}
	if filter.IsHolidayRate, err = h.queryBool(c, "holiday"); err != nil {
		h.respondError(c, err)
		return
	}
	if filter.IsWeekendRate, err = h.queryBool(c, "weekend"); err != nil {
		h.respondError(c, err)
		return
	}
	filter.Search = h.queryString(c, "search")

	res, err := h.TariffService.List(c.Request.Context(), filter, query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetTariff(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	t, err := h.TariffService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) UpdateTariff(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.TariffUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	t, err := h.TariffService.Update(c.Request.Context(), id, &tariff.UpdateRequest{
		Name:          body.Name,
		Description:   body.Description,
		EntranceFee:   body.EntranceFee,
		FreeMinutes:   body.FreeMinutes,
		HourlyRate:    body.HourlyRate,
		DailyRate:     body.DailyRate,
		NightlyRate:   body.NightlyRate,
		DailyCap:      body.DailyCap,
		NightlyCap:    body.NightlyCap,
		WeeklyCap:     body.WeeklyCap,
		MonthlyCap:    body.MonthlyCap,
		IsHolidayRate: body.IsHolidayRate,
		IsWeekendRate: body.IsWeekendRate,
		ValidFrom:     body.ValidFrom,
		ValidTo:       body.ValidTo,
		IsActive:      body.IsActive,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTariff(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.TariffService.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CalculateFee(c *gin.Context) {
	var body contracts.FeeCalculateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	quote, err := h.TariffService.Calculate(c.Request.Context(), body.EntryTime, body.ExitTime, shared.VehicleType(body.VehicleType))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *Handler) EstimateFee(c *gin.Context) {
	var body contracts.FeeEstimateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	quote, err := h.TariffService.Estimate(c.Request.Context(), body.EntryTime, body.Minutes, shared.VehicleType(body.VehicleType))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
