package routes

import (
	"net/http"

	"Parking/internal/contracts"
	"Parking/internal/domain/shared"
	"Parking/internal/domain/vehicle"
	"Parking/internal/pkg/query"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateVehicle(c *gin.Context) {
	var body contracts.VehicleCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	accountID, err := h.optionalID("creditAccountId", body.CreditAccountId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	v, err := h.VehicleService.Create(c.Request.Context(), &vehicle.CreateRequest{
		PlateNumber:     body.PlateNumber,
		VehicleType:     shared.VehicleType(body.VehicleType),
		OwnerName:       body.OwnerName,
		OwnerPhone:      body.OwnerPhone,
		CreditAccountId: accountID,
		IsBlacklisted:   body.IsBlacklisted,
		Description:     body.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) ListVehicles(c *gin.Context) {
	filter := vehicle.Filter{Search: h.queryString(c, "search")}
	if vt := c.Query("vehicleType"); vt != "" {
		v := shared.VehicleType(vt)
		filter.VehicleType = &v
	}
	var err error
	if filter.IsBlacklisted, err = h.queryBool(c, "blacklisted"); err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.VehicleService.List(c.Request.Context(), filter, query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetVehicle(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	v, err := h.VehicleService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) GetVehicleByPlate(c *gin.Context) {
	v, err := h.VehicleService.GetByPlate(c.Request.Context(), c.Param("plate"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) UpdateVehicle(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.VehicleUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	accountID, err := h.optionalID("creditAccountId", body.CreditAccountId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	req := &vehicle.UpdateRequest{
		OwnerName:       body.OwnerName,
		OwnerPhone:      body.OwnerPhone,
		CreditAccountId: accountID,
		ClearAccount:    body.ClearAccount,
		IsBlacklisted:   body.IsBlacklisted,
		Description:     body.Description,
	}
	if body.VehicleType != nil {
		vt := shared.VehicleType(*body.VehicleType)
		req.VehicleType = &vt
	}
	v, err := h.VehicleService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteVehicle(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.VehicleService.Delete(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
