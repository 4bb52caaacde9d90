package routes

import (
	"net/http"

	"Parking/internal/contracts"
	"Parking/internal/domain/parking"
	"Parking/internal/domain/shared"
	"Parking/internal/pkg/query"

	"github.com/gin-gonic/gin"
)

func lotRequest(body contracts.LotRequest) *parking.LotRequest {
	return &parking.LotRequest{
		Name:     body.Name,
		Address:  body.Address,
		Capacity: body.Capacity,
		IsActive: body.IsActive,
	}
}

func spotRequest(body contracts.SpotRequest) *parking.SpotRequest {
	req := &parking.SpotRequest{Code: body.Code, IsActive: body.IsActive}
	if body.VehicleType != nil {
		vt := shared.VehicleType(*body.VehicleType)
		req.VehicleType = &vt
	}
	return req
}

func (h *Handler) CreateLot(c *gin.Context) {
	var body contracts.LotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	lot, err := h.ParkingService.CreateLot(c.Request.Context(), lotRequest(body))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, lot)
}

func (h *Handler) ListLots(c *gin.Context) {
	res, err := h.ParkingService.ListLots(c.Request.Context(), query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetLot(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	lot, err := h.ParkingService.GetLot(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *Handler) UpdateLot(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.LotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	lot, err := h.ParkingService.UpdateLot(c.Request.Context(), id, lotRequest(body))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lot)
}

func (h *Handler) DeleteLot(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.ParkingService.DeleteLot(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetOccupancy(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	occ, err := h.ParkingService.Occupancy(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, occ)
}

func (h *Handler) CreateSpot(c *gin.Context) {
	lotID, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.SpotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	spot, err := h.ParkingService.CreateSpot(c.Request.Context(), lotID, spotRequest(body))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, spot)
}

func (h *Handler) ListSpots(c *gin.Context) {
	lotID, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	spots, err := h.ParkingService.ListSpots(c.Request.Context(), lotID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": spots, "total": len(spots)})
}

func (h *Handler) GetSpot(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	spot, err := h.ParkingService.GetSpot(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

func (h *Handler) UpdateSpot(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.SpotRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	spot, err := h.ParkingService.UpdateSpot(c.Request.Context(), id, spotRequest(body))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}
