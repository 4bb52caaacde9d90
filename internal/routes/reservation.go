package routes

import (
	"context"
	"net/http"

	"Parking/internal/contracts"
	"Parking/internal/domain/reservation"
	"Parking/internal/domain/shared"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

func (h *Handler) CreateReservation(c *gin.Context) {
	var body contracts.ReservationCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	lotID, err := pkg.ParseID(body.LotId)
	if err != nil {
		h.respondError(c, appErrors.NewValidationError("lotId", "must be a valid id"))
		return
	}
	spotID, err := h.optionalID("spotId", body.SpotId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	r, err := h.ReservationService.Create(c.Request.Context(), &reservation.CreateRequest{
		LotId:       lotID,
		SpotId:      spotID,
		PlateNumber: body.PlateNumber,
		VehicleType: shared.VehicleType(body.VehicleType),
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Description: body.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (h *Handler) ListReservations(c *gin.Context) {
	filter := reservation.Filter{PlateNumber: h.queryString(c, "plate")}
	if s := c.Query("status"); s != "" {
		st := reservation.Status(s)
		filter.Status = &st
	}
	var err error
	if filter.LotId, err = h.optionalID("lotId", h.queryString(c, "lotId")); err != nil {
		h.respondError(c, err)
		return
	}
	if filter.SpotId, err = h.optionalID("spotId", h.queryString(c, "spotId")); err != nil {
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
	res, err := h.ReservationService.List(c.Request.Context(), filter, query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetReservation(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	r, err := h.ReservationService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *Handler) ConfirmReservation(c *gin.Context) {
	h.transitionReservation(c, h.ReservationService.Confirm)
}

func (h *Handler) CancelReservation(c *gin.Context) {
	h.transitionReservation(c, h.ReservationService.Cancel)
}

func (h *Handler) CompleteReservation(c *gin.Context) {
	h.transitionReservation(c, h.ReservationService.Complete)
}

func (h *Handler) transitionReservation(c *gin.Context, fn func(ctx context.Context, id ulid.ULID) (*reservation.Reservation, error)) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	r, err := fn(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}
