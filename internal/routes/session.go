package routes

import (
	"net/http"

	"Parking/internal/contracts"
	"Parking/internal/domain/session"
	"Parking/internal/domain/shared"
	"Parking/internal/pkg/query"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterEntry(c *gin.Context) {
	var body contracts.EntryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	lotID, err := h.optionalID("lotId", body.LotId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	spotID, err := h.optionalID("spotId", body.SpotId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	accountID, err := h.optionalID("creditAccountId", body.CreditAccountId)
	if err != nil {
		h.respondError(c, err)
		return
	}

	sess, err := h.SessionService.Entry(c.Request.Context(), &session.EntryRequest{
		PlateNumber:     body.PlateNumber,
		VehicleType:     shared.VehicleType(body.VehicleType),
		EntryTime:       body.EntryTime,
		LotId:           lotID,
		SpotId:          spotID,
		CreditAccountId: accountID,
		Camera:          body.Camera,
		Description:     body.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sess)
}

func (h *Handler) RegisterExit(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.ExitRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	sess, err := h.SessionService.Exit(c.Request.Context(), id, &session.ExitRequest{
		ExitTime:      body.ExitTime,
		PaymentMethod: session.PaymentMethod(body.PaymentMethod),
		PaidAmount:    body.PaidAmount,
		AllowNegative: body.AllowNegative,
		Camera:        body.Camera,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) CancelSession(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	sess, err := h.SessionService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) GetSession(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	sess, err := h.SessionService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *Handler) ListSessions(c *gin.Context) {
	var filter session.Filter
	if s := c.Query("status"); s != "" {
		st := session.Status(s)
		filter.Status = &st
	}
	if vt := c.Query("vehicleType"); vt != "" {
		v := shared.VehicleType(vt)
		filter.VehicleType = &v
	}
	if m := c.Query("paymentMethod"); m != "" {
		pm := session.PaymentMethod(m)
		filter.PaymentMethod = &pm
	}
	filter.PlateNumber = h.queryString(c, "plate")

	var err error
	if filter.LotId, err = h.optionalID("lotId", h.queryString(c, "lotId")); err != nil {
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

	res, err := h.SessionService.List(c.Request.Context(), filter, query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
