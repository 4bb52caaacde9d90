package routes

import (
	"net/http"

	"Parking/internal/contracts"
	"Parking/internal/domain/payment"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg/query"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreatePayment(c *gin.Context) {
	var body contracts.PaymentCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	sessionID, err := h.optionalID("sessionId", body.SessionId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	accountID, err := h.optionalID("accountId", body.AccountId)
	if err != nil {
		h.respondError(c, err)
		return
	}
	p, err := h.PaymentService.Create(c.Request.Context(), &payment.CreateRequest{
		SessionId: sessionID,
		AccountId: accountID,
		Amount:    body.Amount,
		Token:     body.Token,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPayments(c *gin.Context) {
	var filter payment.Filter
	if s := c.Query("status"); s != "" {
		st := payment.Status(s)
		filter.Status = &st
	}
	var err error
	if filter.SessionId, err = h.optionalID("sessionId", h.queryString(c, "sessionId")); err != nil {
		h.respondError(c, err)
		return
	}
	if filter.AccountId, err = h.optionalID("accountId", h.queryString(c, "accountId")); err != nil {
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
	res, err := h.PaymentService.List(c.Request.Context(), filter, query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetPayment(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	p, err := h.PaymentService.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) VerifyPayment(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	p, err := h.PaymentService.Verify(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PaymentCallback is hit by the gateway redirect, so it is unauthenticated
// and keyed by the gateway authority instead of our id.
func (h *Handler) PaymentCallback(c *gin.Context) {
	authority := c.Query("authority")
	if authority == "" {
		h.respondError(c, appErrors.NewValidationError("authority", "is required"))
		return
	}
	p, err := h.PaymentService.VerifyByAuthority(c.Request.Context(), authority)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
