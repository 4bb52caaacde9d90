package routes

import (
	"net/http"

	"Parking/internal/contracts"
	"Parking/internal/domain/credit"
	appErrors "Parking/internal/errors"
	"Parking/internal/pkg"
	"Parking/internal/pkg/query"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

func (h *Handler) CreateCreditAccount(c *gin.Context) {
	var body contracts.CreditAccountCreateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	req := &credit.CreateAccountRequest{
		OwnerName:      body.OwnerName,
		PlateNumber:    body.PlateNumber,
		Phone:          body.Phone,
		Email:          body.Email,
		InitialBalance: body.InitialBalance,
		MonthlyLimit:   body.MonthlyLimit,
		CreditLimit:    body.CreditLimit,
		AutoCharge:     body.AutoCharge,
		Description:    body.Description,
	}
	if body.Settings != nil {
		settings := credit.DefaultSettings(ulid.ULID{})
		body.Settings.Apply(&settings)
		req.Settings = &settings
	}

	ctx := c.Request.Context()
	acc, err := h.CreditService.CreateAccount(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	settings, err := h.CreditService.GetSettings(ctx, acc.Id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contracts.CreditAccountResponse{Account: acc, Settings: settings})
}

func (h *Handler) ListCreditAccounts(c *gin.Context) {
	filter := credit.AccountFilter{Search: h.queryString(c, "search")}
	var err error
	if filter.IsActive, err = h.queryBool(c, "active"); err != nil {
		h.respondError(c, err)
		return
	}
	if filter.AutoCharge, err = h.queryBool(c, "autoCharge"); err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.CreditService.List(c.Request.Context(), filter, query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetCreditAccount(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	ctx := c.Request.Context()
	acc, err := h.CreditService.Get(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	settings, err := h.CreditService.GetSettings(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.CreditAccountResponse{Account: acc, Settings: settings})
}

func (h *Handler) UpdateCreditAccount(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.CreditAccountUpdateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	acc, err := h.CreditService.UpdateAccount(c.Request.Context(), id, &credit.UpdateAccountRequest{
		OwnerName:    body.OwnerName,
		PlateNumber:  body.PlateNumber,
		Phone:        body.Phone,
		Email:        body.Email,
		MonthlyLimit: body.MonthlyLimit,
		CreditLimit:  body.CreditLimit,
		AutoCharge:   body.AutoCharge,
		IsActive:     body.IsActive,
		Description:  body.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *Handler) GetCreditSettings(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	settings, err := h.CreditService.GetSettings(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateCreditSettings overlays the provided fields on the stored settings,
// so a partial body leaves the other thresholds untouched.
func (h *Handler) UpdateCreditSettings(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.CreditSettingsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	ctx := c.Request.Context()
	current, err := h.CreditService.GetSettings(ctx, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	body.Apply(current)
	settings, err := h.CreditService.UpdateSettings(ctx, id, *current)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) ChargeCredit(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.CreditChargeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	out, err := h.CreditService.Charge(c.Request.Context(), id, credit.ChargeInput{
		Amount:      body.Amount,
		Description: body.Description,
		ReferenceId: body.ReferenceId,
		Reactivate:  body.Reactivate,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) DeductCredit(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.CreditDeductRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	out, err := h.CreditService.Deduct(c.Request.Context(), id, credit.DeductInput{
		Amount:        body.Amount,
		Description:   body.Description,
		ReferenceId:   body.ReferenceId,
		AllowNegative: body.AllowNegative,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) RefundCredit(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.CreditRefundRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	out, err := h.CreditService.Refund(c.Request.Context(), id, body.Amount, body.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) AdjustCredit(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.CreditAdjustRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	out, err := h.CreditService.Adjust(c.Request.Context(), id, credit.AdjustRequest{
		Type:        credit.TransactionType(body.Type),
		Amount:      body.Amount,
		Description: body.Description,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListCreditTransactions(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	filter := credit.TransactionFilter{AccountId: &id}
	if t := c.Query("type"); t != "" {
		tt := credit.TransactionType(t)
		filter.Type = &tt
	}
	if filter.From, err = h.queryTime(c, "from", false); err != nil {
		h.respondError(c, err)
		return
	}
	if filter.To, err = h.queryTime(c, "to", true); err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.CreditService.ListTransactions(c.Request.Context(), filter, query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteCreditTransactions(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var body contracts.CreditTransactionDeleteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		h.bindError(c, err)
		return
	}
	ids := make([]ulid.ULID, 0, len(body.Ids))
	for _, raw := range body.Ids {
		txID, err := pkg.ParseID(raw)
		if err != nil {
			h.respondError(c, appErrors.NewValidationError("ids", "must contain valid ids"))
			return
		}
		ids = append(ids, txID)
	}
	deleted, acc, err := h.CreditService.DeleteTransactions(c.Request.Context(), id, ids)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contracts.CreditTransactionDeleteResponse{Deleted: deleted, Account: acc})
}

func (h *Handler) ReconcileCreditAccount(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	acc, err := h.CreditService.Reconcile(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *Handler) ListCreditNotifications(c *gin.Context) {
	var filter credit.NotificationFilter
	if c.Param("id") != "" {
		id, err := h.pathID(c, "id")
		if err != nil {
			h.respondError(c, err)
			return
		}
		filter.AccountId = &id
	}
	if t := c.Query("type"); t != "" {
		nt := credit.NotificationType(t)
		filter.Type = &nt
	}
	if s := c.Query("severity"); s != "" {
		sev := credit.Severity(s)
		filter.Severity = &sev
	}
	unread, err := h.queryBool(c, "unread")
	if err != nil {
		h.respondError(c, err)
		return
	}
	filter.Unread = unread != nil && *unread

	res, err := h.CreditService.ListNotifications(c.Request.Context(), filter, query.PageFromGin(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) MarkCreditNotificationRead(c *gin.Context) {
	id, err := h.pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	n, err := h.CreditService.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) RunMonthlyCharges(c *gin.Context) {
	force, err := h.queryBool(c, "force")
	if err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.CreditService.SweepDueAccounts(c.Request.Context(), h.now(), force != nil && *force)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) RunNotificationCheck(c *gin.Context) {
	force, err := h.queryBool(c, "force")
	if err != nil {
		h.respondError(c, err)
		return
	}
	res, err := h.CreditService.CheckNotifications(c.Request.Context(), h.now(), force != nil && *force)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
