package contracts

type PaymentCreateRequest struct {
	SessionId *string `json:"sessionId"`
	AccountId *string `json:"accountId"`
	Amount    int64   `json:"amount" binding:"gte=0"`
	Token     string  `json:"token"`
}
