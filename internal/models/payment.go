package models

// События платёжного провайдера.
const (
	PaymentSucceeded = "payment.succeeded"
	PaymentCanceled  = "payment.canceled"
	PaymentRefunded  = "payment.refunded"
)

// Amount денежная сумма в формате провайдера.
type Amount struct {
	Value    string `json:"value"`    // например "990.00"
	Currency string `json:"currency"` // например "RUB"
}

// PaymentEvent уведомление провайдера об изменении платежа.
// В Metadata передаются user_uid, plan и необязательный expires_at.
type PaymentEvent struct {
	Event  string `json:"event"`
	Object struct {
		ID       string            `json:"id"`
		Status   string            `json:"status"`
		Amount   Amount            `json:"amount"`
		Metadata map[string]string `json:"metadata"`
	} `json:"object"`
}
