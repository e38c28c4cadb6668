package responses

import "time"

type CreateOrder struct {
	OrderID          string  `json:"orderId"`
	Amount           float64 `json:"amount"`
	AmountMinorUnits int64   `json:"amountMinorUnits"`
	Currency         string  `json:"currency"`
	Receipt          string  `json:"receipt"`
	KeyID            string  `json:"keyId"`
}

type VerifyPayment struct {
	Verified        bool   `json:"verified"`
	AlreadyVerified bool   `json:"alreadyVerified,omitempty"`
	AppointmentID   string `json:"appointmentId,omitempty"`
	PaymentStatus   string `json:"paymentStatus,omitempty"`
}

type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type GatewayPayment struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	Status         string     `json:"status"`
	Amount         int64      `json:"amount"`
	AmountRefunded int64      `json:"amount_refunded"`
	Method         string     `json:"method"`
	CapturedAt     *time.Time `json:"-"`
	CreatedAt      int64      `json:"created_at"`
}

type GatewayRefund struct {
	ID        string    `json:"id"`
	PaymentID string    `json:"payment_id"`
	Amount    int64     `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"-"`
}
