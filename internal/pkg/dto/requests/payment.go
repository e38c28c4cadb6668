package requests

type CreateOrder struct {
	Amount        float64 `json:"amount" validate:"gt=0"`
	AppointmentID string  `json:"appointmentId"`
}

type VerifyPayment struct {
	OrderID       string `json:"orderId" validate:"required"`
	PaymentID     string `json:"paymentId" validate:"required"`
	Signature     string `json:"signature" validate:"required"`
	AppointmentID string `json:"appointmentId"`
}

type ProcessRefund struct {
	AppointmentID string  `json:"-" validate:"required"`
	RefundAmount  float64 `json:"refundAmount" validate:"gt=0"`
}

type GatewayOrder struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type GatewayRefund struct {
	Amount int64             `json:"amount"`
	Notes  map[string]string `json:"notes,omitempty"`
}
