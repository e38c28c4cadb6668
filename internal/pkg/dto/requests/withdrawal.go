package requests

import "time"

type RequestWithdrawal struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

type ApproveWithdrawal struct {
	WithdrawalID   string    `json:"-" validate:"required"`
	TransactionID  string    `json:"transactionId" validate:"required"`
	PaymentMode    string    `json:"paymentMode" validate:"required,payment_mode"`
	ApprovedAmount float64   `json:"approvedAmount" validate:"gt=0"`
	PaymentDate    time.Time `json:"paymentDate" validate:"required"`
}

type RejectWithdrawal struct {
	WithdrawalID string `json:"-" validate:"required"`
	Reason       string `json:"reason" validate:"required"`
}

type WithdrawalFilter struct {
	Status   string `validate:"omitempty,oneof=pending approved rejected"`
	DoctorID string
}
