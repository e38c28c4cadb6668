package models

import "time"

type Withdrawal struct {
	ID             string     `json:"id" bson:"_id,omitempty"`
	DisplayID      string     `json:"displayId" bson:"displayId"`
	DoctorID       string     `json:"doctorId" bson:"doctorId"`
	Amount         float64    `json:"amount" bson:"amount"`
	Status         string     `json:"status" bson:"status"`
	Method         string     `json:"method" bson:"method"`
	RequestedAt    time.Time  `json:"requestedAt" bson:"requestedAt"`
	ApprovedAmount float64    `json:"approvedAmount,omitempty" bson:"approvedAmount,omitempty"`
	PaymentMode    string     `json:"paymentMode,omitempty" bson:"paymentMode,omitempty"`
	TransactionID  string     `json:"transactionId,omitempty" bson:"transactionId,omitempty"`
	PaymentDate    *time.Time `json:"paymentDate,omitempty" bson:"paymentDate,omitempty"`
	ProcessedAt    *time.Time `json:"processedAt,omitempty" bson:"processedAt,omitempty"`
	RejectReason   string     `json:"rejectReason,omitempty" bson:"rejectReason,omitempty"`
	InvoiceURL     string     `json:"invoiceUrl,omitempty" bson:"invoiceUrl,omitempty"`
	TimeModel      `bson:",inline"`
}

// Settled returns the amount paid out for an approved withdrawal.
func (w *Withdrawal) Settled() float64 {
	if w.ApprovedAmount > 0 {
		return w.ApprovedAmount
	}
	return w.Amount
}
