package models

import "time"

type PlatformSettings struct {
	Key               string    `json:"-" bson:"_id"`
	PatientCommission float64   `json:"patientCommission" bson:"patientCommission"`
	DoctorCommission  float64   `json:"doctorCommission" bson:"doctorCommission"`
	UpdatedBy         string    `json:"updatedBy,omitempty" bson:"updatedBy,omitempty"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// FinancePolicy holds the operator-configured constants used in refund and
// payout math.
type FinancePolicy struct {
	CancellationFee    float64 `json:"cancellationFee"`
	GatewayFeePct      float64 `json:"gatewayFeePct"`
	GSTOnGatewayFeePct float64 `json:"gstOnGatewayFeePct"`
	MinimumWithdrawal  float64 `json:"minimumWithdrawal"`
}
