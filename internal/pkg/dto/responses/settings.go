package responses

import "time"

type PlatformSettings struct {
	PatientCommission  float64    `json:"patientCommission"`
	DoctorCommission   float64    `json:"doctorCommission"`
	UpdatedBy          string     `json:"updatedBy,omitempty"`
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
	CancellationFee    float64    `json:"cancellationFee"`
	GatewayFeePct      float64    `json:"gatewayFeePct"`
	GSTOnGatewayFeePct float64    `json:"gstOnGatewayFeePct"`
	MinimumWithdrawal  float64    `json:"minimumWithdrawal"`
}
