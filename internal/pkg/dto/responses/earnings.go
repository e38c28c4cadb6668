package responses

import "time"

type DoctorEarnings struct {
	DoctorID              string                `json:"doctorId"`
	Gross                 float64               `json:"gross"`
	Commission            float64               `json:"commission"`
	Net                   float64               `json:"net"`
	LifetimeNet           float64               `json:"lifetimeNet"`
	TotalWithdrawn        float64               `json:"totalWithdrawn"`
	PendingPayout         float64               `json:"pendingPayout"`
	CompletedAppointments int                   `json:"completedAppointments"`
	Periods               EarningsPeriods       `json:"periods"`
	NextPayoutDate        string                `json:"nextPayoutDate"`
	Breakdown             []AppointmentEarnings `json:"breakdown"`
}

type EarningsPeriods struct {
	Today     float64 `json:"today"`
	ThisWeek  float64 `json:"thisWeek"`
	ThisMonth float64 `json:"thisMonth"`
	ThisYear  float64 `json:"thisYear"`
}

type AppointmentEarnings struct {
	AppointmentID   string     `json:"appointmentId"`
	PatientName     string     `json:"patientName"`
	CompletedAt     *time.Time `json:"completedAt"`
	ConsultationFee float64    `json:"consultationFee"`
	Commission      float64    `json:"commission"`
	Net             float64    `json:"net"`
}

type PlatformEarnings struct {
	CompletedAppointments  int     `json:"completedAppointments"`
	RefundedAppointments   int     `json:"refundedAppointments"`
	GrossRevenue           float64 `json:"grossRevenue"`
	PatientCommissionTotal float64 `json:"patientCommissionTotal"`
	DoctorCommissionTotal  float64 `json:"doctorCommissionTotal"`
	PlatformRevenue        float64 `json:"platformRevenue"`
	DoctorPayouts          float64 `json:"doctorPayouts"`
	RefundedAmount         float64 `json:"refundedAmount"`
	PendingRefundAmount    float64 `json:"pendingRefundAmount"`
	GatewayFees            float64 `json:"gatewayFees"`
	GSTOnGatewayFees       float64 `json:"gstOnGatewayFees"`
	ResidualAfterRefunds   float64 `json:"residualAfterRefunds"`
	NetProfit              float64 `json:"netProfit"`
}
