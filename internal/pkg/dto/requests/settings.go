package requests

type UpdatePlatformSettings struct {
	PatientCommission *float64 `json:"patientCommission" validate:"required,gte=0,lte=100"`
	DoctorCommission  *float64 `json:"doctorCommission" validate:"required,gte=0,lte=100"`
}
