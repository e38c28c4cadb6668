package constvars

type ContextKey string

const (
	CONTEXT_REQUEST_ID_KEY           ContextKey = "request_id"
	CONTEXT_IS_CLIENT_REQUEST_ID_KEY ContextKey = "is_client_request_id"
	CONTEXT_PRINCIPAL_KEY            ContextKey = "principal"
)

const (
	REQUEST_ID_PREFIX = "TLMD_SVC_"
)

const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
	RoleAdmin   = "admin"
)

const (
	AppEnvDevelopment = "development"
	AppEnvProduction  = "production"
)

const (
	ResourceAppointments = "appointments"
	ResourcePayments     = "payments"
	ResourceEarnings     = "earnings"
	ResourceWithdrawals  = "withdrawals"
	ResourceSettings     = "settings"
)

const (
	URLParamID            = "id"
	URLParamAppointmentID = "appointmentId"
	URLParamDoctorID      = "doctorId"
	QueryParamStatus      = "status"
	QueryParamFrom        = "from"
	QueryParamTo          = "to"
)

const (
	// Dates in query parameters and request bodies.
	DateLayout = "2006-01-02"
)
