package routers

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/delivery/http/controllers"
	"telemed-service/internal/app/delivery/http/middlewares"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticTokens map[string]models.Principal

func (s staticTokens) VerifyToken(ctx context.Context, token string) (*models.Principal, error) {
	principal, ok := s[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &principal, nil
}

type MockAppointmentUsecase struct {
	mock.Mock
}

func (m *MockAppointmentUsecase) appointment(args mock.Arguments) (*models.Appointment, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

func (m *MockAppointmentUsecase) Book(ctx context.Context, principal models.Principal, request *requests.BookAppointment) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, principal, request))
}

func (m *MockAppointmentUsecase) GetByID(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, principal, appointmentID))
}

func (m *MockAppointmentUsecase) List(ctx context.Context, principal models.Principal, filter *requests.AppointmentFilter) ([]models.Appointment, error) {
	args := m.Called(ctx, principal, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Appointment), args.Error(1)
}

func (m *MockAppointmentUsecase) Accept(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, principal, appointmentID))
}

func (m *MockAppointmentUsecase) Reject(ctx context.Context, principal models.Principal, appointmentID string, request *requests.RejectAppointment) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, principal, appointmentID, request))
}

func (m *MockAppointmentUsecase) Reschedule(ctx context.Context, principal models.Principal, appointmentID string, request *requests.RescheduleAppointment) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, principal, appointmentID, request))
}

func (m *MockAppointmentUsecase) Complete(ctx context.Context, principal models.Principal, appointmentID string, request *requests.CompleteAppointment) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, principal, appointmentID, request))
}

func (m *MockAppointmentUsecase) Cancel(ctx context.Context, principal models.Principal, appointmentID string, request *requests.CancelAppointment) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, principal, appointmentID, request))
}

func (m *MockAppointmentUsecase) CompletePrescription(ctx context.Context, principal models.Principal, appointmentID string) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, principal, appointmentID))
}

func (m *MockAppointmentUsecase) UpdateNotes(ctx context.Context, principal models.Principal, appointmentID string, request *requests.UpdateAppointmentNotes) (*models.Appointment, error) {
	return m.appointment(m.Called(ctx, principal, appointmentID, request))
}

type MockPaymentUsecase struct {
	mock.Mock
}

func (m *MockPaymentUsecase) CreateOrder(ctx context.Context, principal models.Principal, request *requests.CreateOrder) (*responses.CreateOrder, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.CreateOrder), args.Error(1)
}

func (m *MockPaymentUsecase) VerifyPayment(ctx context.Context, principal models.Principal, request *requests.VerifyPayment) (*responses.VerifyPayment, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.VerifyPayment), args.Error(1)
}

func (m *MockPaymentUsecase) ProcessRefund(ctx context.Context, principal models.Principal, request *requests.ProcessRefund) (*models.Appointment, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Appointment), args.Error(1)
}

type MockEarningsUsecase struct {
	mock.Mock
}

func (m *MockEarningsUsecase) ComputeDoctorEarnings(ctx context.Context, principal models.Principal, request *requests.DoctorEarnings) (*responses.DoctorEarnings, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.DoctorEarnings), args.Error(1)
}

func (m *MockEarningsUsecase) ComputePlatformEarnings(ctx context.Context, principal models.Principal, request *requests.PlatformEarnings) (*responses.PlatformEarnings, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.PlatformEarnings), args.Error(1)
}

func (m *MockEarningsUsecase) AvailableBalance(ctx context.Context, doctorID string) (float64, error) {
	args := m.Called(ctx, doctorID)
	return args.Get(0).(float64), args.Error(1)
}

type MockWithdrawalUsecase struct {
	mock.Mock
}

func (m *MockWithdrawalUsecase) withdrawal(args mock.Arguments) (*models.Withdrawal, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalUsecase) RequestWithdrawal(ctx context.Context, principal models.Principal, request *requests.RequestWithdrawal) (*models.Withdrawal, error) {
	return m.withdrawal(m.Called(ctx, principal, request))
}

func (m *MockWithdrawalUsecase) Approve(ctx context.Context, principal models.Principal, request *requests.ApproveWithdrawal) (*models.Withdrawal, error) {
	return m.withdrawal(m.Called(ctx, principal, request))
}

func (m *MockWithdrawalUsecase) Reject(ctx context.Context, principal models.Principal, request *requests.RejectWithdrawal) (*models.Withdrawal, error) {
	return m.withdrawal(m.Called(ctx, principal, request))
}

func (m *MockWithdrawalUsecase) List(ctx context.Context, principal models.Principal, filter *requests.WithdrawalFilter) ([]models.Withdrawal, error) {
	args := m.Called(ctx, principal, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Withdrawal), args.Error(1)
}

type MockSettingsUsecase struct {
	mock.Mock
}

func (m *MockSettingsUsecase) GetCurrentRates(ctx context.Context) (*models.PlatformSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformSettings), args.Error(1)
}

func (m *MockSettingsUsecase) GetFinancePolicy() models.FinancePolicy {
	return m.Called().Get(0).(models.FinancePolicy)
}

func (m *MockSettingsUsecase) UpdateSettings(ctx context.Context, principal models.Principal, request *requests.UpdatePlatformSettings) (*models.PlatformSettings, error) {
	args := m.Called(ctx, principal, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlatformSettings), args.Error(1)
}

var (
	patient = models.Principal{ID: "patient-1", Role: constvars.RolePatient}
	doctor  = models.Principal{ID: "doctor-1", Role: constvars.RoleDoctor}
	admin   = models.Principal{ID: "admin-1", Role: constvars.RoleAdmin}
)

type routerFixture struct {
	router      *chi.Mux
	appointment *MockAppointmentUsecase
	payment     *MockPaymentUsecase
	earnings    *MockEarningsUsecase
	withdrawal  *MockWithdrawalUsecase
	settings    *MockSettingsUsecase
}

func newRouterFixture() *routerFixture {
	logger := zap.NewNop()
	f := &routerFixture{
		router:      chi.NewRouter(),
		appointment: new(MockAppointmentUsecase),
		payment:     new(MockPaymentUsecase),
		earnings:    new(MockEarningsUsecase),
		withdrawal:  new(MockWithdrawalUsecase),
		settings:    new(MockSettingsUsecase),
	}
	internalConfig := &config.InternalConfig{App: config.App{EndpointPrefix: "api", Version: "v1"}}
	m := middlewares.NewMiddlewares(logger, internalConfig, staticTokens{
		"patient-token": patient,
		"doctor-token":  doctor,
		"admin-token":   admin,
	}, nil)

	SetupRoutes(f.router, internalConfig, m, Controllers{
		Appointment: controllers.NewAppointmentController(logger, f.appointment),
		Payment:     controllers.NewPaymentController(logger, f.payment),
		Earnings:    controllers.NewEarningsController(logger, f.earnings),
		Withdrawal:  controllers.NewWithdrawalController(logger, f.withdrawal),
		Settings:    controllers.NewSettingsController(logger, f.settings),
	})
	return f
}

func (f *routerFixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestRouter_Authentication(t *testing.T) {
	f := newRouterFixture()

	rr := f.do(http.MethodGet, "/settings", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = f.do(http.MethodGet, "/settings", "forged-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(constvars.HeaderXRequestID))
}

func TestRouter_RoleGuards(t *testing.T) {
	f := newRouterFixture()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
	}{
		{name: "patient cannot read platform earnings", method: http.MethodGet, path: "/earnings/platform", token: "patient-token"},
		{name: "doctor cannot read platform earnings", method: http.MethodGet, path: "/earnings/platform", token: "doctor-token"},
		{name: "patient cannot request a withdrawal", method: http.MethodPost, path: "/withdrawals", token: "patient-token"},
		{name: "doctor cannot approve a withdrawal", method: http.MethodPut, path: "/withdrawals/w1/approve", token: "doctor-token"},
		{name: "doctor cannot refund", method: http.MethodPost, path: "/payments/refunds/appt-1", token: "doctor-token"},
		{name: "patient cannot accept", method: http.MethodPut, path: "/appointments/appt-1/accept", token: "patient-token"},
		{name: "doctor cannot book", method: http.MethodPost, path: "/appointments", token: "doctor-token"},
		{name: "doctor cannot cancel", method: http.MethodPut, path: "/appointments/appt-1/cancel", token: "doctor-token"},
		{name: "doctor cannot change settings", method: http.MethodPut, path: "/settings", token: "doctor-token"},
		{name: "admin has no own earnings", method: http.MethodGet, path: "/earnings/me", token: "admin-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.do(tt.method, tt.path, tt.token, map[string]string{})
			assert.Equal(t, http.StatusForbidden, rr.Code)
		})
	}
	f.withdrawal.AssertNotCalled(t, "RequestWithdrawal", mock.Anything, mock.Anything, mock.Anything)
	f.payment.AssertNotCalled(t, "ProcessRefund", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_RequestWithdrawal(t *testing.T) {
	f := newRouterFixture()
	f.withdrawal.On("RequestWithdrawal", mock.Anything, doctor, &requests.RequestWithdrawal{Amount: 1500}).
		Return(&models.Withdrawal{ID: "w1", DisplayID: "#WD0001", DoctorID: doctor.ID, Amount: 1500, Status: constvars.WithdrawalStatusPending}, nil)

	rr := f.do(http.MethodPost, "/withdrawals", "doctor-token", map[string]float64{"amount": 1500})
	require.Equal(t, http.StatusCreated, rr.Code)

	var body struct {
		Success bool              `json:"success"`
		Data    models.Withdrawal `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "#WD0001", body.Data.DisplayID)
}

func TestRouter_ErrorMapping(t *testing.T) {
	f := newRouterFixture()
	f.withdrawal.On("RequestWithdrawal", mock.Anything, doctor, mock.Anything).
		Return(nil, exceptions.ErrWithdrawalOutOfRange(nil, "5000.00", "1000.00", "450.00"))

	rr := f.do(http.MethodPost, "/withdrawals", "doctor-token", map[string]float64{"amount": 5000})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	var body exceptions.CustomError
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, exceptions.CodeOutOfRange, body.Code)
	assert.False(t, body.Success)
}

func TestRouter_MalformedBody(t *testing.T) {
	f := newRouterFixture()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals", bytes.NewBufferString("{not json"))
	req.Header.Set(constvars.HeaderAuthorization, "Bearer doctor-token")
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	f.withdrawal.AssertNotCalled(t, "RequestWithdrawal", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouter_ProcessRefundTakesAppointmentFromPath(t *testing.T) {
	f := newRouterFixture()
	f.payment.On("ProcessRefund", mock.Anything, admin, &requests.ProcessRefund{AppointmentID: "appt-9", RefundAmount: 600}).
		Return(&models.Appointment{ID: "appt-9", PaymentStatus: constvars.PaymentStatusRefunded}, nil)

	rr := f.do(http.MethodPost, "/payments/refunds/appt-9", "admin-token", map[string]float64{"refundAmount": 600})
	assert.Equal(t, http.StatusOK, rr.Code)
	f.payment.AssertExpectations(t)
}

func TestRouter_ApproveWithdrawalTakesIDFromPath(t *testing.T) {
	f := newRouterFixture()
	f.withdrawal.On("Approve", mock.Anything, admin, mock.MatchedBy(func(r *requests.ApproveWithdrawal) bool {
		return r.WithdrawalID == "w1" && r.TransactionID == "UTR1" && r.ApprovedAmount == 500
	})).Return(&models.Withdrawal{ID: "w1", Status: constvars.WithdrawalStatusApproved}, nil)

	rr := f.do(http.MethodPut, "/withdrawals/w1/approve", "admin-token", map[string]interface{}{
		"transactionId":  "UTR1",
		"paymentMode":    "UPI",
		"approvedAmount": 500,
		"paymentDate":    time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	f.withdrawal.AssertExpectations(t)
}

func TestRouter_EarningsDateRange(t *testing.T) {
	f := newRouterFixture()
	f.earnings.On("ComputeDoctorEarnings", mock.Anything, admin, mock.MatchedBy(func(r *requests.DoctorEarnings) bool {
		return r.DoctorID == "doctor-7" &&
			r.From != nil && r.From.Format(constvars.DateLayout) == "2024-03-01" &&
			r.To != nil && r.To.Hour() == 23
	})).Return(&responses.DoctorEarnings{DoctorID: "doctor-7"}, nil)

	rr := f.do(http.MethodGet, "/earnings/doctors/doctor-7?from=2024-03-01&to=2024-03-31", "admin-token", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	f.earnings.AssertExpectations(t)

	rr = f.do(http.MethodGet, "/earnings/doctors/doctor-7?from=March", "admin-token", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_DoctorEarningsDefaultsToSelf(t *testing.T) {
	f := newRouterFixture()
	f.earnings.On("ComputeDoctorEarnings", mock.Anything, doctor, mock.MatchedBy(func(r *requests.DoctorEarnings) bool {
		return r.DoctorID == doctor.ID && r.From == nil && r.To == nil
	})).Return(&responses.DoctorEarnings{DoctorID: doctor.ID}, nil)

	rr := f.do(http.MethodGet, "/earnings/me", "doctor-token", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_AppointmentsMineAndTransitions(t *testing.T) {
	f := newRouterFixture()
	f.appointment.On("List", mock.Anything, patient, &requests.AppointmentFilter{Status: "completed"}).
		Return([]models.Appointment{{ID: "appt-1"}}, nil)
	f.appointment.On("Reject", mock.Anything, doctor, "appt-2", &requests.RejectAppointment{Reason: "unavailable"}).
		Return(&models.Appointment{ID: "appt-2", Status: constvars.AppointmentStatusRejected}, nil)
	f.appointment.On("Accept", mock.Anything, doctor, "appt-3").
		Return(nil, exceptions.ErrInvalidTransition(nil, "completed", "accepted"))

	rr := f.do(http.MethodGet, "/appointments/mine?status=completed", "patient-token", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodPut, "/appointments/appt-2/reject", "doctor-token", map[string]string{"reason": "unavailable"})
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = f.do(http.MethodPut, "/appointments/appt-3/accept", "doctor-token", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	f.appointment.AssertExpectations(t)
}

func TestRouter_Settings(t *testing.T) {
	f := newRouterFixture()
	f.settings.On("GetCurrentRates", mock.Anything).Return(&models.PlatformSettings{PatientCommission: 30, DoctorCommission: 10}, nil)
	f.settings.On("GetFinancePolicy").Return(models.FinancePolicy{CancellationFee: 50, GatewayFeePct: 2, GSTOnGatewayFeePct: 18, MinimumWithdrawal: 1000})

	rr := f.do(http.MethodGet, "/settings", "patient-token", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data responses.PlatformSettings `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 30.0, body.Data.PatientCommission)
	assert.Equal(t, 1000.0, body.Data.MinimumWithdrawal)
	assert.Nil(t, body.Data.UpdatedAt)
}
