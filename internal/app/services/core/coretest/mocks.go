package coretest

import (
	"context"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockPaymentGatewayService struct {
	mock.Mock
}

func (m *MockPaymentGatewayService) IsConfigured() bool {
	return m.Called().Bool(0)
}

func (m *MockPaymentGatewayService) KeyID() string {
	return m.Called().String(0)
}

func (m *MockPaymentGatewayService) VerifySignature(orderID, paymentID, signature string) bool {
	return m.Called(orderID, paymentID, signature).Bool(0)
}

func (m *MockPaymentGatewayService) CreateOrder(ctx context.Context, request *requests.GatewayOrder) (*responses.GatewayOrder, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.GatewayOrder), args.Error(1)
}

func (m *MockPaymentGatewayService) FetchPayment(ctx context.Context, paymentID string) (*responses.GatewayPayment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.GatewayPayment), args.Error(1)
}

func (m *MockPaymentGatewayService) Refund(ctx context.Context, paymentID string, request *requests.GatewayRefund) (*responses.GatewayRefund, error) {
	args := m.Called(ctx, paymentID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.GatewayRefund), args.Error(1)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Notify(ctx context.Context, recipientID, event, message string, notificationContext map[string]string) error {
	return m.Called(ctx, recipientID, event, message, notificationContext).Error(0)
}

// NewSilentNotifier accepts every notification.
func NewSilentNotifier() *MockNotificationService {
	notifier := new(MockNotificationService)
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return notifier
}

type MockLockerService struct {
	mock.Mock
}

func (m *MockLockerService) TryLock(ctx context.Context, key string, expiration time.Duration) (bool, string, error) {
	args := m.Called(ctx, key, expiration)
	return args.Bool(0), args.String(1), args.Error(2)
}

func (m *MockLockerService) Unlock(ctx context.Context, key, lockValue string) error {
	return m.Called(ctx, key, lockValue).Error(0)
}

// NewFreeLocker always grants the lock.
func NewFreeLocker() *MockLockerService {
	locker := new(MockLockerService)
	locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(true, "lock-token", nil)
	locker.On("Unlock", mock.Anything, mock.Anything, "lock-token").Return(nil)
	return locker
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Store(ctx context.Context, content []byte, objectPath, contentType string) (string, error) {
	args := m.Called(ctx, content, objectPath, contentType)
	return args.String(0), args.Error(1)
}

type MockRedisRepository struct {
	mock.Mock
}

func (m *MockRedisRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockRedisRepository) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return m.Called(ctx, key, value, exp).Error(0)
}

func (m *MockRedisRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockRedisRepository) Increment(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRedisRepository) IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRedisRepository) TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error) {
	args := m.Called(ctx, key, value, exp)
	return args.Bool(0), args.Error(1)
}

// StaticSettings serves fixed rates and finance policy.
type StaticSettings struct {
	Rates  models.PlatformSettings
	Policy models.FinancePolicy
}

func NewStaticSettings(patientCommission, doctorCommission float64) *StaticSettings {
	return &StaticSettings{
		Rates: models.PlatformSettings{
			PatientCommission: patientCommission,
			DoctorCommission:  doctorCommission,
		},
		Policy: DefaultFinancePolicy(),
	}
}

func DefaultFinancePolicy() models.FinancePolicy {
	return models.FinancePolicy{
		CancellationFee:    50,
		GatewayFeePct:      2,
		GSTOnGatewayFeePct: 18,
		MinimumWithdrawal:  1000,
	}
}

func (s *StaticSettings) GetCurrentRates(ctx context.Context) (*models.PlatformSettings, error) {
	rates := s.Rates
	return &rates, nil
}

func (s *StaticSettings) GetFinancePolicy() models.FinancePolicy {
	return s.Policy
}

func (s *StaticSettings) UpdateSettings(ctx context.Context, principal models.Principal, request *requests.UpdatePlatformSettings) (*models.PlatformSettings, error) {
	s.Rates.PatientCommission = *request.PatientCommission
	s.Rates.DoctorCommission = *request.DoctorCommission
	rates := s.Rates
	return &rates, nil
}

type MockInvoiceGenerator struct {
	mock.Mock
}

func (m *MockInvoiceGenerator) Generate(ctx context.Context, withdrawal *models.Withdrawal, doctor *models.Doctor) (string, error) {
	args := m.Called(ctx, withdrawal, doctor)
	return args.String(0), args.Error(1)
}
