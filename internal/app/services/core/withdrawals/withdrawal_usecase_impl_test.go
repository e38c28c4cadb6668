package withdrawals

import (
	"context"
	"errors"
	"strings"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/coretest"
	"telemed-service/internal/app/services/core/earnings"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ledgerBalance computes the balance from the in-memory repositories with
// the same fold the earnings usecase uses.
type ledgerBalance struct {
	appointments *coretest.AppointmentRepository
	withdrawals  *coretest.WithdrawalRepository
}

func (l *ledgerBalance) AvailableBalance(ctx context.Context, doctorID string) (float64, error) {
	appointments, _ := l.appointments.FindByDoctorIDAndStatus(ctx, doctorID, constvars.AppointmentStatusCompleted)
	withdrawals, _ := l.withdrawals.FindAll(ctx, &requests.WithdrawalFilter{DoctorID: doctorID})
	result, err := earnings.FoldDoctorEarnings(doctorID, appointments, withdrawals, models.DateRange{}, time.Now())
	if err != nil {
		return 0, err
	}
	return result.PendingPayout, nil
}

func (l *ledgerBalance) ComputeDoctorEarnings(ctx context.Context, principal models.Principal, request *requests.DoctorEarnings) (*responses.DoctorEarnings, error) {
	return nil, errors.New("not used")
}

func (l *ledgerBalance) ComputePlatformEarnings(ctx context.Context, principal models.Principal, request *requests.PlatformEarnings) (*responses.PlatformEarnings, error) {
	return nil, errors.New("not used")
}

type fixture struct {
	appointments *coretest.AppointmentRepository
	withdrawals  *coretest.WithdrawalRepository
	doctors      *coretest.DoctorRepository
	redis        *coretest.MockRedisRepository
	locker       *coretest.MockLockerService
	invoices     *coretest.MockInvoiceGenerator
	notifier     *coretest.MockNotificationService
	usecase      *withdrawalUsecase
}

func newFixture(completedFees ...float64) *fixture {
	f := &fixture{
		appointments: coretest.NewAppointmentRepository(),
		withdrawals:  coretest.NewWithdrawalRepository(),
		doctors:      coretest.NewDoctorRepository(coretest.BankedDoctor(coretest.Doctor.ID)),
		redis:        new(coretest.MockRedisRepository),
		locker:       coretest.NewFreeLocker(),
		invoices:     new(coretest.MockInvoiceGenerator),
		notifier:     coretest.NewSilentNotifier(),
	}
	for _, fee := range completedFees {
		f.complete(fee)
	}
	f.redis.On("Increment", mock.Anything, constvars.RedisKeyWithdrawalSequence).Return(int64(7), nil)
	balance := &ledgerBalance{appointments: f.appointments, withdrawals: f.withdrawals}
	f.usecase = newWithdrawalUsecase(f.withdrawals, f.doctors, balance, coretest.NewStaticSettings(30, 10),
		f.redis, f.locker, f.invoices, f.notifier, &config.InternalConfig{}, zap.NewNop())
	return f
}

func (f *fixture) complete(fee float64) {
	f.appointments.Put(coretest.CompletedAppointment(fee, 10, time.Now().Add(-time.Hour)))
}

func pendingWithdrawal(amount float64) models.Withdrawal {
	return models.Withdrawal{
		DisplayID:   "#WD0001",
		DoctorID:    coretest.Doctor.ID,
		Amount:      amount,
		Status:      constvars.WithdrawalStatusPending,
		Method:      constvars.WithdrawalMethodBankTransfer,
		RequestedAt: time.Now().Add(-time.Hour),
	}
}

func approveRequest(id string, amount float64) *requests.ApproveWithdrawal {
	return &requests.ApproveWithdrawal{
		WithdrawalID:   id,
		TransactionID:  " UTR123 ",
		PaymentMode:    constvars.PaymentModeBankTransfer,
		ApprovedAmount: amount,
		PaymentDate:    time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, exceptions.CodeOf(err), "unexpected error: %v", err)
}

func TestWithdrawalUsecase_RequestWithdrawal(t *testing.T) {
	ctx := context.Background()

	t.Run("balance grows until the request fits", func(t *testing.T) {
		f := newFixture(500)

		_, err := f.usecase.RequestWithdrawal(ctx, coretest.Doctor, &requests.RequestWithdrawal{Amount: 1000})
		assertCode(t, err, exceptions.CodeOutOfRange)

		f.complete(500)
		f.complete(500)
		withdrawal, err := f.usecase.RequestWithdrawal(ctx, coretest.Doctor, &requests.RequestWithdrawal{Amount: 1000})
		require.NoError(t, err)
		assert.Equal(t, constvars.WithdrawalStatusPending, withdrawal.Status)
		assert.Equal(t, "#WD0007", withdrawal.DisplayID)
		assert.Equal(t, constvars.WithdrawalMethodBankTransfer, withdrawal.Method)
		assert.NotNil(t, f.withdrawals.Get(withdrawal.ID))
		f.locker.AssertCalled(t, "Unlock", mock.Anything, "locks:withdrawals:doctor:doctor-1", "lock-token")
	})

	t.Run("accepts exactly the available balance", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		_, err := f.usecase.RequestWithdrawal(ctx, coretest.Doctor, &requests.RequestWithdrawal{Amount: 1350})
		require.NoError(t, err)
	})

	t.Run("rejects above balance and below minimum", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		_, err := f.usecase.RequestWithdrawal(ctx, coretest.Doctor, &requests.RequestWithdrawal{Amount: 1350.01})
		assertCode(t, err, exceptions.CodeOutOfRange)
		_, err = f.usecase.RequestWithdrawal(ctx, coretest.Doctor, &requests.RequestWithdrawal{Amount: 999.99})
		assertCode(t, err, exceptions.CodeOutOfRange)
		f.redis.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything)
	})

	t.Run("needs a payout target", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		f.doctors.Doctors[coretest.Doctor.ID].BankDetails = models.BankDetails{}
		_, err := f.usecase.RequestWithdrawal(ctx, coretest.Doctor, &requests.RequestWithdrawal{Amount: 1000})
		assertCode(t, err, exceptions.CodeBankDetailsMissing)
	})

	t.Run("prefers UPI when on file", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		f.doctors.Doctors[coretest.Doctor.ID].BankDetails = models.BankDetails{UPIID: "rao@upi"}
		withdrawal, err := f.usecase.RequestWithdrawal(ctx, coretest.Doctor, &requests.RequestWithdrawal{Amount: 1000})
		require.NoError(t, err)
		assert.Equal(t, constvars.WithdrawalMethodUPI, withdrawal.Method)
	})

	t.Run("only doctors can request", func(t *testing.T) {
		f := newFixture(500)
		_, err := f.usecase.RequestWithdrawal(ctx, coretest.Patient, &requests.RequestWithdrawal{Amount: 1000})
		assertCode(t, err, exceptions.CodeForbidden)
	})

	t.Run("lock held elsewhere", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		f.locker = new(coretest.MockLockerService)
		f.locker.On("TryLock", mock.Anything, mock.Anything, mock.Anything).Return(false, "", nil)
		f.usecase.Locker = f.locker

		_, err := f.usecase.RequestWithdrawal(ctx, coretest.Doctor, &requests.RequestWithdrawal{Amount: 1000})
		assertCode(t, err, exceptions.CodeConflict)
	})
}

func TestWithdrawalUsecase_Approve(t *testing.T) {
	ctx := context.Background()

	t.Run("approves and attaches invoice", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		stored := f.withdrawals.Put(pendingWithdrawal(1000))
		f.invoices.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("http://minio/invoices/doctor-1/wd-1.txt", nil)

		withdrawal, err := f.usecase.Approve(ctx, coretest.Admin, approveRequest(stored.ID, 900))
		require.NoError(t, err)
		assert.Equal(t, constvars.WithdrawalStatusApproved, withdrawal.Status)
		assert.Equal(t, 900.0, withdrawal.ApprovedAmount)
		assert.Equal(t, "UTR123", withdrawal.TransactionID)
		assert.Equal(t, "http://minio/invoices/doctor-1/wd-1.txt", withdrawal.InvoiceURL)
		assert.NotNil(t, withdrawal.ProcessedAt)
		assert.Equal(t, constvars.WithdrawalStatusApproved, f.withdrawals.Get(stored.ID).Status)
		f.notifier.AssertCalled(t, "Notify", mock.Anything, coretest.Doctor.ID, constvars.NotificationEventWithdrawalApproved, mock.Anything, mock.Anything)

		balance, err := f.usecase.EarningsUsecase.AvailableBalance(ctx, coretest.Doctor.ID)
		require.NoError(t, err)
		assert.Equal(t, 450.0, balance)

		_, err = f.usecase.Approve(ctx, coretest.Admin, approveRequest(stored.ID, 900))
		assertCode(t, err, exceptions.CodeInvalidTransition)
	})

	t.Run("approved amount must fit the balance", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		stored := f.withdrawals.Put(pendingWithdrawal(1000))

		_, err := f.usecase.Approve(ctx, coretest.Admin, approveRequest(stored.ID, 1350.01))
		assertCode(t, err, exceptions.CodeOutOfRange)
		f.invoices.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invoice failure leaves it pending", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		stored := f.withdrawals.Put(pendingWithdrawal(1000))
		f.invoices.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", exceptions.ErrMinioCreateObject(errors.New("down"), "invoices"))

		_, err := f.usecase.Approve(ctx, coretest.Admin, approveRequest(stored.ID, 1000))
		require.Error(t, err)
		assert.Equal(t, constvars.WithdrawalStatusPending, f.withdrawals.Get(stored.ID).Status)
	})

	t.Run("lost race with a concurrent reject", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		stored := f.withdrawals.Put(pendingWithdrawal(1000))
		f.invoices.On("Generate", mock.Anything, mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) {
				rejected := stored
				rejected.Status = constvars.WithdrawalStatusRejected
				f.withdrawals.Put(rejected)
			}).
			Return("http://minio/invoice.txt", nil)

		core, logs := observer.New(zapcore.WarnLevel)
		f.usecase.Log = zap.New(core)

		_, err := f.usecase.Approve(ctx, coretest.Admin, approveRequest(stored.ID, 1000))
		assertCode(t, err, exceptions.CodeInvalidTransition)
		assert.Equal(t, constvars.WithdrawalStatusRejected, f.withdrawals.Get(stored.ID).Status)

		orphaned := logs.FilterField(zap.String(constvars.LoggingObjectPathKey, "http://minio/invoice.txt")).All()
		require.Len(t, orphaned, 1)
		assert.Equal(t, stored.ID, orphaned[0].ContextMap()[constvars.LoggingWithdrawalIDKey])
	})

	t.Run("validation and access", func(t *testing.T) {
		f := newFixture(500, 500, 500)
		stored := f.withdrawals.Put(pendingWithdrawal(1000))

		request := approveRequest(stored.ID, 1000)
		request.PaymentMode = "Cash"
		_, err := f.usecase.Approve(ctx, coretest.Admin, request)
		assertCode(t, err, exceptions.CodeValidationError)

		_, err = f.usecase.Approve(ctx, coretest.Doctor, approveRequest(stored.ID, 1000))
		assertCode(t, err, exceptions.CodeForbidden)

		_, err = f.usecase.Approve(ctx, coretest.Admin, approveRequest("wd-missing", 1000))
		assertCode(t, err, exceptions.CodeNotFound)
	})
}

func TestWithdrawalUsecase_Reject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(500)
	stored := f.withdrawals.Put(pendingWithdrawal(1000))

	_, err := f.usecase.Reject(ctx, coretest.Admin, &requests.RejectWithdrawal{WithdrawalID: stored.ID, Reason: "  "})
	assertCode(t, err, exceptions.CodeValidationError)

	withdrawal, err := f.usecase.Reject(ctx, coretest.Admin, &requests.RejectWithdrawal{WithdrawalID: stored.ID, Reason: "bank details mismatch"})
	require.NoError(t, err)
	assert.Equal(t, constvars.WithdrawalStatusRejected, withdrawal.Status)
	assert.Equal(t, "bank details mismatch", withdrawal.RejectReason)
	assert.NotNil(t, withdrawal.ProcessedAt)

	_, err = f.usecase.Approve(ctx, coretest.Admin, approveRequest(stored.ID, 100))
	assertCode(t, err, exceptions.CodeInvalidTransition)
	_, err = f.usecase.Reject(ctx, coretest.Admin, &requests.RejectWithdrawal{WithdrawalID: stored.ID, Reason: "again"})
	assertCode(t, err, exceptions.CodeInvalidTransition)
}

func TestWithdrawalUsecase_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.withdrawals.Put(pendingWithdrawal(1000))
	other := pendingWithdrawal(2000)
	other.DoctorID = "doctor-2"
	other.Status = constvars.WithdrawalStatusApproved
	f.withdrawals.Put(other)

	mine, err := f.usecase.List(ctx, coretest.Doctor, &requests.WithdrawalFilter{DoctorID: "doctor-2"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, coretest.Doctor.ID, mine[0].DoctorID)

	approvedOnly, err := f.usecase.List(ctx, coretest.Admin, &requests.WithdrawalFilter{Status: constvars.WithdrawalStatusApproved})
	require.NoError(t, err)
	require.Len(t, approvedOnly, 1)
	assert.Equal(t, "doctor-2", approvedOnly[0].DoctorID)

	_, err = f.usecase.List(ctx, coretest.Admin, &requests.WithdrawalFilter{Status: "paid"})
	assertCode(t, err, exceptions.CodeValidationError)

	_, err = f.usecase.List(ctx, coretest.Patient, nil)
	assertCode(t, err, exceptions.CodeForbidden)
}

func TestInvoiceGenerator_Generate(t *testing.T) {
	storage := new(coretest.MockStorage)
	var content string
	storage.On("Store", mock.Anything, mock.Anything, mock.MatchedBy(func(path string) bool {
		return strings.HasPrefix(path, "invoices/doctor-1/wd-1_") && strings.HasSuffix(path, ".txt")
	}), constvars.MIMETextPlain).
		Run(func(args mock.Arguments) { content = string(args.Get(1).([]byte)) }).
		Return("http://minio/telemed/invoices/doctor-1/wd-1.txt", nil)

	paymentDate := time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC)
	withdrawal := &models.Withdrawal{
		ID:             "wd-1",
		DisplayID:      "#WD0001",
		DoctorID:       coretest.Doctor.ID,
		Amount:         1000,
		ApprovedAmount: 900,
		TransactionID:  "UTR123",
		PaymentMode:    constvars.PaymentModeBankTransfer,
		PaymentDate:    &paymentDate,
	}

	url, err := NewInvoiceGenerator(storage, zap.NewNop()).Generate(context.Background(), withdrawal, coretest.BankedDoctor(coretest.Doctor.ID))
	require.NoError(t, err)
	assert.Equal(t, "http://minio/telemed/invoices/doctor-1/wd-1.txt", url)
	assert.Contains(t, content, "Invoice No:        #WD0001")
	assert.Contains(t, content, "Amount Requested:  INR 1000.00")
	assert.Contains(t, content, "Amount Paid:       INR 900.00")
	assert.Contains(t, content, "Payout Account:    HDFC XXXX7890")
	assert.Contains(t, content, "Date of Payment:   18 Mar 2024")
}
