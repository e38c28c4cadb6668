package appointments

import (
	"context"
	"errors"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/coretest"
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
)

type fixture struct {
	repo     *coretest.AppointmentRepository
	settings *coretest.StaticSettings
	gateway  *coretest.MockPaymentGatewayService
	notifier *coretest.MockNotificationService
	usecase  *appointmentUsecase
}

func newFixture(seed ...*models.Appointment) *fixture {
	f := &fixture{
		repo:     coretest.NewAppointmentRepository(seed...),
		settings: coretest.NewStaticSettings(30, 10),
		gateway:  new(coretest.MockPaymentGatewayService),
		notifier: coretest.NewSilentNotifier(),
	}
	doctors := coretest.NewDoctorRepository(coretest.BankedDoctor(coretest.Doctor.ID))
	f.usecase = newAppointmentUsecase(f.repo, doctors, f.settings, f.gateway, f.notifier, &config.InternalConfig{}, zap.NewNop())
	return f
}

func (f *fixture) expectCapturedPayment(amount int64) {
	f.gateway.On("IsConfigured").Return(true)
	f.gateway.On("VerifySignature", "order_1", "pay_1", "sig").Return(true)
	f.gateway.On("FetchPayment", mock.Anything, "pay_1").Return(&responses.GatewayPayment{
		ID:      "pay_1",
		OrderID: "order_1",
		Status:  constvars.GatewayPaymentStatusCaptured,
		Amount:  amount,
		Method:  "upi",
	}, nil)
}

func bookRequest() *requests.BookAppointment {
	return &requests.BookAppointment{
		DoctorID:      coretest.Doctor.ID,
		PatientName:   " Asha ",
		PatientAge:    31,
		PatientGender: "female",
		Symptoms:      "fever",
		ScheduledAt:   time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Payment: requests.PaymentAuthorization{
			OrderID:   "order_1",
			PaymentID: "pay_1",
			Signature: "sig",
		},
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, exceptions.CodeOf(err), "unexpected error: %v", err)
}

func TestAppointmentUsecase_Book(t *testing.T) {
	ctx := context.Background()

	t.Run("freezes rates and records the captured payment", func(t *testing.T) {
		f := newFixture()
		f.expectCapturedPayment(65000)

		appointment, err := f.usecase.Book(ctx, coretest.Patient, bookRequest())
		require.NoError(t, err)

		assert.Equal(t, constvars.AppointmentStatusPending, appointment.Status)
		assert.Equal(t, constvars.BookingStatusBooked, appointment.BookingStatus)
		assert.Equal(t, constvars.PaymentStatusPaid, appointment.PaymentStatus)
		assert.Equal(t, "Asha", appointment.PatientName, "strings are trimmed")
		assert.Equal(t, 500.0, appointment.ConsultationFee)
		assert.Equal(t, 650.0, appointment.TotalFee)
		assert.Equal(t, 30.0, appointment.PatientCommissionRate)
		assert.Equal(t, 10.0, appointment.DoctorCommissionRate)
		assert.Equal(t, int64(1), appointment.Version)
		require.NotNil(t, appointment.Payment)
		assert.Equal(t, 650.0, appointment.Payment.AmountCaptured)
		f.notifier.AssertNumberOfCalls(t, "Notify", 2)

		// Later rate changes never touch the stored record.
		patient, doctor := 50.0, 20.0
		_, err = f.settings.UpdateSettings(ctx, coretest.Admin, &requests.UpdatePlatformSettings{PatientCommission: &patient, DoctorCommission: &doctor})
		require.NoError(t, err)
		stored := f.repo.Get(appointment.ID)
		assert.Equal(t, 30.0, stored.PatientCommissionRate)
		assert.Equal(t, 650.0, stored.TotalFee)
	})

	t.Run("signature mismatch persists nothing", func(t *testing.T) {
		f := newFixture()
		f.gateway.On("IsConfigured").Return(true)
		f.gateway.On("VerifySignature", "order_1", "pay_1", "sig").Return(false)

		_, err := f.usecase.Book(ctx, coretest.Patient, bookRequest())
		assertCode(t, err, exceptions.CodeSignatureMismatch)

		all, _ := f.repo.FindAll(ctx, nil)
		assert.Empty(t, all)
		f.gateway.AssertNotCalled(t, "FetchPayment", mock.Anything, mock.Anything)
	})

	t.Run("short capture is rejected", func(t *testing.T) {
		f := newFixture()
		f.expectCapturedPayment(50000)

		_, err := f.usecase.Book(ctx, coretest.Patient, bookRequest())
		assertCode(t, err, exceptions.CodeValidationError)
	})

	t.Run("gateway failure persists nothing", func(t *testing.T) {
		f := newFixture()
		f.gateway.On("IsConfigured").Return(true)
		f.gateway.On("VerifySignature", "order_1", "pay_1", "sig").Return(true)
		f.gateway.On("FetchPayment", mock.Anything, "pay_1").Return(nil, exceptions.ErrGatewayRequest(errors.New("timeout")))

		_, err := f.usecase.Book(ctx, coretest.Patient, bookRequest())
		assertCode(t, err, exceptions.CodeGatewayError)
		all, _ := f.repo.FindAll(ctx, nil)
		assert.Empty(t, all)
	})

	t.Run("retry with the same payment returns the first booking", func(t *testing.T) {
		f := newFixture()
		f.expectCapturedPayment(65000)

		first, err := f.usecase.Book(ctx, coretest.Patient, bookRequest())
		require.NoError(t, err)
		second, err := f.usecase.Book(ctx, coretest.Patient, bookRequest())
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		all, _ := f.repo.FindAll(ctx, nil)
		assert.Len(t, all, 1)
		f.gateway.AssertNumberOfCalls(t, "FetchPayment", 1)
	})

	t.Run("concurrent retry that inserts first is returned", func(t *testing.T) {
		f := newFixture()
		f.expectCapturedPayment(65000)
		var winner *models.Appointment
		f.repo.BeforeCreate = func() {
			if winner == nil {
				winner = f.repo.Put(coretest.PaidAppointment(constvars.AppointmentStatusPending))
			}
		}

		appointment, err := f.usecase.Book(ctx, coretest.Patient, bookRequest())
		require.NoError(t, err)
		assert.Equal(t, winner.ID, appointment.ID)
		all, _ := f.repo.FindAll(ctx, nil)
		assert.Len(t, all, 1)
		f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("payment reused by another patient", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusPending))
		other := models.Principal{ID: "patient-2", Role: constvars.RolePatient}

		_, err := f.usecase.Book(ctx, other, bookRequest())
		assertCode(t, err, exceptions.CodeAlreadyProcessed)
	})

	t.Run("only patients book", func(t *testing.T) {
		f := newFixture()
		_, err := f.usecase.Book(ctx, coretest.Doctor, bookRequest())
		assertCode(t, err, exceptions.CodeForbidden)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture()
		request := bookRequest()
		request.PatientName = "   "
		_, err := f.usecase.Book(ctx, coretest.Patient, request)
		assertCode(t, err, exceptions.CodeValidationError)
	})

	t.Run("unknown doctor", func(t *testing.T) {
		f := newFixture()
		request := bookRequest()
		request.DoctorID = "doctor-404"
		_, err := f.usecase.Book(ctx, coretest.Patient, request)
		assertCode(t, err, exceptions.CodeNotFound)
	})
}

func TestAppointmentUsecase_Transitions(t *testing.T) {
	ctx := context.Background()
	otherDoctor := models.Principal{ID: "doctor-2", Role: constvars.RoleDoctor}

	t.Run("accept pending", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusPending))
		appointment, err := f.usecase.Accept(ctx, coretest.Doctor, "appt-1")
		require.NoError(t, err)
		assert.Equal(t, constvars.AppointmentStatusAccepted, appointment.Status)
		assert.Equal(t, int64(2), f.repo.Get("appt-1").Version, "version advances on commit")
	})

	t.Run("accept by another doctor", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusPending))
		_, err := f.usecase.Accept(ctx, otherDoctor, "appt-1")
		assertCode(t, err, exceptions.CodeForbidden)
		assert.Equal(t, constvars.AppointmentStatusPending, f.repo.Get("appt-1").Status)
	})

	t.Run("accept unknown", func(t *testing.T) {
		f := newFixture()
		_, err := f.usecase.Accept(ctx, coretest.Doctor, "appt-404")
		assertCode(t, err, exceptions.CodeNotFound)
	})

	t.Run("accept completed is illegal", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusCompleted))
		_, err := f.usecase.Accept(ctx, coretest.Doctor, "appt-1")
		assertCode(t, err, exceptions.CodeInvalidTransition)
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusPending))
		_, err := f.usecase.Reject(ctx, coretest.Doctor, "appt-1", &requests.RejectAppointment{Reason: " "})
		assertCode(t, err, exceptions.CodeValidationError)
		assert.Equal(t, 0, f.repo.UpdateCalls)
	})

	t.Run("reject keeps payment untouched", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusRescheduled))
		appointment, err := f.usecase.Reject(ctx, coretest.Doctor, "appt-1", &requests.RejectAppointment{Reason: "unavailable"})
		require.NoError(t, err)
		assert.Equal(t, constvars.AppointmentStatusRejected, appointment.Status)
		assert.Equal(t, "unavailable", appointment.RejectReason)
		assert.Equal(t, constvars.PaymentStatusPaid, appointment.PaymentStatus)
		assert.Empty(t, appointment.RefundStatus)
	})

	t.Run("admin reschedules an accepted appointment", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusAccepted))
		newDate := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
		appointment, err := f.usecase.Reschedule(ctx, coretest.Admin, "appt-1", &requests.RescheduleAppointment{NewDate: newDate, Reason: "doctor travelling"})
		require.NoError(t, err)
		assert.Equal(t, constvars.AppointmentStatusRescheduled, appointment.Status)
		require.NotNil(t, appointment.RescheduledAt)
		assert.True(t, newDate.Equal(*appointment.RescheduledAt))
		assert.Equal(t, "doctor travelling", appointment.RescheduleReason)
		f.notifier.AssertNumberOfCalls(t, "Notify", 2)
	})

	t.Run("reschedule twice is illegal", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusRescheduled))
		_, err := f.usecase.Reschedule(ctx, coretest.Doctor, "appt-1", &requests.RescheduleAppointment{NewDate: time.Now(), Reason: "again"})
		assertCode(t, err, exceptions.CodeInvalidTransition)
	})

	t.Run("patient cannot reschedule", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusPending))
		_, err := f.usecase.Reschedule(ctx, coretest.Patient, "appt-1", &requests.RescheduleAppointment{NewDate: time.Now(), Reason: "busy"})
		assertCode(t, err, exceptions.CodeForbidden)
	})

	t.Run("complete accepted", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusAccepted))
		appointment, err := f.usecase.Complete(ctx, coretest.Doctor, "appt-1", &requests.CompleteAppointment{CallDuration: 900})
		require.NoError(t, err)
		assert.Equal(t, constvars.AppointmentStatusCompleted, appointment.Status)
		assert.Equal(t, 900, appointment.CallDuration)
		assert.NotNil(t, appointment.CompletedAt)
		assert.Equal(t, constvars.PrescriptionStatusPending, appointment.PrescriptionStatus)
	})

	t.Run("complete pending is illegal", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusPending))
		_, err := f.usecase.Complete(ctx, coretest.Doctor, "appt-1", &requests.CompleteAppointment{CallDuration: 900})
		assertCode(t, err, exceptions.CodeInvalidTransition)
	})

	t.Run("complete needs a call duration", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusAccepted))
		_, err := f.usecase.Complete(ctx, coretest.Doctor, "appt-1", &requests.CompleteAppointment{})
		assertCode(t, err, exceptions.CodeValidationError)
	})

	t.Run("cancel paid appointment flags refund", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusAccepted))
		appointment, err := f.usecase.Cancel(ctx, coretest.Admin, "appt-1", &requests.CancelAppointment{Reason: "doctor unavailable"})
		require.NoError(t, err)
		assert.Equal(t, constvars.AppointmentStatusCanceled, appointment.Status)
		assert.Equal(t, constvars.RefundStatusPending, appointment.RefundStatus)
		assert.NotNil(t, appointment.CanceledAt)
		assert.Equal(t, constvars.PaymentStatusPaid, appointment.PaymentStatus, "payment status changes only on refund")
	})

	t.Run("owning patient cancels", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusRescheduled))
		_, err := f.usecase.Cancel(ctx, coretest.Patient, "appt-1", &requests.CancelAppointment{Reason: "feeling better"})
		require.NoError(t, err)
	})

	t.Run("doctor cannot cancel", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusAccepted))
		_, err := f.usecase.Cancel(ctx, coretest.Doctor, "appt-1", &requests.CancelAppointment{Reason: "x"})
		assertCode(t, err, exceptions.CodeForbidden)
	})

	t.Run("cancel twice is illegal", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusCanceled))
		_, err := f.usecase.Cancel(ctx, coretest.Admin, "appt-1", &requests.CancelAppointment{Reason: "x"})
		assertCode(t, err, exceptions.CodeInvalidTransition)
	})

	t.Run("prescription completes once", func(t *testing.T) {
		appointment := coretest.PaidAppointment(constvars.AppointmentStatusCompleted)
		appointment.PrescriptionStatus = constvars.PrescriptionStatusPending
		f := newFixture(appointment)

		first, err := f.usecase.CompletePrescription(ctx, coretest.Doctor, "appt-1")
		require.NoError(t, err)
		assert.Equal(t, constvars.PrescriptionStatusCompleted, first.PrescriptionStatus)

		second, err := f.usecase.CompletePrescription(ctx, coretest.Doctor, "appt-1")
		require.NoError(t, err)
		assert.Equal(t, first.Version, second.Version, "repeat does not write")
	})

	t.Run("notification failure does not fail the transition", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusPending))
		failing := new(coretest.MockNotificationService)
		failing.On("Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("queue down"))
		f.usecase.Notifier = failing

		_, err := f.usecase.Accept(ctx, coretest.Doctor, "appt-1")
		assert.NoError(t, err)
	})
}

func TestAppointmentUsecase_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()

	t.Run("guards are re-checked after a lost race", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusPending))
		raced := false
		f.repo.BeforeUpdate = func(stored *models.Appointment) {
			if raced {
				return
			}
			raced = true
			stored.Status = constvars.AppointmentStatusRejected
			stored.Version++
		}

		_, err := f.usecase.Accept(ctx, coretest.Doctor, "appt-1")
		assertCode(t, err, exceptions.CodeInvalidTransition)
		assert.Equal(t, constvars.AppointmentStatusRejected, f.repo.Get("appt-1").Status, "the earlier writer wins")
	})

	t.Run("gives up after repeated conflicts", func(t *testing.T) {
		f := newFixture(coretest.PaidAppointment(constvars.AppointmentStatusPending))
		f.repo.BeforeUpdate = func(stored *models.Appointment) { stored.Version++ }

		_, err := f.usecase.Accept(ctx, coretest.Doctor, "appt-1")
		assertCode(t, err, exceptions.CodeConflict)
		assert.Equal(t, maxConditionalUpdateAttempts, f.repo.UpdateCalls)
	})
}

func TestAppointmentUsecase_Reads(t *testing.T) {
	ctx := context.Background()
	f := newFixture(
		coretest.PaidAppointment(constvars.AppointmentStatusPending),
		&models.Appointment{PatientID: "patient-2", DoctorID: "doctor-2", Status: constvars.AppointmentStatusAccepted, Version: 1},
	)

	t.Run("participants and admin read", func(t *testing.T) {
		_, err := f.usecase.GetByID(ctx, coretest.Patient, "appt-1")
		assert.NoError(t, err)
		_, err = f.usecase.GetByID(ctx, coretest.Admin, "appt-2")
		assert.NoError(t, err)
		_, err = f.usecase.GetByID(ctx, coretest.Patient, "appt-2")
		assertCode(t, err, exceptions.CodeForbidden)
	})

	t.Run("list is scoped to the caller", func(t *testing.T) {
		mine, err := f.usecase.List(ctx, coretest.Doctor, &requests.AppointmentFilter{DoctorID: "doctor-2"})
		require.NoError(t, err)
		require.Len(t, mine, 1)
		assert.Equal(t, coretest.Doctor.ID, mine[0].DoctorID)

		all, err := f.usecase.List(ctx, coretest.Admin, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		accepted, err := f.usecase.List(ctx, coretest.Admin, &requests.AppointmentFilter{Status: constvars.AppointmentStatusAccepted})
		require.NoError(t, err)
		assert.Len(t, accepted, 1)
	})

	t.Run("bad status filter", func(t *testing.T) {
		_, err := f.usecase.List(ctx, coretest.Admin, &requests.AppointmentFilter{Status: "lost"})
		assertCode(t, err, exceptions.CodeValidationError)
	})
}
