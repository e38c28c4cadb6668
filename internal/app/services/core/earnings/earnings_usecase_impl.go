package earnings

import (
	"context"
	"sync"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
	"telemed-service/internal/pkg/exceptions"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type earningsUsecase struct {
	AppointmentRepository contracts.AppointmentRepository
	WithdrawalRepository  contracts.WithdrawalRepository
	SettingsUsecase       contracts.PlatformSettingsUsecase
	Log                   *zap.Logger
	now                   func() time.Time
}

var (
	earningsUsecaseInstance contracts.EarningsUsecase
	onceEarningsUsecase     sync.Once
)

func NewEarningsUsecase(
	appointmentRepository contracts.AppointmentRepository,
	withdrawalRepository contracts.WithdrawalRepository,
	settingsUsecase contracts.PlatformSettingsUsecase,
	logger *zap.Logger,
) contracts.EarningsUsecase {
	onceEarningsUsecase.Do(func() {
		earningsUsecaseInstance = newEarningsUsecase(appointmentRepository, withdrawalRepository, settingsUsecase, logger)
	})
	return earningsUsecaseInstance
}

func newEarningsUsecase(
	appointmentRepository contracts.AppointmentRepository,
	withdrawalRepository contracts.WithdrawalRepository,
	settingsUsecase contracts.PlatformSettingsUsecase,
	logger *zap.Logger,
) *earningsUsecase {
	return &earningsUsecase{
		AppointmentRepository: appointmentRepository,
		WithdrawalRepository:  withdrawalRepository,
		SettingsUsecase:       settingsUsecase,
		Log:                   logger,
		now:                   time.Now,
	}
}

func (uc *earningsUsecase) ComputeDoctorEarnings(ctx context.Context, principal models.Principal, request *requests.DoctorEarnings) (*responses.DoctorEarnings, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("earningsUsecase.ComputeDoctorEarnings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
	)

	switch {
	case principal.IsAdmin():
	case principal.Role == constvars.RoleDoctor && principal.ID == request.DoctorID:
	default:
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}
	window, err := toWindow(request.From, request.To)
	if err != nil {
		return nil, err
	}

	appointments, withdrawals, err := uc.loadDoctorLedger(ctx, request.DoctorID)
	if err != nil {
		uc.Log.Error("earningsUsecase.ComputeDoctorEarnings error loading ledger",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
			zap.Error(err),
		)
		return nil, err
	}

	result, err := FoldDoctorEarnings(request.DoctorID, appointments, withdrawals, window, uc.now())
	if err != nil {
		return nil, err
	}

	uc.Log.Info("earningsUsecase.ComputeDoctorEarnings succeeded",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, request.DoctorID),
		zap.Int(constvars.LoggingCountKey, result.CompletedAppointments),
		zap.Float64(constvars.LoggingAmountKey, result.PendingPayout),
	)
	return result, nil
}

func (uc *earningsUsecase) ComputePlatformEarnings(ctx context.Context, principal models.Principal, request *requests.PlatformEarnings) (*responses.PlatformEarnings, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("earningsUsecase.ComputePlatformEarnings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
	)

	if !principal.IsAdmin() {
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}
	window, err := toWindow(request.From, request.To)
	if err != nil {
		return nil, err
	}

	appointments, err := uc.AppointmentRepository.FindByStatuses(ctx, []string{
		constvars.AppointmentStatusCompleted,
		constvars.AppointmentStatusCanceled,
	})
	if err != nil {
		uc.Log.Error("earningsUsecase.ComputePlatformEarnings error calling AppointmentRepository.FindByStatuses",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	return FoldPlatformEarnings(appointments, window, uc.SettingsUsecase.GetFinancePolicy())
}

func (uc *earningsUsecase) AvailableBalance(ctx context.Context, doctorID string) (float64, error) {
	appointments, withdrawals, err := uc.loadDoctorLedger(ctx, doctorID)
	if err != nil {
		return 0, err
	}
	result, err := FoldDoctorEarnings(doctorID, appointments, withdrawals, models.DateRange{}, uc.now())
	if err != nil {
		return 0, err
	}
	return result.PendingPayout, nil
}

// loadDoctorLedger reads completed appointments and approved withdrawals in
// parallel.
func (uc *earningsUsecase) loadDoctorLedger(ctx context.Context, doctorID string) ([]models.Appointment, []models.Withdrawal, error) {
	var (
		appointments []models.Appointment
		withdrawals  []models.Withdrawal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		appointments, err = uc.AppointmentRepository.FindByDoctorIDAndStatus(gctx, doctorID, constvars.AppointmentStatusCompleted)
		return err
	})
	g.Go(func() error {
		var err error
		withdrawals, err = uc.WithdrawalRepository.FindAll(gctx, &requests.WithdrawalFilter{
			DoctorID: doctorID,
			Status:   constvars.WithdrawalStatusApproved,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return appointments, withdrawals, nil
}

func toWindow(from, to *time.Time) (models.DateRange, error) {
	if from != nil && to != nil && from.After(*to) {
		return models.DateRange{}, exceptions.ErrInvalidInput(nil, "from must not be after to")
	}
	return models.DateRange{From: from, To: to}, nil
}
