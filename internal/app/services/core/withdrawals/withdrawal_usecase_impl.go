package withdrawals

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type withdrawalUsecase struct {
	WithdrawalRepository contracts.WithdrawalRepository
	DoctorRepository     contracts.DoctorRepository
	EarningsUsecase      contracts.EarningsUsecase
	SettingsUsecase      contracts.PlatformSettingsUsecase
	RedisRepository      contracts.RedisRepository
	Locker               contracts.LockerService
	InvoiceGenerator     contracts.InvoiceGenerator
	Notifier             contracts.NotificationService
	InternalConfig       *config.InternalConfig
	Log                  *zap.Logger
}

var (
	withdrawalUsecaseInstance contracts.WithdrawalUsecase
	onceWithdrawalUsecase     sync.Once
)

func NewWithdrawalUsecase(
	withdrawalRepository contracts.WithdrawalRepository,
	doctorRepository contracts.DoctorRepository,
	earningsUsecase contracts.EarningsUsecase,
	settingsUsecase contracts.PlatformSettingsUsecase,
	redisRepository contracts.RedisRepository,
	locker contracts.LockerService,
	invoiceGenerator contracts.InvoiceGenerator,
	notifier contracts.NotificationService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.WithdrawalUsecase {
	onceWithdrawalUsecase.Do(func() {
		withdrawalUsecaseInstance = newWithdrawalUsecase(withdrawalRepository, doctorRepository, earningsUsecase, settingsUsecase, redisRepository, locker, invoiceGenerator, notifier, internalConfig, logger)
	})
	return withdrawalUsecaseInstance
}

func newWithdrawalUsecase(
	withdrawalRepository contracts.WithdrawalRepository,
	doctorRepository contracts.DoctorRepository,
	earningsUsecase contracts.EarningsUsecase,
	settingsUsecase contracts.PlatformSettingsUsecase,
	redisRepository contracts.RedisRepository,
	locker contracts.LockerService,
	invoiceGenerator contracts.InvoiceGenerator,
	notifier contracts.NotificationService,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *withdrawalUsecase {
	return &withdrawalUsecase{
		WithdrawalRepository: withdrawalRepository,
		DoctorRepository:     doctorRepository,
		EarningsUsecase:      earningsUsecase,
		SettingsUsecase:      settingsUsecase,
		RedisRepository:      redisRepository,
		Locker:               locker,
		InvoiceGenerator:     invoiceGenerator,
		Notifier:             notifier,
		InternalConfig:       internalConfig,
		Log:                  logger,
	}
}

// RequestWithdrawal creates a pending payout request for the calling doctor.
// The balance check runs under the doctor's lock so two requests cannot both
// pass against the same balance.
func (uc *withdrawalUsecase) RequestWithdrawal(ctx context.Context, principal models.Principal, request *requests.RequestWithdrawal) (*models.Withdrawal, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("withdrawalUsecase.RequestWithdrawal called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDoctorIDKey, principal.ID),
		zap.Float64(constvars.LoggingAmountKey, request.Amount),
	)

	if principal.Role != constvars.RoleDoctor {
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}
	if !utils.IsFiniteAmount(request.Amount) {
		return nil, exceptions.ErrInvalidInput(nil, "amount must be a number")
	}
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	doctor, err := uc.DoctorRepository.FindByID(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, exceptions.ErrDoctorNotFound(nil)
	}
	if !doctor.BankDetails.HasPayoutTarget() {
		return nil, exceptions.ErrBankDetailsMissing(nil)
	}

	var created *models.Withdrawal
	err = uc.withDoctorLock(ctx, doctor.ID, func() error {
		if err := uc.checkAmount(ctx, doctor.ID, request.Amount); err != nil {
			return err
		}

		sequence, err := uc.RedisRepository.Increment(ctx, constvars.RedisKeyWithdrawalSequence)
		if err != nil {
			uc.Log.Error("withdrawalUsecase.RequestWithdrawal error calling RedisRepository.Increment",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, constvars.RedisKeyWithdrawalSequence),
				zap.Error(err),
			)
			return err
		}

		now := time.Now().UTC()
		created, err = uc.WithdrawalRepository.Create(ctx, &models.Withdrawal{
			DisplayID:   fmt.Sprintf(constvars.WithdrawalDisplayIDFormat, sequence),
			DoctorID:    doctor.ID,
			Amount:      request.Amount,
			Status:      constvars.WithdrawalStatusPending,
			Method:      payoutMethod(doctor.BankDetails),
			RequestedAt: now,
			TimeModel:   models.TimeModel{CreatedAt: now, UpdatedAt: now},
		})
		return err
	})
	if err != nil {
		uc.Log.Error("withdrawalUsecase.RequestWithdrawal failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingDoctorIDKey, doctor.ID),
			zap.Float64(constvars.LoggingAmountKey, request.Amount),
			zap.String(constvars.LoggingErrorCodeKey, exceptions.CodeOf(err)),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "withdrawal_requested", requestID,
		zap.String(constvars.LoggingWithdrawalIDKey, created.ID),
		zap.String(constvars.LoggingDoctorIDKey, doctor.ID),
		zap.Float64(constvars.LoggingAmountKey, created.Amount),
	)
	return created, nil
}

// Approve records the payout and attaches the invoice. The approved amount
// must still fit in the doctor's balance at approval time.
func (uc *withdrawalUsecase) Approve(ctx context.Context, principal models.Principal, request *requests.ApproveWithdrawal) (*models.Withdrawal, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("withdrawalUsecase.Approve called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWithdrawalIDKey, request.WithdrawalID),
		zap.Float64(constvars.LoggingAmountKey, request.ApprovedAmount),
	)

	if !principal.IsAdmin() {
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}
	request.TransactionID = strings.TrimSpace(request.TransactionID)
	if !utils.IsFiniteAmount(request.ApprovedAmount) {
		return nil, exceptions.ErrInvalidInput(nil, "approvedAmount must be a number")
	}
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	withdrawal, err := uc.findPending(ctx, request.WithdrawalID)
	if err != nil {
		return nil, err
	}
	doctor, err := uc.DoctorRepository.FindByID(ctx, withdrawal.DoctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil {
		return nil, exceptions.ErrDoctorNotFound(nil)
	}

	var approved *models.Withdrawal
	err = uc.withDoctorLock(ctx, withdrawal.DoctorID, func() error {
		available, err := uc.EarningsUsecase.AvailableBalance(ctx, withdrawal.DoctorID)
		if err != nil {
			return err
		}
		if request.ApprovedAmount > available {
			return exceptions.ErrWithdrawalOutOfRange(nil, formatAmount(request.ApprovedAmount), "0", formatAmount(available))
		}

		now := time.Now().UTC()
		paymentDate := request.PaymentDate.UTC()
		next := *withdrawal
		next.Status = constvars.WithdrawalStatusApproved
		next.ApprovedAmount = request.ApprovedAmount
		next.TransactionID = request.TransactionID
		next.PaymentMode = request.PaymentMode
		next.PaymentDate = &paymentDate
		next.ProcessedAt = &now
		next.UpdatedAt = now

		invoiceURL, err := uc.InvoiceGenerator.Generate(ctx, &next, doctor)
		if err != nil {
			return err
		}
		next.InvoiceURL = invoiceURL

		if err := uc.commit(ctx, &next); err != nil {
			uc.Log.Warn("withdrawalUsecase.Approve invoice stored for a withdrawal that was not approved",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingWithdrawalIDKey, withdrawal.ID),
				zap.String(constvars.LoggingObjectPathKey, invoiceURL),
				zap.Error(err),
			)
			return err
		}
		approved = &next
		return nil
	})
	if err != nil {
		uc.Log.Error("withdrawalUsecase.Approve failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWithdrawalIDKey, withdrawal.ID),
			zap.String(constvars.LoggingDoctorIDKey, withdrawal.DoctorID),
			zap.Float64(constvars.LoggingAmountKey, request.ApprovedAmount),
			zap.String(constvars.LoggingErrorCodeKey, exceptions.CodeOf(err)),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "withdrawal_approved", requestID,
		zap.String(constvars.LoggingWithdrawalIDKey, approved.ID),
		zap.String(constvars.LoggingDoctorIDKey, approved.DoctorID),
		zap.Float64(constvars.LoggingAmountKey, approved.ApprovedAmount),
	)
	uc.notify(ctx, approved, constvars.NotificationEventWithdrawalApproved,
		fmt.Sprintf("Your withdrawal %s of %s has been paid", approved.DisplayID, formatAmount(approved.ApprovedAmount)))
	return approved, nil
}

func (uc *withdrawalUsecase) Reject(ctx context.Context, principal models.Principal, request *requests.RejectWithdrawal) (*models.Withdrawal, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("withdrawalUsecase.Reject called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingWithdrawalIDKey, request.WithdrawalID),
	)

	if !principal.IsAdmin() {
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}
	request.Reason = strings.TrimSpace(request.Reason)
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	withdrawal, err := uc.findPending(ctx, request.WithdrawalID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	next := *withdrawal
	next.Status = constvars.WithdrawalStatusRejected
	next.RejectReason = request.Reason
	next.ProcessedAt = &now
	next.UpdatedAt = now
	if err := uc.commit(ctx, &next); err != nil {
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "withdrawal_rejected", requestID,
		zap.String(constvars.LoggingWithdrawalIDKey, next.ID),
		zap.String(constvars.LoggingDoctorIDKey, next.DoctorID),
	)
	uc.notify(ctx, &next, constvars.NotificationEventWithdrawalRejected,
		fmt.Sprintf("Your withdrawal %s was rejected: %s", next.DisplayID, next.RejectReason))
	return &next, nil
}

func (uc *withdrawalUsecase) List(ctx context.Context, principal models.Principal, filter *requests.WithdrawalFilter) ([]models.Withdrawal, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("withdrawalUsecase.List called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
	)

	if filter == nil {
		filter = &requests.WithdrawalFilter{}
	}
	switch principal.Role {
	case constvars.RoleAdmin:
	case constvars.RoleDoctor:
		filter.DoctorID = principal.ID
	default:
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}
	if err := utils.ValidateStruct(filter); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}

	withdrawals, err := uc.WithdrawalRepository.FindAll(ctx, filter)
	if err != nil {
		uc.Log.Error("withdrawalUsecase.List error calling WithdrawalRepository.FindAll",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	return withdrawals, nil
}

func (uc *withdrawalUsecase) checkAmount(ctx context.Context, doctorID string, amount float64) error {
	minimum := uc.SettingsUsecase.GetFinancePolicy().MinimumWithdrawal
	available, err := uc.EarningsUsecase.AvailableBalance(ctx, doctorID)
	if err != nil {
		return err
	}
	if amount < minimum || amount > available {
		return exceptions.ErrWithdrawalOutOfRange(nil, formatAmount(amount), formatAmount(minimum), formatAmount(available))
	}
	return nil
}

func (uc *withdrawalUsecase) findPending(ctx context.Context, withdrawalID string) (*models.Withdrawal, error) {
	withdrawal, err := uc.WithdrawalRepository.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if withdrawal == nil {
		return nil, exceptions.ErrWithdrawalNotFound(nil)
	}
	if withdrawal.Status != constvars.WithdrawalStatusPending {
		return nil, exceptions.ErrWithdrawalAlreadyProcessed(nil, withdrawal.Status)
	}
	return withdrawal, nil
}

// commit writes next only if the stored withdrawal is still pending.
func (uc *withdrawalUsecase) commit(ctx context.Context, next *models.Withdrawal) error {
	updated, err := uc.WithdrawalRepository.UpdateIfStatus(ctx, next, constvars.WithdrawalStatusPending)
	if err != nil {
		return err
	}
	if updated {
		return nil
	}
	current, err := uc.WithdrawalRepository.FindByID(ctx, next.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return exceptions.ErrWithdrawalNotFound(nil)
	}
	return exceptions.ErrWithdrawalAlreadyProcessed(nil, current.Status)
}

func (uc *withdrawalUsecase) withDoctorLock(ctx context.Context, doctorID string, fn func() error) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	lockKey := fmt.Sprintf(constvars.RedisKeyWithdrawalDoctorLock, doctorID)

	acquired, lockValue, err := uc.Locker.TryLock(ctx, lockKey, uc.lockTTL())
	if err != nil {
		return err
	}
	if !acquired {
		return exceptions.ErrWithdrawalInProgress(nil)
	}
	defer func() {
		if err := uc.Locker.Unlock(ctx, lockKey, lockValue); err != nil {
			uc.Log.Warn("withdrawalUsecase.withDoctorLock error calling Locker.Unlock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.String(constvars.LoggingRedisKey, lockKey),
				zap.Error(err),
			)
		}
	}()
	return fn()
}

func (uc *withdrawalUsecase) lockTTL() time.Duration {
	if uc.InternalConfig == nil || uc.InternalConfig.Locker.WithdrawalLockTTLInSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(uc.InternalConfig.Locker.WithdrawalLockTTLInSeconds) * time.Second
}

func (uc *withdrawalUsecase) notify(ctx context.Context, withdrawal *models.Withdrawal, event, message string) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	err := uc.Notifier.Notify(ctx, withdrawal.DoctorID, event, message, map[string]string{
		"withdrawalId": withdrawal.ID,
		"status":       withdrawal.Status,
	})
	if err != nil {
		uc.Log.Warn("withdrawalUsecase.notify error calling Notifier.Notify",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingWithdrawalIDKey, withdrawal.ID),
			zap.Error(err),
		)
	}
}

func payoutMethod(details models.BankDetails) string {
	if details.UPIID != "" {
		return constvars.WithdrawalMethodUPI
	}
	return constvars.WithdrawalMethodBankTransfer
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
