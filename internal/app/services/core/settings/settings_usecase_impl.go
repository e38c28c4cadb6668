package settings

import (
	"context"
	"sync"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/commission"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/exceptions"
	"telemed-service/internal/pkg/utils"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type settingsUsecase struct {
	SettingsRepository contracts.PlatformSettingsRepository
	RedisRepository    contracts.RedisRepository
	InternalConfig     *config.InternalConfig
	Log                *zap.Logger
}

var (
	settingsUsecaseInstance contracts.PlatformSettingsUsecase
	onceSettingsUsecase     sync.Once
)

func NewSettingsUsecase(
	settingsRepository contracts.PlatformSettingsRepository,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.PlatformSettingsUsecase {
	onceSettingsUsecase.Do(func() {
		settingsUsecaseInstance = newSettingsUsecase(settingsRepository, redisRepository, internalConfig, logger)
	})
	return settingsUsecaseInstance
}

func newSettingsUsecase(
	settingsRepository contracts.PlatformSettingsRepository,
	redisRepository contracts.RedisRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) *settingsUsecase {
	return &settingsUsecase{
		SettingsRepository: settingsRepository,
		RedisRepository:    redisRepository,
		InternalConfig:     internalConfig,
		Log:                logger,
	}
}

// GetCurrentRates serves the commission rates from the cache, falling back
// to the store. A missing settings document is an operator error: there is
// no hardcoded fallback rate.
func (uc *settingsUsecase) GetCurrentRates(ctx context.Context) (*models.PlatformSettings, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if cached := uc.fromCache(ctx, requestID); cached != nil {
		return cached, nil
	}

	settings, err := uc.SettingsRepository.Find(ctx)
	if err != nil {
		uc.Log.Error("settingsUsecase.GetCurrentRates error calling SettingsRepository.Find",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if settings == nil {
		uc.Log.Error("settingsUsecase.GetCurrentRates settings document missing, run the migration",
			zap.String(constvars.LoggingRequestIDKey, requestID),
		)
		return nil, exceptions.ErrSettingsNotConfigured(nil)
	}

	if err := uc.RedisRepository.Set(ctx, constvars.RedisKeyPlatformSettings, settings, uc.cacheTTL()); err != nil {
		uc.Log.Warn("settingsUsecase.GetCurrentRates error calling RedisRepository.Set",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}
	return settings, nil
}

func (uc *settingsUsecase) GetFinancePolicy() models.FinancePolicy {
	finance := uc.InternalConfig.Finance
	return models.FinancePolicy{
		CancellationFee:    finance.CancellationFee,
		GatewayFeePct:      finance.GatewayFeePct,
		GSTOnGatewayFeePct: finance.GSTOnGatewayFeePct,
		MinimumWithdrawal:  finance.MinimumWithdrawal,
	}
}

func (uc *settingsUsecase) UpdateSettings(ctx context.Context, principal models.Principal, request *requests.UpdatePlatformSettings) (*models.PlatformSettings, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("settingsUsecase.UpdateSettings called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
	)

	if !principal.IsAdmin() {
		return nil, exceptions.ErrNotMatchRoleType(nil)
	}
	if err := utils.ValidateStruct(request); err != nil {
		return nil, exceptions.ErrInputValidation(err)
	}
	if err := commission.ValidateRate(*request.PatientCommission); err != nil {
		return nil, err
	}
	if err := commission.ValidateRate(*request.DoctorCommission); err != nil {
		return nil, err
	}

	settings := &models.PlatformSettings{
		Key:               constvars.PlatformSettingsSingletonKey,
		PatientCommission: *request.PatientCommission,
		DoctorCommission:  *request.DoctorCommission,
		UpdatedBy:         principal.ID,
		UpdatedAt:         time.Now().UTC(),
	}
	if err := uc.SettingsRepository.Upsert(ctx, settings); err != nil {
		uc.Log.Error("settingsUsecase.UpdateSettings error calling SettingsRepository.Upsert",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if err := uc.RedisRepository.Delete(ctx, constvars.RedisKeyPlatformSettings); err != nil {
		uc.Log.Warn("settingsUsecase.UpdateSettings error calling RedisRepository.Delete",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
	}

	utils.LogBusinessEvent(uc.Log, "platform_settings_updated", requestID,
		zap.Float64("patient_commission", settings.PatientCommission),
		zap.Float64("doctor_commission", settings.DoctorCommission),
	)
	return settings, nil
}

func (uc *settingsUsecase) fromCache(ctx context.Context, requestID string) *models.PlatformSettings {
	raw, err := uc.RedisRepository.Get(ctx, constvars.RedisKeyPlatformSettings)
	if err != nil {
		uc.Log.Warn("settingsUsecase.fromCache error calling RedisRepository.Get",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil
	}
	if raw == "" {
		return nil
	}

	var settings models.PlatformSettings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		uc.Log.Warn("settingsUsecase.fromCache error unmarshalling cached settings",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil
	}
	return &settings
}

func (uc *settingsUsecase) cacheTTL() time.Duration {
	if uc.InternalConfig.Finance.SettingsCacheTTLInSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(uc.InternalConfig.Finance.SettingsCacheTTLInSeconds) * time.Second
}
