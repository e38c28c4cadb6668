package contracts

import (
	"context"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
)

type PlatformSettingsRepository interface {
	Find(ctx context.Context) (*models.PlatformSettings, error)
	Upsert(ctx context.Context, settings *models.PlatformSettings) error
	InsertIfMissing(ctx context.Context, settings *models.PlatformSettings) (bool, error)
}

type PlatformSettingsUsecase interface {
	GetCurrentRates(ctx context.Context) (*models.PlatformSettings, error)
	GetFinancePolicy() models.FinancePolicy
	UpdateSettings(ctx context.Context, principal models.Principal, request *requests.UpdatePlatformSettings) (*models.PlatformSettings, error)
}
