package settings

import (
	"context"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/contracts"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/core/commission"
	"telemed-service/internal/pkg/constvars"
	"telemed-service/internal/pkg/exceptions"
	"time"
)

// SeedDefaults writes the configured default rates when no settings
// document exists yet. Existing settings are never overwritten. It reports
// whether a document was inserted.
func SeedDefaults(ctx context.Context, repository contracts.PlatformSettingsRepository, finance config.AppFinance, now time.Time) (*models.PlatformSettings, bool, error) {
	if err := commission.ValidateRate(finance.DefaultPatientCommission); err != nil {
		return nil, false, err
	}
	if err := commission.ValidateRate(finance.DefaultDoctorCommission); err != nil {
		return nil, false, err
	}

	defaults := &models.PlatformSettings{
		Key:               constvars.PlatformSettingsSingletonKey,
		PatientCommission: finance.DefaultPatientCommission,
		DoctorCommission:  finance.DefaultDoctorCommission,
		UpdatedBy:         "migration",
		UpdatedAt:         now.UTC(),
	}
	inserted, err := repository.InsertIfMissing(ctx, defaults)
	if err != nil {
		return nil, false, err
	}
	if inserted {
		return defaults, true, nil
	}

	current, err := repository.Find(ctx)
	if err != nil {
		return nil, false, err
	}
	if current == nil {
		return nil, false, exceptions.ErrSettingsNotConfigured(nil)
	}
	return current, false, nil
}
