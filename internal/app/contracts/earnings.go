package contracts

import (
	"context"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/dto/requests"
	"telemed-service/internal/pkg/dto/responses"
)

type EarningsUsecase interface {
	ComputeDoctorEarnings(ctx context.Context, principal models.Principal, request *requests.DoctorEarnings) (*responses.DoctorEarnings, error)
	ComputePlatformEarnings(ctx context.Context, principal models.Principal, request *requests.PlatformEarnings) (*responses.PlatformEarnings, error)
	// AvailableBalance is lifetime net earnings minus approved withdrawals,
	// floored at zero.
	AvailableBalance(ctx context.Context, doctorID string) (float64, error)
}
