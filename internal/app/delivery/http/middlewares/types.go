package middlewares

import (
	"context"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/models"
	"telemed-service/internal/app/services/shared/ratelimiter"

	"go.uber.org/zap"
)

type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.Principal, error)
}

type PrincipalLimiter interface {
	ApplyResourceLimiter(ctx context.Context, in *ratelimiter.ApplyResourceLimiterInput) (*ratelimiter.ApplyResourceLimiterOutput, error)
}

type Middlewares struct {
	Log              *zap.Logger
	InternalConfig   *config.InternalConfig
	TokenVerifier    TokenVerifier
	PrincipalLimiter PrincipalLimiter
}

func NewMiddlewares(logger *zap.Logger, internalConfig *config.InternalConfig, tokenVerifier TokenVerifier, principalLimiter PrincipalLimiter) *Middlewares {
	return &Middlewares{
		Log:              logger,
		InternalConfig:   internalConfig,
		TokenVerifier:    tokenVerifier,
		PrincipalLimiter: principalLimiter,
	}
}
