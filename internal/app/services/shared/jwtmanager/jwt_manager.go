package jwtmanager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"telemed-service/internal/app/config"
	"telemed-service/internal/app/models"
	"telemed-service/internal/pkg/constvars"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

const defaultTokenTTL = 24 * time.Hour

// PrincipalClaims carries the caller identity. The subject is the caller's
// id and Role is one of patient, doctor or admin.
type PrincipalClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies HS256 access tokens.
type JWTManager struct {
	log    *zap.Logger
	secret []byte
	ttl    time.Duration
}

func NewJWTManager(cfg *config.InternalConfig, log *zap.Logger) (*JWTManager, error) {
	secret := strings.TrimSpace(cfg.JWT.Secret)
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is empty")
	}
	return &JWTManager{
		log:    log,
		secret: []byte(secret),
		ttl:    defaultTokenTTL,
	}, nil
}

// CreateToken is used by operational tooling to mint tokens for a principal.
func (j *JWTManager) CreateToken(ctx context.Context, principal models.Principal) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	j.log.Debug("JWTManager.CreateToken called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingPrincipalIDKey, principal.ID),
		zap.String(constvars.LoggingPrincipalRoleKey, principal.Role),
	)

	if strings.TrimSpace(principal.ID) == "" {
		return "", errors.New("subject is required")
	}
	if !isKnownRole(principal.Role) {
		return "", fmt.Errorf("unknown role %q", principal.Role)
	}

	now := time.Now().UTC()
	claims := PrincipalClaims{
		Role: principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// VerifyToken validates signature and expiry and returns the principal the
// token was issued for.
func (j *JWTManager) VerifyToken(ctx context.Context, token string) (*models.Principal, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	if strings.TrimSpace(token) == "" {
		return nil, errors.New("token is required")
	}

	claims := new(PrincipalClaims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		j.log.Info("JWTManager.VerifyToken rejected token",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.Subject == "" || !isKnownRole(claims.Role) {
		return nil, fmt.Errorf("token carries no usable principal")
	}

	return &models.Principal{ID: claims.Subject, Role: claims.Role}, nil
}

func isKnownRole(role string) bool {
	switch role {
	case constvars.RolePatient, constvars.RoleDoctor, constvars.RoleAdmin:
		return true
	}
	return false
}
