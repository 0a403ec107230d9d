package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried by capability tokens.
const (
	RoleOwner = "owner"
	RoleStaff = "staff"
)

// TokenCodec signs and verifies capability tokens. It is constructed once at
// startup from config and injected wherever tokens are handled.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (tc *TokenCodec) TTL() time.Duration {
	return tc.ttl
}

// CapabilityClaims assert {role, tenant, device session} for a bounded time.
type CapabilityClaims struct {
	Role             string `json:"role"`
	TenantID         uint   `json:"tenant_id"`
	TenantSlug       string `json:"tenant_slug"`
	DeviceSessionKey string `json:"device_session_key"`
	jwt.RegisteredClaims
}

func (tc *TokenCodec) Sign(role string, tenantID uint, tenantSlug, deviceSessionKey string) (string, error) {
	claims := &CapabilityClaims{
		Role:             role,
		TenantID:         tenantID,
		TenantSlug:       tenantSlug,
		DeviceSessionKey: deviceSessionKey,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tc.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "befoodie-pos",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(tc.secret)
}

func (tc *TokenCodec) Verify(tokenString string) (*CapabilityClaims, error) {
	if IsTokenBlacklisted(tokenString) {
		return nil, errors.New("token has been revoked")
	}

	token, err := jwt.ParseWithClaims(tokenString, &CapabilityClaims{}, func(token *jwt.Token) (interface{}, error) {
		return tc.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(*CapabilityClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}
