package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	codec := NewTokenCodec("secret-a", time.Hour)

	token, err := codec.Sign(RoleStaff, 42, "alpha", "device-1")
	require.NoError(t, err)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, RoleStaff, claims.Role)
	assert.EqualValues(t, 42, claims.TenantID)
	assert.Equal(t, "alpha", claims.TenantSlug)
	assert.Equal(t, "device-1", claims.DeviceSessionKey)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewTokenCodec("secret-a", time.Hour).Sign(RoleOwner, 1, "alpha", "d")
	require.NoError(t, err)

	_, err = NewTokenCodec("secret-b", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestTokenExpiry(t *testing.T) {
	codec := NewTokenCodec("secret-a", -time.Minute)
	token, err := codec.Sign(RoleOwner, 1, "alpha", "d")
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.Error(t, err)
}

func TestTokenBlacklist(t *testing.T) {
	codec := NewTokenCodec("secret-a", time.Hour)
	token, err := codec.Sign(RoleOwner, 1, "alpha", "d")
	require.NoError(t, err)

	BlacklistToken(token, time.Minute)
	_, err = codec.Verify(token)
	assert.Error(t, err)
	assert.True(t, IsTokenBlacklisted(token))

	// An entry whose expiry has passed is dropped on lookup.
	BlacklistToken(token, -time.Minute)
	assert.False(t, IsTokenBlacklisted(token))
}
