package utils

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCurrency(t *testing.T) {
	cases := map[string]string{
		"0":         "₹0.00",
		"99":        "₹99.00",
		"1234567.5": "₹1,234,567.50",
		"-2500":     "-₹2,500.00",
	}
	for input, expected := range cases {
		amount, err := decimal.NewFromString(input)
		require.NoError(t, err)
		assert.Equal(t, expected, FormatCurrency(amount))
	}
}

func TestHashAndVerifySecret(t *testing.T) {
	digest, err := HashSecret("owner123")
	require.NoError(t, err)
	assert.NotEqual(t, "owner123", digest)

	assert.True(t, VerifySecret("owner123", digest))
	assert.False(t, VerifySecret("owner124", digest))
}

func TestKeyedMutexSerializesPerKey(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("same")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestAppErrorStatusMapping(t *testing.T) {
	assert.Equal(t, 401, HTTPStatus(KindAuthentication))
	assert.Equal(t, 403, HTTPStatus(KindAuthorization))
	assert.Equal(t, 409, HTTPStatus(KindInvariant))
	assert.Equal(t, 400, HTTPStatus(KindValidation))
	assert.Equal(t, 404, HTTPStatus(KindNotFound))
	assert.Equal(t, 503, HTTPStatus(KindUnavailable))
	assert.Equal(t, 500, HTTPStatus("something-else"))
}
