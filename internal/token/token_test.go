package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	tok, err := BuildJWTString("42", "key", time.Hour)
	require.NoError(t, err)

	code, err := GetUserCode(tok, "key")
	require.NoError(t, err)
	require.Equal(t, "42", code)

	_, err = GetUserCode(tok, "other-key")
	require.Error(t, err)
}

func TestExpired(t *testing.T) {
	tok, err := BuildJWTString("42", "key", -time.Minute)
	require.NoError(t, err)
	_, err = GetUserCode(tok, "key")
	require.Error(t, err)
}
