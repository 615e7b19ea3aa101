package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	issuer := NewTokenIssuer("secret", "todo-api", "todo-client", time.Hour)
	token, err := issuer.Generate("sess-1", 7)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	require.Equal(t, uint(7), claims.UserID)
	require.Equal(t, "sess-1", claims.ID)
}

func TestValidateToken_Invalid(t *testing.T) {
	issuer := NewTokenIssuer("secret", "todo-api", "todo-client", time.Hour)
	_, err := issuer.Validate("invalid.token")
	require.Error(t, err)
}

func TestValidateToken_WrongSecretIssuerAudience(t *testing.T) {
	good := NewTokenIssuer("secret", "todo-api", "todo-client", time.Hour)
	token, err := good.Generate("s", 1)
	require.NoError(t, err)

	for _, other := range []*TokenIssuer{
		NewTokenIssuer("other", "todo-api", "todo-client", time.Hour),
		NewTokenIssuer("secret", "someone-else", "todo-client", time.Hour),
		NewTokenIssuer("secret", "todo-api", "another-client", time.Hour),
	} {
		_, err := other.Validate(token)
		require.Error(t, err)
	}
}

func TestValidateToken_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", "todo-api", "todo-client", time.Minute)
	base := time.Now()
	issuer.now = func() time.Time { return base }

	token, err := issuer.Generate("s", 1)
	require.NoError(t, err)

	base = base.Add(2 * time.Minute)
	_, err = issuer.Validate(token)
	require.Error(t, err)
}
