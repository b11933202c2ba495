package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerifyToken(t *testing.T) {
	m := NewJWTManager("test-secret", 1)

	tok, err := m.GenerateToken("u1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := m.VerifyToken(tok)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "admin", claims.Role)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	tok, err := NewJWTManager("secret-a", 1).GenerateToken("u1", "user")
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", 1).VerifyToken(tok)
	require.Error(t, err)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	// 过期时间为负值，签发即过期
	tok, err := NewJWTManager("secret", -1).GenerateToken("u1", "user")
	require.NoError(t, err)

	_, err = NewJWTManager("secret", -1).VerifyToken(tok)
	require.Error(t, err)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, err := NewJWTManager("secret", 1).VerifyToken("not.a.token")
	require.Error(t, err)
}
