package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewService("test-key", "dossier")

	token, err := svc.GenerateToken("analyst-1", time.Hour)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "analyst-1", claims.Analyst)
}

func TestValidate_ExpiredToken(t *testing.T) {
	svc := NewService("test-key", "dossier")

	token, err := svc.GenerateToken("analyst-1", -time.Minute)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidate_WrongKey(t *testing.T) {
	issuer := NewService("key-a", "dossier")
	verifier := NewService("key-b", "dossier")

	token, err := issuer.GenerateToken("analyst-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidate_Garbage(t *testing.T) {
	svc := NewService("test-key", "dossier")
	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
