// internal/auth/auth_test.go
package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/apdebate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = &Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestSessionRoundTrip(t *testing.T) {
	require.NoError(t, Init(0))
	p := models.Participant{ID: uuid.New(), Name: "Ada"}

	token, err := CreateJWT(p, true)
	require.NoError(t, err)
	sess, err := AuthenticateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, p, sess.Participant)
	assert.True(t, sess.Operator)
}

func TestSessionRejectsTampering(t *testing.T) {
	require.NoError(t, Init(0))
	token, err := CreateJWT(models.Participant{ID: uuid.New(), Name: "Ada"}, false)
	require.NoError(t, err)

	_, err = AuthenticateJWT(token[:len(token)-2] + "xx")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = AuthenticateJWT("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// tokens from a previous key pair stop verifying after a restart
	require.NoError(t, Init(0))
	_, err = AuthenticateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionExpiry(t *testing.T) {
	require.NoError(t, Init(-time.Second))
	token, err := CreateJWT(models.Participant{ID: uuid.New()}, false)
	require.NoError(t, err)
	_, err = AuthenticateJWT(token)
	assert.NoError(t, err, "non-positive expiry means never")

	require.NoError(t, Init(time.Nanosecond))
	token, err = CreateJWT(models.Participant{ID: uuid.New()}, false)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = AuthenticateJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOperatorKey(t *testing.T) {
	encoded, err := HashOperatorKey("s3cret", testParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"))

	ok, err := VerifyOperatorKey("s3cret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyOperatorKey("guess", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = VerifyOperatorKey("s3cret", "plaintext")
	assert.ErrorIs(t, err, ErrInvalidHash)
	_, err = VerifyOperatorKey("s3cret", strings.Replace(encoded, "v=19", "v=16", 1))
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}
