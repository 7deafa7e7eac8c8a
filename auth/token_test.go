package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/errors"
)

const testSecret = "unit-test-secret"

func TestVerifier_ValidToken(t *testing.T) {
	req := require.New(t)

	token, err := GenerateToken(testSecret, "alice", []string{domain.RoleModerator}, time.Hour)
	req.NoError(err)

	identity, err := NewVerifier(testSecret).Verify(token)
	req.NoError(err)
	req.Equal("alice", identity.Name)
	req.True(identity.HasRole(domain.RoleModerator))
}

func TestVerifier_Rejections(t *testing.T) {
	req := require.New(t)
	verifier := NewVerifier(testSecret)

	t.Run("should reject a garbage token", func(t *testing.T) {
		_, err := verifier.Verify("not-a-jwt")
		req.ErrorIs(err, errors.ErrAuthentication)
	})

	t.Run("should reject a token signed with another secret", func(t *testing.T) {
		token, err := GenerateToken("other-secret", "alice", nil, time.Hour)
		req.NoError(err)

		_, err = verifier.Verify(token)
		req.ErrorIs(err, errors.ErrAuthentication)
	})

	t.Run("should reject an expired token", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "alice", nil, -time.Minute)
		req.NoError(err)

		_, err = verifier.Verify(token)
		req.ErrorIs(err, errors.ErrAuthentication)
	})

	t.Run("should reject a token without a user id", func(t *testing.T) {
		token, err := GenerateToken(testSecret, "", nil, time.Hour)
		req.NoError(err)

		_, err = verifier.Verify(token)
		req.ErrorIs(err, errors.ErrAuthentication)
	})
}
