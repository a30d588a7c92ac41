package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptVerifier_Compare(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery staple"), bcrypt.MinCost)
	require.NoError(t, err)

	verifier := NewBcryptVerifier()

	t.Run("matching password", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, verifier.Compare(string(hash), "correct horse battery staple"))
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, verifier.Compare(string(hash), "incorrect horse"))
	})

	t.Run("malformed hash", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, verifier.Compare("not-a-bcrypt-hash", "anything"))
	})
}
