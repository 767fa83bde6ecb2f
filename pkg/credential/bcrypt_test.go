package credential

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := NewBcrypt(bcrypt.MinCost)

	hash, err := hasher.Hash("s3cret!")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret!", hash)

	require.NoError(t, hasher.Compare(hash, "s3cret!"))
	require.ErrorIs(t, hasher.Compare(hash, "wrong"), ErrMismatch)
}

func TestNewBcrypt_cost(t *testing.T) {
	t.Parallel()

	require.Equal(t, bcrypt.DefaultCost, NewBcrypt(0).cost)
	require.Equal(t, bcrypt.DefaultCost, NewBcrypt(bcrypt.MaxCost+1).cost)
	require.Equal(t, 12, NewBcrypt(12).cost)
}
