package secrets_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dealdocs/pkg/secrets"
)

var master = strings.Repeat("m", 32)

func TestGenerateKey(t *testing.T) {
	t.Parallel()

	a, err := secrets.GenerateKey()
	require.NoError(t, err)
	b, err := secrets.GenerateKey()
	require.NoError(t, err)

	assert.Len(t, a, secrets.KeySize)
	assert.NotEqual(t, a, b)
}

func TestDerive(t *testing.T) {
	t.Parallel()

	t.Run("deterministic", func(t *testing.T) {
		t.Parallel()

		a, err := secrets.Derive([]byte(master), "device cookie")
		require.NoError(t, err)
		b, err := secrets.Derive([]byte(master), "device cookie")
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Len(t, a, secrets.KeySize)
		assert.NotEqual(t, []byte(master), a)
	})

	t.Run("purpose and master separate keys", func(t *testing.T) {
		t.Parallel()

		a, err := secrets.Derive([]byte(master), "device cookie")
		require.NoError(t, err)
		b, err := secrets.Derive([]byte(master), "share links")
		require.NoError(t, err)
		c, err := secrets.Derive([]byte(strings.Repeat("n", 32)), "device cookie")
		require.NoError(t, err)

		assert.NotEqual(t, a, b)
		assert.NotEqual(t, a, c)
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			master  string
			purpose string
			want    error
		}{
			{"short master", "short", "device cookie", secrets.ErrMasterTooShort},
			{"empty purpose", master, "", secrets.ErrEmptyPurpose},
		}
		for _, tt := range tests {
			_, err := secrets.Derive([]byte(tt.master), tt.purpose)
			assert.ErrorIs(t, err, tt.want, tt.name)
		}
	})
}

func TestDeriveAll(t *testing.T) {
	t.Parallel()

	keys, err := secrets.DeriveAll([]string{master, strings.Repeat("n", 40)}, "device cookie")
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Len(t, keys[0], 2*secrets.KeySize)
	assert.NotEqual(t, keys[0], keys[1])

	single, err := secrets.DeriveHex(master, "device cookie")
	require.NoError(t, err)
	assert.Equal(t, single, keys[0])

	_, err = secrets.DeriveAll([]string{master, "short"}, "device cookie")
	assert.ErrorIs(t, err, secrets.ErrMasterTooShort)
}
