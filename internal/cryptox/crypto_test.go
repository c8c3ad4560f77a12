package cryptox

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCipher(t *testing.T) *FieldCipher {
	t.Helper()
	c, err := NewFieldCipher(bytes.Repeat([]byte{7}, 32))
	require.NoError(t, err)
	return c
}

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	password := []byte("secret-password")
	salt := []byte("fixed-salt")

	key1 := DeriveMasterKey(password, salt)
	key2 := DeriveMasterKey(password, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}

	expectedHex := "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39"
	if hex.EncodeToString(key1) != expectedHex {
		t.Errorf("expected %s, got %s", expectedHex, hex.EncodeToString(key1))
	}
}

func TestDeriveMasterKey_DifferentInputs(t *testing.T) {
	password := []byte("secret-password")

	key1 := DeriveMasterKey(password, []byte("salt-1"))
	key2 := DeriveMasterKey(password, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func TestFieldCipher_RoundTrip(t *testing.T) {
	c := newTestCipher(t)

	inputs := []string{"", "Jane", "Zoë Ñúñez", "東京都渋谷区", "emoji 🚀 ok", strings.Repeat("x", 4096)}
	for _, in := range inputs {
		enc, err := c.Encrypt(in)
		require.NoError(t, err)
		if in != "" {
			assert.True(t, IsEncrypted(enc), "ciphertext must carry the marker")
			assert.NotContains(t, enc, in)
		}

		dec, err := c.Decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, in, dec)
	}
}

func TestFieldCipher_NonDeterministic(t *testing.T) {
	c := newTestCipher(t)

	a, err := c.Encrypt("Jane")
	require.NoError(t, err)
	b, err := c.Encrypt("Jane")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "fresh nonce per call")
}

func TestFieldCipher_DecryptPassesThroughPlaintext(t *testing.T) {
	c := newTestCipher(t)

	for _, in := range []string{"", "already plain", "enc", "x"} {
		out, err := c.Decrypt(in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	}
}

func TestFieldCipher_DecryptMalformed(t *testing.T) {
	c := newTestCipher(t)

	_, err := c.Decrypt(encPrefix + "!!!not-base64!!!")
	assert.True(t, errors.Is(err, ErrCipher))

	_, err = c.Decrypt(encPrefix + "AAAA")
	assert.True(t, errors.Is(err, ErrCipher), "short payload")

	other, err := NewFieldCipher(bytes.Repeat([]byte{9}, 32))
	require.NoError(t, err)
	enc, err := other.Encrypt("Jane")
	require.NoError(t, err)
	_, err = c.Decrypt(enc)
	assert.True(t, errors.Is(err, ErrCipher), "wrong key must fail authentication")

	assert.Equal(t, enc, c.DecryptOrRaw(enc))
}

func TestNewFieldCipher_BadKey(t *testing.T) {
	_, err := NewFieldCipher([]byte("short"))
	assert.True(t, errors.Is(err, ErrCipher))
}

func TestNewFieldCipherFromSecret_Verifier(t *testing.T) {
	c1, v1, err := NewFieldCipherFromSecret("secret", "salt")
	require.NoError(t, err)
	_, v2, err := NewFieldCipherFromSecret("secret", "salt")
	require.NoError(t, err)
	_, v3, err := NewFieldCipherFromSecret("other", "salt")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.NotEqual(t, v1, v3)

	enc, err := c1.Encrypt("Janet")
	require.NoError(t, err)
	c2, _, err := NewFieldCipherFromSecret("secret", "salt")
	require.NoError(t, err)
	dec, err := c2.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "Janet", dec)
}

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(16)
	require.NoError(t, err)
	b, err := RandomHex(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
	_, err = hex.DecodeString(a)
	assert.NoError(t, err)
}

func TestWipe(t *testing.T) {
	b := []byte("secret")
	Wipe(b)
	assert.Equal(t, make([]byte, 6), b)
	Wipe(nil)
}
