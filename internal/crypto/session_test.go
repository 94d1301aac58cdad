package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptCookieRoundTrip(t *testing.T) {
	blob, err := EncryptCookie("cf_clearance=abc; sid=xyz", "hunter2")
	require.NoError(t, err)

	cookie, err := DecryptCookie(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "cf_clearance=abc; sid=xyz", cookie)
}

func TestDecryptCookieWrongPassword(t *testing.T) {
	blob, err := EncryptCookie("sid=xyz", "correct")
	require.NoError(t, err)

	_, err = DecryptCookie(blob, "wrong")
	assert.Error(t, err)
}

func TestEncryptCookieRequiresInputs(t *testing.T) {
	_, err := EncryptCookie("sid=xyz", "")
	assert.Error(t, err)
	_, err = EncryptCookie("", "pw")
	assert.Error(t, err)
}

func TestLoadCookieResolutionOrder(t *testing.T) {
	// raw cookie wins
	cookie, err := LoadCookie(CookieConfig{RawCookie: "sid=raw"})
	require.NoError(t, err)
	assert.Equal(t, "sid=raw", cookie)

	// encrypted file path
	blob, err := EncryptCookie("sid=enc", "pw")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "cookie.enc")
	require.NoError(t, os.WriteFile(path, blob, 0o600))

	cookie, err = LoadCookie(CookieConfig{EncryptedCookiePath: path, CookiePassword: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "sid=enc", cookie)

	// nothing configured: empty cookie, no error
	cookie, err = LoadCookie(CookieConfig{})
	require.NoError(t, err)
	assert.Empty(t, cookie)
}
