// Package crypto provides at-rest encryption for the upstream session cookie.
// The cookie is a long-lived browser credential, so storing it in plaintext
// config files is off the table for shared deployments.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// pbkdf2Iterations is the OWASP-recommended minimum for HMAC-SHA256.
	pbkdf2Iterations = 480_000
	// saltLen is the random salt length in bytes.
	saltLen = 16
	// aesKeyLen is the derived AES-256 key length.
	aesKeyLen = 32
	// currentVersion is the encrypted-cookie JSON schema version.
	currentVersion = 1
)

// encryptedCookieJSON is the on-disk format for an encrypted session cookie.
type encryptedCookieJSON struct {
	Version    int    `json:"version"`
	Salt       string `json:"salt"`       // base64 standard encoding
	Nonce      string `json:"nonce"`      // base64 standard encoding
	Ciphertext string `json:"ciphertext"` // base64 standard encoding
}

// CookieConfig carries the information LoadCookie needs to resolve a session
// cookie. Populate the fields from environment variables or a config file.
type CookieConfig struct {
	// RawCookie is the plaintext Cookie header value. If non-empty,
	// LoadCookie returns it directly.
	RawCookie string

	// EncryptedCookiePath is the path to a JSON file produced by
	// EncryptCookie.
	EncryptedCookiePath string

	// CookiePassword is the password used to decrypt the file at
	// EncryptedCookiePath.
	CookiePassword string
}

// EncryptCookie encrypts a session cookie with a password using
// PBKDF2-HMAC-SHA256 key derivation and AES-256-GCM authenticated encryption.
// It returns the JSON blob suitable for writing to disk.
func EncryptCookie(cookie, password string) ([]byte, error) {
	if password == "" {
		return nil, errors.New("crypto: password must not be empty")
	}
	if cookie == "" {
		return nil, errors.New("crypto: cookie must not be empty")
	}

	// Generate random salt and derive AES key.
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("crypto: generating salt: %w", err)
	}

	derivedKey := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, aesKeyLen, sha256.New)

	// AES-256-GCM encrypt.
	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: creating GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("crypto: generating nonce: %w", err)
	}

	ciphertext := gcm.Seal(nil, nonce, []byte(cookie), nil)

	out := encryptedCookieJSON{
		Version:    currentVersion,
		Salt:       base64.StdEncoding.EncodeToString(salt),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}

	return json.MarshalIndent(out, "", "  ")
}

// DecryptCookie decrypts a JSON blob produced by EncryptCookie, returning the
// plaintext cookie value.
func DecryptCookie(encryptedJSON []byte, password string) (string, error) {
	if password == "" {
		return "", errors.New("crypto: password must not be empty")
	}

	var stored encryptedCookieJSON
	if err := json.Unmarshal(encryptedJSON, &stored); err != nil {
		return "", fmt.Errorf("crypto: parsing encrypted cookie JSON: %w", err)
	}
	if stored.Version != currentVersion {
		return "", fmt.Errorf("crypto: unsupported version %d", stored.Version)
	}

	salt, err := base64.StdEncoding.DecodeString(stored.Salt)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding salt: %w", err)
	}
	nonce, err := base64.StdEncoding.DecodeString(stored.Nonce)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding nonce: %w", err)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(stored.Ciphertext)
	if err != nil {
		return "", fmt.Errorf("crypto: decoding ciphertext: %w", err)
	}

	derivedKey := pbkdf2.Key([]byte(password), salt, pbkdf2Iterations, aesKeyLen, sha256.New)

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return "", fmt.Errorf("crypto: creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("crypto: creating GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("crypto: decryption failed (wrong password?): %w", err)
	}

	return string(plaintext), nil
}

// LoadCookie resolves a session cookie from the provided configuration.
//
// Resolution order:
//  1. If RawCookie is set, return it.
//  2. If EncryptedCookiePath is set, read the file and decrypt with
//     CookiePassword.
//  3. Otherwise, return an empty cookie; the public endpoints work without
//     one.
func LoadCookie(cfg CookieConfig) (string, error) {
	if cfg.RawCookie != "" {
		return cfg.RawCookie, nil
	}

	if cfg.EncryptedCookiePath != "" {
		data, err := os.ReadFile(cfg.EncryptedCookiePath)
		if err != nil {
			return "", fmt.Errorf("crypto: reading encrypted cookie file: %w", err)
		}
		return DecryptCookie(data, cfg.CookiePassword)
	}

	return "", nil
}
