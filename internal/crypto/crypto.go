// Package crypto implements the credential-protection primitives: PBKDF2 key
// derivation from a master password, AES-256-GCM authenticated encryption, and
// the base64 nonce-prefixed wire format used for stored credential fields.
//
// The derivation salt is deterministic ("subcircle-<userID>-<version>") rather
// than random. This is a deliberate trade-off: no salt is persisted per record,
// so the same (password, userID) pair must always derive the same key for
// previously stored records to remain decryptable. Changing the salt scheme is
// a breaking change for every stored credential.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations is the PBKDF2 iteration count. Fixed; lowering or raising it
	// changes every derived key and orphans existing ciphertext.
	Iterations = 100000

	// KeyLength is the derived key length in bytes (AES-256).
	KeyLength = 32

	// NonceLength is the AES-GCM nonce length in bytes (96 bits).
	NonceLength = 12

	// saltPrefix and saltVersion bracket the user id to form the derivation
	// salt: "subcircle-<userID>-2024". Both are part of the stored-data
	// compatibility contract.
	saltPrefix  = "subcircle-"
	saltVersion = "-2024"
)

var (
	// ErrAuthentication indicates GCM tag verification failed: wrong master
	// password or tampered/corrupted ciphertext. The two causes are
	// intentionally indistinguishable.
	ErrAuthentication = errors.New("crypto: authentication failed")

	// ErrInvalidFormat indicates a stored field is not valid base64 or is too
	// short to contain a nonce. Raised before any decryption is attempted.
	ErrInvalidFormat = errors.New("crypto: invalid encrypted field format")
)

// Key is a derived symmetric key, usable only through Encrypt/Decrypt. The raw
// key bytes are wiped once the AEAD is constructed and are not exportable.
type Key struct {
	aead cipher.AEAD
}

// DeriveKey derives an AES-256 key from the master password and the owner's
// user id using PBKDF2-SHA256. The user id is not secret; it only scopes the
// salt per user. A wrong password or a mismatched user id yields a different
// key silently -- the mismatch surfaces as ErrAuthentication at decrypt time.
//
// Derivation is CPU-bound (six-figure iteration count); callers should treat
// it as a slow operation and derive at most once per save/decrypt batch.
func DeriveKey(masterPassword, userID string) (*Key, error) {
	salt := saltPrefix + userID + saltVersion
	raw := pbkdf2.Key([]byte(masterPassword), []byte(salt), Iterations, KeyLength, sha256.New)
	defer wipe(raw)

	block, err := aes.NewCipher(raw)
	if err != nil {
		return nil, fmt.Errorf("crypto: create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypto: create GCM: %w", err)
	}

	return &Key{aead: aead}, nil
}

// Encrypt encrypts plaintext with a fresh random 12-byte nonce. The returned
// ciphertext includes the GCM authentication tag.
func (k *Key) Encrypt(plaintext string) (nonce, ciphertext []byte, err error) {
	nonce = make([]byte, NonceLength)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("crypto: generate nonce: %w", err)
	}

	ciphertext = k.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return nonce, ciphertext, nil
}

// Decrypt verifies the authentication tag and returns the plaintext. Tag
// mismatch returns ErrAuthentication; partially decrypted output is never
// exposed.
func (k *Key) Decrypt(nonce, ciphertext []byte) (string, error) {
	if len(nonce) != NonceLength {
		return "", ErrInvalidFormat
	}

	plaintext, err := k.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrAuthentication
	}
	return string(plaintext), nil
}

// EncryptField encrypts a single credential field and returns it in the stored
// wire format: base64(nonce || ciphertext).
func (k *Key) EncryptField(plaintext string) (string, error) {
	nonce, ciphertext, err := k.Encrypt(plaintext)
	if err != nil {
		return "", err
	}
	return Pack(nonce, ciphertext), nil
}

// DecryptField unpacks and decrypts a single stored credential field.
func (k *Key) DecryptField(encoded string) (string, error) {
	nonce, ciphertext, err := Unpack(encoded)
	if err != nil {
		return "", err
	}
	return k.Decrypt(nonce, ciphertext)
}

// Pack serializes (nonce, ciphertext) as base64(nonce || ciphertext), the
// format stored in text columns and carried over JSON.
func Pack(nonce, ciphertext []byte) string {
	combined := make([]byte, 0, len(nonce)+len(ciphertext))
	combined = append(combined, nonce...)
	combined = append(combined, ciphertext...)
	return base64.StdEncoding.EncodeToString(combined)
}

// Unpack splits a stored field back into (nonce, ciphertext). Invalid base64
// or anything shorter than the nonce fails with ErrInvalidFormat, distinct
// from the ErrAuthentication the cipher raises later.
func Unpack(encoded string) (nonce, ciphertext []byte, err error) {
	combined, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, nil, ErrInvalidFormat
	}
	if len(combined) < NonceLength {
		return nil, nil, ErrInvalidFormat
	}
	return combined[:NonceLength], combined[NonceLength:], nil
}

// wipe zeros key material. runtime.KeepAlive prevents the compiler from
// eliding the writes.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
