// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/jeranaias/tradedeck/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// EncryptedPrefix marks sealed values on disk.
	EncryptedPrefix = "ENC:"

	// NonceSize is the AES-GCM nonce length in bytes (96 bits).
	NonceSize = 12

	// KeySize is the AES-256 key length in bytes.
	KeySize = 32

	// SaltSize is the PBKDF2 salt length in bytes.
	SaltSize = 32

	// PBKDF2Iterations follows the OWASP 2023 recommendation for
	// PBKDF2-SHA-256.
	PBKDF2Iterations = 600000

	// saltFile holds the per-vault PBKDF2 salt inside the vault directory.
	saltFile = "vault.salt"

	// SecretAPIToken is the vault entry name for the backend API token.
	SecretAPIToken = "api_token"

	// SecretArmingTOTP is the vault entry name for the order-entry TOTP
	// secret.
	SecretArmingTOTP = "arming_totp"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotProvisioned indicates the vault directory has no salt file yet.
	ErrNotProvisioned = errors.New("vault not provisioned: run init first")

	// ErrAlreadyProvisioned indicates Init was called on a provisioned
	// vault. Re-provisioning would orphan every sealed secret.
	ErrAlreadyProvisioned = errors.New("vault already provisioned")

	// ErrVaultLocked indicates a seal or open was attempted before Unlock.
	ErrVaultLocked = errors.New("vault locked: unlock with passphrase first")

	// ErrInvalidCiphertext indicates a sealed value too short or malformed
	// to contain a nonce and tag.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")

	// ErrDecryptionFailed indicates a wrong passphrase or corrupted data.
	ErrDecryptionFailed = errors.New("decryption failed: wrong passphrase or corrupted data")

	// ErrSecretNotFound indicates no sealed file exists for the name.
	ErrSecretNotFound = errors.New("secret not found in vault")
)

// =============================================================================
// KEY MATERIAL
// =============================================================================

// ZeroBytes overwrites b so key material does not linger on the heap
// longer than needed.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// DeriveKey stretches a passphrase into an AES-256 key. Deterministic for
// a given passphrase and salt.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// GenerateSalt returns SaltSize cryptographically random bytes.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// =============================================================================
// VAULT
// =============================================================================

// Vault seals named secrets under a single directory. The salt lives in
// vault.salt; each secret is a 0600 file named <name>.enc holding an
// EncryptedPrefix value. Safe for concurrent use.
type Vault struct {
	mu   sync.RWMutex
	dir  string
	aead cipher.AEAD
}

// NewVault returns a locked vault rooted at dir. Call Init on first use,
// Unlock afterwards.
func NewVault(dir string) *Vault {
	return &Vault{dir: dir}
}

// Dir returns the vault directory.
func (v *Vault) Dir() string {
	return v.dir
}

func (v *Vault) saltPath() string {
	return filepath.Join(v.dir, saltFile)
}

func (v *Vault) secretPath(name string) string {
	return filepath.Join(v.dir, name+".enc")
}

// Provisioned reports whether the salt file exists.
func (v *Vault) Provisioned() bool {
	_, err := os.Stat(v.saltPath())
	return err == nil
}

// Unlocked reports whether the cipher is ready.
func (v *Vault) Unlocked() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.aead != nil
}

// Init provisions a fresh vault: generates a salt, persists it, and
// unlocks with the given passphrase. Fails if a salt already exists so a
// typo cannot silently orphan sealed secrets.
func (v *Vault) Init(passphrase string) error {
	if v.Provisioned() {
		return ErrAlreadyProvisioned
	}

	salt, err := GenerateSalt()
	if err != nil {
		return err
	}

	// SECURITY: 0700 directory and 0600 salt keep other local users out.
	if err := os.MkdirAll(v.dir, 0o700); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}
	if err := util.AtomicWriteFile(v.saltPath(), salt, 0o600); err != nil {
		return fmt.Errorf("write salt: %w", err)
	}

	return v.unlockWithSalt(passphrase, salt)
}

// Unlock derives the key from the stored salt and readies the cipher.
// A wrong passphrase is not detected here; it surfaces as
// ErrDecryptionFailed on the first open.
func (v *Vault) Unlock(passphrase string) error {
	salt, err := os.ReadFile(v.saltPath())
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotProvisioned
		}
		return fmt.Errorf("read salt: %w", err)
	}
	if len(salt) != SaltSize {
		return fmt.Errorf("salt file corrupted: %d bytes, want %d", len(salt), SaltSize)
	}
	return v.unlockWithSalt(passphrase, salt)
}

func (v *Vault) unlockWithSalt(passphrase string, salt []byte) error {
	key := DeriveKey(passphrase, salt)
	// SECURITY: the AEAD keeps its own key schedule; drop ours immediately.
	defer ZeroBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("create GCM: %w", err)
	}

	v.mu.Lock()
	v.aead = aead
	v.mu.Unlock()
	return nil
}

// Lock drops the cipher. Sealed files stay on disk.
func (v *Vault) Lock() {
	v.mu.Lock()
	v.aead = nil
	v.mu.Unlock()
}

// =============================================================================
// SEAL AND OPEN
// =============================================================================

// encrypt seals plaintext as nonce || ciphertext || tag.
func (v *Vault) encrypt(plaintext []byte) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.aead == nil {
		return nil, ErrVaultLocked
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return v.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt opens nonce || ciphertext || tag.
func (v *Vault) decrypt(sealed []byte) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.aead == nil {
		return nil, ErrVaultLocked
	}
	if len(sealed) < NonceSize {
		return nil, ErrInvalidCiphertext
	}

	nonce := sealed[:NonceSize]
	plaintext, err := v.aead.Open(nil, nonce, sealed[NonceSize:], nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// EncryptString seals a value and returns it with the EncryptedPrefix
// marker, base64-encoded.
func (v *Vault) EncryptString(plaintext string) (string, error) {
	sealed, err := v.encrypt([]byte(plaintext))
	if err != nil {
		return "", err
	}
	return EncryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}

// DecryptString opens a value carrying the EncryptedPrefix marker. Values
// without the marker pass through unchanged so plaintext tokens keep
// working until the user seals them.
func (v *Vault) DecryptString(value string) (string, error) {
	if !strings.HasPrefix(value, EncryptedPrefix) {
		return value, nil
	}

	encoded := strings.TrimPrefix(value, EncryptedPrefix)
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCiphertext, err)
	}

	plaintext, err := v.decrypt(sealed)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// IsEncrypted reports whether a value carries the EncryptedPrefix marker.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}

// =============================================================================
// NAMED SECRETS
// =============================================================================

// validSecretName keeps entry names inside the vault directory.
func validSecretName(name string) error {
	if name == "" {
		return errors.New("secret name required")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid secret name %q", name)
	}
	return nil
}

// Store seals value under name. Overwrites any previous entry.
func (v *Vault) Store(name, value string) error {
	if err := validSecretName(name); err != nil {
		return err
	}

	sealed, err := v.EncryptString(value)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(v.dir, 0o700); err != nil {
		return fmt.Errorf("create vault directory: %w", err)
	}
	if err := util.AtomicWriteFile(v.secretPath(name), []byte(sealed), 0o600); err != nil {
		return fmt.Errorf("write secret %s: %w", name, err)
	}
	return nil
}

// Load opens the secret stored under name.
func (v *Vault) Load(name string) (string, error) {
	if err := validSecretName(name); err != nil {
		return "", err
	}

	data, err := os.ReadFile(v.secretPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrSecretNotFound
		}
		return "", fmt.Errorf("read secret %s: %w", name, err)
	}

	return v.DecryptString(strings.TrimSpace(string(data)))
}

// Has reports whether a sealed entry exists under name.
func (v *Vault) Has(name string) bool {
	if validSecretName(name) != nil {
		return false
	}
	_, err := os.Stat(v.secretPath(name))
	return err == nil
}

// Delete removes the sealed entry under name. Missing entries are not an
// error.
func (v *Vault) Delete(name string) error {
	if err := validSecretName(name); err != nil {
		return err
	}
	if err := os.Remove(v.secretPath(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete secret %s: %w", name, err)
	}
	return nil
}
