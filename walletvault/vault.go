// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package walletvault implements at-rest encryption of a wallet's
// mnemonic phrase and PIN-gated unlock, following the two-stage key
// derivation chain used by the reference wallet: Argon2id stretches the
// user's password into an intermediate key, which is then run through
// PBKDF2-HMAC-SHA512 to produce the symmetric key that seals the
// mnemonic with an AEAD cipher.
package walletvault

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strconv"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/pbkdf2"

	"github.com/timpalnet/timpal-node/hdkeychain"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32

	pbkdf2Rounds = 210_000
	pbkdf2KeyLen = 32

	saltLen = 16
	minPinDigits = 6
)

// Vault holds an encrypted mnemonic phrase and an optional PIN digest.
// None of its exported fields carry plaintext; Unlock is the only path
// back to the mnemonic, and it always requires the password.
type Vault struct {
	Salt           []byte
	Nonce          []byte
	Ciphertext     []byte
	PinDigest      []byte
	PinSet         bool
	DerivationPath string
}

// NewVault encrypts phrase under password, recording derivationPath
// purely for bookkeeping (the path is stored alongside the ciphertext,
// never derived here — callers derive keys from the unlocked phrase via
// hdkeychain).
func NewVault(phrase, password, derivationPath string) (*Vault, error) {
	if !hdkeychain.ValidateMnemonic(phrase) {
		return nil, vaultError(ErrInvalidPhrase, "")
	}

	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, vaultError(ErrCrypto, err.Error())
	}

	key := deriveKey(password, salt)

	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, vaultError(ErrCrypto, err.Error())
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, vaultError(ErrCrypto, err.Error())
	}

	ciphertext := aead.Seal(nil, nonce, []byte(phrase), nil)

	return &Vault{
		Salt:           salt,
		Nonce:          nonce,
		Ciphertext:     ciphertext,
		DerivationPath: derivationPath,
	}, nil
}

// deriveKey runs the Argon2id -> PBKDF2-HMAC-SHA512 chain to turn a
// password into a symmetric AEAD key. Argon2id's output is hex-encoded
// before being fed to PBKDF2 as its password argument, matching the
// reference wallet's "derive a Fernet-compatible key from the Argon2id
// password hash via PBKDF2" sequencing.
func deriveKey(password string, salt []byte) []byte {
	intermediate := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	intermediateHex := hex.EncodeToString(intermediate)
	return pbkdf2.Key([]byte(intermediateHex), salt, pbkdf2Rounds, pbkdf2KeyLen, sha512.New)
}

// Unlock decrypts and returns the mnemonic phrase, failing with
// ErrWrongPassword if password does not match.
func (v *Vault) Unlock(password string) (string, error) {
	if len(v.Salt) == 0 || len(v.Nonce) == 0 || len(v.Ciphertext) == 0 {
		return "", vaultError(ErrCorrupted, "")
	}

	key := deriveKey(password, v.Salt)
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return "", vaultError(ErrCrypto, err.Error())
	}
	if len(v.Nonce) != aead.NonceSize() {
		return "", vaultError(ErrCorrupted, "nonce length")
	}

	plaintext, err := aead.Open(nil, v.Nonce, v.Ciphertext, nil)
	if err != nil {
		return "", vaultError(ErrWrongPassword, "")
	}
	return string(plaintext), nil
}

// SetPIN stores a SHA-256 digest of pin, replacing any prior PIN. pin
// must be at least minPinDigits characters; it is not otherwise
// constrained to be numeric, since some deployments want an alphanumeric
// quick-unlock code.
func (v *Vault) SetPIN(pin string) error {
	if len(pin) < minPinDigits {
		return vaultError(ErrInvalidPin, strconv.Itoa(minPinDigits)+" minimum")
	}
	digest := sha256.Sum256([]byte(pin))
	v.PinDigest = digest[:]
	v.PinSet = true
	return nil
}

// ValidatePIN reports whether pin matches the vault's stored digest. It
// uses a constant-time comparison so unlock attempts cannot be timed to
// leak the digest byte by byte.
func (v *Vault) ValidatePIN(pin string) bool {
	if !v.PinSet {
		return false
	}
	digest := sha256.Sum256([]byte(pin))
	return subtle.ConstantTimeCompare(digest[:], v.PinDigest) == 1
}

// ImportLegacy returns the bookkeeping derivation path used for a wallet
// imported from a pre-HD-wallet client that only ever had a single
// keypair at a given account index, rather than a full BIP0044 chain.
func ImportLegacy(account uint32) string {
	return "legacy/imported/" + strconv.FormatUint(uint64(account), 10)
}
