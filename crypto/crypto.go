// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto provides the cryptographic primitives shared by every
// other component: SHA-256 hashing, secp256k1 ECDSA signing and
// verification with canonical low-S signatures, and address derivation
// from a public key.
//
// None of the functions here hold any package-level state — every
// primitive is a pure function of its arguments.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// AddressPrefix is prepended to every derived address.
const AddressPrefix = "tmpl"

// AddressHexLen is the number of hex characters taken from the double-SHA256
// digest of the public key to form an address.
const AddressHexLen = 44

// PrivateKeyLen is the byte length of a secp256k1 private scalar.
const PrivateKeyLen = 32

// PublicKeyLen is the byte length of an uncompressed secp256k1 public point
// (0x04 prefix is not stored; this is the raw 32||32 byte X||Y encoding used
// throughout the wire format and tested against 128 hex characters).
const PublicKeyLen = 64

var (
	// ErrInvalidPrivateKey is returned when a private key does not decode
	// to a valid secp256k1 scalar.
	ErrInvalidPrivateKey = errors.New("crypto: invalid private key")
	// ErrInvalidPublicKey is returned when a public key does not decode to
	// a valid secp256k1 point.
	ErrInvalidPublicKey = errors.New("crypto: invalid public key")
	// ErrInvalidSignature is returned when a signature does not parse.
	ErrInvalidSignature = errors.New("crypto: invalid signature")
)

// SHA256 returns the SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// DoubleSHA256 returns SHA-256(SHA-256(data)).
func DoubleSHA256(data []byte) [32]byte {
	first := sha256.Sum256(data)
	return sha256.Sum256(first[:])
}

// KeyPair is a secp256k1 signing keypair. The private scalar and the raw
// (non-compressed, prefix-stripped) public point are each stored as fixed
// length byte arrays so hex round-trips are lossless.
type KeyPair struct {
	Private [PrivateKeyLen]byte
	Public  [PublicKeyLen]byte
}

// PrivateKeyToPublic derives the uncompressed public point bytes (X||Y, no
// 0x04 prefix) for a 32-byte secp256k1 private scalar.
func PrivateKeyToPublic(priv []byte) ([PublicKeyLen]byte, error) {
	var out [PublicKeyLen]byte
	if len(priv) != PrivateKeyLen {
		return out, ErrInvalidPrivateKey
	}
	privKey := secp256k1.PrivKeyFromBytes(priv)
	if privKey == nil {
		return out, ErrInvalidPrivateKey
	}
	// SerializeUncompressed is 0x04 || X || Y with each coordinate padded
	// to 32 bytes.
	copy(out[:], privKey.PubKey().SerializeUncompressed()[1:])
	return out, nil
}

// Sign computes a deterministic, low-S canonical ECDSA signature over
// msgHash using the secp256k1 private scalar priv. The dcrec/secp256k1
// ecdsa package already returns low-S signatures by construction, which is
// what satisfies the "canonical low-S signatures" requirement without any
// extra normalization step here.
func Sign(priv []byte, msgHash []byte) ([]byte, error) {
	if len(priv) != PrivateKeyLen {
		return nil, ErrInvalidPrivateKey
	}
	privKey := secp256k1.PrivKeyFromBytes(priv)
	if privKey == nil {
		return nil, ErrInvalidPrivateKey
	}
	sig := ecdsa.Sign(privKey, msgHash)
	return sig.Serialize(), nil
}

// Verify reports whether sig is a valid ECDSA signature over msgHash under
// the secp256k1 public key encoded as pub (raw X||Y, 64 bytes).
func Verify(pub []byte, msgHash []byte, sig []byte) bool {
	pubKey, err := parsePublicKey(pub)
	if err != nil {
		return false
	}
	parsedSig, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return parsedSig.Verify(msgHash, pubKey)
}

func parsePublicKey(pub []byte) (*secp256k1.PublicKey, error) {
	if len(pub) != PublicKeyLen {
		return nil, ErrInvalidPublicKey
	}
	// secp256k1.ParsePubKey expects a compressed or uncompressed SEC1
	// encoding; reconstruct the uncompressed form with its 0x04 prefix.
	uncompressed := make([]byte, 1+PublicKeyLen)
	uncompressed[0] = 0x04
	copy(uncompressed[1:], pub)
	return secp256k1.ParsePubKey(uncompressed)
}

// AddressFromPublicKey derives the "tmpl"+hex44 address for a raw public key
// (64 bytes, X||Y). It is the sole address derivation rule for the whole
// node: transactions, validator registration, and peer identity continuity
// all recompute it the same way to cross-check a claimed sender.
func AddressFromPublicKey(pub []byte) (string, error) {
	if len(pub) != PublicKeyLen {
		return "", ErrInvalidPublicKey
	}
	digest := DoubleSHA256(pub)
	return AddressPrefix + hex.EncodeToString(digest[:])[:AddressHexLen], nil
}

// AddressFromPublicKeyHex is a convenience wrapper over
// AddressFromPublicKey for the common case of a 128-hex-character public
// key as carried on the wire.
func AddressFromPublicKeyHex(pubHex string) (string, error) {
	raw, err := hex.DecodeString(pubHex)
	if err != nil {
		return "", ErrInvalidPublicKey
	}
	return AddressFromPublicKey(raw)
}

// IsValidAddress reports whether addr has the shape "tmpl" + 44 hex
// characters (48 characters total).
func IsValidAddress(addr string) bool {
	const totalLen = len(AddressPrefix) + AddressHexLen
	if len(addr) != totalLen {
		return false
	}
	if addr[:len(AddressPrefix)] != AddressPrefix {
		return false
	}
	_, err := hex.DecodeString(addr[len(AddressPrefix):])
	return err == nil
}
