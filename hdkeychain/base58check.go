// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hdkeychain

import (
	"crypto/sha256"
	"errors"

	"github.com/decred/base58"
)

// base58CheckEncode appends a 4-byte double-SHA256 checksum to payload and
// base58-encodes the result.
func base58CheckEncode(payload []byte) string {
	b := make([]byte, 0, len(payload)+4)
	b = append(b, payload...)
	cksum := checksum(payload)
	b = append(b, cksum[:]...)
	return base58.Encode(b)
}

// base58CheckDecode decodes a base58-encoded string with a trailing 4-byte
// checksum and returns the payload, verifying the checksum matches.
func base58CheckDecode(encoded string) ([]byte, error) {
	decoded := base58.Decode(encoded)
	if len(decoded) < 5 {
		return nil, errors.New("hdkeychain: invalid base58check string")
	}
	payload := decoded[:len(decoded)-4]
	checksumBytes := decoded[len(decoded)-4:]
	expected := checksum(payload)
	for i := range expected {
		if checksumBytes[i] != expected[i] {
			return nil, errors.New("hdkeychain: checksum mismatch")
		}
	}
	return payload, nil
}

func checksum(payload []byte) [4]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	var out [4]byte
	copy(out[:], second[:4])
	return out
}
