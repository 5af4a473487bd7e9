// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2pauth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/timpalnet/timpal-node/crypto"
)

// Stamp fills in env's Timestamp and Nonce for an outbound message:
// timestamp = now, nonce = SHA-256(type || now || fresh-unique-value)
// truncated to 16 hex characters. The fresh-unique-value is drawn from
// crypto/rand rather than a process-local object identity, since Go gives
// no equivalent of Python's id() and a random value is a stronger
// uniqueness guarantee across processes and restarts anyway.
func Stamp(env *Envelope, now float64) error {
	env.Timestamp = now
	var unique [16]byte
	if _, err := rand.Read(unique[:]); err != nil {
		return err
	}
	preimage := fmt.Sprintf("%s%f%s", env.Type, now, hex.EncodeToString(unique[:]))
	digest := crypto.SHA256([]byte(preimage))
	env.Nonce = hex.EncodeToString(digest[:])[:16]
	return nil
}
