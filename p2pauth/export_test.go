// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2pauth

import (
	"encoding/hex"

	"github.com/timpalnet/timpal-node/crypto"
)

// SignForTest signs env's canonical form (signature excluded) with priv
// and stores the result in env.Signature. It exists only for this
// package's external test files, which cannot reach canonicalWithoutSignature
// directly.
func SignForTest(env *Envelope, priv []byte) error {
	canonical, err := env.canonicalWithoutSignature()
	if err != nil {
		return err
	}
	digest := crypto.SHA256(canonical)
	sig, err := crypto.Sign(priv, digest[:])
	if err != nil {
		return err
	}
	env.Signature = hex.EncodeToString(sig)
	return nil
}
