// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto_test

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/timpalnet/timpal-node/crypto"
)

func randomKeyPair(t *testing.T) ([]byte, []byte) {
	t.Helper()
	var priv [crypto.PrivateKeyLen]byte
	for {
		if _, err := rand.Read(priv[:]); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		pub, err := crypto.PrivateKeyToPublic(priv[:])
		if err == nil {
			return priv[:], pub[:]
		}
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	priv, pub := randomKeyPair(t)
	msgHash := crypto.SHA256([]byte("hello timpal"))

	sig, err := crypto.Sign(priv, msgHash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if !crypto.Verify(pub, msgHash[:], sig) {
		t.Fatal("Verify rejected a signature produced by Sign over the same key and message")
	}
}

func TestVerifyRejectsMutatedMessage(t *testing.T) {
	priv, pub := randomKeyPair(t)
	msgHash := crypto.SHA256([]byte("hello timpal"))

	sig, err := crypto.Sign(priv, msgHash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	mutated := msgHash
	mutated[0] ^= 0x01
	if crypto.Verify(pub, mutated[:], sig) {
		t.Fatal("Verify accepted a signature over a single-bit-mutated message")
	}
}

func TestVerifyRejectsMutatedSignature(t *testing.T) {
	priv, pub := randomKeyPair(t)
	msgHash := crypto.SHA256([]byte("hello timpal"))

	sig, err := crypto.Sign(priv, msgHash[:])
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	mutated := make([]byte, len(sig))
	copy(mutated, sig)
	mutated[len(mutated)-1] ^= 0x01
	if crypto.Verify(pub, msgHash[:], mutated) {
		t.Fatal("Verify accepted a mutated signature")
	}
}

func TestAddressFromPublicKeyDeterministic(t *testing.T) {
	_, pub := randomKeyPair(t)

	addr1, err := crypto.AddressFromPublicKey(pub)
	if err != nil {
		t.Fatalf("AddressFromPublicKey: %v", err)
	}
	addr2, err := crypto.AddressFromPublicKey(pub)
	if err != nil {
		t.Fatalf("AddressFromPublicKey: %v", err)
	}
	if addr1 != addr2 {
		t.Fatalf("address derivation is not deterministic: %q != %q", addr1, addr2)
	}
	if !crypto.IsValidAddress(addr1) {
		t.Fatalf("derived address %q failed shape validation", addr1)
	}
	if len(addr1) != 48 {
		t.Fatalf("address length = %d, want 48", len(addr1))
	}
}

func TestIsValidAddressShape(t *testing.T) {
	_, pub := randomKeyPair(t)
	addr, _ := crypto.AddressFromPublicKey(pub)

	if crypto.IsValidAddress(addr[:len(addr)-1]) {
		t.Fatal("short address accepted")
	}
	if crypto.IsValidAddress("xxxx" + addr[4:]) {
		t.Fatal("address with wrong prefix accepted")
	}
	if crypto.IsValidAddress(addr[:4] + "zz" + addr[6:]) {
		t.Fatal("address with non-hex suffix accepted")
	}
}

func TestDoubleSHA256(t *testing.T) {
	data := []byte("timpal")
	got := crypto.DoubleSHA256(data)
	first := crypto.SHA256(data)
	want := crypto.SHA256(first[:])
	if !bytes.Equal(got[:], want[:]) {
		t.Fatal("DoubleSHA256 does not equal SHA256(SHA256(x))")
	}
}
