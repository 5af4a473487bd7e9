// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2pauth_test

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/timpalnet/timpal-node/crypto"
	"github.com/timpalnet/timpal-node/p2pauth"
)

func newKeyPair(t *testing.T) ([]byte, string) {
	t.Helper()
	var priv [crypto.PrivateKeyLen]byte
	for {
		if _, err := rand.Read(priv[:]); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		pub, err := crypto.PrivateKeyToPublic(priv[:])
		if err != nil {
			continue
		}
		return priv[:], hex.EncodeToString(pub[:])
	}
}

func signedEnvelope(t *testing.T, priv []byte, pubHex string, typ string, ts float64, nonce string) *p2pauth.Envelope {
	t.Helper()
	env := &p2pauth.Envelope{Type: typ, Timestamp: ts, Nonce: nonce, PublicKey: pubHex}
	if err := p2pauth.SignForTest(env, priv); err != nil {
		t.Fatalf("SignForTest: %v", err)
	}
	return env
}

func TestValidateRoundTrip(t *testing.T) {
	priv, pub := newKeyPair(t)
	a := p2pauth.New()
	defer a.Close()

	env := signedEnvelope(t, priv, pub, "ping", 1000.0, "nonce-one")
	if err := a.Validate(env, "peerA", 1000.0); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	key, ok := a.PublicKey("peerA")
	if !ok || key != pub {
		t.Fatalf("PublicKey(peerA) = (%q, %v), want (%q, true)", key, ok, pub)
	}
}

func TestValidateRejectsMissingFields(t *testing.T) {
	a := p2pauth.New()
	defer a.Close()

	env := &p2pauth.Envelope{Type: "ping", Timestamp: 1000.0}
	err := a.Validate(env, "peerA", 1000.0)
	var aerr p2pauth.Error
	if !errors.As(err, &aerr) || aerr.Kind != p2pauth.ErrMissingAuthFields {
		t.Fatalf("Validate(missing fields) = %v, want ErrMissingAuthFields", err)
	}
}

func TestValidateRejectsBadSignature(t *testing.T) {
	priv, pub := newKeyPair(t)
	a := p2pauth.New()
	defer a.Close()

	env := signedEnvelope(t, priv, pub, "ping", 1000.0, "nonce-one")
	env.Type = "tampered" // invalidates the signed preimage
	err := a.Validate(env, "peerA", 1000.0)
	var aerr p2pauth.Error
	if !errors.As(err, &aerr) || aerr.Kind != p2pauth.ErrBadSignature {
		t.Fatalf("Validate(tampered) = %v, want ErrBadSignature", err)
	}
}

// TestTimestampBoundary reproduces "a message with timestamp exactly
// now-86400 is accepted; now-86401 is rejected".
func TestTimestampBoundary(t *testing.T) {
	priv, pub := newKeyPair(t)
	a := p2pauth.New()
	defer a.Close()

	const now = 1_000_000.0
	accepted := signedEnvelope(t, priv, pub, "ping", now-86400, "nonce-a")
	if err := a.Validate(accepted, "peerA", now); err != nil {
		t.Fatalf("Validate(age=86400) = %v, want accepted", err)
	}

	priv2, pub2 := newKeyPair(t)
	rejected := signedEnvelope(t, priv2, pub2, "ping", now-86401, "nonce-b")
	err := a.Validate(rejected, "peerB", now)
	var aerr p2pauth.Error
	if !errors.As(err, &aerr) || aerr.Kind != p2pauth.ErrStaleTimestamp {
		t.Fatalf("Validate(age=86401) = %v, want ErrStaleTimestamp", err)
	}
}

// TestReplayRejected reproduces the literal scenario: peer P sends
// message M with nonce N; validation passes. The same nonce from P is
// rejected as a duplicate, and P's failure counter increments.
func TestReplayRejected(t *testing.T) {
	priv, pub := newKeyPair(t)
	a := p2pauth.New()
	defer a.Close()

	first := signedEnvelope(t, priv, pub, "ping", 1000.0, "nonce-replay")
	if err := a.Validate(first, "peerA", 1000.0); err != nil {
		t.Fatalf("first Validate: %v", err)
	}

	replay := signedEnvelope(t, priv, pub, "ping", 1001.0, "nonce-replay")
	err := a.Validate(replay, "peerA", 1001.0)
	var aerr p2pauth.Error
	if !errors.As(err, &aerr) || aerr.Kind != p2pauth.ErrDuplicateNonce {
		t.Fatalf("Validate(replay) = %v, want ErrDuplicateNonce", err)
	}
	if got := a.FailureCount("peerA"); got != 1 {
		t.Fatalf("FailureCount(peerA) = %d, want 1", got)
	}
}

// TestBanAfterTenFailures reproduces "a peer's 10th consecutive
// authentication failure crosses the ban threshold".
func TestBanAfterTenFailures(t *testing.T) {
	a := p2pauth.New()
	defer a.Close()

	for i := 0; i < 9; i++ {
		env := &p2pauth.Envelope{Type: "ping", Timestamp: 1000.0}
		if err := a.Validate(env, "peerA", 1000.0); err == nil {
			t.Fatalf("iteration %d: expected failure", i)
		}
		if !a.IsTrusted("peerA") {
			t.Fatalf("iteration %d: peer banned too early", i)
		}
	}
	tenth := &p2pauth.Envelope{Type: "ping", Timestamp: 1000.0}
	if err := a.Validate(tenth, "peerA", 1000.0); err == nil {
		t.Fatal("10th Validate: expected failure")
	}
	if a.IsTrusted("peerA") {
		t.Fatal("peer not banned after 10 failures")
	}

	priv, pub := newKeyPair(t)
	valid := signedEnvelope(t, priv, pub, "ping", 1000.0, "nonce-post-ban")
	err := a.Validate(valid, "peerA", 1000.0)
	var aerr p2pauth.Error
	if !errors.As(err, &aerr) || aerr.Kind != p2pauth.ErrPeerBanned {
		t.Fatalf("Validate(banned peer, otherwise-valid message) = %v, want ErrPeerBanned", err)
	}
}

// TestPeerKeyContinuity reproduces the literal scenario: peer P registers
// with pub=K1; a later, validly-signed message under pub=K2 is still
// accepted as a message, but the stored key for P remains K1.
func TestPeerKeyContinuity(t *testing.T) {
	priv1, pub1 := newKeyPair(t)
	priv2, pub2 := newKeyPair(t)
	a := p2pauth.New()
	defer a.Close()

	first := signedEnvelope(t, priv1, pub1, "ping", 1000.0, "nonce-k1")
	if err := a.Validate(first, "peerA", 1000.0); err != nil {
		t.Fatalf("first Validate: %v", err)
	}

	second := signedEnvelope(t, priv2, pub2, "ping", 1001.0, "nonce-k2")
	if err := a.Validate(second, "peerA", 1001.0); err != nil {
		t.Fatalf("second Validate (under K2): %v", err)
	}

	key, ok := a.PublicKey("peerA")
	if !ok || key != pub1 {
		t.Fatalf("PublicKey(peerA) = (%q, %v), want (%q, true) (original K1 retained)", key, ok, pub1)
	}
}

func TestStampProducesVerifiableNonce(t *testing.T) {
	env := &p2pauth.Envelope{Type: "ping"}
	if err := p2pauth.Stamp(env, 1234.0); err != nil {
		t.Fatalf("Stamp: %v", err)
	}
	if env.Timestamp != 1234.0 {
		t.Fatalf("Timestamp = %v, want 1234.0", env.Timestamp)
	}
	if len(env.Nonce) != 16 {
		t.Fatalf("Nonce length = %d, want 16", len(env.Nonce))
	}
}
