// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package p2pauth implements mandatory P2P message authentication and
// replay protection: every inbound Envelope must carry a signature,
// public key, timestamp, and nonce, verified in a fixed order, with a
// per-peer failure counter that escalates to a permanent ban. The peer
// table is a single-writer structure, exposed only through the
// Authenticator actor, matching the ledger and mempool's "owned by one
// task, reached only via queue operations" shape.
package p2pauth

import (
	"encoding/hex"
	"fmt"

	"github.com/timpalnet/timpal-node/crypto"
)

// MaxMessageAge and MaxTimeDrift bound how far a message's timestamp may
// fall from now before it is rejected outright; both extremes are wide on
// purpose; the nonce check is what actually defeats replay.
const (
	MaxMessageAge        = 86400 // seconds; message older than this is rejected
	MaxTimeDrift         = 86400 // seconds; message this far in the future is rejected
	ClockDriftWarnThresh = 60    // seconds; beyond this, log a warning but accept
)

// VerifyFunc verifies sig over msgHash under pubKeyHex. Authenticator uses
// crypto.Verify by default; a transport layer may inject a different
// verifier (e.g. one that also checks a certificate chain) without this
// package depending on that transport.
type VerifyFunc func(pubKeyHex string, msgHash, sig []byte) bool

// Logger is the minimal surface Authenticator needs to report clock drift
// and ban events; *slog.Logger (via the decred/slog adapter used
// elsewhere in this module) satisfies it.
type Logger interface {
	Warnf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Warnf(string, ...interface{}) {}

// Authenticator is the single-writer owner of the peer table.
type Authenticator struct {
	reqs   chan func(*peerTable)
	verify VerifyFunc
	log    Logger
	now    func() float64
}

// Option configures an Authenticator at construction time.
type Option func(*Authenticator)

// WithVerifyFunc overrides the signature verifier.
func WithVerifyFunc(v VerifyFunc) Option {
	return func(a *Authenticator) { a.verify = v }
}

// WithLogger overrides the clock-drift/ban logger.
func WithLogger(l Logger) Option {
	return func(a *Authenticator) { a.log = l }
}

// WithClock sets the Authenticator's clock function. Validate does not
// read it: the time a message is checked against is Validate's own now
// argument.
func WithClock(now func() float64) Option {
	return func(a *Authenticator) { a.now = now }
}

// New starts an Authenticator actor goroutine and returns a handle to it.
// Close must be called to stop the goroutine once it is no longer needed.
func New(opts ...Option) *Authenticator {
	a := &Authenticator{
		reqs:   make(chan func(*peerTable), 64),
		verify: defaultVerify,
		log:    noopLogger{},
	}
	for _, opt := range opts {
		opt(a)
	}
	go a.run()
	return a
}

func defaultVerify(pubKeyHex string, msgHash, sig []byte) bool {
	pub, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return false
	}
	return crypto.Verify(pub, msgHash, sig)
}

func (a *Authenticator) run() {
	t := newPeerTable()
	for req := range a.reqs {
		req(t)
	}
}

// Close stops the actor goroutine.
func (a *Authenticator) Close() {
	close(a.reqs)
}

// Validate runs the full authentication sequence for env from peerID at
// wall-clock time now (unix seconds). The first failure is fatal for the
// message, per the validation sequence's fixed order: ban check, required
// fields, signature, timestamp plausibility, nonce replay.
func (a *Authenticator) Validate(env *Envelope, peerID string, now float64) error {
	result := make(chan error, 1)
	a.reqs <- func(t *peerTable) { result <- a.validate(t, env, peerID, now) }
	return <-result
}

func (a *Authenticator) validate(t *peerTable, env *Envelope, peerID string, now float64) error {
	p := t.record(peerID)

	if p.banned {
		return authError(ErrPeerBanned, peerID, "")
	}
	if !env.hasAuthFields() {
		a.recordFailure(p, peerID)
		return authError(ErrMissingAuthFields, peerID, "")
	}

	canonical, err := env.canonicalWithoutSignature()
	if err != nil {
		a.recordFailure(p, peerID)
		return authError(ErrBadSignature, peerID, err.Error())
	}
	digest := crypto.SHA256(canonical)
	sigBytes, err := hex.DecodeString(env.Signature)
	if err != nil || !a.verify(env.PublicKey, digest[:], sigBytes) {
		a.recordFailure(p, peerID)
		return authError(ErrBadSignature, peerID, "")
	}

	age := now - env.Timestamp
	if age > ClockDriftWarnThresh || age < -ClockDriftWarnThresh {
		a.log.Warnf("p2pauth: peer %s clock drift %.0fs", peerID, age)
	}
	if age < -MaxTimeDrift || age > MaxMessageAge {
		a.recordFailure(p, peerID)
		return authError(ErrStaleTimestamp, peerID, fmt.Sprintf("age=%.0fs", age))
	}

	if p.seenNonce(env.Nonce) {
		a.recordFailure(p, peerID)
		return authError(ErrDuplicateNonce, peerID, env.Nonce)
	}

	p.recordNonce(env.Nonce)
	p.failures = 0
	if p.publicKey == "" {
		p.publicKey = env.PublicKey
	} else if p.publicKey != env.PublicKey {
		a.log.Warnf("p2pauth: peer %s public key changed, keeping original", peerID)
	}
	return nil
}

func (a *Authenticator) recordFailure(p *peerRecord, peerID string) {
	p.failures++
	if p.failures >= MaxAuthFailures {
		p.banned = true
		a.log.Warnf("p2pauth: peer %s banned after %d authentication failures", peerID, p.failures)
	}
}

// IsTrusted reports whether peerID is not banned.
func (a *Authenticator) IsTrusted(peerID string) bool {
	result := make(chan bool, 1)
	a.reqs <- func(t *peerTable) {
		p, ok := t.peers[peerID]
		result <- !ok || !p.banned
	}
	return <-result
}

// PublicKey returns the recorded public key for peerID, if any.
func (a *Authenticator) PublicKey(peerID string) (string, bool) {
	type resultT struct {
		key string
		ok  bool
	}
	result := make(chan resultT, 1)
	a.reqs <- func(t *peerTable) {
		p, ok := t.peers[peerID]
		if !ok || p.publicKey == "" {
			result <- resultT{"", false}
			return
		}
		result <- resultT{p.publicKey, true}
	}
	r := <-result
	return r.key, r.ok
}

// FailureCount returns peerID's current authentication failure count.
func (a *Authenticator) FailureCount(peerID string) int {
	result := make(chan int, 1)
	a.reqs <- func(t *peerTable) {
		p, ok := t.peers[peerID]
		if !ok {
			result <- 0
			return
		}
		result <- p.failures
	}
	return <-result
}
