// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2pauth

import "fmt"

// ErrorKind identifies a kind of authentication failure.
type ErrorKind string

// Error satisfies the error interface.
func (e ErrorKind) Error() string {
	return string(e)
}

// These are the kinds of errors the p2pauth package can produce.
const (
	// ErrPeerBanned indicates the peer has already crossed the failure
	// threshold and is rejected before any other check runs.
	ErrPeerBanned = ErrorKind("p2pauth: peer is banned")

	// ErrMissingAuthFields indicates the envelope is missing one or more
	// of signature, public_key, timestamp, or nonce.
	ErrMissingAuthFields = ErrorKind("p2pauth: message missing required auth fields")

	// ErrBadSignature indicates the envelope's signature does not verify
	// over its canonical form with signature removed.
	ErrBadSignature = ErrorKind("p2pauth: signature does not verify")

	// ErrStaleTimestamp indicates the envelope's timestamp falls outside
	// the extreme plausibility bound.
	ErrStaleTimestamp = ErrorKind("p2pauth: timestamp outside plausibility bound")

	// ErrDuplicateNonce indicates the nonce has already been seen from
	// this peer within the replay window.
	ErrDuplicateNonce = ErrorKind("p2pauth: duplicate nonce")
)

// Error wraps an ErrorKind with the offending peer id for diagnostics.
type Error struct {
	Kind   ErrorKind
	PeerID string
	Desc   string
}

// Error satisfies the error interface.
func (e Error) Error() string {
	if e.Desc == "" {
		return fmt.Sprintf("%s (peer=%s)", e.Kind, e.PeerID)
	}
	return fmt.Sprintf("%s (peer=%s): %s", e.Kind, e.PeerID, e.Desc)
}

// Unwrap lets errors.Is(err, ErrDuplicateNonce) work against an Error
// value.
func (e Error) Unwrap() error {
	return e.Kind
}

func authError(kind ErrorKind, peerID, desc string) error {
	return Error{Kind: kind, PeerID: peerID, Desc: desc}
}
