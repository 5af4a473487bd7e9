// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction

import "fmt"

// ErrorKind identifies a kind of error reported by this package. It
// satisfies the error interface so callers that only care about the class
// of failure can compare against it directly with errors.Is.
type ErrorKind string

// Error satisfies the error interface.
func (e ErrorKind) Error() string {
	return string(e)
}

// These are the kinds of errors the transaction package can produce.
const (
	// ErrUnknownTxType indicates a tx_type tag this package does not know
	// how to dispatch.
	ErrUnknownTxType = ErrorKind("transaction: unknown tx type")

	// ErrMissingSignature indicates a transaction presented for
	// verification carries no signature or public key.
	ErrMissingSignature = ErrorKind("transaction: missing signature or public key")

	// ErrSenderMismatch indicates the address recomputed from the public
	// key does not equal the claimed sender.
	ErrSenderMismatch = ErrorKind("transaction: sender does not match public key")

	// ErrBadSignature indicates ECDSA verification failed.
	ErrBadSignature = ErrorKind("transaction: signature does not verify")

	// ErrInvalidAmount indicates a transfer amount outside (0, MAX].
	ErrInvalidAmount = ErrorKind("transaction: invalid amount")

	// ErrInvalidFee indicates a fee that does not equal the protocol fee.
	ErrInvalidFee = ErrorKind("transaction: invalid fee")

	// ErrSelfTransfer indicates sender == recipient on a transfer.
	ErrSelfTransfer = ErrorKind("transaction: sender equals recipient")

	// ErrInsufficientBalance indicates the sender cannot cover amount+fee.
	ErrInsufficientBalance = ErrorKind("transaction: insufficient balance")

	// ErrBadNonce indicates the transaction's nonce does not equal the
	// expected next nonce for its sender.
	ErrBadNonce = ErrorKind("transaction: unexpected nonce")

	// ErrInvalidPublicKey indicates a malformed or wrong-length public key.
	ErrInvalidPublicKey = ErrorKind("transaction: invalid public key")

	// ErrInvalidDeviceID indicates a device_id that is neither a 64-hex
	// digest nor a legacy tmpl+44hex address.
	ErrInvalidDeviceID = ErrorKind("transaction: invalid device id")

	// ErrMissingFields indicates a required variant-specific field
	// (epoch_number, timeout_vote_data, timeout_cert_data, ...) is absent.
	ErrMissingFields = ErrorKind("transaction: missing required fields")

	// ErrNegativeField indicates a height/round/epoch field is negative.
	ErrNegativeField = ErrorKind("transaction: negative field")

	// ErrIdentityMismatch indicates a voter/issuer field does not match
	// the transaction's sender.
	ErrIdentityMismatch = ErrorKind("transaction: voter or issuer does not match sender")
)

// Error wraps an ErrorKind with a free-form description for
// diagnostics without ever propagating past the caller that detects it —
// per the node's error taxonomy, validation errors are local.
type Error struct {
	Kind ErrorKind
	Desc string
}

// Error satisfies the error interface.
func (e Error) Error() string {
	if e.Desc == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Desc)
}

// Unwrap lets errors.Is(err, ErrBadNonce) work against an Error value.
func (e Error) Unwrap() error {
	return e.Kind
}

func txError(kind ErrorKind, desc string) error {
	return Error{Kind: kind, Desc: desc}
}
