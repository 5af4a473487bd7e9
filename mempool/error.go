// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

// ErrorKind identifies a kind of error reported by this package.
type ErrorKind string

// Error satisfies the error interface.
func (e ErrorKind) Error() string {
	return string(e)
}

// Kinds of errors this package can produce.
const (
	// ErrDisallowedType indicates a transaction type other than transfer
	// or validator_registration was presented for admission.
	ErrDisallowedType = ErrorKind("mempool: transaction type not allowed in mempool")

	// ErrDuplicateHash indicates a transaction with the same hash is
	// already admitted.
	ErrDuplicateHash = ErrorKind("mempool: duplicate transaction hash")

	// ErrMempoolFull indicates the pool is already at max_total_tx.
	ErrMempoolFull = ErrorKind("mempool: mempool is full")

	// ErrSenderQuotaExceeded indicates the sender already has
	// max_tx_per_address transactions pending.
	ErrSenderQuotaExceeded = ErrorKind("mempool: sender pending transaction quota exceeded")
)

// Error wraps an ErrorKind for diagnostics.
type Error struct {
	Kind ErrorKind
	Desc string
}

// Error satisfies the error interface.
func (e Error) Error() string {
	if e.Desc == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Desc
}

// Unwrap lets errors.Is(err, ErrMempoolFull) work against an Error value.
func (e Error) Unwrap() error {
	return e.Kind
}

func poolError(kind ErrorKind, desc string) error {
	return Error{Kind: kind, Desc: desc}
}
