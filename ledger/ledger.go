// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger implements the canonical chain state: an account-based
// state machine applying blocks in strictly increasing height order,
// maintaining balances, nonces, the validator registry, finality
// checkpoints, and emission. Like the mempool, it is a single-writer
// structure: one goroutine owns the underlying state and every other
// caller reaches it only by sending a closure over a channel, never by
// touching a shared map directly.
package ledger

import "github.com/timpalnet/timpal-node/transaction"

// Ledger is the single-writer owner of the chain state.
type Ledger struct {
	reqs chan func(*state)
}

// New starts a Ledger actor goroutine and returns a handle to it. Close
// must be called to stop the goroutine once the ledger is no longer
// needed.
func New() *Ledger {
	l := &Ledger{reqs: make(chan func(*state), 64)}
	go l.run()
	return l
}

func (l *Ledger) run() {
	s := newState()
	for req := range l.reqs {
		req(s)
	}
}

// Close stops the actor goroutine. Calling any other method after Close
// blocks forever; callers must not use a Ledger after closing it.
func (l *Ledger) Close() {
	close(l.reqs)
}

// ApplyBlock validates and applies block, per the ordering and
// per-transaction-type rules described in the package doc. The block's
// Transactions are applied in the order given and, on success, its
// BlockHash field is populated in place.
func (l *Ledger) ApplyBlock(block *Block) error {
	result := make(chan error, 1)
	l.reqs <- func(s *state) { result <- s.applyBlock(block) }
	return <-result
}

// Finalize marks height as an immovable finality checkpoint.
func (l *Ledger) Finalize(height int64) error {
	result := make(chan error, 1)
	l.reqs <- func(s *state) { result <- s.finalize(height) }
	return <-result
}

// RevertToHeight rewinds the chain tip to height, refusing if height is
// below the last finality checkpoint.
func (l *Ledger) RevertToHeight(height int64) error {
	result := make(chan error, 1)
	l.reqs <- func(s *state) { result <- s.revertToHeight(height) }
	return <-result
}

// Height returns the height of the last applied block, or -1 before
// genesis.
func (l *Ledger) Height() int64 {
	result := make(chan int64, 1)
	l.reqs <- func(s *state) { result <- s.height }
	return <-result
}

// TipHash returns the hash of the last applied block.
func (l *Ledger) TipHash() string {
	result := make(chan string, 1)
	l.reqs <- func(s *state) { result <- s.tipHash }
	return <-result
}

// Balance returns the current balance of address, in pals.
func (l *Ledger) Balance(address string) int64 {
	result := make(chan int64, 1)
	l.reqs <- func(s *state) { result <- s.balance(address) }
	return <-result
}

// Nonce returns the current confirmed nonce of address.
func (l *Ledger) Nonce(address string) uint64 {
	result := make(chan uint64, 1)
	l.reqs <- func(s *state) { result <- s.nonce(address) }
	return <-result
}

// TotalEmittedPals returns the cumulative emission since genesis.
func (l *Ledger) TotalEmittedPals() int64 {
	result := make(chan int64, 1)
	l.reqs <- func(s *state) { result <- s.totalEmittedPals }
	return <-result
}

// ValidatorSet returns a snapshot of the current ranked validator list,
// in registration order, suitable for the TSW scheduler.
func (l *Ledger) ValidatorSet() []string {
	result := make(chan []string, 1)
	l.reqs <- func(s *state) {
		cp := make([]string, len(s.validatorSet))
		copy(cp, s.validatorSet)
		result <- cp
	}
	return <-result
}

// ValidatorCount returns the number of currently registered validators.
func (l *Ledger) ValidatorCount() int {
	result := make(chan int, 1)
	l.reqs <- func(s *state) { result <- len(s.validatorSet) }
	return <-result
}

// IsDeviceRegistered reports whether deviceID is already present in the
// validator registry.
func (l *Ledger) IsDeviceRegistered(deviceID string) bool {
	result := make(chan bool, 1)
	l.reqs <- func(s *state) { result <- s.deviceIDs[deviceID] }
	return <-result
}

// GetBlock returns the block applied at height, if any.
func (l *Ledger) GetBlock(height int64) (*Block, bool) {
	type resultT struct {
		b  *Block
		ok bool
	}
	result := make(chan resultT, 1)
	l.reqs <- func(s *state) {
		b, ok := s.blocksByHeight[height]
		result <- resultT{b, ok}
	}
	r := <-result
	return r.b, r.ok
}

// GetBlockByHash returns the block with the given hash, if any.
func (l *Ledger) GetBlockByHash(hash string) (*Block, bool) {
	type resultT struct {
		b  *Block
		ok bool
	}
	result := make(chan resultT, 1)
	l.reqs <- func(s *state) {
		b, ok := s.blocksByHash[hash]
		result <- resultT{b, ok}
	}
	r := <-result
	return r.b, r.ok
}

// BlockRange returns the applied blocks with height in [start, end], in
// increasing height order. Missing heights (e.g. above the current tip)
// are simply omitted.
func (l *Ledger) BlockRange(start, end int64) []*Block {
	result := make(chan []*Block, 1)
	l.reqs <- func(s *state) {
		var blocks []*Block
		for h := start; h <= end; h++ {
			if b, ok := s.blocksByHeight[h]; ok {
				blocks = append(blocks, b)
			}
		}
		result <- blocks
	}
	return <-result
}

// Account bundles the fields the /api/account/{address} endpoint reports.
type Account struct {
	Address string
	Balance int64
	Nonce   uint64
}

// GetAccount returns the confirmed balance and nonce for address.
func (l *Ledger) GetAccount(address string) Account {
	result := make(chan Account, 1)
	l.reqs <- func(s *state) {
		result <- Account{Address: address, Balance: s.balance(address), Nonce: s.nonce(address)}
	}
	return <-result
}

// IsValid reports whether tx would be individually valid if applied
// against the current confirmed state, without applying it. The node's
// admission path calls this before handing tx to the mempool; it is exported so callers outside this
// package never need to reach into ledger internals to ask the question.
func (l *Ledger) IsValid(tx *transaction.Transaction) error {
	result := make(chan error, 1)
	l.reqs <- func(s *state) {
		result <- tx.IsValid(stateBalances{s}, stateNonces{s})
	}
	return <-result
}
