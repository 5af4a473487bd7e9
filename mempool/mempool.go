// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "github.com/timpalnet/timpal-node/transaction"

// DefaultPendingLimit is the default cap on how many transactions a
// single GetPendingTransactions call returns.
const DefaultPendingLimit = 700

// Mempool is the single-writer owner of the pending-transaction store.
// Every method enqueues a closure onto the actor's request channel and
// blocks for its result; the store itself is only ever touched from the
// actor goroutine started by New, so no locking is needed around it.
type Mempool struct {
	reqs chan func(*store)
}

// New starts a Mempool actor goroutine and returns a handle to it. Close
// must be called to stop the goroutine once the mempool is no longer
// needed.
func New(cfg Config) *Mempool {
	m := &Mempool{reqs: make(chan func(*store), 64)}
	go m.run(cfg)
	return m
}

func (m *Mempool) run(cfg Config) {
	s := newStore(cfg)
	for req := range m.reqs {
		req(s)
	}
}

// Close stops the actor goroutine. Calling any other method after Close
// blocks forever; callers must not use a Mempool after closing it.
func (m *Mempool) Close() {
	close(m.reqs)
}

// AddTransaction admits tx per the pool's admission rules.
func (m *Mempool) AddTransaction(tx *transaction.Transaction) error {
	result := make(chan error, 1)
	m.reqs <- func(s *store) { result <- s.add(tx) }
	return <-result
}

// GetPendingNonce returns the next free nonce for sender considering only
// what is currently admitted to the mempool.
func (m *Mempool) GetPendingNonce(sender string) uint64 {
	result := make(chan uint64, 1)
	m.reqs <- func(s *store) { result <- s.pendingNonce(sender) }
	return <-result
}

// GetSenderPendingCount returns how many transactions from sender are
// currently admitted.
func (m *Mempool) GetSenderPendingCount(sender string) int {
	result := make(chan int, 1)
	m.reqs <- func(s *store) { result <- s.senderPendingCount(sender) }
	return <-result
}

// GetPendingTransactions returns up to limit transactions ready for block
// assembly, transfers ahead of every other admitted type.
func (m *Mempool) GetPendingTransactions(limit int) []*transaction.Transaction {
	result := make(chan []*transaction.Transaction, 1)
	m.reqs <- func(s *store) { result <- s.pending(limit) }
	return <-result
}

// RemoveTransaction discards the transaction with the given hash, if
// present. Call this once a transaction has been included in an applied
// block.
func (m *Mempool) RemoveTransaction(hash string) {
	done := make(chan struct{})
	m.reqs <- func(s *store) { s.remove(hash); close(done) }
	<-done
}

// RemoveTransactions discards every transaction in hashes.
func (m *Mempool) RemoveTransactions(hashes []string) {
	done := make(chan struct{})
	m.reqs <- func(s *store) { s.removeMany(hashes); close(done) }
	<-done
}

// Clear discards every pending transaction.
func (m *Mempool) Clear() {
	done := make(chan struct{})
	m.reqs <- func(s *store) { s.clear(); close(done) }
	<-done
}

// GetTransaction returns the pending transaction with the given hash, if
// present.
func (m *Mempool) GetTransaction(hash string) (*transaction.Transaction, bool) {
	type resultT struct {
		tx *transaction.Transaction
		ok bool
	}
	result := make(chan resultT, 1)
	m.reqs <- func(s *store) {
		tx, ok := s.get(hash)
		result <- resultT{tx, ok}
	}
	r := <-result
	return r.tx, r.ok
}

// Size returns the number of transactions currently admitted.
func (m *Mempool) Size() int {
	result := make(chan int, 1)
	m.reqs <- func(s *store) { result <- s.size() }
	return <-result
}
