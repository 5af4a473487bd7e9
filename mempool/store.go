// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements bounded admission of user-facing
// transactions: a staging area for signed transfers and validator
// registrations awaiting inclusion in a block, with per-sender quotas
// and next-nonce tracking.
package mempool

import (
	"sort"

	"github.com/timpalnet/timpal-node/transaction"
)

// Config bounds the pool's admission policy.
type Config struct {
	// MaxTotalTx is the maximum number of transactions the pool will
	// hold at once, across all senders.
	MaxTotalTx int
	// MaxTxPerAddress is the maximum number of pending transactions a
	// single sender may have admitted at once.
	MaxTxPerAddress int
}

// DefaultConfig returns the pool's default bounds.
func DefaultConfig() Config {
	return Config{MaxTotalTx: 10_000, MaxTxPerAddress: 10}
}

// allowedTypes restricts mempool admission to the transaction types that
// represent user-facing intent; heartbeats, attestations, and timeout
// messages travel their own transport paths so they never compete with
// transfers for mempool space.
var allowedTypes = map[transaction.Type]bool{
	transaction.TypeTransfer:              true,
	transaction.TypeValidatorRegistration: true,
}

// store is the single-owner data structure behind Mempool; it is never
// accessed from more than one goroutine; Mempool's actor loop is the sole
// caller.
type store struct {
	cfg Config

	byHash        map[string]*transaction.Transaction
	perSenderCount map[string]int
	pendingNonces  map[string]uint64
}

func newStore(cfg Config) *store {
	return &store{
		cfg:            cfg,
		byHash:         make(map[string]*transaction.Transaction),
		perSenderCount: make(map[string]int),
		pendingNonces:  make(map[string]uint64),
	}
}

// add admits tx, checking type allow-listing, duplicate hash, the global
// size bound, and the per-sender quota, in that order, then updates the
// sender's pending-nonce watermark to max(current, tx.Nonce+1).
func (s *store) add(tx *transaction.Transaction) error {
	if !allowedTypes[tx.Type] {
		return poolError(ErrDisallowedType, string(tx.Type))
	}
	hash := tx.Hash()
	if _, exists := s.byHash[hash]; exists {
		return poolError(ErrDuplicateHash, hash)
	}
	if len(s.byHash) >= s.cfg.MaxTotalTx {
		return poolError(ErrMempoolFull, "")
	}
	if s.perSenderCount[tx.Sender] >= s.cfg.MaxTxPerAddress {
		return poolError(ErrSenderQuotaExceeded, tx.Sender)
	}

	s.byHash[hash] = tx
	s.perSenderCount[tx.Sender]++
	if next := tx.Nonce + 1; next > s.pendingNonces[tx.Sender] {
		s.pendingNonces[tx.Sender] = next
	}
	return nil
}

// pendingNonce returns the next free nonce for sender considering only
// what is currently in the mempool; callers combine this with the
// ledger's confirmed nonce to get the true next-usable nonce.
func (s *store) pendingNonce(sender string) uint64 {
	return s.pendingNonces[sender]
}

func (s *store) senderPendingCount(sender string) int {
	return s.perSenderCount[sender]
}

// pending returns up to limit transactions ready for block assembly:
// transfers first (sorted by timestamp), then every other admitted type
// (sorted by timestamp), concatenated and truncated. This guarantees a
// non-transfer is never returned ahead of a transfer that was admitted.
func (s *store) pending(limit int) []*transaction.Transaction {
	var transfers, others []*transaction.Transaction
	for _, tx := range s.byHash {
		if tx.Type == transaction.TypeTransfer {
			transfers = append(transfers, tx)
		} else {
			others = append(others, tx)
		}
	}
	sort.Slice(transfers, func(i, j int) bool { return transfers[i].Timestamp < transfers[j].Timestamp })
	sort.Slice(others, func(i, j int) bool { return others[i].Timestamp < others[j].Timestamp })

	result := append(transfers, others...)
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

func (s *store) remove(hash string) {
	tx, ok := s.byHash[hash]
	if !ok {
		return
	}
	delete(s.byHash, hash)
	if s.perSenderCount[tx.Sender] > 0 {
		s.perSenderCount[tx.Sender]--
		if s.perSenderCount[tx.Sender] == 0 {
			delete(s.perSenderCount, tx.Sender)
			delete(s.pendingNonces, tx.Sender)
		}
	}
}

func (s *store) removeMany(hashes []string) {
	for _, h := range hashes {
		s.remove(h)
	}
}

func (s *store) clear() {
	s.byHash = make(map[string]*transaction.Transaction)
	s.perSenderCount = make(map[string]int)
	s.pendingNonces = make(map[string]uint64)
}

func (s *store) get(hash string) (*transaction.Transaction, bool) {
	tx, ok := s.byHash[hash]
	return tx, ok
}

func (s *store) size() int {
	return len(s.byHash)
}
