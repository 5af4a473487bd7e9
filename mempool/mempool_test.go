// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool_test

import (
	"errors"
	"testing"

	"github.com/timpalnet/timpal-node/mempool"
	"github.com/timpalnet/timpal-node/transaction"
)

func transferAt(sender, recipient string, ts float64, nonce uint64) *transaction.Transaction {
	return &transaction.Transaction{
		Type:      transaction.TypeTransfer,
		Sender:    sender,
		Recipient: recipient,
		Amount:    1000,
		Fee:       50_000,
		Timestamp: ts,
		Nonce:     nonce,
	}
}

func heartbeatAt(sender string, ts float64) *transaction.Transaction {
	return &transaction.Transaction{Type: transaction.TypeValidatorHeartbeat, Sender: sender, Timestamp: ts}
}

func registrationAt(sender string, ts float64, nonce uint64) *transaction.Transaction {
	return &transaction.Transaction{
		Type:      transaction.TypeValidatorRegistration,
		Sender:    sender,
		PublicKey: "pub-" + sender,
		DeviceID:  "device-" + sender,
		Timestamp: ts,
		Nonce:     nonce,
	}
}

func TestHeartbeatRejectedOnAdmission(t *testing.T) {
	m := mempool.New(mempool.DefaultConfig())
	defer m.Close()

	err := m.AddTransaction(heartbeatAt("tmplsender", 1))
	if !errors.Is(err, mempool.ErrDisallowedType) {
		t.Fatalf("AddTransaction(heartbeat) = %v, want ErrDisallowedType", err)
	}
}

// TestMempoolPriorityOrder reproduces the literal scenario: admit in
// order [heartbeat, transfer1, registration, transfer2], all distinct
// senders and hashes. GetPendingTransactions(10) must return
// [transfer1, transfer2, registration] (the heartbeat was never
// admitted).
func TestMempoolPriorityOrder(t *testing.T) {
	m := mempool.New(mempool.DefaultConfig())
	defer m.Close()

	heartbeat := heartbeatAt("tmplheartbeatsender0000000000000000000000", 1)
	transfer1 := transferAt("tmpltransfersenderone000000000000000000001", "tmplrecipient00000000000000000000000000001", 2, 0)
	registration := registrationAt("tmplregistrationsender00000000000000000002", 3, 0)
	transfer2 := transferAt("tmpltransfersendertwo000000000000000000003", "tmplrecipient00000000000000000000000000002", 4, 0)

	if err := m.AddTransaction(heartbeat); !errors.Is(err, mempool.ErrDisallowedType) {
		t.Fatalf("heartbeat admission = %v, want ErrDisallowedType", err)
	}
	if err := m.AddTransaction(transfer1); err != nil {
		t.Fatalf("AddTransaction(transfer1): %v", err)
	}
	if err := m.AddTransaction(registration); err != nil {
		t.Fatalf("AddTransaction(registration): %v", err)
	}
	if err := m.AddTransaction(transfer2); err != nil {
		t.Fatalf("AddTransaction(transfer2): %v", err)
	}

	got := m.GetPendingTransactions(10)
	if len(got) != 3 {
		t.Fatalf("GetPendingTransactions returned %d transactions, want 3", len(got))
	}
	wantOrder := []*transaction.Transaction{transfer1, transfer2, registration}
	for i, want := range wantOrder {
		if got[i].Hash() != want.Hash() {
			t.Fatalf("position %d: got hash %s, want %s", i, got[i].Hash(), want.Hash())
		}
	}
}

func TestDuplicateHashRejected(t *testing.T) {
	m := mempool.New(mempool.DefaultConfig())
	defer m.Close()

	tx := transferAt("tmplsenderaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1", "tmplrecipientbbbbbbbbbbbbbbbbbbbbbbbbbbbbb1", 1, 0)
	if err := m.AddTransaction(tx); err != nil {
		t.Fatalf("first AddTransaction: %v", err)
	}
	if err := m.AddTransaction(tx); !errors.Is(err, mempool.ErrDuplicateHash) {
		t.Fatalf("duplicate AddTransaction = %v, want ErrDuplicateHash", err)
	}
}

// TestSenderQuotaEleventhRejected reproduces "mempool rejects the 11th
// distinct nonce from the same sender (default cap)".
func TestSenderQuotaEleventhRejected(t *testing.T) {
	m := mempool.New(mempool.DefaultConfig())
	defer m.Close()

	const sender = "tmplquotasenderaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	for i := uint64(0); i < 10; i++ {
		tx := transferAt(sender, "tmplrecipientccccccccccccccccccccccccccccc1", float64(i), i)
		if err := m.AddTransaction(tx); err != nil {
			t.Fatalf("AddTransaction(nonce=%d): %v", i, err)
		}
	}
	eleventh := transferAt(sender, "tmplrecipientccccccccccccccccccccccccccccc1", 10, 10)
	if err := m.AddTransaction(eleventh); !errors.Is(err, mempool.ErrSenderQuotaExceeded) {
		t.Fatalf("11th AddTransaction = %v, want ErrSenderQuotaExceeded", err)
	}
	if got := m.GetSenderPendingCount(sender); got != 10 {
		t.Fatalf("GetSenderPendingCount = %d, want 10", got)
	}
}

func TestPendingNonceTracksMax(t *testing.T) {
	m := mempool.New(mempool.DefaultConfig())
	defer m.Close()

	const sender = "tmplnoncesenderddddddddddddddddddddddddddd1"
	if got := m.GetPendingNonce(sender); got != 0 {
		t.Fatalf("GetPendingNonce before admission = %d, want 0", got)
	}
	if err := m.AddTransaction(transferAt(sender, "tmplrecipienteeeeeeeeeeeeeeeeeeeeeeeeeeeeee1", 1, 3)); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if got := m.GetPendingNonce(sender); got != 4 {
		t.Fatalf("GetPendingNonce after nonce=3 admitted = %d, want 4", got)
	}
}

func TestRemoveTransaction(t *testing.T) {
	m := mempool.New(mempool.DefaultConfig())
	defer m.Close()

	tx := transferAt("tmplsenderfffffffffffffffffffffffffffffff1", "tmplrecipientggggggggggggggggggggggggggggg1", 1, 0)
	if err := m.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	if m.Size() != 1 {
		t.Fatalf("Size = %d, want 1", m.Size())
	}
	m.RemoveTransaction(tx.Hash())
	if m.Size() != 0 {
		t.Fatalf("Size after removal = %d, want 0", m.Size())
	}
	if _, ok := m.GetTransaction(tx.Hash()); ok {
		t.Fatal("GetTransaction found a removed transaction")
	}
	if got := m.GetPendingNonce(tx.Sender); got != 0 {
		t.Fatalf("GetPendingNonce after removing sender's only pending tx = %d, want 0 (watermark must be dropped, not left stale)", got)
	}
}
