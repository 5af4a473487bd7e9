// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/timpalnet/timpal-node/ledger"
	"github.com/timpalnet/timpal-node/transaction"
)

func TestHandleSubmitTransactionAcceptsValidTransfer(t *testing.T) {
	n := newTestNode(t)
	if err := n.Ledger.ApplyBlock(&ledger.Block{Height: 0}); err != nil {
		t.Fatalf("genesis: %v", err)
	}

	privA, pubA, addrA := newKeyPair(t)
	ledger.Configure(100_000)
	seedBlock := &ledger.Block{Height: 1, ParentHash: n.Ledger.TipHash(), Proposer: addrA}
	if err := n.Ledger.ApplyBlock(seedBlock); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ledger.Configure(0)

	_, _, addrB := newKeyPair(t)
	tx := &transaction.Transaction{
		Type:      transaction.TypeTransfer,
		Sender:    addrA,
		Recipient: addrB,
		Amount:    50_000,
		Fee:       50_000,
		Timestamp: 3.0,
		Nonce:     0,
		PublicKey: pubA,
	}
	if err := tx.Sign(privA); err != nil {
		t.Fatalf("Sign: %v", err)
	}

	body, _ := json.Marshal(tx)
	req := httptest.NewRequest(http.MethodPost, "/submit_transaction", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	n.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["status"] != "accepted" {
		t.Fatalf("status field = %q, want accepted", resp["status"])
	}
	if got := n.Mempool.GetSenderPendingCount(addrA); got != 1 {
		t.Fatalf("pending count for sender = %d, want 1", got)
	}
}

func TestHandleSubmitTransactionRejectsMalformedBody(t *testing.T) {
	n := newTestNode(t)
	req := httptest.NewRequest(http.MethodPost, "/submit_transaction", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	n.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSubmitTransactionRejectsGet(t *testing.T) {
	n := newTestNode(t)
	req := httptest.NewRequest(http.MethodGet, "/submit_transaction", nil)
	rec := httptest.NewRecorder()
	n.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleHealthReportsHeightAndValidatorCount(t *testing.T) {
	n := newTestNode(t)
	if err := n.Ledger.ApplyBlock(&ledger.Block{Height: 0}); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	n.Handler().ServeHTTP(rec, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["height"].(float64) != 0 {
		t.Fatalf("height = %v, want 0", resp["height"])
	}
	if resp["validator_count"].(float64) != 0 {
		t.Fatalf("validator_count = %v, want 0", resp["validator_count"])
	}
}

func TestHandleAccountReportsPendingNonce(t *testing.T) {
	n := newTestNode(t)
	if err := n.Ledger.ApplyBlock(&ledger.Block{Height: 0}); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	privA, pubA, addrA := newKeyPair(t)
	ledger.Configure(100_000)
	if err := n.Ledger.ApplyBlock(&ledger.Block{Height: 1, ParentHash: n.Ledger.TipHash(), Proposer: addrA}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	ledger.Configure(0)

	_, _, addrB := newKeyPair(t)
	tx := &transaction.Transaction{
		Type: transaction.TypeTransfer, Sender: addrA, Recipient: addrB,
		Amount: 1_000, Fee: 50_000, Timestamp: 3.0, Nonce: 0, PublicKey: pubA,
	}
	if err := tx.Sign(privA); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := n.Mempool.AddTransaction(tx); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/account/"+addrA, nil)
	rec := httptest.NewRecorder()
	n.Handler().ServeHTTP(rec, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["pending_nonce"].(float64) != 1 {
		t.Fatalf("pending_nonce = %v, want 1", resp["pending_nonce"])
	}
	if resp["nonce"].(float64) != 0 {
		t.Fatalf("nonce = %v, want 0", resp["nonce"])
	}
}

func TestHandleBlocksRangeRejectsOversizedSpan(t *testing.T) {
	n := newTestNode(t)
	req := httptest.NewRequest(http.MethodGet, "/api/blocks/range?start=0&end=1000", nil)
	rec := httptest.NewRecorder()
	n.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleBlocksRangeReturnsAppliedBlocks(t *testing.T) {
	n := newTestNode(t)
	for h := int64(0); h < 3; h++ {
		if err := n.Ledger.ApplyBlock(&ledger.Block{Height: h, ParentHash: n.Ledger.TipHash()}); err != nil {
			t.Fatalf("ApplyBlock(%d): %v", h, err)
		}
	}
	req := httptest.NewRequest(http.MethodGet, "/api/blocks/range?start=0&end=2", nil)
	rec := httptest.NewRecorder()
	n.Handler().ServeHTTP(rec, req)

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["count"].(float64) != 3 {
		t.Fatalf("count = %v, want 3", resp["count"])
	}
}

