// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/timpalnet/timpal-node/ledger"
	"github.com/timpalnet/timpal-node/mempool"
	"github.com/timpalnet/timpal-node/p2pauth"
	"github.com/timpalnet/timpal-node/transaction"
)

// maxBlockRangeSpan is the largest end-start span /api/blocks/range will
// serve in one request.
const maxBlockRangeSpan = 100

// Handler returns the HTTP surface named by the wire contract: the
// endpoints are a thin net/http adapter over Node's methods, never a
// framework, since the HTTP layer is explicitly peripheral.
func (n *Node) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/submit_transaction", n.handleSubmitTransaction)
	mux.HandleFunc("/send", n.handleSend)
	mux.HandleFunc("/api/blocks/range", n.handleBlocksRange)
	mux.HandleFunc("/api/health", n.handleHealth)
	mux.HandleFunc("/api/account/", n.handleAccount)
	mux.HandleFunc("/ws/peer", n.handlePeerSocket)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (n *Node) handleSubmitTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusBadRequest, "POST required")
		return
	}
	var tx transaction.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		writeError(w, http.StatusBadRequest, "malformed transaction")
		return
	}
	if err := n.admit(&tx); err != nil {
		writeError(w, http.StatusBadRequest, sanitize(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted", "tx_hash": tx.Hash()})
}

// admit runs the transaction through signature verification, ledger
// validity (against confirmed state), and mempool admission, in that
// order, mirroring the client-facing submission path's layering: a
// structurally or cryptographically bad transaction never reaches the
// ledger's own validity check, and an individually-invalid transaction
// never reaches the pool.
func (n *Node) admit(tx *transaction.Transaction) error {
	if err := tx.Verify(); err != nil {
		return err
	}
	if err := n.Ledger.IsValid(tx); err != nil {
		return err
	}
	return n.Mempool.AddTransaction(tx)
}

func (n *Node) handleBlocksRange(w http.ResponseWriter, r *http.Request) {
	start, startOK := parseQueryInt(r, "start")
	end, endOK := parseQueryInt(r, "end")
	if !startOK || !endOK {
		writeError(w, http.StatusBadRequest, "start and end are required integers")
		return
	}
	if end-start > maxBlockRangeSpan {
		writeError(w, http.StatusBadRequest, "range too large")
		return
	}
	blocks := n.Ledger.BlockRange(start, end)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blocks":        blocks,
		"latest_height": n.Ledger.Height(),
		"count":         len(blocks),
	})
}

func (n *Node) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ok",
		"height":           n.Ledger.Height(),
		"peers":            n.PeerCount(),
		"validator_count":  n.Ledger.ValidatorCount(),
	})
}

func (n *Node) handleAccount(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimPrefix(r.URL.Path, "/api/account/")
	if address == "" {
		writeError(w, http.StatusBadRequest, "address required")
		return
	}
	account := n.Ledger.GetAccount(address)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"address":        account.Address,
		"balance":        account.Balance,
		"nonce":          account.Nonce,
		"pending_nonce":  pendingNonce(n.Ledger, n.Mempool, address),
		"pending_count":  n.Mempool.GetSenderPendingCount(address),
	})
}

// pendingNonce is the mempool's own derived value per §9's design note:
// max(ledger.nonce(S), max(tx.nonce+1) for pending tx from S). The
// mempool tracks only the second term (GetPendingNonce never consults the
// ledger); this function folds in the confirmed nonce as the floor, at
// the one call site that reports it externally.
func pendingNonce(l ledgerReader, m *mempool.Mempool, address string) uint64 {
	confirmed := l.Nonce(address)
	pending := m.GetPendingNonce(address)
	if pending > confirmed {
		return pending
	}
	return confirmed
}

// ledgerReader is the minimal surface pendingNonce needs, narrowed so it
// can be exercised directly in tests with a fake.
type ledgerReader interface {
	Nonce(address string) uint64
}

func parseQueryInt(r *http.Request, key string) (int64, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	return v, err == nil
}

// sanitize strips internal error detail before it reaches an HTTP
// client, per spec §7's "internal exception details never cross the
// HTTP boundary" — only the stable ErrorKind string is surfaced, never
// an error's Desc field, which may carry values echoing client input.
func sanitize(err error) string {
	var txErr transaction.Error
	if errors.As(err, &txErr) {
		return txErr.Kind.Error()
	}
	var ledgerErr ledger.Error
	if errors.As(err, &ledgerErr) {
		return ledgerErr.Kind.Error()
	}
	var authErr p2pauth.Error
	if errors.As(err, &authErr) {
		return authErr.Kind.Error()
	}
	return "invalid transaction"
}
