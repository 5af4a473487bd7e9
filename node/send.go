// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"encoding/json"
	"net/http"

	"github.com/timpalnet/timpal-node/crypto"
	"github.com/timpalnet/timpal-node/dcrutil"
	"github.com/timpalnet/timpal-node/transaction"
)

// sendRequest is the /send convenience endpoint's body, matching
// wallet_cli.py's "sender, recipient, amount in TMPL, PIN" shape.
type sendRequest struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	AmountTmpl float64 `json:"amount_tmpl"`
	Pin       string  `json:"pin"`
}

func (n *Node) handleSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusBadRequest, "POST required")
		return
	}
	if n.wallet == nil {
		writeError(w, http.StatusBadRequest, "no wallet configured on this node")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request")
		return
	}

	if req.Sender != n.wallet.Address() {
		writeError(w, http.StatusBadRequest, "sender does not match this node's wallet")
		return
	}
	if !crypto.IsValidAddress(req.Recipient) {
		writeError(w, http.StatusBadRequest, "invalid recipient address")
		return
	}
	if req.AmountTmpl <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if !n.wallet.AuthorizeSend(req.Pin) {
		writeError(w, http.StatusUnauthorized, "incorrect pin")
		return
	}

	amt, err := dcrutil.NewAmount(req.AmountTmpl)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	amount := int64(amt)
	fee := n.cfg.Params.Fee
	account := n.Ledger.GetAccount(req.Sender)
	if account.Balance < amount+fee {
		writeError(w, http.StatusBadRequest, "insufficient balance")
		return
	}

	nonce := pendingNonce(n.Ledger, n.Mempool, req.Sender)
	tx := &transaction.Transaction{
		Type:      transaction.TypeTransfer,
		Sender:    req.Sender,
		Recipient: req.Recipient,
		Amount:    amount,
		Fee:       fee,
		Timestamp: nowUnix(),
		Nonce:     nonce,
		PublicKey: n.wallet.PublicKeyHex(),
	}
	if err := n.wallet.Sign(tx); err != nil {
		writeError(w, http.StatusInternalServerError, "signing failed")
		return
	}

	if err := n.admit(tx); err != nil {
		writeError(w, http.StatusBadRequest, sanitize(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted", "tx_hash": tx.Hash()})
}

