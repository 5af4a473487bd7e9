// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/timpalnet/timpal-node/crypto"
	"github.com/timpalnet/timpal-node/transaction"
)

// Block is the persisted and broadcast unit of chain progress.
type Block struct {
	Height       int64                      `json:"height"`
	ParentHash   string                     `json:"parent_hash"`
	Proposer     string                     `json:"proposer"`
	Timestamp    float64                    `json:"timestamp"`
	Transactions []*transaction.Transaction `json:"transactions"`
	BlockHash    string                     `json:"block_hash,omitempty"`
}

// Hash returns the canonical SHA-256 hash of the block's fields other than
// BlockHash itself, hex encoded. Transaction order is significant: it is
// folded into the preimage in the order given, matching the "transactions
// are applied in given order" guarantee.
func (b *Block) Hash() string {
	preimage := fmt.Sprintf("%d%s%s%s", b.Height, b.ParentHash, b.Proposer, formatTimestamp(b.Timestamp))
	for _, tx := range b.Transactions {
		preimage += tx.Hash()
	}
	digest := crypto.SHA256([]byte(preimage))
	return hex.EncodeToString(digest[:])
}

// formatTimestamp mirrors transaction.formatTimestamp so block and
// transaction preimages render floats identically; it is duplicated
// rather than exported from transaction to keep the two packages'
// hashing free of a needless cross-package call for one helper.
func formatTimestamp(ts float64) string {
	if ts == float64(int64(ts)) {
		return strconv.FormatInt(int64(ts), 10) + ".0"
	}
	return strconv.FormatFloat(ts, 'g', -1, 64)
}
