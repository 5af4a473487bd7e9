// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"time"

	"github.com/timpalnet/timpal-node/consensus/tsw"
	"github.com/timpalnet/timpal-node/ledger"
	"github.com/timpalnet/timpal-node/mempool"
)

// proposeTick is how often the loop re-checks whether this is its
// window; it is well under WindowSeconds so a window is never missed
// entirely between checks.
const proposeTick = 250 * time.Millisecond

// Run starts the background proposal loop. It returns immediately; call
// StopProposing to stop it. A node with no configured Identity still
// runs the loop harmlessly: each tick returns before consulting the
// scheduler, so such a node never proposes.
func (n *Node) Run() {
	go n.proposeLoop()
}

// StopProposing halts the background proposal loop and waits for it to
// exit. It does not close the node's other subsystems; call Close for
// that.
func (n *Node) StopProposing() {
	close(n.stopLoop)
	<-n.loopDone
}

func (n *Node) proposeLoop() {
	defer close(n.loopDone)
	ticker := time.NewTicker(proposeTick)
	defer ticker.Stop()
	for {
		select {
		case <-n.stopLoop:
			return
		case <-ticker.C:
			n.maybePropose()
		}
	}
}

func (n *Node) maybePropose() {
	if n.cfg.Identity == nil {
		return
	}

	height := n.Ledger.Height()
	nextHeight := height + 1
	validators := n.Ledger.ValidatorSet()
	if len(validators) == 0 {
		return
	}

	now := nowUnix()
	bootstrap := nextHeight < n.cfg.Params.BootstrapBlocks
	slotStart := tsw.SlotStartTime(n.cfg.Params.GenesisTimestamp, nextHeight)

	decision := tsw.AmIProposerNow(n.cfg.Identity.Address, validators, slotStart, now, bootstrap)
	if !decision.InRanks || !decision.IsMyTurn {
		return
	}

	block := n.assembleBlock(nextHeight, now)
	if err := n.Ledger.ApplyBlock(block); err != nil {
		n.log.Warnf("node: proposed block at height %d rejected by own ledger: %v", nextHeight, err)
		return
	}
	if err := n.persistBlock(block); err != nil {
		n.log.Errorf("node: failed to persist block %d: %v", nextHeight, err)
		return
	}
	n.Mempool.RemoveTransactions(txHashes(block))
	n.log.Infof("node: proposed block %d with %d transactions", nextHeight, len(block.Transactions))
}

func (n *Node) assembleBlock(height int64, now float64) *ledger.Block {
	parentHash := n.Ledger.TipHash()
	txs := n.Mempool.GetPendingTransactions(mempool.DefaultPendingLimit)
	return &ledger.Block{
		Height:       height,
		ParentHash:   parentHash,
		Proposer:     n.cfg.Identity.Address,
		Timestamp:    now,
		Transactions: txs,
	}
}

func txHashes(block *ledger.Block) []string {
	hashes := make([]string, len(block.Transactions))
	for i, tx := range block.Transactions {
		hashes[i] = tx.Hash()
	}
	return hashes
}
