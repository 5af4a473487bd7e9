// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package p2pauth

// NonceCacheSize is the number of most-recent nonces remembered per peer
// for replay detection.
const NonceCacheSize = 1000

// MaxAuthFailures is the number of authentication failures a peer may
// accumulate before being banned for the lifetime of the process.
const MaxAuthFailures = 10

// peerRecord tracks one peer's replay ring, public key, and failure
// count.
type peerRecord struct {
	nonceRing []string
	nonceSet  map[string]bool
	publicKey string
	failures  int
	banned    bool
}

func newPeerRecord() *peerRecord {
	return &peerRecord{nonceSet: make(map[string]bool)}
}

// seenNonce reports whether nonce has already been recorded for this
// peer.
func (p *peerRecord) seenNonce(nonce string) bool {
	return p.nonceSet[nonce]
}

// recordNonce appends nonce to the ring, evicting the oldest entry once
// the ring reaches NonceCacheSize, mirroring a fixed-capacity deque.
func (p *peerRecord) recordNonce(nonce string) {
	if len(p.nonceRing) >= NonceCacheSize {
		oldest := p.nonceRing[0]
		p.nonceRing = p.nonceRing[1:]
		delete(p.nonceSet, oldest)
	}
	p.nonceRing = append(p.nonceRing, nonce)
	p.nonceSet[nonce] = true
}

// peerTable is the single-writer structure behind Authenticator: one
// goroutine owns it, mirroring mempool.store and ledger.state.
type peerTable struct {
	peers map[string]*peerRecord
}

func newPeerTable() *peerTable {
	return &peerTable{peers: make(map[string]*peerRecord)}
}

func (t *peerTable) record(peerID string) *peerRecord {
	p, ok := t.peers[peerID]
	if !ok {
		p = newPeerRecord()
		t.peers[peerID] = p
	}
	return p
}
