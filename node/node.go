// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node wires the ledger, mempool, TSW scheduler, P2P
// authenticator, and storage into a running process: it replays
// persisted blocks into a fresh ledger at startup, runs the proposal
// loop that turns mempool contents into blocks during this validator's
// TSW window, and exposes the five HTTP endpoints named by the wire
// contract. Concurrency across these pieces is exactly what §5 of the
// expanded design calls for: each of ledger, mempool, and the peer table
// is already its own single-writer actor; Node only coordinates between
// them, never reaches into their internals.
package node

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/timpalnet/timpal-node/chaincfg"
	"github.com/timpalnet/timpal-node/ledger"
	"github.com/timpalnet/timpal-node/mempool"
	"github.com/timpalnet/timpal-node/p2pauth"
	"github.com/timpalnet/timpal-node/storage"
)

// Logger is the minimal logging surface Node needs; *slog.Logger (via
// the decred/slog adapter this module's cmd/timpalnode wires up)
// satisfies it, as does p2pauth.Logger's Warnf-only subset extended here
// with Infof and Errorf for the orchestration layer's broader needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// ProposerIdentity is the validator identity a node proposes blocks
// under: Address is recorded as each proposed block's Proposer. Blocks
// carry no signature, and the proposal loop does not use PrivateKey. A
// node with a nil identity never proposes; it still applies blocks it
// learns about and serves the read-only HTTP surface.
type ProposerIdentity struct {
	Address    string
	PrivateKey []byte
}

// Config bundles everything New needs to bring a node up.
type Config struct {
	DataDir   string
	Params    *chaincfg.Params
	Identity  *ProposerIdentity // nil for a non-proposing (follower/RPC) node
	Logger    Logger
	Mempool   mempool.Config
}

// Node owns the wired-together subsystems and the background proposal
// loop.
type Node struct {
	cfg       Config
	log       Logger
	store     *storage.FileStore
	recovery  *storage.RecoveryCoordinator
	Ledger    *ledger.Ledger
	Mempool   *mempool.Mempool
	Auth      *p2pauth.Authenticator
	wallet    *WalletService
	peerCount int64 // connected peer websockets; read via PeerCount
	stopLoop  chan struct{}
	loopDone  chan struct{}
}

// PeerCount reports the number of currently connected peer websockets.
func (n *Node) PeerCount() int {
	return int(atomic.LoadInt64(&n.peerCount))
}

// SetWallet attaches an unlocked wallet so the node can serve the
// PIN-gated /send endpoint. A node with no wallet set rejects /send
// requests; /submit_transaction is unaffected, since it takes an
// already-signed transaction from the caller.
func (n *Node) SetWallet(w *WalletService) {
	n.wallet = w
}

// New opens storage, runs crash recovery, replays the persisted chain
// into a fresh ledger, and starts the mempool and authenticator actors.
// It does not start the proposal loop or HTTP server; call Run for that.
func New(cfg Config) (*Node, error) {
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}
	if cfg.Mempool == (mempool.Config{}) {
		cfg.Mempool = mempool.DefaultConfig()
	}

	store, err := storage.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("node: opening storage: %w", err)
	}

	recovery := storage.NewRecoveryCoordinator(store)
	report, err := recovery.CheckAndRecover()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("node: refusing to start: %w", err)
	}
	if report.CrashDetected {
		cfg.Logger.Warnf("node: recovered from a crash-detected integrity failure")
	}

	l := ledger.New()
	if err := replayChain(l, store); err != nil {
		l.Close()
		store.Close()
		return nil, fmt.Errorf("node: replaying persisted chain: %w", err)
	}

	n := &Node{
		cfg:      cfg,
		log:      cfg.Logger,
		store:    store,
		recovery: recovery,
		Ledger:   l,
		Mempool:  mempool.New(cfg.Mempool),
		Auth:     p2pauth.New(p2pauth.WithLogger(cfg.Logger)),
		stopLoop: make(chan struct{}),
		loopDone: make(chan struct{}),
	}
	return n, nil
}

// replayChain reapplies every persisted block, in height order, against
// a freshly started ledger. Block application is fully deterministic
// (balances, nonces, and emission all derive from the block's own
// fields plus the state that preceded it), so replay reconstructs
// exactly the state that was live before the process stopped.
func replayChain(l *ledger.Ledger, store *storage.FileStore) error {
	height, ok, err := store.ChainHeight()
	if err != nil || !ok {
		return err
	}
	for h := int64(0); h <= height; h++ {
		block, err := store.GetBlock(h)
		if err != nil {
			return fmt.Errorf("height %d: %w", h, err)
		}
		block.BlockHash = "" // recomputed by ApplyBlock; do not trust the stored hash blindly
		if err := l.ApplyBlock(block); err != nil {
			return fmt.Errorf("height %d: %w", h, err)
		}
	}
	return nil
}

// Close stops every owned actor and the storage handle. Run's loop, if
// started, must be stopped first via StopProposing.
func (n *Node) Close() {
	n.Mempool.Close()
	n.Auth.Close()
	n.Ledger.Close()
	n.store.Close()
}

// persistBlock saves a newly applied block and the resulting ledger
// state to storage, matching storage_basic.py's save_new_block +
// save_state_only split: block bytes rewritten only for the new block,
// state rewritten every time since it is comparatively small.
func (n *Node) persistBlock(block *ledger.Block) error {
	if err := n.store.SaveNewBlock(block); err != nil {
		return err
	}
	dump := n.Ledger.Dump()
	return n.store.SaveState(storage.StateSnapshot{
		Balances:            dump.Balances,
		Nonces:              dump.Nonces,
		TotalEmittedPals:    dump.TotalEmittedPals,
		ValidatorSet:        dump.ValidatorSet,
		ValidatorRegistry:   dumpRegistry(dump.ValidatorRegistry),
		FinalityCheckpoints: dump.FinalityCheckpoints,
	})
}

func dumpRegistry(src map[string]ledger.ValidatorInfo) map[string]storage.ValidatorInfo {
	dst := make(map[string]storage.ValidatorInfo, len(src))
	for addr, v := range src {
		dst[addr] = storage.ValidatorInfo{
			Address:          v.Address,
			PublicKey:        v.PublicKey,
			DeviceID:         v.DeviceID,
			Power:            v.Power,
			RegisteredHeight: v.RegisteredHeight,
		}
	}
	return dst
}

// nowUnix returns the current wall-clock time as TSW-compatible
// fractional Unix seconds.
func nowUnix() float64 {
	return float64(time.Now().UnixNano()) / 1e9
}
