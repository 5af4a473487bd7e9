// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/hex"
	"fmt"

	"github.com/timpalnet/timpal-node/crypto"
	"github.com/timpalnet/timpal-node/transaction"
)

// stateBalances and stateNonces adapt *state to the minimal interfaces
// transaction.IsValid consults, so the ledger never has to copy its maps
// just to ask a transaction whether it is structurally valid.
type stateBalances struct{ s *state }

func (b stateBalances) Balance(address string) int64 { return b.s.balance(address) }

type stateNonces struct{ s *state }

func (n stateNonces) Nonce(address string) uint64 { return n.s.nonce(address) }

// applyBlock validates and applies block against s, in place. It enforces
// strictly increasing height, parent-hash continuity, and applies every
// transaction in order; any failure leaves s unmodified as far as the
// caller can observe (the whole block is rejected, not partially
// applied) except for changes made to in-flight copies that are discarded
// on error.
func (s *state) applyBlock(block *Block) error {
	if block.Height != s.height+1 {
		return ledgerError(ErrBadHeight, fmt.Sprintf("got %d want %d", block.Height, s.height+1))
	}
	if block.Height > 0 && block.ParentHash != s.tipHash {
		return ledgerError(ErrBadParentHash, fmt.Sprintf("got %s want %s", block.ParentHash, s.tipHash))
	}

	// Apply against a scratch copy so a mid-block failure never leaves
	// partial effects visible; only a fully valid block commits.
	scratch := s.clone()
	for _, tx := range block.Transactions {
		if err := scratch.applyTransaction(tx, block); err != nil {
			return ledgerError(ErrInvalidTransaction, err.Error())
		}
	}

	scratch.totalEmittedPals += blockReward
	if block.Proposer != "" {
		scratch.balances[block.Proposer] += blockReward
	}

	blockHash := block.Hash()
	block.BlockHash = blockHash
	scratch.blocksByHeight[block.Height] = block
	scratch.blocksByHash[blockHash] = block
	scratch.height = block.Height
	scratch.tipHash = blockHash

	*s = *scratch
	return nil
}

// blockReward is the protocol-defined per-block emission, set once at
// startup from chaincfg.Params.BlockReward (mirrors transaction's
// package-level Configure seam, for the same reason: chaincfg must not
// import ledger).
var blockReward int64 = 5_000_000

// Configure sets the protocol parameters this package's block-application
// rules consult. Call it once at startup with the active chaincfg.Params'
// values.
func Configure(reward int64) {
	blockReward = reward
}

// clone returns a deep-enough copy of s for scratch application: every map
// is copied so mutations during a rejected block never alias the committed
// state.
func (s *state) clone() *state {
	c := &state{
		height:              s.height,
		tipHash:             s.tipHash,
		balances:            make(map[string]int64, len(s.balances)),
		nonces:              make(map[string]uint64, len(s.nonces)),
		totalEmittedPals:    s.totalEmittedPals,
		rewardPool:          s.rewardPool,
		validatorSet:        append([]string(nil), s.validatorSet...),
		validatorRegistry:   make(map[string]ValidatorInfo, len(s.validatorRegistry)),
		deviceIDs:           make(map[string]bool, len(s.deviceIDs)),
		lastHeartbeat:       make(map[string]float64, len(s.lastHeartbeat)),
		attestations:        make(map[int64]map[string]bool, len(s.attestations)),
		timeoutVotes:        make(map[timeoutVoteKey]map[string]*TimeoutVoteRecord, len(s.timeoutVotes)),
		timeoutCerts:        make(map[timeoutVoteKey]bool, len(s.timeoutCerts)),
		finalityCheckpoints: append([]int64(nil), s.finalityCheckpoints...),
		blocksByHeight:      make(map[int64]*Block, len(s.blocksByHeight)),
		blocksByHash:        make(map[string]*Block, len(s.blocksByHash)),
	}
	for k, v := range s.balances {
		c.balances[k] = v
	}
	for k, v := range s.nonces {
		c.nonces[k] = v
	}
	for k, v := range s.validatorRegistry {
		c.validatorRegistry[k] = v
	}
	for k, v := range s.deviceIDs {
		c.deviceIDs[k] = v
	}
	for k, v := range s.lastHeartbeat {
		c.lastHeartbeat[k] = v
	}
	for epoch, seen := range s.attestations {
		cp := make(map[string]bool, len(seen))
		for addr, ok := range seen {
			cp[addr] = ok
		}
		c.attestations[epoch] = cp
	}
	for key, votes := range s.timeoutVotes {
		cp := make(map[string]*TimeoutVoteRecord, len(votes))
		for addr, v := range votes {
			cp[addr] = v
		}
		c.timeoutVotes[key] = cp
	}
	for key, v := range s.timeoutCerts {
		c.timeoutCerts[key] = v
	}
	for k, v := range s.blocksByHeight {
		c.blocksByHeight[k] = v
	}
	for k, v := range s.blocksByHash {
		c.blocksByHash[k] = v
	}
	return c
}

// applyTransaction dispatches tx to its variant-specific effect. It
// assumes tx has already passed transaction.Verify (signature) at the
// node/mempool boundary but re-checks it here too, since a block may
// arrive directly from a peer without having passed through the mempool.
func (s *state) applyTransaction(tx *transaction.Transaction, block *Block) error {
	if err := tx.Verify(); err != nil {
		return err
	}
	if err := tx.IsValid(stateBalances{s}, stateNonces{s}); err != nil {
		return err
	}

	switch tx.Type {
	case transaction.TypeTransfer:
		s.applyTransfer(tx)
	case transaction.TypeValidatorRegistration:
		if err := s.applyValidatorRegistration(tx, block.Height); err != nil {
			return err
		}
	case transaction.TypeValidatorHeartbeat:
		s.applyHeartbeat(tx)
	case transaction.TypeEpochAttestation:
		if err := s.applyEpochAttestation(tx); err != nil {
			return err
		}
	case transaction.TypeTimeoutVote:
		if err := s.applyTimeoutVote(tx); err != nil {
			return err
		}
	case transaction.TypeTimeoutCertificate:
		if err := s.applyTimeoutCertificate(tx); err != nil {
			return err
		}
	default:
		return ledgerError(ErrInvalidTransaction, "unknown tx type "+string(tx.Type))
	}

	if tx.AdvancesNonce() {
		s.nonces[tx.Sender]++
	}
	return nil
}

func (s *state) applyTransfer(tx *transaction.Transaction) {
	s.balances[tx.Sender] -= tx.Amount + tx.Fee
	s.balances[tx.Recipient] += tx.Amount
	s.rewardPool += tx.Fee
}

func (s *state) applyValidatorRegistration(tx *transaction.Transaction, height int64) error {
	if s.deviceIDs[tx.DeviceID] {
		return ledgerError(ErrDuplicateDeviceID, tx.DeviceID)
	}
	s.deviceIDs[tx.DeviceID] = true
	s.validatorRegistry[tx.Sender] = ValidatorInfo{
		Address:          tx.Sender,
		PublicKey:        tx.PublicKey,
		DeviceID:         tx.DeviceID,
		Power:            1,
		RegisteredHeight: height,
	}
	s.validatorSet = append(s.validatorSet, tx.Sender)
	return nil
}

func (s *state) applyHeartbeat(tx *transaction.Transaction) {
	s.lastHeartbeat[tx.Sender] = tx.Timestamp
}

func (s *state) applyEpochAttestation(tx *transaction.Transaction) error {
	epoch := *tx.EpochNumber
	if !s.committeeForEpoch(epoch)[tx.Sender] {
		return ledgerError(ErrNotInCommittee, fmt.Sprintf("sender=%s epoch=%d", tx.Sender, epoch))
	}
	seen, ok := s.attestations[epoch]
	if !ok {
		seen = make(map[string]bool)
		s.attestations[epoch] = seen
	}
	seen[tx.Sender] = true
	return nil
}

func (s *state) applyTimeoutVote(tx *transaction.Transaction) error {
	v := tx.TimeoutVote
	if err := verifyTimeoutVoteSignature(v); err != nil {
		return err
	}
	key := timeoutVoteKey{Height: v.Height, Round: v.Round}
	votes, ok := s.timeoutVotes[key]
	if !ok {
		votes = make(map[string]*TimeoutVoteRecord)
		s.timeoutVotes[key] = votes
	}
	votes[v.Voter] = &TimeoutVoteRecord{Voter: v.Voter, VoteTimestamp: v.VoteTimestamp}
	return nil
}

func (s *state) applyTimeoutCertificate(tx *transaction.Transaction) error {
	c := tx.TimeoutCert
	seen := make(map[string]bool, len(c.Votes))
	var power int64
	for _, v := range c.Votes {
		if err := verifyTimeoutVoteSignature(&v); err != nil {
			return ledgerError(ErrBadVoteSignature, v.Voter)
		}
		if seen[v.Voter] {
			continue
		}
		seen[v.Voter] = true
		power += s.validatorRegistry[v.Voter].Power
	}
	total := s.totalValidatorPower()
	if total > 0 && 3*power < 2*total {
		return ledgerError(ErrQuorumNotMet, fmt.Sprintf("%d/%d", power, total))
	}
	key := timeoutVoteKey{Height: c.Height, Round: c.Round}
	s.timeoutCerts[key] = true
	return nil
}

// verifyTimeoutVoteSignature checks a timeout vote's ECDSA signature over
// (height, round, proposer, voter, vote_timestamp).
func verifyTimeoutVoteSignature(v *transaction.TimeoutVoteData) error {
	if v.VoterPublicKey == "" || v.VoteSignature == "" {
		return ledgerError(ErrBadVoteSignature, "missing public key or signature")
	}
	preimage := fmt.Sprintf("%d%d%s%s%d", v.Height, v.Round, v.Proposer, v.Voter, v.VoteTimestamp)
	digest := crypto.SHA256([]byte(preimage))
	pubBytes, err := hex.DecodeString(v.VoterPublicKey)
	if err != nil {
		return ledgerError(ErrBadVoteSignature, "invalid public key encoding")
	}
	sigBytes, err := hex.DecodeString(v.VoteSignature)
	if err != nil {
		return ledgerError(ErrBadVoteSignature, "invalid signature encoding")
	}
	if !crypto.Verify(pubBytes, digest[:], sigBytes) {
		return ledgerError(ErrBadVoteSignature, "")
	}
	return nil
}
