// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

// ValidatorInfo is the registry entry created by a successful
// validator_registration.
type ValidatorInfo struct {
	Address          string
	PublicKey        string
	DeviceID         string
	Power            int64
	RegisteredHeight int64
}

// timeoutVoteKey identifies the timeout round a vote belongs to.
type timeoutVoteKey struct {
	Height int64
	Round  int64
}

// state is the ledger's single mutable structure. It is only ever touched
// from the actor goroutine started by New, mirroring the mempool's
// single-writer store.
type state struct {
	height  int64 // height of the last applied block; -1 before genesis
	tipHash string

	balances map[string]int64
	nonces   map[string]uint64

	totalEmittedPals int64
	rewardPool       int64

	validatorSet      []string // insertion-ordered addresses, ranked list for TSW
	validatorRegistry map[string]ValidatorInfo
	deviceIDs         map[string]bool

	lastHeartbeat map[string]float64
	attestations  map[int64]map[string]bool // epoch -> sender -> seen

	timeoutVotes map[timeoutVoteKey]map[string]*TimeoutVoteRecord
	timeoutCerts map[timeoutVoteKey]bool

	finalityCheckpoints []int64 // ascending heights treated as immovable

	blocksByHeight map[int64]*Block
	blocksByHash   map[string]*Block
}

// TimeoutVoteRecord is a verified timeout_vote accumulated toward quorum
// for a given (height, round).
type TimeoutVoteRecord struct {
	Voter         string
	VoteTimestamp int64
}

func newState() *state {
	return &state{
		height:              -1,
		balances:            make(map[string]int64),
		nonces:              make(map[string]uint64),
		validatorRegistry:   make(map[string]ValidatorInfo),
		deviceIDs:           make(map[string]bool),
		lastHeartbeat:       make(map[string]float64),
		attestations:        make(map[int64]map[string]bool),
		timeoutVotes:        make(map[timeoutVoteKey]map[string]*TimeoutVoteRecord),
		timeoutCerts:        make(map[timeoutVoteKey]bool),
		finalityCheckpoints: nil,
		blocksByHeight:      make(map[int64]*Block),
		blocksByHash:        make(map[string]*Block),
	}
}

func (s *state) balance(addr string) int64 {
	return s.balances[addr]
}

func (s *state) nonce(addr string) uint64 {
	return s.nonces[addr]
}

// totalValidatorPower sums the power of every currently registered
// validator; it is the denominator for stake-weighted quorum checks.
func (s *state) totalValidatorPower() int64 {
	var total int64
	for _, addr := range s.validatorSet {
		total += s.validatorRegistry[addr].Power
	}
	return total
}

// committeeForEpoch returns the committee responsible for attesting to
// epochNumber. No committee-subsampling rule is specified, so every
// currently registered validator is the committee for every epoch.
func (s *state) committeeForEpoch(epochNumber int64) map[string]bool {
	committee := make(map[string]bool, len(s.validatorSet))
	for _, addr := range s.validatorSet {
		committee[addr] = true
	}
	return committee
}

// lastCheckpoint returns the highest finality checkpoint, or -1 if none
// has been recorded yet.
func (s *state) lastCheckpoint() int64 {
	if len(s.finalityCheckpoints) == 0 {
		return -1
	}
	return s.finalityCheckpoints[len(s.finalityCheckpoints)-1]
}
