// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transaction implements the six typed transaction shapes that
// make up the ledger's state-transition alphabet: transfer,
// validator_registration, validator_heartbeat, epoch_attestation,
// timeout_vote, and timeout_certificate. The set is closed — a tagged
// struct dispatched on Type, not an open interface hierarchy, per the
// "variant polymorphism over transactions" design note.
package transaction

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/timpalnet/timpal-node/crypto"
	"github.com/timpalnet/timpal-node/dcrutil"
)

// Type tags which of the six variants a Transaction carries.
type Type string

// The six transaction variants.
const (
	TypeTransfer               Type = "transfer"
	TypeValidatorRegistration  Type = "validator_registration"
	TypeValidatorHeartbeat     Type = "validator_heartbeat"
	TypeEpochAttestation       Type = "epoch_attestation"
	TypeTimeoutVote            Type = "timeout_vote"
	TypeTimeoutCertificate     Type = "timeout_certificate"
)

// TimeoutVoteData is the inner payload of a timeout_vote transaction.
type TimeoutVoteData struct {
	Height         int64  `json:"height"`
	Round          int64  `json:"round"`
	Proposer       string `json:"proposer"`
	Voter          string `json:"voter"`
	VoteTimestamp  int64  `json:"vote_timestamp"`
	VoterPublicKey string `json:"voter_public_key"`
	VoteSignature  string `json:"vote_signature"`
}

// TimeoutCertData is the inner payload of a timeout_certificate
// transaction: an aggregation of timeout votes authorizing a stalled
// proposer to be skipped.
type TimeoutCertData struct {
	Height           int64             `json:"height"`
	Round            int64             `json:"round"`
	Proposer         string            `json:"proposer"`
	Votes            []TimeoutVoteData `json:"votes"`
	AggregatedPower  int64             `json:"aggregated_power"`
	Issuer           string            `json:"issuer"`
}

// Transaction is the closed sum type over the six wire shapes. Only the
// fields relevant to Type are meaningful for a given instance; the rest are
// left at their zero value.
type Transaction struct {
	Type Type `json:"tx_type"`

	Sender    string `json:"sender"`
	Recipient string `json:"recipient,omitempty"`
	Amount    int64  `json:"amount"`
	Fee       int64  `json:"fee"`
	Timestamp float64 `json:"timestamp"`
	Nonce     uint64 `json:"nonce"`

	PublicKey string `json:"public_key,omitempty"`
	Signature string `json:"signature,omitempty"`

	// validator_registration
	DeviceID string `json:"device_id,omitempty"`

	// epoch_attestation
	EpochNumber *int64 `json:"epoch_number,omitempty"`

	// timeout_vote / timeout_certificate
	TimeoutVote *TimeoutVoteData `json:"timeout_vote_data,omitempty"`
	TimeoutCert *TimeoutCertData `json:"timeout_cert_data,omitempty"`

	// TxHash caches the canonical hash; it is computed on demand by Hash
	// and never part of the signed preimage.
	TxHash string `json:"tx_hash,omitempty"`
}

// Hash returns the canonical SHA-256 hash of the transaction's semantic
// fields, hex encoded. The preimage never includes the signature, and its
// shape is dispatched per variant exactly as the reference implementation
// computes it, so that independently-built nodes agree byte for byte.
func (tx *Transaction) Hash() string {
	var preimage string
	switch tx.Type {
	case TypeValidatorRegistration:
		preimage = fmt.Sprintf("%s%s%s%s%s%d", tx.Type, tx.Sender, tx.PublicKey, tx.DeviceID, formatTimestamp(tx.Timestamp), tx.Nonce)
	case TypeValidatorHeartbeat:
		preimage = fmt.Sprintf("%s%s%s", tx.Type, tx.Sender, formatTimestamp(tx.Timestamp))
	case TypeEpochAttestation:
		epoch := ""
		if tx.EpochNumber != nil {
			epoch = strconv.FormatInt(*tx.EpochNumber, 10)
		}
		preimage = fmt.Sprintf("%s%s%s%s", tx.Type, tx.Sender, epoch, formatTimestamp(tx.Timestamp))
	case TypeTimeoutVote:
		if tx.TimeoutVote != nil {
			v := tx.TimeoutVote
			preimage = fmt.Sprintf("%s%d%d%s%s%d", tx.Type, v.Height, v.Round, v.Proposer, v.Voter, v.VoteTimestamp)
		} else {
			preimage = fmt.Sprintf("%s%s%s", tx.Type, tx.Sender, formatTimestamp(tx.Timestamp))
		}
	case TypeTimeoutCertificate:
		if tx.TimeoutCert != nil {
			c := tx.TimeoutCert
			sigs := make([]string, 0, len(c.Votes))
			for _, v := range c.Votes {
				sigs = append(sigs, v.VoteSignature)
			}
			sort.Strings(sigs)
			preimage = fmt.Sprintf("%s%d%d%s%s%d", tx.Type, c.Height, c.Round, c.Proposer, strings.Join(sigs, ""), c.AggregatedPower)
		} else {
			preimage = fmt.Sprintf("%s%s%s", tx.Type, tx.Sender, formatTimestamp(tx.Timestamp))
		}
	default:
		// transfer, and the default dispatch for unrecognized types so
		// Hash is always total.
		preimage = fmt.Sprintf("%s%s%s%d%d%s%d", tx.Type, tx.Sender, tx.Recipient, tx.Amount, tx.Fee, formatTimestamp(tx.Timestamp), tx.Nonce)
	}
	digest := crypto.SHA256([]byte(preimage))
	return hex.EncodeToString(digest[:])
}

// formatTimestamp renders the timestamp exactly as the preimage expects:
// integral timestamps with a trailing ".0" and fractional timestamps
// with their decimal digits, matching Python's str(float) used by the
// original hash preimages.
func formatTimestamp(ts float64) string {
	if ts == float64(int64(ts)) {
		return strconv.FormatInt(int64(ts), 10) + ".0"
	}
	return strconv.FormatFloat(ts, 'g', -1, 64)
}

// Sign computes tx.Hash() and signs it with priv, storing the result as a
// hex-encoded signature on the transaction.
func (tx *Transaction) Sign(priv []byte) error {
	hash := tx.Hash()
	hashBytes, err := hex.DecodeString(hash)
	if err != nil {
		return err
	}
	sig, err := crypto.Sign(priv, hashBytes)
	if err != nil {
		return err
	}
	tx.TxHash = hash
	tx.Signature = hex.EncodeToString(sig)
	return nil
}

// Verify checks that: (1) a signature and public key are present, (2) the
// address recomputed from the public key equals the sender, and (3) the
// ECDSA signature verifies over the canonical hash.
func (tx *Transaction) Verify() error {
	if tx.Signature == "" || tx.PublicKey == "" {
		return txError(ErrMissingSignature, "")
	}
	expectedAddr, err := crypto.AddressFromPublicKeyHex(tx.PublicKey)
	if err != nil {
		return txError(ErrInvalidPublicKey, err.Error())
	}
	if expectedAddr != tx.Sender {
		return txError(ErrSenderMismatch, fmt.Sprintf("got %s want %s", tx.Sender, expectedAddr))
	}
	pubBytes, err := hex.DecodeString(tx.PublicKey)
	if err != nil {
		return txError(ErrInvalidPublicKey, err.Error())
	}
	hashBytes, err := hex.DecodeString(tx.Hash())
	if err != nil {
		return err
	}
	sigBytes, err := hex.DecodeString(tx.Signature)
	if err != nil {
		return txError(ErrBadSignature, err.Error())
	}
	if !crypto.Verify(pubBytes, hashBytes, sigBytes) {
		return txError(ErrBadSignature, "")
	}
	return nil
}

// Balances is the minimal view of ledger balances IsValid needs.
type Balances interface {
	Balance(address string) int64
}

// Nonces is the minimal view of ledger nonces IsValid needs.
type Nonces interface {
	Nonce(address string) uint64
}

// IsValid dispatches to the variant-specific validity rule. balances and
// nonces may be nil for variants that don't consult them (heartbeat,
// attestation structural checks, timeout message structural checks);
// deeper semantic checks (committee membership, quorum, duplicate
// device_id) are the ledger's responsibility, not this package's, per
// spec: "reported failure is always a plain invalid decision; the caller
// decides the disposition."
func (tx *Transaction) IsValid(balances Balances, nonces Nonces) error {
	switch tx.Type {
	case TypeValidatorRegistration:
		return tx.isValidValidatorRegistration(nonces)
	case TypeValidatorHeartbeat:
		return tx.isValidHeartbeat()
	case TypeEpochAttestation:
		return tx.isValidEpochAttestation()
	case TypeTimeoutVote:
		return tx.isValidTimeoutVote()
	case TypeTimeoutCertificate:
		return tx.isValidTimeoutCertificate()
	case TypeTransfer:
		return tx.isValidTransfer(balances, nonces)
	default:
		return txError(ErrUnknownTxType, string(tx.Type))
	}
}

// MaxTransactionAmount and Fee are package-level validation parameters set
// once at process startup from chaincfg.Params. They are deliberately
// package state (not globals reached for convenience elsewhere) because
// every other collaborator threads a *chaincfg.Params explicitly; only the
// free functions here need a narrow, explicit seam to stay protocol-aware
// without importing chaincfg and creating a cycle (chaincfg has no
// business importing transaction).
var (
	maxTransactionAmount int64 = 1_000_000 * dcrutil.PalsPerTMPL
	protocolFee          int64 = 50_000
)

// Configure sets the protocol parameters this package's validity rules
// consult. Call it once at startup with the active chaincfg.Params' values.
func Configure(maxAmount, fee int64) {
	maxTransactionAmount = maxAmount
	protocolFee = fee
}

const maxInt63 = 1<<63 - 1

func (tx *Transaction) isValidTransfer(balances Balances, nonces Nonces) error {
	if tx.Amount <= 0 {
		return txError(ErrInvalidAmount, "amount must be positive")
	}
	if tx.Amount > maxTransactionAmount {
		return txError(ErrInvalidAmount, "amount exceeds cap")
	}
	if tx.Amount > maxInt63 {
		return txError(ErrInvalidAmount, "amount overflows int63")
	}
	if tx.Fee != protocolFee {
		return txError(ErrInvalidFee, "")
	}
	if tx.Sender == tx.Recipient {
		return txError(ErrSelfTransfer, "")
	}
	if balances != nil {
		if balances.Balance(tx.Sender) < tx.Amount+tx.Fee {
			return txError(ErrInsufficientBalance, "")
		}
	}
	if nonces != nil {
		if tx.Nonce != nonces.Nonce(tx.Sender) {
			return txError(ErrBadNonce, fmt.Sprintf("got %d want %d", tx.Nonce, nonces.Nonce(tx.Sender)))
		}
	}
	return nil
}

func (tx *Transaction) isValidValidatorRegistration(nonces Nonces) error {
	if tx.PublicKey == "" || tx.DeviceID == "" {
		return txError(ErrMissingFields, "public_key and device_id required")
	}
	expectedAddr, err := crypto.AddressFromPublicKeyHex(tx.PublicKey)
	if err != nil {
		return txError(ErrInvalidPublicKey, err.Error())
	}
	if tx.Sender != expectedAddr {
		return txError(ErrSenderMismatch, "")
	}
	if len(tx.PublicKey) != 128 {
		return txError(ErrInvalidPublicKey, "must be 128 hex characters")
	}
	if _, err := hex.DecodeString(tx.PublicKey); err != nil {
		return txError(ErrInvalidPublicKey, "must be valid hex")
	}
	if !isValidDeviceID(tx.DeviceID) {
		return txError(ErrInvalidDeviceID, "")
	}
	if nonces != nil {
		if tx.Nonce != nonces.Nonce(tx.Sender) {
			return txError(ErrBadNonce, "")
		}
	}
	return nil
}

// isValidDeviceID accepts either a 64-hex SHA-256 digest (the canonical
// shape produced by new clients) or a legacy "tmpl"+44hex wallet address
// (48 characters) kept for backward compatibility with validators that
// registered before device fingerprinting existed.
func isValidDeviceID(deviceID string) bool {
	if len(deviceID) == 64 {
		_, err := hex.DecodeString(deviceID)
		return err == nil
	}
	if len(deviceID) == 48 && strings.HasPrefix(deviceID, crypto.AddressPrefix) {
		_, err := hex.DecodeString(deviceID[len(crypto.AddressPrefix):])
		return err == nil
	}
	return false
}

func (tx *Transaction) isValidHeartbeat() error {
	if tx.Amount != 0 || tx.Fee != 0 {
		return txError(ErrInvalidAmount, "heartbeats must carry zero amount and fee")
	}
	// Deliberately no comparison of tx.Timestamp against wall-clock time:
	// historical blocks must replay cleanly during sync.
	return nil
}

func (tx *Transaction) isValidEpochAttestation() error {
	if tx.Amount != 0 || tx.Fee != 0 {
		return txError(ErrInvalidAmount, "attestations must carry zero amount and fee")
	}
	if tx.EpochNumber == nil {
		return txError(ErrMissingFields, "epoch_number required")
	}
	if *tx.EpochNumber < 0 {
		return txError(ErrNegativeField, "epoch_number")
	}
	return nil
}

func (tx *Transaction) isValidTimeoutVote() error {
	if tx.Amount != 0 || tx.Fee != 0 {
		return txError(ErrInvalidAmount, "timeout votes must carry zero amount and fee")
	}
	v := tx.TimeoutVote
	if v == nil {
		return txError(ErrMissingFields, "timeout_vote_data required")
	}
	if v.Height < 0 || v.Round < 0 {
		return txError(ErrNegativeField, "height or round")
	}
	if v.Voter != tx.Sender {
		return txError(ErrIdentityMismatch, "voter must equal sender")
	}
	return nil
}

func (tx *Transaction) isValidTimeoutCertificate() error {
	if tx.Amount != 0 || tx.Fee != 0 {
		return txError(ErrInvalidAmount, "timeout certificates must carry zero amount and fee")
	}
	c := tx.TimeoutCert
	if c == nil {
		return txError(ErrMissingFields, "timeout_cert_data required")
	}
	if c.Height < 0 || c.Round < 0 {
		return txError(ErrNegativeField, "height or round")
	}
	if len(c.Votes) == 0 {
		return txError(ErrMissingFields, "at least one vote required")
	}
	if c.AggregatedPower <= 0 {
		return txError(ErrNegativeField, "aggregated_power must be positive")
	}
	if c.Issuer != tx.Sender {
		return txError(ErrIdentityMismatch, "issuer must equal sender")
	}
	// Quorum (>=2/3 stake-weighted power) and per-vote signature
	// verification happen in the ledger, which has access to the
	// validator stake registry; this is structural validation only.
	return nil
}

// AdvancesNonce reports whether applying tx should increment
// nonces[tx.Sender]. Only transfer and validator_registration do;
// heartbeats, attestations, and timeout messages are nonce-exempt.
func (tx *Transaction) AdvancesNonce() bool {
	return tx.Type == TypeTransfer || tx.Type == TypeValidatorRegistration
}
