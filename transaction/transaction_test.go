// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transaction_test

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/timpalnet/timpal-node/crypto"
	"github.com/timpalnet/timpal-node/transaction"
)

type fakeLedger struct {
	balances map[string]int64
	nonces   map[string]uint64
}

func (l *fakeLedger) Balance(addr string) int64 { return l.balances[addr] }
func (l *fakeLedger) Nonce(addr string) uint64   { return l.nonces[addr] }

func newKeyPair(t *testing.T) ([]byte, string, string) {
	t.Helper()
	var priv [crypto.PrivateKeyLen]byte
	for {
		if _, err := rand.Read(priv[:]); err != nil {
			t.Fatalf("rand.Read: %v", err)
		}
		pub, err := crypto.PrivateKeyToPublic(priv[:])
		if err != nil {
			continue
		}
		addr, err := crypto.AddressFromPublicKey(pub[:])
		if err != nil {
			t.Fatalf("AddressFromPublicKey: %v", err)
		}
		return priv[:], hex.EncodeToString(pub[:]), addr
	}
}

func signedTransfer(t *testing.T, priv []byte, pubHex, sender, recipient string, amount, fee int64, nonce uint64) *transaction.Transaction {
	t.Helper()
	tx := &transaction.Transaction{
		Type:      transaction.TypeTransfer,
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Fee:       fee,
		Timestamp: 1_700_000_000,
		Nonce:     nonce,
		PublicKey: pubHex,
	}
	if err := tx.Sign(priv); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return tx
}

func TestTransferSignVerifyRoundTrip(t *testing.T) {
	priv, pubHex, addr := newKeyPair(t)
	tx := signedTransfer(t, priv, pubHex, addr, "tmplrecipientrecipientrecipientrecipient111", 1000, 50_000, 0)
	if err := tx.Verify(); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestTransferVerifyRejectsSenderMismatch(t *testing.T) {
	priv, pubHex, _ := newKeyPair(t)
	tx := signedTransfer(t, priv, pubHex, "tmplsomeoneelsesomeoneelsesomeoneelsesome11", "tmplrecipientrecipientrecipientrecipient111", 1000, 50_000, 0)
	if err := tx.Verify(); !errors.Is(err, transaction.ErrSenderMismatch) {
		t.Fatalf("Verify error = %v, want ErrSenderMismatch", err)
	}
}

func TestTransferAmountAtCapSucceeds(t *testing.T) {
	priv, pubHex, addr := newKeyPair(t)
	const maxAmount = 1_000_000 * 100_000_000
	transaction.Configure(maxAmount, 50_000)
	tx := signedTransfer(t, priv, pubHex, addr, "tmplrecipientrecipientrecipientrecipient111", maxAmount, 50_000, 0)
	ledger := &fakeLedger{
		balances: map[string]int64{addr: maxAmount + 50_000},
		nonces:   map[string]uint64{addr: 0},
	}
	if err := tx.IsValid(ledger, ledger); err != nil {
		t.Fatalf("IsValid at cap = %v, want nil", err)
	}
}

func TestTransferAmountOverCapRejected(t *testing.T) {
	priv, pubHex, addr := newKeyPair(t)
	const maxAmount = 1_000_000 * 100_000_000
	transaction.Configure(maxAmount, 50_000)
	tx := signedTransfer(t, priv, pubHex, addr, "tmplrecipientrecipientrecipientrecipient111", maxAmount+1, 50_000, 0)
	ledger := &fakeLedger{
		balances: map[string]int64{addr: maxAmount + 50_001},
		nonces:   map[string]uint64{addr: 0},
	}
	if err := tx.IsValid(ledger, ledger); !errors.Is(err, transaction.ErrInvalidAmount) {
		t.Fatalf("IsValid over cap = %v, want ErrInvalidAmount", err)
	}
}

func TestTransferSelfTransferRejected(t *testing.T) {
	transaction.Configure(1_000_000*100_000_000, 50_000)
	priv, pubHex, addr := newKeyPair(t)
	tx := signedTransfer(t, priv, pubHex, addr, addr, 1000, 50_000, 0)
	ledger := &fakeLedger{
		balances: map[string]int64{addr: 100_000_000},
		nonces:   map[string]uint64{addr: 0},
	}
	if err := tx.IsValid(ledger, ledger); !errors.Is(err, transaction.ErrSelfTransfer) {
		t.Fatalf("IsValid self-transfer = %v, want ErrSelfTransfer", err)
	}
}

func TestTransferBadNonceRejected(t *testing.T) {
	transaction.Configure(1_000_000*100_000_000, 50_000)
	priv, pubHex, addr := newKeyPair(t)
	tx := signedTransfer(t, priv, pubHex, addr, "tmplrecipientrecipientrecipientrecipient111", 1000, 50_000, 5)
	ledger := &fakeLedger{
		balances: map[string]int64{addr: 100_000_000},
		nonces:   map[string]uint64{addr: 0},
	}
	if err := tx.IsValid(ledger, ledger); !errors.Is(err, transaction.ErrBadNonce) {
		t.Fatalf("IsValid bad nonce = %v, want ErrBadNonce", err)
	}
}

func TestTransferInsufficientBalanceRejected(t *testing.T) {
	transaction.Configure(1_000_000*100_000_000, 50_000)
	priv, pubHex, addr := newKeyPair(t)
	tx := signedTransfer(t, priv, pubHex, addr, "tmplrecipientrecipientrecipientrecipient111", 1000, 50_000, 0)
	ledger := &fakeLedger{
		balances: map[string]int64{addr: 1000},
		nonces:   map[string]uint64{addr: 0},
	}
	if err := tx.IsValid(ledger, ledger); !errors.Is(err, transaction.ErrInsufficientBalance) {
		t.Fatalf("IsValid insufficient balance = %v, want ErrInsufficientBalance", err)
	}
}

func TestTransferWrongFeeRejected(t *testing.T) {
	transaction.Configure(1_000_000*100_000_000, 50_000)
	priv, pubHex, addr := newKeyPair(t)
	tx := signedTransfer(t, priv, pubHex, addr, "tmplrecipientrecipientrecipientrecipient111", 1000, 1, 0)
	ledger := &fakeLedger{
		balances: map[string]int64{addr: 100_000_000},
		nonces:   map[string]uint64{addr: 0},
	}
	if err := tx.IsValid(ledger, ledger); !errors.Is(err, transaction.ErrInvalidFee) {
		t.Fatalf("IsValid wrong fee = %v, want ErrInvalidFee", err)
	}
}

func TestValidatorRegistrationDeviceIDShapes(t *testing.T) {
	priv, pubHex, addr := newKeyPair(t)

	digest := crypto.SHA256([]byte("device-fingerprint"))
	tx := &transaction.Transaction{
		Type:      transaction.TypeValidatorRegistration,
		Sender:    addr,
		PublicKey: pubHex,
		DeviceID:  hex.EncodeToString(digest[:]),
		Timestamp: 1_700_000_000,
		Nonce:     0,
	}
	if err := tx.Sign(priv); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	ledger := &fakeLedger{nonces: map[string]uint64{addr: 0}}
	if err := tx.IsValid(ledger, ledger); err != nil {
		t.Fatalf("IsValid with 64-hex device id = %v, want nil", err)
	}

	legacyTx := &transaction.Transaction{
		Type:      transaction.TypeValidatorRegistration,
		Sender:    addr,
		PublicKey: pubHex,
		DeviceID:  addr, // legacy tmpl+44hex shape
		Timestamp: 1_700_000_000,
		Nonce:     0,
	}
	if err := legacyTx.Sign(priv); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := legacyTx.IsValid(ledger, ledger); err != nil {
		t.Fatalf("IsValid with legacy address device id = %v, want nil", err)
	}

	badTx := &transaction.Transaction{
		Type:      transaction.TypeValidatorRegistration,
		Sender:    addr,
		PublicKey: pubHex,
		DeviceID:  "not-a-valid-device-id",
		Timestamp: 1_700_000_000,
		Nonce:     0,
	}
	if err := badTx.Sign(priv); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if err := badTx.IsValid(ledger, ledger); !errors.Is(err, transaction.ErrInvalidDeviceID) {
		t.Fatalf("IsValid with malformed device id = %v, want ErrInvalidDeviceID", err)
	}
}

func TestHeartbeatAndAttestationRejectNonZeroAmount(t *testing.T) {
	epoch := int64(3)
	heartbeat := &transaction.Transaction{Type: transaction.TypeValidatorHeartbeat, Amount: 1}
	if err := heartbeat.IsValid(nil, nil); !errors.Is(err, transaction.ErrInvalidAmount) {
		t.Fatalf("heartbeat IsValid = %v, want ErrInvalidAmount", err)
	}
	attestation := &transaction.Transaction{Type: transaction.TypeEpochAttestation, EpochNumber: &epoch, Fee: 1}
	if err := attestation.IsValid(nil, nil); !errors.Is(err, transaction.ErrInvalidAmount) {
		t.Fatalf("attestation IsValid = %v, want ErrInvalidAmount", err)
	}
}

func TestTimeoutVoteIdentityMismatchRejected(t *testing.T) {
	tx := &transaction.Transaction{
		Type:   transaction.TypeTimeoutVote,
		Sender: "tmplvoteraddressvoteraddressvoteraddress111",
		TimeoutVote: &transaction.TimeoutVoteData{
			Height:        10,
			Round:         1,
			Proposer:      "tmplproposer",
			Voter:         "tmplsomeoneelse",
			VoteTimestamp: 1_700_000_000,
		},
	}
	if err := tx.IsValid(nil, nil); !errors.Is(err, transaction.ErrIdentityMismatch) {
		t.Fatalf("IsValid = %v, want ErrIdentityMismatch", err)
	}
}

func TestUnknownTxTypeRejected(t *testing.T) {
	tx := &transaction.Transaction{Type: "not_a_real_type"}
	if err := tx.IsValid(nil, nil); !errors.Is(err, transaction.ErrUnknownTxType) {
		t.Fatalf("IsValid = %v, want ErrUnknownTxType", err)
	}
}

func TestHashIsStableAcrossCalls(t *testing.T) {
	priv, pubHex, addr := newKeyPair(t)
	tx := signedTransfer(t, priv, pubHex, addr, "tmplrecipientrecipientrecipientrecipient111", 1000, 50_000, 0)
	h1 := tx.Hash()
	h2 := tx.Hash()
	if h1 != h2 {
		t.Fatalf("Hash is not stable: %q != %q", h1, h2)
	}
}
