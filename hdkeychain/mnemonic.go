// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hdkeychain

import (
	"errors"
	"fmt"

	"github.com/tyler-smith/go-bip39"

	"github.com/timpalnet/timpal-node/chaincfg"
	"github.com/timpalnet/timpal-node/crypto"
)

// MnemonicEntropyBits is the entropy used for newly generated mnemonics,
// producing the standard 24-word BIP0039 phrase.
const MnemonicEntropyBits = 256

// ErrInvalidMnemonic is returned when a phrase fails BIP0039 checksum
// validation.
var ErrInvalidMnemonic = errors.New("hdkeychain: invalid mnemonic phrase")

// NewMnemonic generates a new random BIP0039 mnemonic phrase at
// MnemonicEntropyBits of entropy.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(MnemonicEntropyBits)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// ValidateMnemonic reports whether phrase is a well-formed BIP0039
// mnemonic with a correct checksum.
func ValidateMnemonic(phrase string) bool {
	return bip39.IsMnemonicValid(phrase)
}

// SeedFromMnemonic derives the 512-bit BIP0039 seed from a mnemonic phrase
// and an optional passphrase, using PBKDF2-HMAC-SHA512 with 2048 rounds as
// BIP0039 specifies.
func SeedFromMnemonic(phrase, passphrase string) ([]byte, error) {
	if !bip39.IsMnemonicValid(phrase) {
		return nil, ErrInvalidMnemonic
	}
	return bip39.NewSeedWithErrorChecking(phrase, passphrase)
}

// Account is a derived leaf keypair together with the path that produced
// it.
type Account struct {
	Path       string
	PrivateKey []byte // 32-byte secp256k1 scalar
	PublicKey  []byte // 64-byte raw X||Y point, matching the crypto package's encoding
}

// DeriveAccount walks the default wallet layout
// m/44'/CoinType'/account'/change/index from a BIP0039 seed, returning the
// leaf keypair. account, change, and index follow BIP0044: account and
// change are conventionally 0 for a single-account wallet with an external
// chain, and index enumerates successive addresses.
func DeriveAccount(seed []byte, net *chaincfg.Params, account, change, index uint32) (*Account, error) {
	master, err := NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("hdkeychain: deriving master key: %w", err)
	}

	purpose, err := master.Child(HardenedKeyStart + 44)
	if err != nil {
		return nil, fmt.Errorf("hdkeychain: deriving purpose: %w", err)
	}
	coinKey, err := purpose.Child(HardenedKeyStart + net.CoinType)
	if err != nil {
		return nil, fmt.Errorf("hdkeychain: deriving coin type: %w", err)
	}
	acctKey, err := coinKey.Child(HardenedKeyStart + account)
	if err != nil {
		return nil, fmt.Errorf("hdkeychain: deriving account: %w", err)
	}
	changeKey, err := acctKey.Child(change)
	if err != nil {
		return nil, fmt.Errorf("hdkeychain: deriving change: %w", err)
	}
	leafKey, err := changeKey.Child(index)
	if err != nil {
		return nil, fmt.Errorf("hdkeychain: deriving index: %w", err)
	}

	priv, err := leafKey.PrivateKeyBytes()
	if err != nil {
		return nil, err
	}
	pub, err := crypto.PrivateKeyToPublic(priv)
	if err != nil {
		return nil, fmt.Errorf("hdkeychain: deriving public key: %w", err)
	}

	return &Account{
		Path:       fmt.Sprintf("m/44'/%d'/%d'/%d/%d", net.CoinType, account, change, index),
		PrivateKey: priv,
		PublicKey:  pub[:],
	}, nil
}
