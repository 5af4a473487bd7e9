// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"encoding/hex"

	"github.com/timpalnet/timpal-node/chaincfg"
	"github.com/timpalnet/timpal-node/crypto"
	"github.com/timpalnet/timpal-node/hdkeychain"
	"github.com/timpalnet/timpal-node/walletvault"
)

// WalletService holds one already-unlocked wallet's signing key in
// memory, serving the node's PIN-gated /send convenience endpoint. The
// encryption password is only needed once, at UnlockWallet time; every
// subsequent /send call is authorized by the lighter-weight PIN, per
// spec §4.2's "used solely to authorize outgoing transfers, distinct
// from the encryption password."
type WalletService struct {
	vault      *walletvault.Vault
	address    string
	publicKey  string
	privateKey []byte
}

// UnlockWallet decrypts vault's mnemonic with password, derives the
// default account (m/44'/CoinType'/0'/0/0), and returns a WalletService
// ready to authorize sends by PIN alone.
func UnlockWallet(vault *walletvault.Vault, password string, net *chaincfg.Params) (*WalletService, error) {
	phrase, err := vault.Unlock(password)
	if err != nil {
		return nil, err
	}
	seed, err := hdkeychain.SeedFromMnemonic(phrase, "")
	if err != nil {
		return nil, err
	}
	account, err := hdkeychain.DeriveAccount(seed, net, 0, 0, 0)
	if err != nil {
		return nil, err
	}
	address, err := crypto.AddressFromPublicKey(account.PublicKey)
	if err != nil {
		return nil, err
	}
	return &WalletService{
		vault:      vault,
		address:    address,
		publicKey:  hex.EncodeToString(account.PublicKey),
		privateKey: account.PrivateKey,
	}, nil
}

// Address is this wallet's default account address.
func (w *WalletService) Address() string {
	return w.address
}

// PublicKeyHex is this wallet's hex-encoded public key, the form every
// transaction variant's PublicKey field expects.
func (w *WalletService) PublicKeyHex() string {
	return w.publicKey
}

// AuthorizeSend reports whether pin matches the vault's stored PIN
// digest.
func (w *WalletService) AuthorizeSend(pin string) bool {
	return w.vault.ValidatePIN(pin)
}

// Sign signs tx with this wallet's derived private key.
func (w *WalletService) Sign(tx signer) error {
	return tx.Sign(w.privateKey)
}

type signer interface {
	Sign(priv []byte) error
}
