// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package hdkeychain_test

import (
	"bytes"
	"testing"

	"github.com/timpalnet/timpal-node/chaincfg"
	"github.com/timpalnet/timpal-node/hdkeychain"
)

func TestNewMnemonicIsValid(t *testing.T) {
	phrase, err := hdkeychain.NewMnemonic()
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}
	if !hdkeychain.ValidateMnemonic(phrase) {
		t.Fatalf("generated mnemonic failed its own checksum validation: %q", phrase)
	}
}

func TestValidateMnemonicRejectsGarbage(t *testing.T) {
	if hdkeychain.ValidateMnemonic("not a real bip39 mnemonic phrase at all") {
		t.Fatal("garbage phrase was accepted as valid")
	}
}

func TestSeedFromMnemonicDeterministic(t *testing.T) {
	phrase, err := hdkeychain.NewMnemonic()
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}
	seed1, err := hdkeychain.SeedFromMnemonic(phrase, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	seed2, err := hdkeychain.SeedFromMnemonic(phrase, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	if !bytes.Equal(seed1, seed2) {
		t.Fatal("deriving the seed twice from the same phrase produced different results")
	}
}

func TestSeedFromMnemonicRejectsInvalidPhrase(t *testing.T) {
	if _, err := hdkeychain.SeedFromMnemonic("definitely not valid", ""); err != hdkeychain.ErrInvalidMnemonic {
		t.Fatalf("SeedFromMnemonic on bad phrase = %v, want ErrInvalidMnemonic", err)
	}
}

func TestDeriveAccountDeterministicAndDistinctIndices(t *testing.T) {
	phrase, err := hdkeychain.NewMnemonic()
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}
	seed, err := hdkeychain.SeedFromMnemonic(phrase, "")
	if err != nil {
		t.Fatalf("SeedFromMnemonic: %v", err)
	}
	net := chaincfg.MainNetParams()

	acct0a, err := hdkeychain.DeriveAccount(seed, net, 0, 0, 0)
	if err != nil {
		t.Fatalf("DeriveAccount: %v", err)
	}
	acct0b, err := hdkeychain.DeriveAccount(seed, net, 0, 0, 0)
	if err != nil {
		t.Fatalf("DeriveAccount: %v", err)
	}
	if !bytes.Equal(acct0a.PrivateKey, acct0b.PrivateKey) {
		t.Fatal("DeriveAccount is not deterministic for the same path")
	}
	if acct0a.Path != "m/44'/4007'/0'/0/0" {
		t.Fatalf("Path = %q, want m/44'/4007'/0'/0/0", acct0a.Path)
	}

	acct1, err := hdkeychain.DeriveAccount(seed, net, 0, 0, 1)
	if err != nil {
		t.Fatalf("DeriveAccount: %v", err)
	}
	if bytes.Equal(acct0a.PrivateKey, acct1.PrivateKey) {
		t.Fatal("different indices produced the same private key")
	}
	if len(acct1.PublicKey) != 64 {
		t.Fatalf("PublicKey length = %d, want 64", len(acct1.PublicKey))
	}
}
