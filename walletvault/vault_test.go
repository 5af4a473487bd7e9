// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package walletvault_test

import (
	"errors"
	"testing"

	"github.com/timpalnet/timpal-node/hdkeychain"
	"github.com/timpalnet/timpal-node/walletvault"
)

func testPhrase(t *testing.T) string {
	t.Helper()
	phrase, err := hdkeychain.NewMnemonic()
	if err != nil {
		t.Fatalf("NewMnemonic: %v", err)
	}
	return phrase
}

func TestNewVaultRejectsInvalidPhrase(t *testing.T) {
	_, err := walletvault.NewVault("not a valid mnemonic", "hunter2hunter2", "m/44'/4007'/0'/0/0")
	if !errors.Is(err, walletvault.ErrInvalidPhrase) {
		t.Fatalf("NewVault with garbage phrase = %v, want ErrInvalidPhrase", err)
	}
}

func TestVaultUnlockRoundTrip(t *testing.T) {
	phrase := testPhrase(t)
	v, err := walletvault.NewVault(phrase, "correct horse battery staple", "m/44'/4007'/0'/0/0")
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	got, err := v.Unlock("correct horse battery staple")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if got != phrase {
		t.Fatalf("Unlock returned %q, want %q", got, phrase)
	}
}

func TestVaultUnlockWrongPassword(t *testing.T) {
	phrase := testPhrase(t)
	v, err := walletvault.NewVault(phrase, "correct horse battery staple", "m/44'/4007'/0'/0/0")
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	if _, err := v.Unlock("wrong password entirely"); !errors.Is(err, walletvault.ErrWrongPassword) {
		t.Fatalf("Unlock with wrong password = %v, want ErrWrongPassword", err)
	}
}

func TestSetPINAndValidate(t *testing.T) {
	phrase := testPhrase(t)
	v, err := walletvault.NewVault(phrase, "a reasonably strong password", "m/44'/4007'/0'/0/0")
	if err != nil {
		t.Fatalf("NewVault: %v", err)
	}

	if err := v.SetPIN("12345"); !errors.Is(err, walletvault.ErrInvalidPin) {
		t.Fatalf("SetPIN with 5 digits = %v, want ErrInvalidPin", err)
	}
	if err := v.SetPIN("483920"); err != nil {
		t.Fatalf("SetPIN: %v", err)
	}
	if !v.ValidatePIN("483920") {
		t.Fatal("ValidatePIN rejected the PIN that was just set")
	}
	if v.ValidatePIN("000000") {
		t.Fatal("ValidatePIN accepted a wrong PIN")
	}
}

func TestImportLegacyPath(t *testing.T) {
	if got := walletvault.ImportLegacy(3); got != "legacy/imported/3" {
		t.Fatalf("ImportLegacy(3) = %q, want legacy/imported/3", got)
	}
}
