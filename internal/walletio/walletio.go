// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package walletio persists a walletvault.Vault to and from disk,
// shared by every cmd entry point that needs to load or create a wallet
// file without pulling in the rest of a daemon's config/logging stack.
package walletio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/timpalnet/timpal-node/hdkeychain"
	"github.com/timpalnet/timpal-node/walletvault"
)

// Load reads and decodes the vault stored at path.
func Load(path string) (*walletvault.Vault, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var vault walletvault.Vault
	if err := json.Unmarshal(data, &vault); err != nil {
		return nil, fmt.Errorf("parsing wallet file %s: %w", path, err)
	}
	return &vault, nil
}

// Create generates a new BIP-39 mnemonic, seals it under password, and
// saves the resulting vault to path.
func Create(path, password, derivationPath string) (*walletvault.Vault, string, error) {
	phrase, err := hdkeychain.NewMnemonic()
	if err != nil {
		return nil, "", fmt.Errorf("generating mnemonic: %w", err)
	}
	vault, err := walletvault.NewVault(phrase, password, derivationPath)
	if err != nil {
		return nil, "", fmt.Errorf("sealing new vault: %w", err)
	}
	if err := Save(path, vault); err != nil {
		return nil, "", err
	}
	return vault, phrase, nil
}

// Restore seals an existing mnemonic phrase under password and saves the
// resulting vault to path, overwriting anything already there.
func Restore(path, phrase, password, derivationPath string) (*walletvault.Vault, error) {
	if !hdkeychain.ValidateMnemonic(phrase) {
		return nil, fmt.Errorf("invalid seed phrase")
	}
	vault, err := walletvault.NewVault(phrase, password, derivationPath)
	if err != nil {
		return nil, fmt.Errorf("sealing restored vault: %w", err)
	}
	if err := Save(path, vault); err != nil {
		return nil, err
	}
	return vault, nil
}

// Save writes vault to path via a temp-file-plus-rename, since the
// wallet file lives outside the goleveldb-backed store and has no other
// source of write atomicity.
func Save(path string, vault *walletvault.Vault) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(vault, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".wallet-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
