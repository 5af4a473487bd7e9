// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

// ValidatorInfo is the on-disk shape of a validator registry entry. It
// mirrors ledger.ValidatorInfo field-for-field but is defined separately
// so this package's persisted schema does not change shape just because
// the ledger's in-memory state does.
type ValidatorInfo struct {
	Address          string `json:"address"`
	PublicKey        string `json:"public_key"`
	DeviceID         string `json:"device_id"`
	Power            int64  `json:"power"`
	RegisteredHeight int64  `json:"registered_height"`
}

// StateSnapshot is the full non-block ledger state as persisted in the
// "state" key: balances, nonces, emission, validator registry, and
// finality checkpoints. validator_economics is carried through verbatim
// as opaque JSON since that bookkeeping is explicitly out of this
// module's scope (spec §1's external-collaborator boundary).
type StateSnapshot struct {
	Balances            map[string]int64         `json:"balances"`
	Nonces              map[string]uint64        `json:"nonces"`
	TotalEmittedPals    int64                     `json:"total_emitted_pals"`
	ValidatorSet        []string                  `json:"validator_set"`
	ValidatorRegistry   map[string]ValidatorInfo  `json:"validator_registry"`
	FinalityCheckpoints []int64                   `json:"finality_checkpoints"`
	ValidatorEconomics  map[string]interface{}    `json:"validator_economics,omitempty"`
}
