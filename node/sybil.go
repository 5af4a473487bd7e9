// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import "fmt"

// RequireSingleDevice is an opt-in startup check, grounded on
// run_mainnet_node.py's one-validator-identity-per-device enforcement:
// it refuses to start a node whose configured device_id is already
// present in the ledger's validator registry under a different address
// than this node's own identity. It is deliberately not a ledger rule —
// the ledger's own device_id uniqueness check inside
// validator_registration is the binding consensus rule this merely
// guards against triggering by accident from the same machine.
func (n *Node) RequireSingleDevice(deviceID string) error {
	if n.cfg.Identity == nil {
		return nil
	}
	if !n.Ledger.IsDeviceRegistered(deviceID) {
		return nil
	}
	dump := n.Ledger.Dump()
	for addr, info := range dump.ValidatorRegistry {
		if info.DeviceID == deviceID && addr != n.cfg.Identity.Address {
			return fmt.Errorf("node: device %s is already registered to validator %s", deviceID, addr)
		}
	}
	return nil
}
