// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import "github.com/timpalnet/timpal-node/ledger"

// PersistBlockForTest exposes persistBlock to this package's external test
// files, which cannot reach the unexported method directly.
func (n *Node) PersistBlockForTest(block *ledger.Block) error {
	return n.persistBlock(block)
}

// SetIdentityForTest overrides cfg.Identity, letting tests exercise
// identity-dependent paths (RequireSingleDevice, maybePropose) without
// constructing a whole new Node.
func (n *Node) SetIdentityForTest(identity *ProposerIdentity) {
	n.cfg.Identity = identity
}
