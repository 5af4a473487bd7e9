// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the protocol-wide parameters of a TIMPAL
// network: the genesis timestamp, the transfer fee and amount cap, the
// block reward, the wallet coin type and extended-key prefixes, and the
// number of Time-Sliced Window bootstrap blocks. The other Time-Sliced
// Window constants are defined in package consensus/tsw.
//
// Exactly one of MainNetParams, TestNetParams, or SimNetParams is active in
// a given process. For main packages, a (typically global) var is assigned
// the result of one of the Params constructors for use as the
// application's "active" network:
//
//	var params = chaincfg.MainNetParams()
//
//	func main() {
//	        if *testnet {
//	                params = chaincfg.TestNetParams()
//	        }
//	        // later...
//	        n, err := node.New(node.Config{DataDir: dataDir, Params: params})
//	}
package chaincfg
