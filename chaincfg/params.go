// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "time"

// Net identifies the network a set of Params describes.
type Net uint32

// Known networks.
const (
	MainNet Net = iota
	TestNet
	SimNet
)

// String returns the network name.
func (n Net) String() string {
	switch n {
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	case SimNet:
		return "simnet"
	default:
		return "unknown"
	}
}

// Params defines the protocol-wide parameters for a TIMPAL network. Exactly
// one instance is active for the lifetime of a process. node.New receives
// it in its Config and hands its genesis timestamp and bootstrap length to
// the TSW scheduler; the ledger and transaction packages receive its block
// reward, fee, and amount cap through their package-level Configure
// functions, which cmd/timpalnode calls once at startup. The mempool does
// not consult it. This matches the "process-wide state is only genesis
// constants and protocol parameters" design note.
type Params struct {
	Name string
	Net  Net

	// GenesisTimestamp anchors height 0 for the TSW scheduler's absolute
	// window mode.
	GenesisTimestamp time.Time

	// Fee is the fixed per-transfer fee, in pals. Every transfer must
	// carry exactly this fee; it is not a market-driven fee.
	Fee int64

	// MaxTransactionAmount is the inclusive cap on a single transfer's
	// amount, in pals.
	MaxTransactionAmount int64

	// BlockReward is the number of pals minted and credited to the block
	// proposer's balance on every successfully applied block. It is the only way pals are
	// created after genesis.
	BlockReward int64

	// CoinType is this chain's SLIP-44 derivation coin type, used in the
	// wallet's default account path m/44'/CoinType'/account'/change/index.
	CoinType uint32

	// BootstrapBlocks is the number of leading heights (0..N-1) during
	// which the TSW scheduler runs in lenient-bootstrap mode.
	BootstrapBlocks int64

	// HDPrivateKeyID and HDPublicKeyID are the four byte prefixes used
	// to serialize extended private and public keys for this network,
	// per the BIP0032/SLIP-0132 extended-key version-byte convention.
	HDPrivateKeyID [4]byte
	HDPublicKeyID  [4]byte
}

// PalsPerTMPL is the number of integer on-chain units ("pals") in one TMPL.
const PalsPerTMPL = 100_000_000

// MainNetParams returns the parameters for the main TIMPAL network.
func MainNetParams() *Params {
	return &Params{
		Name:                  "mainnet",
		Net:                   MainNet,
		GenesisTimestamp:      time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		Fee:                   50_000,
		MaxTransactionAmount:  1_000_000 * PalsPerTMPL,
		BlockReward:           5_000_000,
		CoinType:              4007,
		BootstrapBlocks:       10,
		HDPrivateKeyID:        [4]byte{0x04, 0x88, 0xad, 0xe4}, // xprv
		HDPublicKeyID:         [4]byte{0x04, 0x88, 0xb2, 0x1e}, // xpub
	}
}

// TestNetParams returns the parameters for the TIMPAL test network.
func TestNetParams() *Params {
	p := MainNetParams()
	p.Name = "testnet"
	p.Net = TestNet
	p.GenesisTimestamp = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	p.HDPrivateKeyID = [4]byte{0x04, 0x35, 0x83, 0x94} // tprv
	p.HDPublicKeyID = [4]byte{0x04, 0x35, 0x87, 0xcf}  // tpub
	return p
}

// SimNetParams returns the parameters for the TIMPAL simulation network used
// by integration tests. The genesis timestamp is left at the zero Unix
// epoch so that tests can pick small, human-readable block timestamps.
func SimNetParams() *Params {
	p := MainNetParams()
	p.Name = "simnet"
	p.Net = SimNet
	p.GenesisTimestamp = time.Unix(0, 0).UTC()
	return p
}
