// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

// Dump is a point-in-time copy of every piece of ledger state other than
// the blocks themselves (those are reached through GetBlock/BlockRange).
// It exists so the node orchestrator can persist and reload ledger state
// without this package depending on the storage package, or storage
// depending on this package's unexported state layout.
type Dump struct {
	Balances            map[string]int64
	Nonces              map[string]uint64
	TotalEmittedPals    int64
	ValidatorSet        []string
	ValidatorRegistry   map[string]ValidatorInfo
	FinalityCheckpoints []int64
}

// Dump returns a deep copy of the ledger's non-block state.
func (l *Ledger) Dump() Dump {
	result := make(chan Dump, 1)
	l.reqs <- func(s *state) {
		d := Dump{
			Balances:          make(map[string]int64, len(s.balances)),
			Nonces:            make(map[string]uint64, len(s.nonces)),
			TotalEmittedPals:  s.totalEmittedPals,
			ValidatorSet:      append([]string(nil), s.validatorSet...),
			ValidatorRegistry: make(map[string]ValidatorInfo, len(s.validatorRegistry)),
		}
		for k, v := range s.balances {
			d.Balances[k] = v
		}
		for k, v := range s.nonces {
			d.Nonces[k] = v
		}
		for k, v := range s.validatorRegistry {
			d.ValidatorRegistry[k] = v
		}
		d.FinalityCheckpoints = append([]int64(nil), s.finalityCheckpoints...)
		result <- d
	}
	return <-result
}
