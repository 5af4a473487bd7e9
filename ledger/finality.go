// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

// finalize records height as a new finality checkpoint. Checkpoints must
// be recorded in non-decreasing height order and never below an existing
// checkpoint, since a checkpoint is a promise that the chain at or below
// it will never be reverted.
func (s *state) finalize(height int64) error {
	if height < 0 || height > s.height {
		return ledgerError(ErrUnknownBlock, "cannot finalize a height that has not been applied")
	}
	if height < s.lastCheckpoint() {
		return ledgerError(ErrCheckpointReorg, "checkpoints must not move backward")
	}
	s.finalityCheckpoints = append(s.finalityCheckpoints, height)
	return nil
}

// revertToHeight discards every applied block above height, rewinding the
// ledger's tip. It is a fatal, refused operation if height falls below
// the last finality checkpoint: a finalized block is never undone.
func (s *state) revertToHeight(height int64) error {
	if height < s.lastCheckpoint() {
		return ledgerError(ErrCheckpointReorg, "target height is below the last finality checkpoint")
	}
	if height >= s.height {
		return nil
	}
	for h := s.height; h > height; h-- {
		if b, ok := s.blocksByHeight[h]; ok {
			delete(s.blocksByHeight, h)
			delete(s.blocksByHash, b.BlockHash)
		}
	}
	s.height = height
	if height < 0 {
		s.tipHash = ""
		return nil
	}
	if tip, ok := s.blocksByHeight[height]; ok {
		s.tipHash = tip.BlockHash
	}
	return nil
}
