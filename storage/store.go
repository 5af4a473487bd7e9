// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage is the durable backing store for block and ledger
// state: block-by-height, block-by-hash, a single state blob, and chain
// metadata, keyed in one goleveldb database, plus directory snapshots for
// backup and crash recovery. It is grounded on storage_basic.py's
// atomic-write / snapshot / verify-integrity flow, with goleveldb's
// synchronous (Sync: true) writes standing in for that file's
// temp-file+fsync+rename atomicity on every individual key write.
package storage

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/timpalnet/timpal-node/ledger"
)

var syncWrite = &opt.WriteOptions{Sync: true}

const (
	keyState = "state"
	keyMeta  = "meta"
)

func blockHeightKey(height int64) []byte {
	return []byte("block/height/" + strconv.FormatInt(height, 10))
}

func blockHashKey(hash string) []byte {
	return []byte("block/hash/" + hash)
}

// metadata is the "meta" blob: chain height and the time of the last
// successful save, mirroring storage_basic.py's metadata.json.
type metadata struct {
	ChainHeight *int64 `json:"chain_height,omitempty"`
	LastSaved   string `json:"last_saved,omitempty"`
}

// FileStore is the concrete storage.FileStore adapter named in spec.md
// §4.8: a goleveldb database rooted at <dataDir>/ledger, plus a
// <dataDir>/snapshots directory of full-database copies.
type FileStore struct {
	db           *leveldb.DB
	dataDir      string
	ledgerDir    string
	snapshotsDir string
}

// Open opens (creating if necessary) a FileStore rooted at dataDir.
func Open(dataDir string) (*FileStore, error) {
	ledgerDir := filepath.Join(dataDir, "ledger")
	snapshotsDir := filepath.Join(dataDir, "snapshots")
	if err := ensureDir(snapshotsDir); err != nil {
		return nil, err
	}
	db, err := leveldb.OpenFile(ledgerDir, nil)
	if err != nil {
		return nil, err
	}
	return &FileStore{
		db:           db,
		dataDir:      dataDir,
		ledgerDir:    ledgerDir,
		snapshotsDir: snapshotsDir,
	}, nil
}

// Close releases the underlying database handle.
func (s *FileStore) Close() error {
	return s.db.Close()
}

// PutBlock stores block under its height.
func (s *FileStore) PutBlock(height int64, block *ledger.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}
	return s.db.Put(blockHeightKey(height), data, syncWrite)
}

// GetBlock retrieves the block stored at height, if any.
func (s *FileStore) GetBlock(height int64) (*ledger.Block, error) {
	data, err := s.db.Get(blockHeightKey(height), nil)
	if err == leveldb.ErrNotFound {
		return nil, storageError(ErrBlockNotFound, fmt.Sprintf("height %d", height))
	}
	if err != nil {
		return nil, err
	}
	var block ledger.Block
	if err := json.Unmarshal(data, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// PutBlockByHash stores block under its hash, for reverse lookup.
func (s *FileStore) PutBlockByHash(hash string, block *ledger.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return err
	}
	return s.db.Put(blockHashKey(hash), data, syncWrite)
}

// GetBlockByHash retrieves the block stored under hash, if any.
func (s *FileStore) GetBlockByHash(hash string) (*ledger.Block, error) {
	data, err := s.db.Get(blockHashKey(hash), nil)
	if err == leveldb.ErrNotFound {
		return nil, storageError(ErrBlockNotFound, "hash "+hash)
	}
	if err != nil {
		return nil, err
	}
	var block ledger.Block
	if err := json.Unmarshal(data, &block); err != nil {
		return nil, err
	}
	return &block, nil
}

// SaveNewBlock stores block by height and by hash, then advances the
// chain_height metadata if block.Height is the new tip. It mirrors
// storage_basic.py's save_new_block, which is the path every applied
// block takes to disk.
func (s *FileStore) SaveNewBlock(block *ledger.Block) error {
	if block.BlockHash == "" {
		block.BlockHash = block.Hash()
	}
	if err := s.PutBlock(block.Height, block); err != nil {
		return err
	}
	if err := s.PutBlockByHash(block.BlockHash, block); err != nil {
		return err
	}
	current, ok, err := s.ChainHeight()
	if err != nil {
		return err
	}
	if !ok || block.Height > current {
		if err := s.putMetaField(func(m *metadata) { m.ChainHeight = &block.Height }); err != nil {
			return err
		}
	}
	return s.touchLastSaved()
}

// SaveState persists the full non-block ledger state.
func (s *FileStore) SaveState(state StateSnapshot) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	if err := s.db.Put([]byte(keyState), data, syncWrite); err != nil {
		return err
	}
	return s.touchLastSaved()
}

// LoadState retrieves the persisted state, if any has been saved.
func (s *FileStore) LoadState() (StateSnapshot, error) {
	data, err := s.db.Get([]byte(keyState), nil)
	if err == leveldb.ErrNotFound {
		return StateSnapshot{}, storageError(ErrNoState, "")
	}
	if err != nil {
		return StateSnapshot{}, err
	}
	var state StateSnapshot
	if err := json.Unmarshal(data, &state); err != nil {
		return StateSnapshot{}, err
	}
	return state, nil
}

// ChainHeight returns the persisted chain tip height, if metadata exists.
func (s *FileStore) ChainHeight() (int64, bool, error) {
	m, err := s.readMeta()
	if err != nil {
		return 0, false, err
	}
	if m.ChainHeight == nil {
		return 0, false, nil
	}
	return *m.ChainHeight, true, nil
}

func (s *FileStore) readMeta() (metadata, error) {
	data, err := s.db.Get([]byte(keyMeta), nil)
	if err == leveldb.ErrNotFound {
		return metadata{}, nil
	}
	if err != nil {
		return metadata{}, err
	}
	var m metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return metadata{}, err
	}
	return m, nil
}

func (s *FileStore) putMetaField(mutate func(*metadata)) error {
	m, err := s.readMeta()
	if err != nil {
		return err
	}
	mutate(&m)
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return s.db.Put([]byte(keyMeta), data, syncWrite)
}

func (s *FileStore) touchLastSaved() error {
	return s.putMetaField(func(m *metadata) { m.LastSaved = time.Now().UTC().Format(time.RFC3339) })
}
