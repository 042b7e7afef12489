// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import (
	"github.com/ChainSafe/substrate-state-proof/lib/common"
)

// MerkleValueOf returns the Merkle value of the node encoding given:
// the encoding itself if it is smaller than 32 bytes, since such nodes
// are embedded inline in their parent, or the blake2b digest of the
// encoding otherwise.
func MerkleValueOf(encoding []byte) (merkleValue []byte, err error) {
	if len(encoding) < common.HashLength {
		merkleValue = make([]byte, len(encoding))
		copy(merkleValue, encoding)
		return merkleValue, nil
	}

	hash, err := common.Blake2bHash(encoding)
	if err != nil {
		return nil, err
	}
	return hash.ToBytes(), nil
}

// MerkleValueRoot returns the Merkle value of the root node encoding
// given. The root Merkle value is always the blake2b digest of the
// encoding, even when the encoding is smaller than 32 bytes.
func MerkleValueRoot(encoding []byte) (hash common.Hash, err error) {
	return common.Blake2bHash(encoding)
}
