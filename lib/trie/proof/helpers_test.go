// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"bytes"
	"testing"

	"github.com/ChainSafe/substrate-state-proof/internal/trie/node"
	"github.com/ChainSafe/substrate-state-proof/lib/common"
	"github.com/stretchr/testify/require"
)

func encodeNode(t *testing.T, n node.Node) (encoded []byte) {
	t.Helper()
	buffer := bytes.NewBuffer(nil)
	err := node.Encode(n, buffer)
	require.NoError(t, err)
	return buffer.Bytes()
}

func blake2bNode(t *testing.T, n node.Node) (digest common.Hash) {
	t.Helper()
	encoding := encodeNode(t, n)
	digest, err := common.Blake2bHash(encoding)
	require.NoError(t, err)
	return digest
}

// childReference returns the child reference for the node given, the
// encoding itself if it is small enough to be inlined and its blake2b
// digest otherwise.
func childReference(t *testing.T, n node.Node) (ref node.MerkleValue) {
	t.Helper()
	encoding := encodeNode(t, n)
	if len(encoding) < common.HashLength {
		return node.NewInlineNode(encoding)
	}
	return node.NewHashedNode(blake2bNode(t, n))
}
