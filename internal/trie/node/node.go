// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

// Package node decodes and encodes trie node blobs following the node
// encoding specified at https://spec.polkadot.network/chap-state#defn-node-header
package node

import (
	"github.com/ChainSafe/substrate-state-proof/lib/common"
)

// ChildrenCapacity is the maximum number of children in a branch node.
const ChildrenCapacity = 16

// Node is the representation of a decoded node.
// It is a closed sum of Empty, Leaf and Branch so the
// traversal loop handles every shape explicitly.
type Node interface {
	isNode()
}

type (
	// Empty node
	Empty struct{}
	// Leaf always contains a value
	Leaf struct {
		// PartialKey is the nibble slice of the leaf,
		// with one nibble per byte.
		PartialKey []byte
		Value      []byte
	}
	// Branch can have a value and up to 16 children
	Branch struct {
		// PartialKey is the nibble slice of the branch,
		// with one nibble per byte.
		PartialKey []byte
		Children   [ChildrenCapacity]MerkleValue
		// Value is nil when the branch has no value.
		Value []byte
	}
)

func (Empty) isNode()  {}
func (Leaf) isNode()   {}
func (Branch) isNode() {}

// MerkleValue is the reference a branch holds for each of its children,
// either the child node encoding embedded inline or the blake2b hash
// of the child node encoding.
// See https://spec.polkadot.network/chap-state#defn-merkle-value
type MerkleValue interface {
	isMerkleValue()
}

type (
	// InlineNode holds the encoding of a child node small
	// enough to be embedded in its parent encoding.
	InlineNode struct {
		Data []byte
	}
	// HashedNode holds the hash used to look up
	// the child node encoding in the proof set.
	HashedNode struct {
		Hash common.Hash
	}
)

func (InlineNode) isMerkleValue() {}
func (HashedNode) isMerkleValue() {}

// NewInlineNode returns an inline child reference for the encoding given.
func NewInlineNode(data []byte) MerkleValue {
	return InlineNode{Data: data}
}

// NewHashedNode returns a hashed child reference for the hash given.
func NewHashedNode(hash common.Hash) MerkleValue {
	return HashedNode{Hash: hash}
}

// ChildrenBitmap returns the 16 bit bitmap
// of the children in the branch node.
func (b *Branch) ChildrenBitmap() (bitmap uint16) {
	for i := range b.Children {
		if b.Children[i] == nil {
			continue
		}
		bitmap |= 1 << uint(i)
	}
	return bitmap
}

// NumChildren returns the total number of children
// in the branch node.
func (b *Branch) NumChildren() (count int) {
	for i := range b.Children {
		if b.Children[i] != nil {
			count++
		}
	}
	return count
}
