// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import (
	"errors"
	"fmt"
	"io"

	"github.com/ChainSafe/substrate-state-proof/lib/common"
	"github.com/ChainSafe/substrate-state-proof/pkg/scale"
)

// ErrMalformedNode is the sentinel error wrapped by every structural
// decoding failure in this package, so callers can tell a corrupt node
// encoding apart from other failure kinds using errors.Is.
var ErrMalformedNode = errors.New("malformed node")

var (
	ErrReadChildrenBitmap    = fmt.Errorf("%w: cannot read children bitmap", ErrMalformedNode)
	ErrDecodeStorageValue    = fmt.Errorf("%w: cannot decode storage value", ErrMalformedNode)
	ErrDecodeChildReference  = fmt.Errorf("%w: cannot decode child reference", ErrMalformedNode)
	ErrInvalidChildReference = fmt.Errorf("%w: child reference must be an inline node or a 32 byte hash", ErrMalformedNode)
)

// Decode decodes a node from a reader.
// The decoder never partially succeeds: any truncation, invalid
// length or unrecognised header pattern yields an error.
func Decode(reader io.Reader) (n Node, err error) {
	nodeVariant, partialKeyLength, err := decodeHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("decoding header: %w", err)
	}

	if nodeVariant == emptyVariant {
		return Empty{}, nil
	}

	partialKey, err := decodeKey(reader, partialKeyLength)
	if err != nil {
		return nil, fmt.Errorf("cannot decode key: %w", err)
	}

	switch nodeVariant {
	case leafVariant:
		n, err = decodeLeaf(reader, partialKey)
		if err != nil {
			return nil, fmt.Errorf("cannot decode leaf: %w", err)
		}
		return n, nil
	case branchVariant, branchWithValueVariant:
		n, err = decodeBranch(reader, nodeVariant, partialKey)
		if err != nil {
			return nil, fmt.Errorf("cannot decode branch: %w", err)
		}
		return n, nil
	default:
		// this is a programming error, an unknown node variant
		// should be caught by decodeHeader.
		panic(fmt.Sprintf("not implemented for node variant %08b", nodeVariant.bits))
	}
}

// decodeBranch reads a branch from the reader, in the order
// children bitmap, storage value (for the branch with value
// variant) and then one child reference per set bitmap bit
// in ascending child index order.
func decodeBranch(reader io.Reader, nodeVariant variant, partialKey []byte) (
	branch Branch, err error) {
	branch = Branch{
		PartialKey: partialKey,
	}

	childrenBitmap := make([]byte, 2)
	_, err = io.ReadFull(reader, childrenBitmap)
	if err != nil {
		return Branch{}, fmt.Errorf("%w: %s", ErrReadChildrenBitmap, err)
	}

	if nodeVariant == branchWithValueVariant {
		branch.Value, err = scale.DecodeByteSlice(reader)
		if err != nil {
			return Branch{}, fmt.Errorf("%w: %s", ErrDecodeStorageValue, err)
		}
	}

	for i := 0; i < ChildrenCapacity; i++ {
		if (childrenBitmap[i/8]>>(i%8))&1 != 1 {
			continue
		}

		childData, err := scale.DecodeByteSlice(reader)
		if err != nil {
			return Branch{}, fmt.Errorf("%w: at index %d: %s",
				ErrDecodeChildReference, i, err)
		}

		switch {
		case len(childData) < common.HashLength:
			branch.Children[i] = NewInlineNode(childData)
		case len(childData) == common.HashLength:
			branch.Children[i] = NewHashedNode(common.NewHash(childData))
		default:
			return Branch{}, fmt.Errorf("%w: at index %d: %d bytes",
				ErrInvalidChildReference, i, len(childData))
		}
	}

	return branch, nil
}

// decodeLeaf reads a leaf storage value from the reader.
func decodeLeaf(reader io.Reader, partialKey []byte) (leaf Leaf, err error) {
	leaf = Leaf{
		PartialKey: partialKey,
	}

	leaf.Value, err = scale.DecodeByteSlice(reader)
	if err != nil {
		return Leaf{}, fmt.Errorf("%w: %s", ErrDecodeStorageValue, err)
	}

	return leaf, nil
}
