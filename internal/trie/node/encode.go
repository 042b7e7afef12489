// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import (
	"fmt"
	"io"

	"github.com/ChainSafe/substrate-state-proof/internal/trie/codec"
	"github.com/ChainSafe/substrate-state-proof/lib/common"
	"github.com/ChainSafe/substrate-state-proof/pkg/scale"
)

// Encode encodes the node to the writer, producing the
// byte-exact counterpart of what Decode accepts.
func Encode(n Node, writer io.Writer) (err error) {
	switch n := n.(type) {
	case Empty:
		_, err = writer.Write([]byte{emptyVariant.bits})
		return err
	case Leaf:
		return encodeLeaf(n, writer)
	case Branch:
		return encodeBranch(n, writer)
	default:
		panic(fmt.Sprintf("unsupported node type %T", n))
	}
}

func encodeLeaf(leaf Leaf, writer io.Writer) (err error) {
	err = encodeHeader(leafVariant, uint16(len(leaf.PartialKey)), writer)
	if err != nil {
		return fmt.Errorf("cannot encode header: %w", err)
	}

	_, err = writer.Write(codec.NibblesToKeyLE(leaf.PartialKey))
	if err != nil {
		return fmt.Errorf("cannot write LE key to writer: %w", err)
	}

	err = scale.EncodeByteSlice(writer, leaf.Value)
	if err != nil {
		return fmt.Errorf("scale encoding value: %w", err)
	}

	return nil
}

func encodeBranch(branch Branch, writer io.Writer) (err error) {
	nodeVariant := branchVariant
	if branch.Value != nil {
		nodeVariant = branchWithValueVariant
	}

	err = encodeHeader(nodeVariant, uint16(len(branch.PartialKey)), writer)
	if err != nil {
		return fmt.Errorf("cannot encode header: %w", err)
	}

	_, err = writer.Write(codec.NibblesToKeyLE(branch.PartialKey))
	if err != nil {
		return fmt.Errorf("cannot write LE key to writer: %w", err)
	}

	_, err = writer.Write(common.Uint16ToBytes(branch.ChildrenBitmap()))
	if err != nil {
		return fmt.Errorf("cannot write children bitmap to writer: %w", err)
	}

	if branch.Value != nil {
		err = scale.EncodeByteSlice(writer, branch.Value)
		if err != nil {
			return fmt.Errorf("scale encoding value: %w", err)
		}
	}

	for i, child := range branch.Children {
		if child == nil {
			continue
		}

		var childData []byte
		switch child := child.(type) {
		case InlineNode:
			childData = child.Data
		case HashedNode:
			childData = child.Hash.ToBytes()
		}

		err = scale.EncodeByteSlice(writer, childData)
		if err != nil {
			return fmt.Errorf("scale encoding child at index %d: %w", i, err)
		}
	}

	return nil
}
