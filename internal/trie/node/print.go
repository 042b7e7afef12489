// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import (
	"fmt"

	"github.com/qdm12/gotree"
)

// String returns the string representation of the leaf.
func (l Leaf) String() string {
	return l.StringNode().String()
}

// StringNode returns a gotree compatible node for String methods.
func (l Leaf) StringNode() (stringNode *gotree.Node) {
	stringNode = gotree.New("Leaf")
	stringNode.Appendf("Key: " + bytesToString(l.PartialKey))
	stringNode.Appendf("Value: " + bytesToString(l.Value))
	return stringNode
}

// String returns the string representation of the branch.
func (b Branch) String() string {
	return b.StringNode().String()
}

// StringNode returns a gotree compatible node for String methods.
func (b Branch) StringNode() (stringNode *gotree.Node) {
	stringNode = gotree.New("Branch")
	stringNode.Appendf("Key: " + bytesToString(b.PartialKey))
	stringNode.Appendf("Value: " + bytesToString(b.Value))
	for i, child := range b.Children {
		switch child := child.(type) {
		case InlineNode:
			stringNode.Appendf("Child %d (inline): %s", i, bytesToString(child.Data))
		case HashedNode:
			stringNode.Appendf("Child %d (hashed): %s", i, child.Hash.Short())
		}
	}
	return stringNode
}

func bytesToString(b []byte) (s string) {
	switch {
	case b == nil:
		return "nil"
	case len(b) <= 20:
		return fmt.Sprintf("0x%x", b)
	default:
		return fmt.Sprintf("0x%x...%x", b[:8], b[len(b)-8:])
	}
}
