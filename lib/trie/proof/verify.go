// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package proof

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ChainSafe/substrate-state-proof/internal/trie/codec"
	"github.com/ChainSafe/substrate-state-proof/internal/trie/node"
	"github.com/ChainSafe/substrate-state-proof/lib/common"
)

var (
	// ErrMissingProofNode is the sentinel error wrapped whenever a hash
	// referenced during traversal, including the root hash itself, is not
	// present among the supplied proof nodes.
	ErrMissingProofNode = errors.New("missing proof node")

	ErrRootNodeNotFound = fmt.Errorf("%w: root node not found in proof", ErrMissingProofNode)
)

// EmptyTrieHash is the Merkle value of an empty trie, the blake2b
// digest of a single zero byte.
// See https://spec.polkadot.network/chap-state#defn-merkle-value
var EmptyTrieHash = common.MustHexToHash(
	"0x03170a2e7597b7b7e3d84c05391d139a62b157e78786d8c082f29dcf4c111314")

// Verify verifies the membership of each key given against the trusted
// root hash using the encoded proof nodes given, whose order is ignored.
// It returns one value per key, preserving the order of the keys, with a
// nil value for every key absent from the trie. Absence is not an error;
// any malformed, missing or inconsistent proof node encountered on a
// traversal path fails the whole call without partial results.
func Verify(encodedProofNodes [][]byte, rootHash common.Hash, keys [][]byte) (
	values [][]byte, err error) {
	values = make([][]byte, len(keys))

	if rootHash == EmptyTrieHash {
		// an empty trie contains no key; note the proof
		// nodes given are not needed and not checked.
		return values, nil
	}

	proofSet, err := newProofSet(encodedProofNodes)
	if err != nil {
		return nil, fmt.Errorf("indexing proof nodes: %w", err)
	}

	rootNode, err := proofSet.node(rootHash)
	if err != nil {
		if errors.Is(err, ErrMissingProofNode) {
			return nil, fmt.Errorf("%w: for root hash %s",
				ErrRootNodeNotFound, rootHash)
		}
		return nil, fmt.Errorf("decoding root node: %w", err)
	}

	for i, key := range keys {
		values[i], err = lookup(proofSet, rootNode, codec.KeyLEToNibbles(key))
		if err != nil {
			return nil, fmt.Errorf("looking up key 0x%x: %w", key, err)
		}
	}

	return values, nil
}

// proofSet indexes proof node encodings by their blake2b digest and
// memoises decoded nodes. It is scoped to a single Verify call so no
// decoded state is shared across verifications.
type proofSet struct {
	encodings map[common.Hash][]byte
	decoded   map[common.Hash]node.Node
}

func newProofSet(encodedProofNodes [][]byte) (*proofSet, error) {
	encodings := make(map[common.Hash][]byte, len(encodedProofNodes))
	for i, encodedProofNode := range encodedProofNodes {
		hash, err := common.Blake2bHash(encodedProofNode)
		if err != nil {
			return nil, fmt.Errorf("hashing node at index %d: %w", i, err)
		}

		if _, ok := encodings[hash]; ok {
			// two identical encodings, or a hash collision which an honest
			// proof never produces; the first encoding seen is retained.
			continue
		}
		encodings[hash] = encodedProofNode
	}

	return &proofSet{
		encodings: encodings,
		decoded:   make(map[common.Hash]node.Node, len(encodedProofNodes)),
	}, nil
}

// node returns the decoded node for the hash given, decoding its
// encoding at most once per verification call.
func (ps *proofSet) node(hash common.Hash) (n node.Node, err error) {
	if n, ok := ps.decoded[hash]; ok {
		return n, nil
	}

	encoding, ok := ps.encodings[hash]
	if !ok {
		return nil, fmt.Errorf("%w: for hash %s", ErrMissingProofNode, hash)
	}

	n, err = node.Decode(bytes.NewReader(encoding))
	if err != nil {
		return nil, fmt.Errorf("decoding node for hash %s: %w", hash.Short(), err)
	}

	ps.decoded[hash] = n
	return n, nil
}

// resolve returns the decoded node for the child reference given,
// decoding inline references directly and looking hashed references
// up in the proof set.
func (ps *proofSet) resolve(merkleValue node.MerkleValue) (n node.Node, err error) {
	switch merkleValue := merkleValue.(type) {
	case node.InlineNode:
		n, err = node.Decode(bytes.NewReader(merkleValue.Data))
		if err != nil {
			return nil, fmt.Errorf("decoding inline node: %w", err)
		}
		return n, nil
	case node.HashedNode:
		return ps.node(merkleValue.Hash)
	default:
		panic(fmt.Sprintf("unsupported merkle value type %T", merkleValue))
	}
}

// lookup walks down from the root node following the key nibbles given
// and returns the value found at the end of the key, or nil if the key
// is not present in the trie. Each iteration consumes at least one
// nibble so the traversal depth is bounded by the key nibble length.
func lookup(ps *proofSet, rootNode node.Node, keyNibbles []byte) (
	value []byte, err error) {
	currentNode := rootNode

	for {
		switch n := currentNode.(type) {
		case node.Empty:
			return nil, nil
		case node.Leaf:
			if bytes.Equal(n.PartialKey, keyNibbles) {
				return n.Value, nil
			}
			// either the leaf partial key diverges from the search key,
			// or it is shorter and the leaf has no children to continue into.
			return nil, nil
		case node.Branch:
			if !bytes.HasPrefix(keyNibbles, n.PartialKey) {
				return nil, nil
			}

			keyNibbles = keyNibbles[len(n.PartialKey):]
			if len(keyNibbles) == 0 {
				// the key ends at this branch; it is present
				// only if the branch carries a value.
				return n.Value, nil
			}

			childIndex := keyNibbles[0]
			keyNibbles = keyNibbles[1:]

			child := n.Children[childIndex]
			if child == nil {
				return nil, nil
			}

			currentNode, err = ps.resolve(child)
			if err != nil {
				return nil, fmt.Errorf("resolving child at index %d: %w",
					childIndex, err)
			}
		}
	}
}
