// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ChainSafe/substrate-state-proof/lib/common"
)

// proofFixture is the JSON file format consumed by the verify and
// inspect commands. All fields hold 0x prefixed hexadecimal strings.
type proofFixture struct {
	// Root is the trusted 32 byte state root hash.
	Root string `json:"root"`
	// Proof holds the encoded proof nodes in any order.
	Proof []string `json:"proof"`
	// Keys holds the full little endian keys to verify.
	Keys []string `json:"keys"`
}

var (
	ErrNoKeys    = errors.New("no key given")
	ErrEmptyRoot = errors.New("root hash is all zeros")
)

func loadFixture(path string) (rootHash common.Hash,
	encodedProofNodes [][]byte, keys [][]byte, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.Hash{}, nil, nil, fmt.Errorf("reading fixture file: %w", err)
	}
	return parseFixture(data)
}

func parseFixture(data []byte) (rootHash common.Hash,
	encodedProofNodes [][]byte, keys [][]byte, err error) {
	var fixture proofFixture
	err = json.Unmarshal(data, &fixture)
	if err != nil {
		return common.Hash{}, nil, nil, fmt.Errorf("unmarshaling fixture: %w", err)
	}

	rootHash, err = common.HexToHash(fixture.Root)
	if err != nil {
		return common.Hash{}, nil, nil, fmt.Errorf("parsing root hash: %w", err)
	}
	if rootHash.IsEmpty() {
		// a zero root is a missing or defaulted field, never
		// a real state root, so it is rejected early.
		return common.Hash{}, nil, nil, ErrEmptyRoot
	}

	encodedProofNodes = make([][]byte, len(fixture.Proof))
	for i, hexNode := range fixture.Proof {
		encodedProofNodes[i], err = common.HexToBytes(hexNode)
		if err != nil {
			return common.Hash{}, nil, nil,
				fmt.Errorf("parsing proof node at index %d: %w", i, err)
		}
	}

	if len(fixture.Keys) == 0 {
		return common.Hash{}, nil, nil, ErrNoKeys
	}
	keys = make([][]byte, len(fixture.Keys))
	for i, hexKey := range fixture.Keys {
		keys[i], err = common.HexToBytes(hexKey)
		if err != nil {
			return common.Hash{}, nil, nil,
				fmt.Errorf("parsing key at index %d: %w", i, err)
		}
	}

	return rootHash, encodedProofNodes, keys, nil
}
