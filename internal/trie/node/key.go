// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import (
	"fmt"
	"io"

	"github.com/ChainSafe/substrate-state-proof/internal/trie/codec"
)

var ErrReadKeyData = fmt.Errorf("%w: cannot read key data", ErrMalformedNode)

// decodeKey reads the partial key payload from the reader and unpacks it
// into one nibble per byte. For an odd number of nibbles the padding
// nibble in the high half of the first byte is discarded; it carries no
// information so its content is never examined.
func decodeKey(reader io.Reader, partialKeyLength uint16) (nibbles []byte, err error) {
	if partialKeyLength == 0 {
		return []byte{}, nil
	}

	key := make([]byte, partialKeyLength/2+partialKeyLength%2)
	_, err = io.ReadFull(reader, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrReadKeyData, err)
	}

	return codec.KeyLEToNibbles(key)[partialKeyLength%2:], nil
}
