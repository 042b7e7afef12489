// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"fmt"

	"github.com/holiman/uint256"
)

// DecodeUint256 interprets the whole input as a little endian unsigned
// 256 bit integer. Inputs shorter than 32 bytes are zero extended.
func DecodeUint256(data []byte) (value *uint256.Int, err error) {
	if len(data) > 32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrUint256TooLong, len(data))
	}

	// uint256 parses big endian bytes so the input is reversed first.
	bigEndian := make([]byte, len(data))
	for i, b := range data {
		bigEndian[len(data)-1-i] = b
	}

	return new(uint256.Int).SetBytes(bigEndian), nil
}
