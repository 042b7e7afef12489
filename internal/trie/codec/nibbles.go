// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package codec

// NibblesToKeyLE converts a slice of nibbles with length k
// into a Little Endian byte slice.
// It assumes nibbles are already in Little Endian and does not rearrange nibbles.
// If the length of the input is odd, the result is
// [ in[0] | in[1]<<4 + in[2] | in[3]<<4 + in[4] | ... ]
// Otherwise, the result is
// [ in[0]<<4 + in[1] | in[2]<<4 + in[3] | ... ]
func NibblesToKeyLE(nibbles []byte) []byte {
	if len(nibbles)%2 == 0 {
		keyLE := make([]byte, len(nibbles)/2)
		for i := 0; i < len(nibbles); i += 2 {
			keyLE[i/2] = (nibbles[i] << 4 & 0xf0) | (nibbles[i+1] & 0xf)
		}
		return keyLE
	}

	keyLE := make([]byte, len(nibbles)/2+1)
	keyLE[0] = nibbles[0]
	for i := 2; i < len(nibbles); i += 2 {
		keyLE[i/2] = (nibbles[i-1] << 4 & 0xf0) | (nibbles[i] & 0xf)
	}
	return keyLE
}

// KeyLEToNibbles converts a Little Endian byte slice into nibbles.
// It assumes bytes are already in Little Endian and does not rearrange nibbles.
func KeyLEToNibbles(in []byte) (nibbles []byte) {
	if len(in) == 0 {
		return []byte{}
	}

	l := len(in) * 2
	nibbles = make([]byte, l)
	for i, b := range in {
		nibbles[2*i] = b / 16
		nibbles[2*i+1] = b % 16
	}

	return nibbles
}
