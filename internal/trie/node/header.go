// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package node

import (
	"fmt"
	"io"
)

const maxPartialKeyLength = ^uint16(0)

var (
	ErrReadHeaderByte   = fmt.Errorf("%w: cannot read header byte", ErrMalformedNode)
	ErrPartialKeyTooBig = fmt.Errorf("%w: partial key length cannot be larger than 2^16", ErrMalformedNode)
	ErrVariantUnknown   = fmt.Errorf("%w: node variant is unknown", ErrMalformedNode)
)

func decodeHeader(reader io.Reader) (nodeVariant variant,
	partialKeyLength uint16, err error) {
	buffer := make([]byte, 1)
	_, err = io.ReadFull(reader, buffer)
	if err != nil {
		return invalidVariant, 0, fmt.Errorf("%w: %s", ErrReadHeaderByte, err)
	}

	nodeVariant, partialKeyLengthHeader, err := decodeHeaderByte(buffer[0])
	if err != nil {
		return invalidVariant, 0, fmt.Errorf("decoding header byte: %w", err)
	}

	partialKeyLengthHeaderMask := nodeVariant.partialKeyLengthHeaderMask()
	if partialKeyLengthHeaderMask == emptyVariant.bits {
		// the empty node variant has no partial key. The partial key
		// length mask is 0b0000_0000 since the variant mask is 0b1111_1111.
		return nodeVariant, 0, nil
	}

	partialKeyLength = uint16(partialKeyLengthHeader)
	if partialKeyLengthHeader < partialKeyLengthHeaderMask {
		// partial key length is contained in the first byte.
		return nodeVariant, partialKeyLength, nil
	}

	// the partial key length header byte is equal to its maximum
	// possible value; this means the partial key length is greater
	// than this (0 to 2^6 - 1 = 63) maximum value, and we need to
	// accumulate the next bytes from the reader to get the full
	// partial key length.
	// Specification: https://spec.polkadot.network/#defn-node-header
	var previousKeyLength uint16 // used to track an eventual overflow
	for {
		_, err = io.ReadFull(reader, buffer)
		if err != nil {
			return invalidVariant, 0, fmt.Errorf("%w: reading key length: %s", ErrReadHeaderByte, err)
		}

		previousKeyLength = partialKeyLength
		partialKeyLength += uint16(buffer[0])

		if partialKeyLength < previousKeyLength {
			// the partial key can have a length up to 65535 which is the
			// maximum uint16 value; therefore if we overflowed, we went over
			// this maximum.
			overflowed := maxPartialKeyLength - previousKeyLength + partialKeyLength
			return invalidVariant, 0, fmt.Errorf("%w: overflowed by %d", ErrPartialKeyTooBig, overflowed)
		}

		if buffer[0] < 255 {
			// the end of the partial key length has been reached.
			return nodeVariant, partialKeyLength, nil
		}
	}
}

// variantsOrderedByBitMask is an array of all variants sorted
// in ascending order by the number of LHS set bits each variant mask has.
// See https://spec.polkadot.network/#defn-node-header
// WARNING: DO NOT MUTATE.
var variantsOrderedByBitMask = [...]variant{
	leafVariant,            // mask 1100_0000
	branchVariant,          // mask 1100_0000
	branchWithValueVariant, // mask 1100_0000
	emptyVariant,           // mask 1111_1111
}

func decodeHeaderByte(header byte) (nodeVariant variant,
	partialKeyLengthHeader byte, err error) {
	for i := len(variantsOrderedByBitMask) - 1; i >= 0; i-- {
		nodeVariant = variantsOrderedByBitMask[i]
		variantBits := header & nodeVariant.mask
		if variantBits != nodeVariant.bits {
			continue
		}

		partialKeyLengthHeaderMask := nodeVariant.partialKeyLengthHeaderMask()
		partialKeyLengthHeader = header & partialKeyLengthHeaderMask
		return nodeVariant, partialKeyLengthHeader, nil
	}

	return invalidVariant, 0, fmt.Errorf("%w: for header byte %08b", ErrVariantUnknown, header)
}

// encodeHeader writes the encoded header for the node variant
// and partial key length to the writer.
func encodeHeader(nodeVariant variant, partialKeyLength uint16, writer io.Writer) (err error) {
	partialKeyLengthHeaderMask := nodeVariant.partialKeyLengthHeaderMask()
	if partialKeyLength < uint16(partialKeyLengthHeaderMask) {
		_, err = writer.Write([]byte{nodeVariant.bits | byte(partialKeyLength)})
		return err
	}

	_, err = writer.Write([]byte{nodeVariant.bits | partialKeyLengthHeaderMask})
	if err != nil {
		return err
	}

	remaining := partialKeyLength - uint16(partialKeyLengthHeaderMask)
	for remaining >= 255 {
		_, err = writer.Write([]byte{255})
		if err != nil {
			return err
		}
		remaining -= 255
	}

	_, err = writer.Write([]byte{byte(remaining)})
	return err
}
