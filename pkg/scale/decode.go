// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Compact unsigned integer mode tags, held in the two
// least significant bits of the first byte.
// See https://docs.substrate.io/reference/scale-codec/
const (
	singleByteMode byte = iota
	twoByteMode
	fourByteMode
	bigIntMode
)

// DecodeCompactUint reads a SCALE compact-encoded unsigned integer
// from the reader. Values larger than the maximum uint64 are rejected
// since the trie codec only uses compact integers for lengths.
func DecodeCompactUint(reader io.Reader) (value uint64, err error) {
	firstByte, err := readByte(reader)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrReadFirstByte, err)
	}

	switch firstByte & 0b11 {
	case singleByteMode:
		return uint64(firstByte >> 2), nil
	case twoByteMode:
		buffer := make([]byte, 2)
		buffer[0] = firstByte
		_, err = io.ReadFull(reader, buffer[1:])
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrReadValueBytes, err)
		}
		return uint64(binary.LittleEndian.Uint16(buffer) >> 2), nil
	case fourByteMode:
		buffer := make([]byte, 4)
		buffer[0] = firstByte
		_, err = io.ReadFull(reader, buffer[1:])
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrReadValueBytes, err)
		}
		return uint64(binary.LittleEndian.Uint32(buffer) >> 2), nil
	default: // bigIntMode
		byteCount := uint(firstByte>>2) + 4
		if byteCount > 8 {
			return 0, fmt.Errorf("%w: %d bytes", ErrCompactTooBig, byteCount)
		}

		buffer := make([]byte, 8)
		_, err = io.ReadFull(reader, buffer[:byteCount])
		if err != nil {
			return 0, fmt.Errorf("%w: %s", ErrReadValueBytes, err)
		}
		return binary.LittleEndian.Uint64(buffer), nil
	}
}

// DecodeFixedUint reads byteWidth little endian bytes from the reader
// and returns them as an unsigned integer.
func DecodeFixedUint(reader io.Reader, byteWidth uint8) (value uint64, err error) {
	if byteWidth == 0 || byteWidth > 8 {
		return 0, fmt.Errorf("%w: %d bytes", ErrBadFixedWidth, byteWidth)
	}

	buffer := make([]byte, 8)
	_, err = io.ReadFull(reader, buffer[:byteWidth])
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrReadValueBytes, err)
	}

	return binary.LittleEndian.Uint64(buffer), nil
}

// maxByteSliceLength bounds the declared length of a byte slice before
// its buffer is allocated, since the length prefix comes from untrusted
// input and must not drive allocations. Node encodings never
// legitimately carry values or child references of this size.
const maxByteSliceLength = 1 << 24 // 16MiB

// DecodeByteSlice reads a compact length prefix from the reader
// followed by that many bytes.
func DecodeByteSlice(reader io.Reader) (b []byte, err error) {
	length, err := DecodeCompactUint(reader)
	if err != nil {
		return nil, fmt.Errorf("decoding length: %w", err)
	}

	if length > maxByteSliceLength {
		return nil, fmt.Errorf("%w: %d bytes", ErrByteSliceTooLong, length)
	}

	b = make([]byte, length)
	_, err = io.ReadFull(reader, b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrReadValueBytes, err)
	}

	return b, nil
}

func readByte(reader io.Reader) (b byte, err error) {
	buffer := make([]byte, 1)
	_, err = io.ReadFull(reader, buffer)
	if err != nil {
		return 0, err
	}
	return buffer[0], nil
}
