// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeCompactUint writes the SCALE compact encoding
// of the value given to the writer.
func EncodeCompactUint(writer io.Writer, value uint64) (err error) {
	switch {
	case value < 1<<6:
		_, err = writer.Write([]byte{byte(value) << 2})
		return err
	case value < 1<<14:
		buffer := make([]byte, 2)
		binary.LittleEndian.PutUint16(buffer, uint16(value)<<2|uint16(twoByteMode))
		_, err = writer.Write(buffer)
		return err
	case value < 1<<30:
		buffer := make([]byte, 4)
		binary.LittleEndian.PutUint32(buffer, uint32(value)<<2|uint32(fourByteMode))
		_, err = writer.Write(buffer)
		return err
	default:
		byteCount := byte(8)
		for value < uint64(1)<<((byteCount-1)*8) {
			byteCount--
		}

		_, err = writer.Write([]byte{(byteCount-4)<<2 | bigIntMode})
		if err != nil {
			return err
		}

		buffer := make([]byte, 8)
		binary.LittleEndian.PutUint64(buffer, value)
		_, err = writer.Write(buffer[:byteCount])
		return err
	}
}

// EncodeByteSlice writes the compact length of b followed
// by the bytes of b to the writer.
func EncodeByteSlice(writer io.Writer, b []byte) (err error) {
	err = EncodeCompactUint(writer, uint64(len(b)))
	if err != nil {
		return fmt.Errorf("encoding length: %w", err)
	}

	_, err = writer.Write(b)
	return err
}
