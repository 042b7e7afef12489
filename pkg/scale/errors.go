// Copyright 2023 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package scale

import (
	"errors"
	"fmt"
)

// ErrInvalidScaleEncoding is the sentinel error wrapped by every decoding
// failure in this package, so callers can tell codec corruption apart from
// other failure kinds using errors.Is.
var ErrInvalidScaleEncoding = errors.New("invalid SCALE encoding")

var (
	ErrReadFirstByte    = fmt.Errorf("%w: cannot read first byte", ErrInvalidScaleEncoding)
	ErrReadValueBytes   = fmt.Errorf("%w: cannot read value bytes", ErrInvalidScaleEncoding)
	ErrCompactTooBig    = fmt.Errorf("%w: compact unsigned integer does not fit in uint64", ErrInvalidScaleEncoding)
	ErrByteSliceTooLong = fmt.Errorf("%w: byte slice length exceeds maximum", ErrInvalidScaleEncoding)
	ErrBadFixedWidth    = fmt.Errorf("%w: fixed width must be from 1 to 8 bytes", ErrInvalidScaleEncoding)
	ErrUint256TooLong   = fmt.Errorf("%w: uint256 value exceeds 32 bytes", ErrInvalidScaleEncoding)
)
