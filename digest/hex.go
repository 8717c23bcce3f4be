// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/must"
)

// HexCapacity is the capacity of a buffer holding the hex form of the
// largest digest plus its terminator.
const HexCapacity = 2*maxSize + 1

const hexTable = "0123456789abcdef"

// EncodeHex returns the lowercase hex encoding of b for a caller that
// has declared room for capacity characters, including a terminator.
// If 2*len(b)+1 exceeds capacity, EncodeHex fails loudly through
// package must rather than truncating.
func EncodeHex(b []byte, capacity int) string {
	if need := 2*len(b) + 1; need > capacity {
		must.Nil(errors.E(errors.BufferOverflow,
			fmt.Sprintf("hex encoding of %d bytes needs capacity %d, have %d", len(b), need, capacity)))
	}
	out := make([]byte, 2*len(b))
	for i, c := range b {
		out[2*i] = hexTable[c>>4]
		out[2*i+1] = hexTable[c&0x0f]
	}
	return string(out)
}

// DecodeHex parses the hex form of an MD5 (32 characters) or SHA1 (40
// characters) digest. Either case is accepted.
func DecodeHex(s string) (Digest, error) {
	var alg Algorithm
	switch len(s) {
	case 2 * md5Size:
		alg = MD5
	case 2 * maxSize:
		alg = SHA1
	default:
		return Digest{}, errors.E(errors.Invalid, fmt.Sprintf("hex digest %q has length %d; want 32 or 40", s, len(s)))
	}
	var b [maxSize]byte
	if _, err := hex.Decode(b[:], []byte(s)); err != nil {
		return Digest{}, errors.E(errors.Invalid, fmt.Sprintf("hex digest %q", s), err)
	}
	return New(alg, b[:alg.Size()]), nil
}
