// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package digest

const (
	// hmacBlockSize is the block size of MD5; keys must fit one block.
	hmacBlockSize = 64
	ipadByte      = 0x36
	opadByte      = 0x5c
)

// HMACMD5 returns the HMAC-MD5 (RFC 2104) of data under key. Keys
// longer than one MD5 block are first replaced by their MD5 digest.
func HMACMD5(data, key []byte) Digest {
	if len(key) > hmacBlockSize {
		k := MD5.Sum(key)
		key = k.b[:md5Size]
	}
	var ipad, opad [hmacBlockSize]byte
	copy(ipad[:], key)
	copy(opad[:], key)
	for i := range ipad {
		ipad[i] ^= ipadByte
		opad[i] ^= opadByte
	}

	inner := MD5.New()
	inner.Write(ipad[:])
	inner.Write(data)
	var sum [md5Size]byte
	inner.Sum(sum[:0])

	outer := MD5.New()
	outer.Write(opad[:])
	outer.Write(sum[:])
	return New(MD5, outer.Sum(nil))
}
