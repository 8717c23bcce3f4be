// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package digest computes the content digests used for file-integrity
// tracking and by the credential schemes: MD5 and SHA1 digests over
// byte streams of any length in bounded memory, HMAC-MD5 keyed
// digests, and bounds-checked lowercase hex encoding. Digests are
// fixed-size values that are directly comparable.
package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"fmt"
	"hash"
	"strings"

	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/must"
)

const (
	md5Size = md5.Size
	// maxSize is the size of the largest supported digest (SHA1).
	maxSize = sha1.Size
)

// Algorithm names a block digest algorithm.
type Algorithm int

const (
	// MD5 produces 16-byte digests.
	MD5 Algorithm = 1 + iota
	// SHA1 produces 20-byte digests.
	SHA1
)

var names = map[Algorithm]string{
	MD5:  "md5",
	SHA1: "sha1",
}

// ParseAlgorithm returns the algorithm with the provided name,
// as returned by Algorithm.String.
func ParseAlgorithm(name string) (Algorithm, error) {
	for alg, n := range names {
		if strings.EqualFold(n, name) {
			return alg, nil
		}
	}
	return 0, errors.E(errors.Invalid, fmt.Sprintf("unknown digest algorithm %q", name))
}

func (a Algorithm) valid() bool {
	_, ok := names[a]
	return ok
}

// String returns the algorithm's name.
func (a Algorithm) String() string {
	if n, ok := names[a]; ok {
		return n
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

// Size returns the length in bytes of the algorithm's digests.
func (a Algorithm) Size() int {
	switch a {
	case MD5:
		return md5.Size
	case SHA1:
		return sha1.Size
	}
	must.Neverf("digest: unknown algorithm %d", int(a))
	return 0
}

// New returns fresh incremental state for the algorithm. The state
// is owned by the caller and must not be shared between computations.
func (a Algorithm) New() hash.Hash {
	switch a {
	case MD5:
		return md5.New()
	case SHA1:
		return sha1.New()
	}
	must.Neverf("digest: unknown algorithm %d", int(a))
	return nil
}

// Sum computes the digest of p in one step.
func (a Algorithm) Sum(p []byte) Digest {
	h := a.New()
	_, err := h.Write(p)
	must.Nil(err, "digest: hash write")
	return New(a, h.Sum(nil))
}

// Digest is a digest computed with one of the supported algorithms.
// It uses a fixed-size representation and is directly comparable.
// The zero Digest carries no algorithm.
type Digest struct {
	alg Algorithm
	b   [maxSize]byte
}

// New returns a literal digest with the provided algorithm and value.
// New panics if the length of b does not match the algorithm's size.
func New(alg Algorithm, b []byte) Digest {
	must.Truef(alg.Size() == len(b), "digest: %d bytes is not a %s digest", len(b), alg)
	d := Digest{alg: alg}
	copy(d.b[:], b)
	return d
}

// IsZero returns whether the digest is the zero digest.
func (d Digest) IsZero() bool { return d.alg == 0 }

// Algorithm returns the algorithm that produced the digest.
func (d Digest) Algorithm() Algorithm { return d.alg }

// Bytes returns a copy of the raw digest bytes.
func (d Digest) Bytes() []byte {
	if d.IsZero() {
		return nil
	}
	return append([]byte(nil), d.b[:d.alg.Size()]...)
}

// Hex returns the lowercase hexadecimal representation of the digest:
// 32 characters for MD5, 40 for SHA1.
func (d Digest) Hex() string {
	if d.IsZero() {
		return ""
	}
	return EncodeHex(d.b[:d.alg.Size()], HexCapacity)
}

// String returns the algorithm name, followed by ":", followed by
// the digest's hexadecimal value.
func (d Digest) String() string {
	if d.IsZero() {
		return "<zero>"
	}
	return d.alg.String() + ":" + d.Hex()
}

// Parse parses a digest in the form produced by Digest.String. The
// algorithm prefix may be omitted, in which case the algorithm is
// inferred from the length of the hex value.
func Parse(s string) (Digest, error) {
	name, hx, ok := strings.Cut(s, ":")
	if !ok {
		return DecodeHex(s)
	}
	alg, err := ParseAlgorithm(name)
	if err != nil {
		return Digest{}, err
	}
	d, err := DecodeHex(hx)
	if err != nil {
		return Digest{}, err
	}
	if d.alg != alg {
		return Digest{}, errors.E(errors.Invalid, fmt.Sprintf("digest %q: value is not %s", s, alg))
	}
	return d, nil
}
