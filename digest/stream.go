// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package digest

import (
	"fmt"
	"hash"
	"io"

	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/must"
)

// BlockSize is the number of bytes Stream accumulates before handing
// them to the hash states. It is a multiple of the 64-byte block of
// both MD5 and SHA1.
const BlockSize = 4096

// Stream reads r until io.EOF and returns one digest per requested
// algorithm, in the order requested. Memory use is bounded by
// BlockSize regardless of the stream's length, and the result depends
// only on the bytes read, never on how the reader chunks them.
//
// A read that returns no bytes and no error is retried; only io.EOF
// ends the stream. A read that returns bytes together with an error
// keeps the bytes and reads again. A read that returns no bytes and a
// non-EOF error fails the computation with an error of kind
// errors.IO.
func Stream(r io.Reader, algs ...Algorithm) ([]Digest, error) {
	if len(algs) == 0 {
		return nil, errors.E(errors.Invalid, "no digest algorithm requested")
	}
	states := make([]hash.Hash, len(algs))
	for i, alg := range algs {
		if !alg.valid() {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("unknown digest algorithm %d", int(alg)))
		}
		for _, prev := range algs[:i] {
			if prev == alg {
				return nil, errors.E(errors.Invalid, fmt.Sprintf("digest algorithm %s requested twice", alg))
			}
		}
		states[i] = alg.New()
	}
	var (
		buf = make([]byte, BlockSize)
		eof bool
	)
	for !eof {
		sum := 0
		for sum < BlockSize {
			n, err := r.Read(buf[sum:])
			sum += n
			if err == io.EOF {
				eof = true
				break
			}
			if err != nil && n == 0 {
				return nil, errors.E(errors.IO, "reading stream", err)
			}
		}
		if sum > 0 {
			update(states, buf[:sum])
		}
	}
	digests := make([]Digest, len(algs))
	for i, alg := range algs {
		digests[i] = New(alg, states[i].Sum(nil))
	}
	return digests, nil
}

func update(states []hash.Hash, p []byte) {
	for _, h := range states {
		_, err := h.Write(p)
		must.Nil(err, "digest: hash write")
	}
}

// Read computes the digest of everything read from r. See Stream.
func (a Algorithm) Read(r io.Reader) (Digest, error) {
	digests, err := Stream(r, a)
	if err != nil {
		return Digest{}, err
	}
	return digests[0], nil
}
