// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package digest

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"errors"
	"io"
	"math/rand"
	"testing"
	"testing/iotest"

	cerrors "github.com/grailbio/credcheck/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkReader delivers at most n bytes per Read and, every other call,
// returns no data and no error, as a nonblocking source might.
type chunkReader struct {
	r     io.Reader
	n     int
	calls int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	c.calls++
	if c.calls%2 == 0 {
		return 0, nil
	}
	if len(p) > c.n {
		p = p[:c.n]
	}
	return c.r.Read(p)
}

func randBytes(n int) []byte {
	b := make([]byte, n)
	rand.New(rand.NewSource(int64(n))).Read(b)
	return b
}

func TestStream(t *testing.T) {
	for _, n := range []int{0, 1, 63, 64, BlockSize - 1, BlockSize, BlockSize + 1, 3*BlockSize + 17} {
		data := randBytes(n)
		wantMD5, wantSHA1 := md5.Sum(data), sha1.Sum(data)
		digests, err := Stream(bytes.NewReader(data), SHA1, MD5)
		require.NoError(t, err)
		require.Len(t, digests, 2)
		if got, want := digests[0].Bytes(), wantSHA1[:]; !bytes.Equal(got, want) {
			t.Errorf("size %d: got %x want %x", n, got, want)
		}
		if got, want := digests[1].Bytes(), wantMD5[:]; !bytes.Equal(got, want) {
			t.Errorf("size %d: got %x want %x", n, got, want)
		}
	}
}

func TestStreamChunking(t *testing.T) {
	data := randBytes(5*BlockSize + 1234)
	want, err := Stream(bytes.NewReader(data), MD5, SHA1)
	require.NoError(t, err)
	readers := map[string]io.Reader{
		"onebyte":    iotest.OneByteReader(bytes.NewReader(data)),
		"half":       iotest.HalfReader(bytes.NewReader(data)),
		"dataerr":    iotest.DataErrReader(bytes.NewReader(data)),
		"chunk7":     &chunkReader{r: bytes.NewReader(data), n: 7},
		"chunk4095":  &chunkReader{r: bytes.NewReader(data), n: BlockSize - 1},
		"chunk10000": &chunkReader{r: bytes.NewReader(data), n: 10000},
	}
	for name, r := range readers {
		got, err := Stream(r, MD5, SHA1)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
}

func TestStreamSingle(t *testing.T) {
	d, err := SHA1.Read(iotest.HalfReader(bytes.NewReader([]byte("abc"))))
	require.NoError(t, err)
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", d.Hex())
}

func TestStreamReadError(t *testing.T) {
	errBad := errors.New("bad sector")
	// Fails on the first read.
	_, err := Stream(iotest.ErrReader(errBad), MD5)
	assert.True(t, cerrors.Is(cerrors.IO, err), "got %v", err)
	assert.True(t, errors.Is(err, errBad))

	// Fails after delivering part of a block: the bytes are kept, and
	// the error surfaces on the following empty read.
	r := iotest.TimeoutReader(bytes.NewReader(randBytes(100)))
	_, err = Stream(iotest.OneByteReader(r), MD5)
	assert.True(t, cerrors.Is(cerrors.IO, err), "got %v", err)

	// An error after complete data still fails the computation.
	_, err = Stream(io.MultiReader(bytes.NewReader(randBytes(10)), iotest.ErrReader(errBad)), SHA1)
	assert.True(t, cerrors.Is(cerrors.IO, err), "got %v", err)
}

func TestStreamArgs(t *testing.T) {
	_, err := Stream(bytes.NewReader(nil))
	assert.True(t, cerrors.Is(cerrors.Invalid, err))
	_, err = Stream(bytes.NewReader(nil), MD5, MD5)
	assert.True(t, cerrors.Is(cerrors.Invalid, err))
	_, err = Stream(bytes.NewReader(nil), Algorithm(0))
	assert.True(t, cerrors.Is(cerrors.Invalid, err))
}
