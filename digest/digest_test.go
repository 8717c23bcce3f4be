// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package digest

import (
	"testing"

	"github.com/grailbio/credcheck/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDigest(t *testing.T) {
	for _, tc := range []struct {
		alg Algorithm
		in  string
		out string
	}{
		{MD5, "hello, world!", "md5:3adbbad1791fbae3ec908894c4963870"},
		{MD5, "", "md5:d41d8cd98f00b204e9800998ecf8427e"},
		{MD5, "abc", "md5:900150983cd24fb0d6963f7d28e17f72"},
		{SHA1, "", "sha1:da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{SHA1, "abc", "sha1:a9993e364706816aba3e25717850c26c9cd0d89d"},
	} {
		d := tc.alg.Sum([]byte(tc.in))
		if got, want := d.String(), tc.out; got != want {
			t.Fatalf("got %v want %v", got, want)
		}
		if got, want := len(d.Bytes()), tc.alg.Size(); got != want {
			t.Fatalf("got %v want %v", got, want)
		}
		dd, err := Parse(tc.out)
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if got, want := dd, d; got != want {
			t.Fatalf("got %v want %v", got, want)
		}
		dd, err = Parse(d.Hex())
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if got, want := dd, d; got != want {
			t.Fatalf("got %v want %v", got, want)
		}
		if got, want := dd.Algorithm(), tc.alg; got != want {
			t.Fatalf("got %v want %v", got, want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{
		"md5",
		"sha1:d41d8cd98f00b204e9800998ecf8427e",
		"sha256:d41d8cd98f00b204e9800998ecf8427e",
		"md5:zz1d8cd98f00b204e9800998ecf8427e",
		"abcdef",
	} {
		_, err := Parse(s)
		if !errors.Is(errors.Invalid, err) {
			t.Errorf("%q: got %v, want invalid", s, err)
		}
	}
}

func TestAlgorithm(t *testing.T) {
	for _, name := range []string{"md5", "MD5", "sha1"} {
		alg, err := ParseAlgorithm(name)
		require.NoError(t, err)
		assert.True(t, alg == MD5 || alg == SHA1)
	}
	_, err := ParseAlgorithm("sha256")
	assert.True(t, errors.Is(errors.Invalid, err))
	assert.Equal(t, "algorithm(9)", Algorithm(9).String())
	assert.Panics(t, func() { Algorithm(9).New() })
	assert.Panics(t, func() { Algorithm(9).Size() })
}

func TestNewLength(t *testing.T) {
	assert.Panics(t, func() { New(SHA1, make([]byte, 16)) })
	d := New(MD5, make([]byte, 16))
	assert.Equal(t, "00000000000000000000000000000000", d.Hex())
	assert.True(t, Digest{}.IsZero())
	assert.Equal(t, "", Digest{}.Hex())
	assert.Nil(t, Digest{}.Bytes())
}
