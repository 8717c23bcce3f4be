// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package digest

import (
	"bytes"
	"encoding/hex"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHexRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(0))
	for _, n := range []int{16, 20} {
		for i := 0; i < 100; i++ {
			b := make([]byte, n)
			r.Read(b)
			s := EncodeHex(b, HexCapacity)
			if got, want := s, hex.EncodeToString(b); got != want {
				t.Fatalf("got %v want %v", got, want)
			}
			d, err := DecodeHex(s)
			if err != nil {
				t.Fatal(err)
			}
			if got, want := d.Bytes(), b; !bytes.Equal(got, want) {
				t.Fatalf("got %x want %x", got, want)
			}
		}
	}
}

func TestHexUppercaseInput(t *testing.T) {
	d, err := DecodeHex("D41D8CD98F00B204E9800998ECF8427E")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := d.Hex(), "d41d8cd98f00b204e9800998ecf8427e"; got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestHexCapacity(t *testing.T) {
	b := bytes.Repeat([]byte{0xab}, 20)
	assert.NotPanics(t, func() {
		assert.Equal(t, strings.Repeat("ab", 20), EncodeHex(b, 41))
	})
	assert.Panics(t, func() { EncodeHex(b, 40) })
	assert.Panics(t, func() { EncodeHex(b[:16], 32) })
	assert.Equal(t, "", EncodeHex(nil, 1))
}
