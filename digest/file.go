// Copyright 2017 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package digest

import (
	"fmt"
	"os"
	"strings"

	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/fileio"
)

// File computes the digest of the regular file at path.
func File(path string, alg Algorithm) (_ Digest, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return Digest{}, errors.E(errors.IO, "checksum", err)
	}
	if !info.Mode().IsRegular() {
		return Digest{}, errors.E(errors.Invalid, fmt.Sprintf("checksum: %s is not a regular file", path))
	}
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, errors.E(errors.IO, "checksum", err)
	}
	defer fileio.CloseAndReport(f, &err)
	d, err := alg.Read(f)
	if err != nil {
		return Digest{}, errors.E(fmt.Sprintf("checksum %s", path), err)
	}
	return d, nil
}

// Checksum returns the lowercase hex digest of the regular file at
// path: 32 characters for MD5, 40 for SHA1.
func Checksum(path string, alg Algorithm) (string, error) {
	d, err := File(path, alg)
	if err != nil {
		return "", err
	}
	return d.Hex(), nil
}

// Verify checks that the file at path still has the recorded hex
// checksum want. A mismatch is reported as an error of kind
// errors.Integrity.
func Verify(path string, alg Algorithm, want string) error {
	got, err := Checksum(path, alg)
	if err != nil {
		return err
	}
	if got != strings.ToLower(want) {
		return errors.E(errors.Integrity, fmt.Sprintf("%s: %s checksum changed from %s to %s", path, alg, want, got))
	}
	return nil
}
