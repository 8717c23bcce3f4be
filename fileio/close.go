// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package fileio provides helpers for the files the credential tools
// read and write: checksum targets and identity records.
package fileio

import (
	"fmt"
	"io"

	"github.com/grailbio/credcheck/errors"
)

type named interface {
	// Name returns the path name.
	Name() string
}

// CloseAndReport returns a defer-able helper that calls f.Close and reports errors, if any,
// to *err. Pass your function's named return error. Example usage:
//
//	func checksum(path string) (_ string, err error) {
//		f, err := os.Open(path)
//		if err != nil { ... }
//		defer fileio.CloseAndReport(f, &err)
//		...
//	}
//
// A Close failure is reported with kind errors.IO. If your function
// returns with an error, the Close error is chained to it instead.
func CloseAndReport(f io.Closer, err *error) {
	err2 := f.Close()
	if err2 == nil {
		return
	}
	name := "file"
	if namer, ok := f.(named); ok {
		name = namer.Name()
	}
	if *err != nil {
		*err = errors.E(*err, fmt.Sprintf("second error on close %s: %v", name, err2))
		return
	}
	*err = errors.E(errors.IO, "close", name, err2)
}
