// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package identity manages the daemon's unique identifier: a random
// hex MD5 generated on first start and stored in an id file, then read
// back on every later start.
package identity

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/grailbio/credcheck/digest"
	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/fileio"
	"github.com/grailbio/credcheck/flock"
	"github.com/grailbio/credcheck/log"
)

// MaxLen is the longest identifier Load reads back from an id file.
const MaxLen = 255

// Seed sources for new identifiers; tests override them.
var (
	now    = time.Now
	pid    = os.Getpid
	random = rand.Uint64
)

// Load returns the identifier stored at path. If no file exists there,
// Load generates a new identifier and stores it. Creation is guarded by
// an advisory lock on path+".lock" so that concurrent first starts
// agree on one identifier.
//
// The unlocked first read never sees a partial identifier: create
// writes a temporary file and renames it into place. A failed first
// read is retried under the lock.
func Load(ctx context.Context, path string) (_ string, err error) {
	id, err := read(path)
	if err == nil {
		return id, nil
	}
	lock := flock.New(path + ".lock")
	if lockErr := lock.Lock(ctx); lockErr != nil {
		if errors.Is(errors.NotExist, err) {
			return "", lockErr
		}
		return "", err
	}
	defer errors.CleanUp(lock.Unlock, &err)
	id, err = read(path)
	if err == nil || !errors.Is(errors.NotExist, err) {
		return id, err
	}
	return create(path)
}

// Generate returns a new identifier: the hex MD5 of the decimal
// concatenation of the current unix time, the process id, and a random
// number.
func Generate() string {
	seed := strconv.FormatInt(now().Unix(), 10) + strconv.Itoa(pid()) + strconv.FormatUint(random(), 10)
	return digest.MD5.Sum([]byte(seed)).Hex()
}

func read(path string) (_ string, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.E("stat id file", path, err)
	}
	if !info.Mode().IsRegular() {
		log.Error.Printf("identity: id file %s is not a regular file", path)
		return "", errors.E(errors.Invalid, "id file", path, "is not a regular file")
	}
	f, err := os.Open(path)
	if err != nil {
		return "", errors.E(errors.IO, "open id file", path, err)
	}
	defer fileio.CloseAndReport(f, &err)
	id, err := scanToken(bufio.NewReader(f), MaxLen)
	if err != nil {
		return "", errors.E(errors.IO, "read id file", path, err)
	}
	if id == "" {
		log.Error.Printf("identity: error reading id from file %s", path)
		return "", errors.E(errors.Invalid, "id file", path, "is empty")
	}
	return id, nil
}

// scanToken returns the first whitespace-delimited token of r,
// truncated to limit bytes.
func scanToken(r io.ByteReader, limit int) (string, error) {
	var tok []byte
	for len(tok) < limit {
		c, err := r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if isSpace(c) {
			if len(tok) > 0 {
				break
			}
			continue
		}
		tok = append(tok, c)
	}
	return string(tok), nil
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func create(path string) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		log.Error.Printf("identity: error opening the id file %s: %v", path, err)
		return "", errors.E(errors.IO, "create id file", path, err)
	}
	id := Generate()
	if err := write(f, id); err != nil {
		if rmErr := os.Remove(f.Name()); rmErr != nil {
			log.Error.Printf("identity: remove %s: %v", f.Name(), rmErr)
		}
		return "", errors.E(errors.IO, "write id file", path, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		if rmErr := os.Remove(f.Name()); rmErr != nil {
			log.Error.Printf("identity: remove %s: %v", f.Name(), rmErr)
		}
		return "", errors.E(errors.IO, "install id file", path, err)
	}
	log.Printf("generated unique id %s and stored to %s", id, path)
	return id, nil
}

func write(f *os.File, id string) (err error) {
	defer fileio.CloseAndReport(f, &err)
	if _, err = fmt.Fprint(f, id); err != nil {
		return err
	}
	return f.Sync()
}
