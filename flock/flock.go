// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

//go:build !windows

// Package flock implements a simple POSIX file-based advisory lock.
package flock

import (
	"context"
	"sync"

	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/log"
	"golang.org/x/sys/unix"
)

// T is an exclusive advisory lock on a file. The lock file is created
// if needed and is never removed. A T serializes its holders within
// the process as well as across processes.
type T struct {
	name string
	fd   int
	mu   sync.Mutex
}

// New creates an object that locks the given path.
func New(path string) *T {
	return &T{name: path}
}

// Lock locks the file. Iff Lock returns nil, the caller must call
// Unlock later. If ctx is done before the lock is acquired, Lock
// returns the context's error and the lock, once acquired in the
// background, is released.
func (f *T) Lock(ctx context.Context) (err error) {
	reqCh := make(chan func() error, 2)
	doneCh := make(chan error, 2)
	go func() {
		var err error
		for req := range reqCh {
			if err == nil {
				err = req()
			}
			doneCh <- err
		}
	}()
	reqCh <- f.doLock
	select {
	case <-ctx.Done():
		reqCh <- f.doUnlock
		err = errors.E(errors.Canceled, "lock", f.name, ctx.Err())
	case err = <-doneCh:
	}
	close(reqCh)
	return err
}

// Unlock unlocks the file.
func (f *T) Unlock() error {
	return f.doUnlock()
}

func (f *T) doLock() error {
	f.mu.Lock() // Serialize the lock within one process.

	var err error
	f.fd, err = unix.Open(f.name, unix.O_CREAT|unix.O_RDWR|unix.O_CLOEXEC, 0600)
	if err != nil {
		f.mu.Unlock()
		return errors.E(errors.IO, "open lock", f.name, err)
	}
	err = unix.Flock(f.fd, unix.LOCK_EX|unix.LOCK_NB)
	for err == unix.EWOULDBLOCK || err == unix.EINTR {
		log.Printf("waiting for lock %s", f.name)
		err = unix.Flock(f.fd, unix.LOCK_EX)
	}
	if err != nil {
		_ = unix.Close(f.fd)
		f.mu.Unlock()
		return errors.E(errors.IO, "flock", f.name, err)
	}
	return nil
}

func (f *T) doUnlock() error {
	err := unix.Flock(f.fd, unix.LOCK_UN)
	if err := unix.Close(f.fd); err != nil {
		log.Error.Printf("close %s: %v", f.name, err)
	}
	f.mu.Unlock()
	if err != nil {
		return errors.E(errors.IO, "unlock", f.name, err)
	}
	return nil
}
