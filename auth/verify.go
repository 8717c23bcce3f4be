// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/log"
)

// Outcome is the result of a verification.
type Outcome struct {
	// Granted tells whether the supplied secret was accepted.
	Granted bool
	// Record is a copy of the record that decided the outcome, or nil
	// if no record applies to the user.
	Record *Record
}

// Verifier checks secrets against a Store. A Verifier holds no
// mutable state and may be used concurrently.
type Verifier struct {
	store    *Store
	delegate Service
	groups   GroupDB
}

// An Option configures a Verifier.
type Option func(*Verifier)

// WithDelegate enables the Delegated scheme, and group records,
// using the provided external authentication service.
func WithDelegate(s Service) Option {
	return func(v *Verifier) { v.delegate = s }
}

// WithGroups sets the group database used to match group records.
// The default is OSGroups.
func WithGroups(db GroupDB) Option {
	return func(v *Verifier) { v.groups = db }
}

// NewVerifier returns a verifier for the records in store.
func NewVerifier(store *Store, opts ...Option) *Verifier {
	v := &Verifier{store: store, groups: OSGroups{}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Authenticate verifies that secret is the secret of username.
//
// A wrong secret, an unknown user, or a user that matches no group
// record is a denial: the outcome is not granted and the error is
// nil. Errors report records that cannot be checked (kinds
// errors.MalformedRecord and errors.UnsupportedScheme) and failed
// delegated sessions (errors.ExternalAuth); the outcome is then
// always denied.
func (v *Verifier) Authenticate(ctx context.Context, username, secret string) (Outcome, error) {
	r := v.lookup(username)
	if r == nil {
		return Outcome{}, nil
	}
	granted, err := v.check(ctx, r, username, secret)
	if err != nil {
		err = errors.E(fmt.Sprintf("verify %s", username), err)
	}
	return Outcome{Granted: granted && err == nil, Record: r}, err
}

// lookup returns a copy of the record deciding username's outcome.
func (v *Verifier) lookup(username string) *Record {
	if r := v.store.user(username); r != nil {
		copy := *r
		return &copy
	}
	if v.delegate == nil {
		return nil
	}
	if r, ok := ResolveGroupRule(v.groups, username, v.store.groups); ok {
		copy := *r
		return &copy
	}
	return nil
}

func (v *Verifier) check(ctx context.Context, r *Record, username, secret string) (bool, error) {
	switch r.Scheme {
	case Cleartext:
		return equal(secret, r.Secret), nil
	case SaltedMD5:
		return checkSaltedMD5(r.Secret, secret)
	case SaltedDES:
		return checkSaltedDES(r.Secret, secret)
	case Delegated:
		return v.checkDelegated(ctx, username, secret)
	}
	log.Error.Printf("auth: unknown password digestion method %v for %s", r.Scheme, r.Name())
	return false, errors.E(errors.UnsupportedScheme, fmt.Sprintf("credential %s uses %v", r.Name(), r.Scheme))
}

func (v *Verifier) checkDelegated(ctx context.Context, username, secret string) (bool, error) {
	if v.delegate == nil {
		return false, errors.E(errors.UnsupportedScheme, "delegated authentication is not configured")
	}
	if err := ctx.Err(); err != nil {
		return false, errors.E(errors.ExternalAuth, err)
	}
	ok, err := v.delegate.Authenticate(ctx, username, loginResponder{login: username, secret: secret})
	if err != nil {
		log.Debug.Printf("auth: delegated authentication of %s failed: %v", username, err)
		return false, errors.E(errors.ExternalAuth, err)
	}
	return ok, nil
}

// equal compares secrets in time independent of where they differ.
func equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
