// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package auth verifies claimed identities against a configured list
// of credential records. A record names either a user or a group and
// binds it to one of four schemes: a cleartext secret, a salted MD5
// crypt hash, a salted DES crypt hash, or delegation to an external
// authentication service such as PAM.
//
// Records are held in an immutable Store whose order is precedence
// order: the first record naming a user decides the outcome. Group
// records are consulted only for delegated authentication, when no
// record names the user directly.
package auth

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/grailbio/credcheck/errors"
)

// Scheme is the verification scheme of a credential record.
type Scheme int

const (
	// Cleartext records store the secret verbatim.
	Cleartext Scheme = iota
	// SaltedMD5 records store an MD5 crypt hash, "$id$salt$digest".
	SaltedMD5
	// SaltedDES records store a traditional DES crypt(3) hash whose
	// first two characters are the salt.
	SaltedDES
	// Delegated records defer to an external authentication service;
	// their secret is unused.
	Delegated
)

var schemeNames = map[Scheme]string{
	Cleartext: "cleartext",
	SaltedMD5: "md5",
	SaltedDES: "crypt",
	Delegated: "pam",
}

// String returns the scheme's configuration name.
func (s Scheme) String() string {
	if name, ok := schemeNames[s]; ok {
		return name
	}
	return fmt.Sprintf("scheme(%d)", int(s))
}

// ParseScheme returns the scheme with the given configuration name
// (cleartext, md5, crypt, pam).
func ParseScheme(name string) (Scheme, error) {
	for s, n := range schemeNames {
		if n == strings.ToLower(name) {
			return s, nil
		}
	}
	return 0, errors.E(errors.UnsupportedScheme, fmt.Sprintf("unknown credential scheme %q", name))
}

// Record is a single credential entry. Exactly one of Username and
// Groupname is set.
type Record struct {
	Username  string
	Groupname string
	Scheme    Scheme
	Secret    string
	// ReadOnly records may authenticate but are never used by the
	// daemon to authenticate itself (see Store.BasicAuth).
	ReadOnly bool
}

// Name returns the user name, or "@" followed by the group name.
func (r Record) Name() string {
	if r.Groupname != "" {
		return "@" + r.Groupname
	}
	return r.Username
}

// Store is an immutable, ordered snapshot of credential records. It
// is safe for concurrent use.
type Store struct {
	records []Record
	groups  []Record
}

// NewStore returns a store holding a copy of records, in order.
// Records must name exactly one of a user or a group, and group
// records must use the Delegated scheme.
func NewStore(records []Record) (*Store, error) {
	s := &Store{records: make([]Record, len(records))}
	for i, r := range records {
		if (r.Username == "") == (r.Groupname == "") {
			return nil, errors.E(errors.Invalid, fmt.Sprintf("credential %d: exactly one of user and group must be set", i))
		}
		if r.Groupname != "" {
			if r.Scheme != Delegated {
				return nil, errors.E(errors.Invalid, fmt.Sprintf("credential %s: group credentials require the %s scheme, not %s", r.Name(), Delegated, r.Scheme))
			}
			s.groups = append(s.groups, r)
		}
		s.records[i] = r
	}
	return s, nil
}

// Len returns the number of records in the store.
func (s *Store) Len() int { return len(s.records) }

// Records returns a copy of the store's records in precedence order.
func (s *Store) Records() []Record {
	return append([]Record(nil), s.records...)
}

// Lookup returns the first record whose user name equals username.
func (s *Store) Lookup(username string) (Record, bool) {
	if r := s.user(username); r != nil {
		return *r, true
	}
	return Record{}, false
}

func (s *Store) user(username string) *Record {
	for i := range s.records {
		if r := &s.records[i]; r.Username != "" && r.Username == username {
			return r
		}
	}
	return nil
}

// BasicAuth returns an HTTP Basic authorization header value built
// from the first cleartext user record that is not read-only. The
// daemon's own command line client uses it to talk to the daemon.
func (s *Store) BasicAuth() (string, bool) {
	for _, r := range s.records {
		if r.Scheme == Cleartext && r.Username != "" && !r.ReadOnly {
			return "Basic " + base64.StdEncoding.EncodeToString([]byte(r.Username+":"+r.Secret)), true
		}
	}
	return "", false
}
