// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package auth

import (
	"os/user"

	"github.com/grailbio/credcheck/log"
)

// GroupDB answers group membership questions about users.
type GroupDB interface {
	// PrimaryGroup returns the name of the user's primary group.
	PrimaryGroup(username string) (string, error)
	// InGroup tells whether the named group has username as a member.
	InGroup(groupname, username string) (bool, error)
}

// OSGroups is the GroupDB of the host's user and group database.
type OSGroups struct{}

// PrimaryGroup implements GroupDB.
func (OSGroups) PrimaryGroup(username string) (string, error) {
	u, err := user.Lookup(username)
	if err != nil {
		return "", err
	}
	g, err := user.LookupGroupId(u.Gid)
	if err != nil {
		return "", err
	}
	return g.Name, nil
}

// InGroup implements GroupDB.
func (OSGroups) InGroup(groupname, username string) (bool, error) {
	g, err := user.LookupGroup(groupname)
	if err != nil {
		return false, err
	}
	u, err := user.Lookup(username)
	if err != nil {
		return false, err
	}
	gids, err := u.GroupIds()
	if err != nil {
		return false, err
	}
	for _, gid := range gids {
		if gid == g.Gid {
			return true, nil
		}
	}
	return false, nil
}

// ResolveGroupRule returns the first rule whose group is the primary
// group of username, or which lists username as a member. Rules
// without a group name are skipped. Lookup failures are not errors:
// an unknown user matches nothing and an unknown group does not match.
func ResolveGroupRule(db GroupDB, username string, rules []Record) (*Record, bool) {
	primary, err := db.PrimaryGroup(username)
	if err != nil {
		log.Debug.Printf("auth: no primary group for %s: %v", username, err)
		return nil, false
	}
	for i := range rules {
		r := &rules[i]
		if r.Groupname == "" {
			continue
		}
		if r.Groupname == primary {
			return r, true
		}
		member, err := db.InGroup(r.Groupname, username)
		if err != nil {
			log.Debug.Printf("auth: group %s: %v", r.Groupname, err)
			continue
		}
		if member {
			return r, true
		}
	}
	return nil, false
}
