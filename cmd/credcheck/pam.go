// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

//go:build pam

package main

import (
	"github.com/grailbio/credcheck/auth"
	"github.com/grailbio/credcheck/auth/pamauth"
)

func init() {
	newDelegate = func(service string) auth.Service { return pamauth.New(service) }
}
