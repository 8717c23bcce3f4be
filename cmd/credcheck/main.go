// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Command credcheck verifies credentials against a credential
// configuration and computes the content digests used to track file
// integrity.
package main

import (
	"regexp"

	"github.com/grailbio/credcheck/auth"
	"github.com/grailbio/credcheck/cmdutil"
	"github.com/grailbio/credcheck/log"
	"v.io/x/lib/cmdline"
)

const defaultConfigPath = "/etc/credcheck.yaml"

// newDelegate returns the external authentication service for
// delegated credentials. It is nil unless the binary is built with
// PAM support.
var newDelegate func(service string) auth.Service

func newCmdRoot() *cmdline.Command {
	return &cmdline.Command{
		Name:  "credcheck",
		Short: "Verify credentials and compute content digests",
		Long: `
Credcheck verifies user credentials against the credential list of a
configuration file, and computes the MD5, SHA1 and HMAC-MD5 digests used
to identify the daemon and to detect changes to monitored files.
`,
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdHash(),
			newCmdChecksum(),
			newCmdHMAC(),
			newCmdID(),
			newCmdVerify(),
			newCmdBasicAuth(),
			cmdutil.CreateVersionCommand("version", "credcheck"),
		},
	}
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("credcheck: ")
	log.AddFlags()
	cmdline.HideGlobalFlagsExcept(regexp.MustCompile(`^log$`))
	cmdline.Main(newCmdRoot())
}
