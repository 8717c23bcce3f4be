// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/credcheck/auth"
	"github.com/grailbio/credcheck/cmdutil"
	"github.com/grailbio/credcheck/config"
	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/identity"
	"github.com/grailbio/credcheck/log"
	"golang.org/x/term"
	"v.io/x/lib/cmdline"
)

func newCmdID() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "id",
		Short: "Print the unique id, creating it on first use",
	}
	cfgFlags := config.RegisterFlags(&cmd.Flags, "", defaultConfigPath)
	cmd.Runner = cmdutil.ContextRunnerFunc(func(ctx context.Context, env *cmdline.Env, args []string) error {
		if len(args) != 0 {
			return env.UsageErrorf("id: unexpected arguments")
		}
		cfg, err := cfgFlags.Process()
		if err != nil {
			return err
		}
		id, err := identity.Load(ctx, cfg.IDFile)
		if err != nil {
			return err
		}
		fmt.Fprintln(env.Stdout, id)
		return nil
	})
	return cmd
}

func newCmdVerify() *cmdline.Command {
	var passwordFileFlag string
	cmd := &cmdline.Command{
		Name:     "verify",
		Short:    "Verify the password of a user",
		ArgsName: "<user>",
		Long: `
Verify checks a password against the configured credentials. The
password is read from -password-file if given, from the terminal if
standard input is one, and otherwise from the first line of standard
input. The command exits with status 1 if the password is denied.
`,
	}
	cmd.Flags.StringVar(&passwordFileFlag, "password-file", "", "read the password from this file")
	cfgFlags := config.RegisterFlags(&cmd.Flags, "", defaultConfigPath)
	cmd.Runner = cmdutil.ContextRunnerFunc(func(ctx context.Context, env *cmdline.Env, args []string) error {
		if len(args) != 1 {
			return env.UsageErrorf("verify: exactly one user name required")
		}
		cfg, err := cfgFlags.Process()
		if err != nil {
			return err
		}
		store, err := cfg.Store()
		if err != nil {
			return err
		}
		secret, err := readSecret(env, passwordFileFlag)
		if err != nil {
			return err
		}
		var opts []auth.Option
		if newDelegate != nil {
			opts = append(opts, auth.WithDelegate(newDelegate(cfg.PAMService)))
		}
		out, err := auth.NewVerifier(store, opts...).Authenticate(ctx, args[0], secret)
		if err != nil {
			return err
		}
		if !out.Granted {
			log.Debug.Printf("verify: %s denied", args[0])
			if err := cmdutil.WriteWrappedMessage(env.Stdout, "denied"); err != nil {
				return err
			}
			return cmdline.ErrExitCode(1)
		}
		mode := "read-write"
		if out.Record.ReadOnly {
			mode = "read-only"
		}
		return cmdutil.WriteWrappedMessage(env.Stdout, fmt.Sprintf("granted (%s, %s)", out.Record.Name(), mode))
	})
	return cmd
}

func newCmdBasicAuth() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:  "basicauth",
		Short: "Print the Authorization header the daemon uses for its own requests",
		Long: `
Basicauth prints the HTTP Basic Authorization header value built from the
first cleartext credential that is not read-only.
`,
	}
	cfgFlags := config.RegisterFlags(&cmd.Flags, "", defaultConfigPath)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, args []string) error {
		cfg, err := cfgFlags.Process()
		if err != nil {
			return err
		}
		store, err := cfg.Store()
		if err != nil {
			return err
		}
		h, ok := store.BasicAuth()
		if !ok {
			return errors.E(errors.NotExist, "no cleartext credential that is not read-only")
		}
		fmt.Fprintln(env.Stdout, h)
		return nil
	})
	return cmd
}

func readSecret(env *cmdline.Env, passwordFile string) (string, error) {
	if passwordFile != "" {
		b, err := os.ReadFile(passwordFile)
		if err != nil {
			return "", errors.E("read password file", passwordFile, err)
		}
		return strings.TrimRight(string(b), "\r\n"), nil
	}
	if f, ok := env.Stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(env.Stderr, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(env.Stderr)
		if err != nil {
			return "", errors.E(errors.IO, "read password", err)
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(env.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.E(errors.IO, "read password", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
