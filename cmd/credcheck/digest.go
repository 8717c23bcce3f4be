// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/grailbio/credcheck/cmdutil"
	"github.com/grailbio/credcheck/digest"
	"github.com/grailbio/credcheck/errors"
	"golang.org/x/sync/errgroup"
	"v.io/x/lib/cmdline"
)

func parseAlgorithms(name string) ([]digest.Algorithm, error) {
	if strings.EqualFold(name, "all") {
		return []digest.Algorithm{digest.MD5, digest.SHA1}, nil
	}
	alg, err := digest.ParseAlgorithm(name)
	if err != nil {
		return nil, err
	}
	return []digest.Algorithm{alg}, nil
}

func printDigests(w io.Writer, ds []digest.Digest, label string) {
	for _, d := range ds {
		var line string
		if len(ds) > 1 {
			line = d.String()
		} else {
			line = d.Hex()
		}
		if label != "" {
			line += "  " + label
		}
		fmt.Fprintln(w, line)
	}
}

func newCmdHash() *cmdline.Command {
	var algFlag string
	cmd := &cmdline.Command{
		Name:     "hash",
		Short:    "Digest standard input or the given strings",
		ArgsName: "[string...]",
		Long: `
Hash prints the digest of each argument string. Without arguments it
prints the digest of standard input. With -alg=all both the MD5 and the
SHA1 digests are printed, each prefixed by the algorithm name.
`,
	}
	cmd.Flags.StringVar(&algFlag, "alg", "md5", "digest algorithm: md5, sha1 or all")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, args []string) error {
		algs, err := parseAlgorithms(algFlag)
		if err != nil {
			return env.UsageErrorf("hash: %v", err)
		}
		if len(args) == 0 {
			ds, err := digest.Stream(env.Stdin, algs...)
			if err != nil {
				return err
			}
			printDigests(env.Stdout, ds, "")
			return nil
		}
		for _, arg := range args {
			ds := make([]digest.Digest, len(algs))
			for i, alg := range algs {
				ds[i] = alg.Sum([]byte(arg))
			}
			printDigests(env.Stdout, ds, "")
		}
		return nil
	})
	return cmd
}

func newCmdChecksum() *cmdline.Command {
	var (
		algFlag    string
		verifyFlag string
	)
	cmd := &cmdline.Command{
		Name:     "checksum",
		Short:    "Compute or verify file checksums",
		ArgsName: "file...",
		Long: `
Checksum prints the checksum of each file, in the format of md5sum(1).
Files are read concurrently. With -verify, the single file argument is
checked against the given checksum and the command fails if it changed.
`,
	}
	cmd.Flags.StringVar(&algFlag, "alg", "md5", "checksum algorithm: md5 or sha1")
	cmd.Flags.StringVar(&verifyFlag, "verify", "", "expected checksum of the single file argument")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, args []string) error {
		if len(args) == 0 {
			return env.UsageErrorf("checksum: no files given")
		}
		alg, err := digest.ParseAlgorithm(algFlag)
		if err != nil {
			return env.UsageErrorf("checksum: %v", err)
		}
		if verifyFlag != "" {
			if len(args) != 1 {
				return env.UsageErrorf("checksum: -verify takes exactly one file")
			}
			err := digest.Verify(args[0], alg, verifyFlag)
			switch {
			case err == nil:
				return cmdutil.WriteWrappedMessage(env.Stdout, args[0]+": OK")
			case errors.Is(errors.Integrity, err):
				if err := cmdutil.WriteWrappedMessage(env.Stdout, args[0]+": FAILED"); err != nil {
					return err
				}
				return cmdline.ErrExitCode(1)
			default:
				return err
			}
		}
		sums := make([]string, len(args))
		var g errgroup.Group
		for i, path := range args {
			i, path := i, path
			g.Go(func() error {
				sum, err := digest.Checksum(path, alg)
				sums[i] = sum
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		for i, path := range args {
			fmt.Fprintf(env.Stdout, "%s  %s\n", sums[i], path)
		}
		return nil
	})
	return cmd
}

func newCmdHMAC() *cmdline.Command {
	var keyFlag string
	cmd := &cmdline.Command{
		Name:     "hmac",
		Short:    "Compute the HMAC-MD5 of standard input",
		ArgsName: "[data]",
		Long: `
Hmac prints the HMAC-MD5 of the data argument, or of standard input if
no argument is given, keyed with the value of -key.
`,
	}
	cmd.Flags.StringVar(&keyFlag, "key", "", "the HMAC key")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, args []string) error {
		var data []byte
		switch len(args) {
		case 0:
			var err error
			if data, err = io.ReadAll(env.Stdin); err != nil {
				return errors.E(errors.IO, "read standard input", err)
			}
		case 1:
			data = []byte(args[0])
		default:
			return env.UsageErrorf("hmac: at most one data argument")
		}
		fmt.Fprintln(env.Stdout, digest.HMACMD5(data, []byte(keyFlag)).Hex())
		return nil
	})
	return cmd
}
