// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package cmdutil provides utility routines for implementing command line
// tools.
package cmdutil

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/grailbio/credcheck/log"
	"v.io/x/lib/cmdline"
)

var runnerOnce sync.Once

// RunnerFunc is an adapter that turns regular functions into cmdline.Runners.
type RunnerFunc func(*cmdline.Env, []string) error

// Run implements the cmdline.Runner interface method by calling f(env, args)
// and also ensures that logging is directed to the environment's standard
// error.
func (f RunnerFunc) Run(env *cmdline.Env, args []string) error {
	runnerOnce.Do(func() {
		if env.Stderr != nil {
			log.SetOutput(env.Stderr)
		}
	})
	return f(env, args)
}

// ContextRunnerFunc is like RunnerFunc, but the function is also given a
// context that is canceled when the process receives SIGINT or SIGTERM.
type ContextRunnerFunc func(context.Context, *cmdline.Env, []string) error

// Run implements the cmdline.Runner interface.
func (f ContextRunnerFunc) Run(env *cmdline.Env, args []string) error {
	return RunnerFunc(func(env *cmdline.Env, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return f(ctx, env, args)
	}).Run(env, args)
}
