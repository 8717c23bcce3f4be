// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmdutil_test

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"

	"github.com/grailbio/credcheck/cmdutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"v.io/x/lib/cmdline"
)

func run(t *testing.T, cmd *cmdline.Command, args ...string) (stdout string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	env := &cmdline.Env{Stdout: &out, Stderr: &errOut, Vars: map[string]string{}}
	err = cmdline.ParseAndRun(cmd, env, args)
	return out.String(), err
}

func TestRunnerFunc(t *testing.T) {
	var got []string
	cmd := &cmdline.Command{
		Name:     "test",
		Short:    "test command",
		ArgsName: "args",
		Runner: cmdutil.RunnerFunc(func(env *cmdline.Env, args []string) error {
			got = args
			return nil
		}),
	}
	_, err := run(t, cmd, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestContextRunnerFunc(t *testing.T) {
	cmd := &cmdline.Command{
		Name:  "test",
		Short: "test command",
		Runner: cmdutil.ContextRunnerFunc(func(ctx context.Context, env *cmdline.Env, args []string) error {
			if ctx.Err() != nil {
				t.Errorf("context done before run: %v", ctx.Err())
			}
			_, err := env.Stdout.Write([]byte("ok\n"))
			return err
		}),
	}
	out, err := run(t, cmd)
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)
}

func TestVersion(t *testing.T) {
	out, err := run(t, cmdutil.CreateVersionCommand("version", "credcheck"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "credcheck/(missing) (os="), out)
}

func TestWriteWrappedMessage(t *testing.T) {
	var b bytes.Buffer
	require.NoError(t, cmdutil.WriteWrappedMessage(&b, "denied"))
	require.NoError(t, cmdutil.WriteWrappedMessage(&b, "a: OK\n"))
	assert.Equal(t, "denied\na: OK\n", b.String())

	// Files that are not terminals are written verbatim.
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	long := strings.Repeat("granted ", 40)
	require.NoError(t, cmdutil.WriteWrappedMessage(f, long))
	require.NoError(t, f.Close())
	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	assert.Equal(t, long+"\n", string(got))
}
