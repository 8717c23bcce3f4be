// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package config

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/credcheck/auth"
	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
idfile: /tmp/credcheck.id
credentials:
  - user: admin
    secret: monit
  - user: hashed
    scheme: md5
    secret: $1$xy$wJf26PuboOrQxon3gMECG/
  - user: guest
    secret: guest
    readonly: true
  - group: admin
    scheme: pam
`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(testConfig))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/credcheck.id", c.IDFile)
	assert.Equal(t, DefaultPAMService, c.PAMService)
	require.Len(t, c.Credentials, 4)

	s, err := c.Store()
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	r, ok := s.Lookup("hashed")
	require.True(t, ok)
	assert.Equal(t, auth.SaltedMD5, r.Scheme)
	assert.Equal(t, "@admin", s.Records()[3].Name())

	v := auth.NewVerifier(s)
	out, err := v.Authenticate(context.Background(), "hashed", "abc123")
	require.NoError(t, err)
	assert.True(t, out.Granted)

	h, ok := s.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "Basic YWRtaW46bW9uaXQ=", h)
}

func TestParseErrors(t *testing.T) {
	for _, c := range []struct {
		config string
		kind   errors.Kind
	}{
		{"credentials:\n  - user: a\n    scheme: sha512\n    secret: x\n", errors.UnsupportedScheme},
		{"credentials:\n  - group: staff\n    secret: x\n", errors.Invalid},
		{"credentials:\n  - secret: x\n", errors.Invalid},
		{"unknown: 1\n", errors.Invalid},
		{"credentials: [", errors.Invalid},
	} {
		_, err := Parse(strings.NewReader(c.config))
		assert.True(t, errors.Is(c.kind, err), "%q: %v", c.config, err)
	}
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "config")
	defer cleanup()
	path := filepath.Join(dir, "credcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Credentials, 4)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(errors.NotExist, err), "%v", err)
}

func TestFlags(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "config")
	defer cleanup()
	path := filepath.Join(dir, "credcheck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0600))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := RegisterFlags(fs, "", filepath.Join(dir, "default.yaml"))
	require.NoError(t, fs.Parse(nil))
	c, err := f.process(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	f = RegisterFlags(fs, "", "")
	require.NoError(t, fs.Parse([]string{"-config", path, "-set", "pam_service=login", "-configdump"}))
	var dump bytes.Buffer
	c, err = f.process(&dump)
	require.NoError(t, err)
	assert.Equal(t, "login", c.PAMService)
	assert.Len(t, c.Credentials, 4)
	assert.Contains(t, dump.String(), "pam_service: login")
	assert.Contains(t, dump.String(), "<redacted>")
	assert.NotContains(t, dump.String(), "monit\n")

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&bytes.Buffer{})
	RegisterFlags(fs, "", "")
	assert.Error(t, fs.Parse([]string{"-set", "novalue"}))

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	f = RegisterFlags(fs, "", "")
	require.NoError(t, fs.Parse([]string{"-set", "bogus=1"}))
	_, err = f.process(nil)
	assert.True(t, errors.Is(errors.Invalid, err), "%v", err)

	// Parameters always pass through listFlag.Set.
	f = &Flags{params: []string{"novalue"}}
	assert.Panics(t, func() { _, _ = f.process(nil) })
}
