// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/must"
)

type listFlag struct {
	defaultValue string
	values       *[]string
	needEqual    bool
}

func (l *listFlag) String() string { return l.defaultValue }

func (l *listFlag) Set(value string) error {
	if l.needEqual && !strings.Contains(value, "=") {
		return fmt.Errorf("invalid flag value %s: missing '='", value)
	}
	*l.values = append(*l.values, value)
	return nil
}

// Flags holds the values of the configuration flags registered by
// RegisterFlags.
type Flags struct {
	defaultPath string
	path        string
	params      []string
	dump        bool
}

// RegisterFlags registers a set of flags on the provided FlagSet.
// These flags select the configuration returned by Process, after
// flag parsing. The flags are:
//
//	-config path
//		Loads the configuration at the given path. If the flag is not
//		given, the provided default path is loaded instead. If the
//		default path does not exist, the default configuration is
//		used; other loading errors cause Process to return an error.
//
//	-set key=value
//		Sets a top-level parameter. See Config.Set for details. This
//		flag may be repeated.
//
//	-configdump
//		Writes the configuration (after processing the above flags),
//		with secrets redacted, to standard error.
//
// The flag names are prefixed with the provided prefix.
func RegisterFlags(fs *flag.FlagSet, prefix string, defaultPath string) *Flags {
	f := &Flags{defaultPath: defaultPath}
	fs.StringVar(&f.path, prefix+"config", "", fmt.Sprintf("load the configuration at the provided path (default %q)", defaultPath))
	fs.Var(&listFlag{"", &f.params, true}, prefix+"set", "set a configuration parameter; may be repeated")
	fs.BoolVar(&f.dump, prefix+"configdump", false, "dump the configuration to stderr")
	return f
}

// Process returns the configuration selected by the flags, as
// documented by RegisterFlags.
func (f *Flags) Process() (*Config, error) {
	return f.process(os.Stderr)
}

func (f *Flags) process(dump io.Writer) (*Config, error) {
	var (
		c   *Config
		err error
	)
	switch {
	case f.path != "":
		c, err = Load(f.path)
	case f.defaultPath != "":
		c, err = Load(f.defaultPath)
		if errors.Is(errors.NotExist, err) {
			c, err = Default(), nil
		}
	default:
		c = Default()
	}
	if err != nil {
		return nil, err
	}
	for _, param := range f.params {
		elems := strings.SplitN(param, "=", 2)
		must.Truef(len(elems) == 2, "config: -set %q was not validated", param)
		if err := c.Set(elems[0], elems[1]); err != nil {
			return nil, err
		}
	}
	if f.dump {
		if err := c.Dump(dump); err != nil {
			return nil, err
		}
	}
	return c, nil
}
