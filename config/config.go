// Copyright 2019 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package config loads the credential checker's configuration: the
// ordered list of credential records, the location of the id file,
// and the PAM service used for delegated authentication.
//
// A configuration is a YAML document:
//
//	idfile: /var/lib/credcheck/id
//	pam_service: monit
//	credentials:
//	  - user: admin
//	    secret: monit
//	  - user: hashed
//	    scheme: md5
//	    secret: $1$xy$wJf26PuboOrQxon3gMECG/
//	  - user: guest
//	    secret: guest
//	    readonly: true
//	  - group: admin
//	    scheme: pam
//
// Credential order is precedence order. A credential without a scheme
// is cleartext.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/grailbio/credcheck/auth"
	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/fileio"
	"gopkg.in/yaml.v3"
)

// DefaultPAMService is the PAM service used when none is configured.
const DefaultPAMService = "monit"

// Config is a parsed configuration.
type Config struct {
	// IDFile is the path of the daemon's identity file.
	IDFile string `yaml:"idfile"`
	// PAMService is the PAM service name for delegated credentials.
	PAMService string `yaml:"pam_service"`
	// Credentials are the credential records in precedence order.
	Credentials []Credential `yaml:"credentials"`
}

// Credential is the configuration form of an auth.Record.
type Credential struct {
	User     string `yaml:"user,omitempty"`
	Group    string `yaml:"group,omitempty"`
	Scheme   string `yaml:"scheme,omitempty"`
	Secret   string `yaml:"secret,omitempty"`
	ReadOnly bool   `yaml:"readonly,omitempty"`
}

// Default returns the configuration used as a base before a file is
// loaded.
func Default() *Config {
	return &Config{
		IDFile:     defaultIDFile(),
		PAMService: DefaultPAMService,
	}
}

func defaultIDFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".credcheck.id"
	}
	return home + "/.credcheck.id"
}

// Parse parses a configuration from r on top of the defaults. Unknown
// keys are errors.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && err != io.EOF {
		return nil, errors.E(errors.Invalid, "parse configuration", err)
	}
	if _, err := c.Store(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load parses the configuration file at path.
func Load(path string) (_ *Config, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E("open configuration", path, err)
	}
	defer fileio.CloseAndReport(f, &err)
	c, err := Parse(f)
	if err != nil {
		return nil, errors.E(path, err)
	}
	return c, nil
}

// Record returns the auth.Record for the credential.
func (c Credential) Record() (auth.Record, error) {
	r := auth.Record{
		Username:  c.User,
		Groupname: c.Group,
		Secret:    c.Secret,
		ReadOnly:  c.ReadOnly,
	}
	if c.Scheme == "" {
		return r, nil
	}
	var err error
	r.Scheme, err = auth.ParseScheme(c.Scheme)
	return r, err
}

// Store returns a credential store holding the configured credentials.
func (c *Config) Store() (*auth.Store, error) {
	records := make([]auth.Record, len(c.Credentials))
	for i, cred := range c.Credentials {
		r, err := cred.Record()
		if err != nil {
			return nil, errors.E(fmt.Sprintf("credential %d", i), err)
		}
		records[i] = r
	}
	return auth.NewStore(records)
}

// Set sets the named top-level parameter (idfile or pam_service).
func (c *Config) Set(key, value string) error {
	switch key {
	case "idfile":
		c.IDFile = value
	case "pam_service":
		c.PAMService = value
	default:
		return errors.E(errors.Invalid, fmt.Sprintf("unknown configuration parameter %q", key))
	}
	return nil
}

// Dump writes the configuration as YAML to w. Secrets are replaced by
// a placeholder.
func (c *Config) Dump(w io.Writer) error {
	redacted := *c
	redacted.Credentials = make([]Credential, len(c.Credentials))
	for i, cred := range c.Credentials {
		if cred.Secret != "" {
			cred.Secret = "<redacted>"
		}
		redacted.Credentials[i] = cred
	}
	var b bytes.Buffer
	enc := yaml.NewEncoder(&b)
	enc.SetIndent(2)
	if err := enc.Encode(&redacted); err != nil {
		return errors.E("encode configuration", err)
	}
	if err := enc.Close(); err != nil {
		return errors.E("encode configuration", err)
	}
	_, err := w.Write(b.Bytes())
	return err
}
