// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

//go:build pam

// Package pamauth implements auth.Service with the host's PAM stack.
// It requires cgo and the PAM development headers, and is built only
// with the "pam" build tag.
package pamauth

import (
	"context"
	"fmt"

	"github.com/grailbio/credcheck/auth"
	"github.com/grailbio/credcheck/errors"
	"github.com/grailbio/credcheck/log"
	"github.com/msteinert/pam"
)

// DefaultService is the PAM service name used when none is configured.
const DefaultService = "monit"

// Service authenticates users through the PAM service of the given
// name, one transaction per call.
type Service struct {
	Name string
}

// New returns a Service for the named PAM service. An empty name
// selects DefaultService.
func New(name string) *Service {
	if name == "" {
		name = DefaultService
	}
	return &Service{Name: name}
}

var styles = map[pam.Style]auth.PromptKind{
	pam.PromptEchoOn:  auth.PromptEchoOn,
	pam.PromptEchoOff: auth.PromptEchoOff,
	pam.ErrorMsg:      auth.PromptErrorMsg,
	pam.TextInfo:      auth.PromptTextInfo,
}

// Authenticate implements auth.Service. A rejection by the PAM stack
// is reported as (false, nil); failures to run the conversation are
// errors.
func (s *Service) Authenticate(ctx context.Context, username string, r auth.Responder) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var convErr error
	tx, err := pam.StartFunc(s.Name, username, func(style pam.Style, msg string) (string, error) {
		// Unknown styles map to the zero kind, which responders reject.
		resp, err := r.Respond(styles[style], msg)
		if err != nil && convErr == nil {
			convErr = err
		}
		return resp, err
	})
	if err != nil {
		return false, errors.E(errors.ExternalAuth, fmt.Sprintf("pam start %s", s.Name), err)
	}
	if err := tx.Authenticate(pam.Silent); err != nil {
		if convErr != nil {
			return false, convErr
		}
		log.Debug.Printf("pamauth: %s: user %s rejected: %v", s.Name, username, err)
		return false, nil
	}
	return true, nil
}
