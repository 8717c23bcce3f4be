// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

package auth

import (
	"context"
	"fmt"

	"github.com/grailbio/credcheck/errors"
)

// PromptKind is the kind of a prompt sent by an external
// authentication service during a conversation.
type PromptKind int

const (
	// PromptEchoOn asks for visible input: the login name.
	PromptEchoOn PromptKind = 1 + iota
	// PromptEchoOff asks for hidden input: the secret.
	PromptEchoOff
	// PromptErrorMsg carries an error message to display.
	PromptErrorMsg
	// PromptTextInfo carries an informational message to display.
	PromptTextInfo
)

// A Responder answers the prompts of one authentication conversation.
type Responder interface {
	// Respond returns the answer to a prompt of the given kind. An
	// error aborts the conversation.
	Respond(kind PromptKind, message string) (string, error)
}

// Service is an external authentication service. Authenticate runs
// one synchronous conversation for username, obtaining the data it
// needs from r, and reports whether the service accepted the user. A
// non-nil error means the session itself failed.
type Service interface {
	Authenticate(ctx context.Context, username string, r Responder) (bool, error)
}

// ServiceFunc adapts a function to the Service interface.
type ServiceFunc func(ctx context.Context, username string, r Responder) (bool, error)

// Authenticate implements Service.
func (f ServiceFunc) Authenticate(ctx context.Context, username string, r Responder) (bool, error) {
	return f(ctx, username, r)
}

// loginResponder answers echo-on prompts with the login and echo-off
// prompts with the secret. It lives for a single verification.
type loginResponder struct {
	login, secret string
}

func (l loginResponder) Respond(kind PromptKind, message string) (string, error) {
	switch kind {
	case PromptEchoOn:
		return l.login, nil
	case PromptEchoOff:
		return l.secret, nil
	case PromptErrorMsg, PromptTextInfo:
		return "", nil
	}
	return "", errors.E(errors.ExternalAuth, fmt.Sprintf("unexpected prompt kind %d: %q", int(kind), message))
}
