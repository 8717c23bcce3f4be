// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cmdutil

import (
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"v.io/x/lib/textutil"
)

// WriteWrappedMessage writes m to w as a single newline-terminated
// report. When w is a terminal the message is wrapped to the terminal
// width; any other writer receives m unchanged.
func WriteWrappedMessage(w io.Writer, m string) error {
	m = strings.TrimSuffix(m, "\n") + "\n"
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if _, cols, err := textutil.TerminalSize(); err == nil && cols > 0 {
			wrapped := textutil.NewUTF8WrapWriter(w, cols)
			if _, err := io.WriteString(wrapped, m); err != nil {
				return err
			}
			return wrapped.Flush()
		}
	}
	_, err := io.WriteString(w, m)
	return err
}
