// Package logging wires the broker's diagnostic output to syslog using
// github.com/hashicorp/go-syslog. Callers get back a plain *log.Logger,
// matching the unadorned log.Printf/log.Fatal style used elsewhere in this
// repository, so nothing downstream needs to know syslog is involved.
package logging

import (
	"io"
	"log"
	"os"

	gsyslog "github.com/hashicorp/go-syslog"
)

// New returns a *log.Logger tagged with name. Every line is sent to the
// local syslog daemon; when alsoStderr is true, the same lines are also
// duplicated to stderr for foreground debugging.
func New(name string, alsoStderr bool) (*log.Logger, error) {
	writer, err := gsyslog.NewLogger(gsyslog.LOG_INFO, "daemon", name)
	if err != nil {
		return nil, err
	}

	var out io.Writer = writer
	if alsoStderr {
		out = io.MultiWriter(writer, os.Stderr)
	}
	return log.New(out, "", log.LstdFlags), nil
}
