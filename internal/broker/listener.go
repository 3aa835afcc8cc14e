package broker

import (
	"net"
	"os"

	"github.com/pkg/errors"
)

// listen binds the client-facing unix socket at path, removing any socket
// file a previous run left behind.
func listen(path string) (net.Listener, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "removing stale socket %s", path)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, errors.Wrapf(err, "listening on %s", path)
	}
	return ln, nil
}
