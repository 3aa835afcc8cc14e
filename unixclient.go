package agnoio

/*
MIT License

Copyright (c) 2015-2017 University Corporation for Atmospheric Research

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

import (
	"context"
	"fmt"
	"net"
	"regexp"
	"time"
)

var _ IDoIO = &UnixClient{}
var unixClientRe = regexp.MustCompile("^unix:\\/\\/(.+)$")

/*NewUnixClient opens a connection to a filesystem-scoped stream socket, the
same kind of socket the koruza-control broker listens on. Dial
should be in the form "unix:///path/to/socket"*/
func NewUnixClient(ctx context.Context, timeout time.Duration, dial string) (*UnixClient, error) {
	matches := unixClientRe.FindStringSubmatch(dial)
	if matches == nil {
		return nil, newErr(false, false, fmt.Errorf("dial string not in correct form"))
	}
	nctx, cancel := context.WithCancel(ctx)
	uc := &UnixClient{
		path:      matches[1],
		timeout:   timeout,
		rwtimeout: 1 * time.Millisecond,
		ctx:       nctx,
		cancel:    cancel,
	}
	return uc, uc.Open()
}

/*UnixClient provides an implementer of the IDoIO interface over a
filesystem-scoped stream socket*/
type UnixClient struct {
	path      string
	cancel    context.CancelFunc
	ctx       context.Context
	timeout   time.Duration
	rwtimeout time.Duration
	conn      net.Conn
}

/*String conforms to the fmt.Stringer interface*/
func (uc *UnixClient) String() string {
	return fmt.Sprintf("unix connection to %v", uc.path)
}

/*Open forcibly disconnects (ignoring errors) and attempts the connect
process again. It returns an error if it was unable to start*/
func (uc *UnixClient) Open() (err error) {
	select {
	case <-uc.ctx.Done():
		return newErr(false, false, uc.ctx.Err())
	default:
	}
	if uc.conn != nil {
		uc.conn.Close()
		uc.conn = nil
	}
	dialer := net.Dialer{Timeout: uc.timeout}
	uc.conn, err = dialer.DialContext(uc.ctx, "unix", uc.path)
	return
}

/*Read conforms to io.Reader, but immediately returns upon ctx
destruction after closing the underlying transport*/
func (uc *UnixClient) Read(b []byte) (int, error) {
	select {
	case <-uc.ctx.Done():
		defer uc.Close()
		return 0, newErr(false, false, uc.ctx.Err())
	default:
		if uc.rwtimeout > 0 {
			uc.conn.SetReadDeadline(time.Now().Add(uc.rwtimeout))
		}
		return uc.conn.Read(b)
	}
}

/*Write conforms to io.Writer, but immediately returns upon ctx
destruction after closing the underlying transport*/
func (uc *UnixClient) Write(b []byte) (int, error) {
	select {
	case <-uc.ctx.Done():
		defer uc.Close()
		return 0, newErr(false, false, uc.ctx.Err())
	default:
		if uc.rwtimeout > 0 {
			uc.conn.SetWriteDeadline(time.Now().Add(uc.rwtimeout))
		}
		return uc.conn.Write(b)
	}
}

/*Close conforms to io.Closer, but immediately returns upon ctx
destruction after closing the underlying transport*/
func (uc *UnixClient) Close() error {
	uc.cancel()
	defer func() { uc.conn = nil }()
	if uc.conn != nil {
		return uc.conn.Close()
	}
	return nil
}
