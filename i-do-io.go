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
	"io"
	"regexp"
	"time"
)

/*IDoIO is the transport-agnostic interface koruza-control's client-side
toolkit builds on: an Arbiter (see arbiter.go) is an IDoIO with a
command/response protocol layered on top, and NewIDoIO/NewArbiter pick a
concrete IDoIO implementation (unix socket, serial port, tcp/udp) purely
from the scheme of a dial string. An IDoIO should be able to tell others in
some human readable string form what the transport actually is
(fmt.Stringer), read and write byte slices (io.ReadWriter), and Open/Close
the underlying connection.

Any error returned must be castable to net.Error.*/
type IDoIO interface {
	fmt.Stringer
	io.ReadWriter
	io.Closer
	Open() error
}

var known = map[*regexp.Regexp]func(context.Context, time.Duration, string) (IDoIO, error){
	netClientRe: func(ctx context.Context, dur time.Duration, dial string) (IDoIO, error) {
		return NewNetClient(ctx, dur, dial)
	},
	serialRe: func(ctx context.Context, dur time.Duration, dial string) (IDoIO, error) {
		return NewSerialClient(ctx, dur, dial)
	},
	unixClientRe: func(ctx context.Context, dur time.Duration, dial string) (IDoIO, error) {
		return NewUnixClient(ctx, dur, dial)
	},
}

/*NewIDoIO returns the IDoIO matching dial's scheme: unix:// for the
broker's own socket, serial:// for a reference instrument, tcp/udp for a
network-attached one.*/
func NewIDoIO(ctx context.Context, timeout time.Duration, dial string) (IDoIO, error) {
	for re, funcptr := range known {
		if re.MatchString(dial) {
			return funcptr(ctx, timeout, dial)
		}
	}
	err := newErr(false, false, fmt.Errorf("No known way to create a IOStreamer from %q", dial))
	return InvalidIO(err.Error()), err
}
