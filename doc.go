/*
Package agnoio is the client-side toolkit for koruza-control's auxiliary
programs (koruza-ctl, koruza-stat, koruza-calib). None of them talk to the
optical link controller's serial port directly — that belongs entirely to
the broker daemon — so what they need instead is a uniform way to dial the
broker's unix socket, or in koruza-calib's case a second, independent
serial port for a reference instrument, and run the same command/response
exchange against either one without caring which transport is underneath.

# Interfaces

Two related interfaces do that job. IDoIO (eye-do-eye-oh) is the basic
read-write-open-close transport: something that can read and write bytes,
be closed, and be reopened if it falls over. Arbiter builds a command/
response protocol on top of an IDoIO: callers hand it a Command (or, via
Simple, a raw command and a pair of match patterns) and get back a
Response once the remote side's reply matches, errors out, or the
command's timeout expires. Every command the auxiliary programs send to
the broker, and koruza-calib's reads from its optional reference
instrument, go through one of these two interfaces.

# Dial Strings and Implementations

An IDoIO is selected by a URI-shaped dial string; the schema (tcp://,
serial://, unix://, ...) picks the backend, and the remainder is
implementation-specific. This package provides:

	tcp://<host:port> - Outgoing Sockets of type tcp (either v4 or v6)
	tcp4://<host:port> - Outgoing Sockets of type tcp v4
	tcp6://<host:port> - Outgoing Sockets of type tcp v6
	udp://<host:port> - Outgoing Sockets of type udp (either v4 or v6)
	udp4://<host:port> - Outgoing Sockets of type udp v4
	udp6://<host:port> - Outgoing Sockets of type udp v6
	serial://<device>:<baud> - Serial connection
	rs232://<device>:<baud> - Serial connection
	unix://<path> - Stream-oriented unix domain socket, the scheme
	    koruza-control's broker listens on

# Context Usage

This package makes use of the context package.  The passed context is used to
derive child contexts and a cancel function.  If .Close() is called, the cancel
function will be called, and any further IO using the structure will end up in
context errors.  This is helpful as it forces connection hangup and known exit
behaviour.

# Error Handling

All errors returned from this package either implicitly or explicitly conform to
net.Error, which is to say after a cast, you have access to two additional func
receivers: .Timeout() and .Temporary().  Timeout() returns true if the error was
due to a timeout of some variety, and the transport is still opened. Temporary()
returns true if the error is a temporary error, and false if the connection is
closed and will need to be opened.

It is preferred that no structures provided by this package attempt to maintain a
constant connection, but rather that when the connection dies / is killed /
fails / returns errors, the caller should have a bit of knowledge as to what to
do with these errors, such as reconnect, panic, stick a finger in a light socket,
etc.  Generally each transport will have some sort of unique errors that might need
special handling.
*/
package agnoio

import (
	"github.com/pkg/errors"
)

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

var (
	//ErrBytesArgs is returned when calling Bytes if any of the following occur:
	// - Wrong Number of args (too few / many)
	// - Wrong order (ie Command.Prototype is "%s %d" and provided args are '24, "string"'')
	// - Wrong types (ie Command.Prototype is "%s" and provided arg is '25')
	ErrBytesArgs = errors.Errorf("Proper arguments not provided to expand command into bytes")

	//ErrBytesFormat is returned when the args used to populate the command forms
	//a byte[] that does not match the Validating regexp (.CommandRegexp)
	ErrBytesFormat = errors.Errorf("Formed command does not match allowable format for outgoing commands")

	// ErrErrorResponse is returned when the response to a command matches the failure
	// or error criterial criteria.  It has the following properties:
	// - IsTemporary(ErrErrorResponse) = false
	// - IsTimeout(ErrErrorResponse) == false
	// This error is intended to be used to compare against when checking errors
	ErrErrorResponse = newErr(false, false, errors.New("Command received error response"))
)
