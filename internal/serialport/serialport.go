// Package serialport opens the optical link controller's tty node in raw,
// non-blocking mode and knows how to reopen it identically after a reset.
//
// It is a thin shim over github.com/daedaluz/goserial, the only package in
// the retrieval pack that exposes termios2 and ioctl-level control on
// Linux; the baud translation table and MakeRaw sequencing below follow
// that package's own Termios2/CFlag constants directly.
package serialport

import (
	"fmt"
	"syscall"
	"time"

	serial "github.com/daedaluz/goserial"
	"github.com/pkg/errors"
)

// AllowedBauds is the closed set of baud rates the broker accepts. Order
// doesn't matter; it's checked via baudFlags.
var AllowedBauds = []int{50, 75, 110, 134, 150, 200, 300, 600, 1200, 1800,
	2400, 4800, 9600, 19200, 38400, 57600, 115200, 230400}

var baudFlags = map[int]serial.CFlag{
	50:     serial.B50,
	75:     serial.B75,
	110:    serial.B110,
	134:    serial.B134,
	150:    serial.B150,
	200:    serial.B200,
	300:    serial.B300,
	600:    serial.B600,
	1200:   serial.B1200,
	1800:   serial.B1800,
	2400:   serial.B2400,
	4800:   serial.B4800,
	9600:   serial.B9600,
	19200:  serial.B19200,
	38400:  serial.B38400,
	57600:  serial.B57600,
	115200: serial.B115200,
	230400: serial.B230400,
}

// ErrBadBaud is returned by Open when the requested baud isn't in
// AllowedBauds.
type ErrBadBaud int

func (e ErrBadBaud) Error() string {
	return fmt.Sprintf("baud rate %d is not one of the allowed rates %v", int(e), AllowedBauds)
}

// Port is a raw-mode serial line. It caches the line discipline it applied
// on Open so Reopen can replay it identically after a device reset.
type Port struct {
	device string
	baud   int
	flags  serial.CFlag
	nb     bool

	port   *serial.Port
	cached *serial.Termios2
}

// Open opens device read-write, puts the descriptor in non-blocking mode
// when nonblocking is true, and applies a raw-mode line discipline at the
// given baud. baud must be one of AllowedBauds.
func Open(device string, baud int, nonblocking bool) (*Port, error) {
	flags, ok := baudFlags[baud]
	if !ok {
		return nil, ErrBadBaud(baud)
	}
	p := &Port{device: device, baud: baud, flags: flags, nb: nonblocking}
	if err := p.open(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Port) open() error {
	opts := serial.NewOptions()
	opts.OpenMode = syscall.O_RDWR | syscall.O_NOCTTY
	if p.nb {
		opts.OpenMode |= syscall.O_NONBLOCK
	}

	port, err := serial.Open(p.device, opts)
	if err != nil {
		return errors.Wrapf(err, "opening %s", p.device)
	}

	attrs := p.cached
	if attrs == nil {
		attrs, err = port.GetAttr2()
		if err != nil {
			port.Close()
			return errors.Wrap(err, "reading line discipline")
		}
		attrs.MakeRaw()
		attrs.SetSpeed(p.flags)
	}
	if err := port.SetAttr2(serial.TCSAFLUSH, attrs); err != nil {
		port.Close()
		return errors.Wrap(err, "applying raw mode")
	}

	p.port = port
	p.cached = attrs
	return nil
}

// Reopen closes the current descriptor (if any) and opens a fresh one,
// applying the line discipline cached from the original Open via SetAttr2
// directly rather than recomputing it with a fresh GetAttr2/MakeRaw/
// SetSpeed sequence. This is what backs the reopen step of the reset
// procedure.
func (p *Port) Reopen() error {
	if p.port != nil {
		p.port.Close()
		p.port = nil
	}
	return p.open()
}

// Read conforms to io.Reader. When a read timeout is armed via
// SetReadTimeout, reads block for at most that duration via
// github.com/daedaluz/fdev/poll, giving the broker's serial-reader task a
// bounded wait instead of an indefinite blocking read.
func (p *Port) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write conforms to io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close conforms to io.Closer.
func (p *Port) Close() error {
	if p.port == nil {
		return nil
	}
	err := p.port.Close()
	p.port = nil
	return err
}

// SetReadTimeout bounds subsequent Read calls. A negative duration means
// block indefinitely.
func (p *Port) SetReadTimeout(d time.Duration) {
	p.port.SetReadTimeout(d)
}

// Device returns the path this port was opened against.
func (p *Port) Device() string { return p.device }

// Baud returns the configured baud rate.
func (p *Port) Baud() int { return p.baud }
