package broker

import (
	"io"
	"sync"
	"time"
)

// fakeTimeout is a net.Error-shaped sentinel fakeDevice's Read returns when
// no data arrives within its poll window, mirroring the timeout behavior
// serialport.Port gets from SetReadTimeout.
type fakeTimeout struct{}

func (fakeTimeout) Error() string   { return "fake device read timeout" }
func (fakeTimeout) Timeout() bool   { return true }
func (fakeTimeout) Temporary() bool { return true }

// fakeDevice stands in for a serial port in broker tests: fromBroker
// receives every Write, toBroker is read from by Read. Close/Reopen let
// tests exercise the reset path without a real device.
type fakeDevice struct {
	toBroker   chan []byte
	fromBroker chan []byte

	mu       sync.Mutex
	closedCh chan struct{}
	reopened int

	reopenErr error
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		toBroker:   make(chan []byte, 16),
		fromBroker: make(chan []byte, 16),
		closedCh:   make(chan struct{}),
	}
}

func (d *fakeDevice) currentClosed() chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closedCh
}

func (d *fakeDevice) Read(b []byte) (int, error) {
	closedCh := d.currentClosed()
	select {
	case data, ok := <-d.toBroker:
		if !ok {
			return 0, io.EOF
		}
		return copy(b, data), nil
	case <-closedCh:
		return 0, io.EOF
	case <-time.After(20 * time.Millisecond):
		return 0, fakeTimeout{}
	}
}

func (d *fakeDevice) Write(b []byte) (int, error) {
	cp := make([]byte, len(b))
	copy(cp, b)
	select {
	case d.fromBroker <- cp:
		return len(b), nil
	case <-d.currentClosed():
		return 0, io.ErrClosedPipe
	}
}

func (d *fakeDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	select {
	case <-d.closedCh:
	default:
		close(d.closedCh)
	}
	return nil
}

func (d *fakeDevice) Reopen() error {
	if d.reopenErr != nil {
		return d.reopenErr
	}
	d.mu.Lock()
	d.closedCh = make(chan struct{})
	d.reopened++
	d.mu.Unlock()
	return nil
}

func (d *fakeDevice) SetReadTimeout(time.Duration) {}
