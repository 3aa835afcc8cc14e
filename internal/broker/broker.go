// Package broker implements the koruza-control daemon's event loop: the
// single-owner coordinator that serializes client commands onto one serial
// device and routes the device's replies back to the right client.
//
// Go has no common single-thread epoll-reactor idiom; agnoio's own Arbiter
// models concurrency instead as one owning goroutine plus helper goroutines
// that only ever read and forward results over a channel (Arb.readUntil +
// its dataChan). Broker generalizes that same shape to the whole daemon:
// the listener, each connection, the serial port, and the response timer
// are each a long-lived goroutine that only reads and forwards an event;
// Run is the only goroutine that ever touches Broker's fields.
package broker

import (
	"bytes"
	"context"
	"io"
	"log"
	"net"
	"time"
)

// device is the subset of *serialport.Port the broker needs. Accepting the
// interface rather than the concrete type lets tests exercise the event
// loop's FIFO and framing logic against an in-memory fake instead of real
// hardware.
type device interface {
	io.ReadWriteCloser
	Reopen() error
	SetReadTimeout(d time.Duration)
}

// responseTimeout is how long the broker waits for the device to finish a
// reply before declaring it unresponsive and resetting the link.
const responseTimeout = 1 * time.Second

// portReadPoll bounds how long the port reader's blocking Read waits before
// giving the reader goroutine a chance to notice its context was cancelled
// (during a reset); it is not itself a timeout the broker reacts to.
const portReadPoll = 200 * time.Millisecond

// Broker mediates access to a single serial device on behalf of the clients
// connected to its unix socket. All of its fields below are
// owned exclusively by the goroutine running Run.
type Broker struct {
	log        *log.Logger
	socketPath string
	resetHook  string

	port device

	ctx              context.Context
	events           chan brokerEvent
	listener         net.Listener
	portReaderCancel context.CancelFunc
	portReaderDone   chan struct{}

	conns      map[connHandle]*connection
	nextHandle connHandle
	active     connHandle

	queue   cmdQueue
	respBuf bytes.Buffer

	timer             *time.Timer
	timerGen          int
	warnedUnsolicited bool
}

// New constructs a Broker around an already-open serial port. socketPath is
// the filesystem path of the client-facing unix socket; resetHook, if
// non-empty, is the executable invoked during reset recovery.
func New(logger *log.Logger, port device, socketPath, resetHook string) *Broker {
	port.SetReadTimeout(portReadPoll)
	return &Broker{
		log:        logger,
		socketPath: socketPath,
		resetHook:  resetHook,
		port:       port,
		events:     make(chan brokerEvent, 32),
		conns:      make(map[connHandle]*connection),
	}
}

// Run binds the client socket and drives the event loop until ctx is
// cancelled. It returns nil on a clean shutdown.
func (b *Broker) Run(ctx context.Context) error {
	b.ctx = ctx

	ln, err := listen(b.socketPath)
	if err != nil {
		return err
	}
	b.listener = ln
	defer ln.Close()

	b.startPortReader()
	defer b.stopPortReader()
	go b.acceptLoop(ln)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-b.events:
			b.handle(ev)
		}
	}
}

func (b *Broker) handle(ev brokerEvent) {
	switch ev.kind {
	case evAccept:
		b.handleAccept(ev.nc)
	case evConnData:
		b.handleConnData(ev.conn, ev.data)
	case evConnClosed:
		b.closeConn(ev.conn)
	case evPortData:
		b.handlePortData(ev.data)
	case evPortError:
		b.log.Printf("serial port error: %v", ev.err)
		if err := b.reset(b.active != noConn); err != nil {
			b.log.Printf("reset after port error failed: %v", err)
		}
	case evTimerFire:
		if ev.gen != b.timerGen {
			return // stale fire from a timer already cancelled or replaced
		}
		b.log.Printf("response timeout waiting for device reply")
		if err := b.reset(true); err != nil {
			b.log.Printf("reset after timeout failed: %v", err)
		}
	}
}

func (b *Broker) handleAccept(nc net.Conn) {
	b.nextHandle++
	h := b.nextHandle
	b.conns[h] = &connection{handle: h, nc: nc}
	b.startConnReader(h, nc)
}

func (b *Broker) handleConnData(h connHandle, data []byte) {
	c, ok := b.conns[h]
	if !ok {
		return // already closed; drop bytes from a reader racing the close
	}
	cmds, overflow := c.feed(data)
	for _, cmd := range cmds {
		b.submit(h, cmd)
	}
	if overflow {
		b.log.Printf("connection %d: command exceeded 64 bytes without a newline, closing", h)
		b.closeConn(h)
	}
}

// closeConn releases a connection's resources. It does not touch the
// active slot or the pending queue even when h is the active connection or
// owns queued commands: a command already dispatched to the device is in
// flight regardless of whether its owner is still around to hear the
// reply, so the framer and scheduler keep running exactly as if the
// connection were live. The reference is cleared by deleting h from conns:
// every later lookup of the active slot or a queue entry against conns
// resolves to the "gone" sentinel (!ok), and the reply is silently
// discarded instead of being written to a freed connection.
func (b *Broker) closeConn(h connHandle) {
	c, ok := b.conns[h]
	if !ok {
		return
	}
	c.nc.Close()
	delete(b.conns, h)
}

func (b *Broker) handlePortData(data []byte) {
	if b.active == noConn {
		if !b.warnedUnsolicited {
			b.log.Printf("unsolicited bytes from serial port with no active command, discarding")
			b.warnedUnsolicited = true
		}
		return
	}

	if c, ok := b.conns[b.active]; ok {
		if _, err := c.nc.Write(data); err != nil {
			b.log.Printf("writing to connection %d: %v", b.active, err)
		}
	}

	if b.feedFramer(data) {
		b.complete()
	}
}

// submit is the scheduler's public entry point.
func (b *Broker) submit(h connHandle, cmd []byte) {
	if b.active == noConn {
		b.active = h
		b.armTimer()
		b.dispatch(cmd)
		return
	}
	cp := make([]byte, len(cmd))
	copy(cp, cmd)
	b.queue.push(h, cp)
}

// complete is the scheduler's other public entry point,
// invoked by the framer on end-of-message and by the reset path when
// aborting the active command.
func (b *Broker) complete() {
	b.respBuf.Reset()
	b.cancelTimer()

	if next, cmd, ok := b.queue.pop(); ok {
		b.active = next
		b.armTimer()
		b.dispatch(cmd)
		return
	}
	b.active = noConn
}

func (b *Broker) dispatch(cmd []byte) {
	b.warnedUnsolicited = false
	if _, err := b.port.Write(cmd); err != nil {
		b.log.Printf("writing to serial port: %v", err)
		if rerr := b.reset(true); rerr != nil {
			b.log.Printf("reset after write error failed: %v", rerr)
		}
	}
}

func (b *Broker) armTimer() {
	b.cancelTimer()
	b.timerGen++
	gen := b.timerGen
	t := time.NewTimer(responseTimeout)
	b.timer = t
	go func() {
		select {
		case <-t.C:
			b.events <- brokerEvent{kind: evTimerFire, gen: gen}
		case <-b.ctx.Done():
		}
	}()
}

func (b *Broker) cancelTimer() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.timerGen++
}
