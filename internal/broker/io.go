package broker

import (
	"context"
	"net"
)

// eventKind tags a brokerEvent so the single owning goroutine in Run can
// dispatch it without a type switch over concrete payload types.
type eventKind int

const (
	evAccept eventKind = iota
	evConnData
	evConnClosed
	evPortData
	evPortError
	evTimerFire
)

// brokerEvent is the only thing that crosses from a readiness goroutine
// (acceptLoop, a connection reader, the port reader, a timer) into Run.
// None of those goroutines ever touch Broker state directly; they only read
// and forward, same as agnoio's Arb.readUntil forwards over a channel
// instead of mutating shared state itself.
type brokerEvent struct {
	kind eventKind
	conn connHandle
	nc   net.Conn
	data []byte
	err  error
	gen  int
}

// acceptLoop forwards incoming connections until the listener closes.
func (b *Broker) acceptLoop(ln net.Listener) {
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-b.ctx.Done():
				return
			default:
			}
			b.log.Printf("accept: %v", err)
			return
		}
		b.events <- brokerEvent{kind: evAccept, nc: nc}
	}
}

// startConnReader reads h's socket until it errors or is closed, forwarding
// every read and the terminal error onto events.
func (b *Broker) startConnReader(h connHandle, nc net.Conn) {
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := nc.Read(buf)
			if n > 0 {
				cp := make([]byte, n)
				copy(cp, buf[:n])
				b.events <- brokerEvent{kind: evConnData, conn: h, data: cp}
			}
			if err != nil {
				b.events <- brokerEvent{kind: evConnClosed, conn: h, err: err}
				return
			}
		}
	}()
}

// startPortReader launches a fresh reader goroutine over the current serial
// port. Its context is cancelled by stopPortReader before a reset closes
// the underlying descriptor, so a read racing the close can't deliver a
// stale event into the next generation.
func (b *Broker) startPortReader() {
	ctx, cancel := context.WithCancel(b.ctx)
	done := make(chan struct{})
	b.portReaderCancel = cancel
	b.portReaderDone = done
	port := b.port

	go func() {
		defer close(done)
		buf := make([]byte, 512)
		for {
			n, err := port.Read(buf)

			select {
			case <-ctx.Done():
				return
			default:
			}

			if n > 0 {
				cp := make([]byte, n)
				copy(cp, buf[:n])
				select {
				case b.events <- brokerEvent{kind: evPortData, data: cp}:
				case <-ctx.Done():
					return
				}
			}

			if err != nil {
				if ne, ok := err.(net.Error); ok && ne.Timeout() {
					continue
				}
				select {
				case b.events <- brokerEvent{kind: evPortError, err: err}:
				case <-ctx.Done():
				}
				return
			}
		}
	}()
}

// stopPortReader cancels the current port reader goroutine and waits for it
// to exit before returning, so a reset's Close+Reopen can never race a
// still-running reader from the previous generation against the new one.
// Safe to call when no reader is running.
func (b *Broker) stopPortReader() {
	if b.portReaderCancel == nil {
		return
	}
	b.portReaderCancel()
	<-b.portReaderDone
	b.portReaderCancel = nil
	b.portReaderDone = nil
}
