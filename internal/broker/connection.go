package broker

import "net"

// connHandle is an opaque key into Broker.conns. The active slot and queue
// entries store handles, never raw *connection pointers, so a closed
// connection's memory is never dereferenced from stale state once it is
// gone.
type connHandle uint64

// noConn is the zero handle: "no connection", used as the active slot's
// empty value.
const noConn connHandle = 0

// connection is one accepted client: a back-reference to the broker is
// unnecessary here because the broker always addresses connections by
// handle through Broker.conns, never the other way around.
type connection struct {
	handle connHandle
	nc     net.Conn

	buf  [64]byte
	fill int
}

// feed appends b to the 64-byte command accumulator. It returns every
// complete, newline-terminated command found in order, and reports overflow
// if the accumulator fills to 64 bytes without a terminator.
// Bytes after a complete command in the same read stay buffered for the
// next one.
func (c *connection) feed(b []byte) (cmds [][]byte, overflow bool) {
	for _, by := range b {
		if c.fill == len(c.buf) {
			return cmds, true
		}
		c.buf[c.fill] = by
		c.fill++
		if by == '\n' {
			cmd := make([]byte, c.fill)
			copy(cmd, c.buf[:c.fill])
			cmds = append(cmds, cmd)
			c.fill = 0
			continue
		}
		if c.fill == len(c.buf) {
			return cmds, true
		}
	}
	return cmds, false
}
