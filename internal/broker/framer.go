package broker

import "bytes"

// stopSentinel is the literal suffix the response framer watches for on the
// serial port's accumulated output.
var stopSentinel = []byte("\r\n#STOP\r\n")

// errEnvelope is synthesized verbatim to the active connection by the reset
// path.
var errEnvelope = []byte("#ERROR\r\n#STOP\r\n")

// feedFramer appends data to the response accumulator and reports whether
// the accumulated buffer now ends in stopSentinel. The check runs against
// the whole accumulated buffer, not the newly arrived slice, so a
// terminator split across two reads is still detected.
func (b *Broker) feedFramer(data []byte) bool {
	b.respBuf.Write(data)
	return bytes.HasSuffix(b.respBuf.Bytes(), stopSentinel)
}
