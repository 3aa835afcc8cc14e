package broker

import (
	"os/exec"
	"time"

	"github.com/cenkalti/backoff"
)

// reset recovers the link after an unresponsive or misbehaving device:
// it closes and reopens the serial port, running the configured reset hook
// in between. failActive tells it whether there is a command in flight that
// should be failed back to its caller rather than left to time out on its
// own. It must only ever be called from the goroutine running Run: it
// blocks that goroutine for the duration of the reset hook and the reopen
// retries, a bounded pause rather than something the reactor needs to
// interleave with other work.
func (b *Broker) reset(failActive bool) error {
	if failActive && b.active != noConn {
		if c, ok := b.conns[b.active]; ok {
			_, _ = c.nc.Write(errEnvelope)
		}
	}

	b.stopPortReader()
	if err := b.port.Close(); err != nil {
		b.log.Printf("closing serial port during reset: %v", err)
	}

	if b.resetHook != "" {
		cmd := exec.CommandContext(b.ctx, b.resetHook)
		if err := cmd.Run(); err != nil {
			b.log.Printf("reset hook %s: %v", b.resetHook, err)
		}
	}

	// The hook itself is not retried (its exit status is logged, not acted
	// on), but the device node reappearing after a power cycle can lag the
	// hook's own exit by a beat; a couple of short retries here avoids
	// surfacing a reset failure for a transient ENOENT/EBUSY on reopen.
	reopen := func() error { return b.port.Reopen() }
	retry := backoff.WithMaxRetries(backoff.NewConstantBackOff(100*time.Millisecond), 3)
	if err := backoff.Retry(reopen, retry); err != nil {
		b.armTimer()
		return err
	}

	b.startPortReader()

	if failActive {
		b.complete()
	}
	return nil
}
