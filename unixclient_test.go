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

package agnoio

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newUnixSvr(ctx context.Context, t *testing.T, addr string, handler respHandler) {
	t.Helper()
	svr, err := net.Listen("unix", addr)
	if err != nil {
		t.Error(err)
		t.Error("Unable to start server")
		panic(err)
	}
	t.Log("Listening on unix", addr)
	go func() {
		defer svr.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			con, err := svr.Accept()
			if err != nil {
				t.Log("Connection Error:", err)
				continue
			}
			go handler(t, con)
		}
	}()
}

func TestNewUnixClient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := NewUnixClient(ctx, 0, "bad hair day"); err == nil {
		t.Error("Bad dial string should fail")
		t.FailNow()
	}
	if _, err := NewIDoIO(ctx, 1*time.Millisecond, "unix:///nonexistent/koruza.sock"); err == nil {
		t.Error("Dialing a socket that doesn't exist should fail")
		t.FailNow()
	}

	sock := filepath.Join(t.TempDir(), fmt.Sprintf("koruza-test-%d.sock", time.Now().UnixNano()))
	defer os.Remove(sock)
	newUnixSvr(ctx, t, sock, echoHandler)

	uc, err := NewIDoIO(ctx, 500*time.Millisecond, "unix://"+sock)
	if err != nil {
		t.Fatalf("Shouldn't get an error: %v", err)
	}
	_ = uc.String()

	msg := []byte("PING\n")
	if n, e := uc.Write(msg); e != nil || n != len(msg) {
		t.Fatalf("write: n=%d err=%v", n, e)
	}
	read := make([]byte, 1024)
	if n, e := uc.Read(read); e != nil || n != len(msg) {
		t.Fatalf("read: n=%d err=%v", n, e)
	}

	uc.Close()
	cancel()

	if n, e := uc.Write(msg); e == nil || n != 0 {
		t.Error("Write after close+cancel should fail")
	}
	if err := uc.Open(); err == nil {
		t.Error("Should always get an error on a dead context")
	}
}

// TestArb_Control_UnixSocket exercises Arbiter.Control over the same
// unix:// dial scheme the broker listens on (every cmd/ program only ever
// dials unix://), unlike TestArb_Control in arbiter_test.go which only
// covers tcp://. Arb.readUntil relies on periodic read timeouts to break
// out of its accumulation loop once a full envelope has arrived and no
// further bytes are pending; UnixClient must arm those timeouts the same
// way NetClient does, or this hangs instead of completing.
func TestArb_Control_UnixSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sock := filepath.Join(t.TempDir(), fmt.Sprintf("koruza-arb-%d.sock", time.Now().UnixNano()))
	defer os.Remove(sock)
	newUnixSvr(ctx, t, sock, arbHandler)

	a, e := NewArbiter(ctx, 500*time.Millisecond, "unix://"+sock)
	if e != nil {
		t.Fatalf("Unable to dial: %v", e)
	}
	defer a.Close()

	if resp := a.Control(arbCmdBad); resp.Error == nil {
		t.Error("Expected a broken command to fail")
	}

	if resp := a.Control(arbCmdOk); resp.Error != nil {
		t.Logf("Got err %v, bytes %q", resp.Error, resp.Bytes)
		t.Error("Expected a clean Control call to succeed")
	}
}
