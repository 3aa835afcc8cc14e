// Command koruza-calib pulls a calibration curve over HTTP, optionally
// cross-reads a local reference instrument over a second serial port, and
// forwards the resulting calibration command to the broker. It is an
// ordinary client of the broker's unix-socket wire protocol.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	agnoio "github.com/irnas/koruza-control"
	"github.com/irnas/koruza-control/internal/protocol"

	"github.com/alecthomas/kingpin"
	"github.com/cenkalti/backoff"
)

var (
	app       = kingpin.New("koruza-calib", "Pulls calibration data and forwards it to koruza-control")
	socket    = app.Flag("socket", "Path to the broker's unix socket").Short('s').Default("/run/koruza-control.sock").String()
	curveURL  = app.Flag("curve-url", "HTTP endpoint serving the calibration curve value").Short('u').Required().String()
	reference = app.Flag("reference", "Optional reference instrument dial string, e.g. serial:///dev/ttyUSB1:9600").Short('r').String()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	curve, err := fetchCurve(context.Background(), *curveURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "koruza-calib: fetching calibration curve:", err)
		os.Exit(2)
	}

	if *reference != "" {
		reading, err := readReference(context.Background(), *reference)
		if err != nil {
			fmt.Fprintln(os.Stderr, "koruza-calib: reading reference instrument:", err)
		} else {
			fmt.Fprintf(os.Stderr, "koruza-calib: reference instrument reads %q\n", reading)
		}
	}

	arb, err := agnoio.NewArbiter(context.Background(), 2*time.Second, "unix://"+*socket)
	if err != nil {
		fmt.Fprintln(os.Stderr, "koruza-calib:", err)
		os.Exit(2)
	}
	defer arb.Close()

	cmd := protocol.Commands["calibrate"]
	raw, err := cmd.Bytes(curve)
	if err != nil {
		fmt.Fprintln(os.Stderr, "koruza-calib: formatting calibration command:", err)
		os.Exit(2)
	}

	rsp := arb.Simple(raw, []byte("#START"), []byte("#ERROR"), cmd.Timeout)
	fmt.Println(rsp.String())
	if rsp.Error != nil {
		os.Exit(1)
	}
}

// fetchCurve retries the HTTP pull with exponential backoff: calibration
// services live on flaky lab networks, and a one-shot failure here
// shouldn't abort a scheduled calibration run.
func fetchCurve(ctx context.Context, url string) (string, error) {
	var body string
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("calibration service returned %s", resp.Status)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = string(b)
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5)
	if err := backoff.Retry(op, bo); err != nil {
		return "", err
	}
	return body, nil
}

// readReference takes one reading from a local reference instrument over a
// second serial port, reusing agnoio.SerialClient rather than talking to
// the broker's own device.
func readReference(ctx context.Context, dial string) (string, error) {
	sc, err := agnoio.NewSerialClient(ctx, 2*time.Second, dial)
	if err != nil {
		return "", err
	}
	defer sc.Close()

	buf := make([]byte, 256)
	n, err := sc.Read(buf)
	if err != nil {
		return "", err
	}
	return string(buf[:n]), nil
}
